package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
)

// FileSink writes records as one JSON document to Path.
type FileSink struct {
	Path   string
	Logger *slog.Logger
}

// Write encodes records and writes them in a single call. The file is
// created or truncated.
func (s *FileSink) Write(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return &ExportError{Op: "write", Target: s.Path, Err: err}
	}
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &ExportError{Op: "encode", Target: s.Path, Err: err}
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return &ExportError{Op: "write", Target: s.Path, Err: err}
	}
	logger(s.Logger).Debug("wrote permutations", "path", s.Path, "records", len(records))
	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
