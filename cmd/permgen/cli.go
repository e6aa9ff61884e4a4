package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// config is the parsed command line.
type config struct {
	Paths       []string
	OutPath     string
	SQLitePath  string
	MetricsPath string
	Limit       int
	Concurrency int
	ShowActions bool
	LogLevel    string
	LogFormat   string
}

type stringsFlag []string

func (s *stringsFlag) String() string { return strings.Join(*s, ",") }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseArgs processes command-line arguments. It returns the config, whether
// the program should exit cleanly, or an *ExitError.
func parseArgs(args []string, output io.Writer) (*config, bool, error) {
	fs := flag.NewFlagSet("permgen", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
permgen - enumerate the input permutations of app configurations.

Usage:
  permgen [options] APP_PATH...

Arguments:
  APP_PATH
    An app directory (app.cue, app.hcl, install.json or install.yaml) or a
    catalog file inside one.

Options:
`)
		fs.PrintDefaults()
	}

	var apps stringsFlag
	fs.Var(&apps, "app", "App directory or catalog file. May be repeated.")
	out := fs.String("out", "", "JSON output file, relative to each app directory. '-' disables it. Default permutations.json.")
	sqlite := fs.String("sqlite", "", "SQLite database file that also stores every run.")
	metricsPath := fs.String("metrics", "", "Write Prometheus metrics for the run to this file in text format.")
	limit := fs.Int("limit", 0, "Reject apps whose permutation upper bound exceeds this. 0 disables the check.")
	concurrency := fs.Int("concurrency", 0, "Maximum apps processed in parallel. 0 is unlimited.")
	showActions := fs.Bool("actions", false, "Print the inputs and outputs of every action.")
	logFormat := fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevel := fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	paths := append([]string(apps), fs.Args()...)
	if len(paths) == 0 {
		fs.Usage()
		return nil, true, nil
	}

	cfg := &config{
		Paths:       paths,
		OutPath:     *out,
		SQLitePath:  *sqlite,
		MetricsPath: *metricsPath,
		Limit:       *limit,
		Concurrency: *concurrency,
		ShowActions: *showActions,
		LogFormat:   strings.ToLower(*logFormat),
		LogLevel:    strings.ToLower(*logLevel),
	}
	if err := cfg.validate(); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

func (c *config) validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if c.Limit < 0 {
		return &ExitError{Code: 2, Message: "invalid limit: must not be negative"}
	}
	if c.Concurrency < 0 {
		return &ExitError{Code: 2, Message: "invalid concurrency: must not be negative"}
	}
	if len(c.Paths) > 1 && filepath.IsAbs(c.OutPath) {
		return &ExitError{Code: 2, Message: "an absolute -out path cannot be shared by several apps"}
	}
	return nil
}
