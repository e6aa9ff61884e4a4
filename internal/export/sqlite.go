package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	runsTable = "permutation_runs"
	argsTable = "permutation_args"

	// argColumns * insertBatch stays well below SQLite's bound variable limit.
	argColumns  = 5
	insertBatch = 500
)

// SQLiteDSN builds a DSN for a database file that tolerates concurrent
// writers from separate runs.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(10000)&_txlock=immediate"
}

// SQLiteSink stores each run as one row in permutation_runs and one row per
// arg in permutation_args, all in a single transaction.
type SQLiteSink struct {
	DSN    string
	App    string
	Logger *slog.Logger

	// NewID returns the run id. Defaults to a random UUID.
	NewID func() string
	// Now returns the run timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Run describes one stored export.
type Run struct {
	ID           string
	App          string
	CreatedAt    time.Time
	Permutations int
}

func openDriver(dsn string) (*entsql.Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return entsql.OpenDB(dialect.SQLite, db), nil
}

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, records []Record) (err error) {
	drv, err := openDriver(s.DSN)
	if err != nil {
		return &ExportError{Op: "open", Target: s.DSN, Err: err}
	}
	defer drv.Close()

	tx, err := drv.Tx(ctx)
	if err != nil {
		return &ExportError{Op: "open", Target: s.DSN, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := migrate(ctx, tx); err != nil {
		return &ExportError{Op: "migrate", Target: s.DSN, Err: err}
	}

	runID := s.newID()
	if err := s.insertRun(ctx, tx, runID, len(records)); err != nil {
		return &ExportError{Op: "insert", Target: s.DSN, Err: err}
	}
	if err := insertArgs(ctx, tx, runID, records); err != nil {
		return &ExportError{Op: "insert", Target: s.DSN, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &ExportError{Op: "commit", Target: s.DSN, Err: err}
	}

	logger(s.Logger).Debug("stored permutations", "app", s.App, "run_id", runID, "records", len(records))
	return nil
}

func (s *SQLiteSink) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *SQLiteSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// schema creates both tables when missing. Arg values are JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
		id           TEXT    NOT NULL PRIMARY KEY,
		app          TEXT    NOT NULL,
		created_at   TEXT    NOT NULL,
		permutations INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + argsTable + ` (
		run_id     TEXT    NOT NULL REFERENCES ` + runsTable + `(id),
		perm_index INTEGER NOT NULL,
		position   INTEGER NOT NULL,
		name       TEXT    NOT NULL,
		value      TEXT    NOT NULL,
		PRIMARY KEY (run_id, perm_index, position)
	)`,
}

func migrate(ctx context.Context, tx dialect.ExecQuerier) error {
	for _, ddl := range schema {
		if err := tx.Exec(ctx, ddl, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteSink) insertRun(ctx context.Context, tx dialect.ExecQuerier, runID string, n int) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(runsTable).
		Columns("id", "app", "created_at", "permutations").
		Values(runID, s.App, s.now().UTC().Format(time.RFC3339Nano), n).
		Query()
	return tx.Exec(ctx, query, args, nil)
}

func insertArgs(ctx context.Context, tx dialect.ExecQuerier, runID string, records []Record) error {
	var (
		ins  *entsql.InsertBuilder
		rows int
	)
	flush := func() error {
		if rows == 0 {
			return nil
		}
		query, args := ins.Query()
		ins, rows = nil, 0
		return tx.Exec(ctx, query, args, nil)
	}

	for _, r := range records {
		for pos, a := range r.Args {
			value, err := json.Marshal(a.Value)
			if err != nil {
				return fmt.Errorf("encoding %s of record %d: %w", a.Name, r.Index, err)
			}
			if ins == nil {
				ins = entsql.Dialect(dialect.SQLite).
					Insert(argsTable).
					Columns("run_id", "perm_index", "position", "name", "value")
			}
			ins.Values(runID, r.Index, pos, a.Name, string(value))
			rows++
			if rows == insertBatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

// ReadRuns lists the runs stored in the database at dsn, oldest first.
func ReadRuns(ctx context.Context, dsn string) ([]Run, error) {
	drv, err := openDriver(dsn)
	if err != nil {
		return nil, &ExportError{Op: "open", Target: dsn, Err: err}
	}
	defer drv.Close()

	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "app", "created_at", "permutations").
		From(entsql.Table(runsTable)).
		OrderBy("created_at", "id").
		Query()

	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &r.App, &created, &r.Permutations); err != nil {
			return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
	}
	return runs, nil
}

// ReadRun loads the records of one stored run.
func ReadRun(ctx context.Context, dsn, runID string) ([]Record, error) {
	drv, err := openDriver(dsn)
	if err != nil {
		return nil, &ExportError{Op: "open", Target: dsn, Err: err}
	}
	defer drv.Close()

	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("permutations").
		From(entsql.Table(runsTable)).
		Where(entsql.EQ("id", runID)).
		Query()
	var head entsql.Rows
	if err := drv.Query(ctx, query, args, &head); err != nil {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
	}
	n := -1
	for head.Next() {
		if err := head.Scan(&n); err != nil {
			head.Close()
			return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
		}
	}
	head.Close()
	if n < 0 {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: fmt.Errorf("run %q not found", runID)}
	}

	records := make([]Record, n)
	for i := range records {
		records[i] = Record{Index: i, Args: []Arg{}}
	}

	query, args = b.Select("perm_index", "name", "value").
		From(entsql.Table(argsTable)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("perm_index", "position").
		Query()
	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx         int
			name, value string
		)
		if err := rows.Scan(&idx, &name, &value); err != nil {
			return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
		}
		if idx < 0 || idx >= n {
			return nil, &ExportError{Op: "decode", Target: dsn, Err: fmt.Errorf("arg %s has index %d outside run of %d", name, idx, n)}
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
		}
		records[idx].Args = append(records[idx].Args, Arg{Name: name, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, &ExportError{Op: "decode", Target: dsn, Err: err}
	}
	return records, nil
}
