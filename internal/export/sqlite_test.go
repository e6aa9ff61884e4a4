package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSQLiteSink_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := Export(sampleInputs(t))
	sink := &SQLiteSink{
		DSN:   dsn,
		App:   "demo",
		NewID: func() string { return "run-1" },
		Now:   func() time.Time { return stamp },
	}
	require.NoError(t, sink.Write(ctx, records))

	runs, err := ReadRuns(ctx, dsn)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{ID: "run-1", App: "demo", CreatedAt: stamp, Permutations: 3}, runs[0])

	got, err := ReadRun(ctx, dsn, "run-1")
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestSQLiteSink_MultipleRuns(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))

	n := 0
	sink := &SQLiteSink{DSN: dsn, App: "demo", NewID: func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}}
	require.NoError(t, sink.Write(ctx, []Record{{Index: 0, Args: []Arg{{Name: "a", Value: true}}}}))
	require.NoError(t, sink.Write(ctx, []Record{{Index: 0, Args: []Arg{}}, {Index: 1, Args: []Arg{{Name: "b"}}}}))

	runs, err := ReadRuns(ctx, dsn)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	second, err := ReadRun(ctx, dsn, "run-2")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, second[0].Args)
	assert.Equal(t, []Arg{{Name: "b", Value: nil}}, second[1].Args)
}

func TestSQLiteSink_LargeRunIsBatched(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))

	records := make([]Record, 300)
	for i := range records {
		records[i] = Record{Index: i, Args: []Arg{
			{Name: "a", Value: i%2 == 0},
			{Name: "b", Value: fmt.Sprintf("v%d", i)},
		}}
	}
	sink := &SQLiteSink{DSN: dsn, App: "big", NewID: func() string { return "big" }}
	require.NoError(t, sink.Write(ctx, records))

	got, err := ReadRun(ctx, dsn, "big")
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestSQLiteSink_DuplicateRunFails(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))
	sink := &SQLiteSink{DSN: dsn, App: "demo", NewID: func() string { return "same" }}

	require.NoError(t, sink.Write(ctx, []Record{{Index: 0, Args: []Arg{{Name: "a", Value: "x"}}}}))
	err := sink.Write(ctx, []Record{{Index: 0, Args: []Arg{{Name: "a", Value: "y"}}}})

	var eerr *ExportError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "insert", eerr.Op)

	got, err := ReadRun(ctx, dsn, "same")
	require.NoError(t, err)
	assert.Equal(t, "x", got[0].Args[0].Value, "failed run left no partial rows")
}

func TestReadRun_NotFound(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))
	sink := &SQLiteSink{DSN: dsn, App: "demo"}
	require.NoError(t, sink.Write(ctx, nil))

	runs, err := ReadRuns(ctx, dsn)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].ID, 36, "defaults to a UUID")

	_, err = ReadRun(ctx, dsn, "nope")
	var eerr *ExportError
	require.True(t, errors.As(err, &eerr))
	assert.Contains(t, eerr.Error(), `run "nope" not found`)
}

func TestMigrate_CreatesTablesOnce(t *testing.T) {
	ctx := context.Background()
	drv, err := openDriver(SQLiteDSN(filepath.Join(t.TempDir(), "perms.db")))
	require.NoError(t, err)
	defer drv.Close()

	require.NoError(t, migrate(ctx, drv))
	require.NoError(t, migrate(ctx, drv), "second migration is a no-op")

	var rows entsql.Rows
	require.NoError(t, drv.Query(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`, []any{}, &rows))
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{argsTable, runsTable}, tables)
}

func TestSQLiteSink_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "perms.db"))
	records := Export(sampleInputs(t))

	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			sink := &SQLiteSink{DSN: dsn, App: fmt.Sprintf("app-%d", i)}
			return sink.Write(ctx, records)
		})
	}
	require.NoError(t, g.Wait())

	runs, err := ReadRuns(ctx, dsn)
	require.NoError(t, err)
	assert.Len(t, runs, 8)
}
