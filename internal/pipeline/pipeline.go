// Package pipeline runs the load, generate, group and export steps for one
// or more apps.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/permutations/internal/action"
	"github.com/matthewbaird/permutations/internal/catalog"
	"github.com/matthewbaird/permutations/internal/export"
	"github.com/matthewbaird/permutations/internal/permutation"
	"github.com/matthewbaird/permutations/internal/pipeline/metrics"
)

// DefaultOutFile is the JSON file written inside each app directory when no
// output path is configured.
const DefaultOutFile = "permutations.json"

// NoFile disables the JSON file sink when used as Options.OutPath.
const NoFile = "-"

// Options configures a run.
type Options struct {
	// OutPath is the JSON output file. Relative paths are resolved inside
	// the app directory. Empty means DefaultOutFile; NoFile disables it.
	OutPath string
	// SQLiteDSN, when set, also stores every run in that database.
	SQLiteDSN string
	// Limit rejects apps whose permutation upper bound exceeds it.
	Limit int
	// Placeholders overrides the placeholder expansion table.
	Placeholders map[string][]string
	// Concurrency caps parallel apps in RunAll. Zero means unlimited.
	Concurrency int
	// Sinks receive the records after the built-in sinks.
	Sinks   []export.Sink
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Report summarises one app run.
type Report struct {
	App          string
	Dir          string
	Format       string
	OutPath      string
	Permutations int
	Grouping     action.Grouping
	Records      []export.Record
	Elapsed      time.Duration
}

// Run generates, groups and exports the permutations of app.
func Run(ctx context.Context, app *catalog.App, opts Options) (*Report, error) {
	start := time.Now()
	log := opts.logger().With("app", app.Name)

	genOpts := []permutation.Option{
		permutation.WithLimit(opts.Limit),
		permutation.WithLogger(log),
	}
	if opts.Placeholders != nil {
		genOpts = append(genOpts, permutation.WithPlaceholders(opts.Placeholders))
	}
	res, err := permutation.New(genOpts...).Generate(app.Params, app.Layout)
	opts.Metrics.ObserveStage("generate", time.Since(start))
	if err != nil {
		opts.Metrics.IncrementOutcome("generate_error")
		return nil, fmt.Errorf("generating %s: %w", app.Name, err)
	}
	opts.Metrics.AddPermutations(app.Name, res.Len())

	report := &Report{
		App:          app.Name,
		Dir:          app.Dir,
		Format:       app.Format,
		Permutations: res.Len(),
		Grouping:     action.GroupByAction(res.Inputs, res.Outputs, app.Params.ActionField()),
		Records:      export.Export(res.Inputs),
	}

	var sinks []export.Sink
	if opts.OutPath != NoFile {
		report.OutPath = outPath(app.Dir, opts.OutPath)
		sinks = append(sinks, &export.FileSink{Path: report.OutPath, Logger: log})
	}
	if opts.SQLiteDSN != "" {
		sinks = append(sinks, &export.SQLiteSink{DSN: opts.SQLiteDSN, App: app.Name, Logger: log})
	}
	sinks = append(sinks, opts.Sinks...)

	exportStart := time.Now()
	for _, s := range sinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Write(ctx, report.Records); err != nil {
			opts.Metrics.IncrementOutcome("export_error")
			return nil, fmt.Errorf("exporting %s: %w", app.Name, err)
		}
	}
	opts.Metrics.ObserveStage("export", time.Since(exportStart))
	opts.Metrics.IncrementOutcome("ok")

	report.Elapsed = time.Since(start)
	log.Debug("app complete",
		"permutations", report.Permutations,
		"actions", len(report.Grouping),
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// RunPath loads the app at path and runs it.
func RunPath(ctx context.Context, path string, opts Options) (*Report, error) {
	app, err := catalog.LoadApp(path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, app, opts)
}

// RunAll runs the apps at paths concurrently. Reports are index-aligned with
// paths. The first failure cancels the context seen by the remaining runs and
// is returned.
func RunAll(ctx context.Context, paths []string, opts Options) ([]*Report, error) {
	reports := make([]*Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := RunPath(ctx, path, opts)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func outPath(dir, out string) string {
	if out == "" {
		out = DefaultOutFile
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(dir, out)
}
