// Command permgen enumerates every input permutation of one or more app
// configurations and exports them as JSON, optionally also into SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/permutations/internal/export"
	"github.com/matthewbaird/permutations/internal/pipeline"
	"github.com/matthewbaird/permutations/internal/pipeline/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run holds the program logic; outW receives the summary, errW the logs.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	cfg, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	opts := pipeline.Options{
		OutPath:     cfg.OutPath,
		Limit:       cfg.Limit,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}
	if cfg.SQLitePath != "" {
		opts.SQLiteDSN = export.SQLiteDSN(cfg.SQLitePath)
	}

	var reg *prometheus.Registry
	if cfg.MetricsPath != "" {
		reg = prometheus.NewRegistry()
		opts.Metrics = metrics.New(reg)
	}

	logger.Debug("starting", "apps", len(cfg.Paths), "out", cfg.OutPath, "sqlite", cfg.SQLitePath)
	reports, err := pipeline.RunAll(ctx, cfg.Paths, opts)
	if reg != nil {
		// Failed runs are counted too, so the file is written either way.
		if werr := prometheus.WriteToTextfile(cfg.MetricsPath, reg); werr != nil {
			return errors.Join(err, fmt.Errorf("writing metrics: %w", werr))
		}
	}
	if err != nil {
		return err
	}

	for _, r := range reports {
		printReport(outW, r, cfg.ShowActions)
	}
	return nil
}

func printReport(w io.Writer, r *pipeline.Report, showActions bool) {
	fmt.Fprintf(w, "%s: %d permutations", r.App, r.Permutations)
	if len(r.Grouping) > 0 {
		fmt.Fprintf(w, ", actions: %s", strings.Join(r.Grouping.Actions(), ", "))
	}
	if r.OutPath != "" {
		fmt.Fprintf(w, " -> %s", r.OutPath)
	}
	fmt.Fprintln(w)

	if !showActions {
		return
	}
	for _, name := range r.Grouping.Actions() {
		cfg := r.Grouping[name]
		fmt.Fprintf(w, "  %s\n", name)
		fmt.Fprintf(w, "    inputs:  %s\n", joinOrDash(cfg.InputNames()))
		fmt.Fprintf(w, "    outputs: %s\n", joinOrDash(cfg.OutputNames()))
	}
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
