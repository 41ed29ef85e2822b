package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"econ-sim-lab/internal/metrics"
	"econ-sim-lab/internal/observability"
	"econ-sim-lab/internal/reporting"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/storage/backend"
	"econ-sim-lab/internal/sweep"
)

type sweepFlags struct {
	smokeTest    bool
	stakeLevels  []float64
	runsPerPoint int
	parallel     bool
	workers      int
	store        string
	metricsAddr  string
}

func newSweepCmd() *cobra.Command {
	var f sweepFlags

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep and write result tables",
		Long: `Run every grid point of the configured sweep and write
sweep_results.csv, summary_stats.csv, parameter_sensitivity.csv and
SWEEP_REPORT.md to output.results_dir.

Rows are also persisted to the selected storage backend.

Examples:
  econsim sweep --config configs/params.yaml
  econsim sweep --smoke-test
  econsim sweep --stake-levels 1,5 --runs-per-point 3 --parallel --workers 4
  econsim sweep --store sqlite --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweepCmd(cmd, f)
		},
	}

	cmd.Flags().BoolVar(&f.smokeTest, "smoke-test", false, "Run the first value of each axis with one repetition")
	cmd.Flags().Float64SliceVar(&f.stakeLevels, "stake-levels", nil, "Override stake_levels (comma separated)")
	cmd.Flags().IntVar(&f.runsPerPoint, "runs-per-point", 0, "Override runs_per_point")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "Run repetitions on a worker pool")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Worker pool size with --parallel (default: number of CPUs)")
	cmd.Flags().StringVar(&f.store, "store", "", "Storage backend: memory, sqlite, postgres or clickhouse")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func runSweepCmd(cmd *cobra.Command, f sweepFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(f.stakeLevels) > 0 {
		cfg.StakeLevels = f.stakeLevels
	}
	if f.runsPerPoint > 0 {
		cfg.RunsPerPoint = f.runsPerPoint
	}
	applyStore(cfg, f.store)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger(cmd, cfg)

	m := observability.NewMetrics("", prometheus.NewRegistry())
	if f.metricsAddr != "" {
		srv, err := observability.Serve(f.metricsAddr, m, logger)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	stores, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s store: %w", backendName(cfg), err)
	}
	defer stores.Close()

	total := len(sweep.Tasks(cfg, f.smokeTest))
	driver := sweep.NewDriver(sweep.Options{
		Logger:        logger,
		Parallel:      f.parallel,
		Workers:       f.workers,
		SmokeTest:     f.smokeTest,
		ProgressEvery: max(1, total/10),
		Recorder:      m,
	})

	res, err := driver.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if err := persist(ctx, stores, res, m, backendName(cfg), logger); err != nil {
		return err
	}

	paths, err := reporting.WriteFiles(cfg.Output.ResultsDir, cfg.Output.PlotsDir, newReport(res))
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res, paths)
	return nil
}

// persist stores the sweep's tables. The sweep record is written last so its
// presence marks a complete sweep; a sweep already on record is skipped.
func persist(ctx context.Context, stores *storage.Stores, res *sweep.Result, m *observability.Metrics, label string, logger *slog.Logger) error {
	_, err := stores.Sweeps.GetByID(ctx, res.Record.SweepID)
	switch {
	case err == nil:
		logger.Warn("sweep already stored, skipping persistence", "sweep_id", res.Record.SweepID, "backend", label)
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("look up sweep %s: %w", res.Record.SweepID, err)
	}

	writes := []struct {
		table string
		write func() error
	}{
		{"run_results", func() error { return stores.Runs.InsertBulk(ctx, res.Rows) }},
		// Summary tables are rebuilt from the stored rows.
		{"summary_tables", func() error {
			if len(res.Rows) == 0 {
				return nil
			}
			_, err := metrics.NewAggregator(stores.Runs, stores.Summaries, stores.Sensitivities).ComputeAndStore(ctx, res.Record.SweepID)
			return err
		}},
		{"sweeps", func() error { return stores.Sweeps.Insert(ctx, res.Record) }},
	}
	for _, w := range writes {
		start := time.Now()
		err := w.write()
		m.RecordStoreWrite(label, w.table, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("store %s: %w", w.table, err)
		}
	}

	logger.Info("sweep stored", "sweep_id", res.Record.SweepID, "backend", label, "rows", len(res.Rows))
	return nil
}

func newReport(res *sweep.Result) *reporting.Report {
	failures := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, fmt.Sprintf("grid=%d run=%d: %v", f.Task.GridIndex, f.Task.RunIndex, f.Err))
	}
	return &reporting.Report{
		Record:      res.Record,
		Rows:        res.Rows,
		Summary:     res.Summary,
		Sensitivity: res.Sensitivity,
		Failures:    failures,
	}
}

func printSummary(w io.Writer, res *sweep.Result, paths []string) {
	t := reporting.ComputeTotals(res.Rows)

	fmt.Fprintln(w, "Sweep complete")
	fmt.Fprintf(w, "  Sweep ID: %s\n", res.Record.SweepID)
	fmt.Fprintf(w, "  Parameter combinations: %d\n", t.GridPoints)
	fmt.Fprintf(w, "  Simulation runs: %d (skipped %d)\n", t.Runs, len(res.Failures))
	fmt.Fprintf(w, "  Average honest share of revenue: %.3f\n", t.MeanHonestShare)
	fmt.Fprintf(w, "  Average expected loss for honest: %.3f\n", t.MeanExpectedLoss)
	fmt.Fprintf(w, "  Average liveness score: %.3f\n", t.MeanLiveness)
	fmt.Fprintf(w, "  Attack success rate: %.3f\n", t.AttackSuccessRate)
	for _, p := range paths {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
