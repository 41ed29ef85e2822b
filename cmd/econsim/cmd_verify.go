package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"econ-sim-lab/internal/observability"
	"econ-sim-lab/internal/storage/backend"
	"econ-sim-lab/internal/sweep"
	"econ-sim-lab/internal/verification"
)

func newVerifyCmd() *cobra.Command {
	var (
		sample    int
		smokeTest bool
		store     string
		sweepID   string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-execute stored repetitions and check they reproduce",
		Long: `Load the sweep identified by the configuration (or --sweep-id) from
the storage backend, re-run its repetitions from the recorded configuration
and report every field that differs.

With the memory backend the sweep is executed in-process first.

Examples:
  econsim verify --store sqlite
  econsim verify --store postgres --sample 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyStore(cfg, store)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := newLogger(cmd, cfg)

			stores, err := backend.Open(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("open %s store: %w", backendName(cfg), err)
			}
			defer stores.Close()

			if sweepID == "" {
				sweepID, _, err = sweep.SweepID(cfg, smokeTest)
				if err != nil {
					return err
				}
			}

			if backendName(cfg) == backend.Memory {
				res, err := sweep.NewDriver(sweep.Options{Logger: logger, SmokeTest: smokeTest}).Run(ctx, cfg)
				if err != nil {
					return err
				}
				m := observability.NewMetrics("", prometheus.NewRegistry())
				if err := persist(ctx, stores, res, m, backend.Memory, logger); err != nil {
					return err
				}
			}

			v := verification.NewReplayVerifier(verification.Options{
				Sweeps: stores.Sweeps,
				Runs:   stores.Runs,
				Logger: logger,
			})
			report, err := v.VerifySweep(ctx, sweepID, sample)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sweep %s: verified %d of %d runs, %d matched, %d diverged\n",
				report.SweepID, report.VerifiedRuns, report.StoredRuns, report.MatchedRuns, report.DivergentRuns)
			for _, r := range report.Results {
				if r.Match {
					continue
				}
				fmt.Fprintf(out, "  run %s (grid=%d run=%d)\n", r.RunID, r.GridIndex, r.RunIndex)
				for _, d := range r.Divergences {
					fmt.Fprintf(out, "    %s: stored=%v replayed=%v\n", d.Field, d.Expected, d.Actual)
				}
			}

			if !report.OK() {
				return fmt.Errorf("%d of %d verified runs diverged", report.DivergentRuns, report.VerifiedRuns)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 0, "Verify only this many evenly spaced runs (0 = all)")
	cmd.Flags().BoolVar(&smokeTest, "smoke-test", false, "Verify the smoke-test sweep of the configuration")
	cmd.Flags().StringVar(&store, "store", "", "Storage backend: memory, sqlite, postgres or clickhouse")
	cmd.Flags().StringVar(&sweepID, "sweep-id", "", "Sweep to verify (default: derived from the configuration)")

	return cmd
}
