// Command econsim runs adversarial economic parameter sweeps.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/logging"
	"econ-sim-lab/internal/storage/backend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "econsim",
		Short: "Adversarial economic simulator",
		Long: `econsim stress-tests a protocol's incentive design against colluding,
griefing and hoarding agents.

It sweeps stake level, reputation decay, collusion size and sybil cost,
runs repeated seeded simulations per grid point and writes raw, summary
and sensitivity tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "configs/params.yaml", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSweepCmd(),
		newVerifyCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config document with env overrides applied and validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyStore selects the storage backend named on the command line.
// A sqlite backend without a path stores next to the CSV results.
func applyStore(cfg *config.Config, store string) {
	if store != "" {
		cfg.Storage.Backend = store
	}
	if cfg.Storage.Backend == backend.SQLite && cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Output.ResultsDir, "econsim.db")
	}
}

func backendName(cfg *config.Config) string {
	if cfg.Storage.Backend == "" {
		return backend.Memory
	}
	return cfg.Storage.Backend
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
