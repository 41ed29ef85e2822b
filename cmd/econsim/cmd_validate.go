package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"econ-sim-lab/internal/sweep"
)

func newValidateCmd() *cobra.Command {
	var smokeTest bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration document",
		Long: `Load the configuration with environment overrides applied, check every
key and print the size of the resulting sweep.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			id, _, err := sweep.SweepID(cfg, smokeTest)
			if err != nil {
				return err
			}
			points := len(sweep.Grid(cfg, smokeTest))
			runs := sweep.RunsPerPoint(cfg, smokeTest)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration OK")
			fmt.Fprintf(out, "  Sweep ID: %s\n", id)
			fmt.Fprintf(out, "  Grid points: %d\n", points)
			fmt.Fprintf(out, "  Runs per point: %d\n", runs)
			fmt.Fprintf(out, "  Repetitions: %d\n", points*runs)
			fmt.Fprintf(out, "  Storage backend: %s\n", backendName(cfg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&smokeTest, "smoke-test", false, "Report the smoke-test sweep size")

	return cmd
}
