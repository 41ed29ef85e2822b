package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"econ-sim-lab/internal/agent"
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/logging"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/sweep"
)

var (
	// ErrSweepNotFound is returned when the sweep ID doesn't exist.
	ErrSweepNotFound = errors.New("sweep not found")

	// ErrRunNotFound is returned when the run ID doesn't exist.
	ErrRunNotFound = errors.New("run not found")
)

// Options configures a ReplayVerifier.
type Options struct {
	Sweeps   storage.SweepStore
	Runs     storage.RunStore
	Registry *agent.Registry // nil uses agent.DefaultRegistry()
	Logger   *slog.Logger
}

// ReplayVerifier re-runs stored repetitions from the recorded configuration.
type ReplayVerifier struct {
	sweeps   storage.SweepStore
	runs     storage.RunStore
	registry *agent.Registry
	logger   *slog.Logger
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts Options) *ReplayVerifier {
	return &ReplayVerifier{
		sweeps:   opts.Sweeps,
		runs:     opts.Runs,
		registry: opts.Registry,
		logger:   logging.OrDefault(opts.Logger),
	}
}

// VerifyRun verifies a single repetition by ID.
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string) (*VerificationResult, error) {
	stored, err := v.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	runner, err := v.runnerFor(ctx, stored.SweepID)
	if err != nil {
		return nil, err
	}
	return replay(runner, stored), nil
}

// VerifySweep verifies the rows of a sweep. With sample > 0 only that many
// rows, spread evenly across the grid, are re-executed.
func (v *ReplayVerifier) VerifySweep(ctx context.Context, sweepID string, sample int) (*VerificationReport, error) {
	runner, err := v.runnerFor(ctx, sweepID)
	if err != nil {
		return nil, err
	}

	rows, err := v.runs.GetBySweep(ctx, sweepID)
	if err != nil {
		return nil, fmt.Errorf("load rows of sweep %s: %w", sweepID, err)
	}

	selected := Sample(rows, sample)
	report := &VerificationReport{
		SweepID:      sweepID,
		StoredRuns:   len(rows),
		VerifiedRuns: len(selected),
		Results:      make([]VerificationResult, 0, len(selected)),
	}

	for _, row := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := replay(runner, row)
		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
			continue
		}
		report.DivergentRuns++
		v.logger.Warn("replay diverged",
			"run_id", row.RunID,
			"grid_index", row.GridIndex,
			"run_index", row.RunIndex,
			"fields", len(result.Divergences),
		)
	}

	v.logger.Info("verification complete",
		"sweep_id", sweepID,
		"verified", report.VerifiedRuns,
		"matched", report.MatchedRuns,
		"divergent", report.DivergentRuns,
	)
	return report, nil
}

// Sample picks n rows at evenly spaced positions. n <= 0 or n >= len(rows) returns all rows.
func Sample(rows []*domain.RunRow, n int) []*domain.RunRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	out := make([]*domain.RunRow, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rows[i*len(rows)/n])
	}
	return out
}

// runnerFor rebuilds the repetition runner from the sweep's recorded configuration.
func (v *ReplayVerifier) runnerFor(ctx context.Context, sweepID string) (*sweep.Runner, error) {
	rec, err := v.sweeps.GetByID(ctx, sweepID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSweepNotFound
		}
		return nil, err
	}

	cfg, err := config.Parse([]byte(rec.ConfigYAML))
	if err != nil {
		return nil, fmt.Errorf("parse config of sweep %s: %w", sweepID, err)
	}
	return sweep.NewRunner(cfg, rec.SweepID, v.registry, nil), nil
}

// replay re-executes the repetition described by stored. A replay error is
// reported as a divergence on the pseudo-field "Error".
func replay(runner *sweep.Runner, stored *domain.RunRow) *VerificationResult {
	result := &VerificationResult{
		RunID:     stored.RunID,
		GridIndex: stored.GridIndex,
		RunIndex:  stored.RunIndex,
	}

	replayed, err := runner.Run(sweep.Task{
		GridIndex: stored.GridIndex,
		RunIndex:  stored.RunIndex,
		Point:     stored.Point,
		Seed:      stored.Seed,
	})
	if err != nil {
		result.Divergences = []FieldDivergence{{Field: "Error", Expected: nil, Actual: err.Error()}}
		return result
	}

	result.Divergences = CompareRunRows(stored, replayed)
	result.Match = len(result.Divergences) == 0
	return result
}
