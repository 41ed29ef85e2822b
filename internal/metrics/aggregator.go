package metrics

import (
	"context"
	"errors"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// ErrNoRuns is returned when a sweep has no stored runs to aggregate.
var ErrNoRuns = errors.New("no runs available for aggregation")

// Tables holds the derived tables of one sweep.
type Tables struct {
	Summary     []*domain.SummaryRow
	Sensitivity []*domain.SensitivityRow
}

// Aggregator rebuilds summary and sensitivity tables from stored run rows.
type Aggregator struct {
	runStore         storage.RunStore
	summaryStore     storage.SummaryStore
	sensitivityStore storage.SensitivityStore
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(runs storage.RunStore, summaries storage.SummaryStore, sens storage.SensitivityStore) *Aggregator {
	return &Aggregator{
		runStore:         runs,
		summaryStore:     summaries,
		sensitivityStore: sens,
	}
}

// Compute loads every run of sweepID and derives both tables.
// Returns ErrNoRuns if the sweep has no rows.
func (a *Aggregator) Compute(ctx context.Context, sweepID string) (*Tables, error) {
	rows, err := a.runStore.GetBySweep(ctx, sweepID)
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRuns
	}
	return BuildTables(sweepID, rows), nil
}

// ComputeAndStore computes both tables and persists them.
func (a *Aggregator) ComputeAndStore(ctx context.Context, sweepID string) (*Tables, error) {
	tables, err := a.Compute(ctx, sweepID)
	if err != nil {
		return nil, err
	}
	if err := a.summaryStore.InsertBulk(ctx, tables.Summary); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	if err := a.sensitivityStore.InsertBulk(ctx, tables.Sensitivity); err != nil {
		return nil, fmt.Errorf("store sensitivity: %w", err)
	}
	return tables, nil
}

// BuildTables derives both tables from in-memory rows.
func BuildTables(sweepID string, rows []*domain.RunRow) *Tables {
	return &Tables{
		Summary:     Summarize(sweepID, rows),
		Sensitivity: Sensitivity(sweepID, rows),
	}
}
