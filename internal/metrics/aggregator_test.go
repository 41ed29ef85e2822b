package metrics

import (
	"context"
	"errors"
	"testing"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage/memory"
)

func TestAggregator_ComputeAndStore(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	rows := []*domain.RunRow{
		row(point(0.5, 0.01, 3), 0, 0.9, 1, 0),
		row(point(1.0, 0.01, 3), 0, 0.6, 0, 1),
	}
	for i, r := range rows {
		r.RunID = []string{"r0", "r1"}[i]
		r.GridIndex = i
	}
	if err := stores.Runs.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("insert runs: %v", err)
	}

	agg := NewAggregator(stores.Runs, stores.Summaries, stores.Sensitivities)
	tables, err := agg.ComputeAndStore(ctx, "sweep")
	if err != nil {
		t.Fatalf("ComputeAndStore failed: %v", err)
	}
	if len(tables.Summary) != 2 {
		t.Errorf("expected 2 summary rows, got %d", len(tables.Summary))
	}
	if len(tables.Sensitivity) != len(domain.OutcomeMetrics) {
		t.Errorf("expected %d sensitivity rows, got %d", len(domain.OutcomeMetrics), len(tables.Sensitivity))
	}

	stored, err := stores.Summaries.GetBySweep(ctx, "sweep")
	if err != nil {
		t.Fatalf("load summaries: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 stored summaries, got %d", len(stored))
	}
	storedSens, _ := stores.Sensitivities.GetBySweep(ctx, "sweep")
	if len(storedSens) != len(tables.Sensitivity) {
		t.Errorf("expected %d stored sensitivities, got %d", len(tables.Sensitivity), len(storedSens))
	}

	// Tables are write-once per sweep.
	if _, err := agg.ComputeAndStore(ctx, "sweep"); err == nil {
		t.Error("expected duplicate error on second store")
	}
}

func TestAggregator_NoRuns(t *testing.T) {
	stores := memory.NewStores()
	agg := NewAggregator(stores.Runs, stores.Summaries, stores.Sensitivities)

	_, err := agg.Compute(context.Background(), "empty")
	if !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
}
