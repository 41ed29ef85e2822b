package memory

import (
	"context"
	"errors"
	"testing"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/storage/storagetest"
)

func TestMemoryStores_Conformance(t *testing.T) {
	storagetest.RunConformance(t, NewStores())
}

func TestRunStore_ReturnsCopies(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	row := storagetest.RunRow("copy", 0, 0, storagetest.Point(1.0))
	if err := store.InsertBulk(ctx, []*domain.RunRow{row}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Mutating the inserted row must not affect the store.
	row.Result.StakeAtRiskCurves[0.5] = 99
	row.TotalRevenue = -1

	got, err := store.GetByID(ctx, row.RunID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Result.StakeAtRiskCurves[0.5] != 0.05 || got.TotalRevenue != 812.5 {
		t.Errorf("store shares memory with caller: %+v", got)
	}

	// Mutating a returned row must not affect the store either.
	got.Result.StakeAtRiskCurves[1.0] = 42
	again, _ := store.GetByID(ctx, row.RunID)
	if again.Result.StakeAtRiskCurves[1.0] != 0.1 {
		t.Error("returned row aliases stored row")
	}
}

func TestRunStore_IntraBatchDuplicate(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	row := storagetest.RunRow("dup", 0, 0, storagetest.Point(1.0))
	err := store.InsertBulk(ctx, []*domain.RunRow{row, row})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	rows, _ := store.GetBySweep(ctx, "dup")
	if len(rows) != 0 {
		t.Errorf("expected no rows after failed batch, got %d", len(rows))
	}
}

func TestSummaryStore_ReturnsCopies(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	row := storagetest.SummaryRow("copy", storagetest.Point(1.0))
	if err := store.InsertBulk(ctx, []*domain.SummaryRow{row}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	row.Stats[domain.MetricLiveness] = domain.MetricStat{Mean: -1}

	got, _ := store.GetBySweep(ctx, "copy")
	if got[0].Stats[domain.MetricLiveness].Mean == -1 {
		t.Error("store shares stats map with caller")
	}
}
