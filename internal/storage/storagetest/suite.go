package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// RunConformance exercises every store of a backend against the storage
// contracts. Stores must be empty; sweepID prefixes keep subtests apart.
func RunConformance(t *testing.T, stores *storage.Stores) {
	t.Run("sweeps", func(t *testing.T) { testSweeps(t, stores.Sweeps) })
	t.Run("runs", func(t *testing.T) { testRuns(t, stores.Runs) })
	t.Run("summaries", func(t *testing.T) { testSummaries(t, stores.Summaries) })
	t.Run("sensitivities", func(t *testing.T) { testSensitivities(t, stores.Sensitivities) })
}

func testSweeps(t *testing.T, store storage.SweepStore) {
	ctx := context.Background()

	older := Sweep("sweep-a", 1000)
	newer := Sweep("sweep-b", 2000)
	newer.SmokeTest = true
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	got, err := store.GetByID(ctx, "sweep-b")
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	err = store.Insert(ctx, older)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	_, err = store.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)

	err = store.Insert(ctx, &domain.SweepRecord{})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sweep-b", list[0].SweepID)
	assert.Equal(t, "sweep-a", list[1].SweepID)
}

func testRuns(t *testing.T, store storage.RunStore) {
	ctx := context.Background()

	rows := []*domain.RunRow{
		RunRow("runs", 1, 1, Point(2.0)),
		RunRow("runs", 0, 1, Point(1.0)),
		RunRow("runs", 1, 0, Point(2.0)),
		RunRow("runs", 0, 0, Point(1.0)),
	}
	require.NoError(t, store.InsertBulk(ctx, rows))
	require.NoError(t, store.InsertBulk(ctx, []*domain.RunRow{RunRow("other", 0, 0, Point(1.0))}))

	got, err := store.GetBySweep(ctx, "runs")
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, want := range []struct{ grid, run int }{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		assert.Equal(t, want.grid, got[i].GridIndex, "row %d grid index", i)
		assert.Equal(t, want.run, got[i].RunIndex, "row %d run index", i)
	}

	one, err := store.GetByID(ctx, rows[0].RunID)
	require.NoError(t, err)
	assert.Equal(t, rows[0].Point, one.Point)
	assert.Equal(t, rows[0].Seed, one.Seed)
	assert.Equal(t, rows[0].Result.FailedAttacks, one.Result.FailedAttacks)
	assert.Equal(t, rows[0].Result.TotalTransactions, one.Result.TotalTransactions)
	assert.InDelta(t, rows[0].Result.HonestShareOfRevenue, one.Result.HonestShareOfRevenue, 1e-12)
	assert.InDelta(t, rows[0].TotalRevenue, one.TotalRevenue, 1e-12)
	assert.Equal(t, rows[0].DisputeResolutions, one.DisputeResolutions)
	assert.Equal(t, rows[0].SuccessfulGriefs, one.SuccessfulGriefs)
	assert.Equal(t, rows[0].GriefAttempts, one.GriefAttempts)
	assert.InDelta(t, rows[0].Result.CollusionDetectionPerAttempt, one.Result.CollusionDetectionPerAttempt, 1e-12)
	assert.Equal(t, rows[0].Result.StakeAtRiskCurves, one.Result.StakeAtRiskCurves, "sparse probes should round-trip")

	// Batch with an existing key is rejected as a whole.
	err = store.InsertBulk(ctx, []*domain.RunRow{RunRow("runs", 2, 0, Point(5.0)), rows[0]})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)
	got, err = store.GetBySweep(ctx, "runs")
	require.NoError(t, err)
	assert.Len(t, got, 4, "failed batch must not be partially applied")

	_, err = store.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)

	err = store.InsertBulk(ctx, []*domain.RunRow{{SweepID: "runs"}})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)

	assert.NoError(t, store.InsertBulk(ctx, nil))
}

func testSummaries(t *testing.T, store storage.SummaryStore) {
	ctx := context.Background()

	rows := []*domain.SummaryRow{
		SummaryRow("summ", Point(5.0)),
		SummaryRow("summ", Point(0.5)),
	}
	require.NoError(t, store.InsertBulk(ctx, rows))

	got, err := store.GetBySweep(ctx, "summ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.5, got[0].Point.StakeLevel)
	assert.Equal(t, 5.0, got[1].Point.StakeLevel)
	assert.Equal(t, 2, got[0].NumRuns)
	assert.Equal(t, -2, got[0].TotalFailedAttacks)
	for _, m := range domain.OutcomeMetrics {
		assert.InDelta(t, rows[1].Stats[m].Mean, got[0].Stats[m].Mean, 1e-12, "mean %s", m)
		assert.InDelta(t, rows[1].Stats[m].Std, got[0].Stats[m].Std, 1e-12, "std %s", m)
	}

	err = store.InsertBulk(ctx, []*domain.SummaryRow{SummaryRow("summ", Point(0.5))})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	empty, err := store.GetBySweep(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testSensitivities(t *testing.T, store storage.SensitivityStore) {
	ctx := context.Background()

	rows := []*domain.SensitivityRow{
		SensitivityRow("sens", domain.ParamStakeLevel, domain.MetricLiveness),
		SensitivityRow("sens", domain.ParamCollusionSize, domain.MetricHonestShare),
		SensitivityRow("sens", domain.ParamCollusionSize, domain.MetricExpectedLoss),
	}
	require.NoError(t, store.InsertBulk(ctx, rows))

	got, err := store.GetBySweep(ctx, "sens")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.ParamCollusionSize, got[0].Parameter)
	assert.Equal(t, domain.MetricExpectedLoss, got[0].Metric)
	assert.Equal(t, domain.MetricHonestShare, got[1].Metric)
	assert.Equal(t, domain.ParamStakeLevel, got[2].Parameter)
	assert.InDelta(t, -0.0125, got[2].Sensitivity, 1e-12)

	err = store.InsertBulk(ctx, []*domain.SensitivityRow{rows[0]})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	err = store.InsertBulk(ctx, []*domain.SensitivityRow{{SweepID: "sens"}})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput), "expected ErrInvalidInput, got %v", err)
}
