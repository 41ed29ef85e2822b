package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage/postgres"
	"econ-sim-lab/internal/storage/storagetest"
)

func TestPostgresStores_Conformance(t *testing.T) {
	pool := startPostgres(t)

	storagetest.RunConformance(t, postgres.NewStores(pool))
}

func TestRunStore_NullProbesRoundTrip(t *testing.T) {
	pool := startPostgres(t)

	ctx := context.Background()
	store := postgres.NewRunStore(pool)

	row := storagetest.RunRow("nulls", 0, 1, storagetest.Point(2.0))
	require.NoError(t, store.InsertBulk(ctx, []*domain.RunRow{row}))

	got, err := store.GetByID(ctx, row.RunID)
	require.NoError(t, err)
	assert.Equal(t, row.Result.StakeAtRiskCurves, got.Result.StakeAtRiskCurves)
	assert.Equal(t, -1, got.Result.FailedAttacks)
}
