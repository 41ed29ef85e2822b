package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"econ-sim-lab/internal/storage/migrations"
	"econ-sim-lab/internal/storage/postgres"
)

// startPostgres runs a throwaway postgres with the schema applied twice,
// which also checks the migrations are idempotent.
func startPostgres(t *testing.T) *postgres.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker; skipped in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("econ_results"),
		tcpostgres.WithUsername("econsim"),
		tcpostgres.WithPassword("econsim"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "connect postgres")
	t.Cleanup(pool.Close)

	for i := 0; i < 2; i++ {
		require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "migrate postgres (pass %d)", i+1)
	}
	return pool
}
