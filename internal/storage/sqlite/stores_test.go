package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/storage/migrations"
	"econ-sim-lab/internal/storage/sqlite"
	"econ-sim-lab/internal/storage/storagetest"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))
	return db
}

func TestSQLiteStores_Conformance(t *testing.T) {
	storagetest.RunConformance(t, sqlite.NewStores(openTestDB(t)))
}

func TestMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))

	store := sqlite.NewSweepStore(db)
	require.NoError(t, store.Insert(ctx, storagetest.Sweep("mem", 1)))
	got, err := store.GetByID(ctx, "mem")
	require.NoError(t, err)
	assert.Equal(t, "mem", got.SweepID)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), " ")
	assert.Error(t, err)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.db")

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}

func TestRunStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))

	row := storagetest.RunRow("persist", 0, 1, storagetest.Point(5.0))
	require.NoError(t, sqlite.NewRunStore(db).InsertBulk(ctx, []*domain.RunRow{row}))
	require.NoError(t, db.Close())

	db, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := sqlite.NewRunStore(db).GetBySweep(ctx, "persist")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, row, got[0])
}

func TestRunStore_InvalidInput(t *testing.T) {
	store := sqlite.NewRunStore(openTestDB(t))
	err := store.InsertBulk(context.Background(), []*domain.RunRow{{SweepID: "x"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
