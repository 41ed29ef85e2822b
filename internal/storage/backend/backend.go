// Package backend opens the result stores selected by the storage configuration.
package backend

import (
	"context"
	"fmt"

	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/storage/clickhouse"
	"econ-sim-lab/internal/storage/memory"
	"econ-sim-lab/internal/storage/migrations"
	"econ-sim-lab/internal/storage/postgres"
	"econ-sim-lab/internal/storage/sqlite"
)

// Backend names accepted by storage.backend.
const (
	Memory     = "memory"
	SQLite     = "sqlite"
	Postgres   = "postgres"
	Clickhouse = "clickhouse"
)

// Open connects to the configured backend, applies its migrations and
// returns the store bundle. An empty backend selects memory.
// The caller must Close the returned stores.
func Open(ctx context.Context, cfg config.StorageConfig) (*storage.Stores, error) {
	switch cfg.Backend {
	case "", Memory:
		return memory.NewStores(), nil

	case SQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite migrations: %w", err)
		}
		return sqlite.NewStores(db), nil

	case Postgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return postgres.NewStores(pool), nil

	case Clickhouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		return clickhouse.NewStores(conn), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
