package migrations

import (
	"context"

	"econ-sim-lab/internal/storage/sqlite"
)

// RunSQLiteMigrations applies all embedded SQLite files statement by statement.
func RunSQLiteMigrations(ctx context.Context, db *sqlite.DB) error {
	return apply(ctx, Schemas, "sqlite", true, func(ctx context.Context, sql string) error {
		_, err := db.ExecContext(ctx, sql)
		return err
	})
}
