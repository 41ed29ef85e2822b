package migrations

import (
	"context"
	"fmt"

	chstore "econ-sim-lab/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the target database if needed and applies
// all embedded ClickHouse files. Returns a connection to the target database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	opts, err := chstore.ParseOptions(dsn)
	if err != nil {
		return nil, err
	}
	dbName := opts.Auth.Database
	if dbName == "" {
		return nil, fmt.Errorf("clickhouse dsn missing database")
	}

	admin := *opts
	admin.Auth.Database = ""
	adminConn, err := chstore.Dial(ctx, &admin)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		adminConn.Close()
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}
	if err := adminConn.Close(); err != nil {
		return nil, fmt.Errorf("close admin connection: %w", err)
	}

	conn, err := chstore.Dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	// The native driver rejects multi-statement Exec.
	err = apply(ctx, Schemas, "clickhouse", true, func(ctx context.Context, sql string) error {
		return conn.Exec(ctx, sql)
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
