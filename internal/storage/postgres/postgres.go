// Package postgres implements the result stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"econ-sim-lab/internal/storage"
)

const applicationName = "econsim"

// uniqueViolation is the SQLSTATE raised when a primary key already exists.
const uniqueViolation = "23505"

// Pool is the shared pgx pool behind all PostgreSQL stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and pings the server. Connections report
// application_name=econsim unless the DSN sets its own.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// insertBatch sends one insert per argument list inside a single transaction.
// Any failure rolls back the whole batch.
func (p *Pool) insertBatch(ctx context.Context, query, what string, args [][]any) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s batch: %w", what, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range args {
		batch.Queue(query, a...)
	}
	br := tx.SendBatch(ctx, batch)
	for range args {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return translate(err, "insert "+what)
		}
	}
	if err := br.Close(); err != nil {
		return translate(err, "insert "+what)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s batch: %w", what, err)
	}
	return nil
}

// translate maps pgx errors onto the storage sentinels and wraps the rest with op.
func translate(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewStores bundles all PostgreSQL stores over pool. Closing the bundle closes the pool.
func NewStores(pool *Pool) *storage.Stores {
	return storage.NewStores(
		NewSweepStore(pool),
		NewRunStore(pool),
		NewSummaryStore(pool),
		NewSensitivityStore(pool),
		func() error {
			pool.Close()
			return nil
		},
	)
}
