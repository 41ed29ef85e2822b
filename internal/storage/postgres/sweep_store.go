package postgres

import (
	"context"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SweepStore implements storage.SweepStore using PostgreSQL.
type SweepStore struct {
	pool *Pool
}

// NewSweepStore creates a new SweepStore.
func NewSweepStore(pool *Pool) *SweepStore {
	return &SweepStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SweepStore = (*SweepStore)(nil)

var (
	insertSweepSQL = storage.InsertSQL("sweeps", storage.SweepColumns, true)
	getSweepSQL    = storage.SelectSQL("sweeps", storage.SweepColumns, "sweep_id = $1", "")
	listSweepsSQL  = storage.SelectSQL("sweeps", storage.SweepColumns, "", "created_at DESC, sweep_id ASC")
)

// Insert adds a sweep record. Returns ErrDuplicateKey if sweep_id exists.
func (s *SweepStore) Insert(ctx context.Context, rec *domain.SweepRecord) error {
	if err := storage.ValidateSweep(rec); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, insertSweepSQL, storage.SweepValues(rec)...); err != nil {
		return translate(err, "insert sweep")
	}
	return nil
}

// GetByID retrieves a sweep by ID.
func (s *SweepStore) GetByID(ctx context.Context, sweepID string) (*domain.SweepRecord, error) {
	rec, err := storage.ScanSweep(s.pool.QueryRow(ctx, getSweepSQL, sweepID))
	if err != nil {
		return nil, translate(err, "get sweep")
	}
	return rec, nil
}

// List returns all sweeps, newest first.
func (s *SweepStore) List(ctx context.Context) ([]*domain.SweepRecord, error) {
	rows, err := s.pool.Query(ctx, listSweepsSQL)
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}
	defer rows.Close()

	var result []*domain.SweepRecord
	for rows.Next() {
		rec, err := storage.ScanSweep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sweep: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweeps: %w", err)
	}
	return result, nil
}
