package postgres

import (
	"context"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

var (
	insertRunSQL      = storage.InsertSQL("run_results", storage.RunColumns, true)
	getRunSQL         = storage.SelectSQL("run_results", storage.RunColumns, "run_id = $1", "")
	getRunsBySweepSQL = storage.SelectSQL("run_results", storage.RunColumns, "sweep_id = $1", "grid_index ASC, run_index ASC")
)

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *RunStore) InsertBulk(ctx context.Context, rows []*domain.RunRow) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateRun(r); err != nil {
			return err
		}
		args[i] = storage.RunValues(r)
	}
	return s.pool.insertBatch(ctx, insertRunSQL, "run", args)
}

// GetByID retrieves a row by run_id.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRow, error) {
	r, err := storage.ScanRun(s.pool.QueryRow(ctx, getRunSQL, runID))
	if err != nil {
		return nil, translate(err, "get run")
	}
	return r, nil
}

// GetBySweep retrieves all rows of a sweep in grid order.
func (s *RunStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.RunRow, error) {
	rows, err := s.pool.Query(ctx, getRunsBySweepSQL, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRow
	for rows.Next() {
		r, err := storage.ScanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return result, nil
}
