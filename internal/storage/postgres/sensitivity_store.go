package postgres

import (
	"context"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SensitivityStore implements storage.SensitivityStore using PostgreSQL.
type SensitivityStore struct {
	pool *Pool
}

// NewSensitivityStore creates a new SensitivityStore.
func NewSensitivityStore(pool *Pool) *SensitivityStore {
	return &SensitivityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SensitivityStore = (*SensitivityStore)(nil)

var (
	insertSensitivitySQL = storage.InsertSQL("parameter_sensitivity", storage.SensitivityColumns, true)
	getSensitivitiesSQL  = storage.SelectSQL("parameter_sensitivity", storage.SensitivityColumns, "sweep_id = $1", "parameter ASC, metric ASC")
)

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *SensitivityStore) InsertBulk(ctx context.Context, rows []*domain.SensitivityRow) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateSensitivity(r); err != nil {
			return err
		}
		args[i] = storage.SensitivityValues(r)
	}
	return s.pool.insertBatch(ctx, insertSensitivitySQL, "sensitivity", args)
}

// GetBySweep retrieves all sensitivity rows of a sweep.
func (s *SensitivityStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SensitivityRow, error) {
	rows, err := s.pool.Query(ctx, getSensitivitiesSQL, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query sensitivities: %w", err)
	}
	defer rows.Close()

	var result []*domain.SensitivityRow
	for rows.Next() {
		r, err := storage.ScanSensitivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sensitivity: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensitivities: %w", err)
	}
	return result, nil
}
