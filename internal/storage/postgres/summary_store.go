package postgres

import (
	"context"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

var (
	insertSummarySQL = storage.InsertSQL("summary_stats", storage.SummaryColumns, true)
	getSummariesSQL  = storage.SelectSQL("summary_stats", storage.SummaryColumns, "sweep_id = $1",
		"stake_level ASC, reputation_decay ASC, collusion_size ASC, sybil_cost ASC")
)

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *SummaryStore) InsertBulk(ctx context.Context, rows []*domain.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateSummary(r); err != nil {
			return err
		}
		args[i] = storage.SummaryValues(r)
	}
	return s.pool.insertBatch(ctx, insertSummarySQL, "summary", args)
}

// GetBySweep retrieves all summary rows of a sweep in grid point order.
func (s *SummaryStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SummaryRow, error) {
	rows, err := s.pool.Query(ctx, getSummariesSQL, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.SummaryRow
	for rows.Next() {
		r, err := storage.ScanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return result, nil
}
