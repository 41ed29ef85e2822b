package storage

import (
	"context"

	"econ-sim-lab/internal/domain"
)

// SweepStore provides access to sweeps storage.
type SweepStore interface {
	// Insert adds a sweep record. Returns ErrDuplicateKey if sweep_id exists.
	Insert(ctx context.Context, s *domain.SweepRecord) error

	// GetByID retrieves a sweep by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sweepID string) (*domain.SweepRecord, error)

	// List returns all sweeps ordered by created_at DESC, sweep_id ASC.
	List(ctx context.Context) ([]*domain.SweepRecord, error)
}

// RunStore provides access to run_results storage.
type RunStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate run_id.
	InsertBulk(ctx context.Context, rows []*domain.RunRow) error

	// GetByID retrieves a row by run_id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRow, error)

	// GetBySweep retrieves all rows of a sweep ordered by grid_index, run_index ASC.
	GetBySweep(ctx context.Context, sweepID string) ([]*domain.RunRow, error)
}

// SummaryStore provides access to summary_stats storage.
type SummaryStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate
	// (sweep_id, stake_level, reputation_decay, collusion_size, sybil_cost).
	InsertBulk(ctx context.Context, rows []*domain.SummaryRow) error

	// GetBySweep retrieves all rows of a sweep ordered by grid point ASC.
	GetBySweep(ctx context.Context, sweepID string) ([]*domain.SummaryRow, error)
}

// SensitivityStore provides access to parameter_sensitivity storage.
type SensitivityStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate
	// (sweep_id, parameter, metric).
	InsertBulk(ctx context.Context, rows []*domain.SensitivityRow) error

	// GetBySweep retrieves all rows of a sweep ordered by parameter, metric ASC.
	GetBySweep(ctx context.Context, sweepID string) ([]*domain.SensitivityRow, error)
}

// Stores bundles the stores of one backend.
type Stores struct {
	Sweeps        SweepStore
	Runs          RunStore
	Summaries     SummaryStore
	Sensitivities SensitivityStore

	closer func() error
}

// NewStores bundles stores with an optional close function for the backing connection.
func NewStores(sweeps SweepStore, runs RunStore, summaries SummaryStore, sens SensitivityStore, closer func() error) *Stores {
	return &Stores{
		Sweeps:        sweeps,
		Runs:          runs,
		Summaries:     summaries,
		Sensitivities: sens,
		closer:        closer,
	}
}

// Close releases the backing connection, if any.
func (s *Stores) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
