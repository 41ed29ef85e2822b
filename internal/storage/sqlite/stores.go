package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

var (
	insertSweepSQL = storage.InsertSQL("sweeps", storage.SweepColumns, false)
	getSweepSQL    = storage.SelectSQL("sweeps", storage.SweepColumns, "sweep_id = ?", "")
	listSweepsSQL  = storage.SelectSQL("sweeps", storage.SweepColumns, "", "created_at DESC, sweep_id ASC")

	insertRunSQL      = storage.InsertSQL("run_results", storage.RunColumns, false)
	getRunSQL         = storage.SelectSQL("run_results", storage.RunColumns, "run_id = ?", "")
	getRunsBySweepSQL = storage.SelectSQL("run_results", storage.RunColumns, "sweep_id = ?", "grid_index ASC, run_index ASC")

	insertSummarySQL = storage.InsertSQL("summary_stats", storage.SummaryColumns, false)
	getSummariesSQL  = storage.SelectSQL("summary_stats", storage.SummaryColumns, "sweep_id = ?",
		"stake_level ASC, reputation_decay ASC, collusion_size ASC, sybil_cost ASC")

	insertSensitivitySQL = storage.InsertSQL("parameter_sensitivity", storage.SensitivityColumns, false)
	getSensitivitiesSQL  = storage.SelectSQL("parameter_sensitivity", storage.SensitivityColumns, "sweep_id = ?", "parameter ASC, metric ASC")
)

// Compile-time interface checks.
var (
	_ storage.SweepStore       = (*SweepStore)(nil)
	_ storage.RunStore         = (*RunStore)(nil)
	_ storage.SummaryStore     = (*SummaryStore)(nil)
	_ storage.SensitivityStore = (*SensitivityStore)(nil)
)

// SweepStore implements storage.SweepStore using SQLite.
type SweepStore struct {
	db *DB
}

// NewSweepStore creates a new SweepStore.
func NewSweepStore(db *DB) *SweepStore {
	return &SweepStore{db: db}
}

// Insert adds a sweep record. Returns ErrDuplicateKey if sweep_id exists.
func (s *SweepStore) Insert(ctx context.Context, rec *domain.SweepRecord) error {
	if err := storage.ValidateSweep(rec); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertSweepSQL, storage.SweepValues(rec)...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sweep: %w", err)
	}
	return nil
}

// GetByID retrieves a sweep by ID.
func (s *SweepStore) GetByID(ctx context.Context, sweepID string) (*domain.SweepRecord, error) {
	rec, err := storage.ScanSweep(s.db.QueryRowContext(ctx, getSweepSQL, sweepID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sweep: %w", err)
	}
	return rec, nil
}

// List returns all sweeps, newest first.
func (s *SweepStore) List(ctx context.Context) ([]*domain.SweepRecord, error) {
	return queryAll(ctx, s.db, "sweeps", listSweepsSQL, storage.ScanSweep)
}

// RunStore implements storage.RunStore using SQLite.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

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
	return s.db.insertAll(ctx, "run", insertRunSQL, args)
}

// GetByID retrieves a row by run_id.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRow, error) {
	r, err := storage.ScanRun(s.db.QueryRowContext(ctx, getRunSQL, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// GetBySweep retrieves all rows of a sweep in grid order.
func (s *RunStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.RunRow, error) {
	return queryAll(ctx, s.db, "runs", getRunsBySweepSQL, storage.ScanRun, sweepID)
}

// SummaryStore implements storage.SummaryStore using SQLite.
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

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
	return s.db.insertAll(ctx, "summary", insertSummarySQL, args)
}

// GetBySweep retrieves all summary rows of a sweep in grid point order.
func (s *SummaryStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SummaryRow, error) {
	return queryAll(ctx, s.db, "summaries", getSummariesSQL, storage.ScanSummary, sweepID)
}

// SensitivityStore implements storage.SensitivityStore using SQLite.
type SensitivityStore struct {
	db *DB
}

// NewSensitivityStore creates a new SensitivityStore.
func NewSensitivityStore(db *DB) *SensitivityStore {
	return &SensitivityStore{db: db}
}

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
	return s.db.insertAll(ctx, "sensitivity", insertSensitivitySQL, args)
}

// GetBySweep retrieves all sensitivity rows of a sweep.
func (s *SensitivityStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SensitivityRow, error) {
	return queryAll(ctx, s.db, "sensitivities", getSensitivitiesSQL, storage.ScanSensitivity, sweepID)
}
