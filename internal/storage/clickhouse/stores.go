package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// Compile-time interface checks.
var (
	_ storage.SweepStore       = (*SweepStore)(nil)
	_ storage.RunStore         = (*RunStore)(nil)
	_ storage.SummaryStore     = (*SummaryStore)(nil)
	_ storage.SensitivityStore = (*SensitivityStore)(nil)
)

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// insertBatch appends every value list to one batch and sends it.
func (c *Conn) insertBatch(ctx context.Context, table string, cols []string, values [][]any) error {
	batch, err := c.PrepareBatch(ctx, batchSQL(table, cols))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, v := range values {
		if err := batch.Append(widen(v)...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// count returns the number of rows of table matching where.
func (c *Conn) count(ctx context.Context, table, where string, args ...any) (uint64, error) {
	var n uint64
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", table, where)
	if err := c.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("check exists: %w", err)
	}
	return n, nil
}

func scanAll[T any](rows chRows, what string, scan func(storage.Scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := scan(intScanner{rows})
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", what, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", what, err)
	}
	return result, nil
}

// SweepStore implements storage.SweepStore using ClickHouse.
type SweepStore struct {
	conn *Conn
}

// NewSweepStore creates a new SweepStore.
func NewSweepStore(conn *Conn) *SweepStore {
	return &SweepStore{conn: conn}
}

// Insert adds a sweep record. Returns ErrDuplicateKey if sweep_id exists.
func (s *SweepStore) Insert(ctx context.Context, rec *domain.SweepRecord) error {
	if err := storage.ValidateSweep(rec); err != nil {
		return err
	}
	n, err := s.conn.count(ctx, "sweeps", "sweep_id = ?", rec.SweepID)
	if err != nil {
		return err
	}
	if n > 0 {
		return storage.ErrDuplicateKey
	}
	return s.conn.insertBatch(ctx, "sweeps", storage.SweepColumns, [][]any{storage.SweepValues(rec)})
}

// GetByID retrieves a sweep by ID.
func (s *SweepStore) GetByID(ctx context.Context, sweepID string) (*domain.SweepRecord, error) {
	query := storage.SelectSQL("sweeps", storage.SweepColumns, "sweep_id = ?", "") + " LIMIT 1"
	rec, err := storage.ScanSweep(intScanner{s.conn.QueryRow(ctx, query, sweepID)})
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
	rows, err := s.conn.Query(ctx, storage.SelectSQL("sweeps", storage.SweepColumns, "", "created_at DESC, sweep_id ASC"))
	if err != nil {
		return nil, fmt.Errorf("list sweeps: %w", err)
	}
	return scanAll(rows, "sweep", storage.ScanSweep)
}

// RunStore implements storage.RunStore using ClickHouse.
type RunStore struct {
	conn *Conn
}

// NewRunStore creates a new RunStore.
func NewRunStore(conn *Conn) *RunStore {
	return &RunStore{conn: conn}
}

// InsertBulk adds multiple rows in one batch. Fails entire batch on any duplicate run_id.
func (s *RunStore) InsertBulk(ctx context.Context, rows []*domain.RunRow) error {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(rows))
	values := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateRun(r); err != nil {
			return err
		}
		if _, dup := seen[r.RunID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[r.RunID] = struct{}{}
		values[i] = storage.RunValues(r)
	}

	for _, r := range rows {
		n, err := s.conn.count(ctx, "run_results", "run_id = ?", r.RunID)
		if err != nil {
			return err
		}
		if n > 0 {
			return storage.ErrDuplicateKey
		}
	}

	return s.conn.insertBatch(ctx, "run_results", storage.RunColumns, values)
}

// GetByID retrieves a row by run_id.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunRow, error) {
	query := storage.SelectSQL("run_results", storage.RunColumns, "run_id = ?", "") + " LIMIT 1"
	r, err := storage.ScanRun(intScanner{s.conn.QueryRow(ctx, query, runID)})
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
	query := storage.SelectSQL("run_results", storage.RunColumns, "sweep_id = ?", "grid_index ASC, run_index ASC")
	rows, err := s.conn.Query(ctx, query, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanAll(rows, "run", storage.ScanRun)
}

// SummaryStore implements storage.SummaryStore using ClickHouse.
type SummaryStore struct {
	conn *Conn
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(conn *Conn) *SummaryStore {
	return &SummaryStore{conn: conn}
}

// InsertBulk adds multiple rows in one batch. Fails entire batch on any duplicate point.
func (s *SummaryStore) InsertBulk(ctx context.Context, rows []*domain.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}

	type key struct {
		sweep string
		point domain.GridPoint
	}
	seen := make(map[key]struct{}, len(rows))
	values := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateSummary(r); err != nil {
			return err
		}
		k := key{r.SweepID, r.Point}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		values[i] = storage.SummaryValues(r)
	}

	for _, r := range rows {
		p := r.Point
		n, err := s.conn.count(ctx, "summary_stats",
			"sweep_id = ? AND stake_level = ? AND reputation_decay = ? AND collusion_size = ? AND sybil_cost = ?",
			r.SweepID, p.StakeLevel, p.ReputationDecay, int64(p.CollusionSize), p.SybilCost)
		if err != nil {
			return err
		}
		if n > 0 {
			return storage.ErrDuplicateKey
		}
	}

	return s.conn.insertBatch(ctx, "summary_stats", storage.SummaryColumns, values)
}

// GetBySweep retrieves all summary rows of a sweep in grid point order.
func (s *SummaryStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SummaryRow, error) {
	query := storage.SelectSQL("summary_stats", storage.SummaryColumns, "sweep_id = ?",
		"stake_level ASC, reputation_decay ASC, collusion_size ASC, sybil_cost ASC")
	rows, err := s.conn.Query(ctx, query, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	return scanAll(rows, "summary", storage.ScanSummary)
}

// SensitivityStore implements storage.SensitivityStore using ClickHouse.
type SensitivityStore struct {
	conn *Conn
}

// NewSensitivityStore creates a new SensitivityStore.
func NewSensitivityStore(conn *Conn) *SensitivityStore {
	return &SensitivityStore{conn: conn}
}

// InsertBulk adds multiple rows in one batch. Fails entire batch on any duplicate.
func (s *SensitivityStore) InsertBulk(ctx context.Context, rows []*domain.SensitivityRow) error {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(rows))
	values := make([][]any, len(rows))
	for i, r := range rows {
		if err := storage.ValidateSensitivity(r); err != nil {
			return err
		}
		k := r.SweepID + "|" + r.Parameter + "|" + r.Metric
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		values[i] = storage.SensitivityValues(r)
	}

	for _, r := range rows {
		n, err := s.conn.count(ctx, "parameter_sensitivity",
			"sweep_id = ? AND parameter = ? AND metric = ?", r.SweepID, r.Parameter, r.Metric)
		if err != nil {
			return err
		}
		if n > 0 {
			return storage.ErrDuplicateKey
		}
	}

	return s.conn.insertBatch(ctx, "parameter_sensitivity", storage.SensitivityColumns, values)
}

// GetBySweep retrieves all sensitivity rows of a sweep.
func (s *SensitivityStore) GetBySweep(ctx context.Context, sweepID string) ([]*domain.SensitivityRow, error) {
	query := storage.SelectSQL("parameter_sensitivity", storage.SensitivityColumns, "sweep_id = ?", "parameter ASC, metric ASC")
	rows, err := s.conn.Query(ctx, query, sweepID)
	if err != nil {
		return nil, fmt.Errorf("query sensitivities: %w", err)
	}
	return scanAll(rows, "sensitivity", storage.ScanSensitivity)
}
