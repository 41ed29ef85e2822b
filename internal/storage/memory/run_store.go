package memory

import (
	"context"
	"sort"
	"sync"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunRow // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{data: make(map[string]*domain.RunRow)}
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *RunStore) InsertBulk(_ context.Context, rows []*domain.RunRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if err := storage.ValidateRun(r); err != nil {
			return err
		}
		if _, exists := s.data[r.RunID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.RunID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.RunID] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range rows {
		s.data[r.RunID] = r.Clone()
	}
	return nil
}

// GetByID retrieves a row by run_id. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.RunRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

// GetBySweep retrieves all rows of a sweep ordered by grid_index, run_index ASC.
func (s *RunStore) GetBySweep(_ context.Context, sweepID string) ([]*domain.RunRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunRow
	for _, r := range s.data {
		if r.SweepID == sweepID {
			result = append(result, r.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GridIndex != result[j].GridIndex {
			return result[i].GridIndex < result[j].GridIndex
		}
		return result[i].RunIndex < result[j].RunIndex
	})
	return result, nil
}

var _ storage.RunStore = (*RunStore)(nil)
