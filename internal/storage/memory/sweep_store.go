// Package memory provides in-memory implementations of the storage interfaces.
// Used by tests and by sweeps run without a persistent backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SweepStore is an in-memory implementation of storage.SweepStore.
type SweepStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SweepRecord
}

// NewSweepStore creates a new in-memory sweep store.
func NewSweepStore() *SweepStore {
	return &SweepStore{data: make(map[string]*domain.SweepRecord)}
}

// Insert adds a sweep record. Returns ErrDuplicateKey if sweep_id exists.
func (s *SweepStore) Insert(_ context.Context, rec *domain.SweepRecord) error {
	if err := storage.ValidateSweep(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.SweepID]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *rec
	s.data[rec.SweepID] = &recCopy
	return nil
}

// GetByID retrieves a sweep by its ID. Returns ErrNotFound if not exists.
func (s *SweepStore) GetByID(_ context.Context, sweepID string) (*domain.SweepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[sweepID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

// List returns all sweeps ordered by created_at DESC, sweep_id ASC.
func (s *SweepStore) List(_ context.Context) ([]*domain.SweepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SweepRecord, 0, len(s.data))
	for _, rec := range s.data {
		recCopy := *rec
		result = append(result, &recCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].SweepID < result[j].SweepID
	})
	return result, nil
}

var _ storage.SweepStore = (*SweepStore)(nil)
