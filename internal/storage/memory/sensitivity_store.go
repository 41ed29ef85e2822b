package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SensitivityStore is an in-memory implementation of storage.SensitivityStore.
type SensitivityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SensitivityRow
}

// NewSensitivityStore creates a new in-memory sensitivity store.
func NewSensitivityStore() *SensitivityStore {
	return &SensitivityStore{data: make(map[string]*domain.SensitivityRow)}
}

func sensitivityKey(s *domain.SensitivityRow) string {
	return fmt.Sprintf("%s|%s|%s", s.SweepID, s.Parameter, s.Metric)
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *SensitivityStore) InsertBulk(_ context.Context, rows []*domain.SensitivityRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if err := storage.ValidateSensitivity(r); err != nil {
			return err
		}
		key := sensitivityKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.data[sensitivityKey(r)] = &rowCopy
	}
	return nil
}

// GetBySweep retrieves all rows of a sweep ordered by parameter, metric ASC.
func (s *SensitivityStore) GetBySweep(_ context.Context, sweepID string) ([]*domain.SensitivityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SensitivityRow
	for _, r := range s.data {
		if r.SweepID == sweepID {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Parameter != result[j].Parameter {
			return result[i].Parameter < result[j].Parameter
		}
		return result[i].Metric < result[j].Metric
	})
	return result, nil
}

var _ storage.SensitivityStore = (*SensitivityStore)(nil)
