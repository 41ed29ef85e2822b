package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SummaryRow // keyed by composite key
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{data: make(map[string]*domain.SummaryRow)}
}

// summaryKey generates a unique key for a summary row.
func summaryKey(s *domain.SummaryRow) string {
	p := s.Point
	return fmt.Sprintf("%s|%v|%v|%d|%v", s.SweepID, p.StakeLevel, p.ReputationDecay, p.CollusionSize, p.SybilCost)
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *SummaryStore) InsertBulk(_ context.Context, rows []*domain.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if err := storage.ValidateSummary(r); err != nil {
			return err
		}
		key := summaryKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		s.data[summaryKey(r)] = r.Clone()
	}
	return nil
}

// GetBySweep retrieves all rows of a sweep ordered by grid point ASC.
func (s *SummaryStore) GetBySweep(_ context.Context, sweepID string) ([]*domain.SummaryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SummaryRow
	for _, r := range s.data {
		if r.SweepID == sweepID {
			result = append(result, r.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Point.Less(result[j].Point) })
	return result, nil
}

var _ storage.SummaryStore = (*SummaryStore)(nil)
