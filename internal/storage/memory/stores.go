package memory

import "econ-sim-lab/internal/storage"

// NewStores returns a fresh set of in-memory stores.
func NewStores() *storage.Stores {
	return storage.NewStores(NewSweepStore(), NewRunStore(), NewSummaryStore(), NewSensitivityStore(), nil)
}
