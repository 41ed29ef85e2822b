package storage

import (
	"errors"
	"fmt"
)

// Sentinels shared by every result store backend. Callers match them with errors.Is.
var (
	// ErrNotFound means no sweep or run exists under the requested ID.
	ErrNotFound = errors.New("result not found")

	// ErrDuplicateKey means a row with the same key was already written.
	// Sweep results are written once and never updated.
	ErrDuplicateKey = errors.New("result already stored")

	ErrInvalidInput = errors.New("invalid result row")
)

// missingKey reports a row rejected before insert because a key column is empty.
func missingKey(table, column string) error {
	return fmt.Errorf("%w: %s.%s is required", ErrInvalidInput, table, column)
}
