package engine

import (
	"errors"
	"fmt"
)

// Engine errors
var (
	ErrAlreadyInitialized = errors.New("agents already initialized")
	ErrNotInitialized     = errors.New("agents not initialized")
	ErrNoStakeLevels      = errors.New("at least one stake level is required")
)

// InvariantError reports an internal modelling bug: a bound the engine
// guarantees was violated. It is not recoverable.
type InvariantError struct {
	Check   string // e.g. "reputation_bounds", "revenue_conservation"
	AgentID int    // -1 for engine-wide checks
	Epoch   int
	Value   float64
}

func (e *InvariantError) Error() string {
	if e.AgentID < 0 {
		return fmt.Sprintf("invariant %s violated at epoch %d: value %v", e.Check, e.Epoch, e.Value)
	}
	return fmt.Sprintf("invariant %s violated for agent %d at epoch %d: value %v", e.Check, e.AgentID, e.Epoch, e.Value)
}

// IsInvariant reports whether err wraps an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
