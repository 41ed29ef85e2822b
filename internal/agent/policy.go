package agent

import (
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// Policy decides an agent's action each epoch and applies the
// archetype-specific side effect of its outcome.
// A Policy instance belongs to exactly one agent.
type Policy interface {
	// Archetype returns the behavioural class this policy implements.
	Archetype() domain.Archetype

	// Decide returns the action for the epoch.
	// All randomness must be drawn from rng.
	Decide(a *Agent, epoch int, state domain.NetworkState, rng *rand.Rand) domain.Action

	// OnApply runs after the shared bookkeeping of Agent.Apply.
	OnApply(a *Agent, reward, penalty float64)

	// Intensity returns the policy's adaptive score, or 0 if it has none.
	Intensity() float64
}
