// Package agent holds the agent record and the archetype decision policies.
package agent

import (
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// SolvencyFloor is the minimum stake an agent needs to act in an epoch.
const SolvencyFloor = 0.1

// Agent is the shared economic record of one participant.
// Archetype-specific behaviour lives in the attached Policy.
type Agent struct {
	ID           int
	Archetype    domain.Archetype
	Stake        float64
	InitialStake float64
	Reputation   float64
	Balance      float64
	TotalRevenue float64
	TotalLosses  float64
	DisputesWon  int
	DisputesLost int
	Active       bool

	policy Policy
}

// NewAgent creates an active agent driven by policy.
func NewAgent(id int, stake, reputation float64, policy Policy) *Agent {
	return &Agent{
		ID:           id,
		Archetype:    policy.Archetype(),
		Stake:        stake,
		InitialStake: stake,
		Reputation:   clampUnit(reputation),
		Active:       true,
		policy:       policy,
	}
}

// Policy returns the attached decision policy.
func (a *Agent) Policy() Policy {
	return a.policy
}

// Solvent reports whether stake meets the solvency floor.
func (a *Agent) Solvent() bool {
	return a.Stake >= SolvencyFloor
}

// Decide asks the policy for this epoch's action.
func (a *Agent) Decide(epoch int, state domain.NetworkState, rng *rand.Rand) domain.Action {
	action := a.policy.Decide(a, epoch, state, rng)
	action.AgentID = a.ID
	action.Archetype = a.Archetype
	return action
}

// Apply books an outcome: balance, revenue, losses and the clamped
// reputation, then the archetype side effect.
func (a *Agent) Apply(reward, penalty, reputationDelta float64) {
	a.Balance += reward - penalty
	a.TotalRevenue += reward
	a.TotalLosses += penalty
	a.Reputation = clampUnit(a.Reputation + reputationDelta)
	a.policy.OnApply(a, reward, penalty)
}

// Decay multiplies reputation by (1 - rate), floored at 0.
func (a *Agent) Decay(rate float64) {
	a.Reputation = clampUnit(a.Reputation * (1 - rate))
}

// State returns a copy of the agent's state.
func (a *Agent) State() domain.AgentState {
	return domain.AgentState{
		AgentID:      a.ID,
		Archetype:    a.Archetype,
		Stake:        a.Stake,
		InitialStake: a.InitialStake,
		Reputation:   a.Reputation,
		Balance:      a.Balance,
		TotalRevenue: a.TotalRevenue,
		TotalLosses:  a.TotalLosses,
		DisputesWon:  a.DisputesWon,
		DisputesLost: a.DisputesLost,
		Active:       a.Active,
		Intensity:    a.policy.Intensity(),
	}
}
