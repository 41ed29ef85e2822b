package engine

import (
	"math"

	"econ-sim-lab/internal/agent"
)

// Invariant check names.
const (
	CheckReputationBounds    = "reputation_bounds"
	CheckStakeNonNegative    = "stake_non_negative"
	CheckFinite              = "finite_values"
	CheckRevenueConservation = "revenue_conservation"
)

// conservationTolerance is the relative tolerance for revenue conservation.
const conservationTolerance = 1e-9

func checkAgent(a *agent.Agent, epoch int) error {
	for _, v := range []float64{a.Stake, a.Reputation, a.Balance, a.TotalRevenue, a.TotalLosses} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvariantError{Check: CheckFinite, AgentID: a.ID, Epoch: epoch, Value: v}
		}
	}
	if a.Reputation < 0 || a.Reputation > 1 {
		return &InvariantError{Check: CheckReputationBounds, AgentID: a.ID, Epoch: epoch, Value: a.Reputation}
	}
	if a.Stake < 0 {
		return &InvariantError{Check: CheckStakeNonNegative, AgentID: a.ID, Epoch: epoch, Value: a.Stake}
	}
	return nil
}

// checkConservation verifies that the increment to total revenue equals
// the sum of rewards recorded in the epoch's outcomes.
func checkConservation(before, after, rewards float64, epoch int) error {
	delta := after - before
	diff := math.Abs(delta - rewards)
	scale := math.Max(1, math.Max(math.Abs(after), math.Abs(rewards)))
	if diff > conservationTolerance*scale {
		return &InvariantError{Check: CheckRevenueConservation, AgentID: -1, Epoch: epoch, Value: diff}
	}
	return nil
}
