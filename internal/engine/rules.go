package engine

import (
	"econ-sim-lab/internal/domain"
)

// Fixed rule constants.
const (
	DisputeProbability      = 0.1
	CollusionBonus          = 1.5
	DetectedReputationDelta = -0.3
	GriefReputationDelta    = -0.2
	HoardReputationDelta    = 0.1
	LostDisputeDelta        = -0.1
)

// resolve converts an action into its outcome and updates engine counters.
// Draws happen in a fixed order: attack roll, then dispute roll, then dispute result.
func (m *EconomicModel) resolve(action domain.Action) domain.Outcome {
	a := m.agents[action.AgentID]
	eco := m.cfg.Economic
	atk := m.cfg.Attacks

	reward := eco.BaseReward * action.Quality * (1 + (a.Reputation-0.5)*eco.ReputationMultiplier)
	if reward < 0 {
		reward = 0
	}
	penalty := 0.0
	delta := 0.0

	out := domain.Outcome{
		AgentID:   action.AgentID,
		Archetype: action.Archetype,
		Kind:      action.Kind,
	}

	switch {
	case action.Collude:
		m.counters.CollusionAttempts++
		if m.rng.Float64() < atk.CollusionDetectionProb {
			penalty = reward * atk.CollusionPenaltyMultiplier
			delta = DetectedReputationDelta
			out.Detected = true
			m.counters.CollusionDetections++
		} else {
			reward *= CollusionBonus
		}

	case action.Grief:
		m.counters.GriefAttempts++
		penalty = atk.GriefingCost
		delta = GriefReputationDelta
		if m.rng.Float64() < atk.GriefingEffectiveness {
			out.GriefSucceeded = true
			m.counters.SuccessfulGriefs++
		}

	case action.Hoard:
		penalty = atk.HoardingCost
		if m.rng.Float64() < atk.HoardingEfficiency {
			delta += HoardReputationDelta
		}
	}

	if m.rng.Float64() < DisputeProbability {
		out.Disputed = true
		if m.rng.Float64() < a.Reputation {
			a.DisputesWon++
			reward += eco.DisputeCost
			out.DisputeWon = true
		} else {
			a.DisputesLost++
			penalty += eco.DisputePenalty
			delta += LostDisputeDelta
		}
		m.counters.DisputeResolutions++
	}

	m.counters.TotalRevenue += reward

	out.Reward = reward
	out.Penalty = penalty
	out.ReputationDelta = delta
	return out
}
