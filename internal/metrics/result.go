// Package metrics turns finished runs into result rows, per-point summary
// statistics and parameter sensitivities.
package metrics

import (
	"math"

	"econ-sim-lab/internal/domain"
)

// StakeProbeTolerance is the distance within which an agent's current stake
// counts toward a stake-at-risk probe.
const StakeProbeTolerance = 0.1

// ComputeResult derives the run's summary metrics from the final population
// and the engine counters. Only active agents are considered.
func ComputeResult(snap domain.RunSnapshot) domain.SimulationResult {
	c := snap.Counters

	var (
		active       []domain.AgentState
		honestRev    float64
		honestLosses []float64
		colluders    int
		griefIntens  []float64
		hoardShares  []float64
	)
	for _, a := range snap.Agents {
		if a.Active {
			active = append(active, a)
		}
	}

	for _, a := range active {
		switch a.Archetype {
		case domain.ArchetypeHonest:
			honestRev += a.TotalRevenue
			honestLosses = append(honestLosses, a.TotalLosses)
		case domain.ArchetypeColluder:
			colluders++
		case domain.ArchetypeGriefer:
			griefIntens = append(griefIntens, a.Intensity)
		case domain.ArchetypeHoarder:
			if c.TotalStake > 0 {
				hoardShares = append(hoardShares, a.Stake/c.TotalStake)
			} else {
				hoardShares = append(hoardShares, 0)
			}
		}
	}

	res := domain.SimulationResult{
		HonestShareOfRevenue:   honestRev / math.Max(1, c.TotalRevenue),
		ExpectedLossForHonest:  computeMean(honestLosses),
		StakeAtRiskCurves:      stakeAtRiskCurves(active),
		CollusionDetectionRate: float64(c.CollusionDetections) / math.Max(1, float64(colluders)),
		GriefingEffectiveness:  computeMean(griefIntens),
		HoardingInfluence:      computeMean(hoardShares),
		TotalTransactions:      c.Epochs * snap.TransactionsPerEpoch,
		SuccessfulAttacks:      c.CollusionDetections,
		FailedAttacks:          colluders - c.CollusionDetections,

		CollusionDetectionPerAttempt: float64(c.CollusionDetections) / math.Max(1, float64(c.CollusionAttempts)),
	}
	if len(snap.Agents) > 0 {
		res.LivenessScore = float64(len(active)) / float64(len(snap.Agents))
	}
	return res
}

// stakeAtRiskCurves averages stake*(1-reputation) per probe level over agents
// whose stake lies within StakeProbeTolerance of it. Probes with no match are omitted.
func stakeAtRiskCurves(active []domain.AgentState) map[float64]float64 {
	curves := make(map[float64]float64)
	for _, probe := range domain.StakeProbeLevels {
		var risks []float64
		for _, a := range active {
			if math.Abs(a.Stake-probe) < StakeProbeTolerance {
				risks = append(risks, a.StakeAtRisk())
			}
		}
		if len(risks) > 0 {
			curves[probe] = computeMean(risks)
		}
	}
	return curves
}
