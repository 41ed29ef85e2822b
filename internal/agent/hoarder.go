package agent

import (
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// HoardTargetMultiple is the stake multiple at which a hoarder switches to influence mode.
const HoardTargetMultiple = 5.0

// HoarderMode is the hoarder's current strategy.
type HoarderMode string

const (
	// HoarderAccumulate contributes a small share of stake until the target is reached.
	HoarderAccumulate HoarderMode = "accumulate"
	// HoarderInfluence commits stake to influence actions.
	HoarderInfluence HoarderMode = "influence"
)

// HoarderPolicy accumulates stake conservatively, then spends it on influence.
type HoarderPolicy struct {
	Mode HoarderMode
}

// NewHoarderPolicy creates a HoarderPolicy in accumulate mode.
func NewHoarderPolicy() *HoarderPolicy {
	return &HoarderPolicy{Mode: HoarderAccumulate}
}

// Archetype returns domain.ArchetypeHoarder.
func (p *HoarderPolicy) Archetype() domain.Archetype {
	return domain.ArchetypeHoarder
}

// Decide switches permanently to influence mode once stake reaches
// HoardTargetMultiple times the initial stake.
func (p *HoarderPolicy) Decide(a *Agent, _ int, _ domain.NetworkState, rng *rand.Rand) domain.Action {
	if a.Stake >= a.InitialStake*HoardTargetMultiple {
		p.Mode = HoarderInfluence
	}

	if p.Mode == HoarderAccumulate {
		return domain.Action{
			Kind:           domain.ActionContribute,
			StakeCommitted: a.Stake * 0.05,
			Quality:        uniform(rng, 0.7, 0.9),
			Hoard:          true,
		}
	}

	return domain.Action{
		Kind:           domain.ActionInfluence,
		StakeCommitted: a.Stake * 0.3,
		Quality:        uniform(rng, 0.6, 0.8),
		Hoard:          true,
	}
}

// OnApply reinvests 80% of positive net profit into stake.
func (p *HoarderPolicy) OnApply(a *Agent, reward, penalty float64) {
	if net := reward - penalty; net > 0 {
		a.Stake += net * 0.8
	}
}

// Intensity returns 0.
func (p *HoarderPolicy) Intensity() float64 {
	return 0
}

// Ensure HoarderPolicy implements Policy
var _ Policy = (*HoarderPolicy)(nil)
