package agent

import (
	"math"
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// HonestPolicy always contributes high-quality work with a conservative stake.
type HonestPolicy struct{}

// NewHonestPolicy creates a new HonestPolicy.
func NewHonestPolicy() *HonestPolicy {
	return &HonestPolicy{}
}

// Archetype returns domain.ArchetypeHonest.
func (p *HonestPolicy) Archetype() domain.Archetype {
	return domain.ArchetypeHonest
}

// Decide commits min(10% of stake, 1.0) with quality ~ U(0.8, 1.0).
func (p *HonestPolicy) Decide(a *Agent, _ int, _ domain.NetworkState, rng *rand.Rand) domain.Action {
	return domain.Action{
		Kind:           domain.ActionContribute,
		StakeCommitted: math.Min(a.Stake*0.1, 1.0),
		Quality:        uniform(rng, 0.8, 1.0),
	}
}

// OnApply reinvests 10% of positive net profit into stake.
func (p *HonestPolicy) OnApply(a *Agent, reward, penalty float64) {
	if net := reward - penalty; net > 0 {
		a.Stake += net * 0.1
	}
}

// Intensity returns 0.
func (p *HonestPolicy) Intensity() float64 {
	return 0
}

// Ensure HonestPolicy implements Policy
var _ Policy = (*HonestPolicy)(nil)
