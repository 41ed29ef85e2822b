package agent

import (
	"math"
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// Griefing intensity bounds.
const (
	maxGriefIntensity = 1.0
	minGriefIntensity = 0.1
)

// GrieferPolicy disrupts the network without direct profit.
type GrieferPolicy struct {
	GriefIntensity float64
}

// NewGrieferPolicy creates a GrieferPolicy with intensity ~ U(0.5, 1.0).
func NewGrieferPolicy(rng *rand.Rand) *GrieferPolicy {
	return &GrieferPolicy{GriefIntensity: uniform(rng, 0.5, 1.0)}
}

// Archetype returns domain.ArchetypeGriefer.
func (p *GrieferPolicy) Archetype() domain.Archetype {
	return domain.ArchetypeGriefer
}

// Decide griefs with probability intensity * (1 - liveness).
// Griefing commits 50% of stake at quality ~ U(0.1, 0.4); otherwise it
// contributes 10% of stake at quality ~ U(0.5, 0.8).
func (p *GrieferPolicy) Decide(a *Agent, _ int, state domain.NetworkState, rng *rand.Rand) domain.Action {
	griefProb := p.GriefIntensity * (1 - state.Liveness)

	if rng.Float64() < griefProb {
		return domain.Action{
			Kind:           domain.ActionGrief,
			StakeCommitted: a.Stake * 0.5,
			Quality:        uniform(rng, 0.1, 0.4),
			Grief:          true,
		}
	}

	return domain.Action{
		Kind:           domain.ActionContribute,
		StakeCommitted: a.Stake * 0.1,
		Quality:        uniform(rng, 0.5, 0.8),
	}
}

// OnApply raises intensity by 0.1 on a net loss, otherwise lowers it by 0.05.
func (p *GrieferPolicy) OnApply(_ *Agent, reward, penalty float64) {
	if penalty > reward {
		p.GriefIntensity = math.Min(maxGriefIntensity, p.GriefIntensity+0.1)
	} else {
		p.GriefIntensity = math.Max(minGriefIntensity, p.GriefIntensity-0.05)
	}
}

// Intensity returns the griefing intensity.
func (p *GrieferPolicy) Intensity() float64 {
	return p.GriefIntensity
}

// Ensure GrieferPolicy implements Policy
var _ Policy = (*GrieferPolicy)(nil)
