package agent

import (
	"math"
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// ColluderPolicy coordinates with a collusion group.
// Coordination rises each epoch while the agent has peers and drops
// after an epoch that cost more than it paid.
type ColluderPolicy struct {
	Group        []int // member ids including this agent; empty when ungrouped
	Coordination float64
}

// NewColluderPolicy creates a ColluderPolicy for the given group.
func NewColluderPolicy(group []int) *ColluderPolicy {
	return &ColluderPolicy{Group: append([]int(nil), group...)}
}

// Archetype returns domain.ArchetypeColluder.
func (p *ColluderPolicy) Archetype() domain.Archetype {
	return domain.ArchetypeColluder
}

// hasPeers reports whether the group contains anyone besides the agent.
func (p *ColluderPolicy) hasPeers() bool {
	return len(p.Group) >= 2
}

// Decide colludes with probability equal to the coordination score.
// Colluding commits 30% of stake at quality ~ U(0.3, 0.7) and carries the group;
// otherwise it contributes 10% of stake at quality ~ U(0.6, 0.9).
func (p *ColluderPolicy) Decide(a *Agent, _ int, _ domain.NetworkState, rng *rand.Rand) domain.Action {
	if p.hasPeers() {
		p.Coordination = math.Min(1.0, p.Coordination+0.1)
	}

	if rng.Float64() < p.Coordination {
		return domain.Action{
			Kind:           domain.ActionCollude,
			StakeCommitted: a.Stake * 0.3,
			Quality:        uniform(rng, 0.3, 0.7),
			Collude:        true,
			CollusionGroup: append([]int(nil), p.Group...),
		}
	}

	return domain.Action{
		Kind:           domain.ActionContribute,
		StakeCommitted: a.Stake * 0.1,
		Quality:        uniform(rng, 0.6, 0.9),
	}
}

// OnApply lowers coordination by 0.2 (floor 0) on a net loss.
func (p *ColluderPolicy) OnApply(_ *Agent, reward, penalty float64) {
	if penalty > reward {
		p.Coordination = math.Max(0, p.Coordination-0.2)
	}
}

// Intensity returns the coordination score.
func (p *ColluderPolicy) Intensity() float64 {
	return p.Coordination
}

// Ensure ColluderPolicy implements Policy
var _ Policy = (*ColluderPolicy)(nil)
