package agent

import (
	"math"
	"math/rand"
	"testing"

	"econ-sim-lab/internal/domain"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestHonest_Decide(t *testing.T) {
	rng := newRNG()
	tests := []struct {
		name      string
		stake     float64
		wantStake float64
	}{
		{"small stake commits 10%", 2.0, 0.2},
		{"large stake capped at 1.0", 20.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent(0, tt.stake, 1.0, NewHonestPolicy())
			action := a.Decide(1, domain.NetworkState{Liveness: 1}, rng)

			if action.Kind != domain.ActionContribute {
				t.Errorf("expected contribute, got %s", action.Kind)
			}
			if action.StakeCommitted != tt.wantStake {
				t.Errorf("expected stake committed %v, got %v", tt.wantStake, action.StakeCommitted)
			}
			if action.Quality < 0.8 || action.Quality > 1.0 {
				t.Errorf("quality %v outside [0.8, 1.0]", action.Quality)
			}
			if action.Collude || action.Grief || action.Hoard {
				t.Errorf("honest action should carry no attack flags: %+v", action)
			}
			if action.AgentID != 0 || action.Archetype != domain.ArchetypeHonest {
				t.Errorf("action not stamped with agent identity: %+v", action)
			}
		})
	}
}

func TestHonest_ApplyReinvestsNetProfit(t *testing.T) {
	a := NewAgent(0, 2.0, 1.0, NewHonestPolicy())

	a.Apply(1.0, 0.2, 0.5)

	if !approxEqual(a.Balance, 0.8) {
		t.Errorf("expected balance 0.8, got %v", a.Balance)
	}
	if a.TotalRevenue != 1.0 || a.TotalLosses != 0.2 {
		t.Errorf("expected revenue 1.0 losses 0.2, got %v %v", a.TotalRevenue, a.TotalLosses)
	}
	if a.Reputation != 1.0 {
		t.Errorf("reputation should clamp at 1.0, got %v", a.Reputation)
	}
	if !approxEqual(a.Stake, 2.08) {
		t.Errorf("expected stake 2.08, got %v", a.Stake)
	}

	// Net loss leaves stake untouched.
	stake := a.Stake
	a.Apply(0.1, 0.6, -2.0)
	if a.Stake != stake {
		t.Errorf("net loss should not change stake, got %v", a.Stake)
	}
	if a.Reputation != 0 {
		t.Errorf("reputation should clamp at 0, got %v", a.Reputation)
	}
}

func TestColluder_CoordinationRisesWithPeers(t *testing.T) {
	rng := newRNG()
	p := NewColluderPolicy([]int{3, 4, 5})
	a := NewAgent(3, 1.0, 0.8, p)

	a.Decide(1, domain.NetworkState{}, rng)
	if p.Coordination != 0.1 {
		t.Fatalf("expected coordination 0.1 after one epoch, got %v", p.Coordination)
	}

	for i := 0; i < 15; i++ {
		a.Decide(i+2, domain.NetworkState{}, rng)
	}
	if p.Coordination != 1.0 {
		t.Fatalf("coordination should cap at 1.0, got %v", p.Coordination)
	}

	// At full coordination the agent always colludes.
	action := a.Decide(20, domain.NetworkState{}, rng)
	if !action.Collude || action.Kind != domain.ActionCollude {
		t.Fatalf("expected collusion at coordination 1.0, got %+v", action)
	}
	if action.StakeCommitted != 0.3 {
		t.Errorf("expected 30%% stake committed, got %v", action.StakeCommitted)
	}
	if action.Quality < 0.3 || action.Quality > 0.7 {
		t.Errorf("quality %v outside [0.3, 0.7]", action.Quality)
	}
	if len(action.CollusionGroup) != 3 || action.CollusionGroup[0] != 3 {
		t.Errorf("expected group [3 4 5], got %v", action.CollusionGroup)
	}

	// The action carries a copy of the group.
	action.CollusionGroup[0] = 99
	if p.Group[0] != 3 {
		t.Error("action group aliases policy group")
	}
}

func TestColluder_UngroupedNeverColludes(t *testing.T) {
	rng := newRNG()
	p := NewColluderPolicy(nil)
	a := NewAgent(0, 1.0, 0.8, p)

	for epoch := 1; epoch <= 50; epoch++ {
		action := a.Decide(epoch, domain.NetworkState{}, rng)
		if action.Collude {
			t.Fatalf("ungrouped colluder colluded at epoch %d", epoch)
		}
		if action.Quality < 0.6 || action.Quality > 0.9 {
			t.Errorf("quality %v outside [0.6, 0.9]", action.Quality)
		}
	}
	if p.Coordination != 0 {
		t.Errorf("expected coordination 0, got %v", p.Coordination)
	}
}

func TestColluder_NetLossLowersCoordination(t *testing.T) {
	p := &ColluderPolicy{Group: []int{0, 1}, Coordination: 0.5}
	a := NewAgent(0, 1.0, 0.8, p)

	a.Apply(0.4, 1.0, -0.3)
	if !approxEqual(p.Coordination, 0.3) {
		t.Errorf("expected coordination 0.3, got %v", p.Coordination)
	}

	a.Apply(0.1, 1.0, 0)
	a.Apply(0.1, 1.0, 0)
	if p.Coordination != 0 {
		t.Errorf("coordination should floor at 0, got %v", p.Coordination)
	}

	coord := p.Coordination
	a.Apply(1.0, 0.1, 0)
	if p.Coordination != coord {
		t.Error("net gain should not change coordination")
	}
}

func TestGriefer_GriefProbabilityFollowsLiveness(t *testing.T) {
	rng := newRNG()

	full := &GrieferPolicy{GriefIntensity: 1.0}
	a := NewAgent(0, 2.0, 0.6, full)
	for epoch := 1; epoch <= 20; epoch++ {
		if action := a.Decide(epoch, domain.NetworkState{Liveness: 1.0}, rng); action.Grief {
			t.Fatalf("griefed at full liveness in epoch %d", epoch)
		}
	}

	action := a.Decide(21, domain.NetworkState{Liveness: 0}, rng)
	if !action.Grief || action.Kind != domain.ActionGrief {
		t.Fatalf("intensity 1.0 at zero liveness should always grief, got %+v", action)
	}
	if action.StakeCommitted != 1.0 {
		t.Errorf("expected 50%% stake committed, got %v", action.StakeCommitted)
	}
	if action.Quality < 0.1 || action.Quality > 0.4 {
		t.Errorf("quality %v outside [0.1, 0.4]", action.Quality)
	}
}

func TestGriefer_IntensityBounds(t *testing.T) {
	rng := newRNG()
	p := NewGrieferPolicy(rng)
	if p.GriefIntensity < 0.5 || p.GriefIntensity > 1.0 {
		t.Fatalf("initial intensity %v outside [0.5, 1.0]", p.GriefIntensity)
	}
	a := NewAgent(0, 1.0, 0.6, p)

	for i := 0; i < 20; i++ {
		a.Apply(0, 1.0, 0)
	}
	if p.GriefIntensity != maxGriefIntensity {
		t.Errorf("intensity should cap at %v, got %v", maxGriefIntensity, p.GriefIntensity)
	}

	for i := 0; i < 40; i++ {
		a.Apply(1.0, 0, 0)
	}
	if p.GriefIntensity != minGriefIntensity {
		t.Errorf("intensity should floor at %v, got %v", minGriefIntensity, p.GriefIntensity)
	}
}

func TestHoarder_SwitchesToInfluencePermanently(t *testing.T) {
	rng := newRNG()
	p := NewHoarderPolicy()
	a := NewAgent(0, 1.0, 0.9, p)

	action := a.Decide(1, domain.NetworkState{}, rng)
	if action.Kind != domain.ActionContribute || !action.Hoard {
		t.Fatalf("expected hoarding contribute, got %+v", action)
	}
	if action.StakeCommitted != 0.05 {
		t.Errorf("expected 5%% stake committed, got %v", action.StakeCommitted)
	}

	a.Stake = 5.0
	action = a.Decide(2, domain.NetworkState{}, rng)
	if action.Kind != domain.ActionInfluence || p.Mode != HoarderInfluence {
		t.Fatalf("expected influence mode at 5x stake, got %+v", action)
	}
	if action.StakeCommitted != 1.5 {
		t.Errorf("expected 30%% stake committed, got %v", action.StakeCommitted)
	}

	a.Stake = 1.0
	if action = a.Decide(3, domain.NetworkState{}, rng); action.Kind != domain.ActionInfluence {
		t.Errorf("influence mode should be permanent, got %s", action.Kind)
	}
}

func TestHoarder_ReinvestsEightyPercent(t *testing.T) {
	a := NewAgent(0, 1.0, 0.9, NewHoarderPolicy())

	a.Apply(1.0, 0.5, 0)
	if !approxEqual(a.Stake, 1.4) {
		t.Errorf("expected stake 1.4, got %v", a.Stake)
	}

	stake := a.Stake
	a.Apply(0.2, 0.5, 0)
	if a.Stake != stake {
		t.Errorf("net loss should not change stake, got %v", a.Stake)
	}
}

func TestAgent_StateCopiesIntensity(t *testing.T) {
	p := &GrieferPolicy{GriefIntensity: 0.7}
	a := NewAgent(5, 2.0, 0.6, p)

	s := a.State()
	if s.AgentID != 5 || s.Archetype != domain.ArchetypeGriefer || !s.Active {
		t.Errorf("unexpected state identity: %+v", s)
	}
	if s.Intensity != 0.7 {
		t.Errorf("expected intensity 0.7, got %v", s.Intensity)
	}
	if !approxEqual(s.StakeAtRisk(), 0.8) {
		t.Errorf("expected stake at risk 0.8, got %v", s.StakeAtRisk())
	}
}

func TestAgent_Solvent(t *testing.T) {
	a := NewAgent(0, 0.1, 1.0, NewHonestPolicy())
	if !a.Solvent() {
		t.Error("stake at the floor should be solvent")
	}
	a.Stake = 0.09
	if a.Solvent() {
		t.Error("stake below the floor should not be solvent")
	}
}

func TestAgent_DecayFloorsAtZero(t *testing.T) {
	a := NewAgent(0, 1.0, 0.5, NewHonestPolicy())
	a.Decay(0.1)
	if !approxEqual(a.Reputation, 0.45) {
		t.Errorf("expected 0.45, got %v", a.Reputation)
	}
	a.Decay(1.5)
	if a.Reputation != 0 {
		t.Errorf("expected floor at 0, got %v", a.Reputation)
	}
}
