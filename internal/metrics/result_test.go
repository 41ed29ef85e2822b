package metrics

import (
	"math"
	"testing"

	"econ-sim-lab/internal/domain"
)

func TestComputeResult(t *testing.T) {
	snap := domain.RunSnapshot{
		Agents: []domain.AgentState{
			{AgentID: 0, Archetype: domain.ArchetypeHonest, Stake: 1.0, Reputation: 1.0, TotalRevenue: 30, TotalLosses: 2, Active: true},
			{AgentID: 1, Archetype: domain.ArchetypeHonest, Stake: 2.05, Reputation: 0.5, TotalRevenue: 10, TotalLosses: 4, Active: true},
			{AgentID: 2, Archetype: domain.ArchetypeColluder, Stake: 5.0, Reputation: 0.2, TotalRevenue: 40, Active: true},
			{AgentID: 3, Archetype: domain.ArchetypeColluder, Stake: 5.0, Reputation: 0.2, Active: false},
			{AgentID: 4, Archetype: domain.ArchetypeGriefer, Stake: 1.0, Reputation: 0.6, Intensity: 0.8, Active: true},
			{AgentID: 5, Archetype: domain.ArchetypeHoarder, Stake: 2.0, Reputation: 0.9, TotalRevenue: 20, Active: true},
		},
		Counters: domain.Counters{
			Epochs:              10,
			TotalRevenue:        100,
			TotalStake:          11.05,
			CollusionAttempts:   4,
			CollusionDetections: 3,
		},
		TransactionsPerEpoch: 50,
	}

	res := ComputeResult(snap)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"honest share", res.HonestShareOfRevenue, 0.4},
		{"expected loss", res.ExpectedLossForHonest, 3},
		{"liveness", res.LivenessScore, 5.0 / 6.0},
		{"detection rate", res.CollusionDetectionRate, 3},
		{"detection per attempt", res.CollusionDetectionPerAttempt, 0.75},
		{"griefing effectiveness", res.GriefingEffectiveness, 0.8},
		{"hoarding influence", res.HoardingInfluence, 2.0 / 11.05},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if res.TotalTransactions != 500 {
		t.Errorf("expected 500 transactions, got %d", res.TotalTransactions)
	}
	if res.SuccessfulAttacks != 3 {
		t.Errorf("expected 3 successful attacks, got %d", res.SuccessfulAttacks)
	}
	// One active colluder, three detections.
	if res.FailedAttacks != -2 {
		t.Errorf("expected -2 failed attacks, got %d", res.FailedAttacks)
	}
}

func TestComputeResult_DetectionRateCountsActiveColluders(t *testing.T) {
	snap := domain.RunSnapshot{
		Agents: []domain.AgentState{
			{Archetype: domain.ArchetypeColluder, Stake: 1, Active: true},
			{Archetype: domain.ArchetypeColluder, Stake: 1, Active: true},
			{Archetype: domain.ArchetypeColluder, Stake: 1, Active: false},
			{Archetype: domain.ArchetypeHonest, Stake: 1, Active: true},
		},
		Counters: domain.Counters{TotalStake: 4, CollusionAttempts: 6, CollusionDetections: 6, GriefAttempts: 2},
	}

	res := ComputeResult(snap)

	if res.CollusionDetectionRate != 3 {
		t.Errorf("expected 6 detections over 2 active colluders = 3, got %v", res.CollusionDetectionRate)
	}
	if res.CollusionDetectionPerAttempt != 1 {
		t.Errorf("expected every attempt detected, got %v", res.CollusionDetectionPerAttempt)
	}
}

func TestComputeResult_StakeAtRiskCurves(t *testing.T) {
	snap := domain.RunSnapshot{
		Agents: []domain.AgentState{
			{Archetype: domain.ArchetypeHonest, Stake: 1.0, Reputation: 0.5, Active: true},
			{Archetype: domain.ArchetypeHonest, Stake: 1.05, Reputation: 0.9, Active: true},
			{Archetype: domain.ArchetypeHonest, Stake: 10.0, Reputation: 0.0, Active: true},
			// Outside tolerance of every probe.
			{Archetype: domain.ArchetypeHonest, Stake: 3.0, Reputation: 0.0, Active: true},
			// Inactive agents are ignored.
			{Archetype: domain.ArchetypeHonest, Stake: 5.0, Reputation: 0.0, Active: false},
		},
		Counters: domain.Counters{TotalRevenue: 1, TotalStake: 15.05},
	}

	curves := ComputeResult(snap).StakeAtRiskCurves

	if len(curves) != 2 {
		t.Fatalf("expected 2 populated probes, got %v", curves)
	}
	want1 := (0.5 + 1.05*0.1) / 2
	if math.Abs(curves[1.0]-want1) > 1e-12 {
		t.Errorf("probe 1.0: expected %v, got %v", want1, curves[1.0])
	}
	if curves[10.0] != 10.0 {
		t.Errorf("probe 10: expected 10, got %v", curves[10.0])
	}
	if _, ok := curves[5.0]; ok {
		t.Error("probe 5 should be absent")
	}
}

func TestComputeResult_EmptyPopulation(t *testing.T) {
	res := ComputeResult(domain.RunSnapshot{})

	if res.LivenessScore != 0 || res.HonestShareOfRevenue != 0 || res.CollusionDetectionRate != 0 || res.CollusionDetectionPerAttempt != 0 {
		t.Errorf("expected zero metrics for empty population, got %+v", res)
	}
	if len(res.StakeAtRiskCurves) != 0 {
		t.Errorf("expected no curves, got %v", res.StakeAtRiskCurves)
	}
}

func TestComputeResult_ZeroTotalStake(t *testing.T) {
	snap := domain.RunSnapshot{
		Agents: []domain.AgentState{
			{Archetype: domain.ArchetypeHoarder, Stake: 0, Active: true},
		},
	}
	if got := ComputeResult(snap).HoardingInfluence; got != 0 {
		t.Errorf("expected 0 hoarding influence with zero total stake, got %v", got)
	}
}

func TestComputeResult_SmallRevenueDenominator(t *testing.T) {
	// Total revenue below 1 divides by 1.
	snap := domain.RunSnapshot{
		Agents: []domain.AgentState{
			{Archetype: domain.ArchetypeHonest, TotalRevenue: 0.25, Active: true},
		},
		Counters: domain.Counters{TotalRevenue: 0.25},
	}
	if got := ComputeResult(snap).HonestShareOfRevenue; got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
}
