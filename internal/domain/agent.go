package domain

// AgentState is a read-only copy of an agent's economic state.
type AgentState struct {
	AgentID      int
	Archetype    Archetype
	Stake        float64
	InitialStake float64
	Reputation   float64
	Balance      float64
	TotalRevenue float64
	TotalLosses  float64
	DisputesWon  int
	DisputesLost int
	Active       bool

	// Intensity is the griefing intensity for griefers and the
	// coordination score for colluders. Zero for other archetypes.
	Intensity float64
}

// StakeAtRisk returns stake * (1 - reputation).
func (a AgentState) StakeAtRisk() float64 {
	return a.Stake * (1 - a.Reputation)
}

// Counters holds engine-wide accounting for a single run.
type Counters struct {
	Epochs              int
	TotalRevenue        float64
	TotalStake          float64
	CollusionAttempts   int
	CollusionDetections int
	DisputeResolutions  int
	GriefAttempts       int
	SuccessfulGriefs    int
}

// RunSnapshot is the final state of a run handed to the result aggregator.
type RunSnapshot struct {
	Agents               []AgentState
	Counters             Counters
	TransactionsPerEpoch int
}
