package domain

// ActionKind is the declared kind of an agent action for one epoch.
type ActionKind string

const (
	ActionContribute ActionKind = "contribute"
	ActionCollude    ActionKind = "collude"
	ActionGrief      ActionKind = "grief"
	ActionInfluence  ActionKind = "influence"
)

// Action is what an agent declares it will do in an epoch.
type Action struct {
	AgentID        int
	Archetype      Archetype
	Kind           ActionKind
	StakeCommitted float64
	Quality        float64 // in [0, 1]
	Collude        bool
	Grief          bool
	Hoard          bool
	CollusionGroup []int // peer ids, set only when colluding
}

// Outcome is the economic result of one action.
// Reward and Penalty are non-negative; balance may still go negative.
type Outcome struct {
	AgentID         int
	Archetype       Archetype
	Kind            ActionKind
	Reward          float64
	Penalty         float64
	ReputationDelta float64

	Detected       bool // collusion detected
	GriefSucceeded bool
	Disputed       bool
	DisputeWon     bool
}

// NetworkState is the snapshot agents observe before deciding.
type NetworkState struct {
	ActiveAgents      int
	TotalStake        float64
	AverageReputation float64
	Liveness          float64 // active / ever created
	Epoch             int
}

// EpochSummary is returned by the engine after each epoch.
type EpochSummary struct {
	Epoch        int
	TotalRevenue float64 // cumulative gross issuance
	TotalStake   float64
	ActiveAgents int
	Outcomes     []Outcome
}
