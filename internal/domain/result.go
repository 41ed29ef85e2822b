package domain

// StakeProbeLevels are the stake levels sampled for stake-at-risk curves.
var StakeProbeLevels = []float64{0.5, 1.0, 2.0, 5.0, 10.0}

// SimulationResult holds the summary metrics of a single run.
type SimulationResult struct {
	HonestShareOfRevenue   float64
	ExpectedLossForHonest  float64
	StakeAtRiskCurves      map[float64]float64 // sparse: probes without matches are absent
	LivenessScore          float64
	CollusionDetectionRate float64 // detections per active colluder
	GriefingEffectiveness  float64
	HoardingInfluence      float64
	TotalTransactions      int
	SuccessfulAttacks      int
	FailedAttacks          int

	// CollusionDetectionPerAttempt is detections per collusion attempt.
	CollusionDetectionPerAttempt float64
}

// GridPoint is one combination of swept parameter values.
type GridPoint struct {
	StakeLevel      float64
	ReputationDecay float64
	CollusionSize   int
	SybilCost       float64
}

// Less orders grid points by (stake, decay, collusion size, sybil cost).
func (p GridPoint) Less(o GridPoint) bool {
	if p.StakeLevel != o.StakeLevel {
		return p.StakeLevel < o.StakeLevel
	}
	if p.ReputationDecay != o.ReputationDecay {
		return p.ReputationDecay < o.ReputationDecay
	}
	if p.CollusionSize != o.CollusionSize {
		return p.CollusionSize < o.CollusionSize
	}
	return p.SybilCost < o.SybilCost
}

// RunRow is one raw result row: a single repetition at a grid point.
// Corresponds to sweep_results.csv and the run_results table.
type RunRow struct {
	SweepID   string // fingerprint of the sweep configuration
	RunID     string // deterministic hash of (sweep, point, run index)
	GridIndex int    // position of the point in grid enumeration order
	RunIndex  int
	Seed      int64

	Point  GridPoint
	Result SimulationResult

	// Engine counters
	TotalRevenue        float64
	TotalStake          float64
	DisputeResolutions  int
	CollusionAttempts   int
	CollusionDetections int
	GriefAttempts       int
	SuccessfulGriefs    int
	Epochs              int
}

// Clone returns a deep copy of the row.
func (r *RunRow) Clone() *RunRow {
	out := *r
	if r.Result.StakeAtRiskCurves != nil {
		out.Result.StakeAtRiskCurves = make(map[float64]float64, len(r.Result.StakeAtRiskCurves))
		for k, v := range r.Result.StakeAtRiskCurves {
			out.Result.StakeAtRiskCurves[k] = v
		}
	}
	return &out
}
