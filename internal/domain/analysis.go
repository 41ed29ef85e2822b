package domain

// Outcome metric identifiers used by summary and sensitivity tables.
const (
	MetricHonestShare           = "honest_share_of_revenue"
	MetricExpectedLoss          = "expected_loss_for_honest"
	MetricLiveness              = "liveness_score"
	MetricCollusionDetection    = "collusion_detection_rate"
	MetricGriefingEffectiveness = "griefing_effectiveness"
	MetricHoardingInfluence     = "hoarding_influence"
	MetricTotalRevenue          = "total_revenue"
	MetricDisputeResolutions    = "dispute_resolutions"
)

// OutcomeMetrics lists the metrics aggregated in summary and sensitivity tables.
var OutcomeMetrics = []string{
	MetricHonestShare,
	MetricExpectedLoss,
	MetricLiveness,
	MetricCollusionDetection,
	MetricGriefingEffectiveness,
	MetricHoardingInfluence,
	MetricTotalRevenue,
	MetricDisputeResolutions,
}

// SummaryColumnStem returns the short name used for the mean_/std_ column
// pair of a metric in summary tables, e.g. "honest_share".
func SummaryColumnStem(metric string) string {
	if stem, ok := summaryStems[metric]; ok {
		return stem
	}
	return metric
}

var summaryStems = map[string]string{
	MetricHonestShare:        "honest_share",
	MetricExpectedLoss:       "expected_loss",
	MetricLiveness:           "liveness",
	MetricCollusionDetection: "collusion_detection",
}

// Sweep axis identifiers.
const (
	ParamStakeLevel      = "stake_level"
	ParamReputationDecay = "reputation_decay"
	ParamCollusionSize   = "collusion_size"
	ParamSybilCost       = "sybil_cost"
)

// Parameters lists the sweep axes in grid nesting order.
var Parameters = []string{
	ParamStakeLevel,
	ParamReputationDecay,
	ParamCollusionSize,
	ParamSybilCost,
}

// MetricStat is a mean/std pair for one metric.
type MetricStat struct {
	Mean float64
	Std  float64 // sample standard deviation, 0 when fewer than 2 runs
}

// SummaryRow aggregates all runs of one grid point.
// Corresponds to summary_stats.csv and the summary_stats table.
type SummaryRow struct {
	SweepID string
	Point   GridPoint
	NumRuns int

	Stats map[string]MetricStat // keyed by OutcomeMetrics entries

	TotalSuccessfulAttacks int
	TotalFailedAttacks     int
	AttackSuccessRate      float64
}

// SensitivityRow is the linear sensitivity of one metric to one axis.
// Corresponds to parameter_sensitivity.csv and the parameter_sensitivity table.
type SensitivityRow struct {
	SweepID     string
	Parameter   string
	Metric      string
	Sensitivity float64 // least-squares slope
	MinValue    float64
	MaxValue    float64
	MinMetric   float64
	MaxMetric   float64
	MetricRange float64
}

// Clone returns a deep copy of the row.
func (s *SummaryRow) Clone() *SummaryRow {
	out := *s
	if s.Stats != nil {
		out.Stats = make(map[string]MetricStat, len(s.Stats))
		for k, v := range s.Stats {
			out.Stats[k] = v
		}
	}
	return &out
}
