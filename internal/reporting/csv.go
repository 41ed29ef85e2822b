package reporting

import (
	"strconv"
	"strings"

	"econ-sim-lab/internal/domain"
)

var runColumns = []string{
	"run_id", "run_index",
	"stake_level", "reputation_decay", "collusion_size", "sybil_cost",
	"honest_share_of_revenue", "expected_loss_for_honest", "liveness_score",
	"collusion_detection_rate", "griefing_effectiveness", "hoarding_influence",
	"total_transactions", "successful_attacks", "failed_attacks",
	"total_revenue", "total_stake", "dispute_resolutions", "collusion_detections", "successful_griefs",
	"grief_attempts", "collusion_detection_per_attempt",
}

// RunColumns returns the sweep_results.csv header.
func RunColumns() []string {
	cols := append([]string(nil), runColumns...)
	for _, level := range domain.StakeProbeLevels {
		cols = append(cols, "stake_at_risk_"+formatFloat(level))
	}
	return cols
}

// SummaryColumns returns the summary_stats.csv header.
func SummaryColumns() []string {
	cols := []string{"stake_level", "reputation_decay", "collusion_size", "sybil_cost", "num_runs"}
	for _, m := range domain.OutcomeMetrics {
		stem := domain.SummaryColumnStem(m)
		cols = append(cols, "mean_"+stem, "std_"+stem)
	}
	return append(cols, "total_successful_attacks", "total_failed_attacks", "attack_success_rate")
}

// SensitivityColumns returns the parameter_sensitivity.csv header.
func SensitivityColumns() []string {
	return []string{"parameter", "metric", "sensitivity", "min_value", "max_value", "min_metric", "max_metric", "metric_range"}
}

// RenderRunsCSV renders raw repetition rows. Absent stake-at-risk probes are empty cells.
func RenderRunsCSV(rows []*domain.RunRow) string {
	var sb strings.Builder
	writeLine(&sb, RunColumns())

	for _, r := range rows {
		fields := []string{
			r.RunID,
			strconv.Itoa(r.RunIndex),
			formatFloat(r.Point.StakeLevel),
			formatFloat(r.Point.ReputationDecay),
			strconv.Itoa(r.Point.CollusionSize),
			formatFloat(r.Point.SybilCost),
			formatFloat(r.Result.HonestShareOfRevenue),
			formatFloat(r.Result.ExpectedLossForHonest),
			formatFloat(r.Result.LivenessScore),
			formatFloat(r.Result.CollusionDetectionRate),
			formatFloat(r.Result.GriefingEffectiveness),
			formatFloat(r.Result.HoardingInfluence),
			strconv.Itoa(r.Result.TotalTransactions),
			strconv.Itoa(r.Result.SuccessfulAttacks),
			strconv.Itoa(r.Result.FailedAttacks),
			formatFloat(r.TotalRevenue),
			formatFloat(r.TotalStake),
			strconv.Itoa(r.DisputeResolutions),
			strconv.Itoa(r.CollusionDetections),
			strconv.Itoa(r.SuccessfulGriefs),
			strconv.Itoa(r.GriefAttempts),
			formatFloat(r.Result.CollusionDetectionPerAttempt),
		}
		for _, level := range domain.StakeProbeLevels {
			if v, ok := r.Result.StakeAtRiskCurves[level]; ok {
				fields = append(fields, formatFloat(v))
			} else {
				fields = append(fields, "")
			}
		}
		writeLine(&sb, fields)
	}

	return sb.String()
}

// RenderSummaryCSV renders per-point summary rows.
func RenderSummaryCSV(rows []*domain.SummaryRow) string {
	var sb strings.Builder
	writeLine(&sb, SummaryColumns())

	for _, s := range rows {
		fields := []string{
			formatFloat(s.Point.StakeLevel),
			formatFloat(s.Point.ReputationDecay),
			strconv.Itoa(s.Point.CollusionSize),
			formatFloat(s.Point.SybilCost),
			strconv.Itoa(s.NumRuns),
		}
		for _, m := range domain.OutcomeMetrics {
			st := s.Stats[m]
			fields = append(fields, formatFloat(st.Mean), formatFloat(st.Std))
		}
		fields = append(fields,
			strconv.Itoa(s.TotalSuccessfulAttacks),
			strconv.Itoa(s.TotalFailedAttacks),
			formatFloat(s.AttackSuccessRate),
		)
		writeLine(&sb, fields)
	}

	return sb.String()
}

// RenderSensitivityCSV renders sensitivity rows.
func RenderSensitivityCSV(rows []*domain.SensitivityRow) string {
	var sb strings.Builder
	writeLine(&sb, SensitivityColumns())

	for _, s := range rows {
		writeLine(&sb, []string{
			s.Parameter,
			s.Metric,
			formatFloat(s.Sensitivity),
			formatFloat(s.MinValue),
			formatFloat(s.MaxValue),
			formatFloat(s.MinMetric),
			formatFloat(s.MaxMetric),
			formatFloat(s.MetricRange),
		})
	}

	return sb.String()
}

func writeLine(sb *strings.Builder, fields []string) {
	sb.WriteString(strings.Join(fields, ","))
	sb.WriteString("\n")
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
