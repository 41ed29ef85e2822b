package storage

import (
	"fmt"
	"strconv"
	"strings"

	"econ-sim-lab/internal/domain"
)

// Scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ProbeColumn returns the column name of a stake-at-risk probe, e.g. stake_at_risk_0_5.
func ProbeColumn(level float64) string {
	return "stake_at_risk_" + strings.ReplaceAll(strconv.FormatFloat(level, 'f', -1, 64), ".", "_")
}

// SweepColumns lists sweeps columns in insert/select order.
var SweepColumns = []string{
	"sweep_id", "seed", "config_yaml", "grid_points", "runs_per_point",
	"total_runs", "failed_runs", "smoke_test", "created_at",
}

// RunColumns lists run_results columns in insert/select order.
var RunColumns = append([]string{
	"sweep_id", "run_id", "grid_index", "run_index", "seed",
	"stake_level", "reputation_decay", "collusion_size", "sybil_cost",
	"honest_share_of_revenue", "expected_loss_for_honest", "liveness_score",
	"collusion_detection_rate", "griefing_effectiveness", "hoarding_influence",
	"total_transactions", "successful_attacks", "failed_attacks",
	"collusion_detection_per_attempt",
	"total_revenue", "total_stake", "dispute_resolutions",
	"collusion_attempts", "collusion_detections", "grief_attempts", "successful_griefs", "epochs",
}, probeColumns()...)

// SummaryColumns lists summary_stats columns in insert/select order.
var SummaryColumns = summaryColumns()

// SensitivityColumns lists parameter_sensitivity columns in insert/select order.
var SensitivityColumns = []string{
	"sweep_id", "parameter", "metric", "sensitivity",
	"min_value", "max_value", "min_metric", "max_metric", "metric_range",
}

func probeColumns() []string {
	cols := make([]string, len(domain.StakeProbeLevels))
	for i, level := range domain.StakeProbeLevels {
		cols[i] = ProbeColumn(level)
	}
	return cols
}

func summaryColumns() []string {
	cols := []string{"sweep_id", "stake_level", "reputation_decay", "collusion_size", "sybil_cost", "num_runs"}
	for _, m := range domain.OutcomeMetrics {
		stem := domain.SummaryColumnStem(m)
		cols = append(cols, "mean_"+stem, "std_"+stem)
	}
	return append(cols, "total_successful_attacks", "total_failed_attacks", "attack_success_rate")
}

// InsertSQL builds an INSERT statement. dollar selects $n placeholders
// (PostgreSQL) instead of ? (SQLite, ClickHouse).
func InsertSQL(table string, cols []string, dollar bool) string {
	ph := make([]string, len(cols))
	for i := range cols {
		if dollar {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// SelectSQL builds a SELECT of cols from table; where and order may be empty.
func SelectSQL(table string, cols []string, where, order string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	if where != "" {
		q += " WHERE " + where
	}
	if order != "" {
		q += " ORDER BY " + order
	}
	return q
}

// SweepValues returns the values of s in SweepColumns order.
func SweepValues(s *domain.SweepRecord) []any {
	return []any{
		s.SweepID, s.Seed, s.ConfigYAML, s.GridPoints, s.RunsPerPoint,
		s.TotalRuns, s.FailedRuns, s.SmokeTest, s.CreatedAt,
	}
}

// ScanSweep scans a row selected with SweepColumns.
func ScanSweep(sc Scanner) (*domain.SweepRecord, error) {
	var s domain.SweepRecord
	err := sc.Scan(
		&s.SweepID, &s.Seed, &s.ConfigYAML, &s.GridPoints, &s.RunsPerPoint,
		&s.TotalRuns, &s.FailedRuns, &s.SmokeTest, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RunValues returns the values of r in RunColumns order.
// Absent stake-at-risk probes are written as NULL.
func RunValues(r *domain.RunRow) []any {
	res := r.Result
	vals := []any{
		r.SweepID, r.RunID, r.GridIndex, r.RunIndex, r.Seed,
		r.Point.StakeLevel, r.Point.ReputationDecay, r.Point.CollusionSize, r.Point.SybilCost,
		res.HonestShareOfRevenue, res.ExpectedLossForHonest, res.LivenessScore,
		res.CollusionDetectionRate, res.GriefingEffectiveness, res.HoardingInfluence,
		res.TotalTransactions, res.SuccessfulAttacks, res.FailedAttacks,
		res.CollusionDetectionPerAttempt,
		r.TotalRevenue, r.TotalStake, r.DisputeResolutions,
		r.CollusionAttempts, r.CollusionDetections, r.GriefAttempts, r.SuccessfulGriefs, r.Epochs,
	}
	for _, level := range domain.StakeProbeLevels {
		if v, ok := res.StakeAtRiskCurves[level]; ok {
			vals = append(vals, &v)
		} else {
			vals = append(vals, (*float64)(nil))
		}
	}
	return vals
}

// ScanRun scans a row selected with RunColumns.
func ScanRun(sc Scanner) (*domain.RunRow, error) {
	var r domain.RunRow
	res := &r.Result
	probes := make([]*float64, len(domain.StakeProbeLevels))

	dest := []any{
		&r.SweepID, &r.RunID, &r.GridIndex, &r.RunIndex, &r.Seed,
		&r.Point.StakeLevel, &r.Point.ReputationDecay, &r.Point.CollusionSize, &r.Point.SybilCost,
		&res.HonestShareOfRevenue, &res.ExpectedLossForHonest, &res.LivenessScore,
		&res.CollusionDetectionRate, &res.GriefingEffectiveness, &res.HoardingInfluence,
		&res.TotalTransactions, &res.SuccessfulAttacks, &res.FailedAttacks,
		&res.CollusionDetectionPerAttempt,
		&r.TotalRevenue, &r.TotalStake, &r.DisputeResolutions,
		&r.CollusionAttempts, &r.CollusionDetections, &r.GriefAttempts, &r.SuccessfulGriefs, &r.Epochs,
	}
	for i := range probes {
		dest = append(dest, &probes[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	res.StakeAtRiskCurves = make(map[float64]float64)
	for i, level := range domain.StakeProbeLevels {
		if probes[i] != nil {
			res.StakeAtRiskCurves[level] = *probes[i]
		}
	}
	return &r, nil
}

// SummaryValues returns the values of s in SummaryColumns order.
func SummaryValues(s *domain.SummaryRow) []any {
	vals := []any{
		s.SweepID, s.Point.StakeLevel, s.Point.ReputationDecay, s.Point.CollusionSize, s.Point.SybilCost, s.NumRuns,
	}
	for _, m := range domain.OutcomeMetrics {
		st := s.Stats[m]
		vals = append(vals, st.Mean, st.Std)
	}
	return append(vals, s.TotalSuccessfulAttacks, s.TotalFailedAttacks, s.AttackSuccessRate)
}

// ScanSummary scans a row selected with SummaryColumns.
func ScanSummary(sc Scanner) (*domain.SummaryRow, error) {
	var s domain.SummaryRow
	stats := make([]domain.MetricStat, len(domain.OutcomeMetrics))

	dest := []any{
		&s.SweepID, &s.Point.StakeLevel, &s.Point.ReputationDecay, &s.Point.CollusionSize, &s.Point.SybilCost, &s.NumRuns,
	}
	for i := range stats {
		dest = append(dest, &stats[i].Mean, &stats[i].Std)
	}
	dest = append(dest, &s.TotalSuccessfulAttacks, &s.TotalFailedAttacks, &s.AttackSuccessRate)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	s.Stats = make(map[string]domain.MetricStat, len(stats))
	for i, m := range domain.OutcomeMetrics {
		s.Stats[m] = stats[i]
	}
	return &s, nil
}

// SensitivityValues returns the values of s in SensitivityColumns order.
func SensitivityValues(s *domain.SensitivityRow) []any {
	return []any{
		s.SweepID, s.Parameter, s.Metric, s.Sensitivity,
		s.MinValue, s.MaxValue, s.MinMetric, s.MaxMetric, s.MetricRange,
	}
}

// ScanSensitivity scans a row selected with SensitivityColumns.
func ScanSensitivity(sc Scanner) (*domain.SensitivityRow, error) {
	var s domain.SensitivityRow
	err := sc.Scan(
		&s.SweepID, &s.Parameter, &s.Metric, &s.Sensitivity,
		&s.MinValue, &s.MaxValue, &s.MinMetric, &s.MaxMetric, &s.MetricRange,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateRun checks the keys of a run row before insert.
func ValidateRun(r *domain.RunRow) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: nil run row", ErrInvalidInput)
	case r.SweepID == "":
		return missingKey("run_results", "sweep_id")
	case r.RunID == "":
		return missingKey("run_results", "run_id")
	}
	return nil
}

// ValidateSummary checks the keys of a summary row before insert.
func ValidateSummary(s *domain.SummaryRow) error {
	if s == nil {
		return fmt.Errorf("%w: nil summary row", ErrInvalidInput)
	}
	if s.SweepID == "" {
		return missingKey("summary_stats", "sweep_id")
	}
	return nil
}

// ValidateSensitivity checks the keys of a sensitivity row before insert.
func ValidateSensitivity(s *domain.SensitivityRow) error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil sensitivity row", ErrInvalidInput)
	case s.SweepID == "":
		return missingKey("parameter_sensitivity", "sweep_id")
	case s.Parameter == "":
		return missingKey("parameter_sensitivity", "parameter")
	case s.Metric == "":
		return missingKey("parameter_sensitivity", "metric")
	}
	return nil
}

// ValidateSweep checks the keys of a sweep record before insert.
func ValidateSweep(s *domain.SweepRecord) error {
	if s == nil || s.SweepID == "" {
		return missingKey("sweeps", "sweep_id")
	}
	return nil
}
