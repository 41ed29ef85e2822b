// Package reporting renders sweep tables as CSV and markdown and writes them to disk.
package reporting

import (
	"econ-sim-lab/internal/domain"
)

// Output file names.
const (
	ResultsFile     = "sweep_results.csv"
	SummaryFile     = "summary_stats.csv"
	SensitivityFile = "parameter_sensitivity.csv"
	ReportFile      = "SWEEP_REPORT.md"
)

// Report is everything rendered for one sweep.
type Report struct {
	Record      *domain.SweepRecord
	Rows        []*domain.RunRow
	Summary     []*domain.SummaryRow
	Sensitivity []*domain.SensitivityRow

	// Failures lists skipped repetitions as "grid=G run=R: reason".
	Failures []string
}

// Totals are the sweep-wide figures printed at the top of the report.
type Totals struct {
	GridPoints        int
	Runs              int
	MeanHonestShare   float64
	MeanExpectedLoss  float64
	MeanLiveness      float64
	SuccessfulAttacks int
	FailedAttacks     int
	AttackSuccessRate float64
}

// ComputeTotals summarises rows across the whole sweep.
func ComputeTotals(rows []*domain.RunRow) Totals {
	var t Totals
	points := make(map[domain.GridPoint]struct{})
	for _, r := range rows {
		points[r.Point] = struct{}{}
		t.MeanHonestShare += r.Result.HonestShareOfRevenue
		t.MeanExpectedLoss += r.Result.ExpectedLossForHonest
		t.MeanLiveness += r.Result.LivenessScore
		t.SuccessfulAttacks += r.Result.SuccessfulAttacks
		t.FailedAttacks += r.Result.FailedAttacks
	}
	t.GridPoints = len(points)
	t.Runs = len(rows)
	if t.Runs > 0 {
		n := float64(t.Runs)
		t.MeanHonestShare /= n
		t.MeanExpectedLoss /= n
		t.MeanLiveness /= n
	}
	t.AttackSuccessRate = float64(t.SuccessfulAttacks) / float64(max(1, t.SuccessfulAttacks+t.FailedAttacks))
	return t
}
