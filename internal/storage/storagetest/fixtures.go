// Package storagetest holds fixtures and a conformance suite shared by the
// storage backend tests.
package storagetest

import (
	"fmt"

	"econ-sim-lab/internal/domain"
)

// Point returns a grid point with the given stake level.
func Point(stake float64) domain.GridPoint {
	return domain.GridPoint{StakeLevel: stake, ReputationDecay: 0.01, CollusionSize: 3, SybilCost: 0.1}
}

// Sweep returns a sweep record with the given id.
func Sweep(sweepID string, createdAt int64) *domain.SweepRecord {
	return &domain.SweepRecord{
		SweepID:      sweepID,
		Seed:         42,
		ConfigYAML:   "seed: 42\nruns_per_point: 2\n",
		GridPoints:   2,
		RunsPerPoint: 2,
		TotalRuns:    4,
		FailedRuns:   0,
		CreatedAt:    createdAt,
	}
}

// RunRow returns a populated run row. Odd run indexes omit two stake-at-risk probes.
func RunRow(sweepID string, gridIndex, runIndex int, point domain.GridPoint) *domain.RunRow {
	curves := map[float64]float64{0.5: 0.05, 1.0: 0.1, 2.0: 0.25, 5.0: 0.5, 10.0: 1.5}
	if runIndex%2 == 1 {
		delete(curves, 5.0)
		delete(curves, 10.0)
	}
	return &domain.RunRow{
		SweepID:   sweepID,
		RunID:     fmt.Sprintf("%s-run-%d-%d", sweepID, gridIndex, runIndex),
		GridIndex: gridIndex,
		RunIndex:  runIndex,
		Seed:      42 + int64(runIndex),
		Point:     point,
		Result: domain.SimulationResult{
			HonestShareOfRevenue:   0.71 + 0.01*float64(runIndex),
			ExpectedLossForHonest:  0.12,
			StakeAtRiskCurves:      curves,
			LivenessScore:          1.0,
			CollusionDetectionRate: 0.33,
			GriefingEffectiveness:  0.45,
			HoardingInfluence:      0.02,
			TotalTransactions:      10000,
			SuccessfulAttacks:      3,
			FailedAttacks:          -1,

			CollusionDetectionPerAttempt: 0.5,
		},
		TotalRevenue:        812.5,
		TotalStake:          330.25,
		DisputeResolutions:  1001,
		CollusionAttempts:   9,
		CollusionDetections: 3,
		GriefAttempts:       6,
		SuccessfulGriefs:    4,
		Epochs:              100,
	}
}

// SummaryRow returns a populated summary row for point.
func SummaryRow(sweepID string, point domain.GridPoint) *domain.SummaryRow {
	stats := make(map[string]domain.MetricStat, len(domain.OutcomeMetrics))
	for i, m := range domain.OutcomeMetrics {
		stats[m] = domain.MetricStat{Mean: 0.5 + float64(i), Std: 0.01 * float64(i)}
	}
	return &domain.SummaryRow{
		SweepID:                sweepID,
		Point:                  point,
		NumRuns:                2,
		Stats:                  stats,
		TotalSuccessfulAttacks: 6,
		TotalFailedAttacks:     -2,
		AttackSuccessRate:      1.5,
	}
}

// SensitivityRow returns a populated sensitivity row.
func SensitivityRow(sweepID, param, metric string) *domain.SensitivityRow {
	return &domain.SensitivityRow{
		SweepID:     sweepID,
		Parameter:   param,
		Metric:      metric,
		Sensitivity: -0.0125,
		MinValue:    0.5,
		MaxValue:    10,
		MinMetric:   0.61,
		MaxMetric:   0.73,
		MetricRange: 0.12,
	}
}
