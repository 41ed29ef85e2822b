package metrics

import (
	"math"
	"sort"

	"econ-sim-lab/internal/domain"
)

// MetricValue returns the value of an outcome metric for a row.
// Unknown metrics return NaN.
func MetricValue(row *domain.RunRow, metric string) float64 {
	switch metric {
	case domain.MetricHonestShare:
		return row.Result.HonestShareOfRevenue
	case domain.MetricExpectedLoss:
		return row.Result.ExpectedLossForHonest
	case domain.MetricLiveness:
		return row.Result.LivenessScore
	case domain.MetricCollusionDetection:
		return row.Result.CollusionDetectionRate
	case domain.MetricGriefingEffectiveness:
		return row.Result.GriefingEffectiveness
	case domain.MetricHoardingInfluence:
		return row.Result.HoardingInfluence
	case domain.MetricTotalRevenue:
		return row.TotalRevenue
	case domain.MetricDisputeResolutions:
		return float64(row.DisputeResolutions)
	default:
		return math.NaN()
	}
}

// ParameterValue returns the value of a sweep axis for a grid point.
func ParameterValue(p domain.GridPoint, param string) float64 {
	switch param {
	case domain.ParamStakeLevel:
		return p.StakeLevel
	case domain.ParamReputationDecay:
		return p.ReputationDecay
	case domain.ParamCollusionSize:
		return float64(p.CollusionSize)
	case domain.ParamSybilCost:
		return p.SybilCost
	default:
		return math.NaN()
	}
}

// Summarize groups rows by grid point and computes per-metric mean and
// sample standard deviation plus attack totals. Rows are returned sorted by
// grid point ascending.
func Summarize(sweepID string, rows []*domain.RunRow) []*domain.SummaryRow {
	groups := make(map[domain.GridPoint][]*domain.RunRow)
	for _, r := range rows {
		groups[r.Point] = append(groups[r.Point], r)
	}

	points := make([]domain.GridPoint, 0, len(groups))
	for p := range groups {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	out := make([]*domain.SummaryRow, 0, len(points))
	for _, p := range points {
		group := groups[p]
		s := &domain.SummaryRow{
			SweepID: sweepID,
			Point:   p,
			NumRuns: len(group),
			Stats:   make(map[string]domain.MetricStat, len(domain.OutcomeMetrics)),
		}

		values := make([]float64, len(group))
		for _, metric := range domain.OutcomeMetrics {
			for i, r := range group {
				values[i] = MetricValue(r, metric)
			}
			mean := computeMean(values)
			s.Stats[metric] = domain.MetricStat{Mean: mean, Std: computeStddev(values, mean)}
		}

		for _, r := range group {
			s.TotalSuccessfulAttacks += r.Result.SuccessfulAttacks
			s.TotalFailedAttacks += r.Result.FailedAttacks
		}
		s.AttackSuccessRate = float64(s.TotalSuccessfulAttacks) /
			math.Max(1, float64(s.TotalSuccessfulAttacks+s.TotalFailedAttacks))

		out = append(out, s)
	}
	return out
}
