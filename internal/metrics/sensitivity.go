package metrics

import (
	"econ-sim-lab/internal/domain"
)

// Sensitivity computes, for every sweep axis with at least two distinct
// values and every outcome metric, the least-squares slope of the
// per-value metric mean against the axis value.
// Axes with a single value are skipped.
func Sensitivity(sweepID string, rows []*domain.RunRow) []*domain.SensitivityRow {
	var out []*domain.SensitivityRow

	for _, param := range domain.Parameters {
		for _, metric := range domain.OutcomeMetrics {
			byValue := make(map[float64][]float64)
			for _, r := range rows {
				x := ParameterValue(r.Point, param)
				byValue[x] = append(byValue[x], MetricValue(r, metric))
			}
			if len(byValue) < 2 {
				break
			}

			xs := sortedKeys(byValue)
			ys := make([]float64, len(xs))
			for i, x := range xs {
				ys[i] = computeMean(byValue[x])
			}

			slope, ok := computeSlope(xs, ys)
			if !ok {
				continue
			}

			minY, maxY := minMax(ys)
			out = append(out, &domain.SensitivityRow{
				SweepID:     sweepID,
				Parameter:   param,
				Metric:      metric,
				Sensitivity: slope,
				MinValue:    xs[0],
				MaxValue:    xs[len(xs)-1],
				MinMetric:   minY,
				MaxMetric:   maxY,
				MetricRange: maxY - minY,
			})
		}
	}
	return out
}
