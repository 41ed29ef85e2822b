// Package verification re-executes stored repetitions and checks that they
// reproduce the persisted rows.
package verification

import (
	"fmt"
	"math"
	"sort"

	"econ-sim-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
// Replays are expected to be bit-identical; the tolerance absorbs storage
// backends that round-trip floats through text.
const FloatTolerance = 1e-12

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string // field name
	Expected any    // stored value
	Actual   any    // replayed value
}

// VerificationResult contains the result of verifying a single repetition.
type VerificationResult struct {
	RunID       string
	GridIndex   int
	RunIndex    int
	Match       bool
	Divergences []FieldDivergence
}

// VerificationReport contains results for one sweep.
type VerificationReport struct {
	SweepID       string
	StoredRuns    int // rows stored for the sweep
	VerifiedRuns  int // rows re-executed
	MatchedRuns   int
	DivergentRuns int
	Results       []VerificationResult
}

// OK reports whether every verified repetition matched.
func (r *VerificationReport) OK() bool {
	return r.DivergentRuns == 0
}

type diff struct {
	out []FieldDivergence
}

func (d *diff) eqString(field, a, b string) {
	if a != b {
		d.out = append(d.out, FieldDivergence{Field: field, Expected: a, Actual: b})
	}
}

func (d *diff) eqInt(field string, a, b int) {
	if a != b {
		d.out = append(d.out, FieldDivergence{Field: field, Expected: a, Actual: b})
	}
}

func (d *diff) eqFloat(field string, a, b float64) {
	if !floatEquals(a, b) {
		d.out = append(d.out, FieldDivergence{Field: field, Expected: a, Actual: b})
	}
}

// CompareRunRows compares two run rows and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareRunRows(stored, replayed *domain.RunRow) []FieldDivergence {
	var d diff

	d.eqString("RunID", stored.RunID, replayed.RunID)
	d.eqInt("GridIndex", stored.GridIndex, replayed.GridIndex)
	d.eqInt("RunIndex", stored.RunIndex, replayed.RunIndex)
	if stored.Seed != replayed.Seed {
		d.out = append(d.out, FieldDivergence{Field: "Seed", Expected: stored.Seed, Actual: replayed.Seed})
	}
	if stored.Point != replayed.Point {
		d.out = append(d.out, FieldDivergence{Field: "Point", Expected: stored.Point, Actual: replayed.Point})
	}

	s, r := stored.Result, replayed.Result
	d.eqFloat("HonestShareOfRevenue", s.HonestShareOfRevenue, r.HonestShareOfRevenue)
	d.eqFloat("ExpectedLossForHonest", s.ExpectedLossForHonest, r.ExpectedLossForHonest)
	d.eqFloat("LivenessScore", s.LivenessScore, r.LivenessScore)
	d.eqFloat("CollusionDetectionRate", s.CollusionDetectionRate, r.CollusionDetectionRate)
	d.eqFloat("GriefingEffectiveness", s.GriefingEffectiveness, r.GriefingEffectiveness)
	d.eqFloat("HoardingInfluence", s.HoardingInfluence, r.HoardingInfluence)
	d.eqInt("TotalTransactions", s.TotalTransactions, r.TotalTransactions)
	d.eqInt("SuccessfulAttacks", s.SuccessfulAttacks, r.SuccessfulAttacks)
	d.eqInt("FailedAttacks", s.FailedAttacks, r.FailedAttacks)
	d.eqFloat("CollusionDetectionPerAttempt", s.CollusionDetectionPerAttempt, r.CollusionDetectionPerAttempt)
	compareCurves(&d, s.StakeAtRiskCurves, r.StakeAtRiskCurves)

	d.eqFloat("TotalRevenue", stored.TotalRevenue, replayed.TotalRevenue)
	d.eqFloat("TotalStake", stored.TotalStake, replayed.TotalStake)
	d.eqInt("DisputeResolutions", stored.DisputeResolutions, replayed.DisputeResolutions)
	d.eqInt("CollusionAttempts", stored.CollusionAttempts, replayed.CollusionAttempts)
	d.eqInt("CollusionDetections", stored.CollusionDetections, replayed.CollusionDetections)
	d.eqInt("GriefAttempts", stored.GriefAttempts, replayed.GriefAttempts)
	d.eqInt("SuccessfulGriefs", stored.SuccessfulGriefs, replayed.SuccessfulGriefs)
	d.eqInt("Epochs", stored.Epochs, replayed.Epochs)

	return d.out
}

// compareCurves reports probes present on one side only, then value mismatches.
func compareCurves(d *diff, stored, replayed map[float64]float64) {
	levels := make(map[float64]struct{}, len(stored)+len(replayed))
	for k := range stored {
		levels[k] = struct{}{}
	}
	for k := range replayed {
		levels[k] = struct{}{}
	}
	keys := make([]float64, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	for _, k := range keys {
		field := fmt.Sprintf("StakeAtRiskCurves[%g]", k)
		sv, sok := stored[k]
		rv, rok := replayed[k]
		switch {
		case sok && rok:
			d.eqFloat(field, sv, rv)
		case sok:
			d.out = append(d.out, FieldDivergence{Field: field, Expected: sv, Actual: nil})
		default:
			d.out = append(d.out, FieldDivergence{Field: field, Expected: nil, Actual: rv})
		}
	}
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
