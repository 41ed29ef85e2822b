package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/logging"
	"econ-sim-lab/internal/storage"
	"econ-sim-lab/internal/storage/memory"
	"econ-sim-lab/internal/storage/storagetest"
	"econ-sim-lab/internal/sweep"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Network.TotalAgents = 20
	cfg.Simulation.Epochs = 12
	cfg.Simulation.WarmupEpochs = 2
	cfg.RunsPerPoint = 2
	cfg.StakeLevels = []float64{1, 2}
	cfg.ReputationDecay = []float64{0.01, 0.05}
	cfg.CollusionSize = []int{2}
	cfg.SybilCost = []float64{0.1}
	return cfg
}

// persistSweep runs a small sweep and stores it, applying tamper to the rows first.
func persistSweep(t *testing.T, tamper func(rows []*domain.RunRow)) (*storage.Stores, *sweep.Result) {
	t.Helper()
	ctx := context.Background()

	res, err := sweep.NewDriver(sweep.Options{
		Logger: logging.Discard(),
		Now:    func() time.Time { return time.UnixMilli(1_700_000_000_000) },
	}).Run(ctx, smallConfig())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	rows := make([]*domain.RunRow, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = r.Clone()
	}
	if tamper != nil {
		tamper(rows)
	}

	stores := memory.NewStores()
	if err := stores.Sweeps.Insert(ctx, res.Record); err != nil {
		t.Fatalf("insert sweep: %v", err)
	}
	if err := stores.Runs.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("insert rows: %v", err)
	}
	return stores, res
}

func newVerifier(stores *storage.Stores) *ReplayVerifier {
	return NewReplayVerifier(Options{
		Sweeps: stores.Sweeps,
		Runs:   stores.Runs,
		Logger: logging.Discard(),
	})
}

func TestVerifySweep_AllMatch(t *testing.T) {
	stores, res := persistSweep(t, nil)

	report, err := newVerifier(stores).VerifySweep(context.Background(), res.Record.SweepID, 0)
	if err != nil {
		t.Fatalf("VerifySweep failed: %v", err)
	}

	if report.StoredRuns != 8 || report.VerifiedRuns != 8 {
		t.Errorf("Stored/Verified = %d/%d, want 8/8", report.StoredRuns, report.VerifiedRuns)
	}
	if !report.OK() || report.MatchedRuns != 8 {
		for _, r := range report.Results {
			if !r.Match {
				t.Logf("run %s diverged: %+v", r.RunID, r.Divergences)
			}
		}
		t.Fatalf("expected all runs to match, matched %d", report.MatchedRuns)
	}
}

func TestVerifySweep_Sample(t *testing.T) {
	stores, res := persistSweep(t, nil)

	report, err := newVerifier(stores).VerifySweep(context.Background(), res.Record.SweepID, 3)
	if err != nil {
		t.Fatalf("VerifySweep failed: %v", err)
	}

	if report.StoredRuns != 8 || report.VerifiedRuns != 3 {
		t.Fatalf("Stored/Verified = %d/%d, want 8/3", report.StoredRuns, report.VerifiedRuns)
	}
	// Positions 0, 2 and 5 of the (grid, run) ordering.
	want := []struct{ grid, run int }{{0, 0}, {1, 0}, {2, 1}}
	for i, w := range want {
		got := report.Results[i]
		if got.GridIndex != w.grid || got.RunIndex != w.run {
			t.Errorf("sample %d = (%d,%d), want (%d,%d)", i, got.GridIndex, got.RunIndex, w.grid, w.run)
		}
	}
	if !report.OK() {
		t.Error("sampled runs should match")
	}
}

func TestVerifySweep_DetectsTampering(t *testing.T) {
	stores, res := persistSweep(t, func(rows []*domain.RunRow) {
		rows[3].TotalRevenue += 1
		rows[3].Result.SuccessfulAttacks += 2
	})

	report, err := newVerifier(stores).VerifySweep(context.Background(), res.Record.SweepID, 0)
	if err != nil {
		t.Fatalf("VerifySweep failed: %v", err)
	}

	if report.OK() || report.DivergentRuns != 1 || report.MatchedRuns != 7 {
		t.Fatalf("expected exactly one divergent run, got matched=%d divergent=%d", report.MatchedRuns, report.DivergentRuns)
	}
	fields := make(map[string]bool)
	for _, d := range report.Results[3].Divergences {
		fields[d.Field] = true
	}
	if !fields["TotalRevenue"] || !fields["SuccessfulAttacks"] {
		t.Errorf("expected TotalRevenue and SuccessfulAttacks divergences, got %+v", report.Results[3].Divergences)
	}
}

func TestVerifyRun(t *testing.T) {
	stores, res := persistSweep(t, nil)
	v := newVerifier(stores)

	result, err := v.VerifyRun(context.Background(), res.Rows[5].RunID)
	if err != nil {
		t.Fatalf("VerifyRun failed: %v", err)
	}
	if !result.Match {
		t.Errorf("expected match, got %+v", result.Divergences)
	}
	if result.GridIndex != 2 || result.RunIndex != 1 {
		t.Errorf("result = (%d,%d), want (2,1)", result.GridIndex, result.RunIndex)
	}
}

func TestVerifyRun_NotFound(t *testing.T) {
	stores, _ := persistSweep(t, nil)

	_, err := newVerifier(stores).VerifyRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestVerifySweep_NotFound(t *testing.T) {
	stores := memory.NewStores()

	_, err := newVerifier(stores).VerifySweep(context.Background(), "missing", 0)
	if !errors.Is(err, ErrSweepNotFound) {
		t.Errorf("expected ErrSweepNotFound, got %v", err)
	}
}

func TestVerifySweep_BadConfig(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	rec := storagetest.Sweep("broken", 1)
	rec.ConfigYAML = "seed: [not, an, int]\n"
	if err := stores.Sweeps.Insert(ctx, rec); err != nil {
		t.Fatalf("insert sweep: %v", err)
	}

	var verr *config.ValidationError
	_, err := newVerifier(stores).VerifySweep(ctx, "broken", 0)
	if !errors.As(err, &verr) {
		t.Errorf("expected wrapped *config.ValidationError, got %v", err)
	}
}

func TestCompareRunRows_Identical(t *testing.T) {
	row := storagetest.RunRow("s", 0, 0, storagetest.Point(1.0))

	if d := CompareRunRows(row, row.Clone()); len(d) != 0 {
		t.Errorf("expected no divergences, got %+v", d)
	}
}

func TestCompareRunRows_WithinTolerance(t *testing.T) {
	stored := storagetest.RunRow("s", 0, 0, storagetest.Point(1.0))
	replayed := stored.Clone()
	replayed.TotalStake += FloatTolerance / 2

	if d := CompareRunRows(stored, replayed); len(d) != 0 {
		t.Errorf("difference below tolerance reported: %+v", d)
	}
}

func TestCompareRunRows_Curves(t *testing.T) {
	stored := storagetest.RunRow("s", 0, 0, storagetest.Point(1.0))
	replayed := stored.Clone()
	delete(replayed.Result.StakeAtRiskCurves, 10.0)
	replayed.Result.StakeAtRiskCurves[0.5] = 0.9

	d := CompareRunRows(stored, replayed)
	if len(d) != 2 {
		t.Fatalf("expected 2 divergences, got %+v", d)
	}
	if d[0].Field != "StakeAtRiskCurves[0.5]" || d[0].Actual != 0.9 {
		t.Errorf("d[0] = %+v", d[0])
	}
	if d[1].Field != "StakeAtRiskCurves[10]" || d[1].Actual != nil {
		t.Errorf("d[1] = %+v", d[1])
	}
}

func TestCompareRunRows_Identity(t *testing.T) {
	stored := storagetest.RunRow("s", 0, 0, storagetest.Point(1.0))
	replayed := stored.Clone()
	replayed.Seed++
	replayed.Point.CollusionSize = 7

	d := CompareRunRows(stored, replayed)
	if len(d) != 2 || d[0].Field != "Seed" || d[1].Field != "Point" {
		t.Errorf("expected Seed and Point divergences, got %+v", d)
	}
}

func TestSample(t *testing.T) {
	rows := make([]*domain.RunRow, 10)
	for i := range rows {
		rows[i] = &domain.RunRow{RunIndex: i}
	}

	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"all when zero", 0, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"all when larger", 20, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"evenly spaced", 4, []int{0, 2, 5, 7}},
		{"single", 1, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(rows, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, idx := range tt.want {
				if got[i].RunIndex != idx {
					t.Errorf("got[%d] = %d, want %d", i, got[i].RunIndex, idx)
				}
			}
		})
	}
}
