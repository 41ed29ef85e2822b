package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/logging"
	"econ-sim-lab/internal/observability"
	"econ-sim-lab/internal/reporting"
	"econ-sim-lab/internal/storage/memory"
	"econ-sim-lab/internal/sweep"
)

// failedSweep is a sweep result whose every repetition was skipped.
func failedSweep() *sweep.Result {
	return &sweep.Result{
		Record: &domain.SweepRecord{
			SweepID:      "all-failed",
			Seed:         11,
			ConfigYAML:   "seed: 11\n",
			GridPoints:   1,
			RunsPerPoint: 2,
			FailedRuns:   2,
			CreatedAt:    1700000000000,
		},
		Failures: []sweep.Failure{
			{Task: sweep.Task{GridIndex: 0, RunIndex: 0}, Err: errors.New("policy exploded")},
			{Task: sweep.Task{GridIndex: 0, RunIndex: 1}, Err: errors.New("policy exploded")},
		},
	}
}

func TestPersist_AllRepetitionsFailed(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	res := failedSweep()

	if err := persist(ctx, stores, res, observability.NewMetrics("test", nil), "memory", logging.Discard()); err != nil {
		t.Fatalf("persist: %v", err)
	}

	rec, err := stores.Sweeps.GetByID(ctx, "all-failed")
	if err != nil {
		t.Fatalf("sweep record not stored: %v", err)
	}
	if rec.TotalRuns != 0 || rec.FailedRuns != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	summaries, err := stores.Summaries.GetBySweep(ctx, "all-failed")
	if err != nil || len(summaries) != 0 {
		t.Errorf("expected no summary rows, got %d (err %v)", len(summaries), err)
	}
}

func TestWriteFiles_AllRepetitionsFailed(t *testing.T) {
	dir := t.TempDir()
	res := failedSweep()

	paths, err := reporting.WriteFiles(dir, filepath.Join(dir, "plots"), newReport(res))
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}

	for _, name := range []string{reporting.ResultsFile, reporting.SummaryFile, reporting.SensitivityFile} {
		if got := countLines(t, filepath.Join(dir, name)); got != 1 {
			t.Errorf("%s has %d lines, want header only", name, got)
		}
	}

	report, err := os.ReadFile(filepath.Join(dir, reporting.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Skipped Runs", "grid=0 run=1: policy exploded"} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	var out bytes.Buffer
	printSummary(&out, res, paths)
	if !strings.Contains(out.String(), "Simulation runs: 0 (skipped 2)") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}
