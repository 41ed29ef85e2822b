package sweep

import (
	"testing"

	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
)

func TestGrid_Completeness(t *testing.T) {
	cfg := config.Default()
	points := Grid(cfg, false)

	want := len(cfg.StakeLevels) * len(cfg.ReputationDecay) * len(cfg.CollusionSize) * len(cfg.SybilCost)
	if len(points) != want {
		t.Fatalf("expected %d points, got %d", want, len(points))
	}

	seen := make(map[domain.GridPoint]bool, len(points))
	for _, p := range points {
		if seen[p] {
			t.Errorf("duplicate grid point %+v", p)
		}
		seen[p] = true
	}
	for _, s := range cfg.StakeLevels {
		for _, d := range cfg.ReputationDecay {
			for _, c := range cfg.CollusionSize {
				for _, y := range cfg.SybilCost {
					p := domain.GridPoint{StakeLevel: s, ReputationDecay: d, CollusionSize: c, SybilCost: y}
					if !seen[p] {
						t.Errorf("missing grid point %+v", p)
					}
				}
			}
		}
	}
}

func TestGrid_NestingOrder(t *testing.T) {
	cfg := config.Default()
	cfg.StakeLevels = []float64{1, 2}
	cfg.ReputationDecay = []float64{0.01}
	cfg.CollusionSize = []int{3}
	cfg.SybilCost = []float64{0.1, 1.0}

	points := Grid(cfg, false)
	want := []domain.GridPoint{
		{StakeLevel: 1, ReputationDecay: 0.01, CollusionSize: 3, SybilCost: 0.1},
		{StakeLevel: 1, ReputationDecay: 0.01, CollusionSize: 3, SybilCost: 1.0},
		{StakeLevel: 2, ReputationDecay: 0.01, CollusionSize: 3, SybilCost: 0.1},
		{StakeLevel: 2, ReputationDecay: 0.01, CollusionSize: 3, SybilCost: 1.0},
	}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], points[i])
		}
	}
}

func TestGrid_Smoke(t *testing.T) {
	cfg := config.Default()
	points := Grid(cfg, true)

	if len(points) != 1 {
		t.Fatalf("expected 1 smoke point, got %d", len(points))
	}
	want := domain.GridPoint{
		StakeLevel:      cfg.StakeLevels[0],
		ReputationDecay: cfg.ReputationDecay[0],
		CollusionSize:   cfg.CollusionSize[0],
		SybilCost:       cfg.SybilCost[0],
	}
	if points[0] != want {
		t.Errorf("expected %+v, got %+v", want, points[0])
	}
	if RunsPerPoint(cfg, true) != 1 {
		t.Errorf("smoke mode should run 1 repetition, got %d", RunsPerPoint(cfg, true))
	}
}

func TestTasks_Seeds(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 100
	cfg.RunsPerPoint = 3
	cfg.StakeLevels = []float64{1, 2}
	cfg.ReputationDecay = []float64{0.01}
	cfg.CollusionSize = []int{3}
	cfg.SybilCost = []float64{0.1}

	tasks := Tasks(cfg, false)
	if len(tasks) != 6 {
		t.Fatalf("expected 6 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.GridIndex != i/3 || task.RunIndex != i%3 {
			t.Errorf("task %d: got grid %d run %d", i, task.GridIndex, task.RunIndex)
		}
		if task.Seed != 100+int64(task.RunIndex) {
			t.Errorf("task %d: expected seed %d, got %d", i, 100+task.RunIndex, task.Seed)
		}
	}
}
