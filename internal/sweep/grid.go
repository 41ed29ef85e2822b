// Package sweep runs repeated simulations over the Cartesian product of the
// swept parameters and assembles the result tables.
package sweep

import (
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
)

// Task identifies one repetition of the sweep.
type Task struct {
	GridIndex int
	RunIndex  int
	Point     domain.GridPoint
	Seed      int64
}

// Grid enumerates grid points in nesting order stake_level, reputation_decay,
// collusion_size, sybil_cost. In smoke mode only the first value of each
// axis is used.
func Grid(cfg *config.Config, smoke bool) []domain.GridPoint {
	stakes, decays, sizes, sybils := cfg.StakeLevels, cfg.ReputationDecay, cfg.CollusionSize, cfg.SybilCost
	if smoke {
		stakes, decays, sizes, sybils = first(stakes), first(decays), first(sizes), first(sybils)
	}

	points := make([]domain.GridPoint, 0, len(stakes)*len(decays)*len(sizes)*len(sybils))
	for _, stake := range stakes {
		for _, decay := range decays {
			for _, size := range sizes {
				for _, sybil := range sybils {
					points = append(points, domain.GridPoint{
						StakeLevel:      stake,
						ReputationDecay: decay,
						CollusionSize:   size,
						SybilCost:       sybil,
					})
				}
			}
		}
	}
	return points
}

// RunsPerPoint returns the repetition count, 1 in smoke mode.
func RunsPerPoint(cfg *config.Config, smoke bool) int {
	if smoke {
		return 1
	}
	return cfg.RunsPerPoint
}

// Tasks lists every repetition in (grid index, run index) order.
// Repetition i of every point is seeded with cfg.Seed + i.
func Tasks(cfg *config.Config, smoke bool) []Task {
	points := Grid(cfg, smoke)
	runs := RunsPerPoint(cfg, smoke)

	tasks := make([]Task, 0, len(points)*runs)
	for gi, p := range points {
		for ri := 0; ri < runs; ri++ {
			tasks = append(tasks, Task{
				GridIndex: gi,
				RunIndex:  ri,
				Point:     p,
				Seed:      cfg.Seed + int64(ri),
			})
		}
	}
	return tasks
}

func first[T any](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	return values[:1]
}
