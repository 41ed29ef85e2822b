package sweep

import (
	"fmt"
	"math/rand"

	"econ-sim-lab/internal/agent"
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/engine"
	"econ-sim-lab/internal/idhash"
	"econ-sim-lab/internal/metrics"
)

// EpochObserver receives the per-epoch trace of a repetition after warmup.
// It is called from the goroutine running the repetition.
type EpochObserver func(task Task, summary domain.EpochSummary)

// Runner executes single repetitions of a sweep configuration.
// A Runner is safe for concurrent use; every call builds its own engine and generator.
type Runner struct {
	cfg      *config.Config
	sweepID  string
	registry *agent.Registry
	observer EpochObserver
}

// NewRunner creates a runner over a private copy of cfg.
// A nil registry uses agent.DefaultRegistry().
func NewRunner(cfg *config.Config, sweepID string, registry *agent.Registry, observer EpochObserver) *Runner {
	return &Runner{
		cfg:      cfg.Clone(),
		sweepID:  sweepID,
		registry: registry,
		observer: observer,
	}
}

// Run executes one repetition and returns its result row.
// Panics raised by the engine or a policy are recovered and returned as errors.
func (r *Runner) Run(task Task) (row *domain.RunRow, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			row = nil
			err = fmt.Errorf("repetition panicked: %v", rec)
		}
	}()

	cfg := r.cfg.Clone()
	cfg.Simulation.ReputationDecay = task.Point.ReputationDecay
	cfg.Attacks.SybilCost = task.Point.SybilCost

	rng := rand.New(rand.NewSource(task.Seed))
	model := engine.New(cfg, rng, engine.Options{Registry: r.registry})

	comp := engine.CompositionFromConfig(cfg.Network, task.Point.CollusionSize)
	if err := model.InitializeAgents([]float64{task.Point.StakeLevel}, comp); err != nil {
		return nil, fmt.Errorf("initialize agents: %w", err)
	}

	for epoch := 0; epoch < cfg.Simulation.Epochs; epoch++ {
		summary, err := model.RunEpoch()
		if err != nil {
			return nil, err
		}
		if r.observer != nil && epoch >= cfg.Simulation.WarmupEpochs {
			r.observer(task, summary)
		}
	}

	snap := model.Snapshot()
	c := snap.Counters
	return &domain.RunRow{
		SweepID:             r.sweepID,
		RunID:               idhash.ComputeRunID(r.sweepID, task.Point, task.RunIndex, task.Seed),
		GridIndex:           task.GridIndex,
		RunIndex:            task.RunIndex,
		Seed:                task.Seed,
		Point:               task.Point,
		Result:              metrics.ComputeResult(snap),
		TotalRevenue:        c.TotalRevenue,
		TotalStake:          c.TotalStake,
		DisputeResolutions:  c.DisputeResolutions,
		CollusionAttempts:   c.CollusionAttempts,
		CollusionDetections: c.CollusionDetections,
		GriefAttempts:       c.GriefAttempts,
		SuccessfulGriefs:    c.SuccessfulGriefs,
		Epochs:              c.Epochs,
	}, nil
}
