package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"econ-sim-lab/internal/agent"
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
	"econ-sim-lab/internal/engine"
	"econ-sim-lab/internal/idhash"
	"econ-sim-lab/internal/logging"
	"econ-sim-lab/internal/metrics"
)

// Recorder receives sweep timing and failure events.
type Recorder interface {
	ObserveRepetition(d time.Duration, epochs int)
	RepetitionFailed()
	ObserveSweep(d time.Duration, rows int)
}

// ProgressFunc is called after every finished repetition.
// In parallel mode it may be called concurrently.
type ProgressFunc func(done, total int)

// Options configures a Driver.
type Options struct {
	Logger   *slog.Logger
	Parallel bool
	Workers  int // worker pool size when Parallel; <= 0 means runtime.NumCPU()

	SmokeTest bool

	// ProgressEvery logs progress every n repetitions; 0 disables progress logs.
	ProgressEvery int
	Progress      ProgressFunc
	Observer      EpochObserver
	Recorder      Recorder
	Registry      *agent.Registry

	// Now stamps the sweep record. Nil uses time.Now.
	Now func() time.Time
}

// Failure records a repetition that was skipped after an error.
type Failure struct {
	Task Task
	Err  error
}

// Result is the outcome of a sweep.
type Result struct {
	Record      *domain.SweepRecord
	Rows        []*domain.RunRow // sorted by (grid index, run index)
	Summary     []*domain.SummaryRow
	Sensitivity []*domain.SensitivityRow
	Failures    []Failure
}

// Driver executes parameter sweeps.
type Driver struct {
	logger        *slog.Logger
	parallel      bool
	workers       int
	smoke         bool
	progressEvery int
	progress      ProgressFunc
	observer      EpochObserver
	recorder      Recorder
	registry      *agent.Registry
	now           func() time.Time
}

// NewDriver creates a sweep driver.
func NewDriver(opts Options) *Driver {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Driver{
		logger:        logging.OrDefault(opts.Logger),
		parallel:      opts.Parallel,
		workers:       workers,
		smoke:         opts.SmokeTest,
		progressEvery: opts.ProgressEvery,
		progress:      opts.Progress,
		observer:      opts.Observer,
		recorder:      recorder,
		registry:      opts.Registry,
		now:           now,
	}
}

// SweepID returns the deterministic identifier of the sweep cfg describes.
func SweepID(cfg *config.Config, smoke bool) (string, []byte, error) {
	fp, err := cfg.Fingerprint()
	if err != nil {
		return "", nil, err
	}
	key := fp
	if smoke {
		key = append(append([]byte(nil), fp...), "smoke_test: true\n"...)
	}
	return idhash.ComputeSweepID(key), fp, nil
}

// Run executes every repetition of cfg's grid and assembles the tables.
// Failed repetitions are logged and skipped, even when none succeed; an
// invariant violation or a cancelled context aborts the sweep.
func (d *Driver) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()

	sweepID, fp, err := SweepID(cfg, d.smoke)
	if err != nil {
		return nil, err
	}

	tasks := Tasks(cfg, d.smoke)
	points := len(Grid(cfg, d.smoke))
	runner := NewRunner(cfg, sweepID, d.registry, d.observer)

	d.logger.Info("starting sweep",
		"sweep_id", sweepID,
		"grid_points", points,
		"runs_per_point", RunsPerPoint(cfg, d.smoke),
		"repetitions", len(tasks),
		"parallel", d.parallel,
		"smoke_test", d.smoke,
	)

	ex := &execution{driver: d, runner: runner, total: len(tasks), rows: make([]*domain.RunRow, len(tasks))}
	if d.parallel {
		err = ex.runParallel(ctx, tasks)
	} else {
		err = ex.runSequential(ctx, tasks)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.RunRow, 0, len(tasks))
	for _, r := range ex.rows {
		if r != nil {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		d.logger.Warn("every repetition failed, tables will be empty",
			"sweep_id", sweepID,
			"failed", len(ex.failures),
		)
	}

	tables := metrics.BuildTables(sweepID, rows)
	res := &Result{
		Record: &domain.SweepRecord{
			SweepID:      sweepID,
			Seed:         cfg.Seed,
			ConfigYAML:   string(fp),
			GridPoints:   points,
			RunsPerPoint: RunsPerPoint(cfg, d.smoke),
			TotalRuns:    len(rows),
			FailedRuns:   len(ex.failures),
			SmokeTest:    d.smoke,
			CreatedAt:    d.now().UnixMilli(),
		},
		Rows:        rows,
		Summary:     tables.Summary,
		Sensitivity: tables.Sensitivity,
		Failures:    ex.sortedFailures(),
	}

	elapsed := time.Since(start)
	d.recorder.ObserveSweep(elapsed, len(rows))
	d.logger.Info("sweep complete",
		"sweep_id", sweepID,
		"rows", len(rows),
		"failed", len(ex.failures),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// execution holds the mutable state of one Run.
type execution struct {
	driver *Driver
	runner *Runner
	total  int

	rows []*domain.RunRow // indexed by task position

	done     atomic.Int64
	mu       sync.Mutex
	failures []Failure
}

func (ex *execution) runSequential(ctx context.Context, tasks []Task) error {
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sweep cancelled: %w", err)
		}
		if err := ex.runOne(i, task); err != nil {
			return err
		}
	}
	return nil
}

func (ex *execution) runParallel(ctx context.Context, tasks []Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ex.driver.workers)

	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return ex.runOne(i, task)
		})
	}

	if err := g.Wait(); err != nil {
		if engine.IsInvariant(err) {
			return err
		}
		return fmt.Errorf("sweep cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sweep cancelled: %w", err)
	}
	return nil
}

// runOne executes task i. Only invariant violations are returned.
func (ex *execution) runOne(i int, task Task) error {
	d := ex.driver
	start := time.Now()

	row, err := ex.runner.Run(task)
	if err != nil {
		if engine.IsInvariant(err) {
			d.logger.Error("invariant violated, aborting sweep",
				"grid_index", task.GridIndex,
				"run_index", task.RunIndex,
				"error", err,
			)
			return err
		}

		d.recorder.RepetitionFailed()
		d.logger.Warn("repetition failed, skipping",
			"grid_index", task.GridIndex,
			"run_index", task.RunIndex,
			"stake_level", task.Point.StakeLevel,
			"reputation_decay", task.Point.ReputationDecay,
			"collusion_size", task.Point.CollusionSize,
			"sybil_cost", task.Point.SybilCost,
			"error", err,
		)
		ex.mu.Lock()
		ex.failures = append(ex.failures, Failure{Task: task, Err: err})
		ex.mu.Unlock()
	} else {
		ex.rows[i] = row
		d.recorder.ObserveRepetition(time.Since(start), row.Epochs)
	}

	done := int(ex.done.Add(1))
	if d.progress != nil {
		d.progress(done, ex.total)
	}
	if d.progressEvery > 0 && (done%d.progressEvery == 0 || done == ex.total) {
		d.logger.Info("sweep progress", "completed", done, "total", ex.total)
	}
	return nil
}

func (ex *execution) sortedFailures() []Failure {
	out := append([]Failure(nil), ex.failures...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Task.GridIndex != out[j].Task.GridIndex {
			return out[i].Task.GridIndex < out[j].Task.GridIndex
		}
		return out[i].Task.RunIndex < out[j].Task.RunIndex
	})
	return out
}

type nopRecorder struct{}

func (nopRecorder) ObserveRepetition(time.Duration, int) {}
func (nopRecorder) RepetitionFailed()                    {}
func (nopRecorder) ObserveSweep(time.Duration, int)      {}
