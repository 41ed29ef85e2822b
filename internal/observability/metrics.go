// Package observability provides Prometheus metrics for monitoring sweeps.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"econ-sim-lab/internal/sweep"
)

var _ sweep.Recorder = (*Metrics)(nil)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "econ_sim"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Sweep metrics
	SweepsCompleted prometheus.Counter
	SweepDuration   prometheus.Histogram
	RowsProduced    prometheus.Counter

	// Repetition metrics
	RepetitionsCompleted prometheus.Counter
	RepetitionsFailed    prometheus.Counter
	RepetitionDuration   prometheus.Histogram
	EpochsSimulated      prometheus.Counter

	// Storage metrics
	StoreWriteDuration *prometheus.HistogramVec
	StoreWriteErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSweep prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg uses a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		SweepsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "completed_total",
			Help:      "Total number of sweeps that produced result tables",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Sweep execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		RowsProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "rows_total",
			Help:      "Total number of result rows produced",
		}),

		RepetitionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repetition",
			Name:      "completed_total",
			Help:      "Total number of repetitions that finished",
		}),
		RepetitionsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repetition",
			Name:      "failed_total",
			Help:      "Total number of repetitions skipped after an error",
		}),
		RepetitionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "repetition",
			Name:      "duration_seconds",
			Help:      "Single repetition duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		EpochsSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repetition",
			Name:      "epochs_total",
			Help:      "Total number of epochs simulated",
		}),

		StoreWriteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_seconds",
			Help:      "Result store write duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "table"}),
		StoreWriteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_errors_total",
			Help:      "Total number of result store write errors",
		}, []string{"backend", "table"}),

		LastSuccessfulSweep: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of last successful sweep",
		}),

		gatherer: reg,
	}
}

// ObserveRepetition records a finished repetition.
func (m *Metrics) ObserveRepetition(d time.Duration, epochs int) {
	m.RepetitionsCompleted.Inc()
	m.RepetitionDuration.Observe(d.Seconds())
	m.EpochsSimulated.Add(float64(epochs))
}

// RepetitionFailed records a skipped repetition.
func (m *Metrics) RepetitionFailed() {
	m.RepetitionsFailed.Inc()
}

// ObserveSweep records a finished sweep.
func (m *Metrics) ObserveSweep(d time.Duration, rows int) {
	m.SweepsCompleted.Inc()
	m.SweepDuration.Observe(d.Seconds())
	m.RowsProduced.Add(float64(rows))
	m.LastSuccessfulSweep.SetToCurrentTime()
}

// RecordStoreWrite records a store write and its outcome.
func (m *Metrics) RecordStoreWrite(backend, table string, d time.Duration, err error) {
	m.StoreWriteDuration.WithLabelValues(backend, table).Observe(d.Seconds())
	if err != nil {
		m.StoreWriteErrors.WithLabelValues(backend, table).Inc()
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
