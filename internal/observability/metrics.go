package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "green_date"

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
type Metrics struct {
	registry *prometheus.Registry

	CellsProcessed *prometheus.CounterVec // labels: state={computed,not_met,error}
	ChunksTotal    prometheus.Counter
	ChunkFailures  prometheus.Counter
	WorkersActive  prometheus.Gauge

	ChunkDuration prometheus.Histogram
	RunDuration   prometheus.Histogram
	LoadDuration  prometheus.Histogram
}

// NewMetrics creates all metrics on a fresh registry. A batch run writes its
// metrics once at exit, so there is nothing to share with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CellsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_processed_total",
			Help:      "Cells analysed, by terminal state.",
		}, []string{"state"}),
		ChunksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Units of work dispatched to the worker pool.",
		}),
		ChunkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_failures_total",
			Help:      "Units of work whose worker failed; their cells are marked as errors.",
		}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_active",
			Help:      "Workers currently processing a unit of work.",
		}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_duration_seconds",
			Help:      "Time to analyse one unit of work.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time to analyse the whole grid.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time to read the rainfall dataset into memory.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}

	m.registry.MustRegister(
		m.CellsProcessed,
		m.ChunksTotal,
		m.ChunkFailures,
		m.WorkersActive,
		m.ChunkDuration,
		m.RunDuration,
		m.LoadDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics on their own registry so tests can run
// in parallel and inspect values.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// Gatherer exposes the registry, e.g. for testutil.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
