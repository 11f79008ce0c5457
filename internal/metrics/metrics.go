// Package metrics wires the pipeline's Prometheus instrumentation: run
// outcomes, row counts per stage, stage durations, and summarizer failures
// by kind. The report server exposes them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline collectors.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RowsProcessed      *prometheus.GaugeVec
	StageDuration      *prometheus.HistogramVec
	SummarizerFailures *prometheus.CounterVec
}

// New creates and registers the collectors on reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datapulse",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		RowsProcessed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "datapulse",
			Name:      "rows",
			Help:      "Row counts of the most recent run, by pipeline stage.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datapulse",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		SummarizerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datapulse",
			Name:      "summarizer_failures_total",
			Help:      "Summarizer collaborator failures by classified kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.RunsTotal, m.RowsProcessed, m.StageDuration, m.SummarizerFailures)
	return m
}

// ObserveStage records one stage's duration.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
