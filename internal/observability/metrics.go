// Package observability exposes Prometheus metrics for analysis runs.
//
// Every Run owns a private registry, so counters describe one run and never
// accumulate across runs in the same process.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Run collects the metrics of a single analysis run. A nil *Run discards
// everything recorded on it.
type Run struct {
	registry *prometheus.Registry

	normalizationWarnings *prometheus.CounterVec
	normalizedRecords     *prometheus.CounterVec
	outputRows            *prometheus.CounterVec
	runs                  *prometheus.CounterVec
	duration              prometheus.Gauge
}

// NewRun returns a Run with its collectors registered on a fresh registry.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		normalizationWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fit_insights",
			Subsystem: "normalizer",
			Name:      "warnings_total",
			Help:      "Normalization warnings by record kind and warning kind.",
		}, []string{"record", "kind"}),
		normalizedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fit_insights",
			Subsystem: "normalizer",
			Name:      "records_total",
			Help:      "Typed records produced by the normalizer, by record kind.",
		}, []string{"record"}),
		outputRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fit_insights",
			Subsystem: "analysis",
			Name:      "output_rows_total",
			Help:      "Rows produced per output table.",
		}, []string{"table"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fit_insights",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Finished analysis runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fit_insights",
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the analysis run.",
		}),
	}
	r.registry.MustRegister(r.normalizationWarnings, r.normalizedRecords, r.outputRows, r.runs, r.duration)
	return r
}

// Registry returns the run's registry, for serving or gathering.
func (r *Run) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordWarning counts one normalization warning.
func (r *Run) RecordWarning(record, kind string) {
	if r == nil {
		return
	}
	r.normalizationWarnings.WithLabelValues(record, kind).Inc()
}

// RecordNormalized counts n typed records of one kind.
func (r *Run) RecordNormalized(record string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.normalizedRecords.WithLabelValues(record).Add(float64(n))
}

// RecordRows counts n rows written to an output table.
func (r *Run) RecordRows(table string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.outputRows.WithLabelValues(table).Add(float64(n))
}

// RecordRun counts the finished run and stores its duration.
func (r *Run) RecordRun(err error, seconds float64) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Set(seconds)
}

// WriteTextfile dumps the run's registry in the node-exporter textfile
// format.
func (r *Run) WriteTextfile(path string) error {
	if r == nil {
		return fmt.Errorf("write metrics textfile: no metrics recorded")
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
