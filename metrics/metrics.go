// Package metrics counts documents, transformed elements and diagnostics
// on a private Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/spdxld/resolver"
)

// Document results.
const (
	ResultOK       = "ok"
	ResultWarnings = "warnings"
	ResultFailed   = "failed"
)

const namespace = "spdxld"

// Recorder collects processing metrics. It implements transform.Recorder.
type Recorder struct {
	registry    *prometheus.Registry
	documents   *prometheus.CounterVec
	elements    *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates a Recorder with its collectors registered on a fresh
// registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by result.",
		}, []string{"result"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_total",
			Help:      "Elements transformed, by direction.",
		}, []string{"direction"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported, by code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent processing one document.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(r.documents, r.elements, r.diagnostics, r.duration)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// DocumentProcessed counts one document with the given result and records
// how long it took.
func (r *Recorder) DocumentProcessed(result string, elapsed time.Duration) {
	r.documents.WithLabelValues(result).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ElementsTransformed counts n elements transformed in direction.
func (r *Recorder) ElementsTransformed(direction string, n int) {
	r.elements.WithLabelValues(direction).Add(float64(n))
}

// DiagnosticsReported counts diagnostics by code.
func (r *Recorder) DiagnosticsReported(ds resolver.Diagnostics) {
	for _, d := range ds {
		r.diagnostics.WithLabelValues(string(d.Code)).Inc()
	}
}

// WriteTextfile writes all metrics in the Prometheus text format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
