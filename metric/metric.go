// Package metric provides Prometheus metrics for investigation exports.
package metric

import (
	"net/http"
	"time"

	"github.com/c360studio/isatab/export"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Export status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics contains the export metrics
type Metrics struct {
	DocumentsTotal *prometheus.CounterVec
	LinesTotal     prometheus.Counter
	BytesTotal     prometheus.Counter
	Duration       prometheus.Histogram
}

// NewMetrics creates the export metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "isatab",
				Subsystem: "export",
				Name:      "documents_total",
				Help:      "Total number of investigation files written",
			},
			[]string{"status"},
		),

		LinesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "isatab",
				Subsystem: "export",
				Name:      "lines_total",
				Help:      "Total number of lines written",
			},
		),

		BytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "isatab",
				Subsystem: "export",
				Name:      "bytes_total",
				Help:      "Total number of bytes written",
			},
		),

		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "isatab",
				Subsystem: "export",
				Name:      "duration_seconds",
				Help:      "Time spent loading and writing one investigation",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.DocumentsTotal, m.LinesTotal, m.BytesTotal, m.Duration)
	return m
}

// Observe records one export run
func (m *Metrics) Observe(stats export.Stats, duration time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.DocumentsTotal.WithLabelValues(status).Inc()
	m.LinesTotal.Add(float64(stats.Lines))
	m.BytesTotal.Add(float64(stats.Bytes))
	m.Duration.Observe(duration.Seconds())
}

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
