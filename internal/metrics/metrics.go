// Package metrics exposes Prometheus collectors for the pipeline and API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "energy"

// Collector holds application metrics on a dedicated registry.
type Collector struct {
	registry *prometheus.Registry

	// Pipeline
	PipelineRows     *prometheus.GaugeVec
	AnalysisDuration prometheus.Histogram
	RunsTotal        *prometheus.CounterVec

	// API
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, including the
// standard Go and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		PipelineRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "pipeline_rows",
				Help:      "Rows seen at each pipeline stage of the latest run",
			},
			[]string{"stage"},
		),

		AnalysisDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of the statistics and model fits in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "runs_total",
				Help:      "Total analysis runs by final status",
			},
			[]string{"status"},
		),

		APIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),

		APIRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordRows sets the row gauge for a pipeline stage.
func (c *Collector) RecordRows(stage string, n int) {
	c.PipelineRows.WithLabelValues(stage).Set(float64(n))
}

// RecordRun increments the run counter for a final status.
func (c *Collector) RecordRun(status string) {
	c.RunsTotal.WithLabelValues(status).Inc()
}

// RecordAPIRequest counts one request and observes its latency.
func (c *Collector) RecordAPIRequest(route, method, status string, d time.Duration) {
	c.APIRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer starts a timer that reports to histogram.
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}
