package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus collectors for the HTTP surface and the
// analysis pipeline.
type Metrics struct {
	requestCount       *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	errorCount         *prometheus.CounterVec
	PipelineRuns       prometheus.Counter
	PipelineFailures   prometheus.Counter
	ExtractionSuccess  prometheus.Counter
	ExtractionFailures prometheus.Counter
	StageDuration      *prometheus.HistogramVec
	QueueDepth         prometheus.Gauge
}

// NewMetrics registers collectors against the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers collectors against the given registerer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency",
		}, []string{"path", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Requests that resolved to a domain error",
		}, []string{"path", "method", "code"}),
		PipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_pipeline_runs_total",
			Help: "Pipeline runs started",
		}),
		PipelineFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_pipeline_failures_total",
			Help: "Pipeline runs aborted by a stage or transport failure",
		}),
		ExtractionSuccess: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_extraction_success_total",
			Help: "Terminal stage outputs that yielded a valid assignment",
		}),
		ExtractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "triage_extraction_failures_total",
			Help: "Terminal stage outputs with no usable structured payload",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triage_stage_duration_seconds",
			Help:    "Per-stage collaborator latency",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"stage"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "triage_analysis_queue_depth",
			Help: "Tickets waiting for analysis",
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// ObserveStage records the latency of one collaborator invocation.
func (m *Metrics) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
