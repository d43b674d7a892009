package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the handler process.
type Metrics struct {
	registry *prometheus.Registry

	// Invocation metrics
	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration prometheus.Histogram
	InputTokensTotal   prometheus.Counter
	OutputTokensTotal  prometheus.Counter

	// Tool metrics
	ToolExecutionsTotal      *prometheus.CounterVec
	ToolExecutionErrorsTotal *prometheus.CounterVec

	// Memory metrics
	MemoryAvailable    prometheus.Gauge
	MemoryAppendErrors prometheus.Counter
}

// NewMetrics creates and registers all metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invocations_total",
				Help: "Total number of handler invocations",
			},
			[]string{"status"},
		),
		InvocationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invocation_duration_seconds",
				Help:    "Duration of handler invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		InputTokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "input_tokens_total",
				Help: "Total input tokens reported by the model",
			},
		),
		OutputTokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "output_tokens_total",
				Help: "Total output tokens reported by the model",
			},
		),

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),
		ToolExecutionErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_execution_errors_total",
				Help: "Total number of tool execution errors",
			},
			[]string{"tool_name"},
		),

		MemoryAvailable: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_service_available",
				Help: "Whether the remote memory service answered the last probe (1/0)",
			},
		),
		MemoryAppendErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "memory_append_errors_total",
				Help: "Total number of failed memory append calls",
			},
		),
	}

	registry.MustRegister(
		m.InvocationsTotal,
		m.InvocationDuration,
		m.InputTokensTotal,
		m.OutputTokensTotal,
		m.ToolExecutionsTotal,
		m.ToolExecutionErrorsTotal,
		m.MemoryAvailable,
		m.MemoryAppendErrors,
	)

	return m
}

// Handler returns an http.Handler that serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry for testing.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
