// Package metrics exports Prometheus metrics for the assistant and catalog.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopmind"

// Exporter owns the metric registry and the collectors the assistant layer
// records into.
type Exporter struct {
	registry *prometheus.Registry

	turnLatency    *prometheus.HistogramVec
	turnIterations prometheus.Histogram
	toolExecutions *prometheus.CounterVec
	toolLatency    *prometheus.HistogramVec
	llmTokensUsed  prometheus.Counter
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	e := &Exporter{registry: registry}

	e.turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "turn_latency_seconds",
			Help:      "Full assistant turn latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)
	e.turnIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "turn_iterations",
			Help:      "Tool-calling iterations per assistant turn",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)
	e.toolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "tool_executions_total",
			Help:      "Tool executions by tool name and terminal status",
		},
		[]string{"tool", "status"},
	)
	e.toolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"tool"},
	)
	e.llmTokensUsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_used_total",
			Help:      "Total tokens reported by the generative backend",
		},
	)

	registry.MustRegister(e.turnLatency, e.turnIterations, e.toolExecutions, e.toolLatency, e.llmTokensUsed)

	return e
}

// ObserveTurn records a completed assistant turn.
func (e *Exporter) ObserveTurn(outcome string, duration time.Duration, iterations int) {
	e.turnLatency.WithLabelValues(outcome).Observe(duration.Seconds())
	e.turnIterations.Observe(float64(iterations))
}

// ObserveToolExecution records one tool execution.
func (e *Exporter) ObserveToolExecution(tool, status string, duration time.Duration) {
	e.toolExecutions.WithLabelValues(tool, status).Inc()
	e.toolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// AddTokens accumulates reported token usage.
func (e *Exporter) AddTokens(tokens int) {
	if tokens > 0 {
		e.llmTokensUsed.Add(float64(tokens))
	}
}

// Handler returns the scrape endpoint handler.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
