// Package observability holds the Prometheus metrics exported on /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bizpilot"

// Metrics groups the collectors recorded by the chat pipeline. A nil *Metrics
// is valid and records nothing, which keeps unit tests free of registries.
type Metrics struct {
	// providerAttempts counts provider calls.
	// Labels: provider, outcome (success, error, empty)
	providerAttempts *prometheus.CounterVec

	// toolInvocations counts tool runs.
	// Labels: tool, outcome (success, unavailable)
	toolInvocations *prometheus.CounterVec

	// turns counts finished chat turns.
	// Labels: mode (buffered, stream, upload), status (ok, error, canceled)
	turns *prometheus.CounterVec

	// turnDuration measures end-to-end turn latency.
	// Labels: mode
	turnDuration *prometheus.HistogramVec

	activeStreams prometheus.Gauge
}

// NewMetrics registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		providerAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "provider_attempts_total",
			Help:      "Provider generation attempts by outcome",
		}, []string{"provider", "outcome"}),
		toolInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Tool invocations by outcome",
		}, []string{"tool", "outcome"}),
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns by delivery mode and final status",
		}, []string{"mode", "status"}),
		turnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end chat turn latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "active_streams",
			Help:      "Streaming turns currently in flight",
		}),
	}
}

func (m *Metrics) ProviderAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ToolInvoked(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// TurnFinished records the status and latency of a chat turn started at start.
func (m *Metrics) TurnFinished(mode, status string, start time.Time) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(mode, status).Inc()
	m.turnDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func (m *Metrics) StreamStarted() {
	if m == nil {
		return
	}
	m.activeStreams.Inc()
}

func (m *Metrics) StreamEnded() {
	if m == nil {
		return
	}
	m.activeStreams.Dec()
}
