package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for MessageCounter.
const (
	OutcomeOK      = "ok"
	OutcomeFailure = "handler_failure"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors of the assistant.
// A nil *Metrics is valid and records nothing.
//
// Usage:
//
//	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
//	metrics.MessageProcessed("ORDER", observability.OutcomeOK)
type Metrics struct {
	// MessageCounter counts processed messages.
	// Labels: intent, outcome (ok|handler_failure|error)
	MessageCounter *prometheus.CounterVec

	// HandlerDuration measures handler latency in seconds, completion calls included.
	// Labels: handler
	HandlerDuration *prometheus.HistogramVec

	// CompletionCounter counts completion requests.
	// Labels: provider, status (success|error)
	CompletionCounter *prometheus.CounterVec

	// CompletionDuration measures completion latency in seconds.
	// Labels: provider
	CompletionDuration *prometheus.HistogramVec

	// Confirmations counts placed orders.
	Confirmations prometheus.Counter

	// MemoryEvictions counts memory entries dropped by trimming.
	MemoryEvictions prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to keep them isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessageCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barista_messages_total",
				Help: "Total number of messages processed by intent and outcome",
			},
			[]string{"intent", "outcome"},
		),

		HandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barista_handler_duration_seconds",
				Help:    "Duration of handler executions in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"handler"},
		),

		CompletionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barista_completion_requests_total",
				Help: "Total number of completion requests by provider and status",
			},
			[]string{"provider", "status"},
		),

		CompletionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barista_completion_duration_seconds",
				Help:    "Duration of completion requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		Confirmations: factory.NewCounter(prometheus.CounterOpts{
			Name: "barista_cart_confirmations_total",
			Help: "Total number of confirmed orders",
		}),

		MemoryEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "barista_memory_evictions_total",
			Help: "Total number of memory entries evicted by trimming",
		}),
	}
}

// MessageProcessed records one processed message.
func (m *Metrics) MessageProcessed(intent, outcome string) {
	if m == nil {
		return
	}
	m.MessageCounter.WithLabelValues(intent, outcome).Inc()
}

// HandlerObserved records a handler run.
func (m *Metrics) HandlerObserved(handler string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(handler).Observe(d.Seconds())
}

// CompletionObserved records one completion request.
func (m *Metrics) CompletionObserved(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CompletionCounter.WithLabelValues(provider, status).Inc()
	m.CompletionDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// OrderConfirmed records a placed order.
func (m *Metrics) OrderConfirmed() {
	if m == nil {
		return
	}
	m.Confirmations.Inc()
}

// MemoryEvicted records n trimmed entries.
func (m *Metrics) MemoryEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MemoryEvictions.Add(float64(n))
}
