package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_enqueued_total",
			Help: "Total number of events accepted by the queue (count)",
		},
		[]string{"type"},
	)

	EventsSupersededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_superseded_total",
			Help: "Total number of pending events replaced by a newer event with the same identity key (count)",
		},
		[]string{"type"},
	)

	EventsCanceledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_canceled_total",
			Help: "Total number of pending events canceled before dispatch (count)",
		},
		[]string{"type"},
	)

	EventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dispatched_total",
			Help: "Total number of events handed to a handler (count)",
		},
		[]string{"type", "status"},
	)

	EventDispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_dispatch_duration_ms",
			Help:    "Handler execution duration per event in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"type"},
	)

	QueuePendingEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_pending_events",
			Help: "Number of events currently pending in the queue, delayed or ready (count)",
		},
	)

	JudgmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judgments_total",
			Help: "Total number of judgment calls by decision (count)",
		},
		[]string{"decision"},
	)

	ResponsesDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responses_delivered_total",
			Help: "Total number of responses handed to the delivery sink (count)",
		},
		[]string{"status"},
	)

	InboundMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_messages_total",
			Help: "Total number of inbound platform messages by intake outcome (count)",
		},
		[]string{"outcome"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM requests by operation and status (count)",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_ms",
			Help:    "LLM request duration in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"operation"},
	)

	SchedulerTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total number of periodic task ticks (count)",
		},
		[]string{"task"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RegisterEventMetrics() {
	prometheus.MustRegister(
		EventsEnqueuedTotal,
		EventsSupersededTotal,
		EventsCanceledTotal,
		EventsDispatchedTotal,
		EventDispatchDuration,
		QueuePendingEvents,
		SchedulerTicksTotal,
	)
}

func RegisterAgentMetrics() {
	prometheus.MustRegister(
		JudgmentsTotal,
		ResponsesDeliveredTotal,
		InboundMessagesTotal,
	)
}

func RegisterLLMMetrics() {
	prometheus.MustRegister(
		LLMRequestsTotal,
		LLMRequestDuration,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
}

func ObserveDispatchDuration(eventType string, duration time.Duration) {
	EventDispatchDuration.WithLabelValues(eventType).Observe(float64(duration.Milliseconds()))
}

func ObserveLLMDuration(operation string, duration time.Duration) {
	LLMRequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}
