package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EventMetrics tracks analytics event ingestion and dispatch.
type EventMetrics struct {
	dispatched *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	ingested   *prometheus.CounterVec
}

// CartMetrics tracks cart store dispatches and backend mutations.
type CartMetrics struct {
	actions   *prometheus.CounterVec
	mutations *prometheus.HistogramVec
	sessions  prometheus.Gauge
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *EventMetrics

	cartMetricsOnce sync.Once
	cartRegistry    *CartMetrics
)

// Events returns the lazily-initialised analytics event metrics.
func Events() *EventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &EventMetrics{
			dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "events",
				Name:      "dispatched_total",
				Help:      "Analytics events routed by the collector, by event type and outcome.",
			}, []string{"type", "outcome"}),
			dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "events",
				Name:      "stream_dropped_total",
				Help:      "Events dropped because a subscriber buffer was full.",
			}, []string{"type"}),
			ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "events",
				Name:      "ingested_total",
				Help:      "Events accepted from clients, by transport and outcome.",
			}, []string{"transport", "outcome"}),
		}
		prometheus.MustRegister(
			eventRegistry.dispatched,
			eventRegistry.dropped,
			eventRegistry.ingested,
		)
	})
	return eventRegistry
}

// Dispatched records a collector outcome: handled, unmatched or failed.
func (m *EventMetrics) Dispatched(eventType, outcome string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(eventType, outcome).Inc()
}

// Dropped records an event lost to a full subscriber buffer.
func (m *EventMetrics) Dropped(eventType string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(eventType).Inc()
}

// Ingested records an ingestion attempt.
func (m *EventMetrics) Ingested(transport, outcome string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(transport, outcome).Inc()
}

// Cart returns the lazily-initialised cart metrics.
func Cart() *CartMetrics {
	cartMetricsOnce.Do(func() {
		cartRegistry = &CartMetrics{
			actions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "cart",
				Name:      "actions_total",
				Help:      "Cart store dispatches by action type and outcome.",
			}, []string{"action", "outcome"}),
			mutations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "storefront",
				Subsystem: "cart",
				Name:      "mutation_duration_seconds",
				Help:      "Latency of asynchronous cart mutations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"mutation", "outcome"}),
			sessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "storefront",
				Subsystem: "cart",
				Name:      "sessions",
				Help:      "Cart sessions currently held in memory.",
			}),
		}
		prometheus.MustRegister(
			cartRegistry.actions,
			cartRegistry.mutations,
			cartRegistry.sessions,
		)
	})
	return cartRegistry
}

// Action records a store dispatch.
func (m *CartMetrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

// Mutation records the duration of a backend mutation in seconds.
func (m *CartMetrics) Mutation(mutation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(mutation, outcome).Observe(seconds)
}

// Sessions sets the number of live sessions.
func (m *CartMetrics) Sessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// Outcome maps an error to the outcome label used across metrics.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
