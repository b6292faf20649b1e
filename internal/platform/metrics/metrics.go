package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the platform core.
type Metrics struct {
	EventsPublished   *prometheus.CounterVec
	HandlerFailures   *prometheus.CounterVec
	PublishDurationMs prometheus.Histogram
	FlagEvaluations   *prometheus.CounterVec
	ModulesRegistered prometheus.Gauge
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics on a caller-supplied registerer so tests can use
// isolated registries.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tasklane_events_published_total",
			Help: "Total number of domain events published, by event type",
		}, []string{"event_type"}),
		HandlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tasklane_event_handler_failures_total",
			Help: "Total number of event handler failures, by event type",
		}, []string{"event_type"}),
		PublishDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tasklane_event_publish_duration_ms",
			Help:    "Latency of event publishes in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		FlagEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tasklane_flag_evaluations_total",
			Help: "Total number of feature flag evaluations, by flag and outcome",
		}, []string{"flag_id", "outcome"}),
		ModulesRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tasklane_modules_registered",
			Help: "Number of modules currently held by the registry",
		}),
	}
}
