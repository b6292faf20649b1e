package middleware

import (
	"context"
	"time"

	"tasklane/internal/event"
	"tasklane/internal/platform/metrics"
)

type publishStartKey struct{}

// Metrics records publish counts, handler failures, and publish latency.
type Metrics struct {
	event.NopMiddleware
	metrics *metrics.Metrics
}

// NewMetrics creates the metrics middleware.
func NewMetrics(m *metrics.Metrics) *Metrics {
	return &Metrics{metrics: m}
}

func (m *Metrics) Before(ctx context.Context, evt event.Event) (context.Context, event.Event, error) {
	m.metrics.EventsPublished.WithLabelValues(evt.Type).Inc()
	return context.WithValue(ctx, publishStartKey{}, time.Now()), evt, nil
}

func (m *Metrics) OnError(_ context.Context, evt event.Event, _ error) {
	m.metrics.HandlerFailures.WithLabelValues(evt.Type).Inc()
}

func (m *Metrics) After(ctx context.Context, _ event.Event) {
	start, ok := ctx.Value(publishStartKey{}).(time.Time)
	if !ok {
		return
	}
	m.metrics.PublishDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
