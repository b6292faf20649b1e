// Package middleware provides the stock event-pipeline middlewares wired by
// the application context: correlation stamping, structured logging,
// Prometheus metrics, and OpenTelemetry tracing.
package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tasklane/internal/event"
)

// Correlation stamps a timestamp and correlation id on events that arrive
// without them, so every consumer and log line can be tied back to the
// originating request.
type Correlation struct {
	event.NopMiddleware
}

// NewCorrelation creates the correlation middleware.
func NewCorrelation() *Correlation {
	return &Correlation{}
}

func (c *Correlation) Before(ctx context.Context, evt event.Event) (context.Context, event.Event, error) {
	md := evt.Metadata
	if md.Timestamp.IsZero() {
		md.Timestamp = time.Now()
	}
	if md.CorrelationID == "" {
		md.CorrelationID = uuid.NewString()
	}
	return ctx, evt.WithMetadata(md), nil
}
