package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tasklane/internal/event"
)

// Tracing opens a span per publish. Handler failures are recorded on the
// span without failing it wholesale; only the producer-fatal Before path
// would be visible as an unfinished span.
type Tracing struct {
	event.NopMiddleware
	tracer trace.Tracer
}

// NewTracing creates the tracing middleware using the global tracer provider.
func NewTracing() *Tracing {
	return &Tracing{tracer: otel.Tracer("tasklane/event")}
}

func (t *Tracing) Before(ctx context.Context, evt event.Event) (context.Context, event.Event, error) {
	ctx, _ = t.tracer.Start(ctx, "event.publish",
		trace.WithAttributes(
			attribute.String("event.type", evt.Type),
			attribute.String("event.tenant_id", evt.Metadata.TenantID.String()),
			attribute.String("event.source", evt.Metadata.Source),
			attribute.String("event.correlation_id", evt.Metadata.CorrelationID),
		),
	)
	return ctx, evt, nil
}

func (t *Tracing) OnError(ctx context.Context, _ event.Event, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "handler failed")
}

func (t *Tracing) After(ctx context.Context, _ event.Event) {
	trace.SpanFromContext(ctx).End()
}
