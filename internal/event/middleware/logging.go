package middleware

import (
	"context"
	"log/slog"

	"tasklane/internal/event"
)

// Logging emits one line per publish and one per handler failure.
type Logging struct {
	event.NopMiddleware
	logger *slog.Logger
}

// NewLogging creates the logging middleware.
func NewLogging(logger *slog.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Before(ctx context.Context, evt event.Event) (context.Context, event.Event, error) {
	l.logger.DebugContext(ctx, "publishing event",
		"event_type", evt.Type,
		"tenant_id", evt.Metadata.TenantID,
		"source", evt.Metadata.Source,
		"correlation_id", evt.Metadata.CorrelationID,
	)
	return ctx, evt, nil
}

func (l *Logging) OnError(ctx context.Context, evt event.Event, err error) {
	l.logger.ErrorContext(ctx, "event handler failed",
		"event_type", evt.Type,
		"tenant_id", evt.Metadata.TenantID,
		"correlation_id", evt.Metadata.CorrelationID,
		"error", err.Error(),
	)
}
