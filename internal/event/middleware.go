package event

import "context"

// Middleware is a cross-cutting hook applied to every published event
// regardless of type. Hooks run in registration order.
//
// Before may derive a new context and return a modified event; returning an
// error aborts the publish before any handler runs and propagates to the
// producer. OnError observes individual handler failures after fan-out.
// After runs once handlers have settled and failures have been reported.
type Middleware interface {
	Before(ctx context.Context, evt Event) (context.Context, Event, error)
	After(ctx context.Context, evt Event)
	OnError(ctx context.Context, evt Event, err error)
}

// NopMiddleware provides no-op defaults for all hooks. Embed it so a
// middleware only implements the hooks it cares about and the pipeline can
// iterate uniformly.
type NopMiddleware struct{}

func (NopMiddleware) Before(ctx context.Context, evt Event) (context.Context, Event, error) {
	return ctx, evt, nil
}

func (NopMiddleware) After(context.Context, Event) {}

func (NopMiddleware) OnError(context.Context, Event, error) {}
