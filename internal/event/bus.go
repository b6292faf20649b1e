package event

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "tasklane/pkg/domain-errors"
)

const defaultHandlerTimeout = 30 * time.Second

// subscriber pairs a handler with the identity used to remove it again.
type subscriber struct {
	id uint64
	fn Handler
}

// Subscription identifies one registered handler instance.
type Subscription struct {
	bus       *Bus
	eventType string
	id        uint64
}

// Unsubscribe removes exactly the handler instance this subscription was
// returned for. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s.eventType, s.id)
}

// Bus is the in-process pub/sub hub. Handlers subscribed to an event's type
// run concurrently with per-handler failure isolation; an ordered middleware
// pipeline wraps every publish.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[string][]subscriber
	middlewares []Middleware
	log         []Event
	nextID      uint64

	logger         *slog.Logger
	handlerTimeout time.Duration
	maxConcurrent  int
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithHandlerTimeout bounds how long a single handler may run. A handler
// that does not settle in time is recorded as failed and publish moves on.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// WithMaxConcurrent bounds handler fan-out per publish. Zero or negative
// means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(b *Bus) {
		b.maxConcurrent = n
	}
}

// New constructs a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:       make(map[string][]subscriber),
		handlerTimeout: defaultHandlerTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for an event type. Multiple handlers per
// type are allowed; no ordering is promised among them.
func (b *Bus) Subscribe(eventType string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: b.nextID, fn: h})
	return &Subscription{bus: b, eventType: eventType, id: b.nextID}
}

func (b *Bus) unsubscribe(eventType string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Use appends a middleware to the ordered pipeline.
func (b *Bus) Use(m Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, m)
}

// Publish runs the event through the middleware pipeline, fans it out to
// every handler subscribed to its type, and returns once all of them have
// settled. Handler failures are isolated: they surface only through the
// middlewares' OnError hooks, never through the returned error. The only
// fatal path is a Before hook failing, which aborts dispatch entirely.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	mws := make([]Middleware, len(b.middlewares))
	copy(mws, b.middlewares)
	b.mu.RUnlock()

	var err error
	for _, mw := range mws {
		ctx, evt, err = mw.Before(ctx, evt)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "publish aborted by middleware")
		}
	}

	// Snapshot after Before hooks: they may rewrite the event type.
	b.mu.RLock()
	subs := make([]subscriber, len(b.handlers[evt.Type]))
	copy(subs, b.handlers[evt.Type])
	b.mu.RUnlock()

	type failure struct {
		idx int
		err error
	}
	var (
		failMu   sync.Mutex
		failures []failure
	)

	g := new(errgroup.Group)
	if b.maxConcurrent > 0 {
		g.SetLimit(b.maxConcurrent)
	}
	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			if herr := b.invoke(ctx, sub.fn, evt); herr != nil {
				failMu.Lock()
				failures = append(failures, failure{idx: i, err: herr})
				failMu.Unlock()
			}
			return nil
		})
	}
	// Handlers never return errors through the group; Wait only synchronizes.
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].idx < failures[j].idx })
	for _, f := range failures {
		b.logger.WarnContext(ctx, "event handler failed",
			"event_type", evt.Type,
			"error", f.err.Error(),
		)
		for _, mw := range mws {
			b.notifyError(ctx, mw, evt, f.err)
		}
	}

	for _, mw := range mws {
		mw.After(ctx, evt)
	}

	b.mu.Lock()
	b.log = append(b.log, evt)
	b.mu.Unlock()

	return nil
}

// invoke runs one handler under the per-handler timeout, converting panics
// and deadline overruns into ordinary handler failures.
func (b *Bus) invoke(ctx context.Context, h Handler, evt Event) error {
	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- dErrors.Newf(dErrors.CodeInternal, "handler panicked: %v", r)
			}
		}()
		done <- h(ctx, evt)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "handler did not settle before timeout")
	}
}

// notifyError shields the pipeline from OnError hooks that panic. A panic
// there is a programming error in the middleware; log and keep going.
func (b *Bus) notifyError(ctx context.Context, mw Middleware, evt Event, cause error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "onError hook panicked",
				"event_type", evt.Type,
				"panic", r,
			)
		}
	}()
	mw.OnError(ctx, evt, cause)
}

// EventLog returns a defensive copy of the in-memory event log. The log is
// unbounded and intended for debugging and auditing, not durable storage.
func (b *Bus) EventLog() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, len(b.log))
	copy(out, b.log)
	return out
}

// ClearEventLog empties the event log.
func (b *Bus) ClearEventLog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = nil
}
