package event

import (
	"context"
	"time"

	"tasklane/pkg/domain"
)

// Well-known event types published by the application's feature areas. The
// bus matches on the exact string; these constants just keep producers and
// consumers honest.
const (
	TypeTaskCreated     = "task.created"
	TypeTaskCompleted   = "task.completed"
	TypeTaskAssigned    = "task.assigned"
	TypeProjectCreated  = "project.created"
	TypeProjectArchived = "project.archived"
	TypeCommentAdded    = "comment.added"
)

// Metadata carries the cross-cutting context attached to every event.
type Metadata struct {
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	TenantID      domain.TenantID `json:"tenant_id"`
	ActorID       domain.ActorID  `json:"actor_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Event is an immutable record of something that happened. Producers build
// one at publish time; middleware that needs to augment it returns a new
// value rather than mutating in place.
type Event struct {
	Type     string   `json:"type"`
	Payload  any      `json:"payload,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// WithMetadata returns a copy of the event carrying the given metadata.
func (e Event) WithMetadata(md Metadata) Event {
	e.Metadata = md
	return e
}

// Handler consumes a single event. A non-nil error marks the handler as
// failed for this publish; it never propagates to the producer.
type Handler func(ctx context.Context, evt Event) error
