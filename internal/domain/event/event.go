package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies a domain event consumed by the notification
// collaborator.
type Type string

const (
	TypeRequestPriced      Type = "RequestPriced"
	TypeBroadcastCompleted Type = "BroadcastCompleted"
	TypeBroadcastExpired   Type = "BroadcastExpired"
	TypeBroadcastCancelled Type = "BroadcastCancelled"
)

// Event is emitted after a state change commits. Dispatch is
// best-effort: the core never waits on or fails with delivery.
type Event struct {
	EventID     uuid.UUID  `json:"eventId"`
	Type        Type       `json:"type"`
	BroadcastID uuid.UUID  `json:"broadcastId"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
	OrderID     *uuid.UUID `json:"orderId,omitempty"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

// New builds an event stamped with the current time.
func New(t Type, broadcastID uuid.UUID) *Event {
	return &Event{
		EventID:     uuid.New(),
		Type:        t,
		BroadcastID: broadcastID,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher hands events to the external notification dispatch.
type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

// NopPublisher drops every event; used when no queue is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev *Event) error { return nil }
