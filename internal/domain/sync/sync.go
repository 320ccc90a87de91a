package sync

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event kinds. Events are invalidation signals, not the source of truth:
// a subscriber re-fetches authoritative state for the keyed entity
// instead of trusting any payload field. Delivery is at-least-once and
// unordered.
const (
	KindBroadcastChanged = "broadcast.changed"
	KindRequestChanged   = "request.changed"
)

var (
	ErrClientNotFound = errors.New("sync client not found")
	ErrChannelFull    = errors.New("sync client channel full")
)

// Event tells a subscriber that the keyed entity changed and should be
// re-read.
type Event struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	BroadcastID uuid.UUID  `json:"broadcastId"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
	EmittedAt   time.Time  `json:"emittedAt"`
}

// NewBroadcastChanged builds a broadcast invalidation event.
func NewBroadcastChanged(broadcastID uuid.UUID) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Kind:        KindBroadcastChanged,
		BroadcastID: broadcastID,
		EmittedAt:   time.Now().UTC(),
	}
}

// NewRequestChanged builds a request invalidation event.
func NewRequestChanged(broadcastID, requestID uuid.UUID) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Kind:        KindRequestChanged,
		BroadcastID: broadcastID,
		RequestID:   &requestID,
		EmittedAt:   time.Now().UTC(),
	}
}

// Client is one live push subscription (an open SSE connection).
type Client struct {
	ClientID    string
	AccountID   string
	ConnectedAt time.Time
	EventChan   chan *Event
}

// NewClient creates a client with a bounded event buffer; publishes to a
// full buffer are dropped, the reconciliation poll covers the loss.
func NewClient(clientID, accountID string) *Client {
	return &Client{
		ClientID:    clientID,
		AccountID:   accountID,
		ConnectedAt: time.Now().UTC(),
		EventChan:   make(chan *Event, 100),
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.EventChan)
}

// Hub fans events out to subscribed clients.
type Hub interface {
	Register(client *Client)
	Unregister(clientID string)
	PublishToAccount(accountID string, ev *Event)
	PublishToAll(ev *Event)
}
