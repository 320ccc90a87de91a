package broadcast

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents broadcast status. All states other than ACTIVE are
// terminal: once decided, neither status nor winning request may change.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// OrderType represents how the customer wants the order fulfilled.
type OrderType string

const (
	OrderTypeDelivery OrderType = "DELIVERY"
	OrderTypePickup   OrderType = "PICKUP"
)

const (
	// MaxMerchants is the fan-out limit per broadcast.
	MaxMerchants = 3
)

var (
	ErrNotFound             = errors.New("broadcast or request not found")
	ErrForbidden            = errors.New("actor does not own this broadcast or request")
	ErrInvalidState         = errors.New("entity is not in a state that permits this operation")
	ErrAlreadyDecided       = errors.New("broadcast already completed by another approval")
	ErrAlreadyTerminal      = errors.New("broadcast is no longer active")
	ErrInvalidMerchantCount = errors.New("broadcast requires between 1 and 3 distinct merchants")
	ErrInvalidIntent        = errors.New("order intent carries no text, voice or image reference")
	ErrDeadlinePassed       = errors.New("pricing deadline has passed")
)

// Intent is the customer's raw order description. At least one of the
// three references must be present. Voice and image references are
// opaque pointers into the attachment store.
type Intent struct {
	Text      *string  `json:"text,omitempty"`
	VoiceRef  *string  `json:"voiceRef,omitempty"`
	ImageRefs []string `json:"imageRefs,omitempty"`
}

// Empty reports whether the intent carries no usable input.
func (i Intent) Empty() bool {
	if i.Text != nil && strings.TrimSpace(*i.Text) != "" {
		return false
	}
	if i.VoiceRef != nil && *i.VoiceRef != "" {
		return false
	}
	return len(i.ImageRefs) == 0
}

// Broadcast is one customer order intent fanned out to up to three
// merchants for competitive pricing. Broadcasts are never deleted; they
// are retained as audit records.
type Broadcast struct {
	ID               int64      `json:"id"`
	BroadcastID      uuid.UUID  `json:"broadcastId"`
	CustomerID       uuid.UUID  `json:"customerId"`
	OrderType        OrderType  `json:"orderType"`
	DeliveryAddress  *string    `json:"deliveryAddress,omitempty"`
	Intent           Intent     `json:"intent"`
	Status           Status     `json:"status"`
	WinningRequestID *uuid.UUID `json:"winningRequestId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CanTransitionTo validates a broadcast status transition.
func (b *Broadcast) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive:    {StatusCompleted, StatusExpired, StatusCancelled},
		StatusCompleted: {},
		StatusExpired:   {},
		StatusCancelled: {},
	}
	for _, s := range transitions[b.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the broadcast has been decided.
func (b *Broadcast) IsTerminal() bool {
	return b.Status != StatusActive
}

// IsDue reports whether the expiry deadline has elapsed at the given
// time.
func (b *Broadcast) IsDue(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// ValidOrderType reports whether t is a known order type.
func ValidOrderType(t OrderType) bool {
	return t == OrderTypeDelivery || t == OrderTypePickup
}

// ValidateMerchants checks the fan-out list: 1..3 distinct merchant ids.
func ValidateMerchants(merchantIDs []uuid.UUID) error {
	if len(merchantIDs) == 0 || len(merchantIDs) > MaxMerchants {
		return ErrInvalidMerchantCount
	}
	seen := make(map[uuid.UUID]struct{}, len(merchantIDs))
	for _, id := range merchantIDs {
		if id == uuid.Nil {
			return ErrInvalidMerchantCount
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidMerchantCount
		}
		seen[id] = struct{}{}
	}
	return nil
}
