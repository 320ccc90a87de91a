package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies what an audit entry is about.
type EntityType string

const (
	EntityTypeBroadcast EntityType = "BROADCAST"
	EntityTypeRequest   EntityType = "REQUEST"
	EntityTypeOrder     EntityType = "ORDER"
	EntityTypeRule      EntityType = "RULE"
)

// Action identifies the audited operation.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionPrice   Action = "PRICE"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionCancel  Action = "CANCEL"
	ActionExpire  Action = "EXPIRE"
	ActionFlag    Action = "FLAG"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted.
type Entry struct {
	ID         int64      `json:"id"`
	EntryID    uuid.UUID  `json:"entryId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Action     Action     `json:"action"`
	Actor      string     `json:"actor"`
	Detail     *string    `json:"detail,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Repository defines persistence for audit entries.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, entityType EntityType, entityID string, limit, offset int) ([]*Entry, error)
}
