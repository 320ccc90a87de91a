package draft

import (
	"context"
	"encoding/json"
	"time"
)

// RetentionWindow is how long an unsubmitted draft remains loadable.
// After the window a load returns nothing even if the record still
// physically exists (the store's TTL sweep is asynchronous).
const RetentionWindow = 72 * time.Hour

// Draft is a best-effort client snapshot of an in-progress broadcast
// request. It is never safety-critical: losing one costs retyped input,
// nothing else.
type Draft struct {
	AccountID string          `json:"accountId"`
	Payload   json.RawMessage `json:"payload"`
	SavedAt   time.Time       `json:"savedAt"`
}

// Store defines draft persistence.
type Store interface {
	Save(ctx context.Context, accountID string, payload json.RawMessage) error
	// Load returns (nil, nil) when no draft exists or the retention
	// window has passed.
	Load(ctx context.Context, accountID string) (*Draft, error)
	Delete(ctx context.Context, accountID string) error
}
