package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/quotehub/quotehub/internal/domain/draft"
)

// DraftStore is the in-process fallback for draft.Store, used when no
// DynamoDB table is configured. Drafts do not survive a restart.
type DraftStore struct {
	mu      sync.RWMutex
	drafts  map[string]*draft.Draft
	nowFunc func() time.Time
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts:  make(map[string]*draft.Draft),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *DraftStore) Save(_ context.Context, accountID string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[accountID] = &draft.Draft{
		AccountID: accountID,
		Payload:   append(json.RawMessage(nil), payload...),
		SavedAt:   s.nowFunc(),
	}
	return nil
}

func (s *DraftStore) Load(_ context.Context, accountID string) (*draft.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[accountID]
	if !ok {
		return nil, nil
	}
	if s.nowFunc().Sub(d.SavedAt) > draft.RetentionWindow {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *DraftStore) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, accountID)
	return nil
}
