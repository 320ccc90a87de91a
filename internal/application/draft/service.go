package draft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	domainDraft "github.com/quotehub/quotehub/internal/domain/draft"
)

// maxPayloadBytes bounds a single draft payload.
const maxPayloadBytes = 64 * 1024

// Service wraps the draft store with payload sanity checks.
type Service struct {
	store  domainDraft.Store
	logger zerolog.Logger
}

// NewService creates a draft service.
func NewService(store domainDraft.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("service", "draft").Logger(),
	}
}

// Save stores the account's current draft, replacing any previous one.
func (s *Service) Save(ctx context.Context, accountID string, payload json.RawMessage) error {
	if len(payload) == 0 {
		return fmt.Errorf("draft payload is empty")
	}
	if len(payload) > maxPayloadBytes {
		return fmt.Errorf("draft payload exceeds %d bytes", maxPayloadBytes)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("draft payload is not valid JSON")
	}
	return s.store.Save(ctx, accountID, payload)
}

// Load returns the account's draft, or nil when none exists or it has
// aged out.
func (s *Service) Load(ctx context.Context, accountID string) (*domainDraft.Draft, error) {
	return s.store.Load(ctx, accountID)
}

// Delete discards the account's draft. Deleting a missing draft is not
// an error.
func (s *Service) Delete(ctx context.Context, accountID string) error {
	return s.store.Delete(ctx, accountID)
}
