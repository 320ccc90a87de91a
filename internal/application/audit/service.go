package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotehub/quotehub/internal/domain/audit"
)

// Service writes the append-only audit trail. Logging an entry is
// best-effort: a store failure is logged and never propagated to the
// operation being audited.
type Service struct {
	repo   audit.Repository
	logger zerolog.Logger
}

// NewService creates an audit service.
func NewService(repo audit.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "audit").Logger(),
	}
}

// Log records an audit entry.
func (s *Service) Log(ctx context.Context, e *audit.Entry) {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Warn().Err(err).
			Str("entity_type", string(e.EntityType)).
			Str("entity_id", e.EntityID).
			Str("action", string(e.Action)).
			Msg("failed to write audit entry")
	}
}

// List returns audit entries for one entity.
func (s *Service) List(ctx context.Context, entityType audit.EntityType, entityID string, limit, offset int) ([]*audit.Entry, error) {
	return s.repo.List(ctx, entityType, entityID, limit, offset)
}
