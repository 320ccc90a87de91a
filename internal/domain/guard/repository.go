package guard

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for guard rules.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, ruleID uuid.UUID) (*Rule, error)
	List(ctx context.Context, limit, offset int) ([]*Rule, error)
	ListEnabled(ctx context.Context) ([]*Rule, error)
	SetEnabled(ctx context.Context, ruleID uuid.UUID, enabled bool) error
}
