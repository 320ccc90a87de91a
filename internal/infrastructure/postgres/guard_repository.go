package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotehub/quotehub/internal/domain/guard"
)

// GuardRepository implements guard.Repository.
type GuardRepository struct {
	pool *pgxpool.Pool
}

func NewGuardRepository(pool *pgxpool.Pool) *GuardRepository {
	return &GuardRepository{pool: pool}
}

func (r *GuardRepository) Create(ctx context.Context, rule *guard.Rule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guard_rules
		(rule_id, name, expression, action, enabled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rule.RuleID, rule.Name, rule.Expression, rule.Action, rule.Enabled, rule.CreatedAt, rule.UpdatedAt)
	return err
}

func (r *GuardRepository) GetByID(ctx context.Context, ruleID uuid.UUID) (*guard.Rule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, rule_id, name, expression, action, enabled, created_at, updated_at
		FROM guard_rules WHERE rule_id=$1
	`, ruleID)
	return scanRule(row)
}

func (r *GuardRepository) List(ctx context.Context, limit, offset int) ([]*guard.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_id, name, expression, action, enabled, created_at, updated_at
		FROM guard_rules
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (r *GuardRepository) ListEnabled(ctx context.Context) ([]*guard.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_id, name, expression, action, enabled, created_at, updated_at
		FROM guard_rules WHERE enabled=true
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (r *GuardRepository) SetEnabled(ctx context.Context, ruleID uuid.UUID, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE guard_rules SET enabled=$2, updated_at=now() WHERE rule_id=$1
	`, ruleID, enabled)
	return err
}

func scanRule(row pgx.Row) (*guard.Rule, error) {
	var rule guard.Rule
	if err := row.Scan(&rule.ID, &rule.RuleID, &rule.Name, &rule.Expression, &rule.Action, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func collectRules(rows pgx.Rows) ([]*guard.Rule, error) {
	var out []*guard.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
