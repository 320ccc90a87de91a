package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotehub/quotehub/internal/domain/audit"
)

// AuditRepository implements audit.Repository. Entries are append-only.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *audit.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_entries
		(entry_id, entity_type, entity_id, action, actor, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.EntryID, e.EntityType, e.EntityID, e.Action, e.Actor, e.Detail, e.CreatedAt)
	return err
}

func (r *AuditRepository) List(ctx context.Context, entityType audit.EntityType, entityID string, limit, offset int) ([]*audit.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, entity_type, entity_id, action, actor, detail, created_at
		FROM audit_entries
		WHERE entity_type=$1 AND entity_id=$2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*audit.Entry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAuditEntry(row pgx.Row) (*audit.Entry, error) {
	var e audit.Entry
	if err := row.Scan(&e.ID, &e.EntryID, &e.EntityType, &e.EntityID, &e.Action, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
