package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/order"
	"github.com/quotehub/quotehub/internal/domain/pricing"
)

// BroadcastRepository implements broadcast.Repository. Every state
// transition is a conditional UPDATE guarded by the current status, so
// the database row is the serialization point for racing approvals,
// expiries and cancellations.
type BroadcastRepository struct {
	pool *pgxpool.Pool
}

func NewBroadcastRepository(pool *pgxpool.Pool) *BroadcastRepository {
	return &BroadcastRepository{pool: pool}
}

func (r *BroadcastRepository) CreateBroadcast(ctx context.Context, b *broadcast.Broadcast, requests []*broadcast.Request) error {
	intent, err := json.Marshal(b.Intent)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO broadcasts
		(broadcast_id, customer_id, order_type, delivery_address, intent, status, created_at, expires_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, b.BroadcastID, b.CustomerID, b.OrderType, b.DeliveryAddress, intent, b.Status, b.CreatedAt, b.ExpiresAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	for _, req := range requests {
		_, err = tx.Exec(ctx, `
			INSERT INTO requests
			(request_id, broadcast_id, merchant_id, status, pricing_deadline, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, req.RequestID, req.BroadcastID, req.MerchantID, req.Status, req.PricingDeadline, req.CreatedAt, req.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const broadcastColumns = `id, broadcast_id, customer_id, order_type, delivery_address, intent, status, winning_request_id, created_at, expires_at, updated_at`

func (r *BroadcastRepository) GetBroadcast(ctx context.Context, broadcastID uuid.UUID) (*broadcast.Broadcast, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+broadcastColumns+` FROM broadcasts WHERE broadcast_id=$1
	`, broadcastID)
	return scanBroadcast(row)
}

func (r *BroadcastRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*broadcast.Broadcast, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+broadcastColumns+` FROM broadcasts
		WHERE customer_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBroadcasts(rows)
}

func (r *BroadcastRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT broadcast_id FROM broadcasts
		WHERE status='ACTIVE' AND expires_at <= $1
		ORDER BY expires_at ASC LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *BroadcastRepository) ListChangedSince(ctx context.Context, since time.Time, limit int) ([]*broadcast.Broadcast, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+broadcastColumns+` FROM broadcasts
		WHERE updated_at >= $1
		ORDER BY updated_at ASC LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBroadcasts(rows)
}

const requestColumns = `id, request_id, broadcast_id, merchant_id, status, items, financials, merchant_notes, priced_at, pricing_deadline, created_at, updated_at`

func (r *BroadcastRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*broadcast.Request, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM requests WHERE request_id=$1
	`, requestID)
	return scanRequest(row)
}

func (r *BroadcastRepository) ListRequests(ctx context.Context, broadcastID uuid.UUID) ([]*broadcast.Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE broadcast_id=$1
		ORDER BY created_at ASC
	`, broadcastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *BroadcastRepository) ListPendingByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*broadcast.Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE merchant_id=$1 AND status IN ('PENDING','PRICED')
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, merchantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *BroadcastRepository) StorePricing(ctx context.Context, requestID uuid.UUID, items []pricing.Item, fin pricing.Financials, notes *string, pricedAt time.Time) (bool, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return false, err
	}
	finJSON, err := json.Marshal(fin)
	if err != nil {
		return false, err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE requests
		SET status='PRICED', items=$2, financials=$3, merchant_notes=$4, priced_at=$5, updated_at=$5
		WHERE request_id=$1 AND status IN ('PENDING','PRICED')
	`, requestID, itemsJSON, finJSON, notes, pricedAt)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *BroadcastRepository) RejectRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE requests
		SET status='CUSTOMER_REJECTED', updated_at=now()
		WHERE request_id=$1 AND status='PRICED'
	`, requestID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *BroadcastRepository) ExpireRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE requests
		SET status='EXPIRED', updated_at=now()
		WHERE request_id=$1 AND status IN ('PENDING','PRICED')
	`, requestID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *BroadcastRepository) ExpireBroadcast(ctx context.Context, broadcastID uuid.UUID, now time.Time) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE broadcasts
		SET status='EXPIRED', updated_at=now()
		WHERE broadcast_id=$1 AND status='ACTIVE' AND expires_at <= $2
	`, broadcastID, now)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() != 1 {
		return false, nil
	}
	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET status='EXPIRED', updated_at=now()
		WHERE broadcast_id=$1 AND status IN ('PENDING','PRICED')
	`, broadcastID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *BroadcastRepository) CancelBroadcast(ctx context.Context, broadcastID uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE broadcasts
		SET status='CANCELLED', updated_at=now()
		WHERE broadcast_id=$1 AND status='ACTIVE'
	`, broadcastID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() != 1 {
		return false, nil
	}
	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET status='CANCELLED', updated_at=now()
		WHERE broadcast_id=$1 AND status IN ('PENDING','PRICED')
	`, broadcastID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *BroadcastRepository) ApproveAndComplete(ctx context.Context, broadcastID, requestID uuid.UUID, pricedAt time.Time, ord *order.Order) (bool, error) {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return false, err
	}
	finJSON, err := json.Marshal(ord.Financials)
	if err != nil {
		return false, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// The broadcast row update is the decision point: the first
	// transaction to flip ACTIVE to COMPLETED wins, every other
	// contender matches zero rows and rolls back.
	res, err := tx.Exec(ctx, `
		UPDATE broadcasts
		SET status='COMPLETED', winning_request_id=$2, updated_at=now()
		WHERE broadcast_id=$1 AND status='ACTIVE'
	`, broadcastID, requestID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() != 1 {
		return false, nil
	}

	// Matching priced_at pins the approval to the quote revision the
	// customer actually saw; a resubmission in between bumps priced_at
	// and voids the attempt.
	res, err = tx.Exec(ctx, `
		UPDATE requests
		SET status='CUSTOMER_APPROVED', updated_at=now()
		WHERE request_id=$1 AND status='PRICED' AND priced_at=$2
	`, requestID, pricedAt)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() != 1 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET status='CUSTOMER_REJECTED', updated_at=now()
		WHERE broadcast_id=$1 AND request_id <> $2 AND status='PRICED'
	`, broadcastID, requestID)
	if err != nil {
		return false, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET status='CANCELLED', updated_at=now()
		WHERE broadcast_id=$1 AND request_id <> $2 AND status='PENDING'
	`, broadcastID, requestID)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
		(order_id, broadcast_id, request_id, customer_id, merchant_id, order_type, delivery_address, items, financials, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ord.OrderID, ord.BroadcastID, ord.RequestID, ord.CustomerID, ord.MerchantID, ord.OrderType, ord.DeliveryAddress, itemsJSON, finJSON, ord.CreatedAt)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func scanBroadcast(row pgx.Row) (*broadcast.Broadcast, error) {
	var b broadcast.Broadcast
	var intent []byte
	var winning *uuid.UUID
	if err := row.Scan(&b.ID, &b.BroadcastID, &b.CustomerID, &b.OrderType, &b.DeliveryAddress, &intent, &b.Status, &winning, &b.CreatedAt, &b.ExpiresAt, &b.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(intent, &b.Intent); err != nil {
		return nil, err
	}
	b.WinningRequestID = winning
	return &b, nil
}

func collectBroadcasts(rows pgx.Rows) ([]*broadcast.Broadcast, error) {
	var out []*broadcast.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*broadcast.Request, error) {
	var req broadcast.Request
	var items, fin []byte
	if err := row.Scan(&req.ID, &req.RequestID, &req.BroadcastID, &req.MerchantID, &req.Status, &items, &fin, &req.MerchantNotes, &req.PricedAt, &req.PricingDeadline, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if items != nil {
		if err := json.Unmarshal(items, &req.Items); err != nil {
			return nil, err
		}
	}
	if fin != nil {
		var f pricing.Financials
		if err := json.Unmarshal(fin, &f); err != nil {
			return nil, err
		}
		req.Financials = &f
	}
	return &req, nil
}

func collectRequests(rows pgx.Rows) ([]*broadcast.Request, error) {
	var out []*broadcast.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
