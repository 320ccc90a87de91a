package broadcast

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/order"
	"github.com/quotehub/quotehub/internal/domain/pricing"
)

// Repository defines persistence for broadcasts and their requests.
//
// The conditional methods return (false, nil) when the guarding status
// check did not hold; the caller re-reads to learn which terminal state
// won. They are the only way state transitions reach the store, so the
// store's own conditional update is the serialization point for racing
// approvals, expiries and cancellations.
type Repository interface {
	// CreateBroadcast persists a broadcast and its requests atomically.
	CreateBroadcast(ctx context.Context, b *Broadcast, requests []*Request) error
	GetBroadcast(ctx context.Context, broadcastID uuid.UUID) (*Broadcast, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Broadcast, error)
	// ListDue returns active broadcasts whose expiry deadline has elapsed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	// ListChangedSince feeds the reconciliation poll.
	ListChangedSince(ctx context.Context, since time.Time, limit int) ([]*Broadcast, error)

	GetRequest(ctx context.Context, requestID uuid.UUID) (*Request, error)
	ListRequests(ctx context.Context, broadcastID uuid.UUID) ([]*Request, error)
	ListPendingByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Request, error)

	// StorePricing replaces the item list and financials of a request,
	// guarded by status IN (PENDING, PRICED).
	StorePricing(ctx context.Context, requestID uuid.UUID, items []pricing.Item, fin pricing.Financials, notes *string, pricedAt time.Time) (bool, error)
	// RejectRequest transitions one request PRICED -> CUSTOMER_REJECTED.
	RejectRequest(ctx context.Context, requestID uuid.UUID) (bool, error)
	// ExpireRequest transitions a non-terminal request to EXPIRED.
	ExpireRequest(ctx context.Context, requestID uuid.UUID) (bool, error)

	// ExpireBroadcast performs the guarded ACTIVE -> EXPIRED transition
	// (only when the deadline has elapsed at now) and cascades EXPIRED to
	// every non-terminal request in the same transaction.
	ExpireBroadcast(ctx context.Context, broadcastID uuid.UUID, now time.Time) (bool, error)
	// CancelBroadcast performs the guarded ACTIVE -> CANCELLED transition,
	// cascading CANCELLED to every non-terminal request.
	CancelBroadcast(ctx context.Context, broadcastID uuid.UUID) (bool, error)
	// ApproveAndComplete performs the single atomic decision step: the
	// guarded ACTIVE -> COMPLETED update with winning_request_id, the
	// chosen request to CUSTOMER_APPROVED, priced siblings to
	// CUSTOMER_REJECTED, pending siblings to CANCELLED, and the binding
	// order insert, all in one transaction. The winner update is
	// additionally guarded by priced_at = pricedAt, so an approval built
	// from one quote revision cannot bind an order after the merchant
	// resubmitted a newer revision. Callers that lose either guard
	// observe (false, nil) with none of their effects applied.
	ApproveAndComplete(ctx context.Context, broadcastID, requestID uuid.UUID, pricedAt time.Time, ord *order.Order) (bool, error)
}
