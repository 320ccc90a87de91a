package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for binding orders. Order creation
// itself happens inside the broadcast repository's approval transaction;
// this interface covers reads.
type Repository interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetByBroadcastID(ctx context.Context, broadcastID uuid.UUID) (*Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Order, error)
}
