package broadcast

import (
	"time"

	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/pricing"
)

// RequestStatus represents the lifecycle of one merchant's slot within a
// broadcast.
type RequestStatus string

const (
	RequestPending          RequestStatus = "PENDING"
	RequestPriced           RequestStatus = "PRICED"
	RequestCustomerApproved RequestStatus = "CUSTOMER_APPROVED"
	RequestCustomerRejected RequestStatus = "CUSTOMER_REJECTED"
	RequestExpired          RequestStatus = "EXPIRED"
	RequestCancelled        RequestStatus = "CANCELLED"
)

// Request is one merchant's quote slot. Financials are present exactly
// while the request is priced or customer-decided; resubmission replaces
// the item list and recomputes them.
type Request struct {
	ID              int64               `json:"id"`
	RequestID       uuid.UUID           `json:"requestId"`
	BroadcastID     uuid.UUID           `json:"broadcastId"`
	MerchantID      uuid.UUID           `json:"merchantId"`
	Status          RequestStatus       `json:"status"`
	Items           []pricing.Item      `json:"items"`
	Financials      *pricing.Financials `json:"financials,omitempty"`
	MerchantNotes   *string             `json:"merchantNotes,omitempty"`
	PricedAt        *time.Time          `json:"pricedAt,omitempty"`
	PricingDeadline time.Time           `json:"pricingDeadline"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// CanTransitionTo validates a request status transition. Approval and
// rejection are reachable only from PRICED; a priced request may still
// expire if the customer never acts before the broadcast deadline.
func (r *Request) CanTransitionTo(target RequestStatus) bool {
	transitions := map[RequestStatus][]RequestStatus{
		RequestPending:          {RequestPriced, RequestExpired, RequestCancelled},
		RequestPriced:           {RequestPriced, RequestCustomerApproved, RequestCustomerRejected, RequestExpired, RequestCancelled},
		RequestCustomerApproved: {},
		RequestCustomerRejected: {},
		RequestExpired:          {},
		RequestCancelled:        {},
	}
	for _, s := range transitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request can no longer change state.
func (r *Request) IsTerminal() bool {
	switch r.Status {
	case RequestCustomerApproved, RequestCustomerRejected, RequestExpired, RequestCancelled:
		return true
	}
	return false
}

// AcceptsPricing reports whether a merchant submission is currently
// legal (first submission or resubmission before a customer decision).
func (r *Request) AcceptsPricing() bool {
	return r.Status == RequestPending || r.Status == RequestPriced
}

// DeadlinePassed reports whether the pricing deadline has elapsed.
func (r *Request) DeadlinePassed(now time.Time) bool {
	return now.After(r.PricingDeadline)
}
