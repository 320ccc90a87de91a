package approval

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	"github.com/quotehub/quotehub/internal/domain/audit"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/event"
	"github.com/quotehub/quotehub/internal/domain/order"
	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

// ErrRateLimited is returned when an account exceeds the decision
// attempt budget.
var ErrRateLimited = errors.New("too many decision attempts, slow down")

// Service coordinates the customer's decision on a broadcast: exactly
// one request may ever be approved, and exactly one binding order may
// ever be created. The serialization point is the store's conditional
// ACTIVE -> COMPLETED update, not any application-level lock.
type Service struct {
	repo     broadcast.Repository
	limiter  *Limiter
	auditSvc *appAudit.Service
	hub      domainSync.Hub
	events   event.Publisher
	logger   zerolog.Logger
	nowFunc  func() time.Time
}

// NewService creates an approval coordinator.
func NewService(
	repo broadcast.Repository,
	limiter *Limiter,
	auditSvc *appAudit.Service,
	hub domainSync.Hub,
	events event.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		limiter:  limiter,
		auditSvc: auditSvc,
		hub:      hub,
		events:   events,
		logger:   logger.With().Str("service", "approval").Logger(),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Approve selects one priced request as the winner. Precondition checks
// run first and have no side effects; the decision itself is a single
// atomic store transaction. Concurrent calls, for the same or sibling
// requests, produce exactly one winner; every loser gets
// ErrAlreadyDecided (or ErrInvalidState when expiry or cancellation won
// the race) with none of its own effects applied.
func (s *Service) Approve(ctx context.Context, broadcastID, requestID, customerID uuid.UUID) (*order.Order, error) {
	if !s.limiter.Allow(customerID.String()) {
		return nil, ErrRateLimited
	}

	b, err := s.repo.GetBroadcast(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, broadcast.ErrNotFound
	}
	if b.CustomerID != customerID {
		return nil, broadcast.ErrForbidden
	}
	switch b.Status {
	case broadcast.StatusActive:
		// Deadline reached but not yet swept: the approval loses.
		if b.IsDue(s.nowFunc()) {
			return nil, broadcast.ErrInvalidState
		}
	case broadcast.StatusCompleted:
		return nil, broadcast.ErrAlreadyDecided
	default:
		return nil, broadcast.ErrInvalidState
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.BroadcastID != broadcastID {
		return nil, broadcast.ErrNotFound
	}
	if req.Status != broadcast.RequestPriced {
		return nil, broadcast.ErrInvalidState
	}
	if req.Financials == nil || req.PricedAt == nil {
		return nil, broadcast.ErrInvalidState
	}

	ord := &order.Order{
		OrderID:         uuid.New(),
		BroadcastID:     broadcastID,
		RequestID:       requestID,
		CustomerID:      customerID,
		MerchantID:      req.MerchantID,
		OrderType:       string(b.OrderType),
		DeliveryAddress: b.DeliveryAddress,
		Items:           order.LineItemsFrom(req.Items),
		Financials:      *req.Financials,
		CreatedAt:       s.nowFunc(),
	}

	// pricedAt pins the attempt to the quote revision read above; if the
	// merchant resubmits in between, the store refuses the stale snapshot.
	committed, err := s.repo.ApproveAndComplete(ctx, broadcastID, requestID, *req.PricedAt, ord)
	if err != nil {
		return nil, err
	}
	if !committed {
		// Lost a race: either another decision reached a terminal state
		// first, or the quote was revised under us. Re-read to tell the
		// caller which.
		b, err = s.repo.GetBroadcast(ctx, broadcastID)
		if err != nil {
			return nil, err
		}
		if b != nil && b.Status == broadcast.StatusCompleted {
			return nil, broadcast.ErrAlreadyDecided
		}
		return nil, broadcast.ErrInvalidState
	}

	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeBroadcast,
		EntityID:   broadcastID.String(),
		Action:     audit.ActionApprove,
		Actor:      "customer:" + customerID.String(),
	})
	s.publishDecision(ctx, b)

	ev := event.New(event.TypeBroadcastCompleted, broadcastID)
	ev.RequestID = &requestID
	ev.OrderID = &ord.OrderID
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("broadcast_id", broadcastID.String()).Msg("completed event dispatch failed")
	}

	s.logger.Info().
		Str("broadcast_id", broadcastID.String()).
		Str("winning_request_id", requestID.String()).
		Str("order_id", ord.OrderID.String()).
		Msg("broadcast completed")
	return ord, nil
}

// Reject declines one merchant's quote without ending the broadcast.
// Siblings and the broadcast itself stay untouched.
func (s *Service) Reject(ctx context.Context, broadcastID, requestID, customerID uuid.UUID, reason string) error {
	if !s.limiter.Allow(customerID.String()) {
		return ErrRateLimited
	}

	b, err := s.repo.GetBroadcast(ctx, broadcastID)
	if err != nil {
		return err
	}
	if b == nil {
		return broadcast.ErrNotFound
	}
	if b.CustomerID != customerID {
		return broadcast.ErrForbidden
	}
	if b.Status != broadcast.StatusActive {
		return broadcast.ErrInvalidState
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil || req.BroadcastID != broadcastID {
		return broadcast.ErrNotFound
	}
	if req.Status != broadcast.RequestPriced {
		return broadcast.ErrInvalidState
	}

	committed, err := s.repo.RejectRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if !committed {
		return broadcast.ErrInvalidState
	}

	detail := reason
	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeRequest,
		EntityID:   requestID.String(),
		Action:     audit.ActionReject,
		Actor:      "customer:" + customerID.String(),
		Detail:     &detail,
	})
	ev := domainSync.NewRequestChanged(broadcastID, requestID)
	s.hub.PublishToAccount(req.MerchantID.String(), ev)
	s.hub.PublishToAccount(customerID.String(), ev)
	return nil
}

// publishDecision emits invalidation events only after the atomic step
// committed, so no observer sees a completed broadcast with stale child
// state.
func (s *Service) publishDecision(ctx context.Context, b *broadcast.Broadcast) {
	s.hub.PublishToAccount(b.CustomerID.String(), domainSync.NewBroadcastChanged(b.BroadcastID))
	requests, err := s.repo.ListRequests(ctx, b.BroadcastID)
	if err != nil {
		s.logger.Warn().Err(err).Str("broadcast_id", b.BroadcastID.String()).Msg("failed to list requests for sync publish")
		return
	}
	for _, req := range requests {
		s.hub.PublishToAccount(req.MerchantID.String(), domainSync.NewRequestChanged(b.BroadcastID, req.RequestID))
	}
}
