package broadcast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	"github.com/quotehub/quotehub/internal/domain/audit"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/event"
	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

// Service owns the broadcast lifecycle: creation with fan-out, customer
// cancellation, and time-based expiry (lazy on read plus the eager
// sweep).
type Service struct {
	repo            broadcast.Repository
	auditSvc        *appAudit.Service
	hub             domainSync.Hub
	events          event.Publisher
	defaultExpiry   time.Duration
	merchantTimeout time.Duration
	logger          zerolog.Logger
	nowFunc         func() time.Time
}

// NewService creates a broadcast service. merchantTimeout bounds how
// long an individual merchant may take to price; the effective pricing
// deadline per request is the sooner of it and the broadcast expiry.
func NewService(
	repo broadcast.Repository,
	auditSvc *appAudit.Service,
	hub domainSync.Hub,
	events event.Publisher,
	defaultExpiry time.Duration,
	merchantTimeout time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:            repo,
		auditSvc:        auditSvc,
		hub:             hub,
		events:          events,
		defaultExpiry:   defaultExpiry,
		merchantTimeout: merchantTimeout,
		logger:          logger.With().Str("service", "broadcast").Logger(),
		nowFunc:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateParams carries a customer's order intent.
type CreateParams struct {
	CustomerID      uuid.UUID
	MerchantIDs     []uuid.UUID
	OrderType       broadcast.OrderType
	DeliveryAddress *string
	Intent          broadcast.Intent
	Expiry          time.Duration
}

// View is a broadcast together with its requests, the shape both
// comparison screens re-fetch.
type View struct {
	Broadcast *broadcast.Broadcast `json:"broadcast"`
	Requests  []*broadcast.Request `json:"requests"`
}

// Create fans an order intent out to the targeted merchants: one ACTIVE
// broadcast plus one PENDING request per merchant, persisted atomically.
func (s *Service) Create(ctx context.Context, p CreateParams) (*View, error) {
	if err := broadcast.ValidateMerchants(p.MerchantIDs); err != nil {
		return nil, err
	}
	if p.Intent.Empty() {
		return nil, broadcast.ErrInvalidIntent
	}
	if !broadcast.ValidOrderType(p.OrderType) {
		return nil, broadcast.ErrInvalidIntent
	}
	expiry := p.Expiry
	if expiry <= 0 {
		expiry = s.defaultExpiry
	}

	now := s.nowFunc()
	expiresAt := now.Add(expiry)
	b := &broadcast.Broadcast{
		BroadcastID:     uuid.New(),
		CustomerID:      p.CustomerID,
		OrderType:       p.OrderType,
		DeliveryAddress: p.DeliveryAddress,
		Intent:          p.Intent,
		Status:          broadcast.StatusActive,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
		UpdatedAt:       now,
	}

	pricingDeadline := expiresAt
	if s.merchantTimeout > 0 && now.Add(s.merchantTimeout).Before(expiresAt) {
		pricingDeadline = now.Add(s.merchantTimeout)
	}
	requests := make([]*broadcast.Request, 0, len(p.MerchantIDs))
	for _, merchantID := range p.MerchantIDs {
		requests = append(requests, &broadcast.Request{
			RequestID:       uuid.New(),
			BroadcastID:     b.BroadcastID,
			MerchantID:      merchantID,
			Status:          broadcast.RequestPending,
			PricingDeadline: pricingDeadline,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := s.repo.CreateBroadcast(ctx, b, requests); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeBroadcast,
		EntityID:   b.BroadcastID.String(),
		Action:     audit.ActionCreate,
		Actor:      "customer:" + p.CustomerID.String(),
	})
	s.hub.PublishToAccount(p.CustomerID.String(), domainSync.NewBroadcastChanged(b.BroadcastID))
	for _, req := range requests {
		s.hub.PublishToAccount(req.MerchantID.String(), domainSync.NewRequestChanged(b.BroadcastID, req.RequestID))
	}

	s.logger.Info().
		Str("broadcast_id", b.BroadcastID.String()).
		Int("merchants", len(requests)).
		Time("expires_at", expiresAt).
		Msg("broadcast created")
	return &View{Broadcast: b, Requests: requests}, nil
}

// Get returns a broadcast and its requests for its owning customer,
// applying lazy expiry first so readers never see a stale ACTIVE state
// past the deadline.
func (s *Service) Get(ctx context.Context, broadcastID, customerID uuid.UUID) (*View, error) {
	b, err := s.loadFresh(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, broadcast.ErrForbidden
	}
	requests, err := s.repo.ListRequests(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	return &View{Broadcast: b, Requests: requests}, nil
}

// List returns a customer's broadcasts, newest first.
func (s *Service) List(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*broadcast.Broadcast, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

// Cancel is the customer-initiated ACTIVE -> CANCELLED transition,
// cascading to all non-terminal requests.
func (s *Service) Cancel(ctx context.Context, broadcastID, customerID uuid.UUID) error {
	b, err := s.loadFresh(ctx, broadcastID)
	if err != nil {
		return err
	}
	if b.CustomerID != customerID {
		return broadcast.ErrForbidden
	}
	committed, err := s.repo.CancelBroadcast(ctx, broadcastID)
	if err != nil {
		return err
	}
	if !committed {
		return broadcast.ErrAlreadyTerminal
	}

	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeBroadcast,
		EntityID:   broadcastID.String(),
		Action:     audit.ActionCancel,
		Actor:      "customer:" + customerID.String(),
	})
	s.publishBroadcastChanged(ctx, b)
	if err := s.events.Publish(ctx, event.New(event.TypeBroadcastCancelled, broadcastID)); err != nil {
		s.logger.Warn().Err(err).Str("broadcast_id", broadcastID.String()).Msg("cancel event dispatch failed")
	}
	return nil
}

// Expire performs the guarded transition to EXPIRED when the deadline
// has elapsed. Safe to call concurrently and redundantly: a lost or
// unnecessary attempt is a no-op.
func (s *Service) Expire(ctx context.Context, broadcastID uuid.UUID) (bool, error) {
	b, err := s.repo.GetBroadcast(ctx, broadcastID)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, broadcast.ErrNotFound
	}
	if b.IsTerminal() || !b.IsDue(s.nowFunc()) {
		return false, nil
	}
	committed, err := s.repo.ExpireBroadcast(ctx, broadcastID, s.nowFunc())
	if err != nil {
		return false, err
	}
	if !committed {
		return false, nil
	}

	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeBroadcast,
		EntityID:   broadcastID.String(),
		Action:     audit.ActionExpire,
		Actor:      "system:sweep",
	})
	s.publishBroadcastChanged(ctx, b)
	if err := s.events.Publish(ctx, event.New(event.TypeBroadcastExpired, broadcastID)); err != nil {
		s.logger.Warn().Err(err).Str("broadcast_id", broadcastID.String()).Msg("expire event dispatch failed")
	}
	return true, nil
}

// SweepExpired expires every due broadcast, up to limit. Runs on a
// ticker; losing a race against an in-flight approval is expected and
// harmless.
func (s *Service) SweepExpired(ctx context.Context, limit int) (int, error) {
	due, err := s.repo.ListDue(ctx, s.nowFunc(), limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range due {
		committed, err := s.Expire(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("broadcast_id", id.String()).Msg("sweep expire failed")
			continue
		}
		if committed {
			expired++
		}
	}
	return expired, nil
}

// loadFresh loads a broadcast and applies lazy expiry before returning
// it.
func (s *Service) loadFresh(ctx context.Context, broadcastID uuid.UUID) (*broadcast.Broadcast, error) {
	b, err := s.repo.GetBroadcast(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, broadcast.ErrNotFound
	}
	if b.Status == broadcast.StatusActive && b.IsDue(s.nowFunc()) {
		if _, err := s.Expire(ctx, broadcastID); err != nil {
			return nil, err
		}
		b, err = s.repo.GetBroadcast(ctx, broadcastID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, broadcast.ErrNotFound
		}
	}
	return b, nil
}

func (s *Service) publishBroadcastChanged(ctx context.Context, b *broadcast.Broadcast) {
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
