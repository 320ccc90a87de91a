package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	"github.com/quotehub/quotehub/internal/domain/audit"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/event"
	"github.com/quotehub/quotehub/internal/domain/guard"
	"github.com/quotehub/quotehub/internal/domain/pricing"
	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

// Service handles the merchant side of a broadcast: viewing pending
// requests and submitting or replacing a quote.
type Service struct {
	repo      broadcast.Repository
	validator *pricing.Validator
	guardRepo guard.Repository
	auditSvc  *appAudit.Service
	hub       domainSync.Hub
	events    event.Publisher
	logger    zerolog.Logger
	nowFunc   func() time.Time
}

// NewService creates a quote service.
func NewService(
	repo broadcast.Repository,
	validator *pricing.Validator,
	guardRepo guard.Repository,
	auditSvc *appAudit.Service,
	hub domainSync.Hub,
	events event.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		guardRepo: guardRepo,
		auditSvc:  auditSvc,
		hub:       hub,
		events:    events,
		logger:    logger.With().Str("service", "quote").Logger(),
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// SubmitPricing validates and stores a merchant's quote. Legal from
// PENDING (first submission) and PRICED (resubmission replacing the full
// item list); financials are always recomputed from the submitted items.
// A submission past the pricing deadline is refused and forces the
// request to EXPIRED instead.
func (s *Service) SubmitPricing(ctx context.Context, requestID, merchantID uuid.UUID, items []pricing.Item, deliveryFeeCents int64, notes *string) (*broadcast.Request, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, broadcast.ErrNotFound
	}
	if req.MerchantID != merchantID {
		return nil, broadcast.ErrForbidden
	}
	if !req.AcceptsPricing() {
		return nil, broadcast.ErrInvalidState
	}

	now := s.nowFunc()
	if req.DeadlinePassed(now) {
		if expired, err := s.repo.ExpireRequest(ctx, requestID); err != nil {
			return nil, err
		} else if expired {
			s.publishRequestChanged(ctx, req)
		}
		return nil, broadcast.ErrDeadlinePassed
	}

	if err := s.validator.ValidateSubmission(items, deliveryFeeCents); err != nil {
		return nil, err
	}
	fin := pricing.Compute(items, deliveryFeeCents)

	if err := s.applyGuardRules(ctx, req, items, fin, merchantID); err != nil {
		return nil, err
	}

	committed, err := s.repo.StorePricing(ctx, requestID, items, fin, notes, now)
	if err != nil {
		return nil, err
	}
	if !committed {
		// The request reached a terminal state between the read and the
		// conditional write.
		return nil, broadcast.ErrInvalidState
	}

	req, err = s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, broadcast.ErrNotFound
	}

	s.auditSvc.Log(ctx, &audit.Entry{
		EntityType: audit.EntityTypeRequest,
		EntityID:   requestID.String(),
		Action:     audit.ActionPrice,
		Actor:      "merchant:" + merchantID.String(),
	})
	s.publishRequestChanged(ctx, req)

	ev := event.New(event.TypeRequestPriced, req.BroadcastID)
	ev.RequestID = &req.RequestID
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID.String()).Msg("priced event dispatch failed")
	}

	s.logger.Info().
		Str("request_id", requestID.String()).
		Int64("subtotal_cents", fin.SubtotalCents).
		Int("commission_bps", fin.CommissionRateBps).
		Msg("pricing stored")
	return req, nil
}

// ListPending returns a merchant's open requests.
func (s *Service) ListPending(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*broadcast.Request, error) {
	return s.repo.ListPendingByMerchant(ctx, merchantID, limit, offset)
}

// GetForMerchant returns one request, enforcing that it is addressed to
// the calling merchant.
func (s *Service) GetForMerchant(ctx context.Context, requestID, merchantID uuid.UUID) (*broadcast.Request, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, broadcast.ErrNotFound
	}
	if req.MerchantID != merchantID {
		return nil, broadcast.ErrForbidden
	}
	return req, nil
}

// applyGuardRules evaluates enabled guard rules against the submission.
// A matched BLOCK rule rejects the submission; a matched FLAG rule is
// recorded to the audit trail and lets it through.
func (s *Service) applyGuardRules(ctx context.Context, req *broadcast.Request, items []pricing.Item, fin pricing.Financials, merchantID uuid.UUID) error {
	rules, err := s.guardRepo.ListEnabled(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	params := guard.BuildParams(items, fin)
	for _, r := range rules {
		matched, err := guard.Evaluate(r, params)
		if err != nil {
			s.logger.Warn().Err(err).Str("rule", r.Name).Msg("guard rule evaluation failed")
			continue
		}
		if !matched {
			continue
		}
		switch r.Action {
		case guard.ActionBlock:
			return &pricing.ValidationError{Items: []pricing.ItemError{{
				Index:   -1,
				Field:   "submission",
				Message: fmt.Sprintf("blocked by pricing rule %q", r.Name),
			}}}
		case guard.ActionFlag:
			detail := fmt.Sprintf("rule %q matched", r.Name)
			s.auditSvc.Log(ctx, &audit.Entry{
				EntityType: audit.EntityTypeRequest,
				EntityID:   req.RequestID.String(),
				Action:     audit.ActionFlag,
				Actor:      "merchant:" + merchantID.String(),
				Detail:     &detail,
			})
		}
	}
	return nil
}

// publishRequestChanged notifies the merchant and the broadcast's
// customer that the request must be re-read.
func (s *Service) publishRequestChanged(ctx context.Context, req *broadcast.Request) {
	ev := domainSync.NewRequestChanged(req.BroadcastID, req.RequestID)
	s.hub.PublishToAccount(req.MerchantID.String(), ev)
	b, err := s.repo.GetBroadcast(ctx, req.BroadcastID)
	if err != nil || b == nil {
		if err != nil {
			s.logger.Warn().Err(err).Str("broadcast_id", req.BroadcastID.String()).Msg("failed to load broadcast for sync publish")
		}
		return
	}
	s.hub.PublishToAccount(b.CustomerID.String(), ev)
}
