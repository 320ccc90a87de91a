package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotehub/quotehub/internal/domain/broadcast"
	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

// Reconciler periodically re-publishes invalidation events for recently
// changed broadcasts. Push delivery is best effort and drops on full
// buffers, so clients that missed an event pick the change up on the
// next sweep instead of waiting for their own poll.
type Reconciler struct {
	repo     broadcast.Repository
	hub      domainSync.Hub
	lookback time.Duration
	limit    int
	logger   zerolog.Logger
	nowFunc  func() time.Time
}

// NewReconciler creates a reconciler that republishes changes observed
// within lookback of each run.
func NewReconciler(repo broadcast.Repository, hub domainSync.Hub, lookback time.Duration, limit int, logger zerolog.Logger) *Reconciler {
	if limit <= 0 {
		limit = 200
	}
	return &Reconciler{
		repo:     repo,
		hub:      hub,
		lookback: lookback,
		limit:    limit,
		logger:   logger.With().Str("service", "sync-reconciler").Logger(),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile republishes invalidation events for broadcasts updated since
// the lookback window started. Duplicate delivery is fine; subscribers
// treat events as re-read hints.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	since := r.nowFunc().Add(-r.lookback)
	changed, err := r.repo.ListChangedSince(ctx, since, r.limit)
	if err != nil {
		return 0, err
	}
	for _, b := range changed {
		r.hub.PublishToAccount(b.CustomerID.String(), domainSync.NewBroadcastChanged(b.BroadcastID))
		requests, err := r.repo.ListRequests(ctx, b.BroadcastID)
		if err != nil {
			r.logger.Warn().Err(err).Str("broadcast_id", b.BroadcastID.String()).Msg("failed to list requests during reconcile")
			continue
		}
		for _, req := range requests {
			r.hub.PublishToAccount(req.MerchantID.String(), domainSync.NewRequestChanged(b.BroadcastID, req.RequestID))
		}
	}
	return len(changed), nil
}

// Run reconciles on a fixed interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Reconcile(ctx)
			if err != nil {
				r.logger.Warn().Err(err).Msg("reconcile pass failed")
				continue
			}
			if n > 0 {
				r.logger.Debug().Int("broadcasts", n).Msg("reconcile pass republished changes")
			}
		}
	}
}
