package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	"github.com/quotehub/quotehub/internal/domain/audit"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/broadcast/mocks"
	"github.com/quotehub/quotehub/internal/domain/event"
	"github.com/quotehub/quotehub/internal/domain/order"
	"github.com/quotehub/quotehub/internal/domain/pricing"
	domainSync "github.com/quotehub/quotehub/internal/domain/sync"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (r *memAuditRepo) Insert(_ context.Context, e *audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, _ audit.EntityType, _ string, _, _ int) ([]*audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

type recordHub struct {
	mu     sync.Mutex
	events map[string][]*domainSync.Event
}

func newRecordHub() *recordHub {
	return &recordHub{events: make(map[string][]*domainSync.Event)}
}

func (h *recordHub) Register(*domainSync.Client) {}
func (h *recordHub) Unregister(string)           {}

func (h *recordHub) PublishToAccount(accountID string, ev *domainSync.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[accountID] = append(h.events[accountID], ev)
}

func (h *recordHub) PublishToAll(ev *domainSync.Event) {}

func newTestService(repo broadcast.Repository) (*Service, *memAuditRepo, *recordHub) {
	auditRepo := &memAuditRepo{}
	hub := newRecordHub()
	svc := NewService(
		repo,
		NewLimiter(0, time.Minute),
		appAudit.NewService(auditRepo, zerolog.Nop()),
		hub,
		event.NopPublisher{},
		zerolog.Nop(),
	)
	return svc, auditRepo, hub
}

func pricedRequest(broadcastID, merchantID uuid.UUID, deadline time.Time) *broadcast.Request {
	items := []pricing.Item{{RequestedText: "tomatoes", Name: "tomatoes", UnitType: pricing.UnitKg, UnitPriceCents: 2_000, Quantity: 3, Availability: pricing.AvailabilityAvailable}}
	fin := pricing.Compute(items, 1_500)
	now := time.Now().UTC()
	return &broadcast.Request{
		RequestID:       uuid.New(),
		BroadcastID:     broadcastID,
		MerchantID:      merchantID,
		Status:          broadcast.RequestPriced,
		Items:           items,
		Financials:      &fin,
		PricedAt:        &now,
		PricingDeadline: deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func activeBroadcast(customerID uuid.UUID) *broadcast.Broadcast {
	text := "2kg tomatoes"
	now := time.Now().UTC()
	return &broadcast.Broadcast{
		BroadcastID: uuid.New(),
		CustomerID:  customerID,
		OrderType:   broadcast.OrderTypePickup,
		Intent:      broadcast.Intent{Text: &text},
		Status:      broadcast.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
		UpdatedAt:   now,
	}
}

func TestApproveHappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc, auditRepo, hub := newTestService(repo)

	customerID := uuid.New()
	merchantID := uuid.New()
	b := activeBroadcast(customerID)
	req := pricedRequest(b.BroadcastID, merchantID, b.ExpiresAt)

	repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
	repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
	repo.EXPECT().ApproveAndComplete(gomock.Any(), b.BroadcastID, req.RequestID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ uuid.UUID, pricedAt time.Time, ord *order.Order) (bool, error) {
			require.True(t, pricedAt.Equal(*req.PricedAt))
			require.Equal(t, customerID, ord.CustomerID)
			require.Equal(t, merchantID, ord.MerchantID)
			require.Equal(t, req.Financials.CustomerTotalCents, ord.Financials.CustomerTotalCents)
			require.Len(t, ord.Items, 1)
			return true, nil
		})
	repo.EXPECT().ListRequests(gomock.Any(), b.BroadcastID).Return([]*broadcast.Request{req}, nil)

	ord, err := svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
	require.NoError(t, err)
	require.NotNil(t, ord)
	assert.Equal(t, req.RequestID, ord.RequestID)

	entries, _ := auditRepo.List(context.Background(), audit.EntityTypeBroadcast, "", 0, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionApprove, entries[0].Action)
	assert.NotEmpty(t, hub.events[customerID.String()])
	assert.NotEmpty(t, hub.events[merchantID.String()])
}

func TestApprovePreconditionErrors(t *testing.T) {
	customerID := uuid.New()

	t.Run("broadcast not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		id := uuid.New()
		repo.EXPECT().GetBroadcast(gomock.Any(), id).Return(nil, nil)
		_, err := svc.Approve(context.Background(), id, uuid.New(), customerID)
		assert.ErrorIs(t, err, broadcast.ErrNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(uuid.New())
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		_, err := svc.Approve(context.Background(), b.BroadcastID, uuid.New(), customerID)
		assert.ErrorIs(t, err, broadcast.ErrForbidden)
	})

	t.Run("already completed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(customerID)
		b.Status = broadcast.StatusCompleted
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		_, err := svc.Approve(context.Background(), b.BroadcastID, uuid.New(), customerID)
		assert.ErrorIs(t, err, broadcast.ErrAlreadyDecided)
	})

	t.Run("cancelled broadcast", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(customerID)
		b.Status = broadcast.StatusCancelled
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		_, err := svc.Approve(context.Background(), b.BroadcastID, uuid.New(), customerID)
		assert.ErrorIs(t, err, broadcast.ErrInvalidState)
	})

	t.Run("deadline elapsed but not yet swept", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(customerID)
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		svc.nowFunc = func() time.Time { return b.ExpiresAt.Add(time.Second) }
		_, err := svc.Approve(context.Background(), b.BroadcastID, uuid.New(), customerID)
		assert.ErrorIs(t, err, broadcast.ErrInvalidState)
	})

	t.Run("request still pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(customerID)
		req := pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt)
		req.Status = broadcast.RequestPending
		req.Financials = nil
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
		_, err := svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
		assert.ErrorIs(t, err, broadcast.ErrInvalidState)
	})

	t.Run("request belongs to another broadcast", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		svc, _, _ := newTestService(repo)
		b := activeBroadcast(customerID)
		req := pricedRequest(uuid.New(), uuid.New(), b.ExpiresAt)
		repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
		repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
		_, err := svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
		assert.ErrorIs(t, err, broadcast.ErrNotFound)
	})
}

func TestApproveLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc, _, _ := newTestService(repo)

	customerID := uuid.New()
	b := activeBroadcast(customerID)
	req := pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt)

	completed := *b
	completed.Status = broadcast.StatusCompleted

	repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
	repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
	repo.EXPECT().ApproveAndComplete(gomock.Any(), b.BroadcastID, req.RequestID, gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(&completed, nil)

	_, err := svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
	assert.ErrorIs(t, err, broadcast.ErrAlreadyDecided)
}

func TestRejectHappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc, auditRepo, hub := newTestService(repo)

	customerID := uuid.New()
	merchantID := uuid.New()
	b := activeBroadcast(customerID)
	req := pricedRequest(b.BroadcastID, merchantID, b.ExpiresAt)

	repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
	repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
	repo.EXPECT().RejectRequest(gomock.Any(), req.RequestID).Return(true, nil)

	err := svc.Reject(context.Background(), b.BroadcastID, req.RequestID, customerID, "too expensive")
	require.NoError(t, err)

	entries, _ := auditRepo.List(context.Background(), audit.EntityTypeRequest, "", 0, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionReject, entries[0].Action)
	require.NotNil(t, entries[0].Detail)
	assert.Equal(t, "too expensive", *entries[0].Detail)
	assert.Len(t, hub.events[merchantID.String()], 1)
	assert.Len(t, hub.events[customerID.String()], 1)
}

func TestRejectLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc, _, _ := newTestService(repo)

	customerID := uuid.New()
	b := activeBroadcast(customerID)
	req := pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt)

	repo.EXPECT().GetBroadcast(gomock.Any(), b.BroadcastID).Return(b, nil)
	repo.EXPECT().GetRequest(gomock.Any(), req.RequestID).Return(req, nil)
	repo.EXPECT().RejectRequest(gomock.Any(), req.RequestID).Return(false, nil)

	err := svc.Reject(context.Background(), b.BroadcastID, req.RequestID, customerID, "")
	assert.ErrorIs(t, err, broadcast.ErrInvalidState)
}

func TestApproveRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	auditRepo := &memAuditRepo{}
	svc := NewService(
		repo,
		NewLimiter(2, time.Minute),
		appAudit.NewService(auditRepo, zerolog.Nop()),
		newRecordHub(),
		event.NopPublisher{},
		zerolog.Nop(),
	)

	customerID := uuid.New()
	id := uuid.New()
	repo.EXPECT().GetBroadcast(gomock.Any(), id).Return(nil, nil).Times(2)

	for i := 0; i < 2; i++ {
		_, err := svc.Approve(context.Background(), id, uuid.New(), customerID)
		require.ErrorIs(t, err, broadcast.ErrNotFound)
	}
	_, err := svc.Approve(context.Background(), id, uuid.New(), customerID)
	assert.ErrorIs(t, err, ErrRateLimited)
}

// memBroadcastRepo is an in-memory store whose conditional updates run
// under one mutex, giving the same serialization the SQL conditional
// UPDATE provides.
type memBroadcastRepo struct {
	mu        sync.Mutex
	broadcast *broadcast.Broadcast
	requests  map[uuid.UUID]*broadcast.Request
	orders    []*order.Order
}

func newMemBroadcastRepo(b *broadcast.Broadcast, requests []*broadcast.Request) *memBroadcastRepo {
	m := &memBroadcastRepo{broadcast: b, requests: make(map[uuid.UUID]*broadcast.Request)}
	for _, r := range requests {
		m.requests[r.RequestID] = r
	}
	return m
}

func (m *memBroadcastRepo) CreateBroadcast(context.Context, *broadcast.Broadcast, []*broadcast.Request) error {
	return errors.New("not implemented")
}

func (m *memBroadcastRepo) GetBroadcast(_ context.Context, id uuid.UUID) (*broadcast.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broadcast == nil || m.broadcast.BroadcastID != id {
		return nil, nil
	}
	cp := *m.broadcast
	return &cp, nil
}

func (m *memBroadcastRepo) ListByCustomer(context.Context, uuid.UUID, int, int) ([]*broadcast.Broadcast, error) {
	return nil, nil
}

func (m *memBroadcastRepo) ListDue(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *memBroadcastRepo) ListChangedSince(context.Context, time.Time, int) ([]*broadcast.Broadcast, error) {
	return nil, nil
}

func (m *memBroadcastRepo) GetRequest(_ context.Context, id uuid.UUID) (*broadcast.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memBroadcastRepo) ListRequests(_ context.Context, broadcastID uuid.UUID) ([]*broadcast.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*broadcast.Request
	for _, r := range m.requests {
		if r.BroadcastID == broadcastID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBroadcastRepo) ListPendingByMerchant(context.Context, uuid.UUID, int, int) ([]*broadcast.Request, error) {
	return nil, nil
}

func (m *memBroadcastRepo) StorePricing(_ context.Context, id uuid.UUID, items []pricing.Item, fin pricing.Financials, notes *string, pricedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || (r.Status != broadcast.RequestPending && r.Status != broadcast.RequestPriced) {
		return false, nil
	}
	stamp := pricedAt
	r.Status = broadcast.RequestPriced
	r.Items = items
	r.Financials = &fin
	r.MerchantNotes = notes
	r.PricedAt = &stamp
	r.UpdatedAt = pricedAt
	return true, nil
}

func (m *memBroadcastRepo) RejectRequest(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != broadcast.RequestPriced {
		return false, nil
	}
	r.Status = broadcast.RequestCustomerRejected
	return true, nil
}

func (m *memBroadcastRepo) ExpireRequest(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.IsTerminal() {
		return false, nil
	}
	r.Status = broadcast.RequestExpired
	return true, nil
}

func (m *memBroadcastRepo) ExpireBroadcast(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broadcast == nil || m.broadcast.BroadcastID != id {
		return false, nil
	}
	if m.broadcast.Status != broadcast.StatusActive || !m.broadcast.IsDue(now) {
		return false, nil
	}
	m.broadcast.Status = broadcast.StatusExpired
	for _, r := range m.requests {
		if !r.IsTerminal() {
			r.Status = broadcast.RequestExpired
		}
	}
	return true, nil
}

func (m *memBroadcastRepo) CancelBroadcast(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broadcast == nil || m.broadcast.BroadcastID != id || m.broadcast.Status != broadcast.StatusActive {
		return false, nil
	}
	m.broadcast.Status = broadcast.StatusCancelled
	for _, r := range m.requests {
		if !r.IsTerminal() {
			r.Status = broadcast.RequestCancelled
		}
	}
	return true, nil
}

func (m *memBroadcastRepo) ApproveAndComplete(_ context.Context, broadcastID, requestID uuid.UUID, pricedAt time.Time, ord *order.Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broadcast == nil || m.broadcast.BroadcastID != broadcastID || m.broadcast.Status != broadcast.StatusActive {
		return false, nil
	}
	winner, ok := m.requests[requestID]
	if !ok || winner.Status != broadcast.RequestPriced {
		return false, nil
	}
	if winner.PricedAt == nil || !winner.PricedAt.Equal(pricedAt) {
		return false, nil
	}
	m.broadcast.Status = broadcast.StatusCompleted
	m.broadcast.WinningRequestID = &requestID
	winner.Status = broadcast.RequestCustomerApproved
	for id, r := range m.requests {
		if id == requestID {
			continue
		}
		switch r.Status {
		case broadcast.RequestPriced:
			r.Status = broadcast.RequestCustomerRejected
		case broadcast.RequestPending:
			r.Status = broadcast.RequestCancelled
		}
	}
	m.orders = append(m.orders, ord)
	return true, nil
}

func TestConcurrentApprovalsSingleWinner(t *testing.T) {
	customerID := uuid.New()
	b := activeBroadcast(customerID)
	requests := []*broadcast.Request{
		pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt),
		pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt),
		pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt),
	}
	repo := newMemBroadcastRepo(b, requests)
	svc, _, _ := newTestService(repo)

	const attemptsPerRequest = 10
	type outcome struct {
		ord *order.Order
		err error
	}
	results := make(chan outcome, len(requests)*attemptsPerRequest)
	var wg sync.WaitGroup
	for _, req := range requests {
		for i := 0; i < attemptsPerRequest; i++ {
			wg.Add(1)
			go func(requestID uuid.UUID) {
				defer wg.Done()
				ord, err := svc.Approve(context.Background(), b.BroadcastID, requestID, customerID)
				results <- outcome{ord: ord, err: err}
			}(req.RequestID)
		}
	}
	wg.Wait()
	close(results)

	winners := 0
	for res := range results {
		if res.err == nil {
			winners++
			require.NotNil(t, res.ord)
			continue
		}
		if !errors.Is(res.err, broadcast.ErrAlreadyDecided) && !errors.Is(res.err, broadcast.ErrInvalidState) {
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one approval must win")
	require.Len(t, repo.orders, 1, "exactly one order must exist")

	final, err := repo.GetBroadcast(context.Background(), b.BroadcastID)
	require.NoError(t, err)
	assert.Equal(t, broadcast.StatusCompleted, final.Status)
	require.NotNil(t, final.WinningRequestID)
	assert.Equal(t, repo.orders[0].RequestID, *final.WinningRequestID)

	approved := 0
	all, _ := repo.ListRequests(context.Background(), b.BroadcastID)
	for _, r := range all {
		switch r.Status {
		case broadcast.RequestCustomerApproved:
			approved++
		case broadcast.RequestCustomerRejected, broadcast.RequestCancelled:
		default:
			t.Fatalf("request %s left in %s", r.RequestID, r.Status)
		}
	}
	assert.Equal(t, 1, approved)
}

// resubmitOnRead swaps in a fresh quote revision right after the
// coordinator reads the request, before the decision reaches the store.
type resubmitOnRead struct {
	*memBroadcastRepo
	once     sync.Once
	resubmit func()
}

func (r *resubmitOnRead) GetRequest(ctx context.Context, id uuid.UUID) (*broadcast.Request, error) {
	req, err := r.memBroadcastRepo.GetRequest(ctx, id)
	r.once.Do(r.resubmit)
	return req, err
}

func TestApproveRefusesRevisedQuote(t *testing.T) {
	customerID := uuid.New()
	b := activeBroadcast(customerID)
	req := pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt)
	firstRevision := *req.PricedAt
	mem := newMemBroadcastRepo(b, []*broadcast.Request{req})

	revisedItems := []pricing.Item{{RequestedText: "tomatoes", Name: "tomatoes", UnitType: pricing.UnitKg, UnitPriceCents: 3_000, Quantity: 3, Availability: pricing.AvailabilityAvailable}}
	revisedFin := pricing.Compute(revisedItems, 1_500)

	repo := &resubmitOnRead{memBroadcastRepo: mem}
	repo.resubmit = func() {
		ok, err := mem.StorePricing(context.Background(), req.RequestID, revisedItems, revisedFin, nil, firstRevision.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, ok)
	}
	svc, _, _ := newTestService(repo)

	_, err := svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
	require.ErrorIs(t, err, broadcast.ErrInvalidState)

	assert.Empty(t, mem.orders, "no order may bind a superseded quote")
	current, err := mem.GetBroadcast(context.Background(), b.BroadcastID)
	require.NoError(t, err)
	assert.Equal(t, broadcast.StatusActive, current.Status)
	fresh, err := mem.GetRequest(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, broadcast.RequestPriced, fresh.Status)
	require.NotNil(t, fresh.Financials)
	assert.Equal(t, revisedFin.SubtotalCents, fresh.Financials.SubtotalCents)
}

func TestConcurrentExpiryAndApproval(t *testing.T) {
	for i := 0; i < 50; i++ {
		customerID := uuid.New()
		b := activeBroadcast(customerID)
		req := pricedRequest(b.BroadcastID, uuid.New(), b.ExpiresAt)
		repo := newMemBroadcastRepo(b, []*broadcast.Request{req})
		svc, _, _ := newTestService(repo)

		var (
			wg         sync.WaitGroup
			ord        *order.Order
			approveErr error
			expired    bool
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			ord, approveErr = svc.Approve(context.Background(), b.BroadcastID, req.RequestID, customerID)
		}()
		go func() {
			defer wg.Done()
			expired, _ = repo.ExpireBroadcast(context.Background(), b.BroadcastID, b.ExpiresAt.Add(time.Second))
		}()
		wg.Wait()

		final, err := repo.GetBroadcast(context.Background(), b.BroadcastID)
		require.NoError(t, err)
		fresh, err := repo.GetRequest(context.Background(), req.RequestID)
		require.NoError(t, err)

		if approveErr == nil {
			require.False(t, expired, "expiry must lose once the decision committed")
			require.NotNil(t, ord)
			assert.Equal(t, broadcast.StatusCompleted, final.Status)
			assert.Equal(t, broadcast.RequestCustomerApproved, fresh.Status)
			require.Len(t, repo.orders, 1)
		} else {
			require.True(t, expired, "a failed approval must mean expiry won")
			require.ErrorIs(t, approveErr, broadcast.ErrInvalidState)
			assert.Equal(t, broadcast.StatusExpired, final.Status)
			assert.Equal(t, broadcast.RequestExpired, fresh.Status)
			assert.Empty(t, repo.orders)
		}
	}
}
