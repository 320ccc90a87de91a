//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	httpapi "github.com/quotehub/quotehub/internal/api/http"
	appApproval "github.com/quotehub/quotehub/internal/application/approval"
	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	appAuth "github.com/quotehub/quotehub/internal/application/auth"
	appBroadcast "github.com/quotehub/quotehub/internal/application/broadcast"
	appDraft "github.com/quotehub/quotehub/internal/application/draft"
	appQuote "github.com/quotehub/quotehub/internal/application/quote"
	"github.com/quotehub/quotehub/internal/domain/event"
	"github.com/quotehub/quotehub/internal/domain/pricing"
	"github.com/quotehub/quotehub/internal/infrastructure/blobstore"
	"github.com/quotehub/quotehub/internal/infrastructure/memory"
	"github.com/quotehub/quotehub/internal/infrastructure/postgres"
	"github.com/quotehub/quotehub/internal/infrastructure/sse"
)

const testPassword = "S3cure!Passw0rd"

func TestBroadcastApprovalIntegration(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	customer := newAccountClient(t, server.URL, "alice-customer", "CUSTOMER")
	merchant1 := newAccountClient(t, server.URL, "bob-greens", "MERCHANT")
	merchant2 := newAccountClient(t, server.URL, "carol-market", "MERCHANT")

	var created struct {
		Broadcast struct {
			BroadcastID string `json:"broadcastId"`
			Status      string `json:"status"`
		} `json:"broadcast"`
		Requests []struct {
			RequestID  string `json:"requestId"`
			MerchantID string `json:"merchantId"`
			Status     string `json:"status"`
		} `json:"requests"`
	}
	status := doJSON(t, customer.client, http.MethodPost, server.URL+"/v1/broadcasts", map[string]interface{}{
		"merchantIds": []string{merchant1.userID, merchant2.userID},
		"orderType":   "DELIVERY",
		"intentText":  "3kg tomatoes and a dozen eggs",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create broadcast: status %d", status)
	}
	if created.Broadcast.Status != "ACTIVE" || len(created.Requests) != 2 {
		t.Fatalf("unexpected broadcast view: %+v", created)
	}
	broadcastID := created.Broadcast.BroadcastID

	// Both merchants price the same basket: 3kg at 20.00/kg, 15.00
	// delivery. Subtotal 60.00 sits in the 7% tier.
	items := []map[string]interface{}{
		{
			"requestedText":  "3kg tomatoes",
			"name":           "tomatoes",
			"unitType":       "KG",
			"unitPriceCents": 2000,
			"quantity":       3,
			"availability":   "AVAILABLE",
		},
	}
	req1 := priceRequest(t, server.URL, merchant1, items, 1500)
	req2 := priceRequest(t, server.URL, merchant2, items, 1500)
	if req1.Financials.SubtotalCents != 6000 ||
		req1.Financials.CommissionRateBps != 700 ||
		req1.Financials.CommissionCents != 420 ||
		req1.Financials.CustomerTotalCents != 7500 ||
		req1.Financials.MerchantPayoutCents != 7080 {
		t.Fatalf("unexpected financials: %+v", req1.Financials)
	}

	var approved struct {
		Status string `json:"status"`
		Order  struct {
			OrderID    string `json:"orderId"`
			MerchantID string `json:"merchantId"`
			Financials struct {
				CustomerTotalCents int64 `json:"customerTotalCents"`
			} `json:"financials"`
		} `json:"order"`
	}
	status = doJSON(t, customer.client, http.MethodPost,
		fmt.Sprintf("%s/v1/broadcasts/%s/requests/%s/approve", server.URL, broadcastID, req1.RequestID), nil, &approved)
	if status != http.StatusOK {
		t.Fatalf("approve: status %d", status)
	}
	if approved.Status != "COMPLETED" || approved.Order.MerchantID != merchant1.userID {
		t.Fatalf("unexpected approval result: %+v", approved)
	}
	if approved.Order.Financials.CustomerTotalCents != 7500 {
		t.Fatalf("order total = %d, want 7500", approved.Order.Financials.CustomerTotalCents)
	}

	// The sibling can no longer win.
	var conflict struct {
		Error string `json:"error"`
	}
	status = doJSON(t, customer.client, http.MethodPost,
		fmt.Sprintf("%s/v1/broadcasts/%s/requests/%s/approve", server.URL, broadcastID, req2.RequestID), nil, &conflict)
	if status != http.StatusConflict || conflict.Error != "ALREADY_DECIDED" {
		t.Fatalf("second approve: status %d error %q", status, conflict.Error)
	}

	var view struct {
		Requests []struct {
			RequestID string `json:"requestId"`
			Status    string `json:"status"`
		} `json:"requests"`
	}
	status = doJSON(t, customer.client, http.MethodGet, server.URL+"/v1/broadcasts/"+broadcastID, nil, &view)
	if status != http.StatusOK {
		t.Fatalf("get broadcast: status %d", status)
	}
	got := map[string]string{}
	for _, r := range view.Requests {
		got[r.RequestID] = r.Status
	}
	if got[req1.RequestID] != "CUSTOMER_APPROVED" || got[req2.RequestID] != "CUSTOMER_REJECTED" {
		t.Fatalf("unexpected request statuses: %v", got)
	}

	var orders struct {
		Orders []json.RawMessage `json:"orders"`
	}
	status = doJSON(t, merchant1.client, http.MethodGet, server.URL+"/v1/orders", nil, &orders)
	if status != http.StatusOK || len(orders.Orders) != 1 {
		t.Fatalf("merchant orders: status %d count %d", status, len(orders.Orders))
	}
}

func TestBroadcastCancelIntegration(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	customer := newAccountClient(t, server.URL, "dave-customer", "CUSTOMER")
	merchant := newAccountClient(t, server.URL, "erin-bakery", "MERCHANT")

	var created struct {
		Broadcast struct {
			BroadcastID string `json:"broadcastId"`
		} `json:"broadcast"`
	}
	status := doJSON(t, customer.client, http.MethodPost, server.URL+"/v1/broadcasts", map[string]interface{}{
		"merchantIds": []string{merchant.userID},
		"orderType":   "PICKUP",
		"intentText":  "two sourdough loaves",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create broadcast: status %d", status)
	}

	var cancelled struct {
		Status string `json:"status"`
	}
	status = doJSON(t, customer.client, http.MethodPost,
		server.URL+"/v1/broadcasts/"+created.Broadcast.BroadcastID+"/cancel", nil, &cancelled)
	if status != http.StatusOK || cancelled.Status != "CANCELLED" {
		t.Fatalf("cancel: status %d body %+v", status, cancelled)
	}

	// The merchant's request died with the broadcast.
	var pending struct {
		Requests []struct {
			RequestID string `json:"requestId"`
		} `json:"requests"`
	}
	status = doJSON(t, merchant.client, http.MethodGet, server.URL+"/v1/requests", nil, &pending)
	if status != http.StatusOK || len(pending.Requests) != 0 {
		t.Fatalf("pending requests after cancel: status %d count %d", status, len(pending.Requests))
	}
}

type accountClient struct {
	client *http.Client
	userID string
}

func newAccountClient(t *testing.T, baseURL, username, role string) *accountClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	var registered struct {
		UserID string `json:"userId"`
	}
	status := doJSON(t, client, http.MethodPost, baseURL+"/v1/auth/register", map[string]string{
		"username":    username,
		"displayName": username,
		"password":    testPassword,
		"role":        role,
	}, &registered)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, status)
	}

	status = doJSON(t, client, http.MethodPost, baseURL+"/v1/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d", username, status)
	}
	return &accountClient{client: client, userID: registered.UserID}
}

type pricedView struct {
	RequestID  string `json:"requestId"`
	Status     string `json:"status"`
	Financials struct {
		SubtotalCents       int64 `json:"subtotalCents"`
		CommissionRateBps   int   `json:"commissionRateBps"`
		CommissionCents     int64 `json:"commissionCents"`
		CustomerTotalCents  int64 `json:"customerTotalCents"`
		MerchantPayoutCents int64 `json:"merchantPayoutCents"`
	} `json:"financials"`
}

func priceRequest(t *testing.T, baseURL string, m *accountClient, items []map[string]interface{}, deliveryFeeCents int64) pricedView {
	t.Helper()
	var pending struct {
		Requests []struct {
			RequestID string `json:"requestId"`
		} `json:"requests"`
	}
	status := doJSON(t, m.client, http.MethodGet, baseURL+"/v1/requests", nil, &pending)
	if status != http.StatusOK || len(pending.Requests) != 1 {
		t.Fatalf("pending requests: status %d count %d", status, len(pending.Requests))
	}

	var priced pricedView
	status = doJSON(t, m.client, http.MethodPut,
		baseURL+"/v1/requests/"+pending.Requests[0].RequestID+"/pricing", map[string]interface{}{
			"items":            items,
			"deliveryFeeCents": deliveryFeeCents,
		}, &priced)
	if status != http.StatusOK || priced.Status != "PRICED" {
		t.Fatalf("submit pricing: status %d body %+v", status, priced)
	}
	return priced
}

func doJSON(t *testing.T, client *http.Client, method, url string, body, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	dsn := testDatabaseURL(t)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("db pool: %v", err)
	}

	root := repoRoot(t)
	if err := postgres.RunMigrations(ctx, pool, filepath.Join(root, "internal", "migrations")); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	if err := resetDatabase(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("reset db: %v", err)
	}

	logger := zerolog.Nop()
	broadcastRepo := postgres.NewBroadcastRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	guardRepo := postgres.NewGuardRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	sseHub := sse.NewHub()
	attachments, err := blobstore.NewDiskStore(t.TempDir())
	if err != nil {
		pool.Close()
		t.Fatalf("attachment store: %v", err)
	}
	publisher := event.NopPublisher{}

	auditSvc := appAudit.NewService(auditRepo, logger)
	authSvc := appAuth.NewService(userRepo, sessionRepo, 24*time.Hour, logger)
	broadcastSvc := appBroadcast.NewService(broadcastRepo, auditSvc, sseHub, publisher, 24*time.Hour, 2*time.Hour, logger)
	quoteSvc := appQuote.NewService(broadcastRepo, pricing.NewValidator(), guardRepo, auditSvc, sseHub, publisher, logger)
	approvalSvc := appApproval.NewService(broadcastRepo, appApproval.NewLimiter(100, time.Minute), auditSvc, sseHub, publisher, logger)
	draftSvc := appDraft.NewService(memory.NewDraftStore(), logger)

	apiServer := httpapi.NewServer(
		broadcastSvc, quoteSvc, approvalSvc, draftSvc, authSvc, auditSvc,
		guardRepo, orderRepo, userRepo, attachments, sseHub,
		"quotehub_session", false,
	)
	server := httptest.NewServer(apiServer.Router())

	cleanup := func() {
		server.Close()
		sseHub.Stop()
		pool.Close()
	}
	return server, cleanup
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	return ""
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE TABLE
			orders,
			requests,
			broadcasts,
			guard_rules,
			audit_entries,
			sessions,
			users
		RESTART IDENTITY CASCADE
	`)
	return err
}
