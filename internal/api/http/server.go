package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appApproval "github.com/quotehub/quotehub/internal/application/approval"
	appAudit "github.com/quotehub/quotehub/internal/application/audit"
	appAuth "github.com/quotehub/quotehub/internal/application/auth"
	appBroadcast "github.com/quotehub/quotehub/internal/application/broadcast"
	appDraft "github.com/quotehub/quotehub/internal/application/draft"
	appQuote "github.com/quotehub/quotehub/internal/application/quote"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
	"github.com/quotehub/quotehub/internal/domain/guard"
	"github.com/quotehub/quotehub/internal/domain/order"
	"github.com/quotehub/quotehub/internal/domain/pricing"
	domainUser "github.com/quotehub/quotehub/internal/domain/user"
	"github.com/quotehub/quotehub/internal/infrastructure/blobstore"
	"github.com/quotehub/quotehub/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	broadcastSvc        *appBroadcast.Service
	quoteSvc            *appQuote.Service
	approvalSvc         *appApproval.Service
	draftSvc            *appDraft.Service
	authSvc             *appAuth.Service
	auditSvc            *appAudit.Service
	guardRepo           guard.Repository
	orderRepo           order.Repository
	userRepo            domainUser.Repository
	attachments         *blobstore.DiskStore
	sseHub              *sse.Hub
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	broadcastSvc *appBroadcast.Service,
	quoteSvc *appQuote.Service,
	approvalSvc *appApproval.Service,
	draftSvc *appDraft.Service,
	authSvc *appAuth.Service,
	auditSvc *appAudit.Service,
	guardRepo guard.Repository,
	orderRepo order.Repository,
	userRepo domainUser.Repository,
	attachments *blobstore.DiskStore,
	sseHub *sse.Hub,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		broadcastSvc:        broadcastSvc,
		quoteSvc:            quoteSvc,
		approvalSvc:         approvalSvc,
		draftSvc:            draftSvc,
		authSvc:             authSvc,
		auditSvc:            auditSvc,
		guardRepo:           guardRepo,
		orderRepo:           orderRepo,
		userRepo:            userRepo,
		attachments:         attachments,
		sseHub:              sseHub,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/broadcasts", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Post("/", s.createBroadcast)
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Get("/", s.listBroadcasts)
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Get("/{broadcastId}", s.getBroadcast)
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Post("/{broadcastId}/cancel", s.cancelBroadcast)
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Post("/{broadcastId}/requests/{requestId}/approve", s.approveRequest)
				r.With(s.requireRole(string(domainUser.RoleCustomer))).Post("/{broadcastId}/requests/{requestId}/reject", s.rejectRequest)
			})

			r.Route("/requests", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleMerchant))).Get("/", s.listPendingRequests)
				r.With(s.requireRole(string(domainUser.RoleMerchant))).Get("/{requestId}", s.getRequest)
				r.With(s.requireRole(string(domainUser.RoleMerchant))).Put("/{requestId}/pricing", s.submitPricing)
			})

			r.Get("/merchants", s.listMerchants)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.listOrders)
				r.Get("/{orderId}", s.getOrder)
			})

			r.Route("/draft", func(r chi.Router) {
				r.Put("/", s.saveDraft)
				r.Get("/", s.loadDraft)
				r.Delete("/", s.deleteDraft)
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/{kind}", s.uploadAttachment)
				r.Get("/{kind}/{name}", s.getAttachment)
				r.Delete("/{kind}/{name}", s.deleteAttachment)
			})

			r.Route("/rules", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/", s.createRule)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/", s.listRules)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/{ruleId}/enable", s.enableRule)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/{ruleId}/disable", s.disableRule)
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/audit", s.listAudit)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/stats", s.stats)
			})

			r.Get("/sync/stream", s.syncStream)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondDomainError maps domain sentinel errors to HTTP responses.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.Is(err, broadcast.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, broadcast.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, broadcast.ErrAlreadyDecided):
		respondError(w, http.StatusConflict, "ALREADY_DECIDED", err.Error())
	case errors.Is(err, broadcast.ErrInvalidState), errors.Is(err, broadcast.ErrAlreadyTerminal):
		respondError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, broadcast.ErrDeadlinePassed):
		respondError(w, http.StatusConflict, "DEADLINE_PASSED", err.Error())
	case errors.Is(err, broadcast.ErrInvalidMerchantCount), errors.Is(err, broadcast.ErrInvalidIntent):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.Is(err, appApproval.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", err.Error())
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "VALIDATION_FAILED",
			"message": verr.Error(),
			"items":   verr.Items,
		})
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
