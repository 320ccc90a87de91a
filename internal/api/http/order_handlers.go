package httpapi

import (
	"net/http"

	"github.com/quotehub/quotehub/internal/domain/order"
	domainUser "github.com/quotehub/quotehub/internal/domain/user"
)

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)

	var (
		orders []*order.Order
		err    error
	)
	switch u.Role {
	case domainUser.RoleCustomer:
		orders, err = s.orderRepo.ListByCustomer(r.Context(), u.UserID, limit, offset)
	case domainUser.RoleMerchant:
		orders, err = s.orderRepo.ListByMerchant(r.Context(), u.UserID, limit, offset)
	default:
		respondError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "orderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid orderId")
		return
	}
	ord, err := s.orderRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if ord == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	if u.Role != domainUser.RoleAdmin && ord.CustomerID != u.UserID && ord.MerchantID != u.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "order belongs to another account")
		return
	}
	respondJSON(w, http.StatusOK, ord)
}
