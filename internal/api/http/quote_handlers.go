package httpapi

import (
	"net/http"

	"github.com/quotehub/quotehub/internal/domain/pricing"
)

type submitPricingRequest struct {
	Items            []pricing.Item `json:"items"`
	DeliveryFeeCents int64          `json:"deliveryFeeCents"`
	MerchantNotes    *string        `json:"merchantNotes,omitempty"`
}

func (s *Server) listPendingRequests(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)
	requests, err := s.quoteSvc.ListPending(r.Context(), u.UserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	req, err := s.quoteSvc.GetForMerchant(r.Context(), id, u.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) submitPricing(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var body submitPricingRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	req, err := s.quoteSvc.SubmitPricing(r.Context(), id, u.UserID, body.Items, body.DeliveryFeeCents, body.MerchantNotes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
