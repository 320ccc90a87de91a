package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	appBroadcast "github.com/quotehub/quotehub/internal/application/broadcast"
	"github.com/quotehub/quotehub/internal/domain/broadcast"
)

type createBroadcastRequest struct {
	MerchantIDs     []uuid.UUID `json:"merchantIds"`
	OrderType       string      `json:"orderType"`
	DeliveryAddress *string     `json:"deliveryAddress,omitempty"`
	IntentText      *string     `json:"intentText,omitempty"`
	VoiceRef        *string     `json:"voiceRef,omitempty"`
	ImageRefs       []string    `json:"imageRefs,omitempty"`
	ExpiryMinutes   int         `json:"expiryMinutes,omitempty"`
}

type rejectRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

func (s *Server) createBroadcast(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	var req createBroadcastRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	intent := broadcast.Intent{
		Text:      req.IntentText,
		VoiceRef:  req.VoiceRef,
		ImageRefs: req.ImageRefs,
	}
	for _, ref := range intent.ImageRefs {
		if !s.attachments.Exists(ref) {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "unknown image reference "+ref)
			return
		}
	}
	if intent.VoiceRef != nil && !s.attachments.Exists(*intent.VoiceRef) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "unknown voice reference "+*intent.VoiceRef)
		return
	}

	view, err := s.broadcastSvc.Create(r.Context(), appBroadcast.CreateParams{
		CustomerID:      u.UserID,
		MerchantIDs:     req.MerchantIDs,
		OrderType:       broadcast.OrderType(req.OrderType),
		DeliveryAddress: req.DeliveryAddress,
		Intent:          intent,
		Expiry:          time.Duration(req.ExpiryMinutes) * time.Minute,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) listBroadcasts(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)
	broadcasts, err := s.broadcastSvc.List(r.Context(), u.UserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"broadcasts": broadcasts})
}

func (s *Server) getBroadcast(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "broadcastId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid broadcastId")
		return
	}
	view, err := s.broadcastSvc.Get(r.Context(), id, u.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) cancelBroadcast(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "broadcastId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid broadcastId")
		return
	}
	if err := s.broadcastSvc.Cancel(r.Context(), id, u.UserID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"broadcastId": id, "status": broadcast.StatusCancelled})
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	broadcastID, err := parseUUIDParam(r, "broadcastId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid broadcastId")
		return
	}
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	ord, err := s.approvalSvc.Approve(r.Context(), broadcastID, requestID, u.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"broadcastId": broadcastID,
		"status":      broadcast.StatusCompleted,
		"order":       ord,
	})
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	broadcastID, err := parseUUIDParam(r, "broadcastId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid broadcastId")
		return
	}
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	var body rejectRequestBody
	_ = decodeBody(r, &body)
	if err := s.approvalSvc.Reject(r.Context(), broadcastID, requestID, u.UserID, body.Reason); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requestId": requestID,
		"status":    broadcast.RequestCustomerRejected,
	})
}
