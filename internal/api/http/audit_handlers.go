package httpapi

import (
	"net/http"
	"strings"

	"github.com/quotehub/quotehub/internal/domain/audit"
)

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	entityType := audit.EntityType(strings.ToUpper(r.URL.Query().Get("entityType")))
	entityID := r.URL.Query().Get("entityId")
	switch entityType {
	case audit.EntityTypeBroadcast, audit.EntityTypeRequest, audit.EntityTypeOrder, audit.EntityTypeRule:
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "entityType must be BROADCAST, REQUEST, ORDER or RULE")
		return
	}
	if entityID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "entityId is required")
		return
	}
	limit, offset := parseLimitOffset(r, 100, 500)
	entries, err := s.auditSvc.List(r.Context(), entityType, entityID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
