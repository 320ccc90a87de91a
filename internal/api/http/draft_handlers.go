package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
)

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	payload, err := io.ReadAll(io.LimitReader(r.Body, 128*1024))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "unreadable body")
		return
	}
	if err := s.draftSvc.Save(r.Context(), u.UserID.String(), json.RawMessage(payload)); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	d, err := s.draftSvc.Load(r.Context(), u.UserID.String())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no draft")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	u := authUserFromContext(r.Context())
	if err := s.draftSvc.Delete(r.Context(), u.UserID.String()); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
