package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/guard"
)

type createRuleRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Action     string `json:"action"`
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "name is required")
		return
	}
	action := guard.Action(strings.ToUpper(req.Action))
	if !guard.ValidateAction(action) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "action must be BLOCK or FLAG")
		return
	}
	if err := guard.CheckExpression(req.Expression); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "bad expression: "+err.Error())
		return
	}

	now := time.Now().UTC()
	rule := &guard.Rule{
		RuleID:     uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Expression: req.Expression,
		Action:     action,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.guardRepo.Create(r.Context(), rule); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	rules, err := s.guardRepo.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})
}

func (s *Server) enableRule(w http.ResponseWriter, r *http.Request) {
	s.setRuleEnabled(w, r, true)
}

func (s *Server) disableRule(w http.ResponseWriter, r *http.Request) {
	s.setRuleEnabled(w, r, false)
}

func (s *Server) setRuleEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id, err := parseUUIDParam(r, "ruleId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid ruleId")
		return
	}
	rule, err := s.guardRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if rule == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "rule not found")
		return
	}
	if err := s.guardRepo.SetEnabled(r.Context(), id, enabled); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ruleId": id, "enabled": enabled})
}
