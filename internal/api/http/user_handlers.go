package httpapi

import (
	"net/http"

	domainUser "github.com/quotehub/quotehub/internal/domain/user"
)

type merchantView struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// listMerchants returns the active merchant directory a customer picks
// broadcast targets from.
func (s *Server) listMerchants(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	role := domainUser.RoleMerchant
	status := domainUser.StatusActive
	users, err := s.userRepo.List(r.Context(), domainUser.Filter{Role: &role, Status: &status}, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	merchants := make([]merchantView, 0, len(users))
	for _, u := range users {
		merchants = append(merchants, merchantView{
			UserID:      u.UserID.String(),
			Username:    u.Username,
			DisplayName: u.DisplayName,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"merchants": merchants})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	users, err := s.userRepo.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":       users,
		"syncClients": s.sseHub.ClientCount(),
	})
}
