package http

import (
	"net/http"

	"github.com/JSBS07/gestor-finanzas/internal/log"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]accountJSON, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toAccountJSON(acc))
	}
	writeJSON(w, http.StatusOK, struct {
		Accounts []accountJSON `json:"accounts"`
	}{out})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid account id"},
		})
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Admin reset password",
		"admin_id", claimsFrom(r.Context()).AccountID, "target_id", id)

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{"password reset"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid account id"},
		})
		return
	}

	if err := s.accounts.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Admin deleted account",
		"admin_id", claimsFrom(r.Context()).AccountID, "target_id", id)

	w.WriteHeader(http.StatusNoContent)
}
