package http

import (
	"net/http"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/log"
)

type accountJSON struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	TempPassword bool   `json:"temp_password"`
	RegisteredAt string `json:"registered_at"`
}

func toAccountJSON(acc core.Account) accountJSON {
	return accountJSON{
		ID:           acc.ID,
		Email:        acc.Email,
		Name:         acc.Name,
		Role:         string(acc.Role),
		TempPassword: acc.TempPassword,
		RegisteredAt: acc.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	acc, err := s.accounts.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Account accountJSON `json:"account"`
	}{toAccountJSON(acc)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	acc, err := s.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Login",
		log.FieldAccountID, acc.ID, log.FieldEmail, acc.Email)

	writeJSON(w, http.StatusOK, struct {
		Token   string      `json:"token"`
		Account accountJSON `json:"account"`
	}{token, toAccountJSON(acc)})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), claims.AccountID, req.Current, req.New, req.Confirm); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{"password changed"})
}
