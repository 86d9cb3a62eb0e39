package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// requireAuth validates the bearer token and stores the session claims
// in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: errorBody{Code: "UNAUTHORIZED", Message: "missing bearer token"},
			})
			return
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: errorBody{Code: "UNAUTHORIZED", Message: "invalid or expired token"},
			})
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	})
}

// requireAdmin is requireAuth plus an ADMIN role check.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || claims.Role != string(core.RoleAdmin) {
			writeJSON(w, http.StatusForbidden, errorResponse{
				Error: errorBody{Code: "FORBIDDEN", Message: "admin role required"},
			})
			return
		}
		next(w, r)
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}
