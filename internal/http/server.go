// Package http is the JSON API surface of the finance service.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/log"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
	"github.com/JSBS07/gestor-finanzas/internal/middleware/ratelimit"
	"github.com/JSBS07/gestor-finanzas/internal/middleware/security"
	"github.com/JSBS07/gestor-finanzas/internal/middleware/trace"
	"github.com/JSBS07/gestor-finanzas/internal/services"
)

type Server struct {
	http.Server

	activities *services.ActivityService
	accounts   *services.AccountService
	aggregator *services.Aggregator
	tokens     *auth.TokenIssuer

	limiter  *ratelimit.Limiter
	resolver *security.Resolver
}

// Deps carries the collaborators the server needs. Metrics may be nil.
type Deps struct {
	Activities *services.ActivityService
	Accounts   *services.AccountService
	Aggregator *services.Aggregator
	Tokens     *auth.TokenIssuer
	Metrics    *metrics.Metrics
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		activities: deps.Activities,
		accounts:   deps.Accounts,
		aggregator: deps.Aggregator,
		tokens:     deps.Tokens,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		resolver:   security.NewResolver(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.Handle("POST /api/password", s.requireAuth(s.handleChangePassword))

	mux.Handle("GET /api/dashboard", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /api/activities", s.requireAuth(s.handleListActivities))
	mux.Handle("POST /api/activities", s.requireAuth(s.handleCreateActivity))
	mux.Handle("PUT /api/activities/{id}", s.requireAuth(s.handleUpdateActivity))
	mux.Handle("DELETE /api/activities/{id}", s.requireAuth(s.handleDeleteActivity))
	mux.Handle("POST /api/activities/{id}/state", s.requireAuth(s.handleChangeActivityState))

	mux.Handle("GET /api/admin/accounts", s.requireAdmin(s.handleListAccounts))
	mux.Handle("POST /api/admin/accounts/{id}/reset-password", s.requireAdmin(s.handleResetPassword))
	mux.Handle("DELETE /api/admin/accounts/{id}", s.requireAdmin(s.handleDeleteAccount))

	tracer := trace.NewMiddleware(s.resolver.ExtractClientIP, deps.Metrics)
	limited := s.limiter.Middleware(s.resolver.ExtractClientIP, nil)
	httpLogger := log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)

	var handler http.Handler = mux
	handler = limitMutations(limited)(handler)
	handler = tracer.Middleware(handler)
	handler = log.Middleware(httpLogger)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// limitMutations applies the rate limiter to state-changing requests
// only; reads stay unthrottled.
func limitMutations(limited func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				guarded.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
