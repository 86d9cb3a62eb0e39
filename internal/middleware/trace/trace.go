// Package trace assigns request IDs and logs request start/end with
// latency, feeding the Prometheus HTTP histogram.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/log"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
)

// ContextKey type for context keys
type ContextKey string

// RequestIDKey is the context key for the request ID
const RequestIDKey ContextKey = "request_id"

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	metrics   *metrics.Metrics
}

// NewMiddleware creates a new trace middleware. Both arguments are
// optional.
func NewMiddleware(extractIP func(*http.Request) string, m *metrics.Metrics) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		metrics:   m,
	}
}

// Middleware returns HTTP middleware for request tracing. The request
// ID is attached to the context logger so every record downstream
// carries it.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		logger := log.FromContext(ctx).With(log.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logs := log.NewStructuredLogger(logger)
		logs.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.metrics.ObserveHTTP(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), duration)

		logs.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
