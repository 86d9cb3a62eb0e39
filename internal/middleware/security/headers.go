package security

import "net/http"

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns defaults suited to a JSON API.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		CrossOriginResource: "same-origin",
		CacheControl:        "no-store",
	}
}

// Headers returns middleware that applies the configured headers to
// every response.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.XFrameOptions != "" {
				h.Set("X-Frame-Options", config.XFrameOptions)
			}
			if config.XContentTypeOptions != "" {
				h.Set("X-Content-Type-Options", config.XContentTypeOptions)
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.CrossOriginResource != "" {
				h.Set("Cross-Origin-Resource-Policy", config.CrossOriginResource)
			}
			if config.CacheControl != "" {
				h.Set("Cache-Control", config.CacheControl)
			}
			next.ServeHTTP(w, r)
		})
	}
}
