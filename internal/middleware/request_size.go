package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize is the body limit applied by the API router
const DefaultMaxRequestSize = 1 << 20 // 1MB

// RequestSizeLimitMiddleware rejects bodies larger than maxBytes
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
