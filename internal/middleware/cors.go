package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORSMiddleware answers preflight requests and sets CORS headers for allowed origins
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowedOrigin(r.Header.Get("Origin"), allowedOrigins); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allowedOrigin returns the value of Access-Control-Allow-Origin for a request origin,
// or "" when the origin is not allowed
func allowedOrigin(origin string, allowed []string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(allowed, "*") {
		return "*"
	}
	for _, a := range allowed {
		if strings.EqualFold(origin, a) {
			return origin
		}
	}
	return ""
}
