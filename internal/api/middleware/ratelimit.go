package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/vybr/vybr-backend/internal/ratelimit"
)

// RateLimit throttles requests per client IP using a shared limiter store.
func RateLimit(store *ratelimit.LimiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr when forwarded headers are set
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
