package middleware

import (
	"net"
	"net/http"

	"github.com/filegate/service/internal/apperr"
	"github.com/filegate/service/internal/ratelimit"
	"github.com/filegate/service/internal/response"
)

// RateLimit returns middleware that admits requests through the limiter,
// keyed by client IP. It runs before authentication so unauthenticated floods
// are shed without touching the token store.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil || !res.Allowed {
				response.AppError(w, apperr.TooManyRequests("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the remote address without the port. RealIP middleware
// upstream has already rewritten RemoteAddr from X-Forwarded-For when
// present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
