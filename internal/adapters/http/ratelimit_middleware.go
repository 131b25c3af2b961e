package http

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"performer-marketplace/internal/core/ports"
)

// NewRateLimitMiddleware limits requests per client IP over a fixed
// window. A limiter outage fails open: availability over strictness.
func NewRateLimitMiddleware(repo ports.RateLimiterRepository, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			allowed, err := repo.IsAllowed(r.Context(), "ratelimit:"+ip, limit, window)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeJSONError(w, "too many requests", http.StatusTooManyRequests, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
