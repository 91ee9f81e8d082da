package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"securiguard/internal/config"
	"securiguard/internal/infrastructure/cache"
	"securiguard/pkg/logger"
)

// RateLimit enforces a fixed-window per-client request limit backed by
// Redis. When Redis is unavailable the limiter fails open: blocking all
// scanning over a cache outage would be worse than briefly not limiting.
func RateLimit(redisCache *cache.RedisCache, cfg config.RateLimitConfig, log *logger.Logger) func(next http.Handler) http.Handler {
	limitLog := log.WithComponent("ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || redisCache == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientID := clientKey(r)
			allowed, remaining, resetTime, err := redisCache.CheckRateLimit(
				r.Context(),
				clientID,
				int64(cfg.RequestsPerMinute),
				time.Minute,
			)
			if err != nil {
				limitLog.Warn().Err(err).Msg("Rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				limitLog.Debug().Str("client", clientID).Msg("Rate limit exceeded")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller for rate limiting purposes
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
