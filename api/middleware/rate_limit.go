package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	pkgerrors "github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/redis"
)

const rateLimitScope = "v1"

// RateLimit applies a fixed-window counter per authenticated user, falling
// back to the client IP for anonymous requests. Redis outages fail open.
func RateLimit(logg *logger.Logger, cache *redis.Client, cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if cfg.Disabled || cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			limit := cfg.V1Limit
			subject := UserIDFromContext(ctx)
			if subject == "" {
				subject = clientIP(r)
				limit = cfg.IPLimit
			}
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.RateLimitKey(rateLimitScope, subject)
			count, err := cache.IncrWithTTL(ctx, key, window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "rate_limit_key", key), "rate limiter unavailable, failing open")
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
