package controllers

import (
	"net/http"

	"github.com/anacreonhq/anacreon-backend/api/responses"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/redis"
)

// Health reports service liveness plus dependency reachability.
func Health(database *db.Client, cache *redis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := map[string]string{"status": "ok", "db": "ok", "redis": "ok"}
		healthy := true

		if database == nil {
			status["db"] = "not configured"
		} else if err := database.Ping(ctx); err != nil {
			status["db"] = "unreachable"
			healthy = false
		}
		if cache == nil {
			status["redis"] = "not configured"
		} else if err := cache.Ping(ctx); err != nil {
			status["redis"] = "unreachable"
			healthy = false
		}

		if !healthy {
			status["status"] = "degraded"
			if logg != nil {
				logg.Warn(ctx, "health check degraded")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
