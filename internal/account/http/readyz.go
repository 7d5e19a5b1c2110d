package http

import (
	"net/http"

	"github.com/pingpong42/account/internal/account/cache"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
)

// ReadyzHandler answers readiness probes, checking the database and the
// ticket cache. Either dependency failing returns 503.
func ReadyzHandler(st store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, api.HealthResponse{
			Status: status,
			Checks: checks,
		})
	}
}
