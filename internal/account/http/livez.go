package http

import (
	"net/http"

	"github.com/pingpong42/account/pkg/api"
	"github.com/pingpong42/account/pkg/httpx"
)

// LivezHandler answers liveness probes. Always 200 while the process runs.
func LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}
