package api

import (
	"net/http"

	"github.com/phrazzld/skincare-api/internal/api/shared"
)

// Root handles GET /.
func Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Message: MsgRootMessage,
		Usage:   MsgRootUsage,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: MsgHealthy})
}
