package api

import (
	"net/http"
	"time"

	"github.com/reqarchitect/platform-health/internal/api/respond"
)

// HealthHandler handles the service's own liveness endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// CheckHealth handles GET /api/health. The aggregation service itself is
// alive as long as it can answer; platform health lives under
// /platform/status.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
