package handler

import (
	"net/http"

	"github.com/retailcx/support-chatbot/internal/analytics"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sink analytics.Sink
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(sink analytics.Sink) *HealthHandler {
	return &HealthHandler{sink: sink}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
//
// The analytics sink is fire-and-forget, so an unhealthy sink degrades the
// readiness report without failing it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"pipeline":  "ok",
		"analytics": "ok",
	}
	if h.sink == nil || !h.sink.Healthy() {
		components["analytics"] = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ready",
		"components": components,
	})
}
