package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness for load balancers and uptime checks.
type HealthHandler struct {
	service string
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now()}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        h.service,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
