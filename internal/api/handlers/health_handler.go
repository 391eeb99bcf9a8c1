package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports liveness of a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health including backing dependencies
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checks: map[string]Pinger{},
	}
}

// Register adds a named dependency check. Nil pingers are ignored so
// callers can pass optional dependencies straight through.
func (h *HealthHandler) Register(name string, p Pinger) {
	if p == nil {
		return
	}
	h.checks[name] = p
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true

	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = "unreachable"
			healthy = false
		} else {
			status[name] = "ok"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		respondWithJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}
