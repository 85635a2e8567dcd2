package handler

import (
	"net/http"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/transport/http/response"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health. Used for liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
	})
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Templates int       `json:"templates"`
}

// Ready handles GET /api/v1/ready. The server is ready once the catalog
// loaded; everything else degrades gracefully.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	n := h.engine.Catalog().Len()
	resp := ReadyResponse{
		Ready:     n > 0,
		Timestamp: time.Now().UTC(),
		Templates: n,
	}
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}
