package handler

import (
	"net/http"

	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/response"
)

// GetEvents handles GET /api/v1/events: the event history, optionally
// filtered by ?actor= or ?type=.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	log := h.engine.Events()

	if actor := r.URL.Query().Get("actor"); actor != "" {
		response.OK(w, log.GetByActor(actor))
		return
	}
	if t := r.URL.Query().Get("type"); t != "" {
		response.OK(w, log.GetByType(events.EventType(t)))
		return
	}
	response.OK(w, log.Replay())
}

// GetMetrics handles GET /api/v1/metrics: the runtime counters.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	response.OK(w, metrics.Get().Snapshot())
}
