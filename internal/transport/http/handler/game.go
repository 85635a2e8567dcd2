package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pokecat-game/pokecat/server/internal/transport/http/response"
)

// StartSession handles POST /api/v1/session. Creates or resumes the
// player identity.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	id := h.engine.StartSession(req.Name)
	response.Created(w, id)
}

// ResetSession handles DELETE /api/v1/session. Wipes the whole save.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if u := h.engine.Store().User(); u != nil {
		h.cache.Invalidate(r.Context(), u.ID)
	}
	h.engine.ResetSession()
	response.OK(w, map[string]string{"status": "reset"})
}

// GetState handles GET /api/v1/state: the full save snapshot. Served
// from the snapshot cache when it is warm.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	if u := h.engine.Store().User(); u != nil {
		if snap, ok := h.cache.Get(r.Context(), u.ID); ok {
			response.OK(w, snap)
			return
		}
	}

	snap := h.engine.Store().Snapshot()
	if snap.User != nil {
		h.cache.Put(r.Context(), snap.User.ID, snap)
	}
	response.OK(w, snap)
}

// UpdatePosition handles PUT /api/v1/position: a geolocation fix from
// the client. Rebuilds the spawn pool around the new coordinate.
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		response.Error(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	h.engine.UpdatePosition(req.Lat, req.Lng)
	response.OK(w, map[string]float64{"lat": req.Lat, "lng": req.Lng})
}

// UseFallbackPosition handles POST /api/v1/position/fallback, for
// clients whose geolocation was denied or timed out.
func (h *Handler) UseFallbackPosition(w http.ResponseWriter, r *http.Request) {
	lat, lng := h.engine.UseFallbackPosition()
	response.OK(w, map[string]float64{"lat": lat, "lng": lng})
}

// GetMap handles GET /api/v1/map: the creatures currently visible.
func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.engine.Visible())
}

// GetCatalog handles GET /api/v1/catalog: the static creature templates.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.engine.Catalog().Templates())
}

// GetShop handles GET /api/v1/shop: everything purchasable.
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.engine.ShopCatalog())
}

// Buy handles POST /api/v1/shop/buy.
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owned, err := h.engine.Purchase(req.ItemID, req.Quantity)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if u := h.engine.Store().User(); u != nil {
		h.cache.Invalidate(r.Context(), u.ID)
	}
	response.OK(w, map[string]interface{}{
		"item":    owned,
		"dirhams": h.engine.Store().Dirhams(),
	})
}

// StartCapture handles POST /api/v1/encounters: begins capturing a
// visible creature. Blocks through the fade-out window before the
// encounter opens.
func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatureID string `json:"creature_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	enc, err := h.engine.StartCapture(r.Context(), req.CreatureID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, map[string]interface{}{
		"encounter_id": enc.ID,
		"creature":     enc.Creature,
	})
}

// Throw handles POST /api/v1/encounters/{encounter_id}/throw. Blocks
// through the staged animation delays and returns the resolved outcome.
func (h *Handler) Throw(w http.ResponseWriter, r *http.Request) {
	encounterID := chi.URLParam(r, "encounter_id")
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.engine.Throw(r.Context(), encounterID, req.ItemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if u := h.engine.Store().User(); u != nil {
		h.cache.Invalidate(r.Context(), u.ID)
	}
	response.OK(w, result)
}

// RunAway handles DELETE /api/v1/encounters/{encounter_id}.
func (h *Handler) RunAway(w http.ResponseWriter, r *http.Request) {
	encounterID := chi.URLParam(r, "encounter_id")
	if err := h.engine.RunAway(encounterID); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"status":        "fled",
		"exit_delay_ms": h.engine.ExitDelay().Milliseconds(),
	})
}

// Scan handles POST /api/v1/scan: the photo-scan minigame. Blocks
// through the processing delay and returns the granted pokecat.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Scan(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if u := h.engine.Store().User(); u != nil {
		h.cache.Invalidate(r.Context(), u.ID)
	}
	response.OK(w, result)
}

// ClearNotification handles DELETE /api/v1/notification: dismiss the
// active toast ahead of its auto-expiry.
func (h *Handler) ClearNotification(w http.ResponseWriter, r *http.Request) {
	h.engine.Store().ClearNotification()
	response.OK(w, map[string]string{"status": "cleared"})
}

// OpenModal handles POST /api/v1/modal: open the detail view for a
// record in the capture list.
func (h *Handler) OpenModal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaughtID string `json:"caught_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for _, c := range h.engine.Store().Snapshot().CaughtList {
		if c.ID == req.CaughtID {
			h.engine.Store().OpenModal(c)
			response.OK(w, c)
			return
		}
	}
	response.Error(w, http.StatusNotFound, "caught record not found")
}

// CloseModal handles DELETE /api/v1/modal: close the caught-creature
// detail view.
func (h *Handler) CloseModal(w http.ResponseWriter, r *http.Request) {
	h.engine.Store().CloseModal()
	response.OK(w, map[string]string{"status": "closed"})
}
