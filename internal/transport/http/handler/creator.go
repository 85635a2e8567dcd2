package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pokecat-game/pokecat/server/internal/infra/remote"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/response"
)

// CreatorStatus handles GET /api/v1/creator: whether the cat-creator
// backend is wired up. The frontend hides the creator scene when the
// server runs standalone.
func (h *Handler) CreatorStatus(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]bool{"enabled": h.creator.Enabled()})
}

// SubmitCat handles POST /api/v1/creator/cats: uploads a user-drawn cat
// through the creator pipeline.
func (h *Handler) SubmitCat(w http.ResponseWriter, r *http.Request) {
	var sub remote.CatSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if sub.Name == "" || sub.ImageB64 == "" {
		response.Error(w, http.StatusBadRequest, "name and image are required")
		return
	}

	rec, err := h.creator.Submit(r.Context(), sub)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, rec)
}
