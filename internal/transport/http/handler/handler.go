// Package handler contains the HTTP handlers of the game API.
package handler

import (
	"errors"
	"net/http"

	"github.com/pokecat-game/pokecat/server/internal/engine"
	"github.com/pokecat-game/pokecat/server/internal/infra/cache"
	"github.com/pokecat-game/pokecat/server/internal/infra/remote"
	"github.com/pokecat-game/pokecat/server/internal/network"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/response"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Handler holds every handler's dependencies.
type Handler struct {
	engine  *engine.Service
	hub     *network.Hub
	cache   *cache.SnapshotCache
	creator *remote.CreatorClient
	log     *logger.Logger
}

// New creates the handler set.
func New(eng *engine.Service, hub *network.Hub, snapCache *cache.SnapshotCache, creator *remote.CreatorClient, log *logger.Logger) *Handler {
	return &Handler{
		engine:  eng,
		hub:     hub,
		cache:   snapCache,
		creator: creator,
		log:     log,
	}
}

// writeEngineError maps engine errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoSuchItem),
		errors.Is(err, engine.ErrItemNotOwned):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrCreatureGone),
		errors.Is(err, engine.ErrEncounterGone):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInsufficientFunds):
		response.Error(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, engine.ErrNoSession):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, remote.ErrStandalone):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}
