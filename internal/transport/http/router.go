// Package http wires the chi router for the game API.
package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/handler"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/middleware"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *handler.Handler, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		r.Post("/session", h.StartSession)
		r.Delete("/session", h.ResetSession)

		r.Get("/state", h.GetState)
		r.Put("/position", h.UpdatePosition)
		r.Post("/position/fallback", h.UseFallbackPosition)
		r.Get("/map", h.GetMap)
		r.Get("/catalog", h.GetCatalog)

		r.Get("/shop", h.GetShop)
		r.Post("/shop/buy", h.Buy)

		r.Post("/encounters", h.StartCapture)
		r.Post("/encounters/{encounter_id}/throw", h.Throw)
		r.Delete("/encounters/{encounter_id}", h.RunAway)

		r.Post("/scan", h.Scan)

		r.Delete("/notification", h.ClearNotification)
		r.Post("/modal", h.OpenModal)
		r.Delete("/modal", h.CloseModal)

		r.Get("/events", h.GetEvents)
		r.Get("/metrics", h.GetMetrics)

		r.Get("/creator", h.CreatorStatus)
		r.Post("/creator/cats", h.SubmitCat)
	})

	// WebSocket endpoint lives outside the versioned API prefix.
	r.Get("/ws", h.ServeWS)

	return r
}
