// Package main is the entry point for the Pokecat game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/catalog"
	"github.com/pokecat-game/pokecat/server/internal/config"
	"github.com/pokecat-game/pokecat/server/internal/engine"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/infra/cache"
	"github.com/pokecat-game/pokecat/server/internal/infra/remote"
	"github.com/pokecat-game/pokecat/server/internal/infra/storage"
	"github.com/pokecat-game/pokecat/server/internal/network"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	transporthttp "github.com/pokecat-game/pokecat/server/internal/transport/http"
	"github.com/pokecat-game/pokecat/server/internal/transport/http/handler"
)

// sqlitePersisterAdapter translates domain events to storage events.
type sqlitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *sqlitePersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	_ = json.Unmarshal(payloadBytes, &payloadMap)

	return a.repo.Append(context.Background(), storage.GameEvent{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Payload:   payloadMap,
	})
}

func main() {
	cfg := config.MustLoad()
	appLogger := logger.NewLogger()

	appLogger.Info("Initializing Pokecat authoritative game server...")

	appLogger.Info("Opening %s storage at %s...", cfg.Storage.Engine, cfg.Storage.Path)
	backend, storageErr := storage.OpenBackend(cfg.Storage.Engine, cfg.Storage.Path)
	if backend == nil {
		appLogger.Error("Failed to open storage: %v", storageErr)
		os.Exit(1)
	}
	if storageErr != nil {
		appLogger.Warn("Storage opened degraded, starting from defaults: %v", storageErr)
	}
	defer backend.Saves.Close()

	var persister events.EventPersister
	if backend.Events != nil {
		persister = &sqlitePersisterAdapter{repo: backend.Events}
	}
	eventLog := events.NewEventLog(persister)

	appLogger.Info("Loading creature catalog from %s...", cfg.Storage.CatalogPath)
	cat, catErr := catalog.Load(cfg.Storage.CatalogPath)
	if catErr != nil {
		appLogger.Error("Failed to load catalog, running with an empty map: %v", catErr)
		cat = catalog.Empty()
	} else {
		appLogger.Info("Catalog loaded: %d templates.", cat.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := game.NewStore(backend.Saves, appLogger, cfg.Game.NotificationTTL)
	if storageErr != nil {
		store.SetNotification("Saved game could not be read, starting fresh.", game.NotificationError)
	}
	if catErr != nil {
		store.SetNotification("Pokecat catalog failed to load.", game.NotificationError)
	}

	snapCache, err := cache.New(ctx, cfg.Cache, appLogger)
	if err != nil {
		appLogger.Warn("Snapshot cache unavailable, continuing without it: %v", err)
	}
	defer snapCache.Close()

	appLogger.Info("Bootstrapping engine subsystems...")
	gameEngine := engine.NewService(store, cat, cfg.Game, eventLog, appLogger, time.Now().UnixNano())
	gameEngine.Start(ctx)
	defer gameEngine.Stop()

	appLogger.Info("Bootstrapping WebSocket hub...")
	hub := network.NewHub(gameEngine, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)
	hub.StartMapPusher(ctx, 200*time.Millisecond)

	// Every save mutation fans out to connected scenes and refreshes the
	// snapshot cache.
	store.Subscribe(func(snap game.Snapshot) {
		hub.BroadcastSnapshot(snap)
		if snap.User != nil {
			snapCache.Put(context.Background(), snap.User.ID, snap)
		}
	})

	creator := remote.NewCreatorClient(cfg.Creator, appLogger)
	if creator.Enabled() {
		appLogger.Info("Cat creator backend enabled at %s", cfg.Creator.BackendURL)
	} else {
		appLogger.Info("Running standalone: cat creator disabled.")
	}

	h := handler.New(gameEngine, hub, snapCache, creator, appLogger)
	router := transporthttp.NewRouter(h, appLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("HTTP API & WS server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Shutdown error: %v", err)
	}
}
