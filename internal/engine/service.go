// Package engine runs the live hunt simulation: the spawn/movement
// loops, capture encounters, the scanner minigame and the session
// lifecycle. It owns no persistence of its own; durable state goes
// through the game store.
package engine

import (
	"context"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/catalog"
	"github.com/pokecat-game/pokecat/server/internal/config"
	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/domain/item"
	"github.com/pokecat-game/pokecat/server/internal/domain/player"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

// Service ties the subsystems together and is the single entry point
// the transports talk to.
type Service struct {
	store    *game.Store
	catalog  *catalog.Catalog
	spawns   *SpawnSystem
	catches  *CatchSystem
	scanner  *ScannerSystem
	eventLog *events.EventLog
	log      *logger.Logger
}

// NewService wires the engine from its dependencies. The seed feeds
// every subsystem rng; pass time.Now().UnixNano() outside of tests.
func NewService(store *game.Store, cat *catalog.Catalog, cfg config.GameConfig, eventLog *events.EventLog, log *logger.Logger, seed int64) *Service {
	spawnCfg := DefaultSpawnConfig()
	spawnCfg.SpawnInterval = cfg.SpawnInterval
	spawnCfg.MotionInterval = cfg.MotionInterval
	spawnCfg.CaptureFadeDelay = cfg.CaptureFadeDelay

	pacing := CatchPacing{
		ThrowDelay:  cfg.ThrowDelay,
		ResultDelay: cfg.ResultDelay,
		ExitDelay:   cfg.ExitDelay,
	}

	return &Service{
		store:    store,
		catalog:  cat,
		spawns:   NewSpawnSystem(spawnCfg, cat.Templates(), eventLog, log, seed),
		catches:  NewCatchSystem(store, eventLog, log, pacing, seed+1),
		scanner:  NewScannerSystem(store, cat.Templates(), eventLog, log, cfg.ScanDelay, seed+2),
		eventLog: eventLog,
		log:      log,
	}
}

// Start launches the background loops.
func (s *Service) Start(ctx context.Context) {
	s.spawns.Start(ctx)
	s.log.Info("engine started: %d templates, %d items in the shop", s.catalog.Len(), len(item.Registry))
}

// Stop cancels the background loops.
func (s *Service) Stop() {
	s.spawns.Stop()
}

// Store exposes the underlying save-state store.
func (s *Service) Store() *game.Store { return s.store }

// Catalog exposes the static creature catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Events exposes the append-only event log.
func (s *Service) Events() *events.EventLog { return s.eventLog }

// --- session -----------------------------------------------------------

// StartSession establishes the player identity. A returning player
// keeps their saved identity; a fresh one is minted from the given
// display name. Idempotent across reconnects.
func (s *Service) StartSession(name string) player.Identity {
	if u := s.store.User(); u != nil {
		return *u
	}
	id := player.NewIdentity(name)
	s.store.SetUser(id)
	s.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeSessionStarted,
		ActorID: id.ID,
		Payload: id,
	})
	s.log.Event("SESSION_STARTED", id.ID, id.Name)
	return id
}

// ResetSession wipes the save: identity, captures, inventory and the
// balance all return to their first-run values.
func (s *Service) ResetSession() {
	actor := "SYSTEM"
	if u := s.store.User(); u != nil {
		actor = u.ID
	}
	s.store.ClearUser()
	s.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeSessionReset,
		ActorID: actor,
	})
	s.log.Event("SESSION_RESET", actor, "")
}

// --- map ---------------------------------------------------------------

// UpdatePosition places the player and rebuilds the spawn pool around
// the new coordinate.
func (s *Service) UpdatePosition(lat, lng float64) {
	s.spawns.SetPosition(lat, lng)
}

// UseFallbackPosition places the player on the jittered fallback spot,
// for clients that never produced a geolocation fix.
func (s *Service) UseFallbackPosition() (lat, lng float64) {
	return s.spawns.PlaceFallback()
}

// Position returns the current player coordinate.
func (s *Service) Position() (lat, lng float64, ok bool) {
	return s.spawns.Position()
}

// Visible returns the creatures currently on the map.
func (s *Service) Visible() []creature.Wild {
	return s.spawns.Visible()
}

// --- shop --------------------------------------------------------------

// Purchase buys quantity units of an item in one atomic transaction:
// either the full amount is debited and the inventory line grows by the
// full quantity, or nothing changes at all.
func (s *Service) Purchase(itemID string, quantity int) (item.GameItem, error) {
	def, ok := item.Get(itemID)
	if !ok {
		return item.GameItem{}, ErrNoSuchItem
	}
	if quantity < 1 {
		quantity = 1
	}

	total := def.Price * quantity
	if !s.store.SpendDirhams(total) {
		s.store.SetNotification("Not enough dirhams!", game.NotificationError)
		return item.GameItem{}, ErrInsufficientFunds
	}
	s.store.AddItem(def, quantity)
	s.store.SetNotification("Purchased "+def.Name+"!", game.NotificationSuccess)
	metrics.Get().RecordPurchase()
	s.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeItemPurchased,
		ActorID:  s.actorID(),
		TargetID: def.ID,
		Payload: map[string]interface{}{
			"quantity": quantity,
			"total":    total,
		},
	})

	owned, _ := s.store.Item(def.ID)
	return owned, nil
}

// ShopCatalog lists everything purchasable.
func (s *Service) ShopCatalog() []item.Definition {
	return item.All()
}

// --- encounters --------------------------------------------------------

// StartCapture begins the capture of a visible creature: marks it
// fading on the map, waits out the fade-out window, then opens the
// encounter. Blocks for the fade duration (cancellable via ctx).
func (s *Service) StartCapture(ctx context.Context, creatureID string) (*Encounter, error) {
	ch, ok := s.spawns.BeginCapture(creatureID)
	if !ok {
		return nil, ErrCreatureGone
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case w := <-ch:
		return s.catches.Begin(w), nil
	}
}

// Throw resolves one item throw inside an encounter. The item must be
// in the player's inventory.
func (s *Service) Throw(ctx context.Context, encounterID, itemID string) (ThrowResult, error) {
	def, ok := item.Get(itemID)
	if !ok {
		return ThrowResult{}, ErrNoSuchItem
	}
	if _, owned := s.store.Item(itemID); !owned {
		return ThrowResult{}, ErrItemNotOwned
	}
	return s.catches.Throw(ctx, encounterID, def)
}

// RunAway abandons an encounter. Any throw still in flight against it
// resolves to a no-op.
func (s *Service) RunAway(encounterID string) error {
	if !s.catches.Abandon(encounterID) {
		return ErrEncounterGone
	}
	return nil
}

// Encounter looks up a live encounter.
func (s *Service) Encounter(id string) (*Encounter, bool) {
	return s.catches.Encounter(id)
}

// --- scanner -----------------------------------------------------------

// Scan runs the photo-scan minigame.
func (s *Service) Scan(ctx context.Context) (ScanResult, error) {
	return s.scanner.Scan(ctx)
}

func (s *Service) actorID() string {
	if u := s.store.User(); u != nil {
		return u.ID
	}
	return "SYSTEM"
}

// ExitDelay paces the return to the map after an encounter resolved.
func (s *Service) ExitDelay() time.Duration {
	return s.catches.ExitDelay()
}
