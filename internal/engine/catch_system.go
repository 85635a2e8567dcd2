package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/domain/item"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

// DodgeProbability is the chance a wild pokecat sidesteps a throw
// entirely. A dodge consumes nothing, but the pokecat still gets away.
const DodgeProbability = 0.3

// ThrowOutcome is the result of one item throw.
type ThrowOutcome string

const (
	OutcomeDodged  ThrowOutcome = "dodged"
	OutcomeCaught  ThrowOutcome = "caught"
	OutcomeEscaped ThrowOutcome = "escaped"
)

// ThrowResult packages the outcome of a resolved throw together with
// the catch record when the throw succeeded.
type ThrowResult struct {
	Outcome ThrowOutcome     `json:"outcome"`
	Message string           `json:"message"`
	Caught  *creature.Caught `json:"caught,omitempty"`
	// EncounterOver is true once the encounter finished. Every resolved
	// outcome ends the encounter, dodges included.
	EncounterOver bool `json:"encounter_over"`
	// ExitDelayMs paces the client's return to the map scene.
	ExitDelayMs int64 `json:"exit_delay_ms,omitempty"`
}

// CatchPacing holds the staged delays of the throw animation. The
// resolver sleeps through them so the client-side scene and the server
// state stay in step.
type CatchPacing struct {
	ThrowDelay  time.Duration // wind-up before the dodge roll
	ResultDelay time.Duration // hit lands, before the capture roll
	ExitDelay   time.Duration // lingering on the result screen
}

// DefaultCatchPacing matches the shipped encounter scene.
func DefaultCatchPacing() CatchPacing {
	return CatchPacing{
		ThrowDelay:  800 * time.Millisecond,
		ResultDelay: 800 * time.Millisecond,
		ExitDelay:   1800 * time.Millisecond,
	}
}

// Encounter is one live catch attempt against a single creature. It is
// created by the capture hand-off and destroyed when the creature is
// caught, escapes, or the player runs away. Stale async work guards on
// the encounter still being alive, so a delayed resolution against a
// finished encounter is a no-op.
type Encounter struct {
	ID        string
	Creature  creature.Wild
	StartedAt time.Time
}

// CatchSystem resolves throws: dodge roll, then capture roll at the
// item's effective catch rate. Every resolved outcome notifies the
// player and ends the encounter.
type CatchSystem struct {
	store    *game.Store
	eventLog *events.EventLog
	log      *logger.Logger
	pacing   CatchPacing

	mu     sync.Mutex
	rng    *rand.Rand
	active map[string]*Encounter
}

// NewCatchSystem creates the catch resolver.
func NewCatchSystem(store *game.Store, eventLog *events.EventLog, log *logger.Logger, pacing CatchPacing, seed int64) *CatchSystem {
	return &CatchSystem{
		store:    store,
		eventLog: eventLog,
		log:      log,
		pacing:   pacing,
		rng:      rand.New(rand.NewSource(seed)),
		active:   make(map[string]*Encounter),
	}
}

// Begin opens an encounter against the given creature.
func (cs *CatchSystem) Begin(w creature.Wild) *Encounter {
	enc := &Encounter{
		ID:        uuid.NewString(),
		Creature:  w,
		StartedAt: time.Now(),
	}
	cs.mu.Lock()
	cs.active[enc.ID] = enc
	cs.mu.Unlock()
	cs.log.Event("ENCOUNTER_STARTED", "SYSTEM", w.Name)
	return enc
}

// Encounter returns the live encounter by id.
func (cs *CatchSystem) Encounter(id string) (*Encounter, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	enc, ok := cs.active[id]
	return enc, ok
}

// Abandon closes an encounter without a throw (the player ran away).
// The creature is simply gone; nothing is consumed or credited.
func (cs *CatchSystem) Abandon(id string) bool {
	cs.mu.Lock()
	_, ok := cs.active[id]
	delete(cs.active, id)
	cs.mu.Unlock()
	return ok
}

// roll draws one uniform float under the lock; the shared rng is not
// goroutine safe on its own.
func (cs *CatchSystem) roll() float64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.rng.Float64()
}

// finish removes the encounter if it is still the live one. Returns
// false when it was already gone, in which case the caller must drop
// all side effects.
func (cs *CatchSystem) finish(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.active[id]; !ok {
		return false
	}
	delete(cs.active, id)
	return true
}

// alive reports whether the encounter is still open.
func (cs *CatchSystem) alive(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	_, ok := cs.active[id]
	return ok
}

// Throw resolves one item throw in the encounter. It blocks through the
// staged animation delays (cancellable via ctx) and applies the
// outcome:
//
//   - dodged: nothing consumed, encounter closed;
//   - caught: item consumed, capture appended, encounter closed;
//   - escaped: item consumed, encounter closed.
//
// The throw must reference an item line the player owns; item validity
// is the caller's responsibility (the service checks inventory before
// handing off here).
func (cs *CatchSystem) Throw(ctx context.Context, encounterID string, def item.Definition) (ThrowResult, error) {
	enc, ok := cs.Encounter(encounterID)
	if !ok {
		return ThrowResult{}, ErrEncounterGone
	}

	if err := sleep(ctx, cs.pacing.ThrowDelay); err != nil {
		return ThrowResult{}, err
	}
	if !cs.alive(encounterID) {
		// The player ran away mid-wind-up; the delayed resolution is void.
		return ThrowResult{}, ErrEncounterGone
	}

	if cs.roll() < DodgeProbability {
		if !cs.finish(encounterID) {
			return ThrowResult{}, ErrEncounterGone
		}
		metrics.Get().RecordThrowDodged()
		cs.appendThrow(enc, def.ID, OutcomeDodged)
		cs.store.SetNotification(enc.Creature.Name+" dodged and got away!", game.NotificationWarning)
		return ThrowResult{
			Outcome:       OutcomeDodged,
			Message:       enc.Creature.Name + " dodged the " + def.Name + "!",
			EncounterOver: true,
			ExitDelayMs:   cs.pacing.ExitDelay.Milliseconds(),
		}, nil
	}

	// The throw connected; the item is spent whatever the capture roll
	// says.
	cs.store.RemoveItem(def.ID, 1)
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeItemConsumed,
		ActorID:  cs.actorID(),
		TargetID: def.ID,
	})

	if err := sleep(ctx, cs.pacing.ResultDelay); err != nil {
		return ThrowResult{}, err
	}

	if cs.roll() < def.EffectiveCatchRate() {
		if !cs.finish(encounterID) {
			return ThrowResult{}, ErrEncounterGone
		}
		caught := enc.Creature.Snapshot(time.Now())
		cs.store.AddCaught(caught)
		metrics.Get().RecordThrowCaught()
		cs.appendThrow(enc, def.ID, OutcomeCaught)
		cs.eventLog.Append(events.GameEvent{
			Type:     events.EventTypeCreatureCaught,
			ActorID:  cs.actorID(),
			TargetID: enc.Creature.ID,
			Payload:  caught,
		})
		cs.store.SetNotification("You caught "+enc.Creature.Name+"!", game.NotificationSuccess)
		return ThrowResult{
			Outcome:       OutcomeCaught,
			Message:       "Gotcha! " + enc.Creature.Name + " was caught!",
			Caught:        &caught,
			EncounterOver: true,
			ExitDelayMs:   cs.pacing.ExitDelay.Milliseconds(),
		}, nil
	}

	if !cs.finish(encounterID) {
		return ThrowResult{}, ErrEncounterGone
	}
	metrics.Get().RecordThrowEscaped()
	cs.appendThrow(enc, def.ID, OutcomeEscaped)
	cs.store.SetNotification(enc.Creature.Name+" broke free and ran away!", game.NotificationWarning)
	return ThrowResult{
		Outcome:       OutcomeEscaped,
		Message:       "Oh no! " + enc.Creature.Name + " broke free and ran away!",
		EncounterOver: true,
		ExitDelayMs:   cs.pacing.ExitDelay.Milliseconds(),
	}, nil
}

func (cs *CatchSystem) appendThrow(enc *Encounter, itemID string, outcome ThrowOutcome) {
	cs.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeThrowResolved,
		ActorID:  cs.actorID(),
		TargetID: enc.Creature.ID,
		Payload: map[string]interface{}{
			"encounter_id": enc.ID,
			"item_id":      itemID,
			"outcome":      outcome,
		},
	})
}

func (cs *CatchSystem) actorID() string {
	if u := cs.store.User(); u != nil {
		return u.ID
	}
	return "SYSTEM"
}

// ExitDelay exposes the configured lingering delay so the service can
// pace the return to the map.
func (cs *CatchSystem) ExitDelay() time.Duration {
	return cs.pacing.ExitDelay
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
