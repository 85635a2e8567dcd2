package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

// Fallback coordinate (Jakarta) used when the client never granted
// geolocation. Each session jitters it slightly so parallel sessions
// don't collide exactly.
const (
	FallbackLat = -6.2
	FallbackLng = 106.8
)

// SpawnConfig holds the tunables of the spawn/movement loops. The
// defaults reproduce the pacing of the original map view.
type SpawnConfig struct {
	SpawnInterval    time.Duration // pool draw cadence
	MotionInterval   time.Duration // movement/expiry tick
	CaptureFadeDelay time.Duration // fade-out window before the catch hand-off

	Spread      float64       // max coordinate offset around the player
	StepDelta   float64       // per-tick movement step
	MinLifetime time.Duration // lower lifetime bound
	MaxLifetime time.Duration // upper lifetime bound (exclusive)
}

// DefaultSpawnConfig matches the shipped game pacing.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		SpawnInterval:    3 * time.Second,
		MotionInterval:   60 * time.Millisecond,
		CaptureFadeDelay: time.Second,
		Spread:           0.02,
		StepDelta:        0.00005,
		MinLifetime:      time.Minute,
		MaxLifetime:      3 * time.Minute,
	}
}

// SpawnSystem maintains the set of pokecats currently visible to the
// player: pool construction around the player position, periodic draws
// into the visible set, per-tick locomotion and lifetime expiry.
//
// Per creature the lifecycle is
// spawned → (idle ⇄ moving) → expired-or-caught → fading-out → removed;
// a fading creature survives exactly one more motion tick so the scene
// can play its exit animation.
//
// All mutations of the visible set are pure transformations of the
// previous slice under one mutex; the spawn loop, the motion loop and
// capture hand-offs never mutate shared elements in place.
type SpawnSystem struct {
	cfg      SpawnConfig
	log      *logger.Logger
	eventLog *events.EventLog

	mu        sync.Mutex
	rng       *rand.Rand
	templates []creature.Template
	userLat   float64
	userLng   float64
	placed    bool

	pool     []creature.Wild // remaining draws
	original []creature.Wild // saved copy for refills
	visible  []creature.Wild

	cancel context.CancelFunc

	// now is swapped in tests to drive expiry deterministically.
	now func() time.Time
}

// NewSpawnSystem creates the system for the given creature templates.
func NewSpawnSystem(cfg SpawnConfig, templates []creature.Template, eventLog *events.EventLog, log *logger.Logger, seed int64) *SpawnSystem {
	return &SpawnSystem{
		cfg:       cfg,
		log:       log,
		eventLog:  eventLog,
		rng:       rand.New(rand.NewSource(seed)),
		templates: templates,
		now:       time.Now,
	}
}

// SetPosition places the player and (re)builds the spawn pool around
// them: every template instanced once with a uniform random offset, a
// random heading and a jittered lifetime. Clears the visible set.
func (ss *SpawnSystem) SetPosition(lat, lng float64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.userLat, ss.userLng = lat, lng
	ss.placed = true
	ss.rebuildPoolLocked()
}

// PlaceFallback places the player on the jittered fallback coordinate.
// Used when geolocation was denied or is unavailable.
func (ss *SpawnSystem) PlaceFallback() (lat, lng float64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	lat = FallbackLat + (ss.rng.Float64()-0.5)*0.02
	lng = FallbackLng + (ss.rng.Float64()-0.5)*0.02
	ss.userLat, ss.userLng = lat, lng
	ss.placed = true
	ss.rebuildPoolLocked()
	return lat, lng
}

// Position returns the player coordinate and whether one was ever set.
func (ss *SpawnSystem) Position() (lat, lng float64, ok bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.userLat, ss.userLng, ss.placed
}

func (ss *SpawnSystem) rebuildPoolLocked() {
	now := ss.now()
	pool := make([]creature.Wild, 0, len(ss.templates))
	for _, t := range ss.templates {
		pool = append(pool, ss.instantiateLocked(t, now))
	}
	ss.pool = pool
	ss.original = make([]creature.Wild, len(pool))
	copy(ss.original, pool)
	ss.visible = nil
}

// instantiateLocked derives one wild instance from a template: uniform
// offset within the spread, random heading, lifetime jittered within
// [MinLifetime, MaxLifetime). ExpiresAt is set here once and never
// extended.
func (ss *SpawnSystem) instantiateLocked(t creature.Template, now time.Time) creature.Wild {
	lat := ss.userLat + (ss.rng.Float64()-0.5)*ss.cfg.Spread
	lng := ss.userLng + (ss.rng.Float64()-0.5)*ss.cfg.Spread
	lifetime := ss.cfg.MinLifetime + time.Duration(ss.rng.Float64()*float64(ss.cfg.MaxLifetime-ss.cfg.MinLifetime))
	return creature.Wild{
		Template:  t,
		Lat:       lat,
		Lng:       lng,
		OriginLat: lat,
		OriginLng: lng,
		Direction: ss.rng.Float64() * 360,
		Status:    creature.StatusWild,
		ExpiresAt: now.Add(lifetime),
	}
}

// Start launches the spawn and motion loops. They run until the context
// is cancelled or Stop is called.
func (ss *SpawnSystem) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ss.mu.Lock()
	ss.cancel = cancel
	ss.mu.Unlock()

	go ss.spawnLoop(ctx)
	go ss.motionLoop(ctx)
}

// Stop cancels both loops. Safe to call more than once.
func (ss *SpawnSystem) Stop() {
	ss.mu.Lock()
	cancel := ss.cancel
	ss.cancel = nil
	ss.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (ss *SpawnSystem) spawnLoop(ctx context.Context) {
	ticker := time.NewTicker(ss.cfg.SpawnInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.SpawnTick()
		}
	}
}

func (ss *SpawnSystem) motionLoop(ctx context.Context) {
	ticker := time.NewTicker(ss.cfg.MotionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			ss.MotionTick()
			metrics.Get().RecordMotionTick(time.Since(start))
		}
	}
}

// SpawnTick draws 1-2 instances without replacement from the pool and
// adds them to the visible set. An exhausted pool refills from the
// saved original copy, so the map never runs dry permanently.
func (ss *SpawnSystem) SpawnTick() {
	ss.mu.Lock()
	if !ss.placed || len(ss.original) == 0 {
		ss.mu.Unlock()
		return
	}

	pool := make([]creature.Wild, len(ss.pool))
	copy(pool, ss.pool)

	if len(pool) == 0 {
		now := ss.now()
		pool = make([]creature.Wild, 0, len(ss.original))
		for _, w := range ss.original {
			// Re-instance rather than reuse: a refilled creature gets a
			// fresh lifetime and position, not the stale expired ones.
			pool = append(pool, ss.instantiateLocked(w.Template, now))
		}
	}

	count := ss.rng.Intn(2) + 1 // 1-2 per tick
	spawned := make([]creature.Wild, 0, count)
	for i := 0; i < count && len(pool) > 0; i++ {
		idx := ss.rng.Intn(len(pool))
		spawned = append(spawned, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	ss.pool = pool
	next := make([]creature.Wild, 0, len(ss.visible)+len(spawned))
	next = append(next, ss.visible...)
	next = append(next, spawned...)
	ss.visible = next
	ss.mu.Unlock()

	for _, w := range spawned {
		metrics.Get().RecordSpawn()
		ss.eventLog.Append(events.GameEvent{
			Type:     events.EventTypeCreatureSpawned,
			ActorID:  "SYSTEM",
			TargetID: w.ID,
			Payload:  w,
		})
	}
}

// MotionTick advances every visible creature one step: fading creatures
// are removed (their one-tick grace is over), expired ones are marked
// fading, and the rest toggle between idle and moving and drift along
// their heading while moving. The new visible set is built from scratch;
// elements of the previous slice are never mutated.
func (ss *SpawnSystem) MotionTick() {
	now := ss.now()

	ss.mu.Lock()
	next := make([]creature.Wild, 0, len(ss.visible))
	var expired []creature.Wild
	for _, w := range ss.visible {
		if w.FadingOut {
			expired = append(expired, w)
			continue
		}
		if w.Expired(now) {
			w.FadingOut = true
			next = append(next, w)
			continue
		}
		next = append(next, ss.stepLocked(w, now))
	}
	ss.visible = next
	ss.mu.Unlock()

	for _, w := range expired {
		if w.Status == creature.StatusWild {
			metrics.Get().RecordExpiry()
			ss.eventLog.Append(events.GameEvent{
				Type:     events.EventTypeCreatureExpired,
				ActorID:  "SYSTEM",
				TargetID: w.ID,
			})
		}
	}
}

// stepLocked computes one creature's next state. Works on a copy.
func (ss *SpawnSystem) stepLocked(w creature.Wild, now time.Time) creature.Wild {
	if w.NextToggle.IsZero() {
		w.IsMoving = ss.rng.Float64() < 0.5
		w.NextToggle = now.Add(ss.toggleDelayLocked())
	}
	if now.After(w.NextToggle) {
		w.IsMoving = !w.IsMoving
		w.NextToggle = now.Add(ss.toggleDelayLocked())
	}
	if !w.IsMoving {
		return w
	}

	// Occasional small heading change keeps the drift from looking
	// mechanical.
	if ss.rng.Float64() < 0.05 {
		w.Direction += (ss.rng.Float64() - 0.5) * 60
	}
	rad := w.Direction * math.Pi / 180
	w.Lat += math.Sin(rad) * ss.cfg.StepDelta
	w.Lng += math.Cos(rad) * ss.cfg.StepDelta
	return w
}

// toggleDelayLocked returns the 1-4s randomized idle/moving period.
func (ss *SpawnSystem) toggleDelayLocked() time.Duration {
	return time.Second + time.Duration(ss.rng.Float64()*float64(3*time.Second))
}

// Visible returns a copy of the current visible set.
func (ss *SpawnSystem) Visible() []creature.Wild {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	out := make([]creature.Wild, len(ss.visible))
	copy(out, ss.visible)
	return out
}

// PoolSize returns how many draws remain before the next refill.
func (ss *SpawnSystem) PoolSize() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.pool)
}

// BeginCapture marks the creature as fading immediately and returns its
// state at capture time. The returned channel delivers the same
// snapshot once the fade-out window elapsed; only then should the
// caller proceed to the catch encounter. The second return is false
// when the creature is not in the visible set (already gone or never
// spawned).
func (ss *SpawnSystem) BeginCapture(id string) (<-chan creature.Wild, bool) {
	ss.mu.Lock()
	var captured *creature.Wild
	next := make([]creature.Wild, 0, len(ss.visible))
	for _, w := range ss.visible {
		if w.ID == id && !w.FadingOut {
			w.FadingOut = true
			w.Status = creature.StatusCaught
			c := w
			captured = &c
		}
		next = append(next, w)
	}
	ss.visible = next
	ss.mu.Unlock()

	if captured == nil {
		return nil, false
	}

	ss.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeCaptureStarted,
		ActorID:  "SYSTEM",
		TargetID: id,
		Payload:  *captured,
	})

	ch := make(chan creature.Wild, 1)
	snapshot := *captured
	time.AfterFunc(ss.cfg.CaptureFadeDelay, func() {
		ss.remove(id)
		ch <- snapshot
	})
	return ch, true
}

// remove drops a creature from the visible set by id. Idempotent: the
// motion tick usually beat us to it.
func (ss *SpawnSystem) remove(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	next := make([]creature.Wild, 0, len(ss.visible))
	for _, w := range ss.visible {
		if w.ID != id {
			next = append(next, w)
		}
	}
	ss.visible = next
}
