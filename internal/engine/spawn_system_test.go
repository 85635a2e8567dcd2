package engine

import (
	"math"
	"testing"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
)

func testTemplates() []creature.Template {
	return []creature.Template{
		{ID: "mochi", Name: "Mochi", Rarity: creature.RarityCommon},
		{ID: "salem", Name: "Salem", Rarity: creature.RarityRare},
		{ID: "nyandora", Name: "Nyandora", Rarity: creature.RarityLegendary},
	}
}

func newTestSpawnSystem(t *testing.T, cfg SpawnConfig) *SpawnSystem {
	t.Helper()
	el := events.NewEventLog(nil)
	return NewSpawnSystem(cfg, testTemplates(), el, logger.NewLogger(), 42)
}

func TestPoolConstruction(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SetPosition(10, 20)

	if ss.PoolSize() != 3 {
		t.Fatalf("Expected one pool instance per template, got %d", ss.PoolSize())
	}

	now := time.Now()
	for _, w := range ss.pool {
		if math.Abs(w.Lat-10) > 0.01 || math.Abs(w.Lng-20) > 0.01 {
			t.Errorf("Instance %s spawned outside the spread: %f,%f", w.ID, w.Lat, w.Lng)
		}
		if w.Lat != w.OriginLat || w.Lng != w.OriginLng {
			t.Errorf("Instance %s origin does not match spawn point", w.ID)
		}
		life := w.ExpiresAt.Sub(now)
		if life < 50*time.Second || life > 3*time.Minute+time.Second {
			t.Errorf("Instance %s lifetime %v outside [1m,3m)", w.ID, life)
		}
		if w.Direction < 0 || w.Direction >= 360 {
			t.Errorf("Instance %s heading %f outside [0,360)", w.ID, w.Direction)
		}
	}
}

func TestSpawnTickDrawsWithoutReplacement(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SetPosition(0, 0)

	ss.SpawnTick()
	visible := ss.Visible()
	if len(visible) < 1 || len(visible) > 2 {
		t.Fatalf("Expected 1-2 spawns per tick, got %d", len(visible))
	}
	if ss.PoolSize() != 3-len(visible) {
		t.Errorf("Pool did not shrink by the drawn count: %d left", ss.PoolSize())
	}

	// Drain the pool completely; no id may appear twice on the map.
	for i := 0; i < 5 && ss.PoolSize() > 0; i++ {
		ss.SpawnTick()
	}
	seen := map[string]int{}
	for _, w := range ss.Visible() {
		seen[w.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("Creature %s drawn %d times from one pool", id, n)
		}
	}
}

func TestSpawnTickRefillsFromOriginal(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SetPosition(0, 0)

	for ss.PoolSize() > 0 {
		ss.SpawnTick()
	}
	before := len(ss.Visible())

	// Next tick refills from the saved copy and keeps spawning.
	ss.SpawnTick()
	if len(ss.Visible()) <= before {
		t.Errorf("Expected refilled pool to keep spawning, visible stayed at %d", before)
	}
}

func TestSpawnTickWithoutPositionIsNoop(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SpawnTick()
	if len(ss.Visible()) != 0 {
		t.Errorf("Expected no spawns before a position fix")
	}
}

func TestMotionTickExpiryGrace(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SetPosition(0, 0)
	ss.SpawnTick()
	if len(ss.Visible()) == 0 {
		t.Fatalf("Expected at least one spawn")
	}

	// Jump the clock past every lifetime.
	ss.now = func() time.Time { return time.Now().Add(time.Hour) }

	// First tick marks expired creatures fading but keeps them visible.
	ss.MotionTick()
	visible := ss.Visible()
	if len(visible) == 0 {
		t.Fatalf("Expected fading creatures to survive the expiry tick")
	}
	for _, w := range visible {
		if !w.FadingOut {
			t.Errorf("Creature %s expired but not marked fading", w.ID)
		}
	}

	// Second tick removes them.
	ss.MotionTick()
	if n := len(ss.Visible()); n != 0 {
		t.Errorf("Expected fading creatures removed on the following tick, %d left", n)
	}
}

func TestMotionTickStepsAlongHeading(t *testing.T) {
	cfg := DefaultSpawnConfig()
	ss := newTestSpawnSystem(t, cfg)
	ss.SetPosition(0, 0)
	for ss.PoolSize() > 0 {
		ss.SpawnTick()
	}

	start := map[string][2]float64{}
	for _, w := range ss.Visible() {
		start[w.ID] = [2]float64{w.Lat, w.Lng}
	}

	for i := 0; i < 200; i++ {
		ss.MotionTick()
	}

	moved := 0
	for _, w := range ss.Visible() {
		s := start[w.ID]
		dLat, dLng := w.Lat-s[0], w.Lng-s[1]
		dist := math.Hypot(dLat, dLng)
		if dist > 0 {
			moved++
		}
		// Even a creature that moved every tick cannot outrun one step
		// per tick.
		if dist > float64(200)*cfg.StepDelta+1e-9 {
			t.Errorf("Creature %s moved %f, beyond the per-tick step bound", w.ID, dist)
		}
	}
	if moved == 0 {
		t.Errorf("Expected at least one creature to move over 200 ticks")
	}
}

func TestBeginCapture(t *testing.T) {
	cfg := DefaultSpawnConfig()
	cfg.CaptureFadeDelay = 5 * time.Millisecond
	ss := newTestSpawnSystem(t, cfg)
	ss.SetPosition(0, 0)
	ss.SpawnTick()

	target := ss.Visible()[0]
	ch, ok := ss.BeginCapture(target.ID)
	if !ok {
		t.Fatalf("Expected capture of a visible creature to start")
	}

	// The creature is marked fading immediately.
	for _, w := range ss.Visible() {
		if w.ID == target.ID && !w.FadingOut {
			t.Errorf("Captured creature not marked fading")
		}
	}

	// Starting a second capture of the same creature must fail.
	if _, again := ss.BeginCapture(target.ID); again {
		t.Errorf("Expected second capture of the same creature to be rejected")
	}

	select {
	case w := <-ch:
		if w.ID != target.ID {
			t.Errorf("Hand-off delivered wrong creature %s", w.ID)
		}
		if w.Status != creature.StatusCaught {
			t.Errorf("Hand-off snapshot not marked caught")
		}
	case <-time.After(time.Second):
		t.Fatalf("Capture hand-off never fired")
	}

	for _, w := range ss.Visible() {
		if w.ID == target.ID {
			t.Errorf("Captured creature still on the map after the fade window")
		}
	}
}

func TestBeginCaptureUnknownCreature(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	ss.SetPosition(0, 0)
	if _, ok := ss.BeginCapture("ghost"); ok {
		t.Errorf("Expected capture of an unknown creature to fail")
	}
}

func TestPlaceFallbackJitters(t *testing.T) {
	ss := newTestSpawnSystem(t, DefaultSpawnConfig())
	lat, lng := ss.PlaceFallback()
	if math.Abs(lat-FallbackLat) > 0.01 || math.Abs(lng-FallbackLng) > 0.01 {
		t.Errorf("Fallback position %f,%f too far from the anchor", lat, lng)
	}
	if ss.PoolSize() != 3 {
		t.Errorf("Expected pool built around the fallback position")
	}
}
