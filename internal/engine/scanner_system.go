package engine

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/domain/creature"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

// Scanner anchor coordinate. The scanner minigame pretends the photo
// was taken around here regardless of where the player actually is.
const (
	scanAnchorLat = 37.7749
	scanAnchorLng = -122.4194
)

// scanGrantLifetime is how long a scanned-in pokecat nominally stays;
// the value is recorded on the capture and only matters cosmetically.
const scanGrantLifetime = 30 * time.Minute

// ScanResult is what a completed scan hands back.
type ScanResult struct {
	Caught creature.Caught `json:"caught"`
}

// ScannerSystem implements the photo-scan minigame: after a fixed
// processing delay it "recognizes" a uniformly random catalog template
// and grants it straight to the capture list, no throw required.
type ScannerSystem struct {
	store    *game.Store
	eventLog *events.EventLog
	log      *logger.Logger
	delay    time.Duration

	mu        sync.Mutex
	rng       *rand.Rand
	templates []creature.Template
	now       func() time.Time
}

// NewScannerSystem creates the scanner over the given templates.
func NewScannerSystem(store *game.Store, templates []creature.Template, eventLog *events.EventLog, log *logger.Logger, delay time.Duration, seed int64) *ScannerSystem {
	return &ScannerSystem{
		store:     store,
		eventLog:  eventLog,
		log:       log,
		delay:     delay,
		rng:       rand.New(rand.NewSource(seed)),
		templates: templates,
		now:       time.Now,
	}
}

// Scan runs one scan. It blocks through the processing delay
// (cancellable via ctx), then grants a random template. The granted
// record gets a derived id of the form "<name>-<unix-millis>" so
// repeated scans of the same template stay distinguishable in the
// append-only capture list.
func (sc *ScannerSystem) Scan(ctx context.Context) (ScanResult, error) {
	if err := sleep(ctx, sc.delay); err != nil {
		return ScanResult{}, err
	}

	sc.mu.Lock()
	if len(sc.templates) == 0 {
		sc.mu.Unlock()
		return ScanResult{}, ErrCreatureGone
	}
	t := sc.templates[sc.rng.Intn(len(sc.templates))]
	lat := scanAnchorLat + (sc.rng.Float64()-0.5)*0.02
	lng := scanAnchorLng + (sc.rng.Float64()-0.5)*0.02
	now := sc.now()
	sc.mu.Unlock()

	expires := now.Add(scanGrantLifetime)
	caught := creature.Caught{
		ID:        strings.ToLower(t.Name) + "-" + now.Format("20060102150405.000"),
		Name:      t.Name,
		Lat:       lat,
		Lng:       lng,
		IconURL:   t.IconURL,
		Rarity:    t.Rarity,
		CaughtAt:  now,
		ExpiresAt: &expires,
	}

	sc.store.AddCaught(caught)
	sc.store.SetNotification("Scan complete! "+t.Name+" joined your collection.", game.NotificationSuccess)
	metrics.Get().RecordScan()
	sc.eventLog.Append(events.GameEvent{
		Type:     events.EventTypeScanCompleted,
		ActorID:  "SYSTEM",
		TargetID: t.ID,
		Payload:  caught,
	})
	sc.log.Event("SCAN_COMPLETED", "SYSTEM", t.Name)

	return ScanResult{Caught: caught}, nil
}
