package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/pokecat-game/pokecat/server/internal/catalog"
	"github.com/pokecat-game/pokecat/server/internal/config"
	"github.com/pokecat-game/pokecat/server/internal/domain/player"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
)

const testCatalogJSON = `[
	{"id": "mochi", "name": "Mochi", "iconUrl": "/sprites/mochi.svg", "rarity": "common"},
	{"id": "salem", "name": "Salem", "iconUrl": "/sprites/salem.svg", "rarity": "rare"}
]`

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("Failed to parse test catalog: %v", err)
	}
	store := game.NewStore(nil, logger.NewLogger(), 0)
	el := events.NewEventLog(nil)
	// Zero pacing throughout: tests must not sleep through animations.
	return NewService(store, cat, config.GameConfig{}, el, logger.NewLogger(), 7)
}

func TestStartSessionMintsIdentityOnce(t *testing.T) {
	svc := newTestService(t)

	first := svc.StartSession("Nadia")
	if first.Name != "Nadia" || !strings.HasPrefix(first.ID, "user-") {
		t.Fatalf("Unexpected identity %+v", first)
	}

	// A second start resumes, it does not mint a new identity.
	second := svc.StartSession("Other")
	if second.ID != first.ID {
		t.Errorf("Expected resumed identity %s, got %s", first.ID, second.ID)
	}

	if svc.Events().GetByType(events.EventTypeSessionStarted)[0].ActorID != first.ID {
		t.Errorf("Session start not recorded in the event log")
	}
}

func TestResetSessionRestoresFirstRunState(t *testing.T) {
	svc := newTestService(t)
	svc.StartSession("Nadia")
	if _, err := svc.Purchase("grilled-fish", 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	svc.ResetSession()

	snap := svc.Store().Snapshot()
	if snap.User != nil || len(snap.Items) != 0 || snap.Dirhams != player.StartingDirhams {
		t.Errorf("Reset left state behind: %+v", snap)
	}
}

func TestPurchaseRejectedWhenUnaffordable(t *testing.T) {
	svc := newTestService(t)
	store := svc.Store()
	// Drain the balance down to 250.
	store.SpendDirhams(player.StartingDirhams - 250)

	// 3 x 100 = 300 > 250: whole purchase rejected, nothing changes.
	if _, err := svc.Purchase("grilled-fish", 3); err != ErrInsufficientFunds {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if store.Dirhams() != 250 {
		t.Errorf("Rejected purchase moved the balance to %d", store.Dirhams())
	}
	if _, owned := store.Item("grilled-fish"); owned {
		t.Errorf("Rejected purchase granted items")
	}
	if n := store.Notification(); n == nil || n.Type != game.NotificationError {
		t.Errorf("Expected an error notification, got %+v", n)
	}
}

func TestPurchaseDebitsAndGrants(t *testing.T) {
	svc := newTestService(t)
	store := svc.Store()
	store.SpendDirhams(player.StartingDirhams - 250)

	// 2 x 100 = 200 <= 250.
	owned, err := svc.Purchase("grilled-fish", 2)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if owned.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", owned.Quantity)
	}
	if store.Dirhams() != 50 {
		t.Errorf("Expected balance 50, got %d", store.Dirhams())
	}
}

func TestPurchaseUnknownItem(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Purchase("golden-lasso", 1); err != ErrNoSuchItem {
		t.Errorf("Expected ErrNoSuchItem, got %v", err)
	}
}

func TestThrowRequiresOwnedItem(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Throw(context.Background(), "whatever", "meow-net"); err != ErrItemNotOwned {
		t.Errorf("Expected ErrItemNotOwned, got %v", err)
	}
}

func TestCaptureFlowEndToEnd(t *testing.T) {
	svc := newTestService(t)
	svc.StartSession("Nadia")
	if _, err := svc.Purchase("auto-cage", 1); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	svc.UpdatePosition(1, 1)
	svc.spawns.SpawnTick()
	visible := svc.Visible()
	if len(visible) == 0 {
		t.Fatalf("Expected spawns after a position fix")
	}

	ctx := context.Background()
	enc, err := svc.StartCapture(ctx, visible[0].ID)
	if err != nil {
		t.Fatalf("StartCapture failed: %v", err)
	}

	// Capturing the same creature twice must fail.
	if _, err := svc.StartCapture(ctx, visible[0].ID); err != ErrCreatureGone {
		t.Errorf("Expected ErrCreatureGone on double capture, got %v", err)
	}

	if err := svc.RunAway(enc.ID); err != nil {
		t.Errorf("RunAway failed: %v", err)
	}
	if err := svc.RunAway(enc.ID); err != ErrEncounterGone {
		t.Errorf("Expected ErrEncounterGone on double run-away, got %v", err)
	}
}

func TestScanGrantsACatalogCreature(t *testing.T) {
	svc := newTestService(t)
	svc.StartSession("Nadia")

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.Caught.Name != "Mochi" && result.Caught.Name != "Salem" {
		t.Errorf("Scan granted a creature outside the catalog: %+v", result.Caught)
	}
	if !strings.HasPrefix(result.Caught.ID, strings.ToLower(result.Caught.Name)+"-") {
		t.Errorf("Scan grant id %q lacks the derived prefix", result.Caught.ID)
	}
	if result.Caught.ExpiresAt == nil {
		t.Errorf("Scan grant missing its nominal expiry")
	}

	list := svc.Store().Snapshot().CaughtList
	if len(list) != 1 {
		t.Errorf("Expected the scan grant in the capture list, got %d records", len(list))
	}
}
