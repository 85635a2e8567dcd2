package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteSaveRepository(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("Failed to init SQLite: %v", err)
	}
	defer db.Close()

	repo := NewSQLiteSaveRepository(db)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, KeyDirhams); err != nil || ok {
		t.Fatalf("Expected a clean miss on an empty table: ok=%v err=%v", ok, err)
	}

	if err := repo.Put(ctx, KeyDirhams, []byte(`2500`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Upsert: the second write replaces, it does not duplicate.
	if err := repo.Put(ctx, KeyDirhams, []byte(`1800`)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	value, ok, err := repo.Get(ctx, KeyDirhams)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(value) != `1800` {
		t.Errorf("Expected the upserted value, got %s", value)
	}

	if err := repo.Delete(ctx, KeyDirhams); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, KeyDirhams); ok {
		t.Errorf("Key survived deletion")
	}
}

func TestSQLiteEventRepository(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Failed to init SQLite: %v", err)
	}
	defer db.Close()

	repo := NewSQLiteEventRepository(db)
	ctx := context.Background()

	events := []GameEvent{
		{ID: "e1", Timestamp: time.Now(), EventType: "CREATURE_SPAWNED", ActorID: "SYSTEM", TargetID: "mochi"},
		{ID: "e2", Timestamp: time.Now(), EventType: "CREATURE_CAUGHT", ActorID: "user-1", TargetID: "mochi",
			Payload: map[string]interface{}{"item_id": "meow-net"}},
		{ID: "e3", Timestamp: time.Now(), EventType: "CREATURE_SPAWNED", ActorID: "SYSTEM", TargetID: "salem"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append %s failed: %v", e.ID, err)
		}
	}

	spawned, err := repo.GetByEventType(ctx, "CREATURE_SPAWNED")
	if err != nil {
		t.Fatalf("GetByEventType failed: %v", err)
	}
	if len(spawned) != 2 {
		t.Errorf("Expected 2 spawn events, got %d", len(spawned))
	}

	byActor, err := repo.GetByActorID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByActorID failed: %v", err)
	}
	if len(byActor) != 1 || byActor[0].ID != "e2" {
		t.Fatalf("Expected only e2 for user-1, got %+v", byActor)
	}
	if byActor[0].Payload["item_id"] != "meow-net" {
		t.Errorf("Payload lost in the round trip: %+v", byActor[0].Payload)
	}
}
