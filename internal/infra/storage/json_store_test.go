package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	repo, err := NewJSONSaveRepository(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.Put(ctx, KeyDirhams, []byte(`2500`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := repo.Get(ctx, KeyDirhams)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(value) != `2500` {
		t.Errorf("Round trip corrupted the value: %s", value)
	}
}

func TestJSONStoreMissingKey(t *testing.T) {
	repo, err := NewJSONSaveRepository(filepath.Join(t.TempDir(), "save.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	_, ok, err := repo.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Missing key must not be an error, got %v", err)
	}
	if ok {
		t.Errorf("Expected a miss for an absent key")
	}
}

func TestJSONStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	ctx := context.Background()

	repo, err := NewJSONSaveRepository(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := repo.Put(ctx, KeyUser, []byte(`{"id":"user-1","name":"Nadia"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	repo.Close()

	reopened, err := NewJSONSaveRepository(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, KeyUser)
	if err != nil || !ok {
		t.Fatalf("Value lost across reopen: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"id":"user-1","name":"Nadia"}` {
		t.Errorf("Value corrupted across reopen: %s", value)
	}
}

func TestJSONStoreDelete(t *testing.T) {
	repo, err := NewJSONSaveRepository(filepath.Join(t.TempDir(), "save.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	repo.Put(ctx, KeyItems, []byte(`[]`))
	if err := repo.Delete(ctx, KeyItems); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, KeyItems); ok {
		t.Errorf("Key survived deletion")
	}

	// Deleting an absent key is a no-op.
	if err := repo.Delete(ctx, "absent"); err != nil {
		t.Errorf("Deleting an absent key errored: %v", err)
	}
}

func TestJSONStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt fixture: %v", err)
	}

	repo, err := NewJSONSaveRepository(path)
	if err == nil {
		t.Errorf("Expected the corruption to be reported")
	}
	if repo == nil {
		return
	}
	defer repo.Close()

	// The store still works, starting from an empty state.
	ctx := context.Background()
	if _, ok, _ := repo.Get(ctx, KeyUser); ok {
		t.Errorf("Corrupt store produced a value")
	}
	if err := repo.Put(ctx, KeyUser, []byte(`{}`)); err != nil {
		t.Errorf("Put after corruption failed: %v", err)
	}
}

func TestOpenBackendSelectsEngine(t *testing.T) {
	dir := t.TempDir()

	jsonBackend, err := OpenBackend(EngineJSON, filepath.Join(dir, "save.json"))
	if err != nil {
		t.Fatalf("JSON backend failed: %v", err)
	}
	if jsonBackend.Events != nil {
		t.Errorf("JSON backend must not carry an event repository")
	}
	jsonBackend.Saves.Close()

	sqliteBackend, err := OpenBackend(EngineSQLite, filepath.Join(dir, "save.db"))
	if err != nil {
		t.Fatalf("SQLite backend failed: %v", err)
	}
	if sqliteBackend.Events == nil {
		t.Errorf("SQLite backend must carry an event repository")
	}
	sqliteBackend.Saves.Close()

	if _, err := OpenBackend("parquet", "x"); err == nil {
		t.Errorf("Expected an error for an unknown engine")
	}
}

// TestOpenBackendCorruptJSONIsDegraded checks a corrupt save file still
// yields a usable backend: the error is reported, the state starts
// empty, and the server boots with defaults instead of dying.
func TestOpenBackendCorruptJSONIsDegraded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte(`broken`), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt fixture: %v", err)
	}

	backend, err := OpenBackend(EngineJSON, path)
	if err == nil {
		t.Errorf("Expected the corruption to be reported")
	}
	if backend == nil || backend.Saves == nil {
		t.Fatalf("Corrupt save file produced no usable backend")
	}
	defer backend.Saves.Close()

	ctx := context.Background()
	if _, ok, _ := backend.Saves.Get(ctx, KeyDirhams); ok {
		t.Errorf("Degraded backend produced a value")
	}
	if err := backend.Saves.Put(ctx, KeyDirhams, []byte(`2500`)); err != nil {
		t.Errorf("Put on the degraded backend failed: %v", err)
	}
}
