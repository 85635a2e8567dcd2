// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// The save state mirrors the original browser game's local storage: a
// handful of well-known keys, each holding one JSON-serialized value.
const (
	KeyUser       = "user"
	KeyCaughtList = "caughtList"
	KeyItems      = "items"
	KeyDirhams    = "dirhams"
)

// SaveRepository is the durable key-value store behind the game state.
// A missing key is not an error; callers substitute their documented
// default (no user, empty capture list, empty inventory, starting
// balance).
type SaveRepository interface {
	// Put stores the JSON-serialized value under key, replacing any
	// previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes a key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// GameEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event-ledger persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetByActorID retrieves all events performed by an actor.
	GetByActorID(ctx context.Context, actorID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]GameEvent, error)
}
