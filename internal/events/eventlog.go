// Package events provides the append-only game event log. Everything
// noteworthy that happens in a hunt session lands here; the WebSocket
// hub and the persistence layer both feed off of it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeSessionStarted  EventType = "SESSION_STARTED"
	EventTypeSessionReset    EventType = "SESSION_RESET"
	EventTypeCreatureSpawned EventType = "CREATURE_SPAWNED"
	EventTypeCreatureExpired EventType = "CREATURE_EXPIRED"
	EventTypeCaptureStarted  EventType = "CAPTURE_STARTED"
	EventTypeThrowResolved   EventType = "THROW_RESOLVED"
	EventTypeCreatureCaught  EventType = "CREATURE_CAUGHT"
	EventTypeItemPurchased   EventType = "ITEM_PURCHASED"
	EventTypeItemConsumed    EventType = "ITEM_CONSUMED"
	EventTypeScanCompleted   EventType = "SCAN_COMPLETED"
	EventTypeNotification    EventType = "NOTIFICATION"
)

// GameEvent represents an immutable record of something that happened.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`            // who performed the action (player id or "SYSTEM")
	TargetID  string      `json:"target_id,omitempty"` // what was affected (creature/item id)
	Payload   interface{} `json:"payload,omitempty"`   // event-specific data
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events, optionally
// written through to persistent storage.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write-through happens off the caller's goroutine; the in-memory
		// log is the authoritative ordering.
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of logged events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
