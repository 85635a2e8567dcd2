package events

import (
	"sync"
	"testing"
	"time"
)

type recordingPersister struct {
	mu     sync.Mutex
	events []GameEvent
}

func (p *recordingPersister) Append(event GameEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	el := NewEventLog(nil)

	el.Append(GameEvent{Type: EventTypeCreatureSpawned, ActorID: "SYSTEM"})

	history := el.Replay()
	if len(history) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(history))
	}
	if history[0].ID == "" {
		t.Errorf("Append did not assign an id")
	}
	if history[0].Timestamp.IsZero() {
		t.Errorf("Append did not assign a timestamp")
	}
}

func TestReplayReturnsACopy(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(GameEvent{Type: EventTypeCreatureSpawned, ActorID: "SYSTEM"})

	history := el.Replay()
	history[0].ActorID = "tampered"

	if el.Replay()[0].ActorID != "SYSTEM" {
		t.Errorf("Replay exposed the internal slice")
	}
}

func TestFilters(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(GameEvent{Type: EventTypeCreatureSpawned, ActorID: "SYSTEM"})
	el.Append(GameEvent{Type: EventTypeCreatureCaught, ActorID: "user-1"})
	el.Append(GameEvent{Type: EventTypeItemPurchased, ActorID: "user-1"})

	if got := el.GetByActor("user-1"); len(got) != 2 {
		t.Errorf("Expected 2 events for user-1, got %d", len(got))
	}
	if got := el.GetByType(EventTypeCreatureSpawned); len(got) != 1 {
		t.Errorf("Expected 1 spawn event, got %d", len(got))
	}
	if el.Len() != 3 {
		t.Errorf("Expected 3 events total, got %d", el.Len())
	}
}

func TestWriteThroughPersister(t *testing.T) {
	p := &recordingPersister{}
	el := NewEventLog(p)

	el.Append(GameEvent{Type: EventTypeScanCompleted, ActorID: "SYSTEM"})

	// The write-through is asynchronous.
	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		n := len(p.events)
		p.mu.Unlock()
		if n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Persister never saw the event")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
