package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pokecat-game/pokecat/server/internal/engine"
	"github.com/pokecat-game/pokecat/server/internal/events"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
)

// Message kinds pushed to the frontend. Every frame on the wire is a
// ServerMessage envelope.
const (
	MessageTypeEvent    = "event"    // one GameEvent
	MessageTypeMap      = "map"      // full visible creature set
	MessageTypeSnapshot = "snapshot" // full save snapshot
)

// ServerMessage is the wire envelope for hub pushes.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Service
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub over the game engine.
func NewHub(eng *engine.Service, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes an envelope and fans it out to every client.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	raw, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to serialize %s message for WebSocket broadcast: %v", msgType, err)
		return
	}
	h.broadcast <- raw
}

// BroadcastEvent pushes one GameEvent to all connected clients.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	h.Broadcast(MessageTypeEvent, event)
}

// BroadcastSnapshot pushes a save snapshot. Wired into the store's
// listener set so every mutation reaches the frontend.
func (h *Hub) BroadcastSnapshot(snap game.Snapshot) {
	h.Broadcast(MessageTypeSnapshot, snap)
}

// StartEventPoller spawns a goroutine that polls the EventLog and pushes
// new events to the Hub. The hub runs independently from the engine's
// loops while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				if len(all) > lastProcessed {
					for _, event := range all[lastProcessed:] {
						h.BroadcastEvent(event)
					}
					lastProcessed = len(all)
				}
			}
		}
	}()
}

// StartMapPusher spawns a goroutine that pushes the visible creature
// set on an interval. The map scene interpolates between frames, so the
// push cadence can stay well below the motion tick.
func (h *Hub) StartMapPusher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.mu.Lock()
				n := len(h.clients)
				h.mu.Unlock()
				if n == 0 {
					continue
				}
				h.Broadcast(MessageTypeMap, h.engine.Visible())
			}
		}
	}()
}
