package network

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pokecat-game/pokecat/server/internal/engine"
	"github.com/pokecat-game/pokecat/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"` // "GEO_UPDATE", "START_CAPTURE", "THROW_ITEM", ...
	Payload json.RawMessage `json:"payload"`
}

// Client holds one live WebSocket connection. Keeps a Hub ref to allow
// unregister, and tracks the client's open encounter so throw actions
// need not repeat the id.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// encounterID is touched from the async capture hand-off as well as
	// the read pump.
	encMu       sync.Mutex
	encounterID string
}

func (c *Client) setEncounter(id string) {
	c.encMu.Lock()
	c.encounterID = id
	c.encMu.Unlock()
}

func (c *Client) currentEncounter() string {
	c.encMu.Lock()
	defer c.encMu.Unlock()
	return c.encounterID
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
	metrics.Get().RecordWSConnect()
}

// reply sends a message only to this client.
func (c *Client) reply(msgType string, payload interface{}) {
	raw, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		c.hub.logger.Error("Failed to serialize %s reply: %v", msgType, err)
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		metrics.Get().RecordWSDisconnect()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage()

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	eng := c.hub.engine

	switch action.Type {
	case "START_SESSION":
		var parsed struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse START_SESSION payload")
			return
		}
		id := eng.StartSession(parsed.Name)
		c.reply("session", id)

	case "GEO_UPDATE":
		var parsed struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse GEO_UPDATE payload")
			return
		}
		eng.UpdatePosition(parsed.Lat, parsed.Lng)

	case "USE_FALLBACK_POSITION":
		lat, lng := eng.UseFallbackPosition()
		c.reply("position", map[string]float64{"lat": lat, "lng": lng})

	case "START_CAPTURE":
		var parsed struct {
			CreatureID string `json:"creature_id"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse START_CAPTURE payload")
			return
		}
		// The fade-out and the delayed hand-off run off this goroutine;
		// the read pump must stay responsive.
		go func() {
			enc, err := eng.StartCapture(context.Background(), parsed.CreatureID)
			if err != nil {
				c.reply("capture_failed", err.Error())
				return
			}
			c.setEncounter(enc.ID)
			c.reply("encounter", map[string]interface{}{
				"encounter_id": enc.ID,
				"creature":     enc.Creature,
			})
		}()

	case "THROW_ITEM":
		var parsed struct {
			EncounterID string `json:"encounter_id"`
			ItemID      string `json:"item_id"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse THROW_ITEM payload")
			return
		}
		encID := parsed.EncounterID
		if encID == "" {
			encID = c.currentEncounter()
		}
		go func() {
			result, err := eng.Throw(context.Background(), encID, parsed.ItemID)
			if err != nil {
				if !errors.Is(err, engine.ErrEncounterGone) {
					c.reply("throw_failed", err.Error())
				}
				return
			}
			if result.EncounterOver {
				c.setEncounter("")
			}
			c.reply("throw_result", result)
		}()

	case "RUN_AWAY":
		var parsed struct {
			EncounterID string `json:"encounter_id"`
		}
		if err := json.Unmarshal(action.Payload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse RUN_AWAY payload")
			return
		}
		encID := parsed.EncounterID
		if encID == "" {
			encID = c.currentEncounter()
		}
		if err := eng.RunAway(encID); err == nil {
			c.setEncounter("")
			c.reply("fled", map[string]int64{
				"exit_delay_ms": eng.ExitDelay().Milliseconds(),
			})
		}

	case "SCAN":
		go func() {
			result, err := eng.Scan(context.Background())
			if err != nil {
				c.reply("scan_failed", err.Error())
				return
			}
			c.reply("scan_result", result)
		}()

	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
