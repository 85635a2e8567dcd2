package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pokecat-game/pokecat/server/internal/network"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game API already runs behind a permissive CORS policy; the
	// upgrade mirrors it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles GET /ws: upgrades to WebSocket and attaches the
// client to the hub.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := network.NewClient(h.hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
