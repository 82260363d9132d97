package chat

import (
	"log"

	"github.com/Srujan253/Gupshup/internal/presence"
)

// Hub owns the connection lifecycle: it registers handshaken clients in the
// presence registry, tears them down on disconnect, and tells everyone who
// is online after each change.
type Hub struct {
	registry *presence.Registry

	register   chan *Client
	unregister chan *Client
}

func NewHub(registry *presence.Registry) *Hub {
	return &Hub{
		registry:   registry,
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registry.Register(client)
			h.broadcastOnline()
		case client := <-h.unregister:
			h.registry.Unregister(client.UserID(), client.ConnID())
			client.shutdown()
			h.broadcastOnline()
		}
	}
}

// broadcastOnline pushes the current online-user snapshot to every open
// connection. Push failures only cost that one peer its update; the next
// presence change resends the full snapshot anyway.
func (h *Hub) broadcastOnline() {
	snapshot := h.registry.Snapshot()
	for _, handle := range h.registry.All() {
		if err := handle.Emit(EventOnlineUsersChanged, snapshot); err != nil {
			log.Printf("[hub] presence push to user %d conn %s failed: %v",
				handle.UserID(), handle.ConnID(), err)
		}
	}
}
