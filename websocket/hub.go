package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub maintains the set of active clients and tracks which family channels
// each one has joined
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Family channels (familyID -> clients)
	families map[string]map[*Client]bool

	// Guards clients and families. Broadcasts run on request goroutines and
	// may evict stalled clients, so they need the write lock too.
	mu sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		families:   make(map[string]map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			// Remove the client from all family channels and let the
			// remaining members see the updated presence count
			var left []string
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				for familyID, clients := range h.families {
					if _, ok := clients[client]; ok {
						delete(h.families[familyID], client)
						left = append(left, familyID)
						if len(h.families[familyID]) == 0 {
							delete(h.families, familyID)
						}
					}
				}
			}
			h.mu.Unlock()

			for _, familyID := range left {
				h.broadcastPresence(familyID)
			}
		}
	}
}

// joinFamily adds a client to a family channel
func (h *Hub) joinFamily(client *Client, familyID string) {
	h.mu.Lock()
	if _, ok := h.families[familyID]; !ok {
		h.families[familyID] = make(map[*Client]bool)
	}
	h.families[familyID][client] = true
	h.mu.Unlock()

	h.broadcastPresence(familyID)
}

// leaveFamily removes a client from a family channel
func (h *Hub) leaveFamily(client *Client, familyID string) {
	h.mu.Lock()
	if _, ok := h.families[familyID]; ok {
		delete(h.families[familyID], client)
		if len(h.families[familyID]) == 0 {
			delete(h.families, familyID)
		}
	}
	h.mu.Unlock()

	h.broadcastPresence(familyID)
}

// presenceCount returns the number of connected clients in a family channel
func (h *Hub) presenceCount(familyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.families[familyID])
}

// broadcastPresence tells everyone in the channel how many sockets are online
func (h *Hub) broadcastPresence(familyID string) {
	payload := map[string]interface{}{
		"family_id": familyID,
		"count":     h.presenceCount(familyID),
	}
	msg, err := json.Marshal(Message{Type: "presence", Payload: payload})
	if err != nil {
		slog.Error("failed to marshal presence message", "error", err)
		return
	}
	h.broadcastToFamily(familyID, msg)
}

// broadcastToFamily sends a message to all clients in a family channel,
// evicting any client whose send buffer is full
func (h *Hub) broadcastToFamily(familyID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.families[familyID]; ok {
		for client := range clients {
			select {
			case client.send <- message:
			default:
				close(client.send)
				delete(clients, client)
				delete(h.clients, client)
			}
		}
	}
}

// BroadcastToFamily sends an event to all clients in a family channel
func BroadcastToFamily(familyID string, msgType string, payload interface{}) {
	msg := Message{
		Type:    msgType,
		Payload: payload,
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal broadcast message", "type", msgType, "error", err)
		return
	}

	hub.broadcastToFamily(familyID, msgBytes)
}

// Global hub instance
var hub *Hub

// InitHub initializes the global hub
func InitHub() {
	hub = NewHub()
	go hub.Run()
}
