package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active WebSocket connections and broadcasts schedule events.
// Clients subscribe to the trips they are viewing; engine-driven changes
// (cascades, synthesized transfers, conflicts) fan out to the trip's room.
type Hub struct {
	// Registered clients (userID -> Client)
	clients map[string]*Client

	// Trip rooms (tripID -> set of userIDs)
	rooms map[string]map[string]bool

	// Inbound messages from clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Message represents a message to broadcast to a specific user
type Message struct {
	UserID string
	Data   interface{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected: %s (%d total)", client.UserID, h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; ok {
				delete(h.clients, client.UserID)
				for tripID := range h.rooms {
					delete(h.rooms[tripID], client.UserID)
				}
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Client disconnected: %s (%d remaining)", client.UserID, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message.Data)
			if err != nil {
				log.Printf("❌ Failed to marshal message: %v", err)
				continue
			}

			// Removal on a full buffer mutates the client map, so this
			// path needs the write lock.
			h.mu.Lock()
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, client.UserID)
					for tripID := range h.rooms {
						delete(h.rooms[tripID], client.UserID)
					}
					log.Printf("⚠️ Client buffer full, disconnecting: %s", message.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Subscribe adds a user to a trip's room.
func (h *Hub) Subscribe(tripID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[tripID] == nil {
		h.rooms[tripID] = make(map[string]bool)
	}
	h.rooms[tripID][userID] = true
}

// Unsubscribe removes a user from a trip's room.
func (h *Hub) Unsubscribe(tripID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[tripID], userID)
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, data interface{}) {
	h.broadcast <- &Message{
		UserID: userID,
		Data:   data,
	}
}

// BroadcastToTrip sends a message to every user subscribed to a trip.
func (h *Hub) BroadcastToTrip(tripID string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}

	for userID := range h.rooms[tripID] {
		client, ok := h.clients[userID]
		if !ok {
			continue
		}
		select {
		case client.send <- dataBytes:
		default:
			// Slow consumers are skipped, not disconnected, mid-broadcast.
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
