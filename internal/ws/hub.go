package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// client wraps a connection with a write lock: press broadcasts and
// caller-scoped replies come from different goroutines, and gorilla
// allows only one concurrent writer per connection.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub is a flat registry of live connections keyed by connection id.
// Delivery is fire-and-forget: a failed write drops that client only.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

func (h *Hub) Add(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[connID] = &client{conn: conn}
	log.Printf("ws: client %s connected (total: %d)", connID, len(h.clients))
}

func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		c.conn.Close()
		log.Printf("ws: client %s disconnected (total: %d)", connID, len(h.clients))
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo delivers a message to one connection. A missing id is not an
// error: the client may have disconnected while its event was in flight.
func (h *Hub) SendTo(connID string, message Message) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	if err := c.write(data); err != nil {
		log.Printf("ws: write error to %s: %v", connID, err)
		h.Remove(connID)
	}
}

func (h *Hub) BroadcastAll(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(data); err != nil {
			log.Printf("ws: write error to %s: %v", id, err)
			h.Remove(id)
		}
	}
}
