package ws

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// Conn is the subset of a websocket connection the hub writes through.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client pairs a connection with a write mutex. gorilla/websocket allows at
// most one concurrent writer per connection.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Hub is the live membership of one broadcast channel. Sends are
// best-effort per peer: a failed write is logged and skipped, membership
// changes interleave safely with in-flight broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

func (h *Hub) Register(connID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = &client{conn: conn}
	log.Debug().Str("conn", connID).Int("total", len(h.clients)).Msg("connection registered")
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
	log.Debug().Str("conn", connID).Int("total", len(h.clients)).Msg("connection unregistered")
}

// snapshot copies membership so sends never run under the hub lock.
func (h *Hub) snapshot() map[string]*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		out[id] = c
	}
	return out
}

// Broadcast sends the message to every registered connection.
func (h *Hub) Broadcast(msg internal.ChatMessage) {
	for id, c := range h.snapshot() {
		if err := c.writeJSON(msg); err != nil {
			log.Warn().Err(err).Str("conn", id).Str("type", msg.Type).Msg("broadcast send failed")
		}
	}
}

// BroadcastExcept sends the message to everyone but the given connection.
func (h *Hub) BroadcastExcept(connID string, msg internal.ChatMessage) {
	for id, c := range h.snapshot() {
		if id == connID {
			continue
		}
		if err := c.writeJSON(msg); err != nil {
			log.Warn().Err(err).Str("conn", id).Str("type", msg.Type).Msg("broadcast send failed")
		}
	}
}

// SendTo sends the message to a single connection, if still registered.
func (h *Hub) SendTo(connID string, msg internal.ChatMessage) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("send to closed connection skipped")
		return
	}
	if err := c.writeJSON(msg); err != nil {
		log.Warn().Err(err).Str("conn", connID).Str("type", msg.Type).Msg("send failed")
	}
}

// BroadcastRawExcept relays a raw frame verbatim to everyone but the
// sender. Used by the drawing channel.
func (h *Hub) BroadcastRawExcept(connID string, messageType int, data []byte) {
	for id, c := range h.snapshot() {
		if id == connID {
			continue
		}
		if err := c.writeMessage(messageType, data); err != nil {
			log.Warn().Err(err).Str("conn", id).Msg("relay send failed")
		}
	}
}
