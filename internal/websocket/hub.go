package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is a real-time notification broadcast to every connected client:
// feed messages, sabotage reports, and sweep completions.
type Event struct {
	Type   string         `json:"type"`
	TeamID string         `json:"team_id,omitempty"`
	Body   string         `json:"body,omitempty"`
	SentAt time.Time      `json:"sent_at,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

const (
	EventMessagePosted    = "message_posted"
	EventSabotageReported = "sabotage_reported"
	EventSweepCompleted   = "sweep_completed"
)

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to all connected clients.
func (h *Hub) Broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop event to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
