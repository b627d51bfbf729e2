package models

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// ClientMessage represents a message from a chat-style client over the socket
type ClientMessage struct {
	Type      string `json:"type"` // "search", "generate", or "ping"
	RequestID string `json:"request_id,omitempty"`

	// Search fields
	Query      string `json:"query,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Limit      *int   `json:"limit,omitempty"`

	// Generate fields
	PatternID     string `json:"pattern_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Input         string `json:"input,omitempty"`
	ModuleType    string `json:"module_type,omitempty"`
	EffectVersion string `json:"effect_version,omitempty"`
}

// ServerMessage represents a message sent to the client
type ServerMessage struct {
	Type      string      `json:"type"` // "search_result", "snippet", "catalog_refreshed", "pong", "error"
	RequestID string      `json:"request_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
}

// ClientConnection tracks a single WebSocket client
type ClientConnection struct {
	ConnID      string
	Conn        *websocket.Conn
	ConnectedAt time.Time

	// Serializes writes; the underlying conn allows one concurrent writer
	WriteMu sync.Mutex
}

// Send writes a JSON message to the client, serialized per connection
func (c *ClientConnection) Send(msg ServerMessage) error {
	c.WriteMu.Lock()
	defer c.WriteMu.Unlock()
	return c.Conn.WriteJSON(msg)
}
