package hub

import (
	"encoding/json"
	"time"

	"github.com/soar/mapnav/internal/selection"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string              `json:"type"`             // "full" or "status"
	Seq       int64               `json:"seq"`              // Sequence number for ordering
	Timestamp int64               `json:"timestamp"`        // Unix timestamp in milliseconds
	Data      *selection.Snapshot `json:"data,omitempty"`   // Navigation state for type "full"
	Status    string              `json:"status,omitempty"` // Message for type "status"
	TTL       int64               `json:"ttlMs,omitempty"`  // How long a status stays visible
}

// NewFullMessage creates a "full" message carrying the navigation state.
func NewFullMessage(seq int64, s *selection.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      s,
	}
}

// NewStatusMessage creates a "status" message.
func NewStatusMessage(seq int64, status string, ttl time.Duration) *WSMessage {
	return &WSMessage{
		Type:      "status",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Status:    status,
		TTL:       ttl.Milliseconds(),
	}
}

// ClientMessage represents a message sent from the client to the server.
//
//	{"type":"gamepad","event":{"type":"button","button":"A","state":"pressed"}}
//	{"type":"sync"}
//	{"type":"catalog","catalog":{"maps":[...]}}
type ClientMessage struct {
	Type    string          `json:"type"`
	Event   json.RawMessage `json:"event,omitempty"`
	Catalog json.RawMessage `json:"catalog,omitempty"`
}
