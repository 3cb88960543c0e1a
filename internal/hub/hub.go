// Package hub fans navigation state out to WebSocket clients and feeds
// gamepad events sent by clients back into the session.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lxzan/gws"

	"github.com/soar/mapnav/internal/catalog"
	"github.com/soar/mapnav/internal/navigation"
	"github.com/soar/mapnav/internal/selection"
)

// EventSink accepts events decoded from clients.
type EventSink func(ev navigation.Event) bool

// CatalogSink accepts a validated catalog uploaded by a client.
type CatalogSink func(c *catalog.Catalog) error

// Hub manages WebSocket clients and broadcasts messages. It implements
// gws.Event for the connections it serves.
type Hub struct {
	gws.BuiltinEventHandler

	state   func() selection.Snapshot
	sink    EventSink
	catalog CatalogSink

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	seq        atomic.Int64
}

// NewHub creates a hub. state provides the snapshot sent to new clients and
// on request; sink receives the events clients submit.
func NewHub(state func() selection.Snapshot, sink EventSink) *Hub {
	return &Hub{
		state:      state,
		sink:       sink,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnCatalog enables catalog uploads. Call it before Run.
func (h *Hub) OnCatalog(fn CatalogSink) {
	h.catalog = fn
}

// Register adds a new client to the hub and sends it the current state.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) nextSeq() int64 {
	return h.seq.Add(1)
}

// Broadcast sends a message to every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Client send buffer full, disconnect
			go h.Unregister(client)
		}
	}
}

// SendState sends the current snapshot to one client.
func (h *Hub) SendState(c *Client) {
	if h.state == nil {
		return
	}
	s := h.state()
	data, err := json.Marshal(NewFullMessage(h.nextSeq(), &s))
	if err != nil {
		log.Printf("Error marshaling state: %v", err)
		return
	}
	h.sendTo(c, data)
}

func (h *Hub) sendTo(c *Client, data []byte) {
	// send is closed under the write lock once the client is unregistered
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Run starts the hub's main loop. On return every client's send channel
// is closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		close(h.done)
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client connected (total: %d)", n)
			h.SendState(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client disconnected (total: %d)", n)
		}
	}
}

// OnClose implements gws.Event.
func (h *Hub) OnClose(socket *gws.Conn, err error) {
	if c, ok := clientOf(socket); ok {
		h.Unregister(c)
	}
}

// OnMessage implements gws.Event.
func (h *Hub) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	c, ok := clientOf(socket)
	if !ok {
		return
	}
	h.handleClientMessage(c, message.Bytes())
}

func (h *Hub) handleClientMessage(c *Client, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error parsing client message: %v", err)
		return
	}

	switch msg.Type {
	case "gamepad":
		// Malformed events decode to nil and are dropped by the session
		if h.sink != nil {
			h.sink(navigation.DecodeEvent(msg.Event))
		}
	case "sync":
		h.SendState(c)
	case "catalog":
		h.SendStatus(c, h.updateCatalog(msg.Catalog))
	default:
		log.Printf("Unknown client message type: %q", msg.Type)
	}
}

func (h *Hub) updateCatalog(raw json.RawMessage) string {
	if h.catalog == nil {
		return "Catalog updates are disabled"
	}
	c, err := catalog.Parse("json", bytes.NewReader(raw))
	if err != nil {
		log.Printf("Rejected catalog upload: %v", err)
		return "Catalog rejected: " + err.Error()
	}
	if err := h.catalog(c); err != nil {
		log.Printf("Catalog update failed: %v", err)
		return "Catalog update failed"
	}
	log.Printf("Catalog updated (%d maps)", len(c.Maps))
	return "Catalog updated"
}

// SendStatus sends a status message to one client.
func (h *Hub) SendStatus(c *Client, status string) {
	data, err := json.Marshal(NewStatusMessage(h.nextSeq(), status, DefaultStatusTTL))
	if err != nil {
		log.Printf("Error marshaling status: %v", err)
		return
	}
	h.sendTo(c, data)
}
