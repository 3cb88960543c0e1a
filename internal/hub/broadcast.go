package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/soar/mapnav/internal/selection"
)

const (
	fullSyncInterval = 5 * time.Second
	DefaultStatusTTL = 2 * time.Second
)

// Broadcaster forwards navigation changes and status messages to the hub.
type Broadcaster struct {
	hub       *Hub
	changes   <-chan selection.Snapshot
	status    <-chan string
	statusTTL time.Duration
	syncEvery time.Duration
}

// NewBroadcaster creates a broadcaster. Periodic resyncs read the hub's
// state source, so changes dropped before reaching changes still arrive.
func NewBroadcaster(h *Hub, changes <-chan selection.Snapshot, status <-chan string, statusTTL time.Duration) *Broadcaster {
	if statusTTL <= 0 {
		statusTTL = DefaultStatusTTL
	}
	return &Broadcaster{
		hub:       h,
		changes:   changes,
		status:    status,
		statusTTL: statusTTL,
		syncEvery: fullSyncInterval,
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.syncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case state, ok := <-b.changes:
			if !ok {
				return
			}
			b.sendFull(state)

		case msg, ok := <-b.status:
			if !ok {
				return
			}
			log.Printf("Status: %s", msg)
			b.send(NewStatusMessage(b.hub.nextSeq(), msg, b.statusTTL))

		case <-ticker.C:
			// Subscriber channels drop changes when full; resync from the source
			if b.hub.state != nil {
				b.sendFull(b.hub.state())
			}
		}
	}
}

func (b *Broadcaster) sendFull(state selection.Snapshot) {
	b.send(NewFullMessage(b.hub.nextSeq(), &state))
}

func (b *Broadcaster) send(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
