// Package relay delivers confirmed markers to the outside world: a line of
// JSON over TCP to the in-game listener and the coordinates on the
// clipboard.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/soar/mapnav/internal/catalog"
)

const DefaultTimeout = 100 * time.Millisecond

// ErrNotRunning means nothing accepted the connection.
var ErrNotRunning = errors.New("coordinate listener is not running")

type coordPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label *string `json:"label"`
}

// Pusher writes coordinates to a TCP listener, one JSON object per line.
type Pusher struct {
	Addr    string
	Timeout time.Duration
}

// Push sends one marker. A listener that is not running yields
// ErrNotRunning.
func (p *Pusher) Push(ctx context.Context, m catalog.Marker) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	payload := coordPayload{X: m.X, Y: m.Y}
	if m.Label != "" {
		payload.Label = &m.Label
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode coordinates: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write coordinates: %w", err)
	}
	return nil
}

// Clipboard is the subset of the system clipboard the activator needs.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// FormatCoords renders a marker the way it is copied.
func FormatCoords(m catalog.Marker) string {
	return fmt.Sprintf("%g, %g", m.X, m.Y)
}

// Activator pushes and copies confirmed markers in the background and
// reports the outcome through Status.
type Activator struct {
	Pusher    *Pusher
	Clipboard Clipboard
	Status    func(message string)

	wg sync.WaitGroup
}

// Activate implements selection.Activator. It does not block.
func (a *Activator) Activate(mapName string, m catalog.Marker) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.status(a.deliver(m))
	}()
}

// Wait blocks until all pending activations have finished.
func (a *Activator) Wait() {
	a.wg.Wait()
}

func (a *Activator) deliver(m catalog.Marker) string {
	if a.Pusher != nil {
		err := a.Pusher.Push(context.Background(), m)
		switch {
		case errors.Is(err, ErrNotRunning):
			// The listener is optional
		case err != nil:
			log.Printf("Coordinate push failed: %v", err)
		}
	}

	if a.Clipboard == nil {
		return fmt.Sprintf("Selected %s (%s)", m.Label, FormatCoords(m))
	}
	if err := a.Clipboard.WriteAll(FormatCoords(m)); err != nil {
		log.Printf("Clipboard write failed: %v", err)
		return fmt.Sprintf("Could not copy %s", m.Label)
	}
	return fmt.Sprintf("Copied %s (%s)", m.Label, FormatCoords(m))
}

func (a *Activator) status(msg string) {
	if a.Status != nil {
		a.Status(msg)
	}
}
