package luacmd

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/soar/mapnav/internal/navigation"
)

const (
	ScanButton     = navigation.ButtonX
	TeleportButton = navigation.ButtonY
)

// Commander is the subset of Client that Actions drives.
type Commander interface {
	Scan(ctx context.Context) (string, error)
	Teleport(ctx context.Context, name string) (string, error)
}

// Handler consumes events after Actions has looked at them.
type Handler interface {
	HandleEvent(ev navigation.Event)
}

// Actions binds ScanButton and TeleportButton to save point commands and
// passes every event on to Next. Commands run in the background, one at a
// time, and report through Status.
type Actions struct {
	Commands Commander
	Next     Handler

	// Target returns the save point to teleport to.
	Target func() (string, bool)
	Status func(message string)

	busy atomic.Bool
	wg   sync.WaitGroup
}

// HandleEvent implements session.Handler.
func (a *Actions) HandleEvent(ev navigation.Event) {
	if e, ok := ev.(navigation.ButtonEvent); ok && e.State == navigation.Pressed {
		switch e.Button {
		case ScanButton:
			a.start(a.scan)
		case TeleportButton:
			a.teleport()
		}
	}
	if a.Next != nil {
		a.Next.HandleEvent(ev)
	}
}

// Wait blocks until the running command, if any, has finished.
func (a *Actions) Wait() {
	a.wg.Wait()
}

func (a *Actions) teleport() {
	if a.Commands == nil {
		return
	}
	var name string
	ok := false
	if a.Target != nil {
		name, ok = a.Target()
	}
	if !ok || name == "" {
		a.status("No save point selected")
		return
	}
	a.start(func() string { return a.teleportTo(name) })
}

func (a *Actions) start(run func() string) {
	if a.Commands == nil {
		return
	}
	if !a.busy.CompareAndSwap(false, true) {
		a.status("Save point command already running")
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		a.status(run())
	}()
}

func (a *Actions) scan() string {
	resp, err := a.Commands.Scan(context.Background())
	if err != nil {
		log.Printf("Save point scan failed: %v", err)
		return "Save point scan failed"
	}
	return fmt.Sprintf("Save points: %s", resp)
}

func (a *Actions) teleportTo(name string) string {
	resp, err := a.Commands.Teleport(context.Background(), name)
	if err != nil {
		log.Printf("Teleport to %s failed: %v", name, err)
		return fmt.Sprintf("Teleport to %s failed", name)
	}
	if resp == "" {
		return fmt.Sprintf("Teleported to %s", name)
	}
	return fmt.Sprintf("Teleported to %s: %s", name, resp)
}

func (a *Actions) status(msg string) {
	if a.Status != nil {
		a.Status(msg)
	}
}
