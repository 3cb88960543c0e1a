// Package session serializes every event source into one interpreter.
package session

import (
	"context"
	"log"
	"math"

	"github.com/soar/mapnav/internal/navigation"
)

const queueSize = 128

// Handler consumes events one at a time.
type Handler interface {
	HandleEvent(ev navigation.Event)
}

// Session owns the queue in front of a Handler. Submit may be called from
// any goroutine; the handler only ever runs on the Run goroutine.
type Session struct {
	handler Handler
	queue   chan navigation.Event
	done    chan struct{}
}

func New(h Handler) *Session {
	return &Session{
		handler: h,
		queue:   make(chan navigation.Event, queueSize),
		done:    make(chan struct{}),
	}
}

// Submit enqueues ev. It reports false when the queue is full and the event
// was dropped. Stick-centered readings are never dropped: they wait for
// room until Run has returned, since losing one leaves the axis latched.
func (s *Session) Submit(ev navigation.Event) bool {
	if ev == nil {
		return true
	}
	select {
	case s.queue <- ev:
		return true
	default:
	}
	if isNeutral(ev) {
		select {
		case s.queue <- ev:
			return true
		case <-s.done:
			return false
		}
	}
	data, _ := navigation.EncodeEvent(ev)
	log.Printf("Navigation queue full, dropping %s", data)
	return false
}

func isNeutral(ev navigation.Event) bool {
	var e navigation.AxisEvent
	switch v := ev.(type) {
	case navigation.AxisEvent:
		e = v
	case *navigation.AxisEvent:
		if v == nil {
			return false
		}
		e = *v
	default:
		return false
	}
	return e.Axis == navigation.AxisLeftX && (e.Direction == 0 || math.IsNaN(e.Direction))
}

// Done is closed once Run has returned and no handler call is in flight.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Forward submits everything received on src until it is closed or ctx ends.
func (s *Session) Forward(ctx context.Context, src <-chan navigation.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			s.Submit(ev)
		}
	}
}

// Run dispatches queued events until ctx is cancelled. It must be called
// at most once.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			s.handler.HandleEvent(ev)
		}
	}
}
