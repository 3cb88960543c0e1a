// Package navigation turns gamepad events into discrete commands for a
// two-level map/marker selection interface.
//
// The Interpreter owns no navigation state beyond an axis latch. Mode,
// marker count and the cursors live behind the Navigator it is given.
// HandleEvent is not safe for concurrent use; the host serializes events.
package navigation

import "math"

// NoMarkersMessage is the status shown when marker cycling is attempted on
// a map without markers.
const NoMarkersMessage = "No markers available for this map"

// MarkerSelection carries the options of EnterMarkerSelection.
type MarkerSelection struct {
	Reset bool
}

// Navigator owns the navigation state the Interpreter drives.
type Navigator interface {
	Mode() Mode
	MarkerCount() int
	CycleMap(step int)
	CycleMarker(step int)
	TriggerMarkerSelection()
	EnterMapSelection()
	EnterMarkerSelection(opts MarkerSelection)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStatus sets the optional status notification callback.
func WithStatus(fn func(message string)) Option {
	return func(in *Interpreter) {
		in.status = fn
	}
}

// Interpreter translates events into Navigator calls.
type Interpreter struct {
	nav    Navigator
	status func(string)
	latch  int
}

// New creates an Interpreter driving nav.
func New(nav Navigator, opts ...Option) *Interpreter {
	in := &Interpreter{nav: nav}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// HandleEvent interprets one event. Unknown or malformed events are ignored.
func (in *Interpreter) HandleEvent(ev Event) {
	if in == nil || in.nav == nil {
		return
	}
	switch e := ev.(type) {
	case ButtonEvent:
		in.handleButton(e)
	case *ButtonEvent:
		if e != nil {
			in.handleButton(*e)
		}
	case AxisEvent:
		in.handleAxis(e)
	case *AxisEvent:
		if e != nil {
			in.handleAxis(*e)
		}
	}
}

func (in *Interpreter) handleButton(e ButtonEvent) {
	if e.State != Pressed {
		return
	}
	switch e.Button {
	case ButtonA:
		switch in.nav.Mode() {
		case ModeMap:
			in.nav.EnterMarkerSelection(MarkerSelection{Reset: true})
		case ModeMarker:
			in.nav.TriggerMarkerSelection()
		}
	case ButtonB:
		if in.nav.Mode() != ModeMap {
			in.nav.EnterMapSelection()
		}
	case ButtonDpadLeft:
		in.step(-1)
	case ButtonDpadRight:
		in.step(1)
	}
}

func (in *Interpreter) handleAxis(e AxisEvent) {
	if e.Axis != AxisLeftX {
		return
	}
	if math.IsNaN(e.Direction) || e.Direction == 0 {
		// Back at center: the next deflection fires again.
		in.latch = 0
		return
	}
	dir := sign(e.Direction)
	if dir == in.latch {
		return
	}
	in.latch = dir
	in.step(dir)
}

func (in *Interpreter) step(direction int) {
	if direction == 0 {
		return
	}
	step := sign(float64(direction))
	if in.nav.Mode() == ModeMap {
		in.nav.CycleMap(step)
		return
	}
	if in.nav.MarkerCount() <= 0 {
		if in.status != nil {
			in.status(NoMarkersMessage)
		}
		return
	}
	in.nav.CycleMarker(step)
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}
