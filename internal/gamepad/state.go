// Package gamepad converts polled controller state into navigation events.
package gamepad

import "github.com/soar/mapnav/internal/navigation"

// Buttons reported by the translator, in emission order.
var trackedButtons = []navigation.Button{
	navigation.ButtonA,
	navigation.ButtonB,
	navigation.ButtonX,
	navigation.ButtonY,
	navigation.ButtonLB,
	navigation.ButtonRB,
	navigation.ButtonSelect,
	navigation.ButtonStart,
	navigation.ButtonHome,
	navigation.ButtonDpadUp,
	navigation.ButtonDpadDown,
	navigation.ButtonDpadLeft,
	navigation.ButtonDpadRight,
}

// Vector is a stick position in -1..1 with Y pointing up.
type Vector struct {
	X float64
	Y float64
}

// State is one polled snapshot of the active controller.
type State struct {
	Connected      bool
	Name           string
	ControllerType string
	Pressed        map[navigation.Button]bool
	LeftStick      Vector
	RightStick     Vector
}

// Press marks b as held.
func (s *State) Press(b navigation.Button) {
	if s.Pressed == nil {
		s.Pressed = make(map[navigation.Button]bool)
	}
	s.Pressed[b] = true
}

// IsPressed reports whether b is held.
func (s State) IsPressed(b navigation.Button) bool {
	return s.Pressed[b]
}

// SetHat applies an SDL hat bitmask to the D-pad buttons.
func (s *State) SetHat(hat uint8) {
	if hat&HatUp != 0 {
		s.Press(navigation.ButtonDpadUp)
	}
	if hat&HatRight != 0 {
		s.Press(navigation.ButtonDpadRight)
	}
	if hat&HatDown != 0 {
		s.Press(navigation.ButtonDpadDown)
	}
	if hat&HatLeft != 0 {
		s.Press(navigation.ButtonDpadLeft)
	}
}

// SDL hat bits.
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)
