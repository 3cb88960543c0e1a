package gamepad

import "github.com/soar/mapnav/internal/navigation"

// DefaultThreshold is the stick deflection that counts as a direction.
const DefaultThreshold = 0.5

// Translator turns successive States into button edges and a quantized
// left_x axis that is only reported when its direction changes.
type Translator struct {
	threshold float64
	prev      State
	direction int
}

// NewTranslator creates a Translator. Thresholds outside (0, 1) fall back
// to DefaultThreshold.
func NewTranslator(threshold float64) *Translator {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Translator{threshold: threshold}
}

// Next returns the events that lead from the previous state to s.
// A disconnected state releases everything that was held.
func (t *Translator) Next(s State) []navigation.Event {
	if !s.Connected {
		s = State{}
	}
	var events []navigation.Event
	for _, b := range trackedButtons {
		was, is := t.prev.IsPressed(b), s.IsPressed(b)
		switch {
		case is && !was:
			events = append(events, navigation.ButtonEvent{Button: b, State: navigation.Pressed})
		case was && !is:
			events = append(events, navigation.ButtonEvent{Button: b, State: navigation.Released})
		}
	}
	if dir := t.quantize(s.LeftStick.X); dir != t.direction {
		t.direction = dir
		events = append(events, navigation.AxisEvent{Axis: navigation.AxisLeftX, Direction: float64(dir)})
	}
	t.prev = s
	return events
}

func (t *Translator) quantize(v float64) int {
	switch {
	case v > t.threshold:
		return 1
	case v < -t.threshold:
		return -1
	}
	return 0
}
