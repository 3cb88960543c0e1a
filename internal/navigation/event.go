package navigation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Mode selects which level of the interface receives directional input.
type Mode string

const (
	ModeMap    Mode = "map"
	ModeMarker Mode = "marker"
)

// Button names as emitted by the device bridge.
type Button string

const (
	ButtonA         Button = "A"
	ButtonB         Button = "B"
	ButtonX         Button = "X"
	ButtonY         Button = "Y"
	ButtonLB        Button = "LB"
	ButtonRB        Button = "RB"
	ButtonSelect    Button = "SELECT"
	ButtonStart     Button = "START"
	ButtonHome      Button = "HOME"
	ButtonDpadUp    Button = "DPAD_UP"
	ButtonDpadDown  Button = "DPAD_DOWN"
	ButtonDpadLeft  Button = "DPAD_LEFT"
	ButtonDpadRight Button = "DPAD_RIGHT"
)

// ButtonState is the edge carried by a ButtonEvent.
type ButtonState string

const (
	Pressed  ButtonState = "pressed"
	Released ButtonState = "released"
)

// Axis names as emitted by the device bridge.
type Axis string

const AxisLeftX Axis = "left_x"

// Event is either a ButtonEvent or an AxisEvent.
type Event interface {
	event()
}

// ButtonEvent reports a button edge.
type ButtonEvent struct {
	Button Button
	State  ButtonState
}

// AxisEvent reports a stick reading. Only the sign of Direction is used.
type AxisEvent struct {
	Axis      Axis
	Direction float64
}

func (ButtonEvent) event() {}
func (AxisEvent) event() {}

type wireEvent struct {
	Type      string          `json:"type"`
	Button    string          `json:"button,omitempty"`
	State     string          `json:"state,omitempty"`
	Axis      string          `json:"axis,omitempty"`
	Direction json.RawMessage `json:"direction,omitempty"`
}

// DecodeEvent parses the bridge's JSON payload. It returns nil for anything
// that is not a JSON object with type "button" or "axis"; the interpreter
// treats nil as a no-op, so callers can pass the result straight through.
// Only the fields the variant needs are read, so unrelated or mistyped
// extra fields do not reject the event.
func DecodeEvent(data []byte) Event {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	switch stringField(fields["type"]) {
	case "button":
		return ButtonEvent{
			Button: Button(stringField(fields["button"])),
			State:  ButtonState(stringField(fields["state"])),
		}
	case "axis":
		return AxisEvent{
			Axis:      Axis(stringField(fields["axis"])),
			Direction: coerceNumber(fields["direction"]),
		}
	}
	return nil
}

// stringField returns raw as a string, or "" when it is missing or not a
// JSON string. No button, state or axis name is empty, so "" never matches.
func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// EncodeEvent is the inverse of DecodeEvent for the two known variants.
func EncodeEvent(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case ButtonEvent:
		return json.Marshal(wireEvent{Type: "button", Button: string(e.Button), State: string(e.State)})
	case AxisEvent:
		d, err := json.Marshal(e.Direction)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireEvent{Type: "axis", Axis: string(e.Axis), Direction: d})
	}
	return []byte("null"), nil
}

// coerceNumber converts a loosely typed JSON value the way the browser's
// Number() does: missing/null/"" become 0, booleans 0 or 1, strings and
// arrays go through their string form, everything else is NaN.
func coerceNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return math.NaN()
	}
	switch n := v.(type) {
	case nil:
		return 0
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		return parseNumber(n.String())
	case string:
		return parseNumber(n)
	case []any:
		return parseNumber(jsString(n))
	}
	return math.NaN()
}

// jsString renders a decoded JSON value the way String() does in the
// browser. Arrays join their elements with commas and null elements are
// empty.
func jsString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(n)
	case json.Number:
		return n.String()
	case string:
		return n
	case []any:
		parts := make([]string, len(n))
		for i, e := range n {
			parts[i] = jsString(e)
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber accepts the string numeric grammar of the browser: surrounding
// whitespace, decimal literals, Infinity and unsigned 0x/0o/0b integers.
func parseNumber(s string) float64 {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return parseInteger(s[2:], 16)
		case 'o', 'O':
			return parseInteger(s[2:], 8)
		case 'b', 'B':
			return parseInteger(s[2:], 2)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func parseInteger(digits string, base int) float64 {
	var f float64
	for _, r := range digits {
		d := digitValue(r)
		if d < 0 || d >= base {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}
