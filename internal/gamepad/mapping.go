package gamepad

import (
	"math"

	"github.com/soar/mapnav/internal/navigation"
)

// AxisMapping defines how a raw axis index maps to a stick field.
type AxisMapping struct {
	Index  int32
	Target string // "left_x", "left_y", "right_x", "right_y"
	Invert bool
}

// ButtonMapping defines how a raw button index maps to a navigation button.
type ButtonMapping struct {
	Index  int32
	Target navigation.Button
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

var stickAxes = []AxisMapping{
	{Index: 0, Target: "left_x"},
	{Index: 1, Target: "left_y", Invert: true},
	{Index: 2, Target: "right_x"},
	{Index: 3, Target: "right_y", Invert: true},
}

// Face buttons first, then shoulders and menu buttons. Stick clicks are
// not navigation inputs and are left unmapped.
var xinputButtons = []ButtonMapping{
	{Index: 0, Target: navigation.ButtonA},
	{Index: 1, Target: navigation.ButtonB},
	{Index: 2, Target: navigation.ButtonX},
	{Index: 3, Target: navigation.ButtonY},
	{Index: 4, Target: navigation.ButtonLB},
	{Index: 5, Target: navigation.ButtonRB},
	{Index: 6, Target: navigation.ButtonSelect},
	{Index: 7, Target: navigation.ButtonStart},
	{Index: 10, Target: navigation.ButtonHome},
}

var xboxMapping = &DeviceMapping{Name: "xbox", Axes: stickAxes, Buttons: xinputButtons, HasHat: true}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: stickAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: navigation.ButtonA},      // Cross
		{Index: 1, Target: navigation.ButtonB},      // Circle
		{Index: 2, Target: navigation.ButtonX},      // Square
		{Index: 3, Target: navigation.ButtonY},      // Triangle
		{Index: 4, Target: navigation.ButtonSelect}, // Share / Create
		{Index: 5, Target: navigation.ButtonHome},   // PS button
		{Index: 6, Target: navigation.ButtonStart},  // Options
		{Index: 9, Target: navigation.ButtonLB},     // L1
		{Index: 10, Target: navigation.ButtonRB},    // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{Name: "switch_pro", Axes: stickAxes, Buttons: xinputButtons, HasHat: true}

var genericMapping = &DeviceMapping{Name: "generic", Axes: stickAxes, Buttons: xinputButtons, HasHat: true}

type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	{0x045E, 0x028E}: xboxMapping,        // Xbox 360
	{0x045E, 0x02FF}: xboxMapping,        // Xbox One
	{0x045E, 0x0B12}: xboxMapping,        // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping,        // Xbox Series X|S (wireless)
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the mapping for a device identified by vendor/product ID.
// Falls back to the generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	if m, ok := knownDevices[deviceKey{VendorID: vendorID, ProductID: productID}]; ok {
		return m
	}
	return genericMapping
}
