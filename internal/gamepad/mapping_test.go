package gamepad

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soar/mapnav/internal/navigation"
)

func TestGetMapping(t *testing.T) {
	require.Equal(t, "xbox", GetMapping(0x045E, 0x0B12).Name)
	require.Equal(t, "playstation", GetMapping(0x054C, 0x0CE6).Name)
	require.Equal(t, "switch_pro", GetMapping(0x057E, 0x2009).Name)
	require.Equal(t, "generic", GetMapping(0x1234, 0x5678).Name)
}

func TestPlaystationFaceButtons(t *testing.T) {
	m := GetMapping(0x054C, 0x05C4)
	targets := map[int32]navigation.Button{}
	for _, b := range m.Buttons {
		targets[b.Index] = b.Target
	}
	require.Equal(t, navigation.ButtonA, targets[0])
	require.Equal(t, navigation.ButtonB, targets[1])
	require.Equal(t, navigation.ButtonHome, targets[5])
}

func TestNormalizeAxis(t *testing.T) {
	require.Equal(t, 1.0, NormalizeAxis(32767))
	require.Equal(t, -1.0, NormalizeAxis(-32768))
	require.Equal(t, 0.0, NormalizeAxis(0))
}

func TestApplyDeadzone(t *testing.T) {
	require.Equal(t, 0.0, ApplyDeadzone(0.04, 0.05))
	require.Equal(t, -0.2, ApplyDeadzone(-0.2, 0.05))
}

func TestSetHat(t *testing.T) {
	var s State
	s.SetHat(HatUp | HatLeft)
	require.True(t, s.IsPressed(navigation.ButtonDpadUp))
	require.True(t, s.IsPressed(navigation.ButtonDpadLeft))
	require.False(t, s.IsPressed(navigation.ButtonDpadRight))
	require.False(t, s.IsPressed(navigation.ButtonDpadDown))
}
