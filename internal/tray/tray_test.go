package tray

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soar/mapnav/internal/catalog"
	"github.com/soar/mapnav/internal/navigation"
	"github.com/soar/mapnav/internal/selection"
)

func TestTooltip(t *testing.T) {
	s := selection.Snapshot{
		Mode:    navigation.ModeMap,
		MapName: "Keep",
		Markers: []catalog.Marker{{Label: "Gate"}, {Label: "Altar"}},
	}
	require.Equal(t, "mapnav - Keep", Tooltip(s))

	s.Mode = navigation.ModeMarker
	s.MarkerIndex = 1
	require.Equal(t, "mapnav - Keep / Altar", Tooltip(s))

	s.Markers = nil
	require.Equal(t, "mapnav - Keep", Tooltip(s))
}

func TestSetSelectionBeforeReady(t *testing.T) {
	tr := New("http://localhost:8080", func() {})
	require.NotPanics(t, func() {
		tr.SetSelection(selection.Snapshot{MapName: "Keep"})
	})
}
