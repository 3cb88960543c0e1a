package selection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soar/mapnav/internal/catalog"
	"github.com/soar/mapnav/internal/navigation"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Maps: []catalog.Map{
		{Name: "Keep", Markers: []catalog.Marker{
			{Label: "Gate", X: 1, Y: 2},
			{Label: "Altar", X: 3, Y: 4},
			{Label: "Tower", X: 5, Y: 6},
		}},
		{Name: "Fields"},
		{Name: "Harbor", Markers: []catalog.Marker{{Label: "Dock", X: 7, Y: 8}}},
	}}
}

type activation struct {
	mapName string
	marker  catalog.Marker
}

func newTestNavigator() (*Navigator, *[]activation) {
	var got []activation
	n := NewNavigator(testCatalog(), ActivatorFunc(func(mapName string, m catalog.Marker) {
		got = append(got, activation{mapName, m})
	}))
	return n, &got
}

func drain(ch <-chan Snapshot) []Snapshot {
	var out []Snapshot
	for {
		select {
		case s := <-ch:
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestInitialState(t *testing.T) {
	n, _ := newTestNavigator()
	s := n.Snapshot()
	require.Equal(t, navigation.ModeMap, s.Mode)
	require.Equal(t, 0, s.MapIndex)
	require.Equal(t, 3, s.MapCount)
	require.Equal(t, "Keep", s.MapName)
	require.Equal(t, 3, n.MarkerCount())
}

func TestCycleMapWraps(t *testing.T) {
	n, _ := newTestNavigator()
	sub := n.Subscribe()
	n.CycleMap(-1)
	require.Equal(t, 2, n.Snapshot().MapIndex)
	n.CycleMap(1)
	n.CycleMap(1)
	require.Equal(t, "Fields", n.Snapshot().MapName)
	require.Equal(t, 0, n.MarkerCount())
	require.Len(t, drain(sub), 3)
}

func TestCycleMapResetsMarker(t *testing.T) {
	n, _ := newTestNavigator()
	n.EnterMarkerSelection(navigation.MarkerSelection{})
	n.CycleMarker(1)
	require.Equal(t, 1, n.Snapshot().MarkerIndex)
	n.CycleMap(1)
	require.Equal(t, 0, n.Snapshot().MarkerIndex)
}

func TestCycleMarkerWraps(t *testing.T) {
	n, _ := newTestNavigator()
	sub := n.Subscribe()
	n.CycleMarker(-1)
	require.Equal(t, 2, n.Snapshot().MarkerIndex)
	n.CycleMarker(1)
	require.Equal(t, 0, n.Snapshot().MarkerIndex)

	n.CycleMap(1)
	drain(sub)
	n.CycleMarker(1)
	require.Empty(t, drain(sub), "no markers means no change")
}

func TestModeSwitching(t *testing.T) {
	n, _ := newTestNavigator()
	sub := n.Subscribe()
	n.CycleMarker(1)
	drain(sub)

	n.EnterMarkerSelection(navigation.MarkerSelection{Reset: true})
	s := n.Snapshot()
	require.Equal(t, navigation.ModeMarker, s.Mode)
	require.Equal(t, 0, s.MarkerIndex)

	n.EnterMarkerSelection(navigation.MarkerSelection{Reset: true})
	n.EnterMapSelection()
	n.EnterMapSelection()
	require.Equal(t, navigation.ModeMap, n.Mode())
	require.Len(t, drain(sub), 2, "repeated transitions publish nothing")
}

func TestTriggerMarkerSelection(t *testing.T) {
	n, got := newTestNavigator()
	n.CycleMarker(1)
	n.TriggerMarkerSelection()
	require.Equal(t, []activation{{"Keep", catalog.Marker{Label: "Altar", X: 3, Y: 4}}}, *got)

	n.CycleMap(1)
	n.TriggerMarkerSelection()
	require.Len(t, *got, 1)
	require.Equal(t, navigation.NoMarkersMessage, <-n.Status())
}

func TestShowStatusDropsWhenFull(t *testing.T) {
	n := NewNavigator(testCatalog(), nil)
	for i := 0; i < cap(n.status)+5; i++ {
		n.ShowStatus("hello")
	}
	require.Len(t, n.status, cap(n.status))
}

func TestSnapshotIsCopy(t *testing.T) {
	n, _ := newTestNavigator()
	s := n.Snapshot()
	s.Markers[0].Label = "changed"
	m, ok := n.Snapshot().CurrentMarker()
	require.True(t, ok)
	require.Equal(t, "Gate", m.Label)
}

func TestDrivenByInterpreter(t *testing.T) {
	n, got := newTestNavigator()
	in := navigation.New(n, navigation.WithStatus(n.ShowStatus))

	in.HandleEvent(navigation.ButtonEvent{Button: navigation.ButtonDpadRight, State: navigation.Pressed})
	in.HandleEvent(navigation.ButtonEvent{Button: navigation.ButtonA, State: navigation.Pressed})
	in.HandleEvent(navigation.AxisEvent{Axis: navigation.AxisLeftX, Direction: 1})
	require.Equal(t, "Fields", n.Snapshot().MapName)
	require.Equal(t, navigation.NoMarkersMessage, <-n.Status())

	in.HandleEvent(navigation.ButtonEvent{Button: navigation.ButtonB, State: navigation.Pressed})
	in.HandleEvent(navigation.AxisEvent{Axis: navigation.AxisLeftX, Direction: 0})
	in.HandleEvent(navigation.AxisEvent{Axis: navigation.AxisLeftX, Direction: -1})
	in.HandleEvent(navigation.ButtonEvent{Button: navigation.ButtonA, State: navigation.Pressed})
	in.HandleEvent(navigation.ButtonEvent{Button: navigation.ButtonA, State: navigation.Pressed})

	require.Equal(t, []activation{{"Keep", catalog.Marker{Label: "Gate", X: 1, Y: 2}}}, *got)
}

func TestNilCatalog(t *testing.T) {
	n := NewNavigator(nil, nil)
	require.NotPanics(t, func() {
		n.CycleMap(1)
		n.CycleMarker(1)
		n.TriggerMarkerSelection()
	})
	require.Equal(t, 0, n.Snapshot().MapCount)
	require.Equal(t, 0, n.MarkerCount())
}

func TestSetCatalog(t *testing.T) {
	n, _ := newTestNavigator()
	sub := n.Subscribe()
	n.EnterMarkerSelection(navigation.MarkerSelection{})
	n.CycleMarker(-1) // Tower
	drain(sub)

	smaller := &catalog.Catalog{Maps: []catalog.Map{
		{Name: "Keep", Markers: []catalog.Marker{{Label: "Gate", X: 1, Y: 2}}},
	}}
	n.SetCatalog(smaller)
	s := n.Snapshot()
	require.Equal(t, navigation.ModeMarker, s.Mode)
	require.Equal(t, 0, s.MapIndex)
	require.Equal(t, 0, s.MarkerIndex)
	require.Equal(t, 1, s.MapCount)
	require.Len(t, drain(sub), 1)

	n.CycleMap(1)
	n.CycleMap(1)
	require.Equal(t, 0, n.Snapshot().MapIndex)

	n.SetCatalog(testCatalog())
	n.CycleMap(-1)
	require.Equal(t, "Harbor", n.Snapshot().MapName)
	n.SetCatalog(smaller)
	require.Equal(t, "Keep", n.Snapshot().MapName)
}
