// Package selection holds the map/marker cursor driven by the interpreter.
package selection

import (
	"log"
	"sync"

	"github.com/soar/mapnav/internal/catalog"
	"github.com/soar/mapnav/internal/navigation"
)

// Snapshot is a copy of the navigation state for observers.
type Snapshot struct {
	Mode        navigation.Mode  `json:"mode"`
	MapIndex    int              `json:"mapIndex"`
	MapCount    int              `json:"mapCount"`
	MapName     string           `json:"mapName"`
	MarkerIndex int              `json:"markerIndex"`
	Markers     []catalog.Marker `json:"markers"`
}

// CurrentMarker returns the highlighted marker, if any.
func (s Snapshot) CurrentMarker() (catalog.Marker, bool) {
	if s.MarkerIndex < 0 || s.MarkerIndex >= len(s.Markers) {
		return catalog.Marker{}, false
	}
	return s.Markers[s.MarkerIndex], true
}

// Activator receives the marker confirmed by the user.
type Activator interface {
	Activate(mapName string, marker catalog.Marker)
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(mapName string, marker catalog.Marker)

func (f ActivatorFunc) Activate(mapName string, marker catalog.Marker) { f(mapName, marker) }

// Navigator implements navigation.Navigator over a catalog.
// Cursors wrap around at both ends.
type Navigator struct {
	catalog   *catalog.Catalog
	activator Activator

	mu          sync.RWMutex
	mode        navigation.Mode
	mapIndex    int
	markerIndex int

	subscribers []chan Snapshot
	status      chan string
}

var _ navigation.Navigator = (*Navigator)(nil)

// NewNavigator starts in map mode on the first map.
func NewNavigator(c *catalog.Catalog, activator Activator) *Navigator {
	return &Navigator{
		catalog:   c,
		activator: activator,
		mode:      navigation.ModeMap,
		status:    make(chan string, 16),
	}
}

// Subscribe returns a new channel on which state changes are sent.
// Slow subscribers miss changes rather than block navigation.
func (n *Navigator) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 64)
	n.mu.Lock()
	n.subscribers = append(n.subscribers, ch)
	n.mu.Unlock()
	return ch
}

// Status returns the channel on which status messages are sent.
func (n *Navigator) Status() <-chan string {
	return n.status
}

// Snapshot returns the current state.
func (n *Navigator) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.snapshotLocked()
}

func (n *Navigator) snapshotLocked() Snapshot {
	s := Snapshot{
		Mode:        n.mode,
		MapIndex:    n.mapIndex,
		MarkerIndex: n.markerIndex,
	}
	if n.catalog != nil {
		s.MapCount = len(n.catalog.Maps)
	}
	if m, ok := n.currentMapLocked(); ok {
		s.MapName = m.Name
		s.Markers = append([]catalog.Marker(nil), m.Markers...)
	}
	return s
}

func (n *Navigator) currentMapLocked() (catalog.Map, bool) {
	if n.catalog == nil || n.mapIndex < 0 || n.mapIndex >= len(n.catalog.Maps) {
		return catalog.Map{}, false
	}
	return n.catalog.Maps[n.mapIndex], true
}

// Mode returns the current navigation mode.
func (n *Navigator) Mode() navigation.Mode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mode
}

// MarkerCount returns the number of markers on the current map.
func (n *Navigator) MarkerCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	m, _ := n.currentMapLocked()
	return len(m.Markers)
}

// CycleMap moves to the neighbouring map and resets the marker cursor.
func (n *Navigator) CycleMap(step int) {
	n.update(func() bool {
		count := 0
		if n.catalog != nil {
			count = len(n.catalog.Maps)
		}
		if count == 0 {
			return false
		}
		n.mapIndex = wrap(n.mapIndex+step, count)
		n.markerIndex = 0
		return true
	})
}

// CycleMarker moves to the neighbouring marker on the current map.
func (n *Navigator) CycleMarker(step int) {
	n.update(func() bool {
		m, ok := n.currentMapLocked()
		if !ok || len(m.Markers) == 0 {
			return false
		}
		n.markerIndex = wrap(n.markerIndex+step, len(m.Markers))
		return true
	})
}

// EnterMapSelection switches to map mode.
func (n *Navigator) EnterMapSelection() {
	n.update(func() bool {
		if n.mode == navigation.ModeMap {
			return false
		}
		n.mode = navigation.ModeMap
		return true
	})
}

// EnterMarkerSelection switches to marker mode.
func (n *Navigator) EnterMarkerSelection(opts navigation.MarkerSelection) {
	n.update(func() bool {
		changed := n.mode != navigation.ModeMarker
		n.mode = navigation.ModeMarker
		if opts.Reset && n.markerIndex != 0 {
			n.markerIndex = 0
			changed = true
		}
		return changed
	})
}

// SetCatalog swaps the catalog. Cursors that still point into it are kept,
// others fall back to the first entry.
func (n *Navigator) SetCatalog(c *catalog.Catalog) {
	n.update(func() bool {
		n.catalog = c
		if c == nil || n.mapIndex >= len(c.Maps) {
			n.mapIndex = 0
			n.markerIndex = 0
			return true
		}
		if n.markerIndex >= len(c.Maps[n.mapIndex].Markers) {
			n.markerIndex = 0
		}
		return true
	})
}

// TriggerMarkerSelection hands the highlighted marker to the activator.
func (n *Navigator) TriggerMarkerSelection() {
	n.mu.RLock()
	s := n.snapshotLocked()
	n.mu.RUnlock()

	marker, ok := s.CurrentMarker()
	if !ok {
		n.ShowStatus(navigation.NoMarkersMessage)
		return
	}
	log.Printf("Marker selected: %s / %s (%.2f, %.2f)", s.MapName, marker.Label, marker.X, marker.Y)
	if n.activator != nil {
		n.activator.Activate(s.MapName, marker)
	}
}

// ShowStatus publishes a transient status message.
func (n *Navigator) ShowStatus(message string) {
	select {
	case n.status <- message:
	default:
		log.Printf("Status dropped: %s", message)
	}
}

func (n *Navigator) update(fn func() bool) {
	n.mu.Lock()
	if !fn() {
		n.mu.Unlock()
		return
	}
	s := n.snapshotLocked()
	subs := n.subscribers
	n.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
			// Drop if channel is full; the broadcaster resyncs periodically
		}
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
