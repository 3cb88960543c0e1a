package tray

import (
	"context"
	_ "embed"
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"

	"github.com/soar/mapnav/internal/navigation"
	"github.com/soar/mapnav/internal/selection"
)

//go:embed icon.ico
var iconData []byte

// Icon returns the embedded tray icon.
func Icon() []byte {
	return iconData
}

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	ready        atomic.Bool
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a new Tray instance; url is opened by "Open Browser".
func New(url string, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		url:          url,
		shutdownFunc: shutdownFn,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Follow keeps the tooltip on the current selection until ctx ends.
func (t *Tray) Follow(ctx context.Context, changes <-chan selection.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-changes:
			if !ok {
				return
			}
			t.SetSelection(s)
		}
	}
}

// SetSelection shows the selection in the tooltip.
func (t *Tray) SetSelection(s selection.Snapshot) {
	if !t.ready.Load() {
		return
	}
	systray.SetTooltip(Tooltip(s))
}

// Tooltip renders a selection for the tray.
func Tooltip(s selection.Snapshot) string {
	text := "mapnav - " + s.MapName
	if m, ok := s.CurrentMarker(); ok && s.Mode == navigation.ModeMarker {
		text += " / " + m.Label
	}
	return text
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("mapnav")
	systray.SetTooltip("mapnav - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Browser", "Open web interface")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")
	t.ready.Store(true)

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.ready.Store(false)
	log.Println("System tray exiting")
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
