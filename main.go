package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soar/mapnav/internal/catalog"
	"github.com/soar/mapnav/internal/config"
	"github.com/soar/mapnav/internal/gamepad/sdlreader"
	"github.com/soar/mapnav/internal/hub"
	"github.com/soar/mapnav/internal/luacmd"
	"github.com/soar/mapnav/internal/navigation"
	"github.com/soar/mapnav/internal/relay"
	"github.com/soar/mapnav/internal/selection"
	"github.com/soar/mapnav/internal/server"
	"github.com/soar/mapnav/internal/session"
	"github.com/soar/mapnav/internal/tray"
)

// os.Interrupt is Ctrl+C on every platform
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	points, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d maps from %s", len(points.Maps), cfg.Catalog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Marker confirmation: coordinate listener + clipboard
	activator := &relay.Activator{}
	if cfg.Relay.Enabled {
		activator.Pusher = &relay.Pusher{Addr: cfg.Relay.Addr, Timeout: cfg.Relay.Timeout}
	}
	if cfg.Clipboard {
		activator.Clipboard = relay.SystemClipboard{}
	}

	nav := selection.NewNavigator(points, activator)
	activator.Status = nav.ShowStatus

	interp := navigation.New(nav, navigation.WithStatus(nav.ShowStatus))

	// X scans and Y teleports to the highlighted marker's save point
	actions := &luacmd.Actions{Next: interp, Status: nav.ShowStatus, Target: selectedSavePoint(nav)}
	if cfg.SavePoint.Enabled {
		actions.Commands = &luacmd.Client{Dir: cfg.SavePoint.Dir, Timeout: cfg.SavePoint.Timeout}
	}
	sess := session.New(actions)
	go sess.Run(ctx)

	h := hub.NewHub(nav.Snapshot, sess.Submit)
	if cfg.CatalogUpload {
		h.OnCatalog(func(c *catalog.Catalog) error {
			if err := catalog.Save(cfg.Catalog, c); err != nil {
				return err
			}
			nav.SetCatalog(c)
			return nil
		})
	}
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, nav.Subscribe(), nav.Status(), cfg.Status.TTL)
	go broadcaster.Run(ctx)

	srv, err := server.New(h, getFrontendFS(), cfg.Addr)
	if err != nil {
		return err
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	url := server.LocalURL(cfg.Addr)
	log.Printf("mapnav started: %s", url)

	readerDone := make(chan struct{})
	if cfg.Gamepad.Enabled {
		reader := sdlreader.NewReader(sdlreader.Config{
			Threshold:    cfg.Gamepad.Threshold,
			PollInterval: cfg.Gamepad.Poll,
		})
		go sess.Forward(ctx, reader.Events())
		go func() {
			defer close(readerDone)
			if err := reader.Run(ctx); err != nil {
				// The web bridge keeps working without a local controller
				log.Printf("Gamepad reader stopped: %v", err)
			}
		}()
	} else {
		close(readerDone)
	}

	shutdownRequested := make(chan struct{})
	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(url, func() {
			close(shutdownRequested)
		})
		go t.Follow(ctx, nav.Subscribe())
		go t.Run(tray.Icon())
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
	}
	cancel()
	if t != nil {
		t.Quit()
	}

	<-readerDone
	// No new activations or commands start once the session has stopped
	<-sess.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	activator.Wait()
	actions.Wait()
	log.Println("mapnav stopped")
	return nil
}

func selectedSavePoint(nav *selection.Navigator) func() (string, bool) {
	return func() (string, bool) {
		m, ok := nav.Snapshot().CurrentMarker()
		return m.Label, ok
	}
}
