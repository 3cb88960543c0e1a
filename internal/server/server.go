package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/lxzan/gws"

	"github.com/soar/mapnav/internal/hub"
)

type Server struct {
	hub        *hub.Hub
	upgrader   *gws.Upgrader
	assets     *assets
	addr       string
	httpServer *http.Server
}

// New prepares the server. The frontend is minified here so a broken asset
// fails at startup.
func New(h *hub.Hub, frontendFS fs.FS, addr string) (*Server, error) {
	a, err := loadAssets(frontendFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load frontend: %w", err)
	}
	s := &Server{
		hub:      h,
		upgrader: newUpgrader(h),
		assets:   a,
		addr:     addr,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s, nil
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.upgrader))
	mux.HandleFunc("/healthz", handleHealth)

	// Static files (frontend)
	mux.Handle("/", s.assets)
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

// LocalURL turns a listen address into something a browser can open.
func LocalURL(addr string) string {
	host, port, ok := strings.Cut(addr, ":")
	if !ok {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}
