package server

import (
	"log"
	"net/http"

	"github.com/lxzan/gws"

	"github.com/soar/mapnav/internal/hub"
)

func newUpgrader(h *hub.Hub) *gws.Upgrader {
	return gws.NewUpgrader(h, &gws.ServerOption{
		PermessageDeflate: gws.PermessageDeflate{
			Enabled: true,
		},
	})
}

func handleWebSocket(h *hub.Hub, upgrader *gws.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := hub.NewClient(socket)
		h.Register(client)

		go client.WritePump()
		go socket.ReadLoop()
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
