package relay

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/mcoot/stonecluster/internal/model"
)

// NewUpgrader builds the websocket upgrader for the relay endpoint. With no
// origins configured, gorilla's same-origin check applies, which admits
// non-browser clients that send no Origin header.
func NewUpgrader(origins []string) websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(origins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}
	return upgrader
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := NewUpgrader(h.cfg.AllowedOrigins)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newConn(h, model.ConnectionID(h.ids.New()), ws, h.clock.Now())
	if !h.registerConn(c) {
		_ = ws.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
