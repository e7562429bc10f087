package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/stonecluster/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Largest frame accepted from a peer. A full snapshot of 24 stones fits
	// comfortably.
	maxMessageSize = 64 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Conn is one peer's websocket. Its pumps only move bytes; every decision
// about the bytes is made on the hub's loop.
type Conn struct {
	id          model.ConnectionID
	hub         *Hub
	ws          *websocket.Conn
	send        chan []byte
	connectedAt time.Time
	logger      *slog.Logger
}

func newConn(hub *Hub, id model.ConnectionID, ws *websocket.Conn, now time.Time) *Conn {
	return &Conn{
		id:          id,
		hub:         hub,
		ws:          ws,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: now,
		logger:      hub.logger.With(slog.String("connection_id", string(id))),
	}
}

// ID returns the relay-assigned connection id
func (c *Conn) ID() model.ConnectionID {
	return c.id
}

// readPump hands every inbound frame to the hub in arrival order, which is
// what keeps delivery FIFO per sender
func (c *Conn) readPump() {
	defer func() {
		c.hub.unregisterConn(c)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		if !c.hub.deliver(inbound{conn: c, data: data}) {
			return
		}
	}
}

// writePump is the only writer on the socket
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
