package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/ids"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/protocol"
	"github.com/mcoot/stonecluster/internal/services/room"
)

// Config holds relay loop settings
type Config struct {
	// SweepInterval is how often rooms are checked for eviction
	SweepInterval time.Duration
	// AllowedOrigins restricts websocket upgrades by Origin header. Empty
	// allows same-origin and header-less clients.
	AllowedOrigins []string
}

// DefaultConfig returns the default relay configuration
func DefaultConfig() Config {
	return Config{
		SweepInterval: 30 * time.Minute,
	}
}

type inbound struct {
	conn *Conn
	data []byte
}

// Hub is the relay event loop. Room mutations, connection bookkeeping and
// the inactivity sweep all happen on the goroutine running Run.
type Hub struct {
	rooms  room.ControllerInterface
	clock  clock.Clock
	ids    ids.Generator
	cfg    Config
	logger *slog.Logger

	// Owned by the Run goroutine
	conns    map[model.ConnectionID]*Conn
	connRoom map[model.ConnectionID]model.RoomCode

	register   chan *Conn
	unregister chan *Conn
	inbound    chan inbound
	stats      chan chan Stats
	done       chan struct{}
}

// Stats is a point-in-time view of the hub
type Stats struct {
	Connections int
	Seated      int
}

// NewHub creates a new relay Hub
func NewHub(
	rooms room.ControllerInterface,
	clock clock.Clock,
	ids ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *Hub {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Hub{
		rooms:      rooms,
		clock:      clock,
		ids:        ids,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "relay")),
		conns:      make(map[model.ConnectionID]*Conn),
		connRoom:   make(map[model.ConnectionID]model.RoomCode),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		inbound:    make(chan inbound, 256),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	tick, stop := h.clock.Ticker(h.cfg.SweepInterval)
	defer stop()

	h.logger.Info("relay hub started", slog.Duration("sweep_interval", h.cfg.SweepInterval))
	for {
		select {
		case c := <-h.register:
			h.conns[c.id] = c
			h.logger.Info("connection registered",
				slog.String("connection_id", string(c.id)),
				slog.Int("total_connections", len(h.conns)))

		case c := <-h.unregister:
			h.handleUnregister(ctx, c)

		case msg := <-h.inbound:
			if _, ok := h.conns[msg.conn.id]; !ok {
				continue
			}
			h.handleMessage(ctx, msg.conn, msg.data)

		case <-tick:
			h.sweep(ctx)

		case reply := <-h.stats:
			reply <- Stats{Connections: len(h.conns), Seated: len(h.connRoom)}

		case <-ctx.Done():
			close(h.done)
			for id, c := range h.conns {
				close(c.send)
				delete(h.conns, id)
			}
			h.logger.Info("relay hub stopped")
			return
		}
	}
}

// Stats asks the loop for its current counts
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, context.Canceled
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) registerConn(c *Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterConn(c *Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) deliver(msg inbound) bool {
	select {
	case h.inbound <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handleUnregister(ctx context.Context, c *Conn) {
	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)
	close(c.send)
	h.logger.Info("connection unregistered",
		slog.String("connection_id", string(c.id)),
		slog.Duration("connection_duration", h.clock.Now().Sub(c.connectedAt)),
		slog.Int("total_connections", len(h.conns)))

	code, seated := h.connRoom[c.id]
	if !seated {
		return
	}
	delete(h.connRoom, c.id)

	result, err := h.rooms.Disconnect(ctx, code, c.id)
	if err != nil {
		h.logger.Warn("disconnect bookkeeping failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		return
	}
	if result.Remaining != nil {
		h.sendTo(result.Remaining.ConnectionID, protocol.TypeOpponentDisconnected, protocol.Empty{})
	}
	if result.Destroyed {
		h.forgetRoom(result.Room)
	}
}

func (h *Hub) sweep(ctx context.Context) {
	evicted, err := h.rooms.Sweep(ctx)
	if err != nil {
		h.logger.Error("room sweep failed", slog.String("error", err.Error()))
	}
	for _, r := range evicted {
		for _, m := range r.Members {
			if h.connRoom[m.ConnectionID] != r.Code {
				continue
			}
			if m.Connected() {
				h.sendTo(m.ConnectionID, protocol.TypeRoomClosed, protocol.RoomClosed{Reason: "expired"})
			}
		}
		h.forgetRoom(r)
	}
}

// forgetRoom unseats every connection still mapped to a destroyed room
func (h *Hub) forgetRoom(r *model.Room) {
	for _, m := range r.Members {
		if h.connRoom[m.ConnectionID] == r.Code {
			delete(h.connRoom, m.ConnectionID)
		}
	}
}

func (h *Hub) sendTo(id model.ConnectionID, t protocol.MessageType, payload any) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	msg, err := protocol.Encode(t, payload)
	if err != nil {
		h.logger.Error("failed to encode message",
			slog.String("type", string(t)),
			slog.String("error", err.Error()))
		return
	}
	h.sendRaw(c, msg)
}

func (h *Hub) sendRaw(c *Conn, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("relay message dropped - connection buffer full",
			slog.String("connection_id", string(c.id)))
	}
}

func (h *Hub) sendError(c *Conn, err error) {
	wire := protocol.ErrorFromErr(err)
	if wire.Code == protocol.CodeInternalError {
		h.logger.Error("request failed",
			slog.String("connection_id", string(c.id)),
			slog.String("error", err.Error()))
	}
	h.sendTo(c.id, protocol.TypeError, wire)
}
