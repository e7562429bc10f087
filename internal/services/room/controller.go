package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/storage"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCodeAttempts bounds regeneration on collision
	maxCodeAttempts = 32
)

// ErrNoFreeCode is returned when no unused room code could be generated
var ErrNoFreeCode = errors.New("could not allocate a free room code")

// Config holds room lifecycle settings
type Config struct {
	// IdleTimeout evicts rooms with no accepted message for this long
	IdleTimeout time.Duration
	// DisconnectGrace keeps a dropped member's seat open for rejoin. Zero
	// destroys the room as soon as either member disconnects.
	DisconnectGrace time.Duration
	// SeatTokenCost is the bcrypt cost used to hash seat tokens
	SeatTokenCost int
}

// DefaultConfig returns the default room configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout:     2 * time.Hour,
		DisconnectGrace: 0,
		SeatTokenCost:   bcrypt.DefaultCost,
	}
}

// Seat is a member's view of a room after creating, joining or rejoining it
type Seat struct {
	Room      *model.Room
	PlayerID  model.PlayerID
	SeatToken string
}

// DisconnectResult describes what a dropped connection did to its room
type DisconnectResult struct {
	Room      *model.Room
	Remaining *model.RoomMember // member to notify, nil if none
	Destroyed bool
}

// ControllerInterface is the relay's view of room lifecycle operations
type ControllerInterface interface {
	CreateRoom(ctx context.Context, connID model.ConnectionID, name string) (*Seat, error)
	JoinRoom(ctx context.Context, code model.RoomCode, connID model.ConnectionID, name string) (*Seat, error)
	RejoinRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID, token string, connID model.ConnectionID) (*Seat, error)
	AcceptPlacement(ctx context.Context, code model.RoomCode, connID model.ConnectionID, actingPlayer model.PlayerID, state model.GameSession) (*model.Room, error)
	Touch(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*model.Room, error)
	Rematch(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*model.Room, error)
	Disconnect(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*DisconnectResult, error)
	Sweep(ctx context.Context) ([]*model.Room, error)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}

// Controller manages the room state machine on the relay. It never applies
// game rules; the stored session is whatever snapshot a member last pushed.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

var _ ControllerInterface = (*Controller)(nil)

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.SeatTokenCost == 0 {
		cfg.SeatTokenCost = DefaultConfig().SeatTokenCost
	}
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "rooms")),
	}
}

// Config returns the controller's configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// CreateRoom allocates a room with the caller as host (player 0)
func (c *Controller) CreateRoom(ctx context.Context, connID model.ConnectionID, name string) (*Seat, error) {
	code, err := c.newCode(ctx)
	if err != nil {
		return nil, err
	}

	token, hash, err := c.issueSeatToken()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		Code:  code,
		State: model.RoomStateWaiting,
		Members: []model.RoomMember{
			{
				ConnectionID:  connID,
				PlayerID:      model.PlayerHost,
				Name:          name,
				SeatTokenHash: hash,
				JoinedAt:      now,
			},
		},
		Session:        model.NewGameSession(name),
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("connection_id", string(connID)))

	return &Seat{Room: room, PlayerID: model.PlayerHost, SeatToken: token}, nil
}

func (c *Controller) newCode(ctx context.Context) (model.RoomCode, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
		if len(code) != CodeLength {
			continue
		}
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}

// JoinRoom seats the caller as guest (player 1) and activates the room
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, connID model.ConnectionID, name string) (*Seat, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.GetMemberByConnection(connID) != nil {
		return nil, model.ErrAlreadyInRoom
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	token, hash, err := c.issueSeatToken()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	room.Members = append(room.Members, model.RoomMember{
		ConnectionID:  connID,
		PlayerID:      model.PlayerGuest,
		Name:          name,
		SeatTokenHash: hash,
		JoinedAt:      now,
	})
	room.State = model.RoomStateActive
	room.Session = model.NewGameSession(room.Members[0].Name, name)
	room.LastActivityAt = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room joined",
		slog.String("room", string(code)),
		slog.String("connection_id", string(connID)))

	return &Seat{Room: room, PlayerID: model.PlayerGuest, SeatToken: token}, nil
}

// RejoinRoom moves a disconnected member's seat onto a new connection
func (c *Controller) RejoinRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID, token string, connID model.ConnectionID) (*Seat, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	member := room.GetMember(playerID)
	if member == nil {
		return nil, model.ErrInvalidSeat
	}
	if err := checkSeatToken(member, token); err != nil {
		return nil, err
	}
	if member.Connected() {
		return nil, model.ErrSeatOccupied
	}

	member.ConnectionID = connID
	member.DisconnectedAt = nil
	room.LastActivityAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room rejoined",
		slog.String("room", string(code)),
		slog.Int("player_id", int(playerID)))

	return &Seat{Room: room, PlayerID: playerID, SeatToken: token}, nil
}

// AcceptPlacement gates a placement on the sender's seat and the stored turn,
// then stores the sender's resulting snapshot as the room's last known state
func (c *Controller) AcceptPlacement(ctx context.Context, code model.RoomCode, connID model.ConnectionID, actingPlayer model.PlayerID, state model.GameSession) (*model.Room, error) {
	room, member, err := c.activeMember(ctx, code, connID)
	if err != nil {
		return nil, err
	}
	if room.Session.GameOver {
		return nil, model.ErrGameOver
	}
	if member.PlayerID != actingPlayer || room.Session.CurrentPlayer != actingPlayer {
		return nil, fmt.Errorf("%w: seat %d acted as %d, current is %d",
			model.ErrNotPlayerTurn, member.PlayerID, actingPlayer, room.Session.CurrentPlayer)
	}

	room.Session = state.Clone()
	room.LastActivityAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Touch records activity for a relayed message and returns the room
func (c *Controller) Touch(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*model.Room, error) {
	room, _, err := c.activeMember(ctx, code, connID)
	if err != nil {
		return nil, err
	}
	room.LastActivityAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Rematch resets the stored session to the initial state
func (c *Controller) Rematch(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*model.Room, error) {
	room, _, err := c.activeMember(ctx, code, connID)
	if err != nil {
		return nil, err
	}

	room.Session = model.NewGameSession(room.Session.Players[0].Name, room.Session.Players[1].Name)
	room.LastActivityAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("rematch started", slog.String("room", string(code)))
	return room, nil
}

func (c *Controller) activeMember(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*model.Room, *model.RoomMember, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	member := room.GetMemberByConnection(connID)
	if member == nil || !member.Connected() {
		return nil, nil, model.ErrNotInRoom
	}
	if room.State != model.RoomStateActive {
		return nil, nil, model.ErrRoomNotActive
	}
	return room, member, nil
}

// Disconnect handles a dropped connection. Without a grace window, or when
// nobody else is left, the room is destroyed and the remaining member (if
// any) is returned for notification.
func (c *Controller) Disconnect(ctx context.Context, code model.RoomCode, connID model.ConnectionID) (*DisconnectResult, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	member := room.GetMemberByConnection(connID)
	if member == nil {
		return nil, model.ErrNotInRoom
	}

	opponent := room.Opponent(member.PlayerID)
	opponentConnected := opponent != nil && opponent.Connected()

	if c.cfg.DisconnectGrace <= 0 || room.State != model.RoomStateActive || !opponentConnected {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		room.State = model.RoomStateEnded
		c.logger.Info("room destroyed",
			slog.String("room", string(code)),
			slog.String("reason", "disconnect"),
			slog.Int("player_id", int(member.PlayerID)))

		result := &DisconnectResult{Room: room, Destroyed: true}
		if opponentConnected {
			result.Remaining = opponent
		}
		return result, nil
	}

	now := c.clock.Now()
	member.DisconnectedAt = &now
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	c.logger.Info("member disconnected, seat held",
		slog.String("room", string(code)),
		slog.Int("player_id", int(member.PlayerID)),
		slog.Duration("grace", c.cfg.DisconnectGrace))

	return &DisconnectResult{Room: room}, nil
}

// Sweep destroys rooms idle beyond IdleTimeout and rooms whose dropped member
// did not rejoin within DisconnectGrace. Destroyed rooms are returned so the
// caller can notify members still connected.
func (c *Controller) Sweep(ctx context.Context) ([]*model.Room, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	var evicted []*model.Room
	for _, room := range rooms {
		reason := c.evictionReason(room, now)
		if reason == "" {
			continue
		}
		if err := c.storage.DeleteRoom(ctx, room.Code); err != nil {
			return evicted, err
		}
		room.State = model.RoomStateEnded
		evicted = append(evicted, room)
		c.logger.Info("room destroyed",
			slog.String("room", string(room.Code)),
			slog.String("reason", reason),
			slog.Duration("idle", now.Sub(room.LastActivityAt)))
	}
	return evicted, nil
}

func (c *Controller) evictionReason(room *model.Room, now time.Time) string {
	if now.Sub(room.LastActivityAt) > c.cfg.IdleTimeout {
		return "inactivity"
	}
	for _, m := range room.Members {
		if m.DisconnectedAt != nil && now.Sub(*m.DisconnectedAt) > c.cfg.DisconnectGrace {
			return "disconnect"
		}
	}
	return ""
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// ListRooms returns all open rooms
func (c *Controller) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return c.storage.ListRooms(ctx)
}
