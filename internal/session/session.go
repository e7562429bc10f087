package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/ids"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/protocol"
	"github.com/mcoot/stonecluster/internal/services/game"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

// Phase is where the peer is in the room lifecycle
type Phase string

const (
	PhaseIdle    Phase = "idle"    // not in a room
	PhaseWaiting Phase = "waiting" // hosting, no opponent yet
	PhaseActive  Phase = "active"  // both seats taken
	PhaseEnded   Phase = "ended"   // opponent left or room closed
)

var (
	// ErrStopped is returned by calls made after Run has returned
	ErrStopped = errors.New("session stopped")
	// ErrNotActive is returned when acting outside an active game
	ErrNotActive = errors.New("no active game")
	// ErrRejoining is returned when acting while the seat is being resumed after a reconnect
	ErrRejoining = errors.New("rejoining room")
)

// Seat describes the local peer's place in its room
type Seat struct {
	Phase        Phase
	RoomCode     model.RoomCode
	PlayerID     model.PlayerID
	SeatToken    string
	OpponentName string
	// Rejoining is set from a reconnect until the relay confirms or refuses the seat
	Rejoining bool
}

type action struct {
	fn    func(ctx context.Context) error
	reply chan error
}

// Session is the networked peer. Run is its single event loop: local actions
// and relay messages are both applied there, in arrival order.
type Session struct {
	channel NetworkChannel
	clock   clock.Clock
	sink    game.PresentationSink
	logger  *slog.Logger

	actions chan action
	done    chan struct{}

	// Owned by the Run goroutine
	machine  *game.Machine
	seat     Seat
	clusters [][]model.StoneID
}

// New creates a Session speaking over channel. Placements are validated
// against geometry's ruleset, which both peers are expected to share.
func New(
	channel NetworkChannel,
	geometry *geometry.Service,
	ids ids.Generator,
	clock clock.Clock,
	sink game.PresentationSink,
	logger *slog.Logger,
) *Session {
	if sink == nil {
		sink = game.NopSink{}
	}
	s := &Session{
		channel: channel,
		clock:   clock,
		sink:    sink,
		logger:  logger.With(slog.String("component", "session")),
		actions: make(chan action),
		done:    make(chan struct{}),
		seat:    Seat{Phase: PhaseIdle},
	}
	s.machine = game.NewMachine(geometry, ids, clock, game.SinkFunc(s.observe), s.logger)
	return s
}

// observe forwards machine events and remembers the clusters each local
// placement produced so they can be replayed to the opponent
func (s *Session) observe(event model.Event) {
	if p, ok := event.Payload.(model.ClusterFormedPayload); ok {
		s.clusters = append(s.clusters, p.StoneIDs)
	}
	s.sink.Publish(event)
}

// Run processes local actions and relay messages until ctx is cancelled or
// the channel is lost, in which case it returns ErrConnectionLost
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	inbound := s.channel.Inbound()
	for {
		select {
		case a := <-s.actions:
			a.reply <- a.fn(ctx)

		case in, ok := <-inbound:
			if !ok {
				return s.lost()
			}
			if in.Reconnected {
				s.handleReconnected(ctx)
				continue
			}
			s.handleMessage(in.Data)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) lost() error {
	err := s.channel.Err()
	if err == nil {
		return nil
	}
	s.logger.Warn("relay connection lost", slog.String("error", err.Error()))
	s.publish(model.EventConnectionLost, nil)
	if !errors.Is(err, ErrConnectionLost) {
		err = fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return err
}

// do posts fn onto the loop and waits for its result
func (s *Session) do(ctx context.Context, fn func(ctx context.Context) error) error {
	a := action{fn: fn, reply: make(chan error, 1)}
	select {
	case s.actions <- a:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Host asks the relay for a new room with the local player as host
func (s *Session) Host(ctx context.Context, name string) error {
	return s.do(ctx, func(ctx context.Context) error {
		if s.seat.Phase != PhaseIdle && s.seat.Phase != PhaseEnded {
			return model.ErrAlreadyInRoom
		}
		return s.send(ctx, protocol.TypeCreateRoom, protocol.CreateRoom{Name: name})
	})
}

// Join asks the relay for the guest seat of room code
func (s *Session) Join(ctx context.Context, code model.RoomCode, name string) error {
	return s.do(ctx, func(ctx context.Context) error {
		if s.seat.Phase != PhaseIdle && s.seat.Phase != PhaseEnded {
			return model.ErrAlreadyInRoom
		}
		return s.send(ctx, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: string(code), Name: name})
	})
}

// Place applies a local placement optimistically and pushes the result to
// the opponent. Rejected placements return an error wrapping
// model.ErrInvalidMove and send nothing.
func (s *Session) Place(ctx context.Context, p model.Placement) error {
	return s.do(ctx, func(ctx context.Context) error {
		if err := s.checkActive(); err != nil {
			return err
		}

		s.clusters = nil
		state, err := s.machine.ApplyPlacement(s.seat.PlayerID, p)
		if err != nil {
			return err
		}
		clusters := s.clusters
		s.clusters = nil

		if err := s.send(ctx, protocol.TypePlaceStone, protocol.PlaceStone{
			X:              p.X,
			Y:              p.Y,
			OnEdge:         p.OnEdge,
			ActingPlayerID: int(s.seat.PlayerID),
			State:          protocol.GameStateFromModel(state),
		}); err != nil {
			return err
		}
		for _, cluster := range clusters {
			if err := s.send(ctx, protocol.TypeClusterOccurred, protocol.ClusterOccurred{
				StoneIDs:            protocol.StoneIDsFromModel(cluster),
				BeneficiaryPlayerID: int(s.seat.PlayerID.Opponent()),
			}); err != nil {
				return err
			}
		}
		if state.GameOver {
			return s.send(ctx, protocol.TypeGameOver, protocol.GameOver{WinnerID: int(*state.Winner)})
		}
		return nil
	})
}

func (s *Session) checkActive() error {
	switch {
	case s.seat.Phase != PhaseActive:
		return ErrNotActive
	case s.seat.Rejoining:
		return ErrRejoining
	}
	return nil
}

// RequestRematch asks the relay to reset the room's game
func (s *Session) RequestRematch(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		if err := s.checkActive(); err != nil {
			return err
		}
		return s.send(ctx, protocol.TypeRequestRematch, protocol.Empty{})
	})
}

// State returns a copy of the local game session
func (s *Session) State(ctx context.Context) (model.GameSession, error) {
	var out model.GameSession
	err := s.do(ctx, func(context.Context) error {
		out = s.machine.Session()
		return nil
	})
	return out, err
}

// Seat returns the local peer's seat
func (s *Session) Seat(ctx context.Context) (Seat, error) {
	var out Seat
	err := s.do(ctx, func(context.Context) error {
		out = s.seat
		return nil
	})
	return out, err
}

func (s *Session) send(ctx context.Context, t protocol.MessageType, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	return s.channel.Send(ctx, data)
}

func (s *Session) publish(t model.EventType, payload any) {
	s.sink.Publish(model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	})
}
