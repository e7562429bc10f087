package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/protocol"
)

func (h *Hub) handleMessage(ctx context.Context, c *Conn, data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		h.sendTo(c.id, protocol.TypeError, protocol.Error{Code: protocol.CodeInvalidMessage, Message: err.Error()})
		return
	}

	switch env.T {
	case protocol.TypeCreateRoom:
		err = h.handleCreateRoom(ctx, c, env)
	case protocol.TypeJoinRoom:
		err = h.handleJoinRoom(ctx, c, env)
	case protocol.TypeRejoinRoom:
		err = h.handleRejoinRoom(ctx, c, env)
	case protocol.TypePlaceStone:
		err = h.handlePlaceStone(ctx, c, env, data)
	case protocol.TypeClusterOccurred, protocol.TypeGameOver:
		err = h.handleRelayed(ctx, c, env, data)
	case protocol.TypeRequestRematch:
		err = h.handleRematch(ctx, c)
	default:
		h.sendTo(c.id, protocol.TypeError, protocol.Error{
			Code:    protocol.CodeInvalidMessage,
			Message: fmt.Sprintf("unknown message type %q", env.T),
		})
		return
	}

	if err != nil {
		h.sendError(c, err)
	}
}

// malformed marks payload decode failures so they surface as INVALID_MESSAGE
type malformed struct{ err error }

func (m malformed) Error() string { return m.err.Error() }
func (m malformed) Unwrap() error { return model.ErrInvalidSnapshot }

// roomCode normalises a client-supplied code; generated codes are upper case
func roomCode(id string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(id)))
}

func decode[T any](env protocol.Envelope) (T, error) {
	p, err := protocol.DecodePayload[T](env)
	if err != nil {
		return p, malformed{err}
	}
	return p, nil
}

func (h *Hub) handleCreateRoom(ctx context.Context, c *Conn, env protocol.Envelope) error {
	if _, seated := h.connRoom[c.id]; seated {
		return model.ErrAlreadyInRoom
	}
	req, err := decode[protocol.CreateRoom](env)
	if err != nil {
		return err
	}

	seat, err := h.rooms.CreateRoom(ctx, c.id, req.Name)
	if err != nil {
		return err
	}
	h.connRoom[c.id] = seat.Room.Code

	h.sendTo(c.id, protocol.TypeRoomCreated, protocol.RoomCreated{
		RoomID:    string(seat.Room.Code),
		PlayerID:  int(seat.PlayerID),
		SeatToken: seat.SeatToken,
	})
	return nil
}

func (h *Hub) handleJoinRoom(ctx context.Context, c *Conn, env protocol.Envelope) error {
	if _, seated := h.connRoom[c.id]; seated {
		return model.ErrAlreadyInRoom
	}
	req, err := decode[protocol.JoinRoom](env)
	if err != nil {
		return err
	}

	seat, err := h.rooms.JoinRoom(ctx, roomCode(req.RoomID), c.id, req.Name)
	if err != nil {
		return err
	}
	h.connRoom[c.id] = seat.Room.Code

	state := protocol.GameStateFromModel(seat.Room.Session)
	for _, m := range seat.Room.Members {
		opponent := seat.Room.Opponent(m.PlayerID)
		msg := protocol.GameStart{
			RoomID:   string(seat.Room.Code),
			PlayerID: int(m.PlayerID),
			State:    state,
		}
		if opponent != nil {
			msg.OpponentName = opponent.Name
		}
		if m.PlayerID == seat.PlayerID {
			msg.SeatToken = seat.SeatToken
		}
		h.sendTo(m.ConnectionID, protocol.TypeGameStart, msg)
	}

	h.logger.Info("game started", slog.String("room", string(seat.Room.Code)))
	return nil
}

func (h *Hub) handleRejoinRoom(ctx context.Context, c *Conn, env protocol.Envelope) error {
	if _, seated := h.connRoom[c.id]; seated {
		return model.ErrAlreadyInRoom
	}
	req, err := decode[protocol.RejoinRoom](env)
	if err != nil {
		return err
	}

	seat, err := h.rooms.RejoinRoom(ctx, roomCode(req.RoomID), model.PlayerID(req.PlayerID), req.SeatToken, c.id)
	if err != nil {
		return err
	}
	h.connRoom[c.id] = seat.Room.Code

	// The rejoiner catches up from the last snapshot either peer pushed
	msg := protocol.GameStart{
		RoomID:   string(seat.Room.Code),
		PlayerID: int(seat.PlayerID),
		State:    protocol.GameStateFromModel(seat.Room.Session),
	}
	if opponent := seat.Room.Opponent(seat.PlayerID); opponent != nil {
		msg.OpponentName = opponent.Name
	}
	h.sendTo(c.id, protocol.TypeGameStart, msg)
	return nil
}

func (h *Hub) handlePlaceStone(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	code, ok := h.connRoom[c.id]
	if !ok {
		return model.ErrNotInRoom
	}
	req, err := decode[protocol.PlaceStone](env)
	if err != nil {
		return err
	}
	state, err := req.State.ToModel()
	if err != nil {
		return err
	}

	room, err := h.rooms.AcceptPlacement(ctx, code, c.id, model.PlayerID(req.ActingPlayerID), state)
	if err != nil {
		return err
	}
	h.forward(room, c, raw)
	return nil
}

// handleRelayed forwards presentation messages after checking membership.
// Their content is trusted and never interpreted here.
func (h *Hub) handleRelayed(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	code, ok := h.connRoom[c.id]
	if !ok {
		return model.ErrNotInRoom
	}
	room, err := h.rooms.Touch(ctx, code, c.id)
	if err != nil {
		return err
	}
	h.logger.Debug("relaying message",
		slog.String("room", string(code)),
		slog.String("type", string(env.T)))
	h.forward(room, c, raw)
	return nil
}

func (h *Hub) handleRematch(ctx context.Context, c *Conn) error {
	code, ok := h.connRoom[c.id]
	if !ok {
		return model.ErrNotInRoom
	}
	room, err := h.rooms.Rematch(ctx, code, c.id)
	if err != nil {
		return err
	}
	msg := protocol.Rematch{State: protocol.GameStateFromModel(room.Session)}
	for _, m := range room.Members {
		if m.Connected() {
			h.sendTo(m.ConnectionID, protocol.TypeRematch, msg)
		}
	}
	return nil
}

// forward delivers the sender's original bytes to the other seat
func (h *Hub) forward(room *model.Room, from *Conn, raw []byte) {
	sender := room.GetMemberByConnection(from.id)
	if sender == nil {
		return
	}
	opponent := room.Opponent(sender.PlayerID)
	if opponent == nil || !opponent.Connected() {
		return
	}
	if target, ok := h.conns[opponent.ConnectionID]; ok {
		h.sendRaw(target, raw)
	}
}
