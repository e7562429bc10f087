package session

import (
	"context"
	"log/slog"

	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/protocol"
)

func (s *Session) handleMessage(data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		s.logger.Warn("dropping undecodable message", slog.String("error", err.Error()))
		return
	}

	switch env.T {
	case protocol.TypeRoomCreated:
		err = s.onRoomCreated(env)
	case protocol.TypeGameStart:
		err = s.onGameStart(env)
	case protocol.TypePlaceStone:
		err = s.onPlaceStone(env)
	case protocol.TypeClusterOccurred:
		err = s.onClusterOccurred(env)
	case protocol.TypeGameOver:
		// The preceding snapshot already carried the outcome
		s.logger.Debug("opponent reported game over")
	case protocol.TypeRematch:
		err = s.onRematch(env)
	case protocol.TypeOpponentDisconnected:
		s.seat.Phase = PhaseEnded
		s.publish(model.EventOpponentDisconnected, nil)
	case protocol.TypeRoomClosed:
		err = s.onRoomClosed(env)
	case protocol.TypeError:
		err = s.onError(env)
	default:
		s.logger.Warn("ignoring unknown message type", slog.String("type", string(env.T)))
	}

	if err != nil {
		s.logger.Warn("failed to apply relay message",
			slog.String("type", string(env.T)),
			slog.String("error", err.Error()))
	}
}

func (s *Session) onRoomCreated(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.RoomCreated](env)
	if err != nil {
		return err
	}
	s.seat = Seat{
		Phase:     PhaseWaiting,
		RoomCode:  model.RoomCode(p.RoomID),
		PlayerID:  model.PlayerID(p.PlayerID),
		SeatToken: p.SeatToken,
	}
	s.logger.Info("hosting room", slog.String("room", p.RoomID))
	s.publish(model.EventRoomCreated, model.RoomCreatedPayload{Code: s.seat.RoomCode, PlayerID: s.seat.PlayerID})
	return nil
}

func (s *Session) onGameStart(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.GameStart](env)
	if err != nil {
		return err
	}
	state, err := p.State.ToModel()
	if err != nil {
		return err
	}

	s.seat.Phase = PhaseActive
	s.seat.Rejoining = false
	s.seat.RoomCode = model.RoomCode(p.RoomID)
	s.seat.PlayerID = model.PlayerID(p.PlayerID)
	s.seat.OpponentName = p.OpponentName
	if p.SeatToken != "" {
		s.seat.SeatToken = p.SeatToken
	}

	s.publish(model.EventGameStarted, model.GameStartedPayload{
		Code:         s.seat.RoomCode,
		PlayerID:     s.seat.PlayerID,
		OpponentName: p.OpponentName,
	})
	return s.machine.Replace(state)
}

// onPlaceStone adopts the opponent's snapshot wholesale. Clustering is
// never recomputed on this side.
func (s *Session) onPlaceStone(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.PlaceStone](env)
	if err != nil {
		return err
	}
	state, err := p.State.ToModel()
	if err != nil {
		return err
	}
	return s.machine.Replace(state)
}

func (s *Session) onClusterOccurred(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.ClusterOccurred](env)
	if err != nil {
		return err
	}
	s.publish(model.EventClusterFormed, model.ClusterFormedPayload{
		StoneIDs:    protocol.StoneIDsToModel(p.StoneIDs),
		Beneficiary: model.PlayerID(p.BeneficiaryPlayerID),
	})
	return nil
}

func (s *Session) onRematch(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.Rematch](env)
	if err != nil {
		return err
	}
	state, err := p.State.ToModel()
	if err != nil {
		return err
	}
	s.seat.Phase = PhaseActive
	return s.machine.Replace(state)
}

func (s *Session) onRoomClosed(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.RoomClosed](env)
	if err != nil {
		return err
	}
	s.seat.Phase = PhaseEnded
	s.publish(model.EventRoomClosed, model.RoomClosedPayload{Reason: p.Reason})
	return nil
}

// onError surfaces a relay rejection. Optimistic local placements are not
// rolled back; a refused rejoin means the room is gone and ends the game.
func (s *Session) onError(env protocol.Envelope) error {
	p, err := protocol.DecodePayload[protocol.Error](env)
	if err != nil {
		return err
	}
	s.logger.Warn("relay rejected request",
		slog.String("code", p.Code),
		slog.String("message", p.Message))
	s.publish(model.EventRelayError, model.RelayErrorPayload{Code: p.Code, Message: p.Message})
	if s.seat.Rejoining {
		s.endSeat()
	}
	return nil
}

// handleReconnected resumes the seat on the new connection. Without a held
// seat there is nothing to resume and the game is over for this peer.
func (s *Session) handleReconnected(ctx context.Context) {
	switch {
	case s.seat.Phase == PhaseWaiting:
		s.endSeat()
		return
	case s.seat.Phase != PhaseActive:
		return
	case s.seat.SeatToken == "":
		s.endSeat()
		return
	}

	s.logger.Info("rejoining room", slog.String("room", string(s.seat.RoomCode)))
	s.seat.Rejoining = true
	err := s.send(ctx, protocol.TypeRejoinRoom, protocol.RejoinRoom{
		RoomID:    string(s.seat.RoomCode),
		PlayerID:  int(s.seat.PlayerID),
		SeatToken: s.seat.SeatToken,
	})
	if err != nil {
		s.logger.Warn("rejoin failed", slog.String("error", err.Error()))
		s.endSeat()
	}
}

// endSeat drops the room after the link to it was lost for good
func (s *Session) endSeat() {
	s.seat.Phase = PhaseEnded
	s.seat.Rejoining = false
	s.publish(model.EventRoomClosed, model.RoomClosedPayload{Reason: "disconnected"})
}
