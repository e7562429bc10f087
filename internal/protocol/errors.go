package protocol

import (
	"errors"

	"github.com/mcoot/stonecluster/internal/model"
)

// Wire error codes
const (
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeAlreadyInRoom  = "ALREADY_IN_ROOM"
	CodeRoomNotActive  = "ROOM_NOT_ACTIVE"
	CodeInvalidSeat    = "INVALID_SEAT"
	CodeGameOver       = "GAME_OVER"
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// ErrorFromErr maps a model error onto a wire error
func ErrorFromErr(err error) Error {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return Error{CodeRoomNotFound, "Room not found"}
	case errors.Is(err, model.ErrRoomFull):
		return Error{CodeRoomFull, "Room is full"}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return Error{CodeNotYourTurn, "Not your turn"}
	case errors.Is(err, model.ErrNotInRoom):
		return Error{CodeNotInRoom, "Not in a room"}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return Error{CodeAlreadyInRoom, "Already in a room"}
	case errors.Is(err, model.ErrRoomNotActive):
		return Error{CodeRoomNotActive, "No game in progress"}
	case errors.Is(err, model.ErrInvalidSeat), errors.Is(err, model.ErrSeatOccupied):
		return Error{CodeInvalidSeat, "Seat cannot be resumed"}
	case errors.Is(err, model.ErrGameOver):
		return Error{CodeGameOver, "Game is already over"}
	case errors.Is(err, model.ErrInvalidSnapshot), errors.Is(err, model.ErrInvalidRadius), errors.Is(err, model.ErrUnknownPlayer):
		return Error{CodeInvalidMessage, "Malformed game state"}
	default:
		return Error{CodeInternalError, "Internal error"}
	}
}

// Err maps a wire error back onto the matching model error, if any
func (e Error) Err() error {
	switch e.Code {
	case CodeRoomNotFound:
		return model.ErrRoomNotFound
	case CodeRoomFull:
		return model.ErrRoomFull
	case CodeNotYourTurn:
		return model.ErrNotPlayerTurn
	case CodeNotInRoom:
		return model.ErrNotInRoom
	case CodeAlreadyInRoom:
		return model.ErrAlreadyInRoom
	case CodeRoomNotActive:
		return model.ErrRoomNotActive
	case CodeInvalidSeat:
		return model.ErrInvalidSeat
	case CodeGameOver:
		return model.ErrGameOver
	default:
		return errors.New(e.Message)
	}
}
