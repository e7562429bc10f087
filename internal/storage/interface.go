package storage

import (
	"context"

	"github.com/mcoot/stonecluster/internal/model"
)

// Storage defines the interface for room persistence. Rooms are ephemeral;
// implementations may expire them on their own.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}
