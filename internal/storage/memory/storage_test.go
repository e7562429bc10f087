package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stonecluster/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newRoom(code string) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		Code:  model.RoomCode(code),
		State: model.RoomStateWaiting,
		Members: []model.RoomMember{
			{ConnectionID: "conn-1", PlayerID: model.PlayerHost, Name: "Ann", JoinedAt: now},
		},
		Session:        model.NewGameSession("Ann"),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := newRoom("ABC234")

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room, retrieved)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestStoredRoomIsIsolatedFromCaller() {
	room := newRoom("ABC234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	room.Members[0].Name = "changed"
	retrieved, _ := s.storage.GetRoom(s.ctx, "ABC234")
	retrieved.Session.Players[0].StonesLeft = 0

	again, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal("Ann", again.Members[0].Name)
	s.Equal(12, again.Session.Players[0].StonesLeft)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, newRoom("ABC234")))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))

	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListRoomsSortedByCode() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, newRoom("ZZZ222")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, newRoom("AAA222")))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomCode("AAA222"), rooms[0].Code)
	s.Equal(model.RoomCode("ZZZ222"), rooms[1].Code)
}
