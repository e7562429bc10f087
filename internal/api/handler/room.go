package handler

import (
	"net/http"

	"github.com/mcoot/stonecluster/internal/api/response"
	"github.com/mcoot/stonecluster/internal/services/room"
)

// RoomHandler serves read-only views of relay rooms
type RoomHandler struct {
	rooms room.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.RoomList{Rooms: make([]response.Room, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Rooms = append(resp.Rooms, response.RoomFromModel(rm))
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, ok := roomCodeVar(w, r)
	if !ok {
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}
