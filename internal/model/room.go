package model

import "time"

// RoomCode is the 6 character code peers use to find a room
type RoomCode string

// ConnectionID identifies one transport connection to the relay
type ConnectionID string

// RoomState represents the lifecycle phase of a room
type RoomState string

const (
	RoomStateWaiting RoomState = "waiting" // host present, waiting for opponent
	RoomStateActive  RoomState = "active"  // both seats taken
	RoomStateEnded   RoomState = "ended"   // torn down; never persisted
)

// RoomMember is one occupied seat in a room
type RoomMember struct {
	ConnectionID   ConnectionID
	PlayerID       PlayerID
	Name           string
	SeatTokenHash  []byte
	JoinedAt       time.Time
	DisconnectedAt *time.Time // set while a dropped peer may still rejoin
}

// Connected reports whether the member currently has a live connection
func (m RoomMember) Connected() bool {
	return m.DisconnectedAt == nil
}

// Room is the relay's mailbox for two peers plus the last snapshot either pushed
type Room struct {
	Code           RoomCode
	State          RoomState
	Members        []RoomMember
	Session        GameSession
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// GetMember returns the member holding the given seat, or nil
func (r *Room) GetMember(playerID PlayerID) *RoomMember {
	for i := range r.Members {
		if r.Members[i].PlayerID == playerID {
			return &r.Members[i]
		}
	}
	return nil
}

// GetMemberByConnection returns the member using the given connection, or nil
func (r *Room) GetMemberByConnection(connID ConnectionID) *RoomMember {
	for i := range r.Members {
		if r.Members[i].ConnectionID == connID {
			return &r.Members[i]
		}
	}
	return nil
}

// Opponent returns the member in the other seat, or nil
func (r *Room) Opponent(playerID PlayerID) *RoomMember {
	return r.GetMember(playerID.Opponent())
}

// IsFull reports whether both seats are taken
func (r *Room) IsFull() bool {
	return len(r.Members) >= NumPlayers
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	out := *r
	out.Members = make([]RoomMember, len(r.Members))
	for i, m := range r.Members {
		out.Members[i] = m
		out.Members[i].SeatTokenHash = append([]byte(nil), m.SeatTokenHash...)
		if m.DisconnectedAt != nil {
			t := *m.DisconnectedAt
			out.Members[i].DisconnectedAt = &t
		}
	}
	out.Session = r.Session.Clone()
	return &out
}
