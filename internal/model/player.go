package model

import "fmt"

// PlayerID is the seat index of a player: 0 for the host, 1 for the guest
type PlayerID int

const (
	PlayerHost  PlayerID = 0
	PlayerGuest PlayerID = 1
)

// NumPlayers is fixed; the game is strictly two-player
const NumPlayers = 2

// Valid reports whether the id names one of the two seats
func (id PlayerID) Valid() bool {
	return id == PlayerHost || id == PlayerGuest
}

// Opponent returns the other seat
func (id PlayerID) Opponent() PlayerID {
	return (id + 1) % NumPlayers
}

func (id PlayerID) String() string {
	return fmt.Sprintf("player %d", int(id))
}

// Player represents one of the two participants in a game session
type Player struct {
	ID         PlayerID
	StonesLeft int
	Name       string
}
