package model

import "fmt"

// StonesPerPlayer is the initial allotment for each player
const StonesPerPlayer = 12

// TotalStones is conserved across every transition of a session
const TotalStones = NumPlayers * StonesPerPlayer

// GameSession is the authoritative state of one match
type GameSession struct {
	Players       [NumPlayers]Player
	CurrentPlayer PlayerID
	Stones        []Stone
	GameOver      bool
	Winner        *PlayerID // nil until GameOver
}

// NewGameSession returns the canonical initial state. Names are optional and
// assigned to seats in order.
func NewGameSession(names ...string) GameSession {
	var s GameSession
	for i := range s.Players {
		s.Players[i] = Player{ID: PlayerID(i), StonesLeft: StonesPerPlayer}
		if i < len(names) {
			s.Players[i].Name = names[i]
		}
	}
	s.Stones = []Stone{}
	return s
}

// Clone returns a deep copy safe to hand to other goroutines
func (s GameSession) Clone() GameSession {
	out := s
	out.Stones = make([]Stone, len(s.Stones))
	copy(out.Stones, s.Stones)
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	return out
}

// ActiveStones returns the stones still on the board
func (s GameSession) ActiveStones() []Stone {
	active := make([]Stone, 0, len(s.Stones))
	for _, st := range s.Stones {
		if !st.Clustered {
			active = append(active, st)
		}
	}
	return active
}

// StoneIndex returns the index of the stone with the given id, or -1
func (s GameSession) StoneIndex(id StoneID) int {
	for i := range s.Stones {
		if s.Stones[i].ID == id {
			return i
		}
	}
	return -1
}

// LastPlacer returns the owner of the most recently placed stone
func (s GameSession) LastPlacer() (PlayerID, bool) {
	if len(s.Stones) == 0 {
		return 0, false
	}
	return s.Stones[len(s.Stones)-1].Owner, true
}

// CheckConservation verifies reserves plus board stones still add up to
// TotalStones and that the game-over flags agree with the reserves.
func (s GameSession) CheckConservation() error {
	total := len(s.ActiveStones())
	zeroes := 0
	for _, p := range s.Players {
		if p.StonesLeft < 0 {
			return fmt.Errorf("%s has negative reserve %d", p.ID, p.StonesLeft)
		}
		if p.StonesLeft == 0 {
			zeroes++
		}
		total += p.StonesLeft
	}
	if total != TotalStones {
		return fmt.Errorf("stone total is %d, want %d", total, TotalStones)
	}
	if zeroes > 1 {
		return fmt.Errorf("both players have an empty reserve")
	}
	if s.GameOver != (zeroes == 1) {
		return fmt.Errorf("game over flag %t disagrees with reserves", s.GameOver)
	}
	if s.GameOver != (s.Winner != nil) {
		return fmt.Errorf("winner set without game over")
	}
	return nil
}
