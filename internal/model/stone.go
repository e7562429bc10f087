package model

import "fmt"

// StoneID is an opaque identifier assigned once when a placement is accepted
type StoneID string

// Placement is a requested stone position in board-centred coordinates
type Placement struct {
	X      float64
	Y      float64
	OnEdge bool // stone stood on its edge, which widens its clustering reach
}

// Stone is a stone that has been accepted onto the board
type Stone struct {
	ID        StoneID
	X         float64
	Y         float64
	Radius    float64
	Owner     PlayerID
	Clustered bool
	OnEdge    bool
}

// NewStone builds a stone from an accepted placement. It is the only
// constructor for stones; callers never assemble Stone literals from wire data.
func NewStone(id StoneID, owner PlayerID, p Placement, radius float64) (Stone, error) {
	if id == "" {
		return Stone{}, fmt.Errorf("stone id is empty")
	}
	if !owner.Valid() {
		return Stone{}, fmt.Errorf("%w: %d", ErrUnknownPlayer, int(owner))
	}
	if radius <= 0 {
		return Stone{}, ErrInvalidRadius
	}
	return Stone{
		ID:     id,
		X:      p.X,
		Y:      p.Y,
		Radius: radius,
		Owner:  owner,
		OnEdge: p.OnEdge,
	}, nil
}
