package model

import "fmt"

// ClusterScope decides which stones may link into a cluster
type ClusterScope string

const (
	ScopeAnyOwner  ClusterScope = "any_owner"  // stones of both players link
	ScopeSameOwner ClusterScope = "same_owner" // only stones with the same owner link
)

// CollisionMode decides how close a new stone may be placed to an existing one
type CollisionMode string

const (
	// CollisionStrict rejects any physical overlap (distance < 2r)
	CollisionStrict CollisionMode = "strict"
	// CollisionLoose only rejects near-coincident stones (distance < LooseCollisionFactor*r);
	// closer stones are expected to cluster instead
	CollisionLoose CollisionMode = "loose"
)

// LooseCollisionFactor is the collision distance, in stone radii, in loose mode
const LooseCollisionFactor = 0.25

// Ruleset holds the geometric and clustering parameters of a session
type Ruleset struct {
	StoneRadius        float64
	PlayAreaRadius     float64
	ClusterFactor      float64 // base clustering threshold in stone radii
	BothEdgeMultiplier float64
	OneEdgeMultiplier  float64
	Scope              ClusterScope
	Collision          CollisionMode
}

// DefaultRuleset returns the standard ruleset
func DefaultRuleset() Ruleset {
	return Ruleset{
		StoneRadius:        20,
		PlayAreaRadius:     500,
		ClusterFactor:      1.8,
		BothEdgeMultiplier: 1.2,
		OneEdgeMultiplier:  1.1,
		Scope:              ScopeAnyOwner,
		Collision:          CollisionLoose,
	}
}

// CollisionDistance returns the minimum centre distance between a new stone
// and any stone still on the board
func (r Ruleset) CollisionDistance() float64 {
	if r.Collision == CollisionStrict {
		return 2 * r.StoneRadius
	}
	return LooseCollisionFactor * r.StoneRadius
}

// Validate reports whether the ruleset can drive a game
func (r Ruleset) Validate() error {
	switch {
	case r.StoneRadius <= 0:
		return fmt.Errorf("%w: stone radius must be positive", ErrInvalidRuleset)
	case r.PlayAreaRadius <= r.StoneRadius:
		return fmt.Errorf("%w: play area must be larger than a stone", ErrInvalidRuleset)
	case r.ClusterFactor <= 0 || r.BothEdgeMultiplier <= 0 || r.OneEdgeMultiplier <= 0:
		return fmt.Errorf("%w: cluster factors must be positive", ErrInvalidRuleset)
	case r.Scope != ScopeAnyOwner && r.Scope != ScopeSameOwner:
		return fmt.Errorf("%w: unknown cluster scope %q", ErrInvalidRuleset, r.Scope)
	case r.Collision != CollisionStrict && r.Collision != CollisionLoose:
		return fmt.Errorf("%w: unknown collision mode %q", ErrInvalidRuleset, r.Collision)
	}
	return nil
}
