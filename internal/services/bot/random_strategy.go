package bot

import (
	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

// RandomStrategy places at a random valid position
type RandomStrategy struct {
	geometry *geometry.Service
	random   random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(geo *geometry.Service, rnd random.Random) *RandomStrategy {
	return &RandomStrategy{geometry: geo, random: rnd}
}

// ChoosePlacement returns the first sampled position that passes validation
func (s *RandomStrategy) ChoosePlacement(session model.GameSession, _ model.PlayerID) (model.Placement, bool) {
	for range MaxCandidates {
		p := candidate(s.random, s.geometry.Rules())
		if s.geometry.ValidatePlacement(p, session.Stones) == nil {
			return p, true
		}
	}
	return model.Placement{}, false
}
