package bot

import (
	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

const probeID model.StoneID = "bot-probe"

// CautiousStrategy avoids placements that would form a cluster, since every
// clustered stone is credited to the opponent. It falls back to any valid
// position when no safe one is found.
type CautiousStrategy struct {
	geometry *geometry.Service
	random   random.Random
}

// NewCautiousStrategy creates a new CautiousStrategy
func NewCautiousStrategy(geo *geometry.Service, rnd random.Random) *CautiousStrategy {
	return &CautiousStrategy{geometry: geo, random: rnd}
}

// ChoosePlacement implements Strategy
func (s *CautiousStrategy) ChoosePlacement(session model.GameSession, player model.PlayerID) (model.Placement, bool) {
	var (
		fallback model.Placement
		found    bool
	)
	for range MaxCandidates {
		p := candidate(s.random, s.geometry.Rules())
		if s.geometry.ValidatePlacement(p, session.Stones) != nil {
			continue
		}
		if s.safe(session, player, p) {
			return p, true
		}
		if !found {
			fallback, found = p, true
		}
	}
	return fallback, found
}

// safe reports whether placing p leaves the board without a cluster
func (s *CautiousStrategy) safe(session model.GameSession, player model.PlayerID, p model.Placement) bool {
	probe, err := model.NewStone(probeID, player, p, s.geometry.Rules().StoneRadius)
	if err != nil {
		return false
	}
	stones := append(session.ActiveStones(), probe)
	return len(s.geometry.FindClusters(stones)) == 0
}
