package bot

import (
	"math"

	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

// MaxCandidates bounds how many positions a strategy samples per move
const MaxCandidates = 200

// Strategy defines how a bot chooses where to place its next stone
type Strategy interface {
	// ChoosePlacement returns a valid placement for player, or false if the
	// strategy could not find one
	ChoosePlacement(session model.GameSession, player model.PlayerID) (model.Placement, bool)
}

// candidate samples a point on the integer grid covering the play area
func candidate(rnd random.Random, rules model.Ruleset) model.Placement {
	span := int(math.Floor(rules.PlayAreaRadius - rules.StoneRadius))
	return model.Placement{
		X: float64(rnd.Intn(2*span+1) - span),
		Y: float64(rnd.Intn(2*span+1) - span),
	}
}

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(geo *geometry.Service, rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		"random":   NewRandomStrategy(geo, rnd),
		"cautious": NewCautiousStrategy(geo, rnd),
	}
}
