package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/game"
)

// MaxBotIterations is a safety limit for the ProcessBotMoves loop
const MaxBotIterations = 1000

// ErrNoPlacement is returned when a bot cannot find a valid position
var ErrNoPlacement = errors.New("bot found no valid placement")

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionPlace        BotActionType = "place"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction represents a single action taken by a bot during ProcessBotMoves
type BotAction struct {
	Type      BotActionType
	PlayerID  model.PlayerID
	Placement model.Placement
}

// Service drives bot-controlled seats of a local game
type Service struct {
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Strategies returns the names of the available strategies, sorted
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasStrategy reports whether name is a known strategy
func (s *Service) HasStrategy(name string) bool {
	_, ok := s.strategies[name]
	return ok
}

// ProcessBotMoves plays for every bot seat in turn until it is a human's
// move or the game ends. bots maps seats to strategy names.
// It returns all actions taken.
func (s *Service) ProcessBotMoves(machine game.MachineInterface, bots map[model.PlayerID]string) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		session := machine.Session()
		if session.GameOver {
			if len(actions) > 0 {
				actions = append(actions, BotAction{Type: ActionGameComplete, PlayerID: *session.Winner})
			}
			break
		}

		player := session.CurrentPlayer
		name, ok := bots[player]
		if !ok {
			break
		}
		strategy, ok := s.strategies[name]
		if !ok {
			return actions, fmt.Errorf("unknown bot strategy: %s", name)
		}

		p, ok := strategy.ChoosePlacement(session, player)
		if !ok {
			return actions, ErrNoPlacement
		}
		if _, err := machine.ApplyPlacement(player, p); err != nil {
			return actions, err
		}

		s.logger.Debug("bot placed stone",
			slog.Int("player_id", int(player)),
			slog.String("strategy", name),
			slog.Float64("x", p.X),
			slog.Float64("y", p.Y))
		actions = append(actions, BotAction{Type: ActionPlace, PlayerID: player, Placement: p})
	}

	return actions, nil
}
