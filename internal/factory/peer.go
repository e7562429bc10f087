package factory

import (
	"io"
	"log/slog"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/ids"
	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/bot"
	"github.com/mcoot/stonecluster/internal/services/game"
	"github.com/mcoot/stonecluster/internal/services/geometry"
	"github.com/mcoot/stonecluster/internal/session"
)

// Peer wires the client-side pieces: the rules engine and its clock and ids
type Peer struct {
	Clock    clock.Clock
	IDs      ids.Generator
	Random   random.Random
	Geometry *geometry.Service
	Logger   *slog.Logger
}

// NewPeer creates a Peer playing by rules. A nil logger discards output.
func NewPeer(rules model.Ruleset, logger *slog.Logger) (*Peer, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if rules == (model.Ruleset{}) {
		rules = model.DefaultRuleset()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Peer{
		Clock:    clock.New(),
		IDs:      ids.New(),
		Random:   random.New(),
		Geometry: geometry.New(rules),
		Logger:   logger,
	}, nil
}

// NewMachine creates a standalone game for hot-seat play
func (p *Peer) NewMachine(sink game.PresentationSink, names ...string) *game.Machine {
	return game.NewMachine(p.Geometry, p.IDs, p.Clock, sink, p.Logger, names...)
}

// NewSession creates a networked session speaking over channel
func (p *Peer) NewSession(channel session.NetworkChannel, sink game.PresentationSink) *session.Session {
	return session.New(channel, p.Geometry, p.IDs, p.Clock, sink, p.Logger)
}

// NewBots creates a bot service with the built-in strategies
func (p *Peer) NewBots() *bot.Service {
	return bot.NewService(bot.DefaultStrategies(p.Geometry, p.Random), p.Logger)
}
