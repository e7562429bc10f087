package game

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/ids"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

// MachineInterface is the surface the session layer drives
type MachineInterface interface {
	ApplyPlacement(playerID model.PlayerID, p model.Placement) (model.GameSession, error)
	ApplyClusterResolution(stoneIDs []model.StoneID) model.GameSession
	Reset() model.GameSession
	Replace(session model.GameSession) error
	Session() model.GameSession
}

// Machine owns one authoritative GameSession and its transitions.
// It is not safe for concurrent use; a single event loop drives it.
type Machine struct {
	session  model.GameSession
	geometry *geometry.Service
	ids      ids.Generator
	clock    clock.Clock
	sink     PresentationSink
	logger   *slog.Logger
}

var _ MachineInterface = (*Machine)(nil)

// NewMachine creates a Machine in the canonical initial state
func NewMachine(
	geometry *geometry.Service,
	ids ids.Generator,
	clock clock.Clock,
	sink PresentationSink,
	logger *slog.Logger,
	names ...string,
) *Machine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Machine{
		session:  model.NewGameSession(names...),
		geometry: geometry,
		ids:      ids,
		clock:    clock,
		sink:     sink,
		logger:   logger,
	}
}

// Session returns a copy of the current session
func (m *Machine) Session() model.GameSession {
	return m.session.Clone()
}

// Rules returns the ruleset placements are validated against
func (m *Machine) Rules() model.Ruleset {
	return m.geometry.Rules()
}

// ApplyPlacement places a stone for playerID, resolves any clusters it causes,
// checks for a winner and advances the turn. A rejected placement returns an
// error wrapping model.ErrInvalidMove and leaves the session unchanged.
func (m *Machine) ApplyPlacement(playerID model.PlayerID, p model.Placement) (model.GameSession, error) {
	if err := m.checkPlacement(playerID, p); err != nil {
		m.logger.Debug("placement rejected",
			slog.Int("player_id", int(playerID)),
			slog.Float64("x", p.X),
			slog.Float64("y", p.Y),
			slog.String("reason", err.Error()))
		return m.Session(), fmt.Errorf("%w: %w", model.ErrInvalidMove, err)
	}

	st, err := model.NewStone(model.StoneID(m.ids.New()), playerID, p, m.geometry.Rules().StoneRadius)
	if err != nil {
		return m.Session(), fmt.Errorf("%w: %w", model.ErrInvalidMove, err)
	}

	next := m.session.Clone()
	next.Stones = append(next.Stones, st)
	next.Players[playerID].StonesLeft--

	beneficiary := playerID.Opponent()
	clusters := m.geometry.FindClusters(next.Stones)
	for _, cluster := range clusters {
		next.Players[beneficiary].StonesLeft += len(markClustered(&next, cluster))
	}

	checkWinner(&next)
	if !next.GameOver {
		next.CurrentPlayer = next.CurrentPlayer.Opponent()
	}
	m.session = next

	m.logger.Debug("stone placed",
		slog.String("stone_id", string(st.ID)),
		slog.Int("player_id", int(playerID)),
		slog.Int("clusters", len(clusters)))

	m.publish(model.EventStateReplaced, model.StateReplacedPayload{Session: m.Session()})
	for _, cluster := range clusters {
		m.publish(model.EventClusterFormed, model.ClusterFormedPayload{StoneIDs: cluster, Beneficiary: beneficiary})
	}
	m.publishOutcome()

	return m.Session(), nil
}

func (m *Machine) checkPlacement(playerID model.PlayerID, p model.Placement) error {
	if m.session.GameOver {
		return model.ErrGameOver
	}
	if !playerID.Valid() {
		return model.ErrUnknownPlayer
	}
	if playerID != m.session.CurrentPlayer {
		return model.ErrNotPlayerTurn
	}
	if m.session.Players[playerID].StonesLeft <= 0 {
		return model.ErrNoStonesLeft
	}
	return m.geometry.ValidatePlacement(p, m.session.Stones)
}

// ApplyClusterResolution marks the given stones clustered and credits them to
// the opponent of the player who placed the most recent stone. Stones that are
// unknown or already clustered are skipped, so replaying a resolution is a no-op.
// It serves peers that receive a cluster_occurred replay without a snapshot;
// a networked Session adopts the snapshot instead and never calls it.
func (m *Machine) ApplyClusterResolution(stoneIDs []model.StoneID) model.GameSession {
	placer, ok := m.session.LastPlacer()
	if !ok {
		return m.Session()
	}

	next := m.session.Clone()
	applied := markClustered(&next, stoneIDs)
	if len(applied) == 0 {
		return m.Session()
	}
	beneficiary := placer.Opponent()
	next.Players[beneficiary].StonesLeft += len(applied)

	wasOver := next.GameOver
	checkWinner(&next)
	m.session = next

	m.publish(model.EventStateReplaced, model.StateReplacedPayload{Session: m.Session()})
	m.publish(model.EventClusterFormed, model.ClusterFormedPayload{StoneIDs: applied, Beneficiary: beneficiary})
	if next.GameOver && !wasOver {
		m.publish(model.EventGameEnded, model.GameEndedPayload{Winner: *next.Winner})
	}
	return m.Session()
}

// Reset replaces the session with the canonical initial state, keeping names
func (m *Machine) Reset() model.GameSession {
	m.session = model.NewGameSession(m.session.Players[0].Name, m.session.Players[1].Name)
	m.logger.Debug("session reset")

	m.publish(model.EventStateReplaced, model.StateReplacedPayload{Session: m.Session()})
	m.publish(model.EventTurnChanged, model.TurnChangedPayload{Current: m.session.CurrentPlayer})
	return m.Session()
}

// Replace overwrites the session wholesale with a snapshot received from the
// peer that produced it. Snapshots breaking the stone conservation rules are
// refused.
func (m *Machine) Replace(session model.GameSession) error {
	if err := session.CheckConservation(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidSnapshot, err)
	}

	prev := m.session
	m.session = session.Clone()

	m.publish(model.EventStateReplaced, model.StateReplacedPayload{Session: m.Session()})
	switch {
	case m.session.GameOver && !prev.GameOver:
		m.publish(model.EventGameEnded, model.GameEndedPayload{Winner: *m.session.Winner})
	case !m.session.GameOver && m.session.CurrentPlayer != prev.CurrentPlayer:
		m.publish(model.EventTurnChanged, model.TurnChangedPayload{Current: m.session.CurrentPlayer})
	}
	return nil
}

func (m *Machine) publishOutcome() {
	if m.session.GameOver {
		m.logger.Info("game ended", slog.Int("winner", int(*m.session.Winner)))
		m.publish(model.EventGameEnded, model.GameEndedPayload{Winner: *m.session.Winner})
		return
	}
	m.publish(model.EventTurnChanged, model.TurnChangedPayload{Current: m.session.CurrentPlayer})
}

func (m *Machine) publish(t model.EventType, payload any) {
	m.sink.Publish(model.Event{
		Type:      t,
		Timestamp: m.clock.Now(),
		Payload:   payload,
	})
}

// markClustered flags the listed stones and returns the ids that changed
func markClustered(s *model.GameSession, stoneIDs []model.StoneID) []model.StoneID {
	var applied []model.StoneID
	for _, id := range stoneIDs {
		idx := s.StoneIndex(id)
		if idx < 0 || s.Stones[idx].Clustered {
			continue
		}
		s.Stones[idx].Clustered = true
		applied = append(applied, id)
	}
	return applied
}

// checkWinner ends the game as soon as any player's reserve is empty
func checkWinner(s *model.GameSession) {
	if s.GameOver {
		return
	}
	for _, p := range s.Players {
		if p.StonesLeft == 0 {
			winner := p.ID
			s.GameOver = true
			s.Winner = &winner
			return
		}
	}
}
