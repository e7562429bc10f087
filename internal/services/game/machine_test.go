package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stonecluster/internal/dependencies/mocks"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/geometry"
	"github.com/mcoot/stonecluster/internal/testutil"
)

type MachineSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	events  []model.Event
	machine *Machine
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.events = nil
	s.machine = s.newMachine(model.DefaultRuleset())
}

func (s *MachineSuite) newMachine(rules model.Ruleset) *Machine {
	sink := SinkFunc(func(e model.Event) { s.events = append(s.events, e) })
	return NewMachine(geometry.New(rules), mocks.NewMockIDs("stone"), s.clock, sink, testutil.NopLogger(), "Ann", "Bob")
}

func (s *MachineSuite) place(playerID model.PlayerID, x, y float64) model.GameSession {
	session, err := s.machine.ApplyPlacement(playerID, model.Placement{X: x, Y: y})
	s.Require().NoError(err)
	return session
}

func (s *MachineSuite) eventTypes() []model.EventType {
	types := make([]model.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

func (s *MachineSuite) assertInitial(session model.GameSession) {
	s.Equal(12, session.Players[0].StonesLeft)
	s.Equal(12, session.Players[1].StonesLeft)
	s.Empty(session.Stones)
	s.Equal(model.PlayerHost, session.CurrentPlayer)
	s.False(session.GameOver)
	s.Nil(session.Winner)
}

func (s *MachineSuite) TestNewMachineStartsInInitialState() {
	session := s.machine.Session()
	s.assertInitial(session)
	s.Equal("Ann", session.Players[0].Name)
	s.Equal("Bob", session.Players[1].Name)
}

// Placement tests

func (s *MachineSuite) TestPlacementDecrementsAndAdvancesTurn() {
	session := s.place(0, 0, 0)

	s.Len(session.Stones, 1)
	s.Equal(model.StoneID("stone-1"), session.Stones[0].ID)
	s.Equal(model.PlayerHost, session.Stones[0].Owner)
	s.InDelta(20.0, session.Stones[0].Radius, 1e-9)
	s.Equal(11, session.Players[0].StonesLeft)
	s.Equal(12, session.Players[1].StonesLeft)
	s.Equal(model.PlayerGuest, session.CurrentPlayer)
}

func (s *MachineSuite) TestPlacementEmitsSnapshotThenTurnChange() {
	s.place(0, 0, 0)

	s.Equal([]model.EventType{model.EventStateReplaced, model.EventTurnChanged}, s.eventTypes())
	s.Equal(model.TurnChangedPayload{Current: model.PlayerGuest}, s.events[1].Payload)
	s.Equal(s.clock.Now(), s.events[0].Timestamp)
}

func (s *MachineSuite) TestSimpleClusterCreditsOpponent() {
	s.place(0, 0, 0)
	s.place(1, 300, 300)
	s.events = nil

	session := s.place(0, 5, 5)

	s.Equal(10, session.Players[0].StonesLeft)
	s.Equal(13, session.Players[1].StonesLeft)
	s.Equal(model.PlayerGuest, session.CurrentPlayer)
	s.True(session.Stones[0].Clustered)
	s.False(session.Stones[1].Clustered)
	s.True(session.Stones[2].Clustered)
	s.Len(session.ActiveStones(), 1)
	s.NoError(session.CheckConservation())

	s.Equal([]model.EventType{model.EventStateReplaced, model.EventClusterFormed, model.EventTurnChanged}, s.eventTypes())
	s.Equal(model.ClusterFormedPayload{
		StoneIDs:    []model.StoneID{"stone-1", "stone-3"},
		Beneficiary: model.PlayerGuest,
	}, s.events[1].Payload)
}

func (s *MachineSuite) TestClusterIncludesOpponentStonesByDefault() {
	s.place(0, 0, 0)
	session := s.place(1, 20, 0)

	s.Equal(13, session.Players[0].StonesLeft)
	s.Equal(11, session.Players[1].StonesLeft)
	s.Empty(session.ActiveStones())
}

func (s *MachineSuite) TestSameOwnerScopeIgnoresOpponentStones() {
	rules := model.DefaultRuleset()
	rules.Scope = model.ScopeSameOwner
	s.machine = s.newMachine(rules)

	s.place(0, 0, 0)
	session := s.place(1, 20, 0)

	s.Equal(11, session.Players[0].StonesLeft)
	s.Equal(11, session.Players[1].StonesLeft)
	s.Len(session.ActiveStones(), 2)
}

func (s *MachineSuite) TestBridgingPlacementResolvesWholeGroup() {
	s.place(0, 0, 0)
	s.place(1, 60, 0)
	session := s.place(0, 30, 0)

	// the new stone links both earlier stones, so all three go to the opponent
	s.Equal(10, session.Players[0].StonesLeft)
	s.Equal(14, session.Players[1].StonesLeft)
	s.Empty(session.ActiveStones())
	s.NoError(session.CheckConservation())
}

func (s *MachineSuite) TestEdgeStoneReachesFurther() {
	s.place(0, 0, 0)
	session, err := s.machine.ApplyPlacement(1, model.Placement{X: 38, Y: 0, OnEdge: true})
	s.Require().NoError(err)

	s.True(session.Stones[1].OnEdge)
	s.Empty(session.ActiveStones())
	s.Equal(13, session.Players[0].StonesLeft)
}

// Rejection tests

func (s *MachineSuite) TestOutOfTurnPlacementRejected() {
	before := s.machine.Session()

	_, err := s.machine.ApplyPlacement(1, model.Placement{X: 0, Y: 0})

	s.ErrorIs(err, model.ErrInvalidMove)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	s.Equal(before, s.machine.Session())
	s.Empty(s.events)
}

func (s *MachineSuite) TestOutOfBoundsPlacementRejected() {
	_, err := s.machine.ApplyPlacement(0, model.Placement{X: 490, Y: 0})

	s.ErrorIs(err, model.ErrInvalidMove)
	s.ErrorIs(err, model.ErrOutOfBounds)
	s.assertInitial(s.machine.Session())
}

func (s *MachineSuite) TestOverlappingPlacementRejected() {
	s.place(0, 0, 0)
	before := s.machine.Session()

	_, err := s.machine.ApplyPlacement(1, model.Placement{X: 1, Y: 1})

	s.ErrorIs(err, model.ErrOverlap)
	s.Equal(before, s.machine.Session())
}

func (s *MachineSuite) TestUnknownPlayerRejected() {
	_, err := s.machine.ApplyPlacement(2, model.Placement{X: 0, Y: 0})
	s.ErrorIs(err, model.ErrInvalidMove)
}

// Win tests

// spacedPoint returns board positions 80 units apart, none of which cluster
func spacedPoint(i int) (float64, float64) {
	return -300 + float64(i%8)*80, -120 + float64(i/8)*80
}

func (s *MachineSuite) TestPlacingLastStoneWins() {
	for i := 0; i < 22; i++ {
		x, y := spacedPoint(i)
		session := s.place(model.PlayerID(i%2), x, y)
		s.False(session.GameOver, "game ended early at placement %d", i)
		s.Nil(session.Winner)
	}
	s.Equal(1, s.machine.Session().Players[0].StonesLeft)
	s.events = nil

	x, y := spacedPoint(22)
	session := s.place(0, x, y)

	s.True(session.GameOver)
	s.Require().NotNil(session.Winner)
	s.Equal(model.PlayerHost, *session.Winner)
	s.Equal(0, session.Players[0].StonesLeft)
	s.Equal(model.PlayerHost, session.CurrentPlayer)
	s.NoError(session.CheckConservation())
	s.Equal([]model.EventType{model.EventStateReplaced, model.EventGameEnded}, s.eventTypes())
	s.Equal(model.GameEndedPayload{Winner: model.PlayerHost}, s.events[1].Payload)

	x, y = spacedPoint(23)
	_, err := s.machine.ApplyPlacement(1, model.Placement{X: x, Y: y})
	s.ErrorIs(err, model.ErrGameOver)
}

// Cluster resolution tests

func (s *MachineSuite) TestClusterResolutionCreditsOpponentOfLastPlacer() {
	s.place(0, 0, 0)
	s.place(1, 300, 300)
	s.events = nil

	session := s.machine.ApplyClusterResolution([]model.StoneID{"stone-1", "stone-2"})

	s.Equal(13, session.Players[0].StonesLeft)
	s.Equal(11, session.Players[1].StonesLeft)
	s.Empty(session.ActiveStones())
	s.NoError(session.CheckConservation())
	s.Equal([]model.EventType{model.EventStateReplaced, model.EventClusterFormed}, s.eventTypes())
}

func (s *MachineSuite) TestClusterResolutionIsIdempotent() {
	s.place(0, 0, 0)
	s.place(1, 300, 300)
	first := s.machine.ApplyClusterResolution([]model.StoneID{"stone-1"})
	s.events = nil

	second := s.machine.ApplyClusterResolution([]model.StoneID{"stone-1", "missing"})

	s.Equal(first, second)
	s.Empty(s.events)
}

func (s *MachineSuite) TestClusterResolutionOnEmptyBoardIsNoop() {
	session := s.machine.ApplyClusterResolution([]model.StoneID{"stone-1"})
	s.assertInitial(session)
}

// Reset tests

func (s *MachineSuite) TestResetRestoresInitialStateFromAnyState() {
	s.place(0, 0, 0)
	s.place(1, 300, 300)
	s.place(0, 5, 5)

	session := s.machine.Reset()

	s.assertInitial(session)
	s.Equal("Ann", session.Players[0].Name)
	s.assertInitial(s.machine.Reset())
}

// Replace tests

func (s *MachineSuite) TestReplaceOverwritesSession() {
	other := s.newMachine(model.DefaultRuleset())
	snapshot, err := other.ApplyPlacement(0, model.Placement{X: 10, Y: 10})
	s.Require().NoError(err)
	s.events = nil

	s.Require().NoError(s.machine.Replace(snapshot))

	s.Equal(snapshot, s.machine.Session())
	s.Equal([]model.EventType{model.EventStateReplaced, model.EventTurnChanged}, s.eventTypes())
}

func (s *MachineSuite) TestReplaceRejectsBrokenSnapshot() {
	broken := model.NewGameSession()
	broken.Players[0].StonesLeft = 5

	err := s.machine.Replace(broken)

	s.ErrorIs(err, model.ErrInvalidSnapshot)
	s.assertInitial(s.machine.Session())
}

// Invariant tests

func (s *MachineSuite) TestInvariantsHoldOverRandomGames() {
	rng := rand.New(rand.NewPCG(7, 11))
	rules := model.DefaultRuleset()

	for game := 0; game < 20; game++ {
		s.machine = s.newMachine(rules)
		for attempt := 0; attempt < 400 && !s.machine.Session().GameOver; attempt++ {
			before := s.machine.Session()
			p := model.Placement{
				X:      (rng.Float64()*2 - 1) * 300,
				Y:      (rng.Float64()*2 - 1) * 300,
				OnEdge: rng.IntN(4) == 0,
			}

			after, err := s.machine.ApplyPlacement(before.CurrentPlayer, p)
			if err != nil {
				s.Equal(before, after)
				continue
			}

			s.Require().NoError(after.CheckConservation())
			if !after.GameOver {
				s.Equal(before.CurrentPlayer.Opponent(), after.CurrentPlayer)
			}
			s.Equal(before.Players[before.CurrentPlayer].StonesLeft-1, after.Players[before.CurrentPlayer].StonesLeft)
		}
	}
}
