package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stonecluster/internal/dependencies/mocks"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/bot"
	"github.com/mcoot/stonecluster/internal/services/geometry"
)

// span is the half-width of the candidate grid under the default ruleset;
// queueing span+x yields coordinate x
const span = 480

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	random     *bot.RandomStrategy
	cautious   *bot.CautiousStrategy
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	geo := geometry.New(model.DefaultRuleset())
	s.random = bot.NewRandomStrategy(geo, s.mockRandom)
	s.cautious = bot.NewCautiousStrategy(geo, s.mockRandom)
}

func (s *StrategySuite) queue(points ...[2]int) {
	for _, p := range points {
		s.mockRandom.QueueIntn(span+p[0], span+p[1])
	}
}

func sessionWithStone(x, y float64) model.GameSession {
	session := model.NewGameSession()
	session.Stones = append(session.Stones, model.Stone{ID: "s1", X: x, Y: y, Radius: 20, Owner: model.PlayerHost})
	session.Players[model.PlayerHost].StonesLeft--
	session.CurrentPlayer = model.PlayerGuest
	return session
}

func (s *StrategySuite) TestRandomPlacesAtSampledPosition() {
	s.queue([2]int{0, 0})

	p, ok := s.random.ChoosePlacement(model.NewGameSession(), model.PlayerHost)
	s.True(ok)
	s.Equal(model.Placement{X: 0, Y: 0}, p)
}

func (s *StrategySuite) TestRandomSkipsInvalidPositions() {
	s.queue([2]int{0, 0}, [2]int{100, 0})

	p, ok := s.random.ChoosePlacement(sessionWithStone(0, 0), model.PlayerGuest)
	s.True(ok)
	s.Equal(model.Placement{X: 100, Y: 0}, p)
}

func (s *StrategySuite) TestRandomGivesUp() {
	// An empty queue samples the corner (-480, -480), outside the play area
	_, ok := s.random.ChoosePlacement(model.NewGameSession(), model.PlayerHost)
	s.False(ok)
}

func (s *StrategySuite) TestCautiousAvoidsClusters() {
	s.queue([2]int{30, 0}, [2]int{100, 0})

	p, ok := s.cautious.ChoosePlacement(sessionWithStone(0, 0), model.PlayerGuest)
	s.True(ok)
	s.Equal(model.Placement{X: 100, Y: 0}, p)
}

func (s *StrategySuite) TestCautiousFallsBackToClusteringMove() {
	s.queue([2]int{30, 0})

	p, ok := s.cautious.ChoosePlacement(sessionWithStone(0, 0), model.PlayerGuest)
	s.True(ok)
	s.Equal(model.Placement{X: 30, Y: 0}, p)
}

func (s *StrategySuite) TestCautiousIgnoresClusteredStones() {
	session := sessionWithStone(0, 0)
	session.Stones[0].Clustered = true
	s.queue([2]int{30, 0})

	p, ok := s.cautious.ChoosePlacement(session, model.PlayerGuest)
	s.True(ok)
	s.Equal(model.Placement{X: 30, Y: 0}, p)
}
