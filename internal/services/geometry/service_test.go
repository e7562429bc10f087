package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/stonecluster/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(model.DefaultRuleset())
}

func stone(id string, owner model.PlayerID, x, y float64) model.Stone {
	return model.Stone{ID: model.StoneID(id), X: x, Y: y, Radius: 20, Owner: owner}
}

func edgeStone(id string, owner model.PlayerID, x, y float64) model.Stone {
	st := stone(id, owner, x, y)
	st.OnEdge = true
	return st
}

// Placement validity tests

func (s *ServiceSuite) TestPlacementInsidePlayArea() {
	s.NoError(s.service.ValidatePlacement(model.Placement{X: 0, Y: 0}, nil))
	s.NoError(s.service.ValidatePlacement(model.Placement{X: 480, Y: 0}, nil))
}

func (s *ServiceSuite) TestPlacementMustFitInsidePlayArea() {
	err := s.service.ValidatePlacement(model.Placement{X: 481, Y: 0}, nil)
	s.ErrorIs(err, model.ErrOutOfBounds)

	err = s.service.ValidatePlacement(model.Placement{X: 400, Y: 400}, nil)
	s.ErrorIs(err, model.ErrOutOfBounds)
}

func (s *ServiceSuite) TestNonFinitePlacementIsOutOfBounds() {
	err := s.service.ValidatePlacement(model.Placement{X: math.NaN(), Y: 0}, nil)
	s.ErrorIs(err, model.ErrOutOfBounds)

	err = s.service.ValidatePlacement(model.Placement{X: 0, Y: math.Inf(-1)}, nil)
	s.ErrorIs(err, model.ErrOutOfBounds)
}

func (s *ServiceSuite) TestLooseCollisionRejectsNearCoincidentStones() {
	stones := []model.Stone{stone("a", 0, 0, 0)}

	s.ErrorIs(s.service.ValidatePlacement(model.Placement{X: 4, Y: 0}, stones), model.ErrOverlap)
	s.NoError(s.service.ValidatePlacement(model.Placement{X: 6, Y: 0}, stones))
}

func (s *ServiceSuite) TestStrictCollisionRejectsAnyOverlap() {
	rules := model.DefaultRuleset()
	rules.Collision = model.CollisionStrict
	service := New(rules)
	stones := []model.Stone{stone("a", 0, 0, 0)}

	s.ErrorIs(service.ValidatePlacement(model.Placement{X: 39, Y: 0}, stones), model.ErrOverlap)
	s.NoError(service.ValidatePlacement(model.Placement{X: 40, Y: 0}, stones))
}

func (s *ServiceSuite) TestClusteredStonesDoNotBlockPlacement() {
	st := stone("a", 0, 0, 0)
	st.Clustered = true

	s.NoError(s.service.ValidatePlacement(model.Placement{X: 0, Y: 0}, []model.Stone{st}))
}

// Threshold tests

func (s *ServiceSuite) TestThresholdEdgeMultipliers() {
	plain := stone("a", 0, 0, 0)
	edge := edgeStone("b", 0, 0, 0)

	s.InDelta(36.0, s.service.Threshold(plain, plain), 1e-9)
	s.InDelta(39.6, s.service.Threshold(plain, edge), 1e-9)
	s.InDelta(39.6, s.service.Threshold(edge, plain), 1e-9)
	s.InDelta(43.2, s.service.Threshold(edge, edge), 1e-9)
}

func (s *ServiceSuite) TestAdjacencyUsesPairwiseThreshold() {
	s.True(s.service.Adjacent(stone("a", 0, 0, 0), stone("b", 1, 35, 0)))
	s.False(s.service.Adjacent(stone("a", 0, 0, 0), stone("b", 1, 37, 0)))
	s.True(s.service.Adjacent(stone("a", 0, 0, 0), edgeStone("b", 1, 37, 0)))
	s.False(s.service.Adjacent(stone("a", 0, 0, 0), edgeStone("b", 1, 41, 0)))
	s.True(s.service.Adjacent(edgeStone("a", 0, 0, 0), edgeStone("b", 1, 41, 0)))
}

// Cluster detection tests

func (s *ServiceSuite) TestNoClustersOnSparseBoard() {
	stones := []model.Stone{
		stone("a", 0, 0, 0),
		stone("b", 1, 100, 0),
		stone("c", 0, 0, 100),
	}

	s.Empty(s.service.FindClusters(stones))
}

func (s *ServiceSuite) TestPairFormsCluster() {
	stones := []model.Stone{
		stone("a", 0, 0, 0),
		stone("b", 1, 300, 300),
		stone("c", 0, 5, 5),
	}

	s.Equal([][]model.StoneID{{"a", "c"}}, s.service.FindClusters(stones))
}

func (s *ServiceSuite) TestChainIsOneCluster() {
	// a and c are too far apart to link directly but both link through b
	stones := []model.Stone{
		stone("a", 0, 0, 0),
		stone("b", 1, 30, 0),
		stone("c", 0, 60, 0),
	}

	s.Equal([][]model.StoneID{{"a", "b", "c"}}, s.service.FindClusters(stones))
}

func (s *ServiceSuite) TestSeparateClustersAreReportedSeparately() {
	stones := []model.Stone{
		stone("a", 0, 0, 0),
		stone("b", 1, 20, 0),
		stone("c", 0, 200, 0),
		stone("d", 1, 220, 0),
		stone("e", 0, -200, 0),
	}

	s.Equal([][]model.StoneID{{"a", "b"}, {"c", "d"}}, s.service.FindClusters(stones))
}

func (s *ServiceSuite) TestClusteredStonesAreIgnored() {
	gone := stone("a", 0, 0, 0)
	gone.Clustered = true
	stones := []model.Stone{gone, stone("b", 1, 20, 0)}

	s.Empty(s.service.FindClusters(stones))
}

func (s *ServiceSuite) TestSameOwnerScopeOnlyLinksMatchingOwners() {
	rules := model.DefaultRuleset()
	rules.Scope = model.ScopeSameOwner
	service := New(rules)

	stones := []model.Stone{
		stone("a", 0, 0, 0),
		stone("b", 1, 20, 0),
		stone("c", 0, 200, 0),
		stone("d", 0, 220, 0),
	}

	s.Equal([][]model.StoneID{{"c", "d"}}, service.FindClusters(stones))
}

func (s *ServiceSuite) TestResultIndependentOfInputOrder() {
	stones := []model.Stone{
		stone("s1", 0, 0, 0),
		stone("s2", 1, 30, 0),
		stone("s3", 0, 200, 0),
		stone("s4", 1, 230, 10),
		stone("s5", 0, 60, 0),
		stone("s6", 1, -300, 0),
	}
	expected := s.service.FindClusters(stones)

	reversed := make([]model.Stone, len(stones))
	for i, st := range stones {
		reversed[len(stones)-1-i] = st
	}
	rotated := append(append([]model.Stone{}, stones[3:]...), stones[:3]...)

	s.Equal(expected, s.service.FindClusters(reversed))
	s.Equal(expected, s.service.FindClusters(rotated))
	s.Equal([][]model.StoneID{{"s1", "s2", "s5"}, {"s3", "s4"}}, expected)
}
