package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/mcoot/stonecluster/internal/model"
)

// Service evaluates placements and finds clusters for a fixed ruleset.
// It holds no session state and performs no I/O.
type Service struct {
	rules model.Ruleset
}

// New creates a new geometry Service
func New(rules model.Ruleset) *Service {
	return &Service{rules: rules}
}

// Rules returns the ruleset the service evaluates against
func (s *Service) Rules() model.Ruleset {
	return s.rules
}

// Distance returns the centre distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// ValidatePlacement checks a candidate position against the play area and the
// stones still on the board. Clustered stones are ignored.
func (s *Service) ValidatePlacement(p model.Placement, stones []model.Stone) error {
	r := s.rules.StoneRadius
	// Negated so NaN coordinates fail the bounds check
	if !(Distance(0, 0, p.X, p.Y)+r <= s.rules.PlayAreaRadius) {
		return fmt.Errorf("%w: (%.1f, %.1f)", model.ErrOutOfBounds, p.X, p.Y)
	}

	minDist := s.rules.CollisionDistance()
	for _, st := range stones {
		if st.Clustered {
			continue
		}
		if Distance(st.X, st.Y, p.X, p.Y) < minDist {
			return fmt.Errorf("%w: stone %s", model.ErrOverlap, st.ID)
		}
	}
	return nil
}

// Threshold returns the distance below which two stones are adjacent
func (s *Service) Threshold(a, b model.Stone) float64 {
	t := s.rules.ClusterFactor * s.rules.StoneRadius
	switch {
	case a.OnEdge && b.OnEdge:
		t *= s.rules.BothEdgeMultiplier
	case a.OnEdge || b.OnEdge:
		t *= s.rules.OneEdgeMultiplier
	}
	return t
}

// Adjacent reports whether two stones link under the ruleset
func (s *Service) Adjacent(a, b model.Stone) bool {
	if s.rules.Scope == model.ScopeSameOwner && a.Owner != b.Owner {
		return false
	}
	return Distance(a.X, a.Y, b.X, b.Y) < s.Threshold(a, b)
}

// FindClusters groups the non-clustered stones into connected components and
// returns every component with at least two members. Members are sorted by id
// and clusters by their first member, so the result does not depend on the
// order of the input.
func (s *Service) FindClusters(stones []model.Stone) [][]model.StoneID {
	nodes := make([]model.Stone, 0, len(stones))
	for _, st := range stones {
		if !st.Clustered {
			nodes = append(nodes, st)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	adjacency := make([][]int, len(nodes))
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if s.Adjacent(nodes[i], nodes[j]) {
				adjacency[i] = append(adjacency[i], j)
				adjacency[j] = append(adjacency[j], i)
			}
		}
	}

	visited := make([]bool, len(nodes))
	var clusters [][]model.StoneID
	for start := range nodes {
		if visited[start] {
			continue
		}
		component := bfs(start, adjacency, visited)
		if len(component) < 2 {
			continue
		}
		ids := make([]model.StoneID, len(component))
		for i, idx := range component {
			ids[i] = nodes[idx].ID
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		clusters = append(clusters, ids)
	}

	// Nodes are visited in id order, so clusters are already ordered by first member.
	return clusters
}

func bfs(start int, adjacency [][]int, visited []bool) []int {
	queue := []int{start}
	visited[start] = true
	var component []int
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		component = append(component, n)
		for _, next := range adjacency[n] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return component
}
