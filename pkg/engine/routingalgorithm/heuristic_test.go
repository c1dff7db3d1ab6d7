package routingalgorithm

import (
	"testing"

	"github.com/naufal-dp/routerx/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Admissibility, checked the brute-force way: for every node the heuristic
// estimate towards the goal must not exceed the true shortest cost found by
// Dijkstra. If this test breaks after touching a heuristic, A* optimality is
// broken with it.
func TestHeuristicAdmissibility(t *testing.T) {
	g := mustGraph(t, gridGraphData(4))
	goal, _ := g.NodeIndex(16)
	goalCoord := g.NodeCoordinate(goal)

	distHeuristic := NewHaversineHeuristic()
	timeHeuristic, err := NewTravelTimeHeuristic(g.MaxSpeedMS())
	require.NoError(t, err)

	distRT := NewRouteAlgorithm(g, WithCostMode(datastructure.CostDistance))
	timeRT := NewRouteAlgorithm(g, WithCostMode(datastructure.CostTime))

	for idx := int32(0); idx < g.NumNodes(); idx++ {
		coord := g.NodeCoordinate(idx)

		trueDist, err := distRT.ShortestPathDijkstra(idx, goal)
		require.NoError(t, err)
		assert.LessOrEqual(t, distHeuristic.Estimate(coord, goalCoord), trueDist.Cost+1e-9,
			"distance heuristic overestimates from node index %d", idx)

		trueTime, err := timeRT.ShortestPathDijkstra(idx, goal)
		require.NoError(t, err)
		assert.LessOrEqual(t, timeHeuristic.Estimate(coord, goalCoord), trueTime.Cost+1e-9,
			"time heuristic overestimates from node index %d", idx)
	}
}

func TestTravelTimeHeuristicRejectsBadSpeed(t *testing.T) {
	_, err := NewTravelTimeHeuristic(0)
	require.Error(t, err)
	_, err = NewTravelTimeHeuristic(-10)
	require.Error(t, err)
}

func TestZeroHeuristic(t *testing.T) {
	h := NewZeroHeuristic()
	a := datastructure.NewCoordinate(0, 0)
	b := datastructure.NewCoordinate(10, 10)
	assert.Equal(t, 0.0, h.Estimate(a, b))
}

func TestManhattanHeuristicDominatesHaversine(t *testing.T) {
	manhattan := NewManhattanHeuristic()
	haversine := NewHaversineHeuristic()

	a := datastructure.NewCoordinate(0, 0)
	b := datastructure.NewCoordinate(0.001, 0.001)

	// the reason manhattan is not wired in by default: on diagonals it
	// exceeds the straight-line bound
	assert.Greater(t, manhattan.Estimate(a, b), haversine.Estimate(a, b))
}
