package routingalgorithm

import (
	"testing"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/roadgraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
square city block, about one meter on a side (so the haversine heuristic
stays a true lower bound on the stored lengths):

	B(2) ---- C(3)
	 |       / |
	 |      /  |
	 |   diag  |
	 |    /    |
	A(1) ---- D(4)

directed edges A->B, B->C, C->D, D->A along the sides plus the diagonal
A->C. Side lengths equal the great-circle distance between their endpoints;
the diagonal is stored as 1.5 m, longer than the ~1.415 m straight line.
*/
const squareStep = 9e-6 // degrees, roughly one meter

func squareGraphData() *datastructure.GraphData {
	a := datastructure.NewNode(1, 0, 0)
	b := datastructure.NewNode(2, squareStep, 0)
	c := datastructure.NewNode(3, squareStep, squareStep)
	d := datastructure.NewNode(4, 0, squareStep)

	side := func(from, to datastructure.Node, speedKmh float64) datastructure.Edge {
		return datastructure.Edge{
			FromID:   from.ID,
			ToID:     to.ID,
			Length:   geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon),
			SpeedKmh: speedKmh,
		}
	}

	diagonal := side(a, c, 50)
	diagonal.Length = 1.5

	return &datastructure.GraphData{
		Nodes: []datastructure.Node{a, b, c, d},
		Edges: []datastructure.Edge{
			side(a, b, 50),
			side(b, c, 50),
			side(c, d, 50),
			side(d, a, 50),
			diagonal,
		},
	}
}

func mustGraph(t *testing.T, data *datastructure.GraphData) *roadgraph.RoadGraph {
	t.Helper()
	g, err := roadgraph.NewRoadGraph(data)
	require.NoError(t, err)
	return g
}

func pathIDs(g *roadgraph.RoadGraph, res SearchResult) []int64 {
	ids := make([]int64, 0, len(res.Path))
	for _, idx := range res.Path {
		ids = append(ids, g.NodeID(idx))
	}
	return ids
}

func TestShortestPathAStarDistanceMode(t *testing.T) {
	g := mustGraph(t, squareGraphData())
	rt := NewRouteAlgorithm(g, WithCostMode(datastructure.CostDistance))

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(3)

	res, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)

	// the diagonal (1.5 m) beats the two-hop route (~2.0 m): the search must
	// pick the globally cheapest path regardless of hop count
	assert.Equal(t, []int64{1, 3}, pathIDs(g, res))
	assert.InDelta(t, 1.5, res.Cost, 1e-9)
	assert.Len(t, res.Edges, 1)
}

func TestShortestPathAStarTimeMode(t *testing.T) {
	data := squareGraphData()
	// crawl speed on the diagonal: its time cost now exceeds the two-hop route
	data.Edges[4].SpeedKmh = 5

	g := mustGraph(t, data)
	rt := NewRouteAlgorithm(g, WithCostMode(datastructure.CostTime))

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(3)

	res, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, pathIDs(g, res))

	wantCost := 0.0
	for _, edgeID := range res.Edges {
		wantCost += g.EdgeWeight(edgeID, datastructure.CostTime)
	}
	assert.InDelta(t, wantCost, res.Cost, 1e-9)
}

func TestShortestPathAStarSameStartAndGoal(t *testing.T) {
	g := mustGraph(t, squareGraphData())
	rt := NewRouteAlgorithm(g)

	idx, _ := g.NodeIndex(2)
	res, err := rt.ShortestPathAStar(idx, idx)
	require.NoError(t, err)

	assert.Equal(t, []int32{idx}, res.Path)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, 0, res.Expanded)
	assert.Empty(t, res.Edges)
}

func TestShortestPathAStarDeterministic(t *testing.T) {
	g := mustGraph(t, squareGraphData())
	rt := NewRouteAlgorithm(g)

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(3)

	first, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)
	second, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Cost, second.Cost)
	assert.Equal(t, first.Expanded, second.Expanded)
}
