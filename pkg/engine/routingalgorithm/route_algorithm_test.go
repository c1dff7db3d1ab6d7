package routingalgorithm

import (
	"testing"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridStep = 9e-5 // degrees, roughly ten meters between grid neighbors

// gridGraphData builds a size x size street grid. Every edge is 10% longer
// than the straight line between its endpoints, so the haversine heuristic
// keeps slack and both cost modes stay admissible.
func gridGraphData(size int) *datastructure.GraphData {
	data := &datastructure.GraphData{}

	id := func(row, col int) int64 { return int64(row*size + col + 1) }

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			data.Nodes = append(data.Nodes,
				datastructure.NewNode(id(row, col), float64(row)*gridStep, float64(col)*gridStep))
		}
	}

	connect := func(r1, c1, r2, c2 int) {
		length := 1.1 * geo.CalculateHaversineDistance(
			float64(r1)*gridStep, float64(c1)*gridStep,
			float64(r2)*gridStep, float64(c2)*gridStep)
		data.Edges = append(data.Edges,
			datastructure.Edge{FromID: id(r1, c1), ToID: id(r2, c2), Length: length, SpeedKmh: 40},
			datastructure.Edge{FromID: id(r2, c2), ToID: id(r1, c1), Length: length, SpeedKmh: 40})
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if col+1 < size {
				connect(row, col, row, col+1)
			}
			if row+1 < size {
				connect(row, col, row+1, col)
			}
		}
	}
	return data
}

func TestAStarDijkstraOptimalityAgreement(t *testing.T) {
	g := mustGraph(t, gridGraphData(5))

	from, _ := g.NodeIndex(1)  // corner (0,0)
	to, _ := g.NodeIndex(25)   // corner (4,4)
	mid, _ := g.NodeIndex(13)  // center (2,2)
	side, _ := g.NodeIndex(21) // corner (4,0)

	for _, mode := range []datastructure.CostMode{datastructure.CostDistance, datastructure.CostTime} {
		rt := NewRouteAlgorithm(g, WithCostMode(mode))

		for _, pair := range [][2]int32{{from, to}, {from, mid}, {mid, side}, {side, to}} {
			astar, err := rt.ShortestPathAStar(pair[0], pair[1])
			require.NoError(t, err)
			dijkstra, err := rt.ShortestPathDijkstra(pair[0], pair[1])
			require.NoError(t, err)

			assert.InDelta(t, dijkstra.Cost, astar.Cost, 1e-9,
				"A* and Dijkstra must agree on the optimal cost in %s mode", mode)
			assert.LessOrEqual(t, astar.Expanded, dijkstra.Expanded,
				"A* must settle no more nodes than Dijkstra in %s mode", mode)
		}
	}
}

func TestDijkstraSharesReconstruction(t *testing.T) {
	g := mustGraph(t, squareGraphData())
	rt := NewRouteAlgorithm(g)

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(3)

	astar, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)
	dijkstra, err := rt.ShortestPathDijkstra(from, to)
	require.NoError(t, err)

	// identical tie-break and predecessor logic: same path, not just cost
	assert.Equal(t, astar.Path, dijkstra.Path)
	assert.Equal(t, astar.Edges, dijkstra.Edges)
}

func TestShortestPathDisconnected(t *testing.T) {
	data := squareGraphData()
	data.Nodes = append(data.Nodes, datastructure.NewNode(99, 0.001, 0.001))

	g := mustGraph(t, data)
	rt := NewRouteAlgorithm(g)

	from, _ := g.NodeIndex(1)
	island, _ := g.NodeIndex(99)

	_, err := rt.ShortestPathAStar(from, island)
	require.Error(t, err)
	assert.Equal(t, server.ErrNoPathFound, server.ErrorCodeOf(err))

	_, err = rt.ShortestPathDijkstra(from, island)
	require.Error(t, err)
	assert.Equal(t, server.ErrNoPathFound, server.ErrorCodeOf(err))
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := mustGraph(t, squareGraphData())
	rt := NewRouteAlgorithm(g)

	_, err := rt.ShortestPathAStar(0, 999)
	require.Error(t, err)
	assert.Equal(t, server.ErrUnknownNode, server.ErrorCodeOf(err))

	_, err = rt.ShortestPathAStar(-1, 0)
	require.Error(t, err)
	assert.Equal(t, server.ErrUnknownNode, server.ErrorCodeOf(err))
}

func TestShortestPathExpansionLimit(t *testing.T) {
	g := mustGraph(t, gridGraphData(5))

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(25)

	rt := NewRouteAlgorithm(g, WithExpansionLimit(2))
	_, err := rt.ShortestPathDijkstra(from, to)
	require.Error(t, err)
	assert.Equal(t, server.ErrSearchAborted, server.ErrorCodeOf(err))

	// a generous limit must not get in the way
	rt = NewRouteAlgorithm(g, WithExpansionLimit(1000))
	res, err := rt.ShortestPathDijkstra(from, to)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Path)
}

func TestShortestPathIsSimplePath(t *testing.T) {
	g := mustGraph(t, gridGraphData(4))
	rt := NewRouteAlgorithm(g)

	from, _ := g.NodeIndex(1)
	to, _ := g.NodeIndex(16)

	res, err := rt.ShortestPathAStar(from, to)
	require.NoError(t, err)

	seen := make(map[int32]struct{}, len(res.Path))
	for _, idx := range res.Path {
		_, dup := seen[idx]
		assert.False(t, dup, "path revisits node index %d", idx)
		seen[idx] = struct{}{}
	}

	assert.Equal(t, from, res.Path[0])
	assert.Equal(t, to, res.Path[len(res.Path)-1])
	assert.Len(t, res.Edges, len(res.Path)-1)

	// edges must actually connect consecutive path nodes
	for i, edgeID := range res.Edges {
		arc := g.OutEdge(edgeID)
		assert.Equal(t, res.Path[i], arc.From)
		assert.Equal(t, res.Path[i+1], arc.To)
	}
}
