package projection

import (
	"testing"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/roadgraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two road segments with curvature: 1 -> 2 bends through two interior
// points, 2 -> 3 has its geometry recorded backwards (as divided roadways
// often do in source data)
func curvedGraph(t *testing.T) (*roadgraph.RoadGraph, []int32, []int32) {
	t.Helper()

	n1 := datastructure.NewNode(1, 0, 0)
	n2 := datastructure.NewNode(2, 0, 0.002)
	n3 := datastructure.NewNode(3, 0, 0.004)

	geomA := []datastructure.Coordinate{
		datastructure.NewCoordinate(0.0002, 0.0007),
		datastructure.NewCoordinate(0.0002, 0.0014),
	}
	// stored goal-to-start
	geomB := []datastructure.Coordinate{
		datastructure.NewCoordinate(-0.0002, 0.0034),
		datastructure.NewCoordinate(-0.0002, 0.0027),
	}

	lengthAlong := func(points []datastructure.Coordinate) float64 {
		total := 0.0
		for i := 1; i < len(points); i++ {
			total += geo.CalculateHaversineDistance(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
		}
		return total
	}

	lenA := lengthAlong([]datastructure.Coordinate{
		{Lat: n1.Lat, Lon: n1.Lon}, geomA[0], geomA[1], {Lat: n2.Lat, Lon: n2.Lon},
	})
	lenB := lengthAlong([]datastructure.Coordinate{
		{Lat: n2.Lat, Lon: n2.Lon}, geomB[1], geomB[0], {Lat: n3.Lat, Lon: n3.Lon},
	})

	data := &datastructure.GraphData{
		Nodes: []datastructure.Node{n1, n2, n3},
		Edges: []datastructure.Edge{
			{FromID: 1, ToID: 2, Length: lenA, SpeedKmh: 30, PointsInBetween: geomA},
			{FromID: 2, ToID: 3, Length: lenB, SpeedKmh: 30, PointsInBetween: geomB},
		},
	}

	g, err := roadgraph.NewRoadGraph(data)
	require.NoError(t, err)

	i1, _ := g.NodeIndex(1)
	i2, _ := g.NodeIndex(2)
	i3, _ := g.NodeIndex(3)

	edges := make([]int32, 0, 2)
	for _, pair := range [][2]int32{{i1, i2}, {i2, i3}} {
		for _, edgeID := range g.OutEdges(pair[0]) {
			if g.OutEdge(edgeID).To == pair[1] {
				edges = append(edges, edgeID)
			}
		}
	}
	require.Len(t, edges, 2)

	return g, []int32{i1, i2, i3}, edges
}

func TestPathCoordinatesWithoutGeometry(t *testing.T) {
	g, nodePath, edgePath := curvedGraph(t)

	coords := PathCoordinates(g, nodePath, edgePath, false)
	require.Len(t, coords, 3)
	assert.Equal(t, datastructure.NewCoordinate(0, 0), coords[0])
	assert.Equal(t, datastructure.NewCoordinate(0, 0.002), coords[1])
	assert.Equal(t, datastructure.NewCoordinate(0, 0.004), coords[2])
}

func TestPathCoordinatesWithGeometry(t *testing.T) {
	g, nodePath, edgePath := curvedGraph(t)

	coords := PathCoordinates(g, nodePath, edgePath, true)
	require.Len(t, coords, 7)

	// first edge's interior points in stored (= traversal) order
	assert.Equal(t, datastructure.NewCoordinate(0.0002, 0.0007), coords[1])
	assert.Equal(t, datastructure.NewCoordinate(0.0002, 0.0014), coords[2])

	// second edge was recorded backwards and must come out travel-ordered
	assert.Equal(t, datastructure.NewCoordinate(-0.0002, 0.0027), coords[4])
	assert.Equal(t, datastructure.NewCoordinate(-0.0002, 0.0034), coords[5])

	// boundary node appears exactly once
	boundary := datastructure.NewCoordinate(0, 0.002)
	count := 0
	for _, c := range coords {
		if c == boundary {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// coordinates must walk monotonically away from the start
	prev := -1.0
	for _, c := range coords {
		assert.Greater(t, c.Lon, prev)
		prev = c.Lon
	}
}

func TestPathCoordinatesRoundTrip(t *testing.T) {
	g, nodePath, edgePath := curvedGraph(t)

	coords := PathCoordinates(g, nodePath, edgePath, true)

	walked := 0.0
	for i := 1; i < len(coords); i++ {
		walked += geo.CalculateHaversineDistance(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}

	metrics := PathMetrics(g, edgePath)
	// summing the emitted segments recovers the stored edge lengths
	assert.InDelta(t, metrics.TotalDistance, walked, metrics.TotalDistance*0.001)
}

func TestPathCoordinatesSingleNode(t *testing.T) {
	g, nodePath, _ := curvedGraph(t)

	coords := PathCoordinates(g, nodePath[:1], nil, true)
	require.Len(t, coords, 1)
	assert.Equal(t, datastructure.NewCoordinate(0, 0), coords[0])

	assert.Empty(t, PathCoordinates(g, nil, nil, true))
}

func TestPathMetrics(t *testing.T) {
	g, _, edgePath := curvedGraph(t)

	m := PathMetrics(g, edgePath)
	assert.Equal(t, 2, m.EdgeCount)
	assert.Greater(t, m.TotalDistance, 0.0)
	assert.Greater(t, m.TotalTime, 0.0)
	assert.InDelta(t, m.TotalDistance/1000, m.DistanceKm(), 1e-12)
	assert.InDelta(t, m.TotalTime/60, m.TimeMinutes(), 1e-12)

	empty := PathMetrics(g, nil)
	assert.Equal(t, Metrics{}, empty)
}
