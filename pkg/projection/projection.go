package projection

import (
	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
)

// Graph is the slice of the road graph the projection needs.
type Graph interface {
	NodeCoordinate(idx int32) datastructure.Coordinate
	OutEdge(edgeID int32) datastructure.Arc
}

// PathCoordinates converts a searched path (node indices plus the arcs
// connecting them) into the geographic coordinate sequence start-to-goal.
//
// With includeEdgeGeometry set, each arc's interior points are emitted
// between its endpoints, flipped into traversal direction when the source
// recorded them the other way around. Shared boundary coordinates between
// consecutive arcs are emitted exactly once.
func PathCoordinates(g Graph, nodePath []int32, edgePath []int32, includeEdgeGeometry bool) []datastructure.Coordinate {
	if len(nodePath) == 0 {
		return []datastructure.Coordinate{}
	}

	coords := make([]datastructure.Coordinate, 0, len(nodePath))
	emit := func(c datastructure.Coordinate) {
		if len(coords) > 0 {
			last := coords[len(coords)-1]
			if last.Lat == c.Lat && last.Lon == c.Lon {
				return
			}
		}
		coords = append(coords, c)
	}

	for i, edgeID := range edgePath {
		fromCoord := g.NodeCoordinate(nodePath[i])
		emit(fromCoord)

		if !includeEdgeGeometry {
			continue
		}
		for _, point := range orientGeometry(g.OutEdge(edgeID).PointsInBetween, fromCoord) {
			emit(point)
		}
	}
	emit(g.NodeCoordinate(nodePath[len(nodePath)-1]))

	return coords
}

// orientGeometry returns the interior points in traversal direction: when
// the stored sequence starts farther from the arc's from-node than it ends,
// it was recorded against the direction of travel and gets reversed.
func orientGeometry(points []datastructure.Coordinate, fromCoord datastructure.Coordinate) []datastructure.Coordinate {
	if len(points) < 2 {
		return points
	}
	first := points[0]
	last := points[len(points)-1]
	distFirst := geo.CalculateHaversineDistance(fromCoord.Lat, fromCoord.Lon, first.Lat, first.Lon)
	distLast := geo.CalculateHaversineDistance(fromCoord.Lat, fromCoord.Lon, last.Lat, last.Lon)
	if distFirst <= distLast {
		return points
	}

	reversed := make([]datastructure.Coordinate, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}
	return reversed
}

// Metrics aggregates a path's length and estimated travel time.
type Metrics struct {
	TotalDistance float64 // meters
	TotalTime     float64 // seconds
	EdgeCount     int
}

func (m Metrics) DistanceKm() float64 {
	return m.TotalDistance / 1000.0
}

func (m Metrics) TimeMinutes() float64 {
	return m.TotalTime / 60.0
}

// PathMetrics sums length and traversal time over the arcs of a path.
func PathMetrics(g Graph, edgePath []int32) Metrics {
	m := Metrics{}
	for _, edgeID := range edgePath {
		arc := g.OutEdge(edgeID)
		m.TotalDistance += arc.Dist
		m.TotalTime += arc.Time
		m.EdgeCount++
	}
	return m
}
