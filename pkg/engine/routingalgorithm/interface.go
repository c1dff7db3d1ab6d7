package routingalgorithm

import "github.com/naufal-dp/routerx/pkg/datastructure"

// RoutingGraph is the read-only view the searches need. Implementations must
// be safe for concurrent readers; the searches never mutate the graph.
type RoutingGraph interface {
	NumNodes() int32
	NodeCoordinate(idx int32) datastructure.Coordinate
	OutEdges(idx int32) []int32
	OutEdge(edgeID int32) datastructure.Arc
	EdgeWeight(edgeID int32, mode datastructure.CostMode) float64
	MaxSpeedMS() float64
}
