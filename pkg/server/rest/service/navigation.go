package service

import (
	"context"
	"sort"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/engine/routingalgorithm"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/kv"
	"github.com/naufal-dp/routerx/pkg/projection"
	"github.com/naufal-dp/routerx/pkg/server"
)

// RouteGraph is everything the navigation use cases need from the road
// graph: the search view plus node lookup and snapping.
type RouteGraph interface {
	routingalgorithm.RoutingGraph

	NearestNode(lat, lon float64) (int32, error)
	Node(idx int32) datastructure.Node
	NodeID(idx int32) int64
	NumEdges() int
}

type KVDB interface {
	GetNearestStreetsFromPointCoord(lat, lon float64) ([]kv.KVEdge, error)
}

type NavigationService struct {
	graph RouteGraph
	kv    KVDB
}

func NewNavigationService(graph RouteGraph, kvDB KVDB) *NavigationService {
	return &NavigationService{graph: graph, kv: kvDB}
}

// ShortestPathResult carries one routing answer back to the transport layer.
// Dist is in meters and ETA in seconds regardless of the cost mode used for
// the search.
type ShortestPathResult struct {
	Polyline string
	Coords   []datastructure.Coordinate
	Dist     float64
	ETA      float64
	Expanded int
	FromNode datastructure.Node
	ToNode   datastructure.Node
}

// ShortestPath snaps both locations to the road network and runs one search
// between them. The algorithm name selects dijkstra explicitly; anything
// else runs the default A* search.
func (uc *NavigationService) ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64,
	mode datastructure.CostMode, algorithm string) (*ShortestPathResult, error) {

	fromNode, err := uc.graph.NearestNode(srcLat, srcLon)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrNotFound,
			"the source location you entered is not covered on the loaded map")
	}
	toNode, err := uc.graph.NearestNode(dstLat, dstLon)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrNotFound,
			"the destination location you entered is not covered on the loaded map")
	}

	rt := routingalgorithm.NewRouteAlgorithm(uc.graph,
		routingalgorithm.WithCostMode(mode))

	var result routingalgorithm.SearchResult
	if algorithm == "dijkstra" {
		result, err = rt.ShortestPathDijkstra(fromNode, toNode)
	} else {
		result, err = rt.ShortestPathAStar(fromNode, toNode)
	}
	if err != nil {
		return nil, err
	}

	coords := projection.PathCoordinates(uc.graph, result.Path, result.Edges, true)
	metrics := projection.PathMetrics(uc.graph, result.Edges)

	return &ShortestPathResult{
		Polyline: datastructure.RenderPath(coords),
		Coords:   coords,
		Dist:     metrics.TotalDistance,
		ETA:      metrics.TotalTime,
		Expanded: result.Expanded,
		FromNode: uc.graph.Node(fromNode),
		ToNode:   uc.graph.Node(toNode),
	}, nil
}

// NearestNode returns the graph node closest to the given location together
// with its straight-line distance in meters.
func (uc *NavigationService) NearestNode(ctx context.Context, lat, lon float64) (datastructure.Node, float64, error) {
	idx, err := uc.graph.NearestNode(lat, lon)
	if err != nil {
		return datastructure.Node{}, 0, server.WrapErrorf(err, server.ErrNotFound,
			"the location you entered is not covered on the loaded map")
	}
	node := uc.graph.Node(idx)
	dist := geo.CalculateHaversineDistance(lat, lon, node.Lat, node.Lon)
	return node, dist, nil
}

// NearestStreetSegments looks up the k street segments closest to the given
// location using the h3 snapping index.
func (uc *NavigationService) NearestStreetSegments(ctx context.Context, lat, lon float64, k int) ([]kv.KVEdge, []float64, error) {
	edges, err := uc.kv.GetNearestStreetsFromPointCoord(lat, lon)
	if err != nil {
		return nil, nil, server.WrapErrorf(err, server.ErrNotFound,
			"no street segments found around the given location")
	}

	sort.Slice(edges, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(lat, lon, edges[i].CenterLoc[0], edges[i].CenterLoc[1])
		dj := geo.CalculateHaversineDistance(lat, lon, edges[j].CenterLoc[0], edges[j].CenterLoc[1])
		return di < dj
	})

	if k > 0 && len(edges) > k {
		edges = edges[:k]
	}

	dists := make([]float64, 0, len(edges))
	for _, e := range edges {
		dists = append(dists, geo.CalculateHaversineDistance(lat, lon, e.CenterLoc[0], e.CenterLoc[1]))
	}
	return edges, dists, nil
}

// GraphInfo reports basic size facts about the loaded road network.
type GraphInfo struct {
	Nodes      int
	Edges      int
	MaxSpeedMS float64
}

func (uc *NavigationService) GraphInfo(ctx context.Context) GraphInfo {
	return GraphInfo{
		Nodes:      int(uc.graph.NumNodes()),
		Edges:      uc.graph.NumEdges(),
		MaxSpeedMS: uc.graph.MaxSpeedMS(),
	}
}
