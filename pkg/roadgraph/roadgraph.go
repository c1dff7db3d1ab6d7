package roadgraph

import (
	"math"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/server"
)

const (
	defaultSpeedKmh     = 40.0
	fallbackMaxSpeedKmh = 130.0

	kmhToMS = 1000.0 / 3600.0
)

type Option func(*RoadGraph)

// WithDefaultSpeed overrides the speed (km/h) substituted for edges whose
// source network carries no usable maxspeed.
func WithDefaultSpeed(kmh float64) Option {
	return func(g *RoadGraph) {
		g.defaultSpeedKmh = kmh
	}
}

// WithFallbackMaxSpeed overrides the plausible top speed (km/h) assumed when
// the network carries no speed data at all. The time-mode heuristic divides
// by this bound, so it must never undershoot a speed reachable on the map.
func WithFallbackMaxSpeed(kmh float64) Option {
	return func(g *RoadGraph) {
		g.fallbackMaxSpeedKmh = kmh
	}
}

// RoadGraph is an immutable, read-only view over a road network. External
// node IDs are mapped to dense int32 indices at construction; every hot-path
// operation works on indices only. A single RoadGraph may serve concurrent
// searches without locking because nothing mutates it after New.
type RoadGraph struct {
	nodes         []datastructure.Node
	firstOutEdges [][]int32
	outEdges      []datastructure.Arc
	nodeIdx       map[int64]int32

	maxSpeedMS          float64
	defaultSpeedKmh     float64
	fallbackMaxSpeedKmh float64

	nearest *nearestNodeIndex
}

// NewRoadGraph validates data and builds the dense representation. Malformed
// networks (edge endpoints missing from the node set, negative or
// non-finite lengths, duplicate node IDs) are rejected here with a
// descriptive invalid-graph error rather than surfacing during a search.
//
// When several parallel edges connect the same (from, to) pair, the bundle
// collapses to the minimum-weight candidate per cost mode: the shortest arc
// and the fastest arc (one arc when it wins both, ties broken by the other
// attribute). Relaxation then picks the cheaper candidate under the active
// mode, so the selection stays deterministic and minimal either way.
func NewRoadGraph(data *datastructure.GraphData, opts ...Option) (*RoadGraph, error) {
	g := &RoadGraph{
		defaultSpeedKmh:     defaultSpeedKmh,
		fallbackMaxSpeedKmh: fallbackMaxSpeedKmh,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.defaultSpeedKmh <= 0 {
		return nil, server.NewErrorf(server.ErrInvalidGraph, "default speed must be positive, got %f", g.defaultSpeedKmh)
	}

	g.nodes = make([]datastructure.Node, len(data.Nodes))
	copy(g.nodes, data.Nodes)

	g.nodeIdx = make(map[int64]int32, len(g.nodes))
	for i, node := range g.nodes {
		if _, ok := g.nodeIdx[node.ID]; ok {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "duplicate node id %d", node.ID)
		}
		if math.Abs(node.Lat) > 90 || math.Abs(node.Lon) > 180 {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "node %d has out-of-range coordinate (%f, %f)", node.ID, node.Lat, node.Lon)
		}
		g.nodeIdx[node.ID] = int32(i)
	}

	type arcKey struct {
		from, to int32
	}
	type arcPair struct {
		byDist datastructure.Arc
		byTime datastructure.Arc
	}
	best := make(map[arcKey]arcPair, len(data.Edges))
	order := make([]arcKey, 0, len(data.Edges))

	maxSpeedKmh := 0.0
	for _, edge := range data.Edges {
		from, ok := g.nodeIdx[edge.FromID]
		if !ok {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "edge %d->%d references unknown node %d", edge.FromID, edge.ToID, edge.FromID)
		}
		to, ok := g.nodeIdx[edge.ToID]
		if !ok {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "edge %d->%d references unknown node %d", edge.FromID, edge.ToID, edge.ToID)
		}
		if edge.Length < 0 || math.IsNaN(edge.Length) || math.IsInf(edge.Length, 0) {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "edge %d->%d has invalid length %f", edge.FromID, edge.ToID, edge.Length)
		}
		if edge.SpeedKmh < 0 || math.IsNaN(edge.SpeedKmh) {
			return nil, server.NewErrorf(server.ErrInvalidGraph, "edge %d->%d has invalid speed %f", edge.FromID, edge.ToID, edge.SpeedKmh)
		}

		speedKmh := edge.SpeedKmh
		if speedKmh == 0 {
			speedKmh = g.defaultSpeedKmh
		}
		if speedKmh > maxSpeedKmh {
			maxSpeedKmh = speedKmh
		}

		arc := datastructure.NewArc(-1, from, to, edge.Length, edge.Length/(speedKmh*kmhToMS), edge.PointsInBetween)

		key := arcKey{from: from, to: to}
		pair, seen := best[key]
		if !seen {
			best[key] = arcPair{byDist: arc, byTime: arc}
			order = append(order, key)
			continue
		}
		if arc.Dist < pair.byDist.Dist || (arc.Dist == pair.byDist.Dist && arc.Time < pair.byDist.Time) {
			pair.byDist = arc
		}
		if arc.Time < pair.byTime.Time || (arc.Time == pair.byTime.Time && arc.Dist < pair.byTime.Dist) {
			pair.byTime = arc
		}
		best[key] = pair
	}

	if maxSpeedKmh <= 0 {
		maxSpeedKmh = g.fallbackMaxSpeedKmh
	}
	g.maxSpeedMS = maxSpeedKmh * kmhToMS

	g.firstOutEdges = make([][]int32, len(g.nodes))
	g.outEdges = make([]datastructure.Arc, 0, len(order))
	addArc := func(arc datastructure.Arc) {
		arc.EdgeID = int32(len(g.outEdges))
		g.outEdges = append(g.outEdges, arc)
		g.firstOutEdges[arc.From] = append(g.firstOutEdges[arc.From], arc.EdgeID)
	}
	for _, key := range order {
		pair := best[key]
		addArc(pair.byDist)
		if pair.byTime.Dist != pair.byDist.Dist || pair.byTime.Time != pair.byDist.Time {
			addArc(pair.byTime)
		}
	}

	g.nearest = newNearestNodeIndex(g.nodes)

	return g, nil
}

func (g *RoadGraph) NumNodes() int32 {
	return int32(len(g.nodes))
}

func (g *RoadGraph) NumEdges() int {
	return len(g.outEdges)
}

// NodeIndex maps an external node ID to its dense index.
func (g *RoadGraph) NodeIndex(id int64) (int32, error) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return -1, server.NewErrorf(server.ErrUnknownNode, "node %d not in graph", id)
	}
	return idx, nil
}

// NodeID maps a dense index back to the external node ID.
func (g *RoadGraph) NodeID(idx int32) int64 {
	return g.nodes[idx].ID
}

func (g *RoadGraph) Node(idx int32) datastructure.Node {
	return g.nodes[idx]
}

func (g *RoadGraph) NodeCoordinate(idx int32) datastructure.Coordinate {
	node := g.nodes[idx]
	return datastructure.NewCoordinate(node.Lat, node.Lon)
}

// Coordinates returns a node's position looked up by external ID.
func (g *RoadGraph) Coordinates(id int64) (datastructure.Coordinate, error) {
	idx, err := g.NodeIndex(id)
	if err != nil {
		return datastructure.Coordinate{}, err
	}
	return g.NodeCoordinate(idx), nil
}

// OutEdges returns the IDs of every outgoing arc of a node.
func (g *RoadGraph) OutEdges(idx int32) []int32 {
	return g.firstOutEdges[idx]
}

func (g *RoadGraph) OutEdge(edgeID int32) datastructure.Arc {
	return g.outEdges[edgeID]
}

// Neighbors returns the outgoing arcs of the node with the given external
// ID. Fails with an unknown-node error when the ID is absent.
func (g *RoadGraph) Neighbors(id int64) ([]datastructure.Arc, error) {
	idx, err := g.NodeIndex(id)
	if err != nil {
		return nil, err
	}
	arcs := make([]datastructure.Arc, 0, len(g.firstOutEdges[idx]))
	for _, edgeID := range g.firstOutEdges[idx] {
		arcs = append(arcs, g.outEdges[edgeID])
	}
	return arcs, nil
}

// EdgeWeight returns the traversal cost of an arc under the given mode:
// meters for distance, seconds for time. Always non-negative.
func (g *RoadGraph) EdgeWeight(edgeID int32, mode datastructure.CostMode) float64 {
	arc := g.outEdges[edgeID]
	if mode == datastructure.CostTime {
		return arc.Time
	}
	return arc.Dist
}

// MaxSpeedMS is the highest edge speed observed in the network (m/s), or the
// configured fallback when the network carries no speed data. The time-mode
// heuristic divides straight-line distance by this bound.
func (g *RoadGraph) MaxSpeedMS() float64 {
	return g.maxSpeedMS
}

// NearestNode snaps an arbitrary coordinate onto the graph: it returns the
// node index minimizing great-circle distance to the query point, ties
// broken by the smallest external node ID. Collaborator-facing, not part of
// the search hot path.
func (g *RoadGraph) NearestNode(lat, lon float64) (int32, error) {
	if len(g.nodes) == 0 {
		return -1, server.NewErrorf(server.ErrNotFound, "graph has no nodes")
	}
	return g.nearest.nearest(g.nodes, lat, lon), nil
}
