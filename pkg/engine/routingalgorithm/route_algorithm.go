package routingalgorithm

import (
	"math"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/server"
	"github.com/naufal-dp/routerx/pkg/util"
)

type Option func(*RouteAlgorithm)

// WithCostMode fixes the edge attribute used as traversal cost. The mode
// holds for every search run by this instance.
func WithCostMode(mode datastructure.CostMode) Option {
	return func(rt *RouteAlgorithm) {
		rt.mode = mode
	}
}

// WithHeuristic overrides the default admissible heuristic for A*. The
// caller is responsible for keeping the replacement admissible.
func WithHeuristic(h Heuristic) Option {
	return func(rt *RouteAlgorithm) {
		rt.heuristic = h
	}
}

// WithExpansionLimit bounds how many nodes one search may settle before it
// fails with a search-aborted error. Zero means unlimited.
func WithExpansionLimit(limit int) Option {
	return func(rt *RouteAlgorithm) {
		rt.expansionLimit = limit
	}
}

// RouteAlgorithm runs shortest-path queries against an immutable routing
// graph. It keeps no state between calls, so one instance may serve
// concurrent searches, and instances are cheap to create per request.
type RouteAlgorithm struct {
	g              RoutingGraph
	mode           datastructure.CostMode
	heuristic      Heuristic
	expansionLimit int
}

func NewRouteAlgorithm(g RoutingGraph, opts ...Option) *RouteAlgorithm {
	rt := &RouteAlgorithm{
		g:    g,
		mode: datastructure.CostDistance,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// SearchResult is one finished search: the node path start-to-goal inclusive
// (dense indices), the arcs connecting consecutive path nodes, the total
// cost in the active mode's units, and the number of settled nodes (used to
// compare heuristic efficacy between A* and Dijkstra).
type SearchResult struct {
	Path     []int32
	Edges    []int32
	Cost     float64
	Expanded int
}

type nodeStatus uint8

const (
	statusUnvisited nodeStatus = iota
	statusFrontier
	statusSettled
)

type nodeState struct {
	gScore   float64
	fromNode int32
	fromEdge int32
	status   nodeStatus
}

// shortestPath is the best-first core shared by A* and Dijkstra: same
// predecessor bookkeeping, same tie-break order (f-score, then g-score, then
// node index), so results of the two are directly comparable. Per-node state
// lives in an arena indexed by the dense node index; the frontier is a
// min-heap with decrease-key. A settled node is final and never re-expanded.
func (rt *RouteAlgorithm) shortestPath(from, to int32, h Heuristic) (SearchResult, error) {
	numNodes := rt.g.NumNodes()
	if from < 0 || from >= numNodes {
		return SearchResult{}, server.NewErrorf(server.ErrUnknownNode, "start node index %d not in graph", from)
	}
	if to < 0 || to >= numNodes {
		return SearchResult{}, server.NewErrorf(server.ErrUnknownNode, "goal node index %d not in graph", to)
	}

	if from == to {
		return SearchResult{Path: []int32{from}, Edges: []int32{}, Cost: 0}, nil
	}

	states := make([]nodeState, numNodes)
	for i := range states {
		states[i].gScore = math.Inf(1)
	}

	toCoord := rt.g.NodeCoordinate(to)

	pq := datastructure.NewMinHeap[int32]()
	states[from] = nodeState{gScore: 0, fromNode: -1, fromEdge: -1, status: statusFrontier}
	pq.Insert(datastructure.PriorityQueueNode[int32]{
		Rank: h.Estimate(rt.g.NodeCoordinate(from), toCoord),
		Item: from,
	})

	expanded := 0
	for pq.Size() > 0 {
		current, err := pq.ExtractMin()
		if err != nil {
			return SearchResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "frontier corrupted")
		}
		if states[current.Item].status == statusSettled {
			// stale queue entry
			continue
		}

		if current.Item == to {
			result := rt.reconstructPath(states, from, to)
			result.Expanded = expanded
			return result, nil
		}

		states[current.Item].status = statusSettled
		expanded++
		if rt.expansionLimit > 0 && expanded > rt.expansionLimit {
			return SearchResult{}, server.NewErrorf(server.ErrSearchAborted,
				"search aborted after settling %d nodes (limit %d)", expanded, rt.expansionLimit)
		}

		for _, edgeID := range rt.g.OutEdges(current.Item) {
			arc := rt.g.OutEdge(edgeID)
			if states[arc.To].status == statusSettled {
				continue
			}

			newCost := states[current.Item].gScore + rt.g.EdgeWeight(edgeID, rt.mode)
			if newCost >= states[arc.To].gScore {
				continue
			}

			priority := newCost + h.Estimate(rt.g.NodeCoordinate(arc.To), toCoord)
			neighborNode := datastructure.PriorityQueueNode[int32]{Rank: priority, GScore: newCost, Item: arc.To}

			if states[arc.To].status == statusUnvisited {
				pq.Insert(neighborNode)
			} else if err := pq.DecreaseKey(neighborNode); err != nil {
				return SearchResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "frontier corrupted")
			}

			states[arc.To] = nodeState{
				gScore:   newCost,
				fromNode: current.Item,
				fromEdge: edgeID,
				status:   statusFrontier,
			}
		}
	}

	return SearchResult{}, server.NewErrorf(server.ErrNoPathFound,
		"no route between node indices %d and %d", from, to)
}

func (rt *RouteAlgorithm) reconstructPath(states []nodeState, from, to int32) SearchResult {
	path := []int32{}
	edges := []int32{}

	curr := to
	for states[curr].fromNode != -1 {
		path = append(path, curr)
		edges = append(edges, states[curr].fromEdge)
		curr = states[curr].fromNode
	}
	path = append(path, from)

	return SearchResult{
		Path:  util.ReverseG(path),
		Edges: util.ReverseG(edges),
		Cost:  states[to].gScore,
	}
}

// CostMode reports the fixed mode this instance searches under.
func (rt *RouteAlgorithm) CostMode() datastructure.CostMode {
	return rt.mode
}
