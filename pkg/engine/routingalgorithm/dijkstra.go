package routingalgorithm

// ShortestPathDijkstra is the A* core with the heuristic pinned to zero.
// Kept as the baseline: it must find the same total cost as A* (while
// usually settling more nodes), which the tests assert.
func (rt *RouteAlgorithm) ShortestPathDijkstra(from, to int32) (SearchResult, error) {
	return rt.shortestPath(from, to, NewZeroHeuristic())
}
