package routingalgorithm

// https://www.cs.princeton.edu/courses/archive/spr06/cos423/Handouts/GH05.pdf

// ShortestPathAStar finds the minimum-cost path between two node indices
// using A* with the admissible heuristic matching the instance's cost mode
// (or the override supplied via WithHeuristic).
func (rt *RouteAlgorithm) ShortestPathAStar(from, to int32) (SearchResult, error) {
	h := rt.heuristic
	if h == nil {
		h = defaultHeuristic(rt.g, rt.mode)
	}
	return rt.shortestPath(from, to, h)
}
