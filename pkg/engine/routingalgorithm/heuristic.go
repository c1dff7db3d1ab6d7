package routingalgorithm

import (
	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/server"
)

// Heuristic estimates the remaining cost between two coordinates in the
// units of the active cost mode.
//
// A* is only guaranteed to return minimum-cost paths when the heuristic is
// admissible: it must NEVER overestimate the true remaining cost. Any new
// heuristic wired into the searches has to preserve that bound or the
// optimality contract is silently lost.
type Heuristic interface {
	Estimate(from, to datastructure.Coordinate) float64
}

// HaversineHeuristic estimates remaining distance (meters) as the
// great-circle distance. Admissible for distance mode: a road can never be
// shorter than the straight line between its endpoints.
type HaversineHeuristic struct{}

func NewHaversineHeuristic() HaversineHeuristic {
	return HaversineHeuristic{}
}

func (HaversineHeuristic) Estimate(from, to datastructure.Coordinate) float64 {
	return geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon)
}

// TravelTimeHeuristic estimates remaining seconds as great-circle distance
// divided by an optimistic top speed. Admissible for time mode as long as
// maxSpeedMS is at least the highest speed reachable anywhere on the map.
type TravelTimeHeuristic struct {
	maxSpeedMS float64
}

func NewTravelTimeHeuristic(maxSpeedMS float64) (TravelTimeHeuristic, error) {
	if maxSpeedMS <= 0 {
		return TravelTimeHeuristic{}, server.NewErrorf(server.ErrBadRequest, "max speed must be positive, got %f", maxSpeedMS)
	}
	return TravelTimeHeuristic{maxSpeedMS: maxSpeedMS}, nil
}

func (h TravelTimeHeuristic) Estimate(from, to datastructure.Coordinate) float64 {
	return geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon) / h.maxSpeedMS
}

// ZeroHeuristic disables the A* speed-up, turning the search into plain
// Dijkstra. Trivially admissible.
type ZeroHeuristic struct{}

func NewZeroHeuristic() ZeroHeuristic {
	return ZeroHeuristic{}
}

func (ZeroHeuristic) Estimate(_, _ datastructure.Coordinate) float64 {
	return 0
}

// ManhattanHeuristic sums the haversine components along latitude and
// longitude separately. NOT admissible in general (it can exceed the true
// road cost on diagonal streets), so it is never wired in by default; it
// exists for experiments comparing visit counts.
type ManhattanHeuristic struct{}

func NewManhattanHeuristic() ManhattanHeuristic {
	return ManhattanHeuristic{}
}

func (ManhattanHeuristic) Estimate(from, to datastructure.Coordinate) float64 {
	latDist := geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, from.Lon)
	lonDist := geo.CalculateHaversineDistance(from.Lat, from.Lon, from.Lat, to.Lon)
	return latDist + lonDist
}

// defaultHeuristic picks the admissible heuristic matching the cost mode.
func defaultHeuristic(g RoutingGraph, mode datastructure.CostMode) Heuristic {
	if mode == datastructure.CostTime {
		h, err := NewTravelTimeHeuristic(g.MaxSpeedMS())
		if err == nil {
			return h
		}
		// graph without a usable top speed: fall back to zero, which keeps
		// A* correct at the price of exploring like Dijkstra
		return NewZeroHeuristic()
	}
	return NewHaversineHeuristic()
}
