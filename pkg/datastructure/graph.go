package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// CostMode selects which edge attribute a search treats as traversal cost.
// It must stay fixed for the whole duration of one search.
type CostMode int

const (
	// CostDistance weighs edges by their length in meters.
	CostDistance CostMode = iota
	// CostTime weighs edges by their estimated traversal time in seconds.
	CostTime
)

func (m CostMode) String() string {
	switch m {
	case CostTime:
		return "time"
	default:
		return "distance"
	}
}

// ParseCostMode maps the wire-level mode name onto a CostMode. An empty
// string defaults to distance.
func ParseCostMode(s string) (CostMode, bool) {
	switch s {
	case "", "distance":
		return CostDistance, true
	case "time":
		return CostTime, true
	}
	return CostDistance, false
}

// Node is a road intersection as delivered by the network-loading
// collaborator. ID is the origin-system identifier (arbitrary, possibly
// sparse). Immutable once loaded.
type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

func NewNode(id int64, lat, lon float64) Node {
	return Node{ID: id, Lat: lat, Lon: lon}
}

// Edge is a directed road segment between two intersections. Length is in
// meters. SpeedKmh may be zero when the source network carries no maxspeed,
// in which case the road graph substitutes its configured default speed.
// PointsInBetween holds the full geometry of the segment in travel order
// (the true road curvature), endpoint intersections included; consumers
// dedupe shared boundary points when stitching segments together.
type Edge struct {
	FromID          int64
	ToID            int64
	Length          float64
	SpeedKmh        float64
	StreetName      string
	RoadClass       string
	PointsInBetween []Coordinate
}

// GraphData is the generic weighted-graph representation handed to the road
// graph by a network loader. The engine does not know how it was obtained.
type GraphData struct {
	Nodes []Node
	Edges []Edge
}

// Arc is an outgoing edge in the dense internal representation: endpoints
// are int32 indices assigned by the road graph, never origin-system IDs.
type Arc struct {
	EdgeID          int32
	From            int32
	To              int32
	Dist            float64 // meters
	Time            float64 // seconds
	PointsInBetween []Coordinate
}

func NewArc(edgeID, from, to int32, dist, time float64, pointsInBetween []Coordinate) Arc {
	return Arc{
		EdgeID:          edgeID,
		From:            from,
		To:              to,
		Dist:            dist,
		Time:            time,
		PointsInBetween: pointsInBetween,
	}
}

// RoadTypeMaxSpeed returns the assumed driving speed (km/h) for an osm
// highway class that carries no explicit maxspeed tag.
func RoadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 95
	case "trunk":
		return 85
	case "primary":
		return 75
	case "secondary":
		return 65
	case "tertiary":
		return 50
	case "unclassified":
		return 50
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 90
	case "trunk_link":
		return 80
	case "primary_link":
		return 70
	case "secondary_link":
		return 60
	case "tertiary_link":
		return 50
	case "living_street":
		return 20
	default:
		return 40
	}
}

// RenderPath encodes a coordinate sequence as a google polyline string.
func RenderPath(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
