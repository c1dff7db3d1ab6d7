package osmparser

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"
	"github.com/naufal-dp/routerx/pkg/util"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

type nodeType int

const (
	endNode nodeType = iota
	betweenNode
	junctionNode
)

type nodeCoord struct {
	lat float64
	lon float64
}

type wayNode struct {
	id    int64
	coord nodeCoord
}

// OsmParser builds road-network graph data out of an openstreetmap pbf
// extract. Ways are split at junction nodes and barriers so that every
// produced edge connects exactly two graph nodes.
type OsmParser struct {
	wayNodeMap      map[int64]nodeType
	acceptedNodeMap map[int64]nodeCoord
	barrierNodes    map[int64]bool
	usedNodes       map[int64]struct{}
}

func NewOsmParser() *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]nodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		barrierNodes:    make(map[int64]bool),
		usedNodes:       make(map[int64]struct{}),
	}
}

var skipHighway = map[string]struct{}{
	"footway":                {},
	"construction":           {},
	"cycleway":               {},
	"path":                   {},
	"pedestrian":             {},
	"busway":                 {},
	"steps":                  {},
	"bridleway":              {},
	"corridor":               {},
	"street_lamp":            {},
	"bus_stop":               {},
	"crossing":               {},
	"cyclist_waiting_aid":    {},
	"elevator":               {},
	"emergency_bay":          {},
	"emergency_access_point": {},
	"give_way":               {},
	"phone":                  {},
	"ladder":                 {},
	"milestone":              {},
	"passing_place":          {},
	"platform":               {},
	"speed_camera":           {},
	"track":                  {},
	"bus_guideway":           {},
	"speed_display":          {},
	"stop":                   {},
	"toll_gantry":            {},
	"traffic_mirror":         {},
	"traffic_signals":        {},
	"trailhead":              {},
}

// Parse scans the pbf file twice. The first scan classifies every way node
// as end, between, or junction; the second collects node coordinates and
// emits edges per way segment. The scans must not run in parallel.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.GraphData, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(ctx, f, 0)
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()

		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 {
			continue
		}
		if !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Printf("reading openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = endNode
				} else {
					p.wayNodeMap[int64(node.ID)] = betweenNode
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = junctionNode
			}
		}
	}
	scanner.Close()
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, f, 0)
	defer scanner.Close()

	edges := []datastructure.Edge{}
	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeWay:
			way := o.(*osm.Way)
			if len(way.Nodes) < 2 {
				continue
			}
			if !acceptOsmWay(way) {
				continue
			}
			if (countWays+1)%50000 == 0 {
				log.Printf("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++

			if err := p.processWay(way, &edges); err != nil {
				return nil, err
			}
		case osm.TypeNode:
			if (countNodes+1)%50000 == 0 {
				log.Printf("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			node := o.(*osm.Node)

			if _, ok := p.wayNodeMap[int64(node.ID)]; ok {
				p.acceptedNodeMap[int64(node.ID)] = nodeCoord{
					lat: node.Lat,
					lon: node.Lon,
				}
			}

			if node.Tags.Find("barrier") != "" ||
				node.Tags.Find("ford") != "" {
				p.barrierNodes[int64(node.ID)] = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	nodes := make([]datastructure.Node, 0, len(p.usedNodes))
	for nodeID := range p.usedNodes {
		coord := p.acceptedNodeMap[nodeID]
		nodes = append(nodes, datastructure.NewNode(nodeID, coord.lat, coord.lon))
	}

	log.Printf("total graph nodes: %d", len(nodes))
	log.Printf("total graph edges: %d", len(edges))

	return &datastructure.GraphData{
		Nodes: nodes,
		Edges: edges,
	}, nil
}

type wayExtraInfo struct {
	oneWay  bool
	forward bool
}

func (p *OsmParser) processWay(way *osm.Way, edges *[]datastructure.Edge) error {
	name := way.Tags.Find("name")
	if name == "" {
		name = way.Tags.Find("ref")
	}

	roadClass := ""
	maxSpeed := 0.0
	highwayTypeSpeed := 0.0

	info := wayExtraInfo{}
	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	if val := way.Tags.Find("oneway"); val != "" && val != "no" || okvf || okmvf || okvb || okmvb {
		info.oneWay = true
	}

	if way.Tags.Find("oneway") == "-1" || okvf || okmvf {
		// restricted/not allowed in the drawing direction
		info.forward = false
	} else {
		info.forward = true
	}

	for _, tag := range way.Tags {
		switch tag.Key {
		case "junction":
			// roundabouts are implicitly oneway in the drawing direction
			if tag.Value == "roundabout" || tag.Value == "circular" {
				info.oneWay = true
				info.forward = true
			}
		case "highway":
			highwayTypeSpeed = datastructure.RoadTypeMaxSpeed(tag.Value)
			roadClass = tag.Value
		case "maxspeed":
			currSpeed, err := ParseMaxSpeed(tag.Value)
			if err != nil {
				// malformed tag value, fall back to the highway-type speed
				continue
			}
			maxSpeed = currSpeed
		}
	}

	speed := maxSpeed
	if speed == 0 {
		speed = highwayTypeSpeed
	}

	waySegment := []wayNode{}
	for _, wn := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wn.ID)]
		if !ok {
			continue
		}
		nodeData := wayNode{
			id:    int64(wn.ID),
			coord: coord,
		}
		if p.isJunctionNode(nodeData.id) {
			if len(waySegment) > 0 {
				waySegment = append(waySegment, nodeData)
				p.processSegment(waySegment, name, roadClass, speed, edges, info)
				waySegment = []wayNode{}
			}
			waySegment = append(waySegment, nodeData)
		} else {
			waySegment = append(waySegment, nodeData)
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, name, roadClass, speed, edges, info)
	}

	return nil
}

func (p *OsmParser) processSegment(segment []wayNode, name, roadClass string, speed float64,
	edges *[]datastructure.Edge, info wayExtraInfo) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		// degenerate loop
		return
	}
	if segment[0].id == segment[len(segment)-1].id {
		// loop way, split so both halves connect distinct nodes
		p.splitOnBarriers(segment[0:len(segment)-1], name, roadClass, speed, edges, info)
		p.splitOnBarriers(segment[len(segment)-2:], name, roadClass, speed, edges, info)
		return
	}
	p.splitOnBarriers(segment, name, roadClass, speed, edges, info)
}

func (p *OsmParser) splitOnBarriers(segment []wayNode, name, roadClass string, speed float64,
	edges *[]datastructure.Edge, info wayExtraInfo) {
	waySegment := []wayNode{}
	for i := 0; i < len(segment); i++ {
		nodeData := segment[i]
		if p.barrierNodes[nodeData.id] {
			p.barrierNodes[nodeData.id] = false

			if len(waySegment) != 0 {
				waySegment = append(waySegment, nodeData)
				p.addEdge(waySegment, name, roadClass, speed, edges, info)
				waySegment = []wayNode{}
			}
		}
		waySegment = append(waySegment, nodeData)
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, name, roadClass, speed, edges, info)
	}
}

func (p *OsmParser) addEdge(segment []wayNode, name, roadClass string, speed float64,
	edges *[]datastructure.Edge, info wayExtraInfo) {
	from := segment[0]
	to := segment[len(segment)-1]
	p.usedNodes[from.id] = struct{}{}
	p.usedNodes[to.id] = struct{}{}

	edgePoints := make([]datastructure.Coordinate, 0, len(segment))
	distance := 0.0
	for i := 0; i < len(segment); i++ {
		edgePoints = append(edgePoints, datastructure.NewCoordinate(segment[i].coord.lat, segment[i].coord.lon))
		if i > 0 {
			distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
				segment[i].coord.lat, segment[i].coord.lon)
		}
	}

	forwardEdge := datastructure.Edge{
		FromID:          from.id,
		ToID:            to.id,
		Length:          distance,
		SpeedKmh:        speed,
		StreetName:      name,
		RoadClass:       roadClass,
		PointsInBetween: edgePoints,
	}

	reversedPoints := util.ReverseG(edgePoints)

	backwardEdge := datastructure.Edge{
		FromID:          to.id,
		ToID:            from.id,
		Length:          distance,
		SpeedKmh:        speed,
		StreetName:      name,
		RoadClass:       roadClass,
		PointsInBetween: reversedPoints,
	}

	if info.oneWay {
		if info.forward {
			*edges = append(*edges, forwardEdge)
		} else {
			*edges = append(*edges, backwardEdge)
		}
		return
	}
	*edges = append(*edges, forwardEdge, backwardEdge)
}

// ParseMaxSpeed reads an osm maxspeed tag value and returns the speed in
// km/h. Handles the mph, knots, and explicit km/h suffixes.
func ParseMaxSpeed(value string) (float64, error) {
	switch {
	case strings.Contains(value, "mph"):
		currSpeed, err := strconv.ParseFloat(strings.Replace(value, " mph", "", -1), 64)
		if err != nil {
			return 0, err
		}
		return currSpeed * 1.60934, nil
	case strings.Contains(value, "km/h"):
		return strconv.ParseFloat(strings.Replace(value, " km/h", "", -1), 64)
	case strings.Contains(value, "knots"):
		currSpeed, err := strconv.ParseFloat(strings.Replace(value, " knots", "", -1), 64)
		if err != nil {
			return 0, err
		}
		return currSpeed * 1.852, nil
	default:
		return strconv.ParseFloat(value, 64)
	}
}

func isRestricted(value string) bool {
	switch value {
	case "no", "restricted", "military", "emergency", "private", "permit":
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward),
		isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == junctionNode
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}
