package roadgraph

import (
	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/geo"

	"github.com/dhconnelly/rtreego"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// candidates fetched from the rtree before the exact haversine re-rank.
	// The rtree works in planar degree space, so the planar-nearest node is
	// not always the great-circle-nearest one; re-ranking a candidate set
	// this size settles it.
	nearestNodeCandidates = 32

	pointRectTolerance = 1e-9
)

type nodePoint struct {
	idx  int32
	rect rtreego.Rect
}

func (p *nodePoint) Bounds() rtreego.Rect {
	return p.rect
}

type nearestNodeIndex struct {
	tree *rtreego.Rtree
}

func newNearestNodeIndex(nodes []datastructure.Node) *nearestNodeIndex {
	spatials := make([]rtreego.Spatial, 0, len(nodes))
	for i, node := range nodes {
		rect := rtreego.Point{node.Lon, node.Lat}.ToRect(pointRectTolerance)
		spatials = append(spatials, &nodePoint{idx: int32(i), rect: rect})
	}
	return &nearestNodeIndex{
		tree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, spatials...),
	}
}

func (n *nearestNodeIndex) nearest(nodes []datastructure.Node, lat, lon float64) int32 {
	k := nearestNodeCandidates
	if len(nodes) < k {
		k = len(nodes)
	}
	candidates := n.tree.NearestNeighbors(k, rtreego.Point{lon, lat})

	bestIdx := int32(-1)
	bestDist := 0.0
	for _, spatial := range candidates {
		if spatial == nil {
			continue
		}
		candidate := spatial.(*nodePoint)
		node := nodes[candidate.idx]
		dist := geo.CalculateHaversineDistance(lat, lon, node.Lat, node.Lon)

		if bestIdx == -1 || dist < bestDist {
			bestIdx = candidate.idx
			bestDist = dist
			continue
		}
		if dist == bestDist && node.ID < nodes[bestIdx].ID {
			bestIdx = candidate.idx
		}
	}
	return bestIdx
}
