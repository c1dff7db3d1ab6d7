package geo

import (
	"github.com/naufal-dp/routerx/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// ProjectPointToLineCoord projects snap onto the segment between two street
// points and returns the projected coordinate.
func ProjectPointToLineCoord(nearestStPoint, secondNearestStPoint, snap datastructure.Coordinate) datastructure.Coordinate {
	nearestStS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(nearestStPoint.Lat, nearestStPoint.Lon))
	secondNearestStS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(secondNearestStPoint.Lat, secondNearestStPoint.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, nearestStS2, secondNearestStS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointToSegmentDistance returns the meters between p and the closest point
// of the segment (a, b).
func PointToSegmentDistance(p, a, b datastructure.Coordinate) float64 {
	proj := ProjectPointToLineCoord(a, b, p)
	return CalculateHaversineDistance(p.Lat, p.Lon, proj.Lat, proj.Lon)
}
