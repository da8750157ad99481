// Package geometry holds the planar primitives used by the description
// pipeline: SVG shape parsing, point/segment/polyline/polygon distances,
// segment intersection and bearings.
//
// All coordinates live in one flat plane measured in local units, where one
// unit is 1e-5 degree. At the reference latitude a unit is roughly 1.11 m in
// both axes. The approximation ignores the cos(latitude) shrink of longitude
// degrees, so accuracy degrades away from the reference latitude and over
// large extents.
//
// The plane follows the SVG convention: x grows east, y grows downward
// (south). North is therefore the -y direction and every bearing in this
// package is measured clockwise from -y.
package geometry

import (
	"github.com/paulmach/orb"
)

const (
	// UnitsPerDegree converts degrees to local plane units.
	UnitsPerDegree = 100000.0

	// MetersPerUnit is the fixed local-unit scale.
	MetersPerUnit = 1.11
)

// Project converts lat/lon to a plane point.
func Project(lat, lon float64) orb.Point {
	return orb.Point{lon * UnitsPerDegree, -lat * UnitsPerDegree}
}

// Unproject converts a plane point back to lat/lon.
func Unproject(p orb.Point) (lat, lon float64) {
	return -p[1] / UnitsPerDegree, p[0] / UnitsPerDegree
}
