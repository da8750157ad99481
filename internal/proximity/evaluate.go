package proximity

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
)

// Measured is a feature seen from a query point.
type Measured struct {
	Feature *feature.Feature
	Meters  float64 // distance to the nearest part of the geometry
	Zone    Zone
	Bearing float64 // absolute bearing to the feature, degrees from north
}

// Contains reports whether the query point lies on or inside the feature.
func (m Measured) Contains() bool {
	return m.Meters == 0
}

// DistanceTo returns the plane distance from p to g, choosing the point,
// polyline or polygon primitive by geometry type. Empty and unsupported
// geometry is unreachable.
func DistanceTo(p orb.Point, g orb.Geometry) float64 {
	switch g := g.(type) {
	case orb.Point:
		return geometry.PointToPoint(p, g)
	case orb.LineString:
		return geometry.PointToPolyline(p, g)
	case orb.Ring:
		return geometry.PointToPolygon(p, g)
	case orb.Polygon:
		if len(g) == 0 {
			return geometry.Unreachable
		}
		return geometry.PointToPolygon(p, g[0])
	case orb.MultiPoint:
		return nearest(len(g), func(i int) float64 { return geometry.PointToPoint(p, g[i]) })
	case orb.MultiLineString:
		return nearest(len(g), func(i int) float64 { return geometry.PointToPolyline(p, g[i]) })
	case orb.MultiPolygon:
		return nearest(len(g), func(i int) float64 { return DistanceTo(p, g[i]) })
	}
	return geometry.Unreachable
}

func nearest(n int, dist func(i int) float64) float64 {
	best := geometry.Unreachable
	for i := 0; i < n; i++ {
		best = math.Min(best, dist(i))
	}
	return best
}

// BearingTo returns the bearing from p to the closest part of g. When p is
// inside a polygon the polygon's centroid is used instead.
func BearingTo(p orb.Point, g orb.Geometry) float64 {
	switch v := g.(type) {
	case orb.Polygon, orb.Ring:
		if DistanceTo(p, g) == 0 {
			c, _ := planar.CentroidArea(v)
			return geometry.Bearing(p, c)
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			if DistanceTo(p, poly) == 0 {
				c, _ := planar.CentroidArea(poly)
				return geometry.Bearing(p, c)
			}
		}
	}
	c, ok := geometry.ClosestPoint(p, g)
	if !ok {
		return 0
	}
	return geometry.Bearing(p, c)
}

// Evaluate measures every feature from center, keeps those within
// maxMeters and returns them sorted by distance. Ties keep input order.
func Evaluate(center orb.Point, features []*feature.Feature, maxMeters float64, t Thresholds) []Measured {
	t = t.Normalize()
	if maxMeters <= 0 {
		maxMeters = t.Area
	}
	maxUnits := MetersToUnits(maxMeters)

	out := make([]Measured, 0, len(features))
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !f.Geometry.Bound().Pad(maxUnits).Contains(center) {
			continue
		}

		d := DistanceTo(center, f.Geometry)
		if math.IsInf(d, 1) {
			continue
		}
		meters := UnitsToMeters(d)
		if meters > maxMeters {
			continue
		}

		out = append(out, Measured{
			Feature: f,
			Meters:  meters,
			Zone:    t.Classify(meters),
			Bearing: BearingTo(center, f.Geometry),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Meters < out[j].Meters
	})
	return out
}
