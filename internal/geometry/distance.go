package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Unreachable is the distance reported for empty geometry.
var Unreachable = math.Inf(1)

// PointToPoint returns the Euclidean distance between a and b.
func PointToPoint(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// ClosestOnSegment projects p onto segment a-b, clamping the parameter to
// [0,1]. A zero-length segment returns a with t = 0.
func ClosestOnSegment(p, a, b orb.Point) (closest orb.Point, t float64) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a, 0
	}

	t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}, t
}

// PointToSegment returns the distance from p to segment a-b.
func PointToSegment(p, a, b orb.Point) float64 {
	c, _ := ClosestOnSegment(p, a, b)
	return planar.Distance(p, c)
}

// PointToPolyline returns the minimum distance from p to any segment of the
// open polyline. A single vertex degrades to point distance.
func PointToPolyline(p orb.Point, line []orb.Point) float64 {
	switch len(line) {
	case 0:
		return Unreachable
	case 1:
		return PointToPoint(p, line[0])
	}

	best := Unreachable
	for i := 0; i+1 < len(line); i++ {
		if d := PointToSegment(p, line[i], line[i+1]); d < best {
			best = d
		}
	}
	return best
}

// PointInPolygon reports whether p is inside the ring using even-odd ray
// casting. The edge from the last vertex back to the first is included, so
// the ring may be open or closed.
func PointInPolygon(p orb.Point, ring []orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	x, y := p[0], p[1]
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PointToPolygon returns 0 when p is inside the ring, otherwise the
// distance to its boundary treated as a closed polyline.
func PointToPolygon(p orb.Point, ring []orb.Point) float64 {
	if len(ring) == 0 {
		return Unreachable
	}
	if PointInPolygon(p, ring) {
		return 0
	}
	if len(ring) < 3 {
		return PointToPolyline(p, ring)
	}
	return PointToPolyline(p, closeRing(ring))
}

// ClosestPoint returns the point of g nearest to p. ok is false for empty
// or unsupported geometry. Points inside a polygon are their own closest
// point. Multi-geometries use their nearest part.
func ClosestPoint(p orb.Point, g orb.Geometry) (closest orb.Point, ok bool) {
	switch g := g.(type) {
	case orb.Point:
		return g, true
	case orb.LineString:
		return closestOnLine(p, g)
	case orb.Ring:
		if PointInPolygon(p, g) {
			return p, true
		}
		return closestOnLine(p, closeRing(g))
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return orb.Point{}, false
		}
		return ClosestPoint(p, g[0])
	case orb.MultiPoint:
		return nearestPart(p, len(g), func(i int) orb.Geometry { return g[i] })
	case orb.MultiLineString:
		return nearestPart(p, len(g), func(i int) orb.Geometry { return g[i] })
	case orb.MultiPolygon:
		return nearestPart(p, len(g), func(i int) orb.Geometry { return g[i] })
	}
	return orb.Point{}, false
}

func nearestPart(p orb.Point, n int, part func(i int) orb.Geometry) (orb.Point, bool) {
	best := Unreachable
	var (
		bestPoint orb.Point
		found     bool
	)
	for i := 0; i < n; i++ {
		c, ok := ClosestPoint(p, part(i))
		if !ok {
			continue
		}
		if d := planar.Distance(p, c); d < best {
			best, bestPoint, found = d, c, true
		}
	}
	return bestPoint, found
}

func closestOnLine(p orb.Point, line []orb.Point) (orb.Point, bool) {
	switch len(line) {
	case 0:
		return orb.Point{}, false
	case 1:
		return line[0], true
	}

	best := Unreachable
	var bestPoint orb.Point
	for i := 0; i+1 < len(line); i++ {
		c, _ := ClosestOnSegment(p, line[i], line[i+1])
		if d := planar.Distance(p, c); d < best {
			best = d
			bestPoint = c
		}
	}
	return bestPoint, true
}
