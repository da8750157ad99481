package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Epsilon is the determinant magnitude below which segments are treated as
// parallel.
const Epsilon = 1e-10

// Crossing is a proper intersection of two segments. T and U are the
// parameters along the first and second segment, both in [0,1].
type Crossing struct {
	Point orb.Point
	T     float64
	U     float64
}

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// SegmentIntersection solves a1 + t(a2-a1) = b1 + u(b2-b1). Parallel,
// collinear and degenerate segments report no intersection.
func SegmentIntersection(a1, a2, b1, b2 orb.Point) (Crossing, bool) {
	rx, ry := a2[0]-a1[0], a2[1]-a1[1]
	sx, sy := b2[0]-b1[0], b2[1]-b1[1]

	det := cross(rx, ry, sx, sy)
	if math.Abs(det) < Epsilon {
		return Crossing{}, false
	}

	qx, qy := b1[0]-a1[0], b1[1]-a1[1]
	t := cross(qx, qy, sx, sy) / det
	u := cross(qx, qy, rx, ry) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Crossing{}, false
	}

	return Crossing{
		Point: orb.Point{a1[0] + t*rx, a1[1] + t*ry},
		T:     t,
		U:     u,
	}, true
}

// PolylineIntersections returns every crossing point between two
// polylines. O(n·m), unordered, not deduplicated: a crossing exactly at a
// shared vertex can be reported more than once.
func PolylineIntersections(a, b []orb.Point) []orb.Point {
	var points []orb.Point
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if c, ok := SegmentIntersection(a[i], a[i+1], b[j], b[j+1]); ok {
				points = append(points, c.Point)
			}
		}
	}
	return points
}

// SideOfLine returns the cross product of (b-a) and (p-a). In the y-down
// plane a positive value means p lies to the right of the directed segment
// a->b, negative to the left, zero on the line.
func SideOfLine(p, a, b orb.Point) float64 {
	return cross(b[0]-a[0], b[1]-a[1], p[0]-a[0], p[1]-a[1])
}
