package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// NormalizeDegrees maps any finite angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Bearing returns the compass bearing from one point to another in degrees,
// clockwise from north. North is the -y axis of the plane, so a target
// straight up the map is 0 and one to the right is 90. Identical points
// give 0.
func Bearing(from, to orb.Point) float64 {
	dx := to[0] - from[0]
	dy := to[1] - from[1]
	if dx == 0 && dy == 0 {
		return 0
	}
	return NormalizeDegrees(math.Atan2(dx, -dy) * 180 / math.Pi)
}

// DirectionAt returns the bearing of the polyline segment closest to p,
// following the polyline's vertex order. ok is false for fewer than two
// vertices or when every segment is degenerate.
func DirectionAt(p orb.Point, line []orb.Point) (bearing float64, ok bool) {
	a, b, ok := NearestSegment(p, line)
	if !ok {
		return 0, false
	}
	return Bearing(a, b), true
}

// NearestSegment returns the non-degenerate segment of line closest to p.
func NearestSegment(p orb.Point, line []orb.Point) (a, b orb.Point, ok bool) {
	best := Unreachable
	for i := 0; i+1 < len(line); i++ {
		if line[i].Equal(line[i+1]) {
			continue
		}
		if d := PointToSegment(p, line[i], line[i+1]); d < best {
			best = d
			a, b, ok = line[i], line[i+1], true
		}
	}
	return a, b, ok
}
