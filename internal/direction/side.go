package direction

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/intersection"
)

// Side is the side of a directed line a point lies on.
type Side int

const (
	OnLine Side = iota
	LeftSide
	RightSide
)

// SideOf classifies p against the directed segment a->b.
func SideOf(p, a, b orb.Point) Side {
	c := geometry.SideOfLine(p, a, b)
	switch {
	case c > 0:
		return RightSide
	case c < 0:
		return LeftSide
	}
	return OnLine
}

// StreetSide names the compass side of a street segment a-b that p is on.
// North-south streets have east and west sides, east-west streets north and
// south; diagonal streets use the nearest of the eight compass points. An
// empty string means p is on the centre line.
func StreetSide(p, a, b orb.Point, o intersection.Orientation) string {
	side := SideOf(p, a, b)
	if side == OnLine {
		return ""
	}

	along := geometry.Bearing(a, b)
	toward := along + 90
	if side == LeftSide {
		toward = along - 90
	}
	rad := geometry.NormalizeDegrees(toward) * math.Pi / 180

	switch o {
	case intersection.NorthSouth:
		if math.Sin(rad) > 0 {
			return "east"
		}
		return "west"
	case intersection.EastWest:
		if math.Cos(rad) > 0 {
			return "north"
		}
		return "south"
	}
	return Cardinal(toward)
}
