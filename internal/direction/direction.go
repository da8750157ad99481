// Package direction turns bearings and distances into the words used in a
// description: clock positions, sectors, compass sides and distance
// phrases.
package direction

import (
	"fmt"
	"math"

	"github.com/joeblew999/plat-describe/internal/geometry"
)

// RelativeBearing returns bearing relative to heading in [0,360).
func RelativeBearing(heading, bearing float64) float64 {
	return geometry.NormalizeDegrees(bearing - heading)
}

// ClockPosition maps a relative bearing to an hour on a clock face with 12
// straight ahead. Each hour spans 30 degrees centred on it.
func ClockPosition(relative float64) int {
	h := int(math.Round(geometry.NormalizeDegrees(relative)/30)) % 12
	if h == 0 {
		return 12
	}
	return h
}

// ClockPhrase renders a clock position as "at 3 o'clock".
func ClockPhrase(clock int) string {
	return fmt.Sprintf("at %d o'clock", clock)
}

// Sector is one of eight coarse directions relative to the heading,
// clockwise from ahead.
type Sector int

const (
	Ahead Sector = iota
	AheadRight
	Right
	BehindRight
	Behind
	BehindLeft
	Left
	AheadLeft
)

var sectorLabels = [...]string{
	"ahead", "ahead-right", "right", "behind-right",
	"behind", "behind-left", "left", "ahead-left",
}

var sectorPhrases = [...]string{
	"ahead", "ahead on your right", "to your right", "behind you on the right",
	"behind you", "behind you on the left", "to your left", "ahead on your left",
}

// Sectors lists every sector in clock order from 12.
var Sectors = []Sector{Ahead, AheadRight, Right, BehindRight, Behind, BehindLeft, Left, AheadLeft}

func (s Sector) String() string {
	if s < Ahead || s > AheadLeft {
		return "unknown"
	}
	return sectorLabels[s]
}

// Phrase is the sector as it reads in a sentence.
func (s Sector) Phrase() string {
	if s < Ahead || s > AheadLeft {
		return ""
	}
	return sectorPhrases[s]
}

// MarshalText encodes the sector label.
func (s Sector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SectorFor buckets a clock position. 12 is ahead, 3 right, 6 behind and
// 9 left; the hours between fall in the diagonal sectors.
func SectorFor(clock int) Sector {
	switch clock {
	case 12, 0:
		return Ahead
	case 1, 2:
		return AheadRight
	case 3:
		return Right
	case 4, 5:
		return BehindRight
	case 6:
		return Behind
	case 7, 8:
		return BehindLeft
	case 9:
		return Left
	default:
		return AheadLeft
	}
}

var cardinals = [...]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// Cardinal names the nearest of the eight compass points.
func Cardinal(bearing float64) string {
	i := int(math.Round(geometry.NormalizeDegrees(bearing)/45)) % 8
	return cardinals[i]
}
