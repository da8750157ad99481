package direction

import (
	"fmt"
	"math"

	"github.com/joeblew999/plat-describe/internal/proximity"
)

// WalkingSpeed is the assumed walking pace in meters per minute.
const WalkingSpeed = 80.0

func roundTo(v, step float64) int {
	return int(math.Round(v/step) * step)
}

// DistancePhrase renders a distance with precision that coarsens by zone:
// 10 m steps up close, 50 m in the vicinity, 100 m in the area.
func DistancePhrase(meters float64, z proximity.Zone) string {
	switch z {
	case proximity.ZoneImmediate, proximity.ZoneNear:
		if meters < 10 {
			return "a few meters"
		}
		return fmt.Sprintf("about %d meters", roundTo(meters, 10))
	case proximity.ZoneVicinity:
		return fmt.Sprintf("about %d meters", max(50, roundTo(meters, 50)))
	case proximity.ZoneArea:
		return fmt.Sprintf("roughly %d meters", max(100, roundTo(meters, 100)))
	}
	return fmt.Sprintf("more than %d meters", int(math.Floor(meters/100)*100))
}

// ZonePhrase is the zone alone, for brief output.
func ZonePhrase(z proximity.Zone) string {
	switch z {
	case proximity.ZoneImmediate:
		return "right here"
	case proximity.ZoneNear:
		return "nearby"
	case proximity.ZoneVicinity:
		return "a short walk away"
	case proximity.ZoneArea:
		return "in the area"
	}
	return "further away"
}

// WalkingTime estimates the walk at WalkingSpeed.
func WalkingTime(meters float64) string {
	if meters < WalkingSpeed/2 {
		return "less than a minute's walk"
	}
	minutes := int(math.Round(meters / WalkingSpeed))
	if minutes <= 1 {
		return "about a minute's walk"
	}
	return fmt.Sprintf("about %d minutes' walk", minutes)
}
