// Package proximity measures features against a query point and sorts them
// into distance zones.
package proximity

import (
	"github.com/joeblew999/plat-describe/internal/geometry"
)

// Zone is a distance bucket. Zones are ordered from immediate to far; Rank
// gives the order.
type Zone string

const (
	ZoneImmediate Zone = "immediate"
	ZoneNear      Zone = "near"
	ZoneVicinity  Zone = "vicinity"
	ZoneArea      Zone = "area"
	ZoneFar       Zone = "far"
)

// Zones lists every zone from nearest to farthest.
var Zones = []Zone{ZoneImmediate, ZoneNear, ZoneVicinity, ZoneArea, ZoneFar}

// Rank returns the zone's position in Zones; unknown zones rank as far.
func (z Zone) Rank() int {
	for i, v := range Zones {
		if v == z {
			return i
		}
	}
	return len(Zones) - 1
}

// Thresholds are the upper bounds, in meters, of the first four zones.
// Everything beyond Area is far.
type Thresholds struct {
	Immediate float64 `json:"immediate" minimum:"0" doc:"Upper bound of the immediate zone in meters" example:"50"`
	Near      float64 `json:"near" minimum:"0" doc:"Upper bound of the near zone in meters" example:"100"`
	Vicinity  float64 `json:"vicinity" minimum:"0" doc:"Upper bound of the vicinity zone in meters" example:"200"`
	Area      float64 `json:"area" minimum:"0" doc:"Upper bound of the area zone in meters" example:"400"`
}

// DefaultThresholds returns 50/100/200/400 m.
func DefaultThresholds() Thresholds {
	return Thresholds{Immediate: 50, Near: 100, Vicinity: 200, Area: 400}
}

// Normalize returns t, or the defaults when t is not strictly ascending and
// positive.
func (t Thresholds) Normalize() Thresholds {
	if t.Immediate > 0 && t.Immediate < t.Near && t.Near < t.Vicinity && t.Vicinity < t.Area {
		return t
	}
	return DefaultThresholds()
}

// Classify returns the zone of a distance in meters. Bounds are inclusive.
func (t Thresholds) Classify(meters float64) Zone {
	switch {
	case meters <= t.Immediate:
		return ZoneImmediate
	case meters <= t.Near:
		return ZoneNear
	case meters <= t.Vicinity:
		return ZoneVicinity
	case meters <= t.Area:
		return ZoneArea
	default:
		return ZoneFar
	}
}

// UnitsToMeters converts plane units to meters with the fixed local scale.
func UnitsToMeters(u float64) float64 {
	return u * geometry.MetersPerUnit
}

// MetersToUnits converts meters to plane units.
func MetersToUnits(m float64) float64 {
	return m / geometry.MetersPerUnit
}
