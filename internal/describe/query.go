// Package describe assembles a spoken-style description of the
// surroundings of a point from extracted map features.
package describe

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

// DetailLevel controls how many items each section lists and how precise
// their qualifiers are.
type DetailLevel string

const (
	Brief    DetailLevel = "brief"
	Standard DetailLevel = "standard"
	Detailed DetailLevel = "detailed"
)

// Normalize returns the level, or Standard for anything unrecognised.
func (d DetailLevel) Normalize() DetailLevel {
	switch d {
	case Brief, Detailed:
		return d
	}
	return Standard
}

func (d DetailLevel) sectionLimit() int {
	switch d {
	case Brief:
		return 3
	case Detailed:
		return 10
	}
	return 5
}

func (d DetailLevel) perSector() int {
	switch d {
	case Brief:
		return 1
	case Detailed:
		return 3
	}
	return 2
}

// Include selects the optional sections.
type Include struct {
	Landmarks     bool `json:"landmarks"`
	Transit       bool `json:"transit"`
	Accessibility bool `json:"accessibility"`
	Amenities     bool `json:"amenities"`
	Directions    bool `json:"directions"`
}

// IncludeAll turns every section on.
func IncludeAll() Include {
	return Include{Landmarks: true, Transit: true, Accessibility: true, Amenities: true, Directions: true}
}

// Query is one description request.
type Query struct {
	Center     orb.Point
	Heading    *float64 // nil when the device could not measure one
	Radius     float64  // meters; <= 0 uses the area threshold
	Thresholds proximity.Thresholds
	Detail     DetailLevel
	Include    Include
}

// At returns a standard-detail query at lat/lon with every section and the
// default thresholds.
func At(lat, lon float64) Query {
	return Query{
		Center:     geometry.Project(lat, lon),
		Thresholds: proximity.DefaultThresholds(),
		Detail:     Standard,
		Include:    IncludeAll(),
	}
}

// WithHeading returns a copy of q with a measured heading.
func (q Query) WithHeading(deg float64) Query {
	h := geometry.NormalizeDegrees(deg)
	q.Heading = &h
	return q
}

func (q Query) normalize() Query {
	q.Thresholds = q.Thresholds.Normalize()
	if q.Radius <= 0 {
		q.Radius = q.Thresholds.Area
	}
	q.Detail = q.Detail.Normalize()
	return q
}
