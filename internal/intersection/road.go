// Package intersection groups nearby streets by name and finds where they
// cross.
package intersection

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-describe/internal/proximity"
)

var directionSuffix = regexp.MustCompile(`(?i)\s+(north|south|east|west|n|s|e|w)\.?$`)

// BaseName strips a trailing compass direction so that "Yonge Street North"
// and "Yonge Street" group together.
func BaseName(name string) string {
	name = strings.TrimSpace(name)
	base := strings.TrimSpace(directionSuffix.ReplaceAllString(name, ""))
	if base == "" {
		return name
	}
	return base
}

func key(name string) string {
	return strings.ToLower(BaseName(name))
}

// Orientation is the dominant axis of a street.
type Orientation string

const (
	NorthSouth Orientation = "north-south"
	EastWest   Orientation = "east-west"
	Diagonal   Orientation = "diagonal"
)

// OrientationOf classifies the segment a-b by its angle from the east-west
// axis: under 30 degrees is east-west, over 60 is north-south.
func OrientationOf(a, b orb.Point) Orientation {
	dx := math.Abs(b[0] - a[0])
	dy := math.Abs(b[1] - a[1])
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	switch {
	case angle < 30:
		return EastWest
	case angle > 60:
		return NorthSouth
	default:
		return Diagonal
	}
}

// RoadGroup is every measured road feature sharing one base name.
type RoadGroup struct {
	Name    string
	Members []proximity.Measured // nearest first
}

// Meters is the distance to the nearest member.
func (g RoadGroup) Meters() float64 {
	if len(g.Members) == 0 {
		return math.Inf(1)
	}
	return g.Members[0].Meters
}

// Representative returns the endpoints of the longest member part.
func (g RoadGroup) Representative() (a, b orb.Point, ok bool) {
	best := -1.0
	for _, m := range g.Members {
		for _, line := range lines(m.Feature.Geometry) {
			if len(line) < 2 {
				continue
			}
			if l := planar.Length(orb.LineString(line)); l > best {
				best = l
				a, b, ok = line[0], line[len(line)-1], true
			}
		}
	}
	return a, b, ok
}

// Orientation returns the orientation of the representative member.
// Groups without a usable line are diagonal.
func (g RoadGroup) Orientation() Orientation {
	a, b, ok := g.Representative()
	if !ok || a.Equal(b) {
		return Diagonal
	}
	return OrientationOf(a, b)
}

// GroupRoads groups named road features by base name. Groups are sorted by
// name; members keep the distance order of measured.
func GroupRoads(measured []proximity.Measured) []RoadGroup {
	index := map[string]int{}
	var groups []RoadGroup
	for _, m := range measured {
		f := m.Feature
		if f == nil || !f.IsRoad() || !f.Named() {
			continue
		}
		k := key(f.Name)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, RoadGroup{Name: BaseName(f.Name)})
		}
		groups[i].Members = append(groups[i].Members, m)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// lines returns the traversable parts of a road geometry, one point list
// per part. Polygon rings are closed so the last edge is included.
func lines(g orb.Geometry) [][]orb.Point {
	switch g := g.(type) {
	case orb.LineString:
		return [][]orb.Point{g}
	case orb.MultiLineString:
		out := make([][]orb.Point, len(g))
		for i, ls := range g {
			out[i] = ls
		}
		return out
	case orb.Ring:
		return [][]orb.Point{closed(g)}
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return [][]orb.Point{closed(g[0])}
	case orb.MultiPolygon:
		var out [][]orb.Point
		for _, p := range g {
			if len(p) > 0 {
				out = append(out, closed(p[0]))
			}
		}
		return out
	}
	return nil
}

func closed(r orb.Ring) []orb.Point {
	if len(r) > 1 && !r[0].Equal(r[len(r)-1]) {
		out := make([]orb.Point, len(r)+1)
		copy(out, r)
		out[len(r)] = r[0]
		return out
	}
	return r
}
