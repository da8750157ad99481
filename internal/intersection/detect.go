package intersection

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

// DefaultStreetThreshold is how close, in meters, a street must be for the
// query point to count as standing on it.
const DefaultStreetThreshold = 5.0

// Intersection is a crossing of two street groups. A and B are base names in
// alphabetical order.
type Intersection struct {
	A      string    `json:"a"`
	B      string    `json:"b"`
	Point  orb.Point `json:"-"`
	Meters float64   `json:"meters"`
	Name   string    `json:"name,omitempty"`
	Known  bool      `json:"known,omitempty"`
}

func newIntersection(a, b string) Intersection {
	if b < a {
		a, b = b, a
	}
	return Intersection{A: a, B: b}
}

// Phrase returns "intersection of A and B".
func (x Intersection) Phrase() string {
	return "intersection of " + x.A + " and " + x.B
}

// Detector finds street crossings near a point.
type Detector struct {
	Known *KnownTable
}

// NewDetector returns a detector backed by the given known table, which may
// be nil.
func NewDetector(known *KnownTable) *Detector {
	return &Detector{Known: known}
}

// Detect tests every pair of distinct groups and keeps the crossing nearest
// to center for each pair. Known-table pairs whose streets are both present
// but do not cross geometrically are added at the midpoint of the two
// streets' closest points. Results are sorted by distance.
func (d *Detector) Detect(center orb.Point, groups []RoadGroup) []Intersection {
	var known *KnownTable
	if d != nil {
		known = d.Known
	}

	var out []Intersection
	seen := map[pair]bool{}
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			k := pairKey(groups[i].Name, groups[j].Name)
			if k.a == k.b || seen[k] {
				continue
			}
			p, ok := nearestCrossing(center, groups[i], groups[j])
			if !ok {
				continue
			}
			x := newIntersection(groups[i].Name, groups[j].Name)
			x.Point = p
			x.Meters = proximity.UnitsToMeters(geometry.PointToPoint(center, p))
			x.Name, _ = known.Lookup(x.A, x.B)
			seen[k] = true
			out = append(out, x)
		}
	}

	if known.Len() > 0 {
		byKey := make(map[string]int, len(groups))
		for i, g := range groups {
			byKey[key(g.Name)] = i
		}
		for _, e := range known.Entries() {
			k := pairKey(e.Streets[0], e.Streets[1])
			if seen[k] {
				continue
			}
			ga, oka := byKey[k.a]
			gb, okb := byKey[k.b]
			if !oka || !okb {
				continue
			}
			pa, oka := groups[ga].closest(center)
			pb, okb := groups[gb].closest(center)
			if !oka || !okb {
				continue
			}
			mid := orb.Point{(pa[0] + pb[0]) / 2, (pa[1] + pb[1]) / 2}
			x := newIntersection(groups[ga].Name, groups[gb].Name)
			x.Point = mid
			x.Meters = proximity.UnitsToMeters(geometry.PointToPoint(center, mid))
			x.Name = e.Name
			x.Known = true
			seen[k] = true
			out = append(out, x)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Meters != out[j].Meters {
			return out[i].Meters < out[j].Meters
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// nearestCrossing returns the crossing between any member segments of a and
// b closest to center. Equal distances are broken by coordinates so the
// result does not depend on segment order.
func nearestCrossing(center orb.Point, a, b RoadGroup) (orb.Point, bool) {
	var (
		best  orb.Point
		bestD = geometry.Unreachable
		found bool
	)
	for _, ma := range a.Members {
		for _, la := range lines(ma.Feature.Geometry) {
			for _, mb := range b.Members {
				for _, lb := range lines(mb.Feature.Geometry) {
					for _, p := range geometry.PolylineIntersections(la, lb) {
						d := geometry.PointToPoint(center, p)
						if d < bestD || (d == bestD && less(p, best)) {
							best, bestD, found = p, d, true
						}
					}
				}
			}
		}
	}
	return best, found
}

func less(p, q orb.Point) bool {
	if p[0] != q[0] {
		return p[0] < q[0]
	}
	return p[1] < q[1]
}

// closest returns the point of the group's nearest member closest to p.
func (g RoadGroup) closest(p orb.Point) (orb.Point, bool) {
	if len(g.Members) == 0 {
		return orb.Point{}, false
	}
	return geometry.ClosestPoint(p, g.Members[0].Feature.Geometry)
}

// NearestSegment returns the segment of the group's nearest member that is
// closest to p.
func (g RoadGroup) NearestSegment(p orb.Point) (a, b orb.Point, ok bool) {
	if len(g.Members) == 0 {
		return a, b, false
	}
	best := geometry.Unreachable
	for _, line := range lines(g.Members[0].Feature.Geometry) {
		sa, sb, found := geometry.NearestSegment(p, line)
		if !found {
			continue
		}
		if d := geometry.PointToSegment(p, sa, sb); d < best {
			best = d
			a, b, ok = sa, sb, true
		}
	}
	return a, b, ok
}

// LocationKind says how the query point relates to the street network.
type LocationKind string

const (
	AtNone         LocationKind = "none"
	AtStreet       LocationKind = "street"
	AtIntersection LocationKind = "intersection"
)

// Location is the street-level position of a query point.
type Location struct {
	Kind    LocationKind
	Streets []RoadGroup // nearest first; two for an intersection, one for a street
}

// Phrase renders the location: "intersection of A and B" with names in
// alphabetical order, "on X", or "" when there is no street nearby.
func (l Location) Phrase() string {
	switch l.Kind {
	case AtIntersection:
		return newIntersection(l.Streets[0].Name, l.Streets[1].Name).Phrase()
	case AtStreet:
		return "on " + l.Streets[0].Name
	}
	return ""
}

// Locate reports whether center is on one street, at the meeting of two, or
// neither. Streets count when their nearest member is within threshold
// meters; threshold <= 0 uses DefaultStreetThreshold.
func Locate(center orb.Point, groups []RoadGroup, threshold float64) Location {
	if threshold <= 0 {
		threshold = DefaultStreetThreshold
	}

	type candidate struct {
		group  RoadGroup
		meters float64
	}
	var near []candidate
	for _, g := range groups {
		d := geometry.Unreachable
		for _, m := range g.Members {
			if md := proximity.DistanceTo(center, m.Feature.Geometry); md < d {
				d = md
			}
		}
		if meters := proximity.UnitsToMeters(d); meters <= threshold {
			near = append(near, candidate{g, meters})
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		return near[i].meters < near[j].meters
	})

	streets := make([]RoadGroup, 0, 2)
	for _, c := range near {
		if len(streets) == 2 {
			break
		}
		streets = append(streets, c.group)
	}

	switch len(streets) {
	case 2:
		return Location{Kind: AtIntersection, Streets: streets}
	case 1:
		return Location{Kind: AtStreet, Streets: streets}
	}
	return Location{Kind: AtNone}
}
