package describe

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-describe/internal/direction"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/intersection"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

// IntersectionRadius is how close, in meters, a detected crossing must be to
// be reported as the current location.
const IntersectionRadius = 50.0

// MinParkArea is the smallest park, in square meters, used as a location
// landmark.
const MinParkArea = 2000.0

// Description is the assembled result of one query.
type Description struct {
	Title           string      `json:"title"`
	Summary         string      `json:"summary"`
	Location        string      `json:"location"`
	Sections        []Section   `json:"sections"`
	Text            string      `json:"text"`
	Lat             float64     `json:"lat"`
	Lon             float64     `json:"lon"`
	Heading         float64     `json:"heading"`
	HeadingMeasured bool        `json:"headingMeasured"`
	Detail          DetailLevel `json:"detail"`
	Targets         []Target    `json:"targets,omitempty"`
}

// Section is one titled part of a description. Category sections list
// items; the directions section carries prose.
type Section struct {
	Heading string   `json:"heading"`
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// Render returns the section as a sentence.
func (s Section) Render() string {
	body := s.Text
	if body == "" {
		body = strings.Join(s.Items, "; ") + "."
	}
	return s.Heading + ". " + body
}

// Target is a feature kept for directional output. It holds everything
// needed to place the feature relative to a new heading.
type Target struct {
	Name    string         `json:"name"`
	Bearing float64        `json:"bearing"`
	Meters  float64        `json:"meters"`
	Zone    proximity.Zone `json:"zone" enum:"immediate,near,vicinity,area,far"`
}

// Event is a stage notification sent to the trace hook.
type Event struct {
	Stage  string
	Detail string
	Point  orb.Point
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithKnown sets the known-intersection table.
func WithKnown(t *intersection.KnownTable) Option {
	return func(a *Assembler) {
		a.detector = intersection.NewDetector(t)
	}
}

// WithStreetThreshold sets how close a street must be to stand on it.
func WithStreetThreshold(meters float64) Option {
	return func(a *Assembler) {
		a.streetThreshold = meters
	}
}

// WithTrace installs a hook that receives stage events.
func WithTrace(fn func(Event)) Option {
	return func(a *Assembler) {
		a.trace = fn
	}
}

// Assembler runs the description pipeline. It holds no per-query state and
// is safe for concurrent use.
type Assembler struct {
	detector        *intersection.Detector
	streetThreshold float64
	trace           func(Event)
}

// New returns an assembler with no known table and the default street
// threshold unless overridden.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		detector:        intersection.NewDetector(nil),
		streetThreshold: intersection.DefaultStreetThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) emit(stage string, p orb.Point, format string, args ...any) {
	if a.trace == nil {
		return
	}
	a.trace(Event{Stage: stage, Detail: fmt.Sprintf(format, args...), Point: p})
}

// Describe builds the description of q's surroundings. features is read,
// never modified.
func (a *Assembler) Describe(q Query, features []*feature.Feature) Description {
	q = q.normalize()
	lat, lon := geometry.Unproject(q.Center)

	heading, measured := 0.0, false
	if q.Heading != nil {
		heading, measured = geometry.NormalizeDegrees(*q.Heading), true
	}

	desc := Description{
		Lat:             lat,
		Lon:             lon,
		Heading:         heading,
		HeadingMeasured: measured,
		Detail:          q.Detail,
	}

	near := proximity.Evaluate(q.Center, features, q.Radius, q.Thresholds)
	a.emit("measure", q.Center, "%d of %d features within %.0f m", len(near), len(features), q.Radius)

	title, location := a.locate(q, near)
	desc.Title = title
	desc.Location = location
	desc.Summary = summary(location, heading, measured, len(near))

	for _, c := range categories {
		if !c.enabled(q.Include) {
			continue
		}
		if s, ok := categorySection(c, near, heading, q.Detail); ok {
			desc.Sections = append(desc.Sections, s)
		}
	}

	desc.Targets = targets(near)
	if q.Include.Directions {
		if text := directionsText(desc.Targets, heading, q.Detail); text != "" {
			desc.Sections = append(desc.Sections, Section{Heading: "Directions", Text: text})
		}
	}

	desc.Text = render(desc)
	return desc
}

// locate picks the primary location phrase: a crossing within
// IntersectionRadius, then the street network, then a landmark in the near
// zone, then raw coordinates.
func (a *Assembler) locate(q Query, near []proximity.Measured) (title, phrase string) {
	groups := intersection.GroupRoads(near)
	crossings := a.detector.Detect(q.Center, groups)
	for _, x := range crossings {
		a.emit("crossing", x.Point, "%s and %s at %.1f m (known=%v)", x.A, x.B, x.Meters, x.Known)
	}

	if len(crossings) > 0 && crossings[0].Meters <= IntersectionRadius {
		x := crossings[0]
		a.emit("location", x.Point, "intersection %s", x.Phrase())
		return x.A + " and " + x.B, "at the " + x.Phrase() + knownAs(x.Name)
	}

	loc := intersection.Locate(q.Center, groups, a.streetThreshold)
	switch loc.Kind {
	case intersection.AtIntersection:
		s0, s1 := loc.Streets[0].Name, loc.Streets[1].Name
		name, _ := a.detector.Known.Lookup(s0, s1)
		a.emit("location", q.Center, "between %s and %s", s0, s1)
		if s1 < s0 {
			s0, s1 = s1, s0
		}
		return s0 + " and " + s1, "at the " + loc.Phrase() + knownAs(name)
	case intersection.AtStreet:
		g := loc.Streets[0]
		a.emit("location", q.Center, "on %s", g.Name)
		if s, e, ok := g.NearestSegment(q.Center); ok {
			if side := direction.StreetSide(q.Center, s, e, g.Orientation()); side != "" {
				return g.Name, loc.Phrase() + ", " + side + " side"
			}
		}
		return g.Name, loc.Phrase()
	}

	if m, ok := primaryLandmark(near, q.Thresholds.Near); ok {
		a.emit("landmark", q.Center, "%s at %.1f m", m.Feature.Name, m.Meters)
		if m.Contains() {
			return m.Feature.Name, "at " + m.Feature.Name
		}
		return m.Feature.Name, "near " + m.Feature.Name
	}

	lat, lon := geometry.Unproject(q.Center)
	return "Unknown location", fmt.Sprintf("at latitude %.5f, longitude %.5f", lat, lon)
}

func knownAs(name string) string {
	if name == "" {
		return ""
	}
	return ", known as " + name
}

// landmarkRank orders location landmarks; -1 means not eligible.
func landmarkRank(f *feature.Feature) int {
	switch {
	case f.IsTransitStation():
		return 0
	case f.IsTower():
		return 1
	case f.IsCommercial():
		return 2
	case f.IsAmenity():
		return 3
	case f.IsShop():
		return 4
	case f.IsBuilding():
		return 5
	case f.IsPark() && areaMeters(f.Geometry) >= MinParkArea:
		return 6
	}
	return -1
}

func areaMeters(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(planar.Area(g)) * geometry.MetersPerUnit * geometry.MetersPerUnit
}

func primaryLandmark(near []proximity.Measured, within float64) (proximity.Measured, bool) {
	var (
		best     proximity.Measured
		bestRank = -1
	)
	for _, m := range near {
		if m.Meters > within {
			break
		}
		f := m.Feature
		if !f.Named() || f.IsRoad() {
			continue
		}
		r := landmarkRank(f)
		if r < 0 {
			continue
		}
		// near is sorted by distance, so the first of each rank is nearest
		if bestRank < 0 || r < bestRank {
			best, bestRank = m, r
		}
	}
	return best, bestRank >= 0
}

func summary(location string, heading float64, measured bool, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, facing %s", location, direction.Cardinal(heading))
	if !measured {
		b.WriteString(" (heading not measured)")
	}
	b.WriteString(".")
	switch count {
	case 0:
		b.WriteString(" No mapped features nearby.")
	case 1:
		b.WriteString(" 1 feature nearby.")
	default:
		fmt.Fprintf(&b, " %d features nearby.", count)
	}
	return b.String()
}

// render joins the summary and sections. A blank line separates groups and
// marks a longer pause when spoken.
func render(d Description) string {
	parts := make([]string, 0, len(d.Sections)+1)
	parts = append(parts, d.Summary)
	for _, s := range d.Sections {
		parts = append(parts, s.Render())
	}
	return strings.Join(parts, "\n\n")
}
