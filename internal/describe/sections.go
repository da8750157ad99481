package describe

import (
	"strings"

	"github.com/joeblew999/plat-describe/internal/direction"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

type category struct {
	heading string
	match   func(*feature.Feature) bool
	enabled func(Include) bool
	// unnamed features are listed by their type
	unnamed bool
}

var categories = []category{
	{
		heading: "Landmarks",
		match:   (*feature.Feature).IsLandmark,
		enabled: func(i Include) bool { return i.Landmarks },
	},
	{
		heading: "Transit",
		match:   (*feature.Feature).IsTransit,
		enabled: func(i Include) bool { return i.Transit },
	},
	{
		heading: "Accessibility",
		match:   (*feature.Feature).IsAccessibilityFeature,
		enabled: func(i Include) bool { return i.Accessibility },
		unnamed: true,
	},
	{
		heading: "Amenities",
		match: func(f *feature.Feature) bool {
			return f.IsAmenity() || f.IsShop()
		},
		enabled: func(i Include) bool { return i.Amenities },
	},
}

// categorySection lists the nearest matching features, one per name.
func categorySection(c category, near []proximity.Measured, heading float64, detail DetailLevel) (Section, bool) {
	limit := detail.sectionLimit()
	seen := map[string]bool{}
	var items []string
	for _, m := range near {
		if len(items) == limit {
			break
		}
		f := m.Feature
		if f.IsRoad() || !c.match(f) {
			continue
		}
		label := f.Name
		if label == "" {
			if !c.unnamed {
				continue
			}
			label = typeLabel(f.Tag)
		}
		k := strings.ToLower(label)
		if seen[k] {
			continue
		}
		seen[k] = true
		items = append(items, item(label, m, heading, detail, c.unnamed))
	}
	if len(items) == 0 {
		return Section{}, false
	}
	return Section{Heading: c.heading, Items: items}, true
}

func typeLabel(t feature.Tag) string {
	s := t.Subcategory
	if s == "" || s == "yes" {
		s = t.Category
	}
	return strings.ReplaceAll(s, "_", " ")
}

func item(label string, m proximity.Measured, heading float64, detail DetailLevel, withAccess bool) string {
	var b strings.Builder
	b.WriteString(label)
	if withAccess {
		if labels := m.Feature.Access.Labels(); len(labels) > 0 {
			b.WriteString(" (" + strings.Join(labels, ", ") + ")")
		}
	}
	b.WriteString(", ")
	b.WriteString(qualifier(m.Meters, m.Zone, m.Bearing, heading, detail))
	return b.String()
}

func qualifier(meters float64, z proximity.Zone, bearing, heading float64, detail DetailLevel) string {
	if meters == 0 {
		return "you are here"
	}
	if detail == Brief {
		return direction.ZonePhrase(z)
	}
	clock := direction.ClockPosition(direction.RelativeBearing(heading, bearing))
	dist := direction.DistancePhrase(meters, z)
	if detail == Detailed {
		return dist + " " + direction.ClockPhrase(clock) + ", " + direction.WalkingTime(meters)
	}
	return dist + " " + direction.SectorFor(clock).Phrase()
}
