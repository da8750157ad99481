package describe

import (
	"strings"

	"github.com/joeblew999/plat-describe/internal/direction"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

// targets keeps the named features worth pointing at: no roads, no
// greenery, nothing the query point is inside of. One target per name.
func targets(near []proximity.Measured) []Target {
	seen := map[string]bool{}
	var out []Target
	for _, m := range near {
		f := m.Feature
		if !f.Named() || f.IsRoad() || f.IsVegetation() || m.Contains() {
			continue
		}
		k := strings.ToLower(f.Name)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Target{
			Name:    f.Name,
			Bearing: m.Bearing,
			Meters:  m.Meters,
			Zone:    m.Zone,
		})
	}
	return out
}

// DirectionalInfo renders the directions of desc's targets for a new
// heading without touching the features again.
func DirectionalInfo(desc Description, heading float64) string {
	return directionsText(desc.Targets, heading, desc.Detail.Normalize())
}

// directionsText buckets targets by sector and lists the nearest few in
// each, clockwise from ahead. targets must be sorted by distance.
func directionsText(targets []Target, heading float64, detail DetailLevel) string {
	per := detail.perSector()
	buckets := make(map[direction.Sector][]Target)
	for _, t := range targets {
		s := direction.SectorFor(direction.ClockPosition(direction.RelativeBearing(heading, t.Bearing)))
		if len(buckets[s]) < per {
			buckets[s] = append(buckets[s], t)
		}
	}

	var sentences []string
	for _, s := range direction.Sectors {
		list := buckets[s]
		if len(list) == 0 {
			continue
		}
		names := make([]string, len(list))
		for i, t := range list {
			names[i] = t.Name
			if detail != Brief {
				names[i] += " (" + direction.DistancePhrase(t.Meters, t.Zone) + ")"
			}
		}
		sentences = append(sentences, capitalize(s.Phrase())+": "+strings.Join(names, ", ")+".")
	}
	return strings.Join(sentences, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
