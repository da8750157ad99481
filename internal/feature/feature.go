// Package feature turns raw tile shapes into typed Feature records placed in
// the shared geometry plane.
package feature

import (
	"strings"

	"github.com/paulmach/orb"
)

// Tag is a hierarchical feature type, written category:subcategory
// (for example "highway:residential" or "railway:station").
type Tag struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// Unknown is the tag of shapes with no usable type information.
var Unknown = Tag{Category: "unknown"}

// ParseTag parses "category:subcategory". "category=subcategory" is
// accepted as well. Values are lower-cased.
func ParseTag(s string) Tag {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Unknown
	}
	if i := strings.IndexAny(s, ":="); i >= 0 {
		return Tag{
			Category:    strings.TrimSpace(s[:i]),
			Subcategory: strings.TrimSpace(s[i+1:]),
		}
	}
	return Tag{Category: s}
}

// String returns the tag in category:subcategory form.
func (t Tag) String() string {
	if t.Subcategory == "" {
		return t.Category
	}
	return t.Category + ":" + t.Subcategory
}

// Is reports whether the tag matches category and, when given, one of the
// subcategories.
func (t Tag) Is(category string, subcategories ...string) bool {
	if t.Category != category {
		return false
	}
	if len(subcategories) == 0 {
		return true
	}
	for _, s := range subcategories {
		if t.Subcategory == s {
			return true
		}
	}
	return false
}

// Feature is a typed, optionally named map element. Features are immutable
// once extracted; queries never modify them.
type Feature struct {
	ID       string        `json:"id"`
	Tag      Tag           `json:"tag"`
	Name     string        `json:"name,omitempty"`
	Geometry orb.Geometry  `json:"-"`
	Access   Accessibility `json:"access"`
	Tile     TileRef       `json:"tile"`
}

// Named reports whether the feature carries a display name.
func (f *Feature) Named() bool {
	return f.Name != ""
}

// Road subcategories that form the street network. Footpaths, crossings
// and stop nodes share the highway category but are not streets.
var roadKinds = map[string]bool{
	"": true, "road": true, "motorway": true, "trunk": true, "primary": true,
	"secondary": true, "tertiary": true, "residential": true, "unclassified": true,
	"service": true, "living_street": true, "motorway_link": true, "trunk_link": true,
	"primary_link": true, "secondary_link": true, "tertiary_link": true,
}

// IsRoad reports whether the feature is part of the street network.
func (f *Feature) IsRoad() bool {
	return f.Tag.Category == "highway" && roadKinds[f.Tag.Subcategory]
}

// IsTransit reports whether the feature is a transit stop or station.
func (f *Feature) IsTransit() bool {
	t := f.Tag
	return t.Is("railway", "station", "halt", "subway_entrance", "tram_stop") ||
		t.Is("public_transport") ||
		t.Is("highway", "bus_stop") ||
		t.Is("amenity", "bus_station", "ferry_terminal")
}

// IsTransitStation reports whether the feature is a station rather than a
// simple stop.
func (f *Feature) IsTransitStation() bool {
	t := f.Tag
	return t.Is("railway", "station", "halt") ||
		t.Is("public_transport", "station") ||
		t.Is("amenity", "bus_station", "ferry_terminal")
}

// IsVegetation reports incidental greenery that is noise in directions.
func (f *Feature) IsVegetation() bool {
	t := f.Tag
	return t.Is("natural", "tree", "tree_row", "wood", "scrub", "grassland", "heath") ||
		t.Is("landuse", "grass", "forest", "meadow", "flowerbed") ||
		t.Is("vegetation")
}

// IsBuilding reports building footprints.
func (f *Feature) IsBuilding() bool {
	return f.Tag.Category == "building"
}

// IsTower reports towers: tagged as such or a named building called one.
func (f *Feature) IsTower() bool {
	if f.Tag.Is("man_made", "tower") || f.Tag.Is("building", "tower") {
		return true
	}
	return f.IsBuilding() && strings.Contains(strings.ToLower(f.Name), "tower")
}

// IsCommercial reports commercial and office buildings.
func (f *Feature) IsCommercial() bool {
	return f.Tag.Is("building", "commercial", "office", "retail") || f.Tag.Is("office")
}

// IsAmenity reports amenities other than transit.
func (f *Feature) IsAmenity() bool {
	return f.Tag.Category == "amenity" && !f.IsTransit()
}

// IsShop reports shops.
func (f *Feature) IsShop() bool {
	return f.Tag.Category == "shop"
}

// IsPark reports parks and public gardens.
func (f *Feature) IsPark() bool {
	return f.Tag.Is("leisure", "park", "garden")
}

// IsLandmark reports features listed in the landmarks section: buildings,
// towers, parks and sights. Transit, amenities and shops have their own
// sections.
func (f *Feature) IsLandmark() bool {
	if f.IsTransit() || f.IsAmenity() || f.IsShop() {
		return false
	}
	return f.IsBuilding() || f.IsTower() || f.IsPark() ||
		f.Tag.Category == "tourism" || f.Tag.Category == "historic"
}

// IsAccessibilityFeature reports features worth listing for accessibility:
// anything with known accessibility attributes, plus crossings, signals
// and elevators.
func (f *Feature) IsAccessibilityFeature() bool {
	if f.Access.Known() {
		return true
	}
	return f.Tag.Is("highway", "crossing", "traffic_signals", "elevator") ||
		f.Tag.Is("footway", "crossing")
}
