package feature

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-describe/internal/geometry"
)

// LonLat converts plane geometry back to lon/lat coordinates.
func LonLat(g orb.Geometry) orb.Geometry {
	toLonLat := func(p orb.Point) orb.Point {
		lat, lon := geometry.Unproject(p)
		return orb.Point{lon, lat}
	}
	switch v := g.(type) {
	case nil:
		return nil
	case orb.Point:
		return toLonLat(v)
	}
	g = orb.Clone(g)
	eachPoint(g, func(p *orb.Point) { *p = toLonLat(*p) })
	return g
}

// Center returns the lat/lon of the feature's centroid.
func (f *Feature) Center() (lat, lon float64, ok bool) {
	if f.Geometry == nil {
		return 0, 0, false
	}
	var c orb.Point
	switch g := f.Geometry.(type) {
	case orb.Point:
		c = g
	default:
		if g.Dimensions() == 2 {
			c, _ = planar.CentroidArea(g)
		} else {
			c = g.Bound().Center()
		}
	}
	lat, lon = geometry.Unproject(c)
	return lat, lon, true
}

// GeoJSON returns the feature as a GeoJSON feature in lon/lat.
func (f *Feature) GeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(LonLat(f.Geometry))
	gf.ID = f.ID
	gf.Properties["tag"] = f.Tag.String()
	if f.Name != "" {
		gf.Properties["name"] = f.Name
	}
	if f.Access.Known() {
		gf.Properties["access"] = f.Access.Labels()
	}
	gf.Properties["tile"] = f.Tile.String()
	return gf
}

// FeatureCollection wraps features with geometry in a GeoJSON collection.
func FeatureCollection(features []*Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		fc.Append(f.GeoJSON())
	}
	return fc
}
