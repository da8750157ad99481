package feature

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/geometry"
)

// DefaultTileSize is the angular size of a tile side in degrees.
const DefaultTileSize = 0.01

// ShapeKind is the SVG element a raw shape came from.
type ShapeKind int

const (
	ShapePath ShapeKind = iota
	ShapePolygon
	ShapePolyline
	ShapeRect
	ShapeCircle
	ShapeLine
)

var shapeElements = map[string]ShapeKind{
	"path":     ShapePath,
	"polygon":  ShapePolygon,
	"polyline": ShapePolyline,
	"rect":     ShapeRect,
	"circle":   ShapeCircle,
	"line":     ShapeLine,
}

// String returns the SVG element name.
func (k ShapeKind) String() string {
	for name, kind := range shapeElements {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// RawShape is one shape as delivered by the tile source, in tile-local
// coordinates.
type RawShape struct {
	Kind      ShapeKind
	ID        string
	Tag       string            // explicit type tag, may be empty
	Group     string            // identifier of the nearest enclosing group
	Attrs     map[string]string // geometry attributes (d, points, x, y, ...)
	Metadata  string            // free text: name, accessibility notes, debris
	Transform *Affine           // maps Attrs coordinates to tile-local; nil is the identity
}

// Anchor is the geographic position of a tile's north-west corner.
type Anchor struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Tile is one map tile: its anchor, its angular size and its shapes.
type Tile struct {
	Anchor Anchor
	Size   float64 // degrees per side
	Extent float64 // tile-local units per side; 0 means Size*UnitsPerDegree
	Shapes []RawShape
}

// TileRef identifies the tile a feature came from.
type TileRef struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the reference the way tile files are named.
func (r TileRef) String() string {
	return fmt.Sprintf("%.4f_%.4f", r.Lat, r.Lon)
}

// Ref returns the tile's reference.
func (t Tile) Ref() TileRef {
	return TileRef{Lat: t.Anchor.Lat, Lon: t.Anchor.Lon}
}

// Origin is the plane position of the tile-local (0,0).
func (t Tile) Origin() orb.Point {
	return geometry.Project(t.Anchor.Lat, t.Anchor.Lon)
}

// Scale converts tile-local units to plane units.
func (t Tile) Scale() float64 {
	size := t.Size
	if size <= 0 {
		size = DefaultTileSize
	}
	if t.Extent <= 0 {
		return 1
	}
	return size * geometry.UnitsPerDegree / t.Extent
}

// ToPlane maps a tile-local point into the shared plane.
func (t Tile) ToPlane(p orb.Point) orb.Point {
	o, s := t.Origin(), t.Scale()
	return orb.Point{o[0] + p[0]*s, o[1] + p[1]*s}
}
