// Package tiler cuts GeoJSON features into SVG tiles on the angular grid
// read by the tile service.
//
// Each feature is clipped to every tile its bound touches, moved into
// tile-local coordinates and written as one SVG element carrying its type
// in data-type and its name and accessibility keys in data-name. The
// output round-trips through feature.DecodeSVG.
package tiler

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/joeblew999/plat-describe/internal/feature"
)

// DefaultExtent is the tile-local width of a generated tile.
const DefaultExtent = 1000.0

// Config controls tile generation.
type Config struct {
	Size     float64 // degrees per tile side; 0 uses feature.DefaultTileSize
	Extent   float64 // tile-local units per side; 0 uses DefaultExtent
	Simplify float64 // Douglas-Peucker tolerance in tile units; 0 disables
	Gzip     bool    // write .svg.gz instead of .svg
}

func (c Config) normalize() Config {
	if c.Size <= 0 {
		c.Size = feature.DefaultTileSize
	}
	if c.Extent <= 0 {
		c.Extent = DefaultExtent
	}
	return c
}

// Result summarises one run.
type Result struct {
	Tiles    int      `json:"tiles"`
	Features int      `json:"features"`
	Dropped  int      `json:"dropped"`
	Files    []string `json:"files,omitempty"`
}

// tagKeys are the property keys a type tag is taken from when a feature
// has no explicit "type", in priority order.
var tagKeys = []string{
	"railway", "public_transport", "highway", "amenity", "shop", "tourism",
	"leisure", "building", "natural", "landuse", "barrier", "man_made",
}

// accessKeys are copied into the metadata as key=value fragments.
var accessKeys = []string{"wheelchair", "tactile_paving", "traffic_signals:sound"}

// Tiler bins features into tiles.
type Tiler struct {
	cfg Config
}

// New creates a tiler.
func New(cfg Config) *Tiler {
	return &Tiler{cfg: cfg.normalize()}
}

// shape is one SVG element of a tile.
type shape struct {
	elem  string
	attrs [][2]string
}

// Tile renders fc into SVG documents keyed by tile anchor. Features whose
// geometry cannot be written are counted as dropped.
func (t *Tiler) Tile(fc *geojson.FeatureCollection) (map[feature.Anchor][]byte, Result) {
	var res Result
	shapes := make(map[feature.Anchor][]shape)

	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			res.Dropped++
			continue
		}
		meta := metadata(f.Properties)
		tag := tagOf(f.Properties)
		id := featureID(f, i)

		written := false
		for _, anchor := range t.anchors(f.Geometry.Bound()) {
			clipped := clip.Geometry(t.bound(anchor), cloneGeometry(f.Geometry))
			if clipped == nil {
				continue
			}
			local := t.toLocal(clipped, anchor)
			for _, s := range t.elements(local) {
				s.attrs = append(s.attrs, [2]string{"id", id})
				if tag != "" {
					s.attrs = append(s.attrs, [2]string{"data-type", tag})
				}
				if meta != "" {
					s.attrs = append(s.attrs, [2]string{"data-name", meta})
				}
				shapes[anchor] = append(shapes[anchor], s)
				written = true
			}
		}
		if written {
			res.Features++
		} else {
			res.Dropped++
		}
	}

	out := make(map[feature.Anchor][]byte, len(shapes))
	for anchor, list := range shapes {
		out[anchor] = t.render(anchor, list)
	}
	res.Tiles = len(out)
	return out, res
}

// TileFile reads a GeoJSON FeatureCollection and writes its tiles into
// tilesDir.
func (t *Tiler) TileFile(inputPath, tilesDir string) (Result, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Result{}, fmt.Errorf("parsing geojson: %w", err)
	}

	tiles, res := t.Tile(fc)
	files, err := t.Write(tilesDir, tiles)
	res.Files = files
	return res, err
}

// Write stores tiles in dir, replacing files of the same name. It returns
// the written file names in name order.
func (t *Tiler) Write(dir string, tiles map[feature.Anchor][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tiles dir: %w", err)
	}

	var names []string
	for anchor, svg := range tiles {
		name := feature.TileRef{Lat: anchor.Lat, Lon: anchor.Lon}.String() + ".svg"
		data := svg
		if t.cfg.Gzip {
			name += ".gz"
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			if _, err := zw.Write(svg); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if err := zw.Close(); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			data = buf.Bytes()
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// anchors returns the north-west corners of every tile b touches.
func (t *Tiler) anchors(b orb.Bound) []feature.Anchor {
	const eps = 1e-9
	size := t.cfg.Size
	minX := int(math.Floor(b.Min[0]/size + eps))
	maxX := int(math.Floor(b.Max[0]/size + eps))
	minY := int(math.Ceil(b.Min[1]/size - eps))
	maxY := int(math.Ceil(b.Max[1]/size - eps))

	var out []feature.Anchor
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			out = append(out, feature.Anchor{Lat: round6(float64(y) * size), Lon: round6(float64(x) * size)})
		}
	}
	return out
}

func (t *Tiler) bound(a feature.Anchor) orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.Lon, a.Lat - t.cfg.Size},
		Max: orb.Point{a.Lon + t.cfg.Size, a.Lat},
	}
}

// toLocal maps lon/lat into tile-local units, y growing southwards.
func (t *Tiler) toLocal(g orb.Geometry, a feature.Anchor) orb.Geometry {
	scale := t.cfg.Extent / t.cfg.Size
	conv := func(p orb.Point) orb.Point {
		return orb.Point{(p[0] - a.Lon) * scale, (a.Lat - p[1]) * scale}
	}
	switch g := g.(type) {
	case orb.Point:
		return conv(g)
	case orb.MultiPoint:
		for i := range g {
			g[i] = conv(g[i])
		}
	case orb.LineString:
		for i := range g {
			g[i] = conv(g[i])
		}
	case orb.MultiLineString:
		for _, ls := range g {
			for i := range ls {
				ls[i] = conv(ls[i])
			}
		}
	case orb.Ring:
		for i := range g {
			g[i] = conv(g[i])
		}
	case orb.Polygon:
		for _, r := range g {
			for i := range r {
				r[i] = conv(r[i])
			}
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				for i := range r {
					r[i] = conv(r[i])
				}
			}
		}
	}
	return g
}

// elements converts tile-local geometry into SVG elements. Polygons keep
// their outer ring only.
func (t *Tiler) elements(g orb.Geometry) []shape {
	var s *simplify.DouglasPeuckerSimplifier
	if t.cfg.Simplify > 0 {
		s = simplify.DouglasPeucker(t.cfg.Simplify)
	}

	switch g := g.(type) {
	case orb.Point:
		return []shape{{elem: "circle", attrs: [][2]string{{"cx", num(g[0])}, {"cy", num(g[1])}, {"r", "0"}}}}
	case orb.MultiPoint:
		var out []shape
		for _, p := range g {
			out = append(out, t.elements(p)...)
		}
		return out
	case orb.LineString:
		if s != nil {
			if simple := s.LineString(g.Clone()); len(simple) >= 2 {
				g = simple
			}
		}
		if len(g) < 2 {
			return nil
		}
		return []shape{{elem: "polyline", attrs: [][2]string{{"points", points(g)}}}}
	case orb.MultiLineString:
		var out []shape
		for _, ls := range g {
			out = append(out, t.elements(ls)...)
		}
		return out
	case orb.Ring:
		return t.elements(orb.Polygon{g})
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		outer := g[0]
		if s != nil {
			if simple := s.Polygon(orb.Polygon{outer.Clone()}); len(simple) > 0 && len(simple[0]) >= 4 {
				outer = simple[0]
			}
		}
		if len(outer) < 4 {
			return nil
		}
		// the closing point is implied by <polygon>
		return []shape{{elem: "polygon", attrs: [][2]string{{"points", points(outer[:len(outer)-1])}}}}
	case orb.MultiPolygon:
		var out []shape
		for _, p := range g {
			out = append(out, t.elements(p)...)
		}
		return out
	case orb.Collection:
		var out []shape
		for _, c := range g {
			out = append(out, t.elements(c)...)
		}
		return out
	}
	return nil
}

func (t *Tiler) render(a feature.Anchor, shapes []shape) []byte {
	var b bytes.Buffer
	ext := num(t.cfg.Extent)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n", ext, ext, ext, ext)
	fmt.Fprintf(&b, "  <title>%s</title>\n", feature.TileRef{Lat: a.Lat, Lon: a.Lon})
	for _, s := range shapes {
		b.WriteString("  <" + s.elem)
		for _, kv := range s.attrs {
			b.WriteString(" " + kv[0] + `="`)
			xml.EscapeText(&b, []byte(kv[1]))
			b.WriteString(`"`)
		}
		b.WriteString("/>\n")
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

// tagOf returns the feature type: an explicit "type" or "tag" property,
// else the first known key as key:value.
func tagOf(props geojson.Properties) string {
	for _, k := range []string{"type", "tag"} {
		if v := props.MustString(k, ""); v != "" {
			return v
		}
	}
	for _, k := range tagKeys {
		if v, ok := props[k]; ok {
			return k + ":" + fmt.Sprint(v)
		}
	}
	return ""
}

// metadata joins the name and accessibility keys into one data-name value.
func metadata(props geojson.Properties) string {
	var parts []string
	if name := props.MustString("name", ""); name != "" {
		parts = append(parts, name)
	}
	for _, k := range accessKeys {
		if v, ok := props[k]; ok {
			parts = append(parts, k+"="+fmt.Sprint(v))
		}
	}
	return strings.Join(parts, "; ")
}

func featureID(f *geojson.Feature, i int) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	if id := f.Properties.MustString("id", ""); id != "" {
		return id
	}
	return "f" + strconv.Itoa(i)
}

func points(ps []orb.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p[0]) + "," + num(p[1])
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// cloneGeometry copies g; clipping works in place.
func cloneGeometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return g
	case orb.MultiPoint:
		return g.Clone()
	case orb.LineString:
		return g.Clone()
	case orb.MultiLineString:
		return g.Clone()
	case orb.Ring:
		return g.Clone()
	case orb.Polygon:
		return g.Clone()
	case orb.MultiPolygon:
		return g.Clone()
	case orb.Collection:
		return g.Clone()
	}
	return g
}
