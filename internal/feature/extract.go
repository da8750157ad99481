package feature

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/logger"
)

var errNoGeometry = errors.New("no geometry")

// groupTags maps plural layer group names to feature tags.
var groupTags = map[string]Tag{
	"roads":      {Category: "highway", Subcategory: "road"},
	"streets":    {Category: "highway", Subcategory: "road"},
	"highways":   {Category: "highway", Subcategory: "road"},
	"buildings":  {Category: "building", Subcategory: "yes"},
	"parks":      {Category: "leisure", Subcategory: "park"},
	"water":      {Category: "natural", Subcategory: "water"},
	"transit":    {Category: "public_transport", Subcategory: "station"},
	"stations":   {Category: "public_transport", Subcategory: "station"},
	"amenities":  {Category: "amenity", Subcategory: "yes"},
	"shops":      {Category: "shop", Subcategory: "yes"},
	"trees":      {Category: "natural", Subcategory: "tree"},
	"vegetation": {Category: "natural", Subcategory: "tree"},
	"landmarks":  {Category: "tourism", Subcategory: "attraction"},
}

// Extractor converts tiles into features.
type Extractor struct {
	simplify float64
	log      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSimplify enables Douglas-Peucker simplification of polylines and
// polygon rings with the given tolerance in plane units.
func WithSimplify(tolerance float64) Option {
	return func(e *Extractor) { e.simplify = tolerance }
}

// WithLogger sets the logger used for dropped-shape diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// NewExtractor creates an extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.L()
	}
	return e
}

// Extract builds the features of one tile. Shapes with missing or
// malformed geometry are skipped; they never fail the batch.
func (e *Extractor) Extract(tile Tile) []*Feature {
	ref := tile.Ref()
	features := make([]*Feature, 0, len(tile.Shapes))

	for i, shape := range tile.Shapes {
		g, err := shapeGeometry(shape)
		if err != nil {
			e.log.Debug("dropping shape", "tile", ref.String(), "index", i, "kind", shape.Kind.String(), "err", err)
			continue
		}
		g = transform(g, tile, shape.Transform)
		if e.simplify > 0 {
			g = e.simplifyGeometry(g)
		}

		id := shape.ID
		if id == "" {
			id = fmt.Sprintf("%s/%d", ref, i)
		}
		name, access := CleanMetadata(shape.Metadata)

		features = append(features, &Feature{
			ID:       id,
			Tag:      InferTag(shape),
			Name:     name,
			Geometry: g,
			Access:   access,
			Tile:     ref,
		})
	}

	return features
}

// ExtractAll extracts every tile into one feature list.
func (e *Extractor) ExtractAll(tiles []Tile) []*Feature {
	var all []*Feature
	for _, t := range tiles {
		all = append(all, e.Extract(t)...)
	}
	return all
}

// Extract builds the features of one tile with default options.
func Extract(tile Tile) []*Feature {
	return NewExtractor().Extract(tile)
}

// InferTag returns the shape's explicit tag, falling back to its
// enclosing group's identifier.
func InferTag(shape RawShape) Tag {
	if strings.TrimSpace(shape.Tag) != "" {
		return ParseTag(shape.Tag)
	}

	group := strings.ToLower(strings.TrimSpace(shape.Group))
	group = strings.TrimRightFunc(group, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '-' || r == '_'
	})
	if group == "" {
		return Unknown
	}
	if t, ok := groupTags[group]; ok {
		return t
	}
	return ParseTag(group)
}

func shapeGeometry(s RawShape) (orb.Geometry, error) {
	switch s.Kind {
	case ShapePath:
		d := s.Attrs["d"]
		if d == "" {
			return nil, errNoGeometry
		}
		return checked(geometry.PathGeometry(d))

	case ShapePolygon, ShapePolyline:
		points := geometry.ParsePolygonPoints(s.Attrs["points"])
		return checked(geometry.PointsGeometry(points, s.Kind == ShapePolygon))

	case ShapeRect:
		nums, err := attrFloats(s.Attrs, []string{"x", "y"}, []string{"width", "height"})
		if err != nil {
			return nil, err
		}
		if nums[2] <= 0 || nums[3] <= 0 {
			return nil, fmt.Errorf("rect has empty size %vx%v", nums[2], nums[3])
		}
		return checked(orb.Polygon{orb.Ring(geometry.ParseRect(nums[0], nums[1], nums[2], nums[3]))})

	case ShapeCircle:
		nums, err := attrFloats(s.Attrs, []string{"cx", "cy"}, []string{"r"})
		if err != nil {
			return nil, err
		}
		if nums[2] <= 0 {
			return checked(orb.Point{nums[0], nums[1]})
		}
		ring := geometry.ParseCircle(nums[0], nums[1], nums[2], geometry.DefaultCircleSegments)
		return checked(geometry.PointsGeometry(ring, true))

	case ShapeLine:
		nums, err := attrFloats(s.Attrs, nil, []string{"x1", "y1", "x2", "y2"})
		if err != nil {
			return nil, err
		}
		return checked(orb.LineString{{nums[0], nums[1]}, {nums[2], nums[3]}})
	}

	return nil, fmt.Errorf("unsupported shape kind %d", s.Kind)
}

// attrFloats reads optional attributes (default 0) followed by required
// ones.
func attrFloats(attrs map[string]string, optional, required []string) ([]float64, error) {
	out := make([]float64, 0, len(optional)+len(required))
	for _, k := range optional {
		v := 0.0
		if s, ok := attrs[k]; ok && s != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", k, err)
			}
			v = f
		}
		out = append(out, v)
	}
	for _, k := range required {
		s, ok := attrs[k]
		if !ok || s == "" {
			return nil, fmt.Errorf("missing attribute %s", k)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// checked rejects nil geometry and non-finite coordinates.
func checked(g orb.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, errNoGeometry
	}
	bad := false
	eachPoint(g, func(p *orb.Point) {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			bad = true
		}
	})
	if bad {
		return nil, errors.New("non-finite coordinate")
	}
	return g, nil
}

func eachPoint(g orb.Geometry, fn func(p *orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(&g)
	case orb.LineString:
		for i := range g {
			fn(&g[i])
		}
	case orb.Ring:
		for i := range g {
			fn(&g[i])
		}
	case orb.Polygon:
		for _, r := range g {
			for i := range r {
				fn(&r[i])
			}
		}
	case orb.MultiPoint:
		for i := range g {
			fn(&g[i])
		}
	case orb.MultiLineString:
		for _, ls := range g {
			eachPoint(ls, fn)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			eachPoint(poly, fn)
		}
	}
}

// transform applies the shape's own transform, if any, and moves the
// tile-local result into the shared plane.
func transform(g orb.Geometry, tile Tile, m *Affine) orb.Geometry {
	toPlane := func(p orb.Point) orb.Point {
		if m != nil {
			p = m.Apply(p)
		}
		return tile.ToPlane(p)
	}
	if p, ok := g.(orb.Point); ok {
		return toPlane(p)
	}
	eachPoint(g, func(p *orb.Point) { *p = toPlane(*p) })
	return g
}

func (e *Extractor) simplifyGeometry(g orb.Geometry) orb.Geometry {
	s := simplify.DouglasPeucker(e.simplify)
	switch v := g.(type) {
	case orb.LineString:
		if out := s.LineString(v.Clone()); len(out) >= 2 {
			return out
		}
	case orb.Polygon:
		if out := s.Polygon(v.Clone()); len(out) > 0 && len(out[0]) >= 4 {
			return out
		}
	case orb.MultiLineString:
		return s.MultiLineString(v.Clone())
	case orb.MultiPolygon:
		if out := s.MultiPolygon(v.Clone()); len(out) > 0 {
			return out
		}
	}
	return g
}
