package feature

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SVGDocument is the shape content of one SVG tile.
type SVGDocument struct {
	Extent float64 // width of the viewBox (or width attribute), 0 if absent
	Shapes []RawShape
}

type groupFrame struct {
	ident string
	ctm   Affine // group transform composed with its ancestors'
}

// DecodeSVG walks an SVG tile and collects its shapes.
//
// The explicit tag of a shape comes from data-type, data-tag, or a class
// containing ':'. Metadata comes from data-name, data-meta or a <title>
// child. Each shape records the identifier of its nearest enclosing group
// that has one.
//
// Shape coordinates are kept as written. The viewBox origin and every
// transform on the shape and its ancestor groups are composed into the
// shape's Transform, which maps them onto the tile's 0..Extent square.
// A malformed transform attribute is ignored.
func DecodeSVG(r io.Reader) (*SVGDocument, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	doc := &SVGDocument{}
	var groups []groupFrame
	root := Identity
	seenRoot := false
	var cur *RawShape
	var curElem string
	var title strings.Builder
	inTitle := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			attrs := attrMap(t.Attr)
			switch {
			case name == "svg":
				if !seenRoot {
					seenRoot = true
					var origin [2]float64
					doc.Extent, origin = svgViewport(attrs)
					root = Translate(-origin[0], -origin[1])
				}
			case name == "g":
				ident := explicitTag(attrs)
				if ident == "" {
					ident = attrs["id"]
				}
				ctm := currentCTM(groups, root).Then(ownTransform(attrs))
				groups = append(groups, groupFrame{ident: ident, ctm: ctm})
			case name == "title" && cur != nil:
				inTitle = true
				title.Reset()
			case cur == nil:
				kind, ok := shapeElements[name]
				if !ok {
					continue
				}
				meta := attrs["data-name"]
				if meta == "" {
					meta = attrs["data-meta"]
				}
				cur = &RawShape{
					Kind:     kind,
					ID:       attrs["id"],
					Tag:      explicitTag(attrs),
					Group:    enclosingGroup(groups),
					Attrs:    attrs,
					Metadata: meta,
				}
				if ctm := currentCTM(groups, root).Then(ownTransform(attrs)); ctm != Identity {
					cur.Transform = &ctm
				}
				curElem = name
			}

		case xml.CharData:
			if inTitle {
				title.Write(t)
			}

		case xml.EndElement:
			name := t.Name.Local
			switch {
			case name == "g":
				if len(groups) > 0 {
					groups = groups[:len(groups)-1]
				}
			case name == "title" && inTitle:
				inTitle = false
				if cur != nil && cur.Metadata == "" {
					cur.Metadata = strings.TrimSpace(title.String())
				}
			case cur != nil && name == curElem:
				doc.Shapes = append(doc.Shapes, *cur)
				cur = nil
			}
		}
	}

	return doc, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

func explicitTag(attrs map[string]string) string {
	if v := attrs["data-type"]; v != "" {
		return v
	}
	if v := attrs["data-tag"]; v != "" {
		return v
	}
	for _, c := range strings.Fields(attrs["class"]) {
		if strings.Contains(c, ":") {
			return c
		}
	}
	return ""
}

func enclosingGroup(groups []groupFrame) string {
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i].ident != "" {
			return groups[i].ident
		}
	}
	return ""
}

func currentCTM(groups []groupFrame, root Affine) Affine {
	if len(groups) == 0 {
		return root
	}
	return groups[len(groups)-1].ctm
}

func ownTransform(attrs map[string]string) Affine {
	m, err := ParseTransform(attrs["transform"])
	if err != nil {
		return Identity
	}
	return m
}

// svgViewport reads the tile width and origin from viewBox, falling back
// to the width attribute with a zero origin.
func svgViewport(attrs map[string]string) (extent float64, origin [2]float64) {
	if vb := strings.FieldsFunc(attrs["viewBox"], func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	}); len(vb) == 4 {
		var nums [4]float64
		ok := true
		for i, v := range vb {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				ok = false
				break
			}
			nums[i] = f
		}
		if ok && nums[2] > 0 {
			return nums[2], [2]float64{nums[0], nums[1]}
		}
	}
	w := strings.TrimSuffix(strings.TrimSpace(attrs["width"]), "px")
	if f, err := strconv.ParseFloat(w, 64); err == nil && f > 0 {
		return f, origin
	}
	return 0, origin
}
