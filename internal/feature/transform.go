package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Affine is an SVG transform matrix [a b c d e f]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Affine [6]float64

// Identity leaves points unchanged.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{1, 0, 0, 1, tx, ty}
}

// Then returns the transform that applies inner first and m second, the
// way a parent group's transform wraps its children.
func (m Affine) Then(inner Affine) Affine {
	return Affine{
		m[0]*inner[0] + m[2]*inner[1],
		m[1]*inner[0] + m[3]*inner[1],
		m[0]*inner[2] + m[2]*inner[3],
		m[1]*inner[2] + m[3]*inner[3],
		m[0]*inner[4] + m[2]*inner[5] + m[4],
		m[1]*inner[4] + m[3]*inner[5] + m[5],
	}
}

// Apply transforms p.
func (m Affine) Apply(p orb.Point) orb.Point {
	return orb.Point{
		m[0]*p[0] + m[2]*p[1] + m[4],
		m[1]*p[0] + m[3]*p[1] + m[5],
	}
}

// ParseTransform parses an SVG transform attribute: a list of matrix,
// translate, scale, rotate, skewX and skewY functions applied right to
// left. An empty attribute is the identity.
func ParseTransform(s string) (Affine, error) {
	m := Identity
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return Identity, fmt.Errorf("malformed transform %q", s)
		}
		name := strings.Trim(rest[:open], " \t\n\r,")
		args, err := transformArgs(rest[open+1 : end])
		if err != nil {
			return Identity, fmt.Errorf("transform %s: %w", name, err)
		}
		fn, err := transformFunc(name, args)
		if err != nil {
			return Identity, err
		}
		m = m.Then(fn)
		rest = strings.TrimLeft(rest[end+1:], " \t\n\r,")
	}
	return m, nil
}

func transformArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	args := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func transformFunc(name string, args []float64) (Affine, error) {
	n := len(args)
	switch {
	case name == "matrix" && n == 6:
		return Affine{args[0], args[1], args[2], args[3], args[4], args[5]}, nil
	case name == "translate" && n == 1:
		return Translate(args[0], 0), nil
	case name == "translate" && n == 2:
		return Translate(args[0], args[1]), nil
	case name == "scale" && n == 1:
		return Affine{args[0], 0, 0, args[0], 0, 0}, nil
	case name == "scale" && n == 2:
		return Affine{args[0], 0, 0, args[1], 0, 0}, nil
	case name == "rotate" && (n == 1 || n == 3):
		rad := args[0] * math.Pi / 180
		sin, cos := math.Sincos(rad)
		r := Affine{cos, sin, -sin, cos, 0, 0}
		if n == 3 {
			r = Translate(args[1], args[2]).Then(r).Then(Translate(-args[1], -args[2]))
		}
		return r, nil
	case name == "skewX" && n == 1:
		return Affine{1, 0, math.Tan(args[0] * math.Pi / 180), 1, 0, 0}, nil
	case name == "skewY" && n == 1:
		return Affine{1, math.Tan(args[0] * math.Pi / 180), 0, 1, 0, 0}, nil
	}
	return Identity, fmt.Errorf("unsupported transform %s with %d arguments", name, n)
}
