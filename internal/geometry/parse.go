package geometry

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// DefaultCircleSegments is the vertex count used when approximating circles.
const DefaultCircleSegments = 36

// token is either a path command letter or a number.
type token struct {
	cmd byte
	num float64
}

// pathArity is the argument count per path command. Curve commands are
// listed so their arguments are consumed; only the endpoint is kept.
var pathArity = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'Z': 0,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7,
}

func isCommand(c byte) bool {
	_, ok := pathArity[upper(c)]
	return ok
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// tokenize splits SVG path/points data into commands and numbers.
// Anything that is neither (whitespace, commas, unknown letters) is skipped.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isCommand(c):
			toks = append(toks, token{cmd: c})
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			j := scanNumber(s, i)
			if j == i {
				i++
				continue
			}
			if v, err := strconv.ParseFloat(s[i:j], 64); err == nil {
				toks = append(toks, token{num: v})
			}
			i = j
		default:
			i++
		}
	}
	return toks
}

// scanNumber returns the end index of the number starting at i.
// "10-5" and ".5.5" are two numbers each, as in SVG.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '-' || s[j] == '+') {
		j++
	}
	digits := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
		digits++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			digits++
		}
	}
	if digits == 0 {
		return i
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '-' || s[k] == '+') {
			k++
		}
		if k < len(s) && s[k] >= '0' && s[k] <= '9' {
			for k < len(s) && s[k] >= '0' && s[k] <= '9' {
				k++
			}
			j = k
		}
	}
	return j
}

// ParsePath parses SVG path data into its subpaths.
//
// Move, line, horizontal, vertical and close commands are handled exactly,
// in absolute and relative form. Cubic, quadratic, smooth and arc segments
// are reduced to their endpoint: this is a lossy simplification, curved
// streets come back as chords. Every moveto starts a new subpath, as does
// drawing after a close, which resumes from the closed subpath's start.
//
// closed reports whether the data contained a close command.
func ParsePath(d string) (subpaths [][]orb.Point, closed bool) {
	toks := tokenize(d)

	var (
		cur, start orb.Point
		cmd        byte
		part       []orb.Point
		reopen     bool
	)
	flush := func() {
		if len(part) > 0 {
			subpaths = append(subpaths, part)
		}
		part = nil
	}

	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.cmd != 0 {
			cmd = t.cmd
			i++
			if upper(cmd) == 'Z' {
				closed = true
				cur = start
				flush()
				reopen = true
			}
			continue
		}

		n := pathArity[upper(cmd)]
		if cmd == 0 || n == 0 {
			// numbers before any command or after Z
			i++
			continue
		}
		args, ok := takeNumbers(toks, i, n)
		if !ok {
			i++
			continue
		}
		i += n

		rel := cmd >= 'a'
		var next orb.Point
		switch upper(cmd) {
		case 'M', 'L', 'T':
			next = orb.Point{args[0], args[1]}
		case 'H':
			next = orb.Point{args[0], cur[1]}
			if rel {
				next[0] += cur[0]
			}
			rel = false
		case 'V':
			next = orb.Point{cur[0], args[0]}
			if rel {
				next[1] += cur[1]
			}
			rel = false
		case 'C':
			next = orb.Point{args[4], args[5]}
		case 'S', 'Q':
			next = orb.Point{args[2], args[3]}
		case 'A':
			next = orb.Point{args[5], args[6]}
		}
		if rel {
			next = orb.Point{cur[0] + next[0], cur[1] + next[1]}
		}

		cur = next
		if upper(cmd) == 'M' {
			flush()
			reopen = false
			start = next
			// extra coordinate pairs after a moveto are implicit linetos
			if cmd == 'M' {
				cmd = 'L'
			} else {
				cmd = 'l'
			}
		} else if reopen {
			part = append(part, start)
			reopen = false
		}
		part = append(part, next)
	}
	flush()

	return subpaths, closed
}

func takeNumbers(toks []token, i, n int) ([]float64, bool) {
	if i+n > len(toks) {
		return nil, false
	}
	args := make([]float64, n)
	for k := 0; k < n; k++ {
		if toks[i+k].cmd != 0 {
			return nil, false
		}
		args[k] = toks[i+k].num
	}
	return args, true
}

// ParsePolygonPoints parses an SVG points attribute ("x1,y1 x2,y2 ...").
// An odd trailing value is dropped.
func ParsePolygonPoints(s string) []orb.Point {
	var nums []float64
	for _, t := range tokenize(s) {
		if t.cmd == 0 {
			nums = append(nums, t.num)
		}
	}

	points := make([]orb.Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		points = append(points, orb.Point{nums[i], nums[i+1]})
	}
	return points
}

// ParseRect returns the closed 5-point ring of an axis-aligned rectangle.
func ParseRect(x, y, w, h float64) []orb.Point {
	return []orb.Point{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
		{x, y},
	}
}

// ParseCircle approximates a circle by a regular polygon with the given
// number of vertices (DefaultCircleSegments when segments < 3).
func ParseCircle(cx, cy, r float64, segments int) []orb.Point {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	points := make([]orb.Point, segments)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(segments)
		points[i] = orb.Point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return points
}

// PathGeometry parses path data and classifies it: a path with a close
// command is a polygon, anything else a polyline. See SubpathsGeometry.
func PathGeometry(d string) orb.Geometry {
	return SubpathsGeometry(ParsePath(d))
}

// SubpathsGeometry wraps parsed subpaths in the matching orb geometry. A
// closed path keeps every subpath of three or more points as a polygon;
// an open one keeps every subpath of two or more as a line. Several parts
// become a MultiPolygon or MultiLineString, so no segment joins separate
// subpaths. When nothing qualifies the first point is returned, and no
// points yields nil.
func SubpathsGeometry(subpaths [][]orb.Point, closed bool) orb.Geometry {
	if closed {
		var mp orb.MultiPolygon
		for _, part := range subpaths {
			if len(part) >= 3 {
				mp = append(mp, orb.Polygon{closeRing(part)})
			}
		}
		switch len(mp) {
		case 0:
		case 1:
			return mp[0]
		default:
			return mp
		}
	}

	var ml orb.MultiLineString
	for _, part := range subpaths {
		if len(part) >= 2 {
			ml = append(ml, orb.LineString(part))
		}
	}
	switch len(ml) {
	case 0:
	case 1:
		return ml[0]
	default:
		return ml
	}

	if len(subpaths) == 0 {
		return nil
	}
	return subpaths[0][0]
}

// PointsGeometry wraps a point list in the matching orb geometry.
func PointsGeometry(points []orb.Point, closed bool) orb.Geometry {
	switch {
	case len(points) == 0:
		return nil
	case len(points) == 1:
		return points[0]
	case closed && len(points) >= 3:
		return orb.Polygon{closeRing(points)}
	default:
		return orb.LineString(points)
	}
}

// closeRing returns the points as an orb.Ring with first == last.
func closeRing(points []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(points), len(points)+1)
	copy(ring, points)
	if !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}
