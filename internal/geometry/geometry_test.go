package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func TestPointToPointSymmetry(t *testing.T) {
	pairs := [][2]orb.Point{
		{{0, 0}, {3, 4}},
		{{-2.5, 7}, {11, -3}},
		{{5, 5}, {5, 5}},
	}
	for _, p := range pairs {
		ab := PointToPoint(p[0], p[1])
		ba := PointToPoint(p[1], p[0])
		if ab != ba {
			t.Fatalf("d(a,b)=%v d(b,a)=%v, want equal", ab, ba)
		}
		if (ab == 0) != p[0].Equal(p[1]) {
			t.Fatalf("d=%v for %v %v: zero iff equal violated", ab, p[0], p[1])
		}
	}
	if d := PointToPoint(orb.Point{0, 0}, orb.Point{3, 4}); d != 5 {
		t.Fatalf("d=%v, want 5", d)
	}
}

func TestPointToSegment(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{10, 0}
	tests := []struct {
		p    orb.Point
		want float64
	}{
		{orb.Point{5, 3}, 3},
		{orb.Point{-4, 3}, 5},  // clamped to a
		{orb.Point{13, -4}, 5}, // clamped to b
		{orb.Point{7, 0}, 0},
	}
	for _, tt := range tests {
		if got := PointToSegment(tt.p, a, b); !near(got, tt.want) {
			t.Fatalf("PointToSegment(%v)=%v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPointToSegmentDegenerate(t *testing.T) {
	p, a := orb.Point{4, -1}, orb.Point{1, 3}
	if got, want := PointToSegment(p, a, a), PointToPoint(p, a); got != want {
		t.Fatalf("degenerate=%v, want %v", got, want)
	}
}

func TestPointToPolyline(t *testing.T) {
	line := []orb.Point{{0, 0}, {10, 0}, {10, 10}}
	if got := PointToPolyline(orb.Point{12, 5}, line); !near(got, 2) {
		t.Fatalf("got %v, want 2", got)
	}
	if got := PointToPolyline(orb.Point{1, 1}, nil); !math.IsInf(got, 1) {
		t.Fatalf("empty polyline=%v, want +Inf", got)
	}
	if got := PointToPolyline(orb.Point{3, 4}, []orb.Point{{0, 0}}); got != 5 {
		t.Fatalf("single vertex=%v, want 5", got)
	}
}

func TestPolygonInsideOutside(t *testing.T) {
	square := ParseRect(0, 0, 10, 10)

	inside := orb.Point{5, 5}
	if !PointInPolygon(inside, square) {
		t.Fatal("center of square not inside")
	}
	if d := PointToPolygon(inside, square); d != 0 {
		t.Fatalf("inside distance=%v, want 0", d)
	}

	far := orb.Point{50, -20}
	if PointInPolygon(far, square) {
		t.Fatal("far point reported inside")
	}
	if got, want := PointToPolygon(far, square), PointToPolyline(far, square); !near(got, want) {
		t.Fatalf("outside distance=%v, want boundary distance %v", got, want)
	}
}

func TestPointInPolygonWraparoundEdge(t *testing.T) {
	// open triangle: the closing edge (0,10)->(0,0) matters for x<0 rays
	tri := []orb.Point{{0, 0}, {10, 5}, {0, 10}}
	if !PointInPolygon(orb.Point{2, 5}, tri) {
		t.Fatal("point inside open triangle not detected")
	}
	if PointInPolygon(orb.Point{-1, 5}, tri) {
		t.Fatal("point left of the closing edge reported inside")
	}
	// distance to the implicit closing edge
	if d := PointToPolygon(orb.Point{-3, 5}, tri); !near(d, 3) {
		t.Fatalf("distance to closing edge=%v, want 3", d)
	}
}

func TestPointToPolygonEmpty(t *testing.T) {
	if d := PointToPolygon(orb.Point{0, 0}, nil); !math.IsInf(d, 1) {
		t.Fatalf("empty polygon=%v, want +Inf", d)
	}
}

func TestSegmentIntersectionX(t *testing.T) {
	c, ok := SegmentIntersection(orb.Point{0, 0}, orb.Point{10, 10}, orb.Point{0, 10}, orb.Point{10, 0})
	if !ok {
		t.Fatal("crossing X not detected")
	}
	if c.T < 0 || c.T > 1 || c.U < 0 || c.U > 1 {
		t.Fatalf("t=%v u=%v, want both in [0,1]", c.T, c.U)
	}
	if !near(c.Point[0], 5) || !near(c.Point[1], 5) {
		t.Fatalf("point=%v, want (5,5)", c.Point)
	}
}

func TestSegmentIntersectionNone(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 orb.Point
	}{
		{"parallel", orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{0, 5}, orb.Point{10, 5}},
		{"collinear", orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{5, 0}, orb.Point{15, 0}},
		{"short", orb.Point{0, 0}, orb.Point{4, 4}, orb.Point{0, 10}, orb.Point{10, 0}},
		{"degenerate", orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{0, 10}, orb.Point{10, 0}},
	}
	for _, tt := range tests {
		if _, ok := SegmentIntersection(tt.a1, tt.a2, tt.b1, tt.b2); ok {
			t.Fatalf("%s: got intersection, want none", tt.name)
		}
	}
}

func TestPolylineIntersections(t *testing.T) {
	a := []orb.Point{{0, 5}, {20, 5}}
	b := []orb.Point{{5, 0}, {5, 10}, {15, 10}, {15, 0}}
	got := PolylineIntersections(a, b)
	if len(got) != 2 {
		t.Fatalf("got %d crossings, want 2", len(got))
	}
}

func TestBearingOpposite(t *testing.T) {
	pts := []orb.Point{{0, 0}, {3, -7}, {-12, 4}, {100, 100}, {0, 50}}
	for i := range pts {
		for j := range pts {
			if i == j {
				continue
			}
			ab := Bearing(pts[i], pts[j])
			ba := Bearing(pts[j], pts[i])
			diff := NormalizeDegrees(ab - ba)
			if math.Abs(diff-180) > 1e-9 {
				t.Fatalf("bearing %v->%v=%v, reverse=%v, want 180 apart", pts[i], pts[j], ab, ba)
			}
		}
	}
}

func TestBearingAxes(t *testing.T) {
	o := orb.Point{0, 0}
	tests := []struct {
		to   orb.Point
		want float64
	}{
		{orb.Point{0, -1}, 0},  // north is -y
		{orb.Point{1, 0}, 90},  // east
		{orb.Point{0, 1}, 180}, // south
		{orb.Point{-1, 0}, 270},
		{orb.Point{1, -1}, 45},
	}
	for _, tt := range tests {
		if got := Bearing(o, tt.to); !near(got, tt.want) {
			t.Fatalf("Bearing(o,%v)=%v, want %v", tt.to, got, tt.want)
		}
	}
}

func TestSideOfLine(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{0, -10} // heading north
	if s := SideOfLine(orb.Point{5, -5}, a, b); s <= 0 {
		t.Fatalf("east point side=%v, want right (>0)", s)
	}
	if s := SideOfLine(orb.Point{-5, -5}, a, b); s >= 0 {
		t.Fatalf("west point side=%v, want left (<0)", s)
	}
}

func TestDirectionAt(t *testing.T) {
	line := []orb.Point{{0, 0}, {0, -10}, {10, -10}}
	if b, ok := DirectionAt(orb.Point{1, -3}, line); !ok || !near(b, 0) {
		t.Fatalf("bearing=%v ok=%v, want 0", b, ok)
	}
	if b, ok := DirectionAt(orb.Point{6, -12}, line); !ok || !near(b, 90) {
		t.Fatalf("bearing=%v ok=%v, want 90", b, ok)
	}
	if _, ok := DirectionAt(orb.Point{0, 0}, []orb.Point{{1, 1}}); ok {
		t.Fatal("single vertex should have no direction")
	}
}

func TestProjectRoundTrip(t *testing.T) {
	p := Project(43.6426, -79.3871)
	lat, lon := Unproject(p)
	if math.Abs(lat-43.6426) > 1e-9 || math.Abs(lon+79.3871) > 1e-9 {
		t.Fatalf("round trip=%v,%v", lat, lon)
	}
	north := Project(43.6427, -79.3871)
	if b := Bearing(p, north); !near(b, 0) {
		t.Fatalf("bearing to a point further north=%v, want 0", b)
	}
}
