package describe

import (
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/intersection"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

const (
	testLat = 43.6465
	testLon = -79.3775
)

// at offsets the test center by meters east and south.
func at(east, south float64) orb.Point {
	c := geometry.Project(testLat, testLon)
	return orb.Point{c[0] + proximity.MetersToUnits(east), c[1] + proximity.MetersToUnits(south)}
}

func feat(name, tag string, g orb.Geometry) *feature.Feature {
	return &feature.Feature{ID: name, Name: name, Tag: feature.ParseTag(tag), Geometry: g}
}

func downtown() []*feature.Feature {
	crossing := feat("", "highway:crossing", at(5, 0))
	crossing.Access = feature.Accessibility{Wheelchair: feature.WheelchairUnknown, TactilePaving: true}
	return []*feature.Feature{
		feat("Front Street West", "highway:primary", orb.LineString{at(-200, 0), at(200, 0)}),
		feat("Yonge Street", "highway:secondary", orb.LineString{at(0, -200), at(0, 200)}),
		feat("Union Station", "railway:station", at(60, 0)),
		feat("Hockey Hall of Fame", "tourism:museum", at(0, -30)),
		feat("Tim Hortons", "amenity:cafe", at(0, 20)),
		feat("Old Oak", "natural:tree", at(-10, 0)),
		crossing,
	}
}

func sectionHeadings(d Description) []string {
	var out []string
	for _, s := range d.Sections {
		out = append(out, s.Heading)
	}
	return out
}

func TestDescribeAtIntersection(t *testing.T) {
	q := At(testLat, testLon).WithHeading(90)
	d := New().Describe(q, downtown())

	if !strings.Contains(d.Summary, "intersection of Front Street and Yonge Street") {
		t.Fatalf("summary=%q, want the Front/Yonge intersection", d.Summary)
	}
	if !strings.Contains(d.Summary, "facing east") {
		t.Fatalf("summary=%q, want facing east", d.Summary)
	}
	if !d.HeadingMeasured || d.Heading != 90 {
		t.Fatalf("heading=%v measured=%v", d.Heading, d.HeadingMeasured)
	}

	want := []string{"Landmarks", "Transit", "Accessibility", "Amenities", "Directions"}
	got := sectionHeadings(d)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sections=%v, want %v", got, want)
	}
	for _, s := range d.Sections {
		if s.Text == "" && len(s.Items) == 0 {
			t.Fatalf("section %q is empty", s.Heading)
		}
	}

	dir := d.Sections[len(d.Sections)-1].Text
	if !strings.Contains(dir, "Ahead: Union Station (about 60 meters).") {
		t.Fatalf("directions=%q", dir)
	}
	if !strings.Contains(dir, "To your left: Hockey Hall of Fame") || !strings.Contains(dir, "To your right: Tim Hortons") {
		t.Fatalf("directions=%q", dir)
	}
	if strings.Contains(dir, "Old Oak") || strings.Contains(dir, "Front Street") {
		t.Fatalf("directions mention vegetation or roads: %q", dir)
	}

	if !strings.HasPrefix(d.Text, d.Summary+"\n\n") {
		t.Fatalf("text does not start with the summary group: %q", d.Text)
	}
	if n := strings.Count(d.Text, "\n\n"); n != len(d.Sections) {
		t.Fatalf("pause breaks=%d, want %d", n, len(d.Sections))
	}
}

func TestDescribeItemsByDetail(t *testing.T) {
	features := downtown()
	q := At(testLat, testLon).WithHeading(90)

	q.Detail = Brief
	brief := New().Describe(q, features)
	if item := brief.Sections[1].Items[0]; item != "Union Station, nearby" {
		t.Fatalf("brief transit item=%q", item)
	}

	q.Detail = Standard
	standard := New().Describe(q, features)
	if item := standard.Sections[1].Items[0]; item != "Union Station, about 60 meters ahead" {
		t.Fatalf("standard transit item=%q", item)
	}

	q.Detail = Detailed
	detailed := New().Describe(q, features)
	if item := detailed.Sections[1].Items[0]; item != "Union Station, about 60 meters at 12 o'clock, about a minute's walk" {
		t.Fatalf("detailed transit item=%q", item)
	}

	access := standard.Sections[2]
	if access.Heading != "Accessibility" || access.Items[0] != "crossing (tactile paving), a few meters ahead" {
		t.Fatalf("accessibility=%+v", access)
	}
}

func TestDescribeSectionLimits(t *testing.T) {
	var features []*feature.Feature
	for i, name := range []string{"A Cafe", "B Cafe", "C Cafe", "D Cafe", "E Cafe", "F Cafe"} {
		features = append(features, feat(name, "amenity:cafe", at(float64(10+i*10), 0)))
	}
	// duplicate name from a neighbouring tile
	features = append(features, feat("A Cafe", "amenity:cafe", at(90, 0)))

	q := At(testLat, testLon)
	q.Detail = Brief
	if items := New().Describe(q, features).Sections[0].Items; len(items) != 3 {
		t.Fatalf("brief items=%d, want 3", len(items))
	}
	q.Detail = Standard
	items := New().Describe(q, features).Sections[0].Items
	if len(items) != 5 || !strings.HasPrefix(items[0], "A Cafe") || !strings.HasPrefix(items[4], "E Cafe") {
		t.Fatalf("standard items=%v", items)
	}
}

func TestDescribeExcludedSections(t *testing.T) {
	q := At(testLat, testLon).WithHeading(0)
	q.Include = Include{Transit: true}
	d := New().Describe(q, downtown())
	if got := sectionHeadings(d); len(got) != 1 || got[0] != "Transit" {
		t.Fatalf("sections=%v, want only Transit", got)
	}
	if len(d.Targets) == 0 {
		t.Fatal("targets dropped with the directions section")
	}
}

func TestDescribeNoFeatures(t *testing.T) {
	d := New().Describe(At(testLat, testLon), nil)
	if !strings.Contains(d.Summary, "latitude 43.64650, longitude -79.37750") {
		t.Fatalf("summary=%q, want coordinates", d.Summary)
	}
	if len(d.Sections) != 0 || len(d.Targets) != 0 {
		t.Fatalf("sections=%v targets=%v, want none", d.Sections, d.Targets)
	}
	if d.Text != d.Summary {
		t.Fatalf("text=%q, want the summary only", d.Text)
	}
}

func TestDescribeMissingHeading(t *testing.T) {
	d := New().Describe(At(testLat, testLon), downtown())
	if d.HeadingMeasured || d.Heading != 0 {
		t.Fatalf("heading=%v measured=%v, want unmeasured north", d.Heading, d.HeadingMeasured)
	}
	if !strings.Contains(d.Summary, "facing north (heading not measured)") {
		t.Fatalf("summary=%q", d.Summary)
	}
}

func TestDescribeOnStreetSide(t *testing.T) {
	features := []*feature.Feature{
		feat("Yonge Street", "highway:secondary", orb.LineString{at(3, -200), at(3, 200)}),
	}
	d := New().Describe(At(testLat, testLon), features)
	if d.Location != "on Yonge Street, west side" {
		t.Fatalf("location=%q", d.Location)
	}
	if !strings.HasPrefix(d.Summary, "You are on Yonge Street, west side, facing north") {
		t.Fatalf("summary=%q", d.Summary)
	}
	if d.Title != "Yonge Street" {
		t.Fatalf("title=%q", d.Title)
	}
}

func TestDescribeLandmarkFallback(t *testing.T) {
	features := []*feature.Feature{
		feat("Corner Shop", "shop:convenience", at(10, 0)),
		feat("Union Station", "railway:station", at(30, 0)),
		feat("Far Tower", "man_made:tower", at(300, 0)),
	}
	d := New().Describe(At(testLat, testLon), features)
	if d.Location != "near Union Station" {
		t.Fatalf("location=%q, want near Union Station", d.Location)
	}

	park := feat("Small Park", "leisure:park", orb.Polygon{{at(-5, -5), at(5, -5), at(5, 5), at(-5, 5), at(-5, -5)}})
	d = New().Describe(At(testLat, testLon), []*feature.Feature{park})
	if !strings.HasPrefix(d.Location, "at latitude") {
		t.Fatalf("small park used as landmark: %q", d.Location)
	}
}

// square is a side x side meter polygon whose north-west corner is at
// (east, south).
func square(east, south, side float64) orb.Polygon {
	return orb.Polygon{{at(east, south), at(east+side, south), at(east+side, south+side), at(east, south+side), at(east, south)}}
}

func TestLandmarkRank(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		g    orb.Geometry
		want int
	}{
		{"Union Station", "railway:station", at(1, 0), 0},
		{"Bay Concourse", "public_transport:station", at(1, 0), 0},
		{"Bus Terminal", "amenity:bus_station", at(1, 0), 0},
		{"CN Tower", "man_made:tower", at(1, 0), 1},
		{"TD Tower", "building:yes", at(1, 0), 1},
		{"Royal Bank Plaza", "building:office", at(1, 0), 2},
		{"Acme Ltd", "office:company", at(1, 0), 2},
		{"Tim Hortons", "amenity:cafe", at(1, 0), 3},
		{"Corner Shop", "shop:convenience", at(1, 0), 4},
		{"Old City Hall", "building:yes", at(1, 0), 5},
		{"Berczy Park", "leisure:park", square(0, 0, 60), 6},
		{"Parkette", "leisure:park", square(0, 0, 10), -1},
		{"Old Oak", "natural:tree", at(1, 0), -1},
		{"Front Street", "highway:primary", orb.LineString{at(0, 0), at(10, 0)}, -1},
	}
	for _, tt := range tests {
		if got := landmarkRank(feat(tt.name, tt.tag, tt.g)); got != tt.want {
			t.Fatalf("landmarkRank(%s %s)=%d, want %d", tt.name, tt.tag, got, tt.want)
		}
	}
}

func TestDescribeLandmarkPriority(t *testing.T) {
	// highest priority first, each one further away than the next
	chain := []*feature.Feature{
		feat("Union Station", "railway:station", at(80, 0)),
		feat("CN Tower", "man_made:tower", at(70, 0)),
		feat("Royal Bank Plaza", "building:office", at(60, 0)),
		feat("Tim Hortons", "amenity:cafe", at(50, 0)),
		feat("Corner Shop", "shop:convenience", at(40, 0)),
		feat("Old City Hall", "building:yes", at(30, 0)),
		feat("Berczy Park", "leisure:park", square(10, -30, 60)),
	}
	for i := range chain {
		d := New().Describe(At(testLat, testLon), chain[i:])
		if want := "near " + chain[i].Name; d.Location != want {
			t.Fatalf("with %d candidates: location=%q, want %q", len(chain)-i, d.Location, want)
		}
	}
}

func TestDescribeKnownName(t *testing.T) {
	table, err := intersection.ParseKnownTable([]byte("- streets: [Front Street, Yonge Street]\n  name: Front and Yonge\n"))
	if err != nil {
		t.Fatal(err)
	}
	d := New(WithKnown(table)).Describe(At(testLat, testLon), downtown())
	if !strings.Contains(d.Location, "intersection of Front Street and Yonge Street, known as Front and Yonge") {
		t.Fatalf("location=%q", d.Location)
	}
}

func TestDescribeTrace(t *testing.T) {
	var stages []string
	a := New(WithTrace(func(e Event) { stages = append(stages, e.Stage) }))
	a.Describe(At(testLat, testLon), downtown())
	joined := strings.Join(stages, ",")
	if !strings.Contains(joined, "crossing") || !strings.Contains(joined, "location") {
		t.Fatalf("stages=%v", stages)
	}
}

func TestDirectionalInfo(t *testing.T) {
	d := New().Describe(At(testLat, testLon).WithHeading(90), downtown())
	text := DirectionalInfo(d, 270)
	if !strings.Contains(text, "Behind you: Union Station") {
		t.Fatalf("directions=%q", text)
	}
	if !strings.HasPrefix(text, "To your right: Hockey Hall of Fame") {
		t.Fatalf("directions=%q, want clock order from ahead", text)
	}
}

func TestDescribeConcurrent(t *testing.T) {
	features := downtown()
	a := New(WithKnown(intersection.DefaultKnownTable()))
	want := a.Describe(At(testLat, testLon).WithHeading(45), features).Text

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := a.Describe(At(testLat, testLon).WithHeading(45), features).Text; got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent text=%q, want %q", got, want)
	}
}
