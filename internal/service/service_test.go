package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
)

// One tile at the Front/Yonge corner: Front runs along y=500, Yonge along
// x=500, and a station sits east of the crossing.
const cornerTile = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 1000">
  <g id="roads">
    <line x1="0" y1="500" x2="1000" y2="500" data-name="Front Street West"/>
    <line x1="500" y1="0" x2="500" y2="1000" data-name="Yonge Street"/>
  </g>
  <circle cx="550" cy="500" r="5" data-type="railway:station" data-name="Union Station"/>
</svg>`

func writeTiles(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	tilesDir := filepath.Join(dataDir, "tiles")
	if err := os.MkdirAll(tilesDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(cornerTile)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		"43.6500_-79.3800.svg.gz": buf.Bytes(),
		"43.6500_-79.3700.svg":    []byte(`<svg viewBox="0 0 1000 1000"><rect x="0" y="0" width="10" height="10" data-type="shop:bakery" data-name="Bakery"/></svg>`),
		"43.6400_-79.3800.svg.gz": []byte("not gzip at all"),
		"README.txt":              []byte("ignored"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(tilesDir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dataDir
}

func TestParseTileName(t *testing.T) {
	anchor, compressed, err := ParseTileName("43.6500_-79.3900.svg.gz")
	if err != nil {
		t.Fatal(err)
	}
	if anchor != (feature.Anchor{Lat: 43.65, Lon: -79.39}) || !compressed {
		t.Fatalf("anchor=%v compressed=%v", anchor, compressed)
	}

	if _, compressed, err := ParseTileName("1_2.svg"); err != nil || compressed {
		t.Fatalf("plain svg: compressed=%v err=%v", compressed, err)
	}

	for _, bad := range []string{"tile.svg", "a_b.svg", "43.65_-79.39.png"} {
		if _, _, err := ParseTileName(bad); err == nil {
			t.Fatalf("ParseTileName(%q) accepted", bad)
		}
	}
	if _, _, err := ParseTileName("x.png"); !errors.Is(err, ErrNotTile) {
		t.Fatalf("err=%v, want ErrNotTile", err)
	}
}

func TestTileServiceList(t *testing.T) {
	svc := NewTileService(writeTiles(t), 0)
	files, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("files=%d, want 3", len(files))
	}
	if files[0].Name != "43.6400_-79.3800.svg.gz" || files[0].Lat != 43.64 || !files[0].Compressed {
		t.Fatalf("first=%+v", files[0])
	}
	if svc.Size() != feature.DefaultTileSize {
		t.Fatalf("size=%v, want default", svc.Size())
	}

	empty, err := NewTileService(t.TempDir(), 0).List()
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing dir: files=%v err=%v", empty, err)
	}
}

func TestTileServiceLoadAllSkipsBroken(t *testing.T) {
	svc := NewTileService(writeTiles(t), 0.01)
	tiles, skipped, err := svc.LoadAll(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 2 {
		t.Fatalf("tiles=%d, want 2", len(tiles))
	}
	if len(skipped) != 1 || skipped[0] != "43.6400_-79.3800.svg.gz" {
		t.Fatalf("skipped=%v", skipped)
	}
	// name order: -79.37 sorts before -79.38
	if tiles[0].Anchor.Lon != -79.37 || len(tiles[0].Shapes) != 1 {
		t.Fatalf("first tile=%+v", tiles[0])
	}
	if tiles[1].Anchor.Lon != -79.38 || len(tiles[1].Shapes) != 3 || tiles[1].Extent != 1000 {
		t.Fatalf("second tile=%+v", tiles[1])
	}
}

type recordingIndexer struct {
	loaded int
}

func (r *recordingIndexer) Load(ctx context.Context, features []*feature.Feature) error {
	r.loaded = len(features)
	return nil
}

func TestDescribeServiceReload(t *testing.T) {
	idx := &recordingIndexer{}
	bus := NewEventBus()
	events := bus.Subscribe()
	defer bus.Unsubscribe(events)

	svc := NewDescribeService(NewTileService(writeTiles(t), 0.01), describe.New(), WithIndexer(idx), WithBus(bus))
	if svc.Snapshot().Len() != 0 {
		t.Fatal("new service is not empty")
	}

	before := svc.Snapshot()
	res, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Tiles != 2 || res.Features != 4 || len(res.Skipped) != 1 {
		t.Fatalf("reload=%+v", res)
	}
	if idx.loaded != 4 {
		t.Fatalf("indexed=%d, want 4", idx.loaded)
	}
	if before.Len() != 0 {
		t.Fatal("old snapshot was modified by reload")
	}

	select {
	case ev := <-events:
		if ev.Action != "reloaded" || ev.Tiles != 2 || ev.Features != 4 || len(ev.Skipped) != 1 {
			t.Fatalf("event=%+v", ev)
		}
		if !ev.LoadedAt.Equal(svc.Snapshot().LoadedAt) {
			t.Fatalf("event loaded at %v, snapshot at %v", ev.LoadedAt, svc.Snapshot().LoadedAt)
		}
	default:
		t.Fatal("no reload event published")
	}

	// the crossing is at tile-local (500,500): half a tile south and east of
	// the anchor
	q := describe.At(43.645, -79.375).WithHeading(90)
	d := svc.Describe(q)
	if !strings.Contains(d.Summary, "intersection of Front Street and Yonge Street") {
		t.Fatalf("summary=%q", d.Summary)
	}

	near := svc.Nearby(geometry.Project(43.645, -79.375), 100)
	if len(near) != 3 {
		t.Fatalf("nearby=%d, want 3", len(near))
	}
}
