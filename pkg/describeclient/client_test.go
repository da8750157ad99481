package describeclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeblew999/plat-describe/internal/api"
	"github.com/joeblew999/plat-describe/internal/server"
	"github.com/joeblew999/plat-describe/pkg/describeclient"
)

const cornerTile = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 1000">
  <line x1="0" y1="500" x2="1000" y2="500" data-type="highway:primary" data-name="Front Street West"/>
  <line x1="500" y1="0" x2="500" y2="1000" data-type="highway:primary" data-name="Yonge Street"/>
  <circle cx="550" cy="500" r="5" data-type="railway:station" data-name="Union Station"/>
</svg>`

func newClient(t *testing.T) *describeclient.Client {
	t.Helper()
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "tiles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "tiles", "43.6500_-79.3800.svg"), []byte(cornerTile), 0o644); err != nil {
		t.Fatal(err)
	}
	srv, err := server.New(server.Config{DataDir: dataDir, TileSize: 0.01, NoCatalog: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := srv.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return describeclient.New(ts.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	health, err := c.Health(ctx)
	if err != nil || health.Status != "ok" {
		t.Fatalf("health=%+v err=%v", health, err)
	}

	heading := 90.0
	d, err := c.Describe(ctx, api.DescribeRequest{Lat: 43.645, Lon: -79.375, Heading: &heading})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(d.Location, "Front Street and Yonge Street") {
		t.Fatalf("location=%q", d.Location)
	}

	text, err := c.Directions(ctx, d, 270)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "Behind you: Union Station") {
		t.Fatalf("directions=%q", text)
	}

	tiles, err := c.Tiles(ctx)
	if err != nil || len(tiles) != 1 {
		t.Fatalf("tiles=%v err=%v", tiles, err)
	}
}

func TestClientError(t *testing.T) {
	c := newClient(t)
	_, err := c.Describe(context.Background(), api.DescribeRequest{Lat: 95, Lon: 0})
	var apiErr *describeclient.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("err=%v, want a 422 API error", err)
	}
}
