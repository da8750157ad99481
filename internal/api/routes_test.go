package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/service"
)

const cornerTile = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 1000">
  <g id="roads">
    <line x1="0" y1="500" x2="1000" y2="500" data-name="Front Street West"/>
    <line x1="500" y1="0" x2="500" y2="1000" data-name="Yonge Street"/>
  </g>
  <circle cx="550" cy="500" r="5" data-type="railway:station" data-name="Union Station"/>
</svg>`

func newTestAPI(t *testing.T) (humatest.TestAPI, *service.DescribeService) {
	t.Helper()
	dataDir := t.TempDir()
	tilesDir := filepath.Join(dataDir, "tiles")
	if err := os.MkdirAll(tilesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tilesDir, "43.6500_-79.3800.svg"), []byte(cornerTile), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := service.NewDescribeService(service.NewTileService(dataDir, 0.01), describe.New())
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	config := huma.DefaultConfig("test", "1.0.0")
	config.Transformers = append(config.Transformers, LinkTransformer())
	_, api := humatest.New(t, config)
	RegisterRoutes(api, &Services{Describe: svc}, Info{DataDir: dataDir, TileSize: 0.01})
	return api, svc
}

func TestHealthLinks(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d", resp.Code)
	}
	links := strings.Join(resp.Header().Values("Link"), ",")
	if !strings.Contains(links, `</api/v1/describe>; rel="describe"`) {
		t.Fatalf("links=%q", links)
	}
}

func TestInfo(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/api/v1/info")
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body InfoBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Tiles != 1 || body.Loaded != 3 || body.DB {
		t.Fatalf("info=%+v", body)
	}
	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["tiles"] != 1.0 || raw["features_loaded"] != 3.0 {
		t.Fatalf("tiles=%v features_loaded=%v", raw["tiles"], raw["features_loaded"])
	}
}

func TestDescribeEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Post("/api/v1/describe", map[string]any{
		"lat":     43.645,
		"lon":     -79.375,
		"heading": 90,
		"detail":  "standard",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	var d describe.Description
	if err := json.Unmarshal(resp.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(d.Location, "intersection of Front Street and Yonge Street") {
		t.Fatalf("location=%q", d.Location)
	}
	if !d.HeadingMeasured || len(d.Targets) != 1 || d.Targets[0].Name != "Union Station" {
		t.Fatalf("description=%+v", d)
	}
}

func TestDescribeValidation(t *testing.T) {
	api, _ := newTestAPI(t)
	tests := []map[string]any{
		{"lat": 91, "lon": 0},
		{"lat": 43.6, "lon": -79.3, "detail": "verbose"},
		{"lon": -79.3},
	}
	for _, body := range tests {
		if resp := api.Post("/api/v1/describe", body); resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body=%v status=%d, want 422", body, resp.Code)
		}
	}
}

func TestDirectionsEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Post("/api/v1/directions", map[string]any{
		"heading": 0,
		"targets": []map[string]any{
			{"name": "Union Station", "bearing": 90, "meters": 60, "zone": "near"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body DirectionsBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Text != "To your right: Union Station (about 60 meters)." {
		t.Fatalf("text=%q", body.Text)
	}
}

func TestFeaturesGeoJSON(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/api/v1/features?lat=43.645&lon=-79.375&radius=100")
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content-type=%q", ct)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("type=%s features=%d", fc.Type, len(fc.Features))
	}
}

func TestTilesAndReload(t *testing.T) {
	api, _ := newTestAPI(t)
	resp := api.Get("/api/v1/tiles")
	var tiles []service.TileFile
	if err := json.Unmarshal(resp.Body.Bytes(), &tiles); err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 1 || tiles[0].Name != "43.6500_-79.3800.svg" {
		t.Fatalf("tiles=%+v", tiles)
	}

	resp = api.Post("/api/v1/tiles/reload")
	var res service.ReloadResult
	if err := json.Unmarshal(resp.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Tiles != 1 || res.Features != 3 {
		t.Fatalf("reload=%+v", res)
	}
}

func TestCatalogUnavailable(t *testing.T) {
	api, _ := newTestAPI(t)
	if resp := api.Get("/api/v1/tables"); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", resp.Code)
	}
}
