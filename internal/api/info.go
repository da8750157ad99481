package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Info is static service metadata reported by /api/v1/info.
type Info struct {
	DataDir  string
	TileSize float64
	Known    int
}

type InfoHandler struct {
	info Info
	svc  *Services
}

func NewInfoHandler(info Info, svc *Services) *InfoHandler {
	return &InfoHandler{info: info, svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	DataDir    string   `json:"data_dir" doc:"Data directory path"`
	TileSize   float64  `json:"tile_size" doc:"Tile edge in degrees"`
	Known      int      `json:"known_intersections" doc:"Entries in the known-intersection table"`
	Tiles      int      `json:"tiles" doc:"Tiles in the current snapshot"`
	Loaded     int      `json:"features_loaded" doc:"Features in the current snapshot"`
	DB         bool     `json:"db" doc:"Whether the SQL catalog is available"`
	Capability []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:       "plat-describe",
		Version:    "0.1.0",
		DataDir:    h.info.DataDir,
		TileSize:   h.info.TileSize,
		Known:      h.info.Known,
		Capability: []string{"describe", "directions", "geojson", "svg-tiles"},
	}
	if h.svc != nil && h.svc.Describe != nil {
		snap := h.svc.Describe.Snapshot()
		body.Tiles = snap.Tiles
		body.Loaded = snap.Len()
	}
	if h.svc != nil && h.svc.Catalog != nil {
		body.DB = true
		body.Capability = append(body.Capability, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
