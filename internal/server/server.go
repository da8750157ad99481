package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/CAFxX/httpcompression"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-describe/internal/api"
	"github.com/joeblew999/plat-describe/internal/catalog"
	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/intersection"
	"github.com/joeblew999/plat-describe/internal/live"
	"github.com/joeblew999/plat-describe/internal/logger"
	"github.com/joeblew999/plat-describe/internal/service"
)

// Start point of the live page: Union Station, Toronto.
const (
	pageLat = 43.6453
	pageLon = -79.3806
)

// Config holds the server configuration.
type Config struct {
	Host            string
	Port            string
	DataDir         string
	TileSize        float64 // degrees; 0 uses the default
	Known           string  // known-intersection YAML; empty uses the built-in table
	StreetThreshold float64 // meters; 0 uses the default
	Workers         int     // concurrent tile decoders; 0 uses the default
	NoCatalog       bool    // skip the DuckDB mirror
}

// Server is the describe HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	services *api.Services
	bus      *service.EventBus
	known    *intersection.KnownTable
	live     *live.Handler
}

// New creates a new server. Call Load before serving to read the tiles.
func New(cfg Config) (*Server, error) {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-describe API", "1.0.0")
	humaConfig.Info.Description = "Describes the surroundings of a point from SVG map tiles: location, nearby landmarks, transit, accessibility and directions."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	known := intersection.DefaultKnownTable()
	if cfg.Known != "" {
		t, err := intersection.LoadKnownTable(cfg.Known)
		if err != nil {
			return nil, fmt.Errorf("known intersections: %w", err)
		}
		known = t
	}

	opts := []describe.Option{describe.WithKnown(known)}
	if cfg.StreetThreshold > 0 {
		opts = append(opts, describe.WithStreetThreshold(cfg.StreetThreshold))
	}
	assembler := describe.New(opts...)

	bus := service.NewEventBus()
	svcOpts := []service.DescribeOption{service.WithBus(bus)}
	if cfg.Workers > 0 {
		svcOpts = append(svcOpts, service.WithWorkers(cfg.Workers))
	}

	services := &api.Services{}
	if !cfg.NoCatalog {
		cat, err := catalog.Open()
		if err != nil {
			logger.L().Warn("catalog unavailable", "error", err)
		} else {
			services.Catalog = cat
			svcOpts = append(svcOpts, service.WithIndexer(cat))
		}
	}
	services.Describe = service.NewDescribeService(service.NewTileService(cfg.DataDir, cfg.TileSize), assembler, svcOpts...)

	renderer, err := live.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("live templates: %w", err)
	}

	compress, err := httpcompression.DefaultAdapter(
		httpcompression.ContentTypes([]string{"text/event-stream"}, true),
	)
	if err != nil {
		return nil, fmt.Errorf("compression: %w", err)
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		handler:  compress(mux),
		humaAPI:  humaAPI,
		services: services,
		bus:      bus,
		known:    known,
		live:     live.NewHandler(renderer, services.Describe, bus),
	}
	s.routes()
	return s, nil
}

// Load reads every tile into the feature set.
func (s *Server) Load(ctx context.Context) (service.ReloadResult, error) {
	return s.services.Describe.Reload(ctx)
}

// Describe exposes the describe service for in-process callers such as the
// CLI.
func (s *Server) Describe() *service.DescribeService {
	return s.services.Describe
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the OpenAPI document of the registered routes.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	return s.services.Catalog.Close()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services, api.Info{
		DataDir:  s.config.DataDir,
		TileSize: s.services.Describe.Tiles().Size(),
		Known:    s.known.Len(),
	})
	s.live.RegisterRoutes(s.humaAPI)

	s.mux.Handle("/maps/tiles/", http.StripPrefix("/maps/tiles/", s.handleTiles(s.services.Describe.Tiles().TilesDir())))
	s.mux.HandleFunc("/", s.live.Page(pageLat, pageLon))
}

// handleTiles serves raw SVG tiles. Gzipped tiles are sent as-is with a
// gzip Content-Encoding.
func (s *Server) handleTiles(tilesDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		name := r.URL.Path
		if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			http.Error(w, "Invalid tile name", http.StatusBadRequest)
			return
		}
		_, compressed, err := service.ParseTileName(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		f, err := os.Open(filepath.Join(tilesDir, name))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if compressed {
			w.Header().Set("Content-Encoding", "gzip")
		}
		http.ServeContent(w, r, name, info.ModTime(), f)
	})
}
