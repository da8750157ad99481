package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/logger"
	"github.com/joeblew999/plat-describe/internal/server"
	"github.com/joeblew999/plat-describe/internal/tiler"
)

// Options defines all CLI flags and env vars for the describe server.
// Flags: --host, --port, --data-dir, --tile-size, --known, --street-threshold, --workers
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_TILE_SIZE, ...
// humacli only takes string, int and bool options, so TileSize is parsed here.
type Options struct {
	Host            string `doc:"Host to bind to" default:"0.0.0.0"`
	Port            int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir         string `doc:"Directory holding tiles/" default:".data"`
	TileSize        string `doc:"Tile edge in degrees" default:"0.01"`
	Known           string `doc:"Known-intersection YAML file (built-in table when empty)"`
	StreetThreshold int    `doc:"Meters within which the user stands on a street" default:"5"`
	Workers         int    `doc:"Tiles decoded concurrently" default:"4"`
}

func tileSize(opts *Options) float64 {
	size, err := strconv.ParseFloat(opts.TileSize, 64)
	if err != nil || size <= 0 {
		log.Fatalf("Invalid tile size %q", opts.TileSize)
	}
	return size
}

func newServer(opts *Options, catalog bool) *server.Server {
	srv, err := server.New(server.Config{
		Host:            opts.Host,
		Port:            fmt.Sprintf("%d", opts.Port),
		DataDir:         opts.DataDir,
		TileSize:        tileSize(opts),
		Known:           opts.Known,
		StreetThreshold: float64(opts.StreetThreshold),
		Workers:         opts.Workers,
		NoCatalog:       !catalog,
	})
	if err != nil {
		log.Fatalf("Server setup failed: %v", err)
	}
	return srv
}

// loadServer builds a server without the catalog and reads the tiles, for
// one-shot commands.
func loadServer(opts *Options) *server.Server {
	srv := newServer(opts, false)
	if _, err := srv.Load(context.Background()); err != nil {
		log.Fatalf("Loading tiles failed: %v", err)
	}
	return srv
}

func printAs(format string, v any) {
	var (
		out []byte
		err error
	)
	switch format {
	case "yaml":
		out, err = yaml.Marshal(v)
	default:
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func main() {
	_ = godotenv.Load(".env")
	logger.Setup()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts, true)

		hooks.OnStart(func() {
			res, err := srv.Load(context.Background())
			if err != nil {
				log.Fatalf("Loading tiles failed: %v", err)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-describe API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s (%d tiles, %d features)\n", opts.DataDir, res.Tiles, res.Features)
			fmt.Println()
			fmt.Printf("  Live:    %s/\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})

		hooks.OnStop(func() {
			srv.Close()
		})
	})

	cli.Root().Use = "describe"
	cli.Root().Short = "Describe the surroundings of a point from SVG map tiles"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts, false)
			useYAML, _ := cmd.Flags().GetBool("yaml")
			format := "json"
			if useYAML {
				format = "yaml"
			}
			printAs(format, srv.OpenAPI())
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// at subcommand: describe one point without starting the server
	atCmd := &cobra.Command{
		Use:   "at",
		Short: "Describe the surroundings of --lat/--lon",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			f := cmd.Flags()
			lat, _ := f.GetFloat64("lat")
			lon, _ := f.GetFloat64("lon")
			radius, _ := f.GetFloat64("radius")
			detail, _ := f.GetString("detail")
			format, _ := f.GetString("format")

			q := describe.At(lat, lon)
			if f.Changed("heading") {
				heading, _ := f.GetFloat64("heading")
				q = q.WithHeading(heading)
			}
			q.Radius = radius
			q.Detail = describe.DetailLevel(detail)

			d := loadServer(opts).Describe().Describe(q)
			if format == "text" {
				fmt.Println(d.Text)
				return
			}
			printAs(format, d)
		}),
	}
	atCmd.Flags().Float64("lat", 0, "Latitude")
	atCmd.Flags().Float64("lon", 0, "Longitude")
	atCmd.Flags().Float64("heading", 0, "Compass heading in degrees (north assumed when unset)")
	atCmd.Flags().Float64("radius", 0, "Search radius in meters (area threshold when 0)")
	atCmd.Flags().String("detail", "standard", "brief, standard or detailed")
	atCmd.Flags().StringP("format", "f", "text", "text, json or yaml")
	atCmd.MarkFlagRequired("lat")
	atCmd.MarkFlagRequired("lon")
	cli.Root().AddCommand(atCmd)

	// features subcommand: export nearby features as GeoJSON
	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "Print the features within --radius of --lat/--lon as GeoJSON",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			f := cmd.Flags()
			lat, _ := f.GetFloat64("lat")
			lon, _ := f.GetFloat64("lon")
			radius, _ := f.GetFloat64("radius")

			near := loadServer(opts).Describe().Nearby(geometry.Project(lat, lon), radius)
			features := make([]*feature.Feature, len(near))
			for i, m := range near {
				features[i] = m.Feature
			}
			printAs("json", feature.FeatureCollection(features))
		}),
	}
	featuresCmd.Flags().Float64("lat", 0, "Latitude")
	featuresCmd.Flags().Float64("lon", 0, "Longitude")
	featuresCmd.Flags().Float64("radius", 200, "Radius in meters")
	featuresCmd.MarkFlagRequired("lat")
	featuresCmd.MarkFlagRequired("lon")
	cli.Root().AddCommand(featuresCmd)

	// tile subcommand: cut a GeoJSON FeatureCollection into SVG tiles
	tileCmd := &cobra.Command{
		Use:   "tile <input.geojson>",
		Short: "Cut a GeoJSON FeatureCollection into SVG tiles under <data-dir>/tiles",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			gz, _ := cmd.Flags().GetBool("gzip")
			simplifyTol, _ := cmd.Flags().GetFloat64("simplify")

			t := tiler.New(tiler.Config{Size: tileSize(opts), Simplify: simplifyTol, Gzip: gz})
			res, err := t.TileFile(args[0], filepath.Join(opts.DataDir, "tiles"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error tiling %s: %v\n", args[0], err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %d tiles (%d features, %d dropped) to %s\n",
				res.Tiles, res.Features, res.Dropped, filepath.Join(opts.DataDir, "tiles"))
		}),
	}
	tileCmd.Flags().BoolP("gzip", "z", true, "Write gzipped .svg.gz tiles")
	tileCmd.Flags().Float64("simplify", 0, "Douglas-Peucker tolerance in tile units (0 disables)")
	cli.Root().AddCommand(tileCmd)

	cli.Run()
}
