package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/logger"
)

// Tile file suffixes, longest first.
var tileSuffixes = []string{".svg.gz", ".svg"}

// ErrNotTile is returned for file names that are not <lat>_<lon>.svg[.gz].
var ErrNotTile = errors.New("not a tile file name")

// TileService reads SVG map tiles from <dataDir>/tiles.
type TileService struct {
	tilesDir string
	size     float64
}

// NewTileService creates a tile service. size is the angular tile size in
// degrees; <= 0 uses feature.DefaultTileSize.
func NewTileService(dataDir string, size float64) *TileService {
	if size <= 0 {
		size = feature.DefaultTileSize
	}
	return &TileService{
		tilesDir: filepath.Join(dataDir, "tiles"),
		size:     size,
	}
}

// ParseTileName returns the anchor encoded in a tile file name and whether
// the file is gzipped.
func ParseTileName(name string) (anchor feature.Anchor, compressed bool, err error) {
	base := filepath.Base(name)
	stem := ""
	for _, suffix := range tileSuffixes {
		if strings.HasSuffix(base, suffix) {
			stem = strings.TrimSuffix(base, suffix)
			compressed = suffix == ".svg.gz"
			break
		}
	}
	if stem == "" {
		return anchor, false, fmt.Errorf("%s: %w", name, ErrNotTile)
	}

	latStr, lonStr, ok := strings.Cut(stem, "_")
	if !ok {
		return anchor, false, fmt.Errorf("%s: %w", name, ErrNotTile)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return anchor, false, fmt.Errorf("%s: bad latitude: %w", name, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return anchor, false, fmt.Errorf("%s: bad longitude: %w", name, err)
	}
	return feature.Anchor{Lat: lat, Lon: lon}, compressed, nil
}

// List returns all tile files, sorted by name.
func (s *TileService) List() ([]TileFile, error) {
	entries, err := os.ReadDir(s.tilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TileFile{}, nil
		}
		return nil, err
	}

	files := []TileFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		anchor, compressed, err := ParseTileName(entry.Name())
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, TileFile{
			Name:       entry.Name(),
			Size:       formatSize(info.Size()),
			Lat:        anchor.Lat,
			Lon:        anchor.Lon,
			Compressed: compressed,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// TilesDir returns the path to the tiles directory.
func (s *TileService) TilesDir() string {
	return s.tilesDir
}

// Size returns the angular tile size in degrees.
func (s *TileService) Size() float64 {
	return s.size
}

// Load decodes one tile file.
func (s *TileService) Load(name string) (feature.Tile, error) {
	anchor, compressed, err := ParseTileName(name)
	if err != nil {
		return feature.Tile{}, err
	}

	f, err := os.Open(filepath.Join(s.tilesDir, filepath.Base(name)))
	if err != nil {
		return feature.Tile{}, fmt.Errorf("open tile: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return feature.Tile{}, fmt.Errorf("%s: gzip: %w", name, err)
		}
		defer zr.Close()
		r = zr
	}

	doc, err := feature.DecodeSVG(r)
	if err != nil {
		return feature.Tile{}, fmt.Errorf("%s: %w", name, err)
	}
	return feature.Tile{
		Anchor: anchor,
		Size:   s.size,
		Extent: doc.Extent,
		Shapes: doc.Shapes,
	}, nil
}

// LoadAll decodes every tile in the directory, reading up to workers files
// at once. Unreadable tiles are logged and returned in skipped; the rest
// still load. Tiles come back in file name order.
func (s *TileService) LoadAll(ctx context.Context, workers int) (tiles []feature.Tile, skipped []string, err error) {
	files, err := s.List()
	if err != nil {
		return nil, nil, fmt.Errorf("list tiles: %w", err)
	}
	if workers <= 0 {
		workers = 4
	}

	loaded := make([]*feature.Tile, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tile, err := s.Load(file.Name)
			if err != nil {
				logger.L().Warn("skipping unreadable tile", "file", file.Name, "error", err)
				mu.Lock()
				skipped = append(skipped, file.Name)
				mu.Unlock()
				return nil
			}
			loaded[i] = &tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, t := range loaded {
		if t != nil {
			tiles = append(tiles, *t)
		}
	}
	sort.Strings(skipped)
	return tiles, skipped, nil
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
