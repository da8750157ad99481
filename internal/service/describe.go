package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/logger"
	"github.com/joeblew999/plat-describe/internal/proximity"
)

// Indexer receives every new feature set, for example to mirror it into a
// queryable catalog.
type Indexer interface {
	Load(ctx context.Context, features []*feature.Feature) error
}

// DescribeService holds the current feature set and runs description
// queries against it.
type DescribeService struct {
	tiles     *TileService
	extractor *feature.Extractor
	assembler *describe.Assembler
	indexer   Indexer
	bus       *EventBus
	workers   int

	current atomic.Pointer[FeatureSet]
}

// DescribeOption configures a DescribeService.
type DescribeOption func(*DescribeService)

// WithIndexer mirrors every reload into idx.
func WithIndexer(idx Indexer) DescribeOption {
	return func(s *DescribeService) { s.indexer = idx }
}

// WithBus publishes reload events on bus.
func WithBus(bus *EventBus) DescribeOption {
	return func(s *DescribeService) { s.bus = bus }
}

// WithExtractor replaces the default feature extractor.
func WithExtractor(e *feature.Extractor) DescribeOption {
	return func(s *DescribeService) { s.extractor = e }
}

// WithWorkers sets how many tiles are decoded at once.
func WithWorkers(n int) DescribeOption {
	return func(s *DescribeService) { s.workers = n }
}

// NewDescribeService creates a service with an empty feature set. Call
// Reload to load the tiles.
func NewDescribeService(tiles *TileService, assembler *describe.Assembler, opts ...DescribeOption) *DescribeService {
	s := &DescribeService{
		tiles:     tiles,
		extractor: feature.NewExtractor(),
		assembler: assembler,
		workers:   4,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&FeatureSet{})
	return s
}

// Tiles returns the underlying tile service.
func (s *DescribeService) Tiles() *TileService {
	return s.tiles
}

// Snapshot returns the current feature set. It is never nil.
func (s *DescribeService) Snapshot() *FeatureSet {
	return s.current.Load()
}

// Reload reads every tile, extracts features and swaps in the new set.
// Queries already running keep the previous set.
func (s *DescribeService) Reload(ctx context.Context) (ReloadResult, error) {
	start := time.Now()

	tiles, skipped, err := s.tiles.LoadAll(ctx, s.workers)
	if err != nil {
		return ReloadResult{}, fmt.Errorf("reload: %w", err)
	}

	set := &FeatureSet{
		Features: s.extractor.ExtractAll(tiles),
		Tiles:    len(tiles),
		Skipped:  skipped,
		LoadedAt: time.Now(),
	}

	if s.indexer != nil {
		if err := s.indexer.Load(ctx, set.Features); err != nil {
			logger.L().Warn("catalog load failed", "error", err)
		}
	}

	s.current.Store(set)

	res := ReloadResult{
		Tiles:    set.Tiles,
		Features: set.Len(),
		Skipped:  skipped,
		Took:     time.Since(start).Round(time.Millisecond).String(),
	}
	logger.L().Info("tiles reloaded", "tiles", res.Tiles, "features", res.Features, "skipped", len(skipped), "took", res.Took)

	if s.bus != nil {
		s.bus.Publish(SetEvent("reloaded", set))
	}
	return res, nil
}

// Describe runs q against the current feature set.
func (s *DescribeService) Describe(q describe.Query) describe.Description {
	return s.assembler.Describe(q, s.Snapshot().Features)
}

// Nearby returns the features within radius meters of center, nearest
// first.
func (s *DescribeService) Nearby(center orb.Point, radius float64) []proximity.Measured {
	return proximity.Evaluate(center, s.Snapshot().Features, radius, proximity.DefaultThresholds())
}
