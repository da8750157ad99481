// Package service loads map tiles and answers description queries for the
// API and CLI.
package service

import (
	"time"

	"github.com/joeblew999/plat-describe/internal/feature"
)

// TileFile is one tile file in the tiles directory.
type TileFile struct {
	Name       string  `json:"name" doc:"Tile file name" example:"43.6500_-79.3900.svg.gz"`
	Size       string  `json:"size" doc:"Human-readable file size" example:"48.2 KB"`
	Lat        float64 `json:"lat" doc:"Latitude of the north-west corner" example:"43.65"`
	Lon        float64 `json:"lon" doc:"Longitude of the north-west corner" example:"-79.39"`
	Compressed bool    `json:"compressed" doc:"Whether the file is gzipped"`
}

// FeatureSet is an immutable snapshot of every feature extracted from the
// tiles directory. A reload builds a new set; queries keep the set they
// started with.
type FeatureSet struct {
	Features []*feature.Feature
	Tiles    int
	Skipped  []string // tile files that could not be read
	LoadedAt time.Time
}

// Len returns the number of features.
func (s *FeatureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Features)
}

// ReloadResult summarises a reload.
type ReloadResult struct {
	Tiles    int      `json:"tiles" doc:"Tiles loaded" example:"4"`
	Features int      `json:"features" doc:"Features extracted" example:"1832"`
	Skipped  []string `json:"skipped,omitempty" doc:"Tile files that could not be read"`
	Took     string   `json:"took" doc:"Reload duration" example:"84ms"`
}
