// Package geo maps coordinates onto a coarse fixed-step grid. Tiles are a
// cheap proxy for "nearby": devices subscribe to the tiles around them and
// alerts address the tiles around their location.
package geo

import (
	"fmt"
	"math"
)

const (
	// TileStepDeg quantizes lat/lng onto a ~5.5 km grid at the equator.
	TileStepDeg = 0.05

	// TileSizeM is the approximate edge length of one tile in meters,
	// used to scale the neighborhood window to an alert radius.
	TileSizeM = 5500.0

	// maxHalfWidth caps the scaled window at 7x7 tiles.
	maxHalfWidth = 3
)

// TileKey returns the grid cell id containing (lat, lng).
// Pure and deterministic; callers must reject NaN/Inf inputs beforehand.
func TileKey(lat, lng float64) string {
	i := int(math.Round(lat / TileStepDeg))
	j := int(math.Round(lng / TileStepDeg))
	return fmt.Sprintf("t_%d_%d", i, j)
}

// TilesForRadius returns the fixed 3x3 neighborhood around (lat, lng):
// the containing tile plus its 8 grid neighbors. Used at registration time,
// where no radius is known yet.
func TilesForRadius(lat, lng float64) []string {
	return neighborhood(lat, lng, 1)
}

// TilesForRadiusM scales the neighborhood window to the alert radius:
// half-width = ceil(radiusM / TileSizeM), clamped to [1, 3]. A non-positive
// radius falls back to the 3x3 window.
func TilesForRadiusM(lat, lng, radiusM float64) []string {
	half := 1
	if radiusM > 0 {
		half = int(math.Ceil(radiusM / TileSizeM))
	}
	if half < 1 {
		half = 1
	}
	if half > maxHalfWidth {
		half = maxHalfWidth
	}
	return neighborhood(lat, lng, half)
}

func neighborhood(lat, lng float64, half int) []string {
	ci := int(math.Round(lat / TileStepDeg))
	cj := int(math.Round(lng / TileStepDeg))

	side := 2*half + 1
	tiles := make([]string, 0, side*side)
	for di := -half; di <= half; di++ {
		for dj := -half; dj <= half; dj++ {
			tiles = append(tiles, fmt.Sprintf("t_%d_%d", ci+di, cj+dj))
		}
	}
	return tiles
}

// TileDiff is the result of comparing a device's previous and current tile
// sets when its location moves across tile boundaries.
type TileDiff struct {
	ToSubscribe   []string
	ToUnsubscribe []string
}

// DiffTileSubscriptions computes newTiles \ oldTiles (to subscribe) and
// oldTiles \ newTiles (to unsubscribe). Pure set difference; order of the
// input slices is irrelevant.
func DiffTileSubscriptions(oldTiles, newTiles []string) TileDiff {
	oldSet := toSet(oldTiles)
	newSet := toSet(newTiles)

	var d TileDiff
	for _, t := range newTiles {
		if !oldSet[t] {
			d.ToSubscribe = append(d.ToSubscribe, t)
		}
	}
	for _, t := range oldTiles {
		if !newSet[t] {
			d.ToUnsubscribe = append(d.ToUnsubscribe, t)
		}
	}
	return d
}

func toSet(tiles []string) map[string]bool {
	s := make(map[string]bool, len(tiles))
	for _, t := range tiles {
		s[t] = true
	}
	return s
}
