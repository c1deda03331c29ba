// Package geogrid indexes keyed points in a geohash grid for radius and
// nearest-neighbor queries.
//
// Points bucket into geohash cells at a fixed precision. Radius queries walk
// successive frontiers of neighboring cells outward from the query cell, so
// candidate collection never scans the whole index. Candidates are cell-level
// matches; queries optionally double check them with the true haversine
// distance.
package geogrid

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// maxFrontierDepth bounds frontier recursion when a closest-point search
// cannot satisfy its candidate count.
const maxFrontierDepth = 5000

// precisionAvgRadius maps geohash precision (hash length) to the cell
// positioning error in km at that precision.
var precisionAvgRadius = map[int]float64{
	1: 2500,
	2: 630,
	3: 78,
	4: 20,
	5: 2.4,
	6: 0.61,
	7: 0.076,
	8: 0.019,
}

type point struct {
	cell string
	lat  float64
	lng  float64
}

// Grid is a geohash-bucketed index of keyed points.
type Grid struct {
	precision uint
	avgRadius float64
	logger    *zap.Logger

	keys  map[string]point
	cells map[string][]string
}

// Result is one key found by a query, with its distance in km from the query
// point. Distance stays 0 unless the query ran with a distance check.
type Result struct {
	Distance float64
	Key      string
}

// NewGrid builds an empty grid at the given geohash precision, clamped to the
// supported 1..8 range.
func NewGrid(precision int, logger *zap.Logger) *Grid {
	if precision < 1 {
		precision = 1
	}
	if precision > 8 {
		precision = 8
	}

	grid := &Grid{
		precision: uint(precision),
		avgRadius: precisionAvgRadius[precision],
		logger:    logger,
		keys:      map[string]point{},
		cells:     map[string][]string{},
	}
	logger.Debug(
		"grid precision set",
		zap.Int("precision", precision),
		zap.Float64("avg_radius_km", grid.avgRadius),
	)
	return grid
}

// NewGridForRadius builds a grid at the precision whose cell size best
// matches the query radius callers intend to use, preferring cells at least
// as large as the radius.
func NewGridForRadius(radius float64, logger *zap.Logger) *Grid {
	return NewGrid(precisionForRadius(radius), logger)
}

func precisionForRadius(radius float64) int {
	best := 1
	bestSmaller := true
	bestGap := math.Inf(1)
	for precision := 1; precision <= 8; precision++ {
		avg := precisionAvgRadius[precision]
		smaller := avg < radius
		gap := math.Abs(radius - avg)
		if (!smaller && bestSmaller) || (smaller == bestSmaller && gap < bestGap) {
			best = precision
			bestSmaller = smaller
			bestGap = gap
		}
	}
	return best
}

// Add indexes a point under key. Points with coordinates outside the valid
// latitude/longitude ranges are skipped.
func (g *Grid) Add(key string, lat float64, lng float64) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		g.logger.Warn(
			"invalid coordinates, skipping point",
			zap.String("key", key),
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
		)
		return
	}

	cell := geohash.EncodeWithPrecision(lat, lng, g.precision)
	g.keys[key] = point{cell: cell, lat: lat, lng: lng}
	g.cells[cell] = append(g.cells[cell], key)
}

// Len returns the number of indexed keys.
func (g *Grid) Len() int {
	return len(g.keys)
}

// FindNearPoint returns the keys bucketed within radius km of the given
// coordinates. With check set, candidates outside the true radius are
// dropped and results carry their haversine distance.
func (g *Grid) FindNearPoint(lat float64, lng float64, radius float64, check bool) []Result {
	cell := geohash.EncodeWithPrecision(lat, lng, g.precision)
	candidates := g.nearCell(cell, radius)
	if !check {
		return cellResults(candidates)
	}
	return g.checkDistance(candidates, lat, lng, radius)
}

// FindNearKey returns the keys bucketed within radius km of an already
// indexed key. An unindexed key has no results.
func (g *Grid) FindNearKey(key string, radius float64, check bool) []Result {
	pt, ok := g.keys[key]
	if !ok {
		return nil
	}
	candidates := g.nearCell(pt.cell, radius)
	if !check {
		return cellResults(candidates)
	}
	return g.checkDistance(candidates, pt.lat, pt.lng, radius)
}

// FindClosest returns up to n indexed keys closest to the given coordinates,
// optionally restricted to fromKeys. With check set, results sort by true
// haversine distance; otherwise candidates keep grid discovery order.
func (g *Grid) FindClosest(lat float64, lng float64, n int, check bool, fromKeys []string) []Result {
	// Restricting to unindexed keys would send the frontier walk around
	// the globe looking for them, so the restriction set keeps indexed
	// keys only.
	var restrict map[string]struct{}
	if fromKeys != nil {
		restrict = map[string]struct{}{}
		for _, key := range fromKeys {
			if _, ok := g.keys[key]; ok {
				restrict[key] = struct{}{}
			}
		}
		if len(restrict) == 0 {
			return nil
		}
		if n > len(restrict) {
			n = len(restrict)
		}
	}

	if n > len(g.keys) {
		n = len(g.keys)
	}
	if n <= 0 {
		return nil
	}

	cell := geohash.EncodeWithPrecision(lat, lng, g.precision)
	frontier := map[string]struct{}{cell: {}}
	interior := map[string]struct{}{cell: {}}
	seen := map[string]struct{}{}
	var found []string

	satisfied := false
	for depth := 0; depth < maxFrontierDepth; depth++ {
		for _, key := range g.keysInFrontier(frontier) {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if restrict != nil {
				if _, ok := restrict[key]; !ok {
					continue
				}
			}
			found = append(found, key)
		}

		// The first frontier is the query cell itself; always walk at
		// least one ring out before settling.
		if len(found) >= n && len(frontier) > 1 {
			satisfied = true
			break
		}

		frontier = nextFrontier(frontier, interior)
		if len(frontier) == 0 {
			break
		}
		for cell := range frontier {
			interior[cell] = struct{}{}
		}
	}
	if !satisfied && len(found) < n {
		g.logger.Warn(
			"frontier recursion exhausted",
			zap.Int("wanted", n),
			zap.Int("found", len(found)),
		)
	}

	if !check {
		if len(found) > n {
			found = found[:n]
		}
		return cellResults(found)
	}

	results := g.checkDistance(found, lat, lng, math.Inf(1))
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Key < results[j].Key
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}

// nearCell collects candidate keys in enough rings around cell to cover
// radius km.
func (g *Grid) nearCell(cell string, radius float64) []string {
	rings := 2
	if radius != g.avgRadius {
		rings = int(radius/g.avgRadius) + 2
	}
	return g.keysInAdjacentCells(cell, rings)
}

// keysInAdjacentCells collects every key in the first rings frontiers around
// cell, in frontier order.
func (g *Grid) keysInAdjacentCells(cell string, rings int) []string {
	frontier := map[string]struct{}{cell: {}}
	interior := map[string]struct{}{cell: {}}

	var keys []string
	for i := 0; i < rings; i++ {
		keys = append(keys, g.keysInFrontier(frontier)...)
		frontier = nextFrontier(frontier, interior)
		for cell := range frontier {
			interior[cell] = struct{}{}
		}
	}
	return keys
}

// keysInFrontier gathers the keys bucketed in a frontier's cells. Cells are
// visited in sorted order to keep query output deterministic.
func (g *Grid) keysInFrontier(frontier map[string]struct{}) []string {
	cells := lo.Keys(frontier)
	sort.Strings(cells)

	var keys []string
	for _, cell := range cells {
		keys = append(keys, g.cells[cell]...)
	}
	return keys
}

// nextFrontier expands a frontier one ring outward, excluding every interior
// cell already visited.
func nextFrontier(frontier map[string]struct{}, interior map[string]struct{}) map[string]struct{} {
	next := map[string]struct{}{}
	for cell := range frontier {
		for _, neighbor := range geohash.Neighbors(cell) {
			if _, seen := interior[neighbor]; !seen {
				next[neighbor] = struct{}{}
			}
		}
	}
	return next
}

func (g *Grid) checkDistance(candidates []string, lat float64, lng float64, radius float64) []Result {
	var results []Result
	for _, key := range candidates {
		pt := g.keys[key]
		dist := Haversine(lat, lng, pt.lat, pt.lng)
		if dist <= radius {
			results = append(results, Result{Distance: dist, Key: key})
		}
	}
	return results
}

func cellResults(keys []string) []Result {
	return lo.Map(keys, func(key string, _ int) Result {
		return Result{Key: key}
	})
}

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1 float64, lng1 float64, lat2 float64, lng2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
