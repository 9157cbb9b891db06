package design

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// SpatialIndex is a uniform-grid bounding-box index mapping a world region
// to the ShapeIds whose bounds intersect it. It is invalidated by any
// shape mutation and rebuilt lazily the next time a hit-test query needs
// it, per spec: stale between mutations, consistent before the next query.
type SpatialIndex struct {
	dirty   bool
	cellMM  float64
	cells   map[cellKey][]int64
	bounds  geo.Rect
}

type cellKey struct{ x, y int }

const defaultCellMM = 20.0

// NewSpatialIndex returns an index that rebuilds itself lazily.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{dirty: true, cellMM: defaultCellMM}
}

// Invalidate marks the index stale; it is not rebuilt until the next query.
func (ix *SpatialIndex) Invalidate() { ix.dirty = true }

// ensure rebuilds the grid from store if dirty.
func (ix *SpatialIndex) ensure(store *Store) {
	if !ix.dirty {
		return
	}
	ix.cells = make(map[cellKey][]int64)
	ix.bounds = geo.EmptyRect()
	for _, id := range store.AllIDs() {
		sh, err := store.Get(id)
		if err != nil {
			continue
		}
		b := sh.Bounds()
		if b.IsEmpty() {
			continue
		}
		ix.bounds = ix.bounds.Union(b)
		for cx := ix.cellOf(b.MinX); cx <= ix.cellOf(b.MaxX); cx++ {
			for cy := ix.cellOf(b.MinY); cy <= ix.cellOf(b.MaxY); cy++ {
				k := cellKey{cx, cy}
				ix.cells[k] = append(ix.cells[k], id)
			}
		}
	}
	ix.dirty = false
}

func (ix *SpatialIndex) cellOf(v float64) int {
	return int(math.Floor(v / ix.cellMM))
}

// Query returns every shape id whose bounds may intersect region (a
// superset; callers should confirm with an exact HitTest/Intersects
// check), rebuilding the index first if it is stale.
func (ix *SpatialIndex) Query(store *Store, region geo.Rect) []int64 {
	ix.ensure(store)
	seen := make(map[int64]bool)
	var out []int64
	for cx := ix.cellOf(region.MinX); cx <= ix.cellOf(region.MaxX); cx++ {
		for cy := ix.cellOf(region.MinY); cy <= ix.cellOf(region.MaxY); cy++ {
			for _, id := range ix.cells[cellKey{cx, cy}] {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// HitTest finds the topmost (highest z-order) shape whose exact geometry
// contains p within tolerance, narrowing candidates via Query first.
func (ix *SpatialIndex) HitTest(store *Store, p geo.Point2D, toleranceMM float64) (int64, bool) {
	region := geo.Rect{MinX: p.X - toleranceMM, MinY: p.Y - toleranceMM, MaxX: p.X + toleranceMM, MaxY: p.Y + toleranceMM}
	candidates := ix.Query(store, region)
	best := int64(0)
	bestZ := -1
	found := false
	for _, id := range candidates {
		sh, err := store.Get(id)
		if err != nil {
			continue
		}
		if sh.HitTest(p, toleranceMM) && sh.ZOrder() > bestZ {
			best = id
			bestZ = sh.ZOrder()
			found = true
		}
	}
	return best, found
}
