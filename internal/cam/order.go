package cam

import (
	"math"
	"sort"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Bounded is anything with an axis-aligned bounding rect: a shape's CSG
// region, a box panel, a jigsaw piece. The ordering strategies below work
// on bounds alone so every generator can share them.
type Bounded interface {
	Bounds() geo.Rect
}

// OrderNearest reorders items with a nearest-neighbor heuristic to minimize
// total rapid travel. Starting from the origin, each subsequent item is the
// one whose center is closest to the previous item's center.
func OrderNearest[T Bounded](items []T) []T {
	n := len(items)
	if n <= 1 {
		return items
	}

	remaining := make([]T, n)
	copy(remaining, items)
	ordered := make([]T, 0, n)

	cur := geo.Pt(0, 0)
	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for i, it := range remaining {
			d := it.Bounds().Center().Distance(cur)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		chosen := remaining[bestIdx]
		ordered = append(ordered, chosen)
		cur = chosen.Bounds().Center()
		remaining[bestIdx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return ordered
}

// OrderStructural reorders items so interior ones are cut first and ones
// near the stock edges last, preserving the rigidity of the surrounding
// material while interior cuts are made. Items with larger minimum
// distance to any stock edge sort earlier; ties break toward the stock
// center.
func OrderStructural[T Bounded](items []T, stock geo.Rect) []T {
	n := len(items)
	if n <= 1 {
		return items
	}

	ordered := make([]T, n)
	copy(ordered, items)
	center := stock.Center()

	sort.SliceStable(ordered, func(i, j int) bool {
		di := minEdgeDistance(ordered[i].Bounds(), stock)
		dj := minEdgeDistance(ordered[j].Bounds(), stock)
		if math.Abs(di-dj) > 0.01 {
			return di > dj
		}
		return ordered[i].Bounds().Center().Distance(center) < ordered[j].Bounds().Center().Distance(center)
	})
	return ordered
}

// minEdgeDistance returns the minimum distance from an item's bounds to any
// edge of the stock rect. Larger means more interior.
func minEdgeDistance(b, stock geo.Rect) float64 {
	d := b.MinX - stock.MinX
	if v := stock.MaxX - b.MaxX; v < d {
		d = v
	}
	if v := b.MinY - stock.MinY; v < d {
		d = v
	}
	if v := stock.MaxY - b.MaxY; v < d {
		d = v
	}
	return d
}

// TotalRapidDistance is the center-to-center travel for a sequence of
// items starting from the origin, for comparing ordered vs unordered
// toolpaths.
func TotalRapidDistance[T Bounded](items []T) float64 {
	total := 0.0
	cur := geo.Pt(0, 0)
	for _, it := range items {
		c := it.Bounds().Center()
		total += c.Distance(cur)
		cur = c
	}
	return total
}
