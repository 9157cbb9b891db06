package cam

import (
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

type rectItem struct{ r geo.Rect }

func (it rectItem) Bounds() geo.Rect { return it.r }

func rectAt(x, y, w, h float64) rectItem {
	return rectItem{geo.Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}}
}

func TestOrderNearestReducesTravel(t *testing.T) {
	// Deliberately bad input order: far, near, far, near.
	items := []rectItem{
		rectAt(500, 500, 10, 10),
		rectAt(10, 10, 10, 10),
		rectAt(480, 480, 10, 10),
		rectAt(30, 30, 10, 10),
	}
	before := TotalRapidDistance(items)
	after := TotalRapidDistance(OrderNearest(items))
	if after >= before {
		t.Errorf("nearest-neighbor ordering should reduce travel: before=%.1f after=%.1f", before, after)
	}
}

func TestOrderNearestStartsClosestToOrigin(t *testing.T) {
	items := []rectItem{
		rectAt(100, 100, 10, 10),
		rectAt(5, 5, 10, 10),
	}
	ordered := OrderNearest(items)
	if ordered[0].r.MinX != 5 {
		t.Error("first item should be the one nearest the origin")
	}
}

func TestOrderStructuralCutsInteriorFirst(t *testing.T) {
	stock := geo.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	edge := rectAt(1, 1, 10, 10)       // hugs the corner
	interior := rectAt(45, 45, 10, 10) // dead center
	middle := rectAt(20, 45, 10, 10)

	ordered := OrderStructural([]rectItem{edge, middle, interior}, stock)
	if ordered[0].r != interior.r {
		t.Errorf("interior part must be cut first, got %+v", ordered[0].r)
	}
	if ordered[len(ordered)-1].r != edge.r {
		t.Errorf("edge part must be cut last, got %+v", ordered[len(ordered)-1].r)
	}
}

func TestOrderEmptyAndSingle(t *testing.T) {
	if got := OrderNearest([]rectItem{}); len(got) != 0 {
		t.Error("empty in, empty out")
	}
	one := []rectItem{rectAt(1, 1, 2, 2)}
	if got := OrderNearest(one); len(got) != 1 {
		t.Error("single item passes through")
	}
}
