package shape

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Line is a single open segment from (0,0) to (X2,Y2) in local space.
// It never participates as a boolean operand (a zero-thickness stroke has
// no interior); AsCSG returns the degenerate two-point contour so callers
// that generically iterate over CSG regions still see the geometry.
type Line struct {
	base
	X2, Y2 float64
}

func NewLine(id int64, x2, y2 float64) *Line {
	return &Line{base: newBase(id), X2: x2, Y2: y2}
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) RenderPath(toleranceMM float64) geo.Path {
	return geo.Path{geo.Pt(0, 0), geo.Pt(l.X2, l.Y2)}.Transformed(l.transform)
}

func (l *Line) AsCSG(toleranceMM float64) []geo.Polygon {
	return []geo.Polygon{{Outer: l.RenderPath(toleranceMM)}}
}

func (l *Line) Bounds() geo.Rect {
	return geo.BoundsOfPoints(geo.ApplyAll([]geo.Point2D{geo.Pt(0, 0), geo.Pt(l.X2, l.Y2)}, l.transform))
}

func (l *Line) HitTest(p geo.Point2D, toleranceMM float64) bool {
	path := l.RenderPath(0.1)
	return distanceToSegment(p, path[0], path[1]) <= toleranceMM
}

func (l *Line) Properties() []Property {
	return []Property{
		{Name: "x2", Kind: PropFloat, Value: l.X2, Min: math.Inf(-1), Max: math.Inf(1)},
		{Name: "y2", Kind: PropFloat, Value: l.Y2, Min: math.Inf(-1), Max: math.Inf(1)},
	}
}

func (l *Line) Clone() Shape {
	cp := *l
	return &cp
}
