package shape

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Ellipse is a parametric axis-aligned (pre-transform) ellipse centered on
// the shape's local origin.
type Ellipse struct {
	base
	RadiusX, RadiusY float64
}

func NewEllipse(id int64, rx, ry float64) *Ellipse {
	return &Ellipse{base: newBase(id), RadiusX: rx, RadiusY: ry}
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) RenderPath(toleranceMM float64) geo.Path {
	return geo.TessellateEllipse(geo.Pt(0, 0), e.RadiusX, e.RadiusY, toleranceMM).Transformed(e.transform)
}

func (e *Ellipse) AsCSG(toleranceMM float64) []geo.Polygon {
	return []geo.Polygon{{Outer: e.RenderPath(toleranceMM)}}
}

func (e *Ellipse) Bounds() geo.Rect {
	if e.transform.RotationDeg == 0 {
		corners := []geo.Point2D{
			geo.Pt(-e.RadiusX, -e.RadiusY), geo.Pt(e.RadiusX, -e.RadiusY),
			geo.Pt(e.RadiusX, e.RadiusY), geo.Pt(-e.RadiusX, e.RadiusY),
		}
		return geo.BoundsOfPoints(geo.ApplyAll(corners, e.transform))
	}
	return geo.BoundsOfPoints(e.RenderPath(0.05))
}

func (e *Ellipse) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return hitTestPolygon(e.RenderPath(0.1), p, toleranceMM)
}

func (e *Ellipse) Properties() []Property {
	return []Property{
		{Name: "radius_x", Kind: PropFloat, Value: e.RadiusX, Min: 0, Max: math.Inf(1)},
		{Name: "radius_y", Kind: PropFloat, Value: e.RadiusY, Min: 0, Max: math.Inf(1)},
	}
}

func (e *Ellipse) Clone() Shape {
	cp := *e
	return &cp
}
