package shape

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Circle is a parametric circle centered on the shape's local origin.
type Circle struct {
	base
	Radius float64
}

func NewCircle(id int64, radius float64) *Circle {
	return &Circle{base: newBase(id), Radius: radius}
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) RenderPath(toleranceMM float64) geo.Path {
	return geo.TessellateCircle(geo.Pt(0, 0), c.Radius, toleranceMM).Transformed(c.transform)
}

func (c *Circle) AsCSG(toleranceMM float64) []geo.Polygon {
	return []geo.Polygon{{Outer: c.RenderPath(toleranceMM)}}
}

func (c *Circle) Bounds() geo.Rect {
	// Closed form when unrotated: the bounds of the circle's bounding
	// square under the transform, which is exact for translation and
	// scale. A rotated circle takes the bounds of its tessellation.
	corners := []geo.Point2D{
		geo.Pt(-c.Radius, -c.Radius), geo.Pt(c.Radius, -c.Radius),
		geo.Pt(c.Radius, c.Radius), geo.Pt(-c.Radius, c.Radius),
	}
	if c.transform.RotationDeg == 0 {
		return geo.BoundsOfPoints(geo.ApplyAll(corners, c.transform))
	}
	return geo.BoundsOfPoints(c.RenderPath(0.05))
}

func (c *Circle) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return hitTestPolygon(c.RenderPath(0.1), p, toleranceMM)
}

func (c *Circle) Properties() []Property {
	return []Property{
		{Name: "radius", Kind: PropFloat, Value: c.Radius, Min: 0, Max: math.Inf(1)},
	}
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}
