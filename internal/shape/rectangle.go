package shape

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Rectangle is a parametric rectangle with its local origin at the
// bottom-left corner, optionally rounded.
type Rectangle struct {
	base
	Width, Height float64
	CornerRadius  float64
}

// NewRectangle constructs a Rectangle with the given parametric size.
func NewRectangle(id int64, width, height float64) *Rectangle {
	return &Rectangle{base: newBase(id), Width: width, Height: height}
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) localPath(toleranceMM float64) geo.Path {
	w, h, rad := r.Width, r.Height, r.CornerRadius
	maxRad := math.Min(w, h) / 2
	if rad > maxRad {
		rad = maxRad
	}
	if rad <= 0 {
		return geo.Path{geo.Pt(0, 0), geo.Pt(w, 0), geo.Pt(w, h), geo.Pt(0, h)}
	}

	var pts geo.Path
	corners := []struct {
		center geo.Point2D
		start  geo.Point2D
	}{
		{geo.Pt(w-rad, rad), geo.Pt(w, rad)},
		{geo.Pt(w-rad, h-rad), geo.Pt(w-rad, h)},
		{geo.Pt(rad, h-rad), geo.Pt(0, h-rad)},
		{geo.Pt(rad, rad), geo.Pt(rad, 0)},
	}
	for _, c := range corners {
		arc := geo.TessellateArc(c.start, c.start, c.center, false, toleranceMM)
		// Keep a quarter turn only (TessellateArc with from==to returns a
		// full circle); slice to the first 90 degrees.
		quarter := len(arc)/4 + 1
		if quarter > len(arc) {
			quarter = len(arc)
		}
		pts = append(pts, arc[:quarter]...)
	}
	return pts
}

func (r *Rectangle) RenderPath(toleranceMM float64) geo.Path {
	return r.localPath(toleranceMM).Transformed(r.transform)
}

func (r *Rectangle) AsCSG(toleranceMM float64) []geo.Polygon {
	return []geo.Polygon{{Outer: r.RenderPath(toleranceMM)}}
}

func (r *Rectangle) Bounds() geo.Rect {
	// Closed form: transform the four parametric corners (ignoring corner
	// radius, which only shrinks the bounds) and take their bounding box.
	corners := []geo.Point2D{geo.Pt(0, 0), geo.Pt(r.Width, 0), geo.Pt(r.Width, r.Height), geo.Pt(0, r.Height)}
	return geo.BoundsOfPoints(geo.ApplyAll(corners, r.transform))
}

func (r *Rectangle) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return hitTestPolygon(r.RenderPath(0.1), p, toleranceMM)
}

func (r *Rectangle) Properties() []Property {
	return []Property{
		{Name: "width", Kind: PropFloat, Value: r.Width, Min: 0, Max: math.Inf(1)},
		{Name: "height", Kind: PropFloat, Value: r.Height, Min: 0, Max: math.Inf(1)},
		{Name: "corner_radius", Kind: PropFloat, Value: r.CornerRadius, Min: 0, Max: math.Inf(1)},
	}
}

func (r *Rectangle) Clone() Shape {
	c := *r
	return &c
}
