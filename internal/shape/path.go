package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// Path is the generic polygonal shape variant. Every boolean operation
// result lands here regardless of the operands' original identity
// (Rectangle/Circle/...), and every SVG/DXF/Gerber import that is not
// reconstructed as a specific parametric primitive also lands here.
//
// Contours holds one or more closed regions in local space: each entry's
// Outer is the outer boundary and Holes are nested cutouts. Open (Closed ==
// false) paths carry a single contour with Holes always empty and are used
// for polylines that are not yet closed regions (mid-draw, or direct
// polyline import).
type Path struct {
	base
	Closed   bool
	Contours []geo.Polygon
}

// NewPath constructs a closed Path shape from one or more polygonal regions.
func NewPath(id int64, contours []geo.Polygon) *Path {
	return &Path{base: newBase(id), Closed: true, Contours: contours}
}

// NewOpenPath constructs an open polyline Path shape from a single contour.
func NewOpenPath(id int64, pts geo.Path) *Path {
	return &Path{base: newBase(id), Closed: false, Contours: []geo.Polygon{{Outer: pts}}}
}

func (p *Path) Kind() Kind { return KindPath }

func (p *Path) RenderPath(toleranceMM float64) geo.Path {
	if len(p.Contours) == 0 {
		return nil
	}
	// The display path is the first contour; a multi-region result is
	// rendered as separate overlay segments by a consuming renderer, which
	// walks AsCSG instead for the full polygon set.
	return p.Contours[0].Outer.Transformed(p.transform)
}

func (p *Path) AsCSG(toleranceMM float64) []geo.Polygon {
	out := make([]geo.Polygon, len(p.Contours))
	for i, c := range p.Contours {
		holes := make([]geo.Path, len(c.Holes))
		for j, h := range c.Holes {
			holes[j] = h.Transformed(p.transform)
		}
		out[i] = geo.Polygon{Outer: c.Outer.Transformed(p.transform), Holes: holes}
	}
	return out
}

func (p *Path) Bounds() geo.Rect {
	r := geo.EmptyRect()
	for _, c := range p.AsCSG(0.1) {
		r = r.Union(c.Outer.Bounds())
	}
	return r
}

func (p *Path) HitTest(pt geo.Point2D, toleranceMM float64) bool {
	for _, c := range p.AsCSG(0.1) {
		if hitTestPolygon(c.Outer, pt, toleranceMM) {
			return true
		}
	}
	return false
}

func (p *Path) Properties() []Property {
	return []Property{
		{Name: "contours", Kind: PropFloat, Value: float64(len(p.Contours))},
		{Name: "closed", Kind: PropBool, Value: p.Closed},
	}
}

func (p *Path) Clone() Shape {
	cp := *p
	cp.Contours = append([]geo.Polygon(nil), p.Contours...)
	return &cp
}
