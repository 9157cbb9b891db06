package gerber

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// CopperPolygons converts the parsed image into closed polygonal copper
// regions: one polygon per flash, per stroked draw segment, and per filled
// region. The caller unions them before offsetting, since pads and traces
// overlap heavily on any real board.
func (b *Board) CopperPolygons(toleranceMM float64) []geo.Polygon {
	var out []geo.Polygon
	for _, f := range b.Flashes {
		if ap, ok := b.Apertures[f.Aperture]; ok {
			if outline := ap.Outline(f.At, toleranceMM); len(outline) >= 3 {
				out = append(out, geo.Polygon{Outer: outline})
			}
		}
	}
	for _, d := range b.Draws {
		width := b.strokeWidth(d.Aperture)
		for i := 0; i+1 < len(d.Path); i++ {
			capsule := capsulePolygon(d.Path[i], d.Path[i+1], width/2, toleranceMM)
			if len(capsule) >= 3 {
				out = append(out, geo.Polygon{Outer: capsule})
			}
		}
	}
	for _, r := range b.Regions {
		out = append(out, geo.Polygon{Outer: r.Contour})
	}
	return out
}

// strokeWidth is the diameter a draw is swept with. Rectangular apertures
// sweep at their smaller dimension, the usual EDA convention for traces.
func (b *Board) strokeWidth(apertureCode int) float64 {
	ap, ok := b.Apertures[apertureCode]
	if !ok || len(ap.Modifiers) == 0 {
		return 0.1
	}
	switch ap.Kind {
	case ApertureCircle:
		return ap.Modifiers[0]
	default:
		w := ap.Modifiers[0]
		if len(ap.Modifiers) > 1 && ap.Modifiers[1] < w {
			w = ap.Modifiers[1]
		}
		return w
	}
}

// Outline returns the aperture's closed outline stamped at the given
// position.
func (ap Aperture) Outline(at geo.Point2D, toleranceMM float64) geo.Path {
	switch ap.Kind {
	case ApertureCircle:
		if len(ap.Modifiers) < 1 {
			return nil
		}
		return geo.TessellateCircle(at, ap.Modifiers[0]/2, toleranceMM)
	case ApertureRect:
		if len(ap.Modifiers) < 2 {
			return nil
		}
		w, h := ap.Modifiers[0]/2, ap.Modifiers[1]/2
		return geo.Path{
			{X: at.X - w, Y: at.Y - h},
			{X: at.X + w, Y: at.Y - h},
			{X: at.X + w, Y: at.Y + h},
			{X: at.X - w, Y: at.Y + h},
		}
	case ApertureObround:
		if len(ap.Modifiers) < 2 {
			return nil
		}
		return obroundOutline(at, ap.Modifiers[0], ap.Modifiers[1], toleranceMM)
	case AperturePolygon:
		if len(ap.Modifiers) < 2 {
			return nil
		}
		n := int(ap.Modifiers[1])
		if n < 3 {
			return nil
		}
		rot := 0.0
		if len(ap.Modifiers) > 2 {
			rot = ap.Modifiers[2]
		}
		r := ap.Modifiers[0] / 2
		path := make(geo.Path, n)
		for i := 0; i < n; i++ {
			a := rot*math.Pi/180 + 2*math.Pi*float64(i)/float64(n)
			path[i] = geo.Pt(at.X+r*math.Cos(a), at.Y+r*math.Sin(a))
		}
		return path
	}
	return nil
}

// obroundOutline is a stadium: a rectangle with semicircular caps on its
// longer axis.
func obroundOutline(at geo.Point2D, w, h, toleranceMM float64) geo.Path {
	if w == h {
		return geo.TessellateCircle(at, w/2, toleranceMM)
	}
	horizontal := w > h
	var a, b geo.Point2D
	var r float64
	if horizontal {
		r = h / 2
		a = geo.Pt(at.X-(w/2-r), at.Y)
		b = geo.Pt(at.X+(w/2-r), at.Y)
	} else {
		r = w / 2
		a = geo.Pt(at.X, at.Y-(h/2-r))
		b = geo.Pt(at.X, at.Y+(h/2-r))
	}
	return capsulePolygon(a, b, r, toleranceMM)
}

// capsulePolygon returns the outline swept by a circle of radius r moving
// from a to b.
func capsulePolygon(a, b geo.Point2D, r, toleranceMM float64) geo.Path {
	if r <= 0 {
		return nil
	}
	if a.AlmostEqual(b) {
		return geo.TessellateCircle(a, r, toleranceMM)
	}
	dir := b.Sub(a).Normalize()
	perp := dir.Perp()

	steps := capSteps(r, toleranceMM)
	path := make(geo.Path, 0, 2*steps+4)

	// Half-circle around b from +perp to -perp, then around a back.
	for i := 0; i <= steps; i++ {
		ang := math.Pi * float64(i) / float64(steps)
		off := perp.Scale(math.Cos(ang)).Add(dir.Scale(math.Sin(ang)))
		path = append(path, b.Add(off.Scale(r)))
	}
	for i := 0; i <= steps; i++ {
		ang := math.Pi * float64(i) / float64(steps)
		off := perp.Scale(-math.Cos(ang)).Add(dir.Scale(-math.Sin(ang)))
		path = append(path, a.Add(off.Scale(r)))
	}
	return path
}

func capSteps(r, toleranceMM float64) int {
	if toleranceMM <= 0 || toleranceMM >= r {
		return 4
	}
	steps := int(math.Ceil(math.Pi / (2 * math.Acos(1-toleranceMM/r))))
	if steps < 4 {
		steps = 4
	}
	return steps
}
