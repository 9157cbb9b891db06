package geo

import "math"

// TessellateCubicBezier flattens a cubic Bezier segment (p0 the current
// point, p1/p2 control points, p3 the end point) into a polyline whose
// chordal deviation from the true curve is at most toleranceMM, via
// recursive subdivision on the flatness test (deviation of control points
// from the chord).
func TessellateCubicBezier(p0, p1, p2, p3 Point2D, toleranceMM float64) []Point2D {
	if toleranceMM <= 0 {
		toleranceMM = 0.01
	}
	var pts []Point2D
	flattenCubic(p0, p1, p2, p3, toleranceMM, 0, &pts)
	pts = append(pts, p3)
	return pts
}

func flattenCubic(p0, p1, p2, p3 Point2D, tol float64, depth int, out *[]Point2D) {
	*out = append(*out, p0)
	if depth >= 24 || cubicIsFlat(p0, p1, p2, p3, tol) {
		return
	}
	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	p23 := p2.Lerp(p3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	mid := p012.Lerp(p123, 0.5)

	// Drop the p0 just emitted; the first-half call below emits it again.
	tmp := (*out)[:len(*out)-1]
	*out = tmp
	flattenCubic(p0, p01, p012, mid, tol, depth+1, out)
	flattenCubic(mid, p123, p23, p3, tol, depth+1, out)
}

func cubicIsFlat(p0, p1, p2, p3 Point2D, tol float64) bool {
	d1 := pointLineDistance(p1, p0, p3)
	d2 := pointLineDistance(p2, p0, p3)
	return d1 <= tol && d2 <= tol
}

func pointLineDistance(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	l := ab.Length()
	if l < Tolerance {
		return p.Distance(a)
	}
	return math.Abs(ab.Cross(p.Sub(a))) / l
}

// TessellateQuadraticBezier flattens a quadratic Bezier via degree
// elevation to cubic form, reusing the cubic flattener.
func TessellateQuadraticBezier(p0, ctrl, p1 Point2D, toleranceMM float64) []Point2D {
	c1 := p0.Add(ctrl.Sub(p0).Scale(2.0 / 3.0))
	c2 := p1.Add(ctrl.Sub(p1).Scale(2.0 / 3.0))
	return TessellateCubicBezier(p0, c1, c2, p1, toleranceMM)
}
