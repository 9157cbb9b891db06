package geo

import "math"

// Transform2D is an affine transform: scale, then rotate, then translate.
// Rotation is always stored in degrees and converted to radians only at the
// point a trig primitive is called, matching the rest of the kernel's
// degrees-in contract.
type Transform2D struct {
	TX, TY        float64
	RotationDeg   float64
	ScaleX, ScaleY float64
}

// Identity returns the no-op transform.
func Identity() Transform2D {
	return Transform2D{ScaleX: 1, ScaleY: 1}
}

// Apply maps a local-space point into world space: scale, rotate, translate,
// in that order.
func (t Transform2D) Apply(p Point2D) Point2D {
	x := p.X * t.ScaleX
	y := p.Y * t.ScaleY
	rad := t.RotationDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	rx := x*cos - y*sin
	ry := x*sin + y*cos
	return Point2D{rx + t.TX, ry + t.TY}
}

// ApplyAll maps a slice of local-space points into world space.
func ApplyAll(pts []Point2D, t Transform2D) []Point2D {
	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// Compose returns the transform equivalent to applying t first, then outer.
// Composition preserves order: Compose(a, b).Apply(p) == b.Apply(a.Apply(p))
// only when a and b share scale/rotation pivoted at the origin, which is the
// contract shapes rely on (parametric form is always defined in local space
// before the transform is baked in).
func Compose(t, outer Transform2D) Transform2D {
	// Represent as a 2x3 matrix and multiply.
	a := t.matrix()
	b := outer.matrix()
	m := matMul(b, a)
	return fromMatrix(m)
}

type mat2x3 [6]float64 // [a, b, c, d, tx, ty] s.t. x' = a*x+c*y+tx, y' = b*x+d*y+ty

func (t Transform2D) matrix() mat2x3 {
	rad := t.RotationDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	a := cos * t.ScaleX
	b := sin * t.ScaleX
	c := -sin * t.ScaleY
	d := cos * t.ScaleY
	return mat2x3{a, b, c, d, t.TX, t.TY}
}

func matMul(m, n mat2x3) mat2x3 {
	a := m[0]*n[0] + m[2]*n[1]
	b := m[1]*n[0] + m[3]*n[1]
	c := m[0]*n[2] + m[2]*n[3]
	d := m[1]*n[2] + m[3]*n[3]
	tx := m[0]*n[4] + m[2]*n[5] + m[4]
	ty := m[1]*n[4] + m[3]*n[5] + m[5]
	return mat2x3{a, b, c, d, tx, ty}
}

func fromMatrix(m mat2x3) Transform2D {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	angle := math.Atan2(m[1], m[0]) * 180 / math.Pi
	return Transform2D{TX: m[4], TY: m[5], RotationDeg: angle, ScaleX: sx, ScaleY: sy}
}

// RotatePoint rotates p around center by degrees, converting to radians once
// at the call site. Correct for any angle including negatives and multiples
// beyond a full turn.
func RotatePoint(p, center Point2D, degrees float64) Point2D {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Point2D{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}
