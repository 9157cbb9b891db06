package geo

import "math"

// Path is an ordered polyline in world space. Closed paths repeat neither
// the first point at the end nor assume it; callers that need closure treat
// the last segment as connecting back to index 0.
type Path []Point2D

// Polygon is a closed region: one outer contour plus zero or more holes.
// Boolean operations on the kernel return a slice of Polygon, since a union
// or difference can legitimately produce disjoint regions.
type Polygon struct {
	Outer Path
	Holes []Path
}

// Bounds returns the bounding rect of the path's vertices.
func (p Path) Bounds() Rect { return BoundsOfPoints(p) }

// SignedArea returns the polygon area via the shoelace formula;
// positive for counter-clockwise winding, negative for clockwise. Treats the
// path as implicitly closed.
func (p Path) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	sum := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area of the (implicitly closed) path.
func (p Path) Area() float64 {
	a := p.SignedArea()
	if a < 0 {
		return -a
	}
	return a
}

// IsClockwise reports whether the path winds clockwise in the Cartesian
// (y-up) frame.
func (p Path) IsClockwise() bool { return p.SignedArea() < 0 }

// Reversed returns a copy of p with vertex order reversed, flipping winding.
func (p Path) Reversed() Path {
	out := make(Path, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// EnsureOrientation returns a copy of p wound clockwise if cw is true,
// counter-clockwise otherwise. Used to normalize outer contours vs. holes
// before offsetting or boolean ops.
func (p Path) EnsureOrientation(cw bool) Path {
	if p.IsClockwise() == cw {
		return append(Path(nil), p...)
	}
	return p.Reversed()
}

// Closed returns p with its first point appended at the end if it is not
// already (within Tolerance) closed, used when a consumer needs an explicit
// final segment back to the start.
func (p Path) Closed() Path {
	if len(p) == 0 {
		return p
	}
	if p[0].AlmostEqual(p[len(p)-1]) {
		return p
	}
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = p[0]
	return out
}

// Transformed applies t to every vertex of p.
func (p Path) Transformed(t Transform2D) Path {
	return Path(ApplyAll(p, t))
}

// TessellateArc returns line segments approximating the arc from `from` to
// `to` around `center`, with the given rotation direction, such that the
// chordal deviation from the true arc is at most toleranceMM. A full circle
// is produced when from and to coincide and radius is nonzero.
func TessellateArc(from, to, center Point2D, clockwise bool, toleranceMM float64) []Point2D {
	radius := from.Distance(center)
	if radius < Tolerance {
		return []Point2D{from, to}
	}
	startAngle := math.Atan2(from.Y-center.Y, from.X-center.X)
	endAngle := math.Atan2(to.Y-center.Y, to.X-center.X)

	sweep := endAngle - startAngle
	fullCircle := from.AlmostEqual(to)
	if fullCircle {
		if clockwise {
			sweep = -2 * math.Pi
		} else {
			sweep = 2 * math.Pi
		}
	} else if clockwise {
		for sweep > 0 {
			sweep -= 2 * math.Pi
		}
	} else {
		for sweep < 0 {
			sweep += 2 * math.Pi
		}
	}

	if toleranceMM <= 0 {
		toleranceMM = 0.01
	}
	// Chord-tolerance-derived angular step: for a circle of radius r, a step
	// of theta has chordal deviation r*(1-cos(theta/2)).
	maxStep := 2 * math.Acos(1-math.Min(toleranceMM/radius, 1))
	if maxStep <= 0 || math.IsNaN(maxStep) {
		maxStep = math.Pi / 32
	}
	steps := int(math.Ceil(math.Abs(sweep) / maxStep))
	if steps < 1 {
		steps = 1
	}

	pts := make([]Point2D, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := startAngle + sweep*float64(i)/float64(steps)
		pts = append(pts, Point2D{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return pts
}

// TessellateCircle returns a closed polygon approximating a circle of given
// center/radius such that chordal deviation is at most toleranceMM.
func TessellateCircle(center Point2D, radius, toleranceMM float64) Path {
	if radius <= 0 {
		return nil
	}
	start := Point2D{X: center.X + radius, Y: center.Y}
	pts := TessellateArc(start, start, center, false, toleranceMM)
	// Drop the duplicated closing point; Path contracts are open.
	if len(pts) > 1 {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// TessellateEllipse returns a closed polygon approximating an axis-aligned
// (pre-transform) ellipse with semi-axes rx, ry, such that the chordal
// deviation of the larger axis is at most toleranceMM.
func TessellateEllipse(center Point2D, rx, ry, toleranceMM float64) Path {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	r := math.Max(rx, ry)
	if toleranceMM <= 0 {
		toleranceMM = 0.01
	}
	maxStep := 2 * math.Acos(1-math.Min(toleranceMM/r, 1))
	if maxStep <= 0 || math.IsNaN(maxStep) {
		maxStep = math.Pi / 32
	}
	steps := int(math.Ceil(2 * math.Pi / maxStep))
	if steps < 8 {
		steps = 8
	}
	pts := make(Path, steps)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = Point2D{X: center.X + rx*math.Cos(a), Y: center.Y + ry*math.Sin(a)}
	}
	return pts
}
