package geo

import "math"

// Rect is an axis-aligned bounding rectangle in mm.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect returns a rectangle that Union treats as an identity element.
func EmptyRect() Rect {
	return Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

func (r Rect) IsEmpty() bool { return r.MinX > r.MaxX || r.MinY > r.MaxY }

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (r Rect) Center() Point2D {
	return Point2D{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Union returns the smallest rectangle containing both r and s. An empty
// operand is ignored so Union can be folded over a sequence starting at
// EmptyRect().
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, s.MinX),
		MinY: math.Min(r.MinY, s.MinY),
		MaxX: math.Max(r.MaxX, s.MaxX),
		MaxY: math.Max(r.MaxY, s.MaxY),
	}
}

// Intersects reports whether r and s overlap, including touching edges.
func (r Rect) Intersects(s Rect) bool {
	if r.IsEmpty() || s.IsEmpty() {
		return false
	}
	return r.MinX <= s.MaxX && r.MaxX >= s.MinX && r.MinY <= s.MaxY && r.MaxY >= s.MinY
}

// Contains reports whether p lies within r (inclusive of the boundary).
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// ExpandedBy returns r grown by margin mm on every side. A negative margin
// shrinks the rect, clamped so it never becomes inverted relative to its own
// center.
func (r Rect) ExpandedBy(margin float64) Rect {
	if r.IsEmpty() {
		return r
	}
	out := Rect{MinX: r.MinX - margin, MinY: r.MinY - margin, MaxX: r.MaxX + margin, MaxY: r.MaxY + margin}
	if out.MinX > out.MaxX {
		mid := r.Center().X
		out.MinX, out.MaxX = mid, mid
	}
	if out.MinY > out.MaxY {
		mid := r.Center().Y
		out.MinY, out.MaxY = mid, mid
	}
	return out
}

// BoundsOfPoints returns the tight bounding rect of pts, or EmptyRect() if
// pts is empty.
func BoundsOfPoints(pts []Point2D) Rect {
	r := EmptyRect()
	for _, p := range pts {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r
}
