package geo

import "math"

// Offset shifts every vertex of a clockwise closed path outward (positive
// distance) or inward (negative distance); for a counter-clockwise path the
// two senses are swapped. Vertices move along the averaged normal of their two adjacent
// edges, miter-scaled so the offset edges land at the requested perpendicular
// distance rather than short-cutting sharp corners. Orientation of the input
// is preserved.
//
// Offset never fails: degenerate input (fewer than 3 points, or a miter
// vertex whose adjacent edges are anti-parallel) falls back to an
// unscaled average normal rather than returning an error, matching the
// kernel's "repair, do not fail" contract for boolean/offset operations.
func Offset(p Path, distance float64) Path {
	n := len(p)
	if n < 3 || distance == 0 {
		return append(Path(nil), p...)
	}

	result := make(Path, n)
	for i := 0; i < n; i++ {
		prev := p[(i-1+n)%n]
		curr := p[i]
		next := p[(i+1)%n]

		e1 := curr.Sub(prev)
		e2 := next.Sub(curr)

		n1 := Point2D{-e1.Y, e1.X}.Normalize()
		n2 := Point2D{-e2.Y, e2.X}.Normalize()

		avg := n1.Add(n2)
		avgLen := avg.Length()
		miter := 1.0
		if avgLen > 1e-9 {
			avg = avg.Scale(1 / avgLen)
			// Miter scale: cos(half the angle between the two normals).
			cosHalf := avg.Dot(n1)
			if cosHalf > 0.2 { // clamp to avoid runaway spikes on near-reversal corners
				miter = 1 / cosHalf
			} else {
				miter = 1
			}
		} else {
			avg = n1
		}

		result[i] = curr.Add(avg.Scale(distance * miter))
	}
	return result
}

// OffsetPolygon offsets a polygon's outer contour outward/inward by distance
// and each hole by the opposite sense, since a hole's "outward" is the
// enclosing material's "inward". Returns possibly-empty results; an outer
// contour that collapses (self-intersects into a degenerate loop) is
// returned as-is rather than raising an error, per the kernel's no-fail
// contract; callers that need the degenerate case filtered out should
// check Path.Area() against a minimum.
func OffsetPolygon(poly Polygon, distance float64) Polygon {
	out := Polygon{Outer: Offset(poly.Outer, distance)}
	for _, h := range poly.Holes {
		out.Holes = append(out.Holes, Offset(h, -distance))
	}
	return out
}

// minInwardOffsetArea is the area fraction below which an inward offset is
// treated as having collapsed to nothing.
const minInwardOffsetArea = 1e-6

// OffsetInwardSteps repeatedly insets path by stepover until the resulting
// area collapses (used by pocket-fill strategies to produce nested
// contours). It always terminates and never errors: collapse is detected by
// area shrinking to ~0 or by area increasing (indicating self-intersection
// inversion), whichever comes first.
func OffsetInwardSteps(p Path, stepover float64, maxSteps int) []Path {
	if stepover <= 0 {
		return nil
	}
	var out []Path
	cur := p
	prevArea := cur.Area()
	for i := 0; i < maxSteps; i++ {
		next := Offset(cur, -stepover)
		area := next.Area()
		if area < prevArea*minInwardOffsetArea || area <= 0 || math.IsNaN(area) {
			break
		}
		if area >= prevArea {
			// Offset stopped making progress inward; stop rather than loop.
			break
		}
		out = append(out, next)
		cur = next
		prevArea = area
	}
	return out
}
