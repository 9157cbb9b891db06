package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// hitTestPolygon reports whether p is within tolerance of path's stroke or
// (for a closed path) its interior.
func hitTestPolygon(path geo.Path, p geo.Point2D, toleranceMM float64) bool {
	if len(path) == 0 {
		return false
	}
	if len(path) == 1 {
		return p.Distance(path[0]) <= toleranceMM
	}
	n := len(path)
	for i := 0; i < n; i++ {
		a := path[i]
		b := path[(i+1)%n]
		if distanceToSegment(p, a, b) <= toleranceMM {
			return true
		}
	}
	return pointInPolygon(path, p)
}

func distanceToSegment(p, a, b geo.Point2D) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < geo.Tolerance {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	proj := a.Add(ab.Scale(t))
	return p.Distance(proj)
}

func pointInPolygon(path geo.Path, p geo.Point2D) bool {
	n := len(path)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := path[i], path[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
