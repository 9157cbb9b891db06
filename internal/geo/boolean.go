package geo

import "math"

// BoolOp selects a 2D boolean operation.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpDifference
	OpIntersection
)

// maxGridDim bounds the rasterization grid so a boolean op on a huge or
// degenerate input still completes in bounded time and memory.
const maxGridDim = 512

// Boolean performs a 2D boolean operation on two sets of closed polygons by
// rasterizing both operands to a shared grid, combining per-cell, and
// tracing the result's boundary back into polygons (with holes).
//
// This is an approximation, not an exact polygon-clipping algorithm: output
// edges are quantized to the grid's cell size. It is used in preference to
// an exact sweep-line/Boolean-clipping algorithm because it satisfies the
// kernel's hard requirement that boolean ops on degenerate input (zero-area,
// self-intersecting) never fail: rasterization has no failure mode, only
// resolution, where an exact clipper would need extensive special-casing
// for those same degenerate cases. Degenerate or fully-disjoint inputs
// naturally repair to an empty or trivial result rather than erroring.
func Boolean(op BoolOp, a, b []Polygon) []Polygon {
	bounds := EmptyRect()
	for _, p := range a {
		bounds = bounds.Union(p.Outer.Bounds())
	}
	for _, p := range b {
		bounds = bounds.Union(p.Outer.Bounds())
	}
	if bounds.IsEmpty() {
		return nil
	}
	// Pad so boundary-touching geometry still rasterizes a closed loop.
	bounds = bounds.ExpandedBy(math.Max(bounds.Width(), bounds.Height())*0.02 + 0.5)

	span := math.Max(bounds.Width(), bounds.Height())
	cell := span / maxGridDim
	if cell < 1e-3 {
		cell = 1e-3
	}
	w := int(math.Ceil(bounds.Width()/cell)) + 1
	h := int(math.Ceil(bounds.Height()/cell)) + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	g := newGrid(w, h, bounds.MinX, bounds.MinY, cell)
	ga := g.rasterizeSet(a)
	gb := g.rasterizeSet(b)

	combined := make([]bool, len(ga))
	for i := range combined {
		switch op {
		case OpUnion:
			combined[i] = ga[i] || gb[i]
		case OpDifference:
			combined[i] = ga[i] && !gb[i]
		case OpIntersection:
			combined[i] = ga[i] && gb[i]
		}
	}

	return g.traceContours(combined)
}

type grid struct {
	w, h           int
	originX, originY float64
	cell           float64
}

func newGrid(w, h int, originX, originY, cell float64) *grid {
	return &grid{w: w, h: h, originX: originX, originY: originY, cell: cell}
}

func (g *grid) idx(x, y int) int { return y*g.w + x }

func (g *grid) corner(i, j int) Point2D {
	return Point2D{X: g.originX + float64(i)*g.cell, Y: g.originY + float64(j)*g.cell}
}

// rasterizeSet fills a boolean cell grid using the even-odd rule over all
// edges of all contours (outer + holes) of all polygons in polys, which is
// the standard fill rule that makes holes "just work" without orientation
// bookkeeping.
func (g *grid) rasterizeSet(polys []Polygon) []bool {
	cells := make([]bool, g.w*g.h)
	if len(polys) == 0 {
		return cells
	}
	for row := 0; row < g.h; row++ {
		y := g.originY + (float64(row)+0.5)*g.cell
		for _, poly := range polys {
			var edges []Path
			edges = append(edges, poly.Outer)
			edges = append(edges, poly.Holes...)
			xs := scanlineCrossings(edges, y)
			for i := 0; i+1 < len(xs); i += 2 {
				x0, x1 := xs[i], xs[i+1]
				c0 := int(math.Floor((x0 - g.originX) / g.cell))
				c1 := int(math.Floor((x1 - g.originX) / g.cell))
				if c0 < 0 {
					c0 = 0
				}
				if c1 >= g.w {
					c1 = g.w - 1
				}
				for x := c0; x <= c1 && x < g.w; x++ {
					cells[g.idx(x, row)] = true
				}
			}
		}
	}
	return cells
}

// scanlineCrossings returns the sorted X coordinates at which the union of
// contours' edges cross horizontal line y, using the even-odd rule so
// adjacent spans alternate inside/outside.
func scanlineCrossings(contours []Path, y float64) []float64 {
	var xs []float64
	for _, c := range contours {
		n := len(c)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			p0 := c[i]
			p1 := c[(i+1)%n]
			if (p0.Y <= y && p1.Y > y) || (p1.Y <= y && p0.Y > y) {
				t := (y - p0.Y) / (p1.Y - p0.Y)
				xs = append(xs, p0.X+t*(p1.X-p0.X))
			}
		}
	}
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
	return xs
}

type cornerKey struct{ i, j int }

// traceContours walks the boundary of a filled-cell grid, emitting
// counter-clockwise outer loops and clockwise hole loops, then nests holes
// inside their containing outer loop by bounding-box containment.
func (g *grid) traceContours(filled []bool) []Polygon {
	is := func(x, y int) bool {
		if x < 0 || y < 0 || x >= g.w || y >= g.h {
			return false
		}
		return filled[g.idx(x, y)]
	}

	next := make(map[cornerKey]cornerKey)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if !is(x, y) {
				continue
			}
			if !is(x, y-1) { // bottom missing
				next[cornerKey{x, y}] = cornerKey{x + 1, y}
			}
			if !is(x+1, y) { // right missing
				next[cornerKey{x + 1, y}] = cornerKey{x + 1, y + 1}
			}
			if !is(x, y+1) { // top missing
				next[cornerKey{x + 1, y + 1}] = cornerKey{x, y + 1}
			}
			if !is(x-1, y) { // left missing
				next[cornerKey{x, y + 1}] = cornerKey{x, y}
			}
		}
	}

	visited := make(map[cornerKey]bool)
	var outers []Path
	var holes []Path
	// Start corners are visited in grid order so the output is deterministic.
	var starts []cornerKey
	for j := 0; j <= g.h; j++ {
		for i := 0; i <= g.w; i++ {
			if _, ok := next[cornerKey{i, j}]; ok {
				starts = append(starts, cornerKey{i, j})
			}
		}
	}
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var loop Path
		cur := start
		for {
			visited[cur] = true
			loop = append(loop, g.corner(cur.i, cur.j))
			nx, ok := next[cur]
			if !ok {
				break
			}
			cur = nx
			if cur == start {
				break
			}
		}
		loop = simplifyCollinear(loop)
		if len(loop) < 3 {
			continue
		}
		if loop.IsClockwise() {
			holes = append(holes, loop)
		} else {
			outers = append(outers, loop)
		}
	}

	polys := make([]Polygon, len(outers))
	for i, o := range outers {
		polys[i] = Polygon{Outer: o}
	}
	for _, h := range holes {
		hb := h.Bounds()
		best := -1
		bestArea := math.Inf(1)
		for i, p := range polys {
			ob := p.Outer.Bounds()
			if ob.MinX <= hb.MinX && ob.MinY <= hb.MinY && ob.MaxX >= hb.MaxX && ob.MaxY >= hb.MaxY {
				a := p.Outer.Area()
				if a < bestArea {
					bestArea = a
					best = i
				}
			}
		}
		if best >= 0 {
			polys[best].Holes = append(polys[best].Holes, h)
		}
	}
	return polys
}

// simplifyCollinear drops vertices that lie on the straight line between
// their neighbors, which keeps rasterized contours from carrying a vertex
// per grid cell along straight edges.
func simplifyCollinear(p Path) Path {
	n := len(p)
	if n < 3 {
		return p
	}
	out := make(Path, 0, n)
	for i := 0; i < n; i++ {
		prev := p[(i-1+n)%n]
		curr := p[i]
		nextP := p[(i+1)%n]
		e1 := curr.Sub(prev)
		e2 := nextP.Sub(curr)
		cross := e1.Cross(e2)
		if math.Abs(cross) > 1e-12 {
			out = append(out, curr)
		}
	}
	if len(out) < 3 {
		return p
	}
	return out
}
