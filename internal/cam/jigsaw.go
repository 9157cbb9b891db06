package cam

import (
	"math"
	"math/rand"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// JigsawParams configures puzzle generation. Seed fully determines the
// tab/blank pattern, so the same seed always cuts the same puzzle.
type JigsawParams struct {
	Params
	Width, Height float64
	Rows, Cols    int
	Seed          int64
	TabSizePct    float64 // knob diameter as a percentage of piece size, 0 = 20%
}

// jigsawEdges holds each interior edge exactly once; both adjacent pieces
// traverse the same polyline (one of them reversed), which is what makes
// mating edges exact inverses.
type jigsawEdges struct {
	h [][]geo.Path // h[r][c]: top edge of piece (r,c), left-to-right, r < rows-1
	v [][]geo.Path // v[r][c]: right edge of piece (r,c), bottom-to-top, c < cols-1
}

// Jigsaw generates the cutting program for a puzzle: the outer boundary
// rectangle plus every interior knob edge, each cut once. Interior edges
// are chained into full-span polylines so the tool crosses the sheet in
// single passes.
func Jigsaw(prm JigsawParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	edges, err := buildJigsawEdges(prm)
	if err != nil {
		return "", err
	}

	p := NewProgram(prm.Profile, 3)
	p.Header("Jigsaw puzzle", prm.Params)
	p.Commentf("Grid: %d x %d pieces, seed %d", prm.Cols, prm.Rows, prm.Seed)

	passes := prm.depthPasses()
	var cuts []geo.Path

	// Horizontal interior lines, one polyline per row boundary.
	for r := 0; r < prm.Rows-1; r++ {
		var line geo.Path
		for c := 0; c < prm.Cols; c++ {
			seg := edges.h[r][c]
			if len(line) > 0 {
				seg = seg[1:]
			}
			line = append(line, seg...)
		}
		cuts = append(cuts, line)
	}
	// Vertical interior lines.
	for c := 0; c < prm.Cols-1; c++ {
		var line geo.Path
		for r := 0; r < prm.Rows; r++ {
			seg := edges.v[r][c]
			if len(line) > 0 {
				seg = seg[1:]
			}
			line = append(line, seg...)
		}
		cuts = append(cuts, line)
	}
	// Outer boundary, cut last so the sheet stays captive while interior
	// lines are cut.
	boundary := geo.Path{
		geo.Pt(0, 0), geo.Pt(prm.Width, 0), geo.Pt(prm.Width, prm.Height), geo.Pt(0, prm.Height),
	}

	for _, line := range cuts {
		for pi, z := range passes {
			p.Commentf("Pass %d/%d, Z=%.2f", pi+1, len(passes), z)
			p.RapidZ(prm.SafeZ)
			p.Rapid(line[0].X, line[0].Y)
			p.FeedZ(z, prm.PlungeRate)
			for i := 1; i < len(line); i++ {
				p.Feed(line[i].X, line[i].Y, prm.FeedRate)
			}
			p.RapidZ(prm.SafeZ)
		}
	}
	p.Comment("--- Boundary ---")
	for pi, z := range passes {
		p.Commentf("Pass %d/%d, Z=%.2f", pi+1, len(passes), z)
		p.RapidZ(prm.SafeZ)
		p.Rapid(boundary[0].X, boundary[0].Y)
		enterPass(p, boundary, z, prm.Params)
		cutClosedPath(p, boundary, prm.Params)
		p.RapidZ(prm.SafeZ)
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// JigsawPieces returns every piece's closed outline, for preview and for
// verifying that neighbors share exactly inverse edges. Boundary pieces
// have straight outer edges.
func JigsawPieces(prm JigsawParams) ([]geo.Path, error) {
	edges, err := buildJigsawEdges(prm)
	if err != nil {
		return nil, err
	}
	pw := prm.Width / float64(prm.Cols)
	ph := prm.Height / float64(prm.Rows)

	var pieces []geo.Path
	for r := 0; r < prm.Rows; r++ {
		for c := 0; c < prm.Cols; c++ {
			x0, y0 := float64(c)*pw, float64(r)*ph
			x1, y1 := x0+pw, y0+ph

			var outline geo.Path
			// Bottom: top edge of the piece below, or straight.
			if r > 0 {
				outline = append(outline, edges.h[r-1][c]...)
			} else {
				outline = append(outline, geo.Pt(x0, y0), geo.Pt(x1, y0))
			}
			// Right: stored bottom-to-top.
			if c < prm.Cols-1 {
				outline = append(outline, edges.v[r][c][1:]...)
			} else {
				outline = append(outline, geo.Pt(x1, y1))
			}
			// Top: stored left-to-right, traversed reversed.
			if r < prm.Rows-1 {
				rev := edges.h[r][c].Reversed()
				outline = append(outline, rev[1:]...)
			} else {
				outline = append(outline, geo.Pt(x0, y1))
			}
			// Left: stored bottom-to-top, traversed reversed, closing
			// vertex dropped.
			if c > 0 {
				rev := edges.v[r][c-1].Reversed()
				outline = append(outline, rev[1:len(rev)-1]...)
			}
			pieces = append(pieces, dedupeAdjacent(outline))
		}
	}
	return pieces, nil
}

func buildJigsawEdges(prm JigsawParams) (*jigsawEdges, error) {
	const op = "cam.Jigsaw"
	if prm.Rows < 1 || prm.Cols < 1 {
		return nil, core.New(core.KindInputValidation, op, "grid must be at least 1x1", nil)
	}
	if prm.Width <= 0 || prm.Height <= 0 {
		return nil, core.New(core.KindInputValidation, op, "puzzle dimensions must be positive", nil)
	}

	rng := rand.New(rand.NewSource(prm.Seed))
	pw := prm.Width / float64(prm.Cols)
	ph := prm.Height / float64(prm.Rows)
	tabPct := prm.TabSizePct
	if tabPct <= 0 {
		tabPct = 20
	}

	e := &jigsawEdges{}
	e.h = make([][]geo.Path, prm.Rows-1)
	for r := range e.h {
		e.h[r] = make([]geo.Path, prm.Cols)
		y := float64(r+1) * ph
		for c := range e.h[r] {
			from := geo.Pt(float64(c)*pw, y)
			to := geo.Pt(float64(c+1)*pw, y)
			e.h[r][c] = knobEdge(from, to, rng.Intn(2) == 0, math.Min(pw, ph)*tabPct/100)
		}
	}
	e.v = make([][]geo.Path, prm.Rows)
	for r := range e.v {
		e.v[r] = make([]geo.Path, prm.Cols-1)
		for c := range e.v[r] {
			x := float64(c+1) * pw
			from := geo.Pt(x, float64(r)*ph)
			to := geo.Pt(x, float64(r+1)*ph)
			e.v[r][c] = knobEdge(from, to, rng.Intn(2) == 0, math.Min(pw, ph)*tabPct/100)
		}
	}
	return e, nil
}

// knobEdge builds one puzzle edge from `from` to `to` with a knob of the
// given diameter bulging left (positive) or right of the travel direction.
// The profile is straight shoulders, a narrow neck, and a near-circular
// head.
func knobEdge(from, to geo.Point2D, bulgeLeft bool, knobDia float64) geo.Path {
	dir := to.Sub(from).Normalize()
	side := dir.Perp()
	if !bulgeLeft {
		side = side.Scale(-1)
	}
	length := from.Distance(to)
	neckW := knobDia * 0.4
	headR := knobDia / 2

	at := func(t, off float64) geo.Point2D {
		return from.Add(dir.Scale(t * length)).Add(side.Scale(off))
	}

	// Shoulder, neck-in, head circle, neck-out, shoulder.
	mid := 0.5
	neckHalf := neckW / 2 / length
	head := at(mid, headR+neckW*0.3)

	path := geo.Path{from, at(mid-neckHalf*2, 0), at(mid-neckHalf, neckW * 0.3)}
	// Head: arc around the knob center from the neck-in point to the
	// mirrored neck-out point, bulging away from the edge line.
	arcFrom := at(mid-neckHalf, neckW*0.3)
	arcTo := at(mid+neckHalf, neckW*0.3)
	arc := geo.TessellateArc(arcFrom, arcTo, head, bulgeLeft, 0.05)
	if len(arc) > 2 {
		path = append(path, arc[1:len(arc)-1]...)
	}
	path = append(path, arcTo, at(mid+neckHalf*2, 0), to)
	return path
}
