package cam

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// BoxParams configures a finger-jointed box. Kerf is the material the tool
// removes along the joint; joint geometry is grown by half the kerf so
// fingers press-fit after cutting.
type BoxParams struct {
	Params
	Width       float64 // outer X, mm
	Depth       float64 // outer Y, mm
	Height      float64 // outer Z, mm
	Thickness   float64 // material thickness, mm
	FingerWidth float64 // target finger width; actual width rounds to an odd count per edge
	Kerf        float64 // mm, typically the tool diameter
	PanelGap    float64 // spacing between panels in the flat layout, 0 = 10mm
}

// BoxPanel is one flat panel of the box layout.
type BoxPanel struct {
	Name    string
	Outline geo.Path
}

func (bp BoxPanel) Bounds() geo.Rect { return bp.Outline.Bounds() }

// TabbedBox generates the six finger-joint panels of a closed box as flat
// toolpaths, laid out in two rows, cut with the common multipass scheme.
// Finger counts per edge are made odd (see oddFingerCount) so every
// edge starts and ends with the same element and mating edges are exact
// inverses.
func TabbedBox(prm BoxParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	panels, err := BoxPanels(prm)
	if err != nil {
		return "", err
	}

	ordered := OrderNearest(panels)

	p := NewProgram(prm.Profile, 3)
	p.Header("Tabbed box", prm.Params)
	p.Commentf("Box: %.1f x %.1f x %.1f mm, material %.1fmm, kerf %.2fmm",
		prm.Width, prm.Depth, prm.Height, prm.Thickness, prm.Kerf)

	passes := prm.depthPasses()
	for _, panel := range ordered {
		p.Commentf("--- Panel: %s ---", panel.Name)
		for pi, z := range passes {
			p.Commentf("Pass %d/%d, Z=%.2f", pi+1, len(passes), z)
			p.RapidZ(prm.SafeZ)
			p.Rapid(panel.Outline[0].X, panel.Outline[0].Y)
			enterPass(p, panel.Outline, z, prm.Params)
			cutClosedPath(p, panel.Outline, prm.Params)
			p.RapidZ(prm.SafeZ)
		}
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// BoxPanels computes the six panel outlines (kerf-compensated) in their
// flat layout without emitting any G-code, for preview and testing.
func BoxPanels(prm BoxParams) ([]BoxPanel, error) {
	const op = "cam.BoxPanels"
	if prm.Thickness <= 0 || prm.Width <= 0 || prm.Depth <= 0 || prm.Height <= 0 {
		return nil, core.New(core.KindInputValidation, op, "box dimensions and thickness must be positive", nil)
	}
	if prm.Thickness*2 >= prm.Width || prm.Thickness*2 >= prm.Depth || prm.Thickness*2 >= prm.Height {
		return nil, core.New(core.KindInputValidation, op, "material thickness too large for box size", nil)
	}
	finger := prm.FingerWidth
	if finger <= 0 {
		finger = prm.Thickness * 2
	}

	t := prm.Thickness
	// The side panels are shortened by the material thickness where they
	// meet top and bottom, so the assembled outer dimensions come out
	// exactly as requested.
	//
	// Edge roles: male edges carry fingers reaching the outline, female
	// edges carry the inverse notches. Bottom/top are male all around;
	// front/back are female top/bottom and male on their verticals;
	// left/right are female everywhere.
	bottom := panelOutline(prm.Width, prm.Depth, t, finger, [4]bool{true, true, true, true})
	top := panelOutline(prm.Width, prm.Depth, t, finger, [4]bool{true, true, true, true})
	front := panelOutline(prm.Width, prm.Height-2*t, t, finger, [4]bool{false, true, false, true})
	back := panelOutline(prm.Width, prm.Height-2*t, t, finger, [4]bool{false, true, false, true})
	left := panelOutline(prm.Depth-2*t, prm.Height-2*t, t, finger, [4]bool{false, false, false, false})
	right := panelOutline(prm.Depth-2*t, prm.Height-2*t, t, finger, [4]bool{false, false, false, false})

	panels := []BoxPanel{
		{Name: "bottom", Outline: bottom},
		{Name: "top", Outline: top},
		{Name: "front", Outline: front},
		{Name: "back", Outline: back},
		{Name: "left", Outline: left},
		{Name: "right", Outline: right},
	}

	// Kerf compensation: grow each outline by half the kerf so the cut
	// part mates snugly.
	if prm.Kerf > 0 {
		for i := range panels {
			grown := geo.Offset(panels[i].Outline.EnsureOrientation(true), prm.Kerf/2)
			if len(grown) >= 3 {
				panels[i].Outline = grown
			}
		}
	}

	// Flat layout: two rows with a configurable gap.
	gap := prm.PanelGap
	if gap <= 0 {
		gap = 10
	}
	x, y := 0.0, 0.0
	rowHeight := 0.0
	for i := range panels {
		b := panels[i].Outline.Bounds()
		if i == 3 { // second row
			x = 0
			y += rowHeight + gap
			rowHeight = 0
		}
		dx := x - b.MinX
		dy := y - b.MinY
		moved := make(geo.Path, len(panels[i].Outline))
		for j, pt := range panels[i].Outline {
			moved[j] = geo.Pt(pt.X+dx, pt.Y+dy)
		}
		panels[i].Outline = moved
		x += b.Width() + gap
		if b.Height() > rowHeight {
			rowHeight = b.Height()
		}
	}
	return panels, nil
}

// oddFingerCount rounds length/target to the nearest integer and bumps an
// even result up by one, never returning less than 3.
func oddFingerCount(length, target float64) int {
	n := int(math.Round(length / target))
	if n%2 == 0 {
		n++
	}
	if n < 3 {
		n = 3
	}
	return n
}

// panelOutline builds one rectangular panel of w x h with finger joints on
// each edge. male[i] selects the edge role, edges ordered bottom, right,
// top, left (counter-clockwise).
func panelOutline(w, h, depth, finger float64, male [4]bool) geo.Path {
	corners := [4]geo.Point2D{
		geo.Pt(0, 0), geo.Pt(w, 0), geo.Pt(w, h), geo.Pt(0, h),
	}
	var out geo.Path
	for e := 0; e < 4; e++ {
		from := corners[e]
		to := corners[(e+1)%4]
		out = append(out, fingerEdge(from, to, depth, finger, male[e])...)
	}
	return dedupeAdjacent(out)
}

// dedupeAdjacent removes consecutive duplicate vertices, including a
// duplicated closure point, left over where two edges meet at the outline.
func dedupeAdjacent(p geo.Path) geo.Path {
	if len(p) == 0 {
		return p
	}
	out := geo.Path{p[0]}
	for _, pt := range p[1:] {
		if !pt.AlmostEqual(out[len(out)-1]) {
			out = append(out, pt)
		}
	}
	if len(out) > 1 && out[0].AlmostEqual(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// fingerEdge emits the vertex run for one edge including both endpoints
// (corner duplicates are removed by the caller). The notch floor is
// recessed inward (toward the panel interior, which is left of the CCW
// travel direction).
func fingerEdge(from, to geo.Point2D, depth, finger float64, male bool) geo.Path {
	length := from.Distance(to)
	n := oddFingerCount(length, finger)
	seg := length / float64(n)
	dir := to.Sub(from).Normalize()
	inward := dir.Perp() // left of travel = panel interior for CCW outlines

	present := func(i int) bool {
		if male {
			return i%2 == 0
		}
		return i%2 == 1
	}

	var out geo.Path
	pos := from
	if !present(0) {
		pos = from.Add(inward.Scale(depth))
	}
	out = append(out, pos)
	for i := 0; i < n-1; i++ {
		edgeAt := from.Add(dir.Scale(seg * float64(i+1)))
		if present(i) == present(i+1) {
			continue
		}
		lip := edgeAt
		floor := edgeAt.Add(inward.Scale(depth))
		if present(i) {
			// finger -> notch: drop inward at the boundary
			out = append(out, lip, floor)
		} else {
			// notch -> finger: rise back to the outline
			out = append(out, floor, lip)
		}
	}
	end := to
	if !present(n - 1) {
		end = to.Add(inward.Scale(depth))
	}
	out = append(out, end)
	return out
}
