package cam

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/gerber"
)

// IsolationParams configures PCB isolation routing from a gerber board.
type IsolationParams struct {
	Params
	IsolationWidth float64 // extra clearance beyond the tool radius, mm
	Rubout         bool    // also clear all non-copper area
	AlignmentHoles bool    // drill fixture holes outside the board corners
	HoleMargin     float64 // alignment hole distance from board bounds, mm
}

// Isolation generates isolation toolpaths for a parsed gerber board: the
// copper image is unioned into solid regions, each region's perimeter is
// traced at tool radius + isolation width, and optionally the remaining
// non-copper field is cleared (rubout) and alignment holes drilled at the
// margins.
func Isolation(board *gerber.Board, prm IsolationParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if prm.IsolationWidth < 0 {
		return "", core.New(core.KindInputValidation, "cam.Isolation", "isolation width must be non-negative", nil)
	}

	copper := board.CopperPolygons(0.05)
	if len(copper) == 0 {
		return "", core.New(core.KindInputValidation, "cam.Isolation", "board has no copper", nil)
	}
	united := unionAll(copper)
	if len(united) == 0 {
		return "", core.New(core.KindGeometry, "cam.Isolation", "copper union produced no regions", nil)
	}

	clearance := prm.ToolRadius() + prm.IsolationWidth

	p := NewProgram(prm.Profile, 3)
	p.Header("Gerber isolation", prm.Params)
	p.Commentf("Copper regions: %d, clearance: %.3fmm", len(united), clearance)

	// Isolation perimeter per copper region.
	var perims []geo.Path
	for _, region := range united {
		perim := geo.Offset(region.Outer.EnsureOrientation(true), clearance)
		if len(perim) >= 3 {
			perims = append(perims, perim)
		}
		for _, hole := range region.Holes {
			inner := geo.Offset(hole.EnsureOrientation(true), -clearance)
			if len(inner) >= 3 {
				perims = append(perims, inner)
			}
		}
	}
	if len(perims) == 0 {
		return "", core.New(core.KindGeometry, "cam.Isolation", "all isolation perimeters collapsed", nil)
	}
	perims = orderPaths(perims)

	for i, perim := range perims {
		p.Commentf("--- Isolation trace %d/%d ---", i+1, len(perims))
		p.RapidZ(prm.SafeZ)
		p.Rapid(perim[0].X, perim[0].Y)
		p.FeedZ(prm.CutDepth, prm.PlungeRate)
		cutClosedPath(p, perim, prm.Params)
		p.RapidZ(prm.SafeZ)
	}

	if prm.Rubout {
		emitRubout(p, united, prm)
	}

	if prm.AlignmentHoles {
		emitAlignmentHoles(p, united, prm)
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// unionAll folds the copper polygons into a disjoint region set.
func unionAll(polys []geo.Polygon) []geo.Polygon {
	if len(polys) == 0 {
		return nil
	}
	acc := []geo.Polygon{polys[0]}
	for _, p := range polys[1:] {
		acc = geo.Boolean(geo.OpUnion, acc, []geo.Polygon{p})
	}
	return acc
}

// emitRubout clears the non-copper field: board bounds (grown by the tool
// diameter) minus the copper regions grown by the isolation clearance,
// raster-filled at the configured step-over.
func emitRubout(p *Program, copper []geo.Polygon, prm IsolationParams) {
	bounds := geo.EmptyRect()
	for _, region := range copper {
		bounds = bounds.Union(region.Outer.Bounds())
	}
	bounds = bounds.ExpandedBy(prm.ToolDiameter)

	field := []geo.Polygon{{Outer: geo.Path{
		{X: bounds.MinX, Y: bounds.MinY},
		{X: bounds.MaxX, Y: bounds.MinY},
		{X: bounds.MaxX, Y: bounds.MaxY},
		{X: bounds.MinX, Y: bounds.MaxY},
	}}}

	var grown []geo.Polygon
	clearance := prm.ToolRadius() + prm.IsolationWidth
	for _, region := range copper {
		outer := geo.Offset(region.Outer.EnsureOrientation(true), clearance)
		if len(outer) >= 3 {
			grown = append(grown, geo.Polygon{Outer: outer})
		}
	}
	rubout := geo.Boolean(geo.OpDifference, field, grown)

	p.Comment("--- Rubout fill ---")
	for _, region := range rubout {
		inset := geo.Offset(region.Outer.EnsureOrientation(true), -prm.ToolRadius())
		if len(inset) < 3 {
			continue
		}
		rows := rasterRows(inset, 0, prm.StepOver(), true)
		for _, row := range rows {
			if len(row) != 2 {
				continue
			}
			p.RapidZ(prm.SafeZ)
			p.Rapid(row[0].X, row[0].Y)
			p.FeedZ(prm.CutDepth, prm.PlungeRate)
			p.Feed(row[1].X, row[1].Y, prm.FeedRate)
		}
	}
	p.RapidZ(prm.SafeZ)
}

// emitAlignmentHoles drills one fixture hole outside each corner of the
// board bounds at the configured margin.
func emitAlignmentHoles(p *Program, copper []geo.Polygon, prm IsolationParams) {
	bounds := geo.EmptyRect()
	for _, region := range copper {
		bounds = bounds.Union(region.Outer.Bounds())
	}
	m := prm.HoleMargin
	if m <= 0 {
		m = 5
	}
	holes := []geo.Point2D{
		{X: bounds.MinX - m, Y: bounds.MinY - m},
		{X: bounds.MaxX + m, Y: bounds.MinY - m},
		{X: bounds.MaxX + m, Y: bounds.MaxY + m},
		{X: bounds.MinX - m, Y: bounds.MaxY + m},
	}
	p.Comment("--- Alignment holes ---")
	for _, h := range holes {
		p.RapidZ(prm.SafeZ)
		p.Rapid(h.X, h.Y)
		p.FeedZ(prm.CutDepth, prm.PlungeRate)
		p.RapidZ(prm.SafeZ)
	}
}
