package cam

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// SurfaceParams configures spoilboard surfacing: a serpentine raster over
// the full rectangle at the configured step-over, one pass per step-down
// level.
type SurfaceParams struct {
	Params
	Width, Height float64
}

// Surface generates the spoilboard flattening program.
func Surface(prm SurfaceParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if prm.Width <= 0 || prm.Height <= 0 {
		return "", core.New(core.KindInputValidation, "cam.Surface", "surface dimensions must be positive", nil)
	}

	// Overhang by the tool radius on every side so the edges come out
	// fully machined.
	r := prm.ToolRadius()
	rect := geo.Path{
		geo.Pt(-r, -r), geo.Pt(prm.Width+r, -r), geo.Pt(prm.Width+r, prm.Height+r), geo.Pt(-r, prm.Height+r),
	}
	rows := rasterRows(rect, 0, prm.StepOver(), true)

	p := NewProgram(prm.Profile, 3)
	p.Header("Spoilboard surfacing", prm.Params)
	p.Commentf("Area: %.0f x %.0f mm, step-over %.1fmm", prm.Width, prm.Height, prm.StepOver())

	for pi, z := range prm.depthPasses() {
		p.Commentf("Pass %d, Z=%.2f", pi+1, z)
		if len(rows) == 0 {
			break
		}
		first := rows[0]
		p.RapidZ(prm.SafeZ)
		p.Rapid(first[0].X, first[0].Y)
		p.FeedZ(z, prm.PlungeRate)
		// Serpentine: feed across each row and sideways to the next, never
		// lifting inside a pass.
		for _, row := range rows {
			p.Feed(row[0].X, row[0].Y, prm.FeedRate)
			p.Feed(row[1].X, row[1].Y, prm.FeedRate)
		}
		p.RapidZ(prm.SafeZ)
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// GridParams configures a spoilboard hole grid at a fixed pitch, inset
// from the edges by Margin.
type GridParams struct {
	DrillParams
	Width, Height float64
	Pitch         float64
	Margin        float64
}

// Grid generates the hole-grid drilling program.
func Grid(prm GridParams) (string, error) {
	if prm.Pitch <= 0 {
		return "", core.New(core.KindInputValidation, "cam.Grid", "pitch must be positive", nil)
	}
	if prm.Width <= 0 || prm.Height <= 0 {
		return "", core.New(core.KindInputValidation, "cam.Grid", "grid dimensions must be positive", nil)
	}

	var centers []geo.Point2D
	for y := prm.Margin; y <= prm.Height-prm.Margin+geo.Tolerance; y += prm.Pitch {
		for x := prm.Margin; x <= prm.Width-prm.Margin+geo.Tolerance; x += prm.Pitch {
			centers = append(centers, geo.Pt(x, y))
		}
	}
	if len(centers) == 0 {
		return "", core.New(core.KindInputValidation, "cam.Grid", "margin leaves no room for holes", nil)
	}
	return Drill(centers, prm.DrillParams)
}
