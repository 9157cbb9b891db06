package cam

import (
	"math"
	"sort"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// PocketStrategy selects the fill pattern for pocketing.
type PocketStrategy int

const (
	// OffsetSpiral clears the pocket with successive inward contour
	// offsets, innermost first.
	OffsetSpiral PocketStrategy = iota
	// Zigzag fills with serpentine rows, reversing direction each row.
	Zigzag
	// Raster fills with parallel rows at a configurable angle; the
	// Bidirectional flag picks serpentine vs one-way rows.
	Raster
)

// PocketParams extends the common block with pocket-specific knobs.
type PocketParams struct {
	Params
	Strategy      PocketStrategy
	RasterAngle   float64 // degrees, Raster strategy only
	Bidirectional bool    // Raster strategy: serpentine when true
}

// Pocket generates a clearing program for the interior of each region. The
// boundary is first pulled in by the tool radius; what remains is filled
// per the selected strategy, in step-down depth passes.
func Pocket(regions []geo.Polygon, prm PocketParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", core.New(core.KindInputValidation, "cam.Pocket", "no regions to pocket", nil)
	}

	p := NewProgram(prm.Profile, 3)
	p.Header("Pocket", prm.Params)

	passes := prm.depthPasses()
	for ri, region := range regions {
		boundary := geo.Offset(region.Outer.EnsureOrientation(true), -prm.ToolRadius())
		// An over-inset offset inverts instead of vanishing; a winding flip
		// is the collapse signal.
		if len(boundary) < 3 || !boundary.IsClockwise() {
			return "", core.New(core.KindGeometry, "cam.Pocket", "region too small for tool", nil)
		}

		var rows [][]geo.Point2D
		var rings []geo.Path
		switch prm.Strategy {
		case OffsetSpiral:
			rings = geo.OffsetInwardSteps(boundary, prm.StepOver(), 10000)
			if len(rings) == 0 {
				return "", core.New(core.KindGeometry, "cam.Pocket", "offset spiral produced no rings", nil)
			}
		case Zigzag:
			rows = rasterRows(boundary, 0, prm.StepOver(), true)
		case Raster:
			rows = rasterRows(boundary, prm.RasterAngle, prm.StepOver(), prm.Bidirectional)
		}

		p.Commentf("--- Pocket %d/%d ---", ri+1, len(regions))
		for pi, z := range passes {
			p.Commentf("Pass %d/%d, Z=%.2f", pi+1, len(passes), z)
			switch prm.Strategy {
			case OffsetSpiral:
				// Innermost ring first so the tool always has cleared
				// material behind it.
				for i := len(rings) - 1; i >= 0; i-- {
					ring := rings[i]
					p.RapidZ(prm.SafeZ)
					p.Rapid(ring[0].X, ring[0].Y)
					enterPass(p, ring, z, prm.Params)
					cutClosedPath(p, ring, prm.Params)
				}
				// Finish with a boundary pass at this depth.
				p.RapidZ(prm.SafeZ)
				p.Rapid(boundary[0].X, boundary[0].Y)
				enterPass(p, boundary, z, prm.Params)
				cutClosedPath(p, boundary, prm.Params)
			default:
				cutRows(p, rows, z, prm)
				// Perimeter finishing pass.
				p.RapidZ(prm.SafeZ)
				p.Rapid(boundary[0].X, boundary[0].Y)
				enterPass(p, boundary, z, prm.Params)
				cutClosedPath(p, boundary, prm.Params)
			}
			p.RapidZ(prm.SafeZ)
		}
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// cutRows emits the fill rows at depth z. Every row retracts to safe Z,
// rapids to the row's start and plunges, in serpentine and one-way mode
// alike; serpentine only changes which end each row starts from.
func cutRows(p *Program, rows [][]geo.Point2D, z float64, prm PocketParams) {
	for _, row := range rows {
		if len(row) != 2 {
			continue
		}
		p.RapidZ(prm.SafeZ)
		p.Rapid(row[0].X, row[0].Y)
		p.FeedZ(z, prm.PlungeRate)
		p.Feed(row[1].X, row[1].Y, prm.FeedRate)
	}
}

// rasterRows computes the fill rows for a polygon: parallel spans at the
// given angle, spaced by stepover, clipped to the polygon interior. When
// serpentine is true alternate rows are reversed so consecutive rows start
// where the previous one ended.
func rasterRows(boundary geo.Path, angleDeg, stepover float64, serpentine bool) [][]geo.Point2D {
	// Rotate the polygon so rows become horizontal, scan, rotate spans back.
	origin := boundary.Bounds().Center()
	rotated := make(geo.Path, len(boundary))
	for i, pt := range boundary {
		rotated[i] = geo.RotatePoint(pt, origin, -angleDeg)
	}
	b := rotated.Bounds()

	var rows [][]geo.Point2D
	flip := false
	for y := b.MinY + stepover/2; y < b.MaxY; y += stepover {
		xs := rowCrossings(rotated, y)
		for i := 0; i+1 < len(xs); i += 2 {
			span := []geo.Point2D{{X: xs[i], Y: y}, {X: xs[i+1], Y: y}}
			if serpentine && flip {
				span[0], span[1] = span[1], span[0]
			}
			span[0] = geo.RotatePoint(span[0], origin, angleDeg)
			span[1] = geo.RotatePoint(span[1], origin, angleDeg)
			rows = append(rows, span)
		}
		flip = !flip
	}
	return rows
}

// rowCrossings returns the sorted x coordinates where the horizontal line
// at y crosses the (implicitly closed) polygon edge.
func rowCrossings(poly geo.Path, y float64) []float64 {
	var xs []float64
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
			t := (y - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	sort.Float64s(xs)
	return xs
}

// PocketArea estimates the cleared area of a region's interior after the
// tool-radius inset, for job summaries.
func PocketArea(region geo.Polygon, toolDiameter float64) float64 {
	inset := geo.Offset(region.Outer.EnsureOrientation(true), -toolDiameter/2)
	if len(inset) < 3 {
		return 0
	}
	area := inset.Area()
	for _, h := range region.Holes {
		area -= h.Area()
	}
	return math.Max(area, 0)
}
