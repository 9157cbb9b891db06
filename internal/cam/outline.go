package cam

import (
	"math"
	"sort"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// OutlineSide selects which side of the contour the tool runs on.
type OutlineSide int

const (
	// SideOutside offsets outward by the tool radius, for cutting parts out.
	SideOutside OutlineSide = iota
	// SideInside offsets inward, for cutting holes to size.
	SideInside
	// SideOn runs the tool center on the contour itself.
	SideOn
)

// Outline generates a contour-following program for the given closed
// regions. Each region's outer contour is offset by ±tool radius per side,
// cut in step-down passes, with holding tabs bridged in on the final pass
// and ramped entries at pass transitions when RampLength is set.
func Outline(regions []geo.Polygon, side OutlineSide, prm Params) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", core.New(core.KindInputValidation, "cam.Outline", "no regions to cut", nil)
	}

	// Offset every contour first so a collapsed offset rejects the job
	// before any G-code is emitted.
	var contours []geo.Path
	for _, region := range regions {
		dist := 0.0
		switch side {
		case SideOutside:
			dist = prm.ToolRadius()
		case SideInside:
			dist = -prm.ToolRadius()
		}
		// geo.Offset's outward sense assumes clockwise winding; normalize
		// before offsetting.
		outer := region.Outer.EnsureOrientation(true)
		if dist != 0 {
			outer = geo.Offset(outer, dist)
		}
		if len(outer) < 3 || !outer.IsClockwise() {
			return "", core.New(core.KindGeometry, "cam.Outline", "contour collapsed under tool offset", nil)
		}
		contours = append(contours, outer)
		// Holes are always cut to size from the inside; a hole too small
		// for the tool (winding flips under the inset) is skipped.
		for _, hole := range region.Holes {
			h := hole.EnsureOrientation(true)
			if side != SideOn {
				h = geo.Offset(h, -prm.ToolRadius())
			}
			if len(h) >= 3 && h.IsClockwise() {
				contours = append(contours, h)
			}
		}
	}

	contours = orderPaths(contours)

	p := NewProgram(prm.Profile, 3)
	p.Header("Outline", prm)

	passes := prm.depthPasses()
	for ci, contour := range contours {
		p.Commentf("--- Contour %d/%d ---", ci+1, len(contours))
		tabs := tabWindows(contour, prm)
		for pi, z := range passes {
			final := pi == len(passes)-1
			p.Commentf("Pass %d/%d, Z=%.2f", pi+1, len(passes), z)
			p.RapidZ(prm.SafeZ)
			p.Rapid(contour[0].X, contour[0].Y)
			enterPass(p, contour, z, prm)
			if final && len(tabs) > 0 {
				cutPathWithTabs(p, contour, z, prm, tabs)
			} else {
				cutClosedPath(p, contour, prm)
			}
			leadOut(p, contour, prm)
			p.RapidZ(prm.SafeZ)
		}
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// orderPaths applies nearest-neighbor travel ordering to contours.
func orderPaths(paths []geo.Path) []geo.Path {
	wrapped := make([]boundedPath, len(paths))
	for i, p := range paths {
		wrapped[i] = boundedPath(p)
	}
	ordered := OrderNearest(wrapped)
	out := make([]geo.Path, len(ordered))
	for i, p := range ordered {
		out[i] = geo.Path(p)
	}
	return out
}

type boundedPath geo.Path

func (b boundedPath) Bounds() geo.Rect { return geo.Path(b).Bounds() }

// enterPass brings the tool from safe Z to cutting depth z at the
// contour's start point, with an optional lead-in approach and a ramped or
// straight plunge.
func enterPass(p *Program, contour geo.Path, z float64, prm Params) {
	if prm.LeadInLength > 0 && len(contour) >= 2 {
		entry := leadPoint(contour, prm.LeadInLength, prm.LeadInAngle)
		p.Rapid(entry.X, entry.Y)
		p.FeedZ(z, prm.PlungeRate)
		p.Feed(contour[0].X, contour[0].Y, prm.FeedRate)
		return
	}
	if prm.RampLength > 0 && len(contour) >= 2 {
		// Ramp forward along the first segment while descending, then feed
		// back to the start point at depth.
		dir := contour[1].Sub(contour[0]).Normalize()
		run := math.Min(prm.RampLength, contour[1].Distance(contour[0]))
		end := contour[0].Add(dir.Scale(run))
		p.Comment("Ramp entry")
		p.Feed3(end.X, end.Y, z, prm.PlungeRate)
		p.Feed(contour[0].X, contour[0].Y, prm.FeedRate)
		return
	}
	p.FeedZ(z, prm.PlungeRate)
}

// leadOut retracts through a lead-out segment when configured, avoiding a
// dwell mark at the closure point.
func leadOut(p *Program, contour geo.Path, prm Params) {
	if prm.LeadOutLength <= 0 || len(contour) < 2 {
		return
	}
	exit := leadPoint(contour, prm.LeadOutLength, -prm.LeadInAngle)
	p.Feed(exit.X, exit.Y, prm.FeedRate)
}

// leadPoint computes the lead endpoint: offset from the contour start,
// rotated away from the first segment's tangent by angle degrees.
func leadPoint(contour geo.Path, length, angleDeg float64) geo.Point2D {
	tangent := contour[1].Sub(contour[0]).Normalize()
	away := tangent.Scale(-length)
	return geo.RotatePoint(contour[0].Add(away), contour[0], angleDeg)
}

// cutClosedPath feeds around the contour and closes it back to the start.
func cutClosedPath(p *Program, contour geo.Path, prm Params) {
	for i := 1; i < len(contour); i++ {
		p.Feed(contour[i].X, contour[i].Y, prm.FeedRate)
	}
	p.Feed(contour[0].X, contour[0].Y, prm.FeedRate)
}

// tabWindow is one bridge segment on a contour, as a [start, end) span of
// perimeter distance.
type tabWindow struct {
	start, end float64
}

// tabWindows distributes the configured number of holding tabs evenly
// around the contour's perimeter. Returns nil when tabs are disabled or
// the contour is too short to hold them.
func tabWindows(contour geo.Path, prm Params) []tabWindow {
	if prm.TabsPerSegment <= 0 || prm.TabWidth <= 0 || prm.TabHeight <= 0 {
		return nil
	}
	perimeter := pathPerimeter(contour)
	if perimeter < prm.TabWidth*float64(prm.TabsPerSegment)*2 {
		return nil
	}
	spacing := perimeter / float64(prm.TabsPerSegment)
	tabs := make([]tabWindow, 0, prm.TabsPerSegment)
	for i := 0; i < prm.TabsPerSegment; i++ {
		center := spacing*float64(i) + spacing/2
		tabs = append(tabs, tabWindow{start: center - prm.TabWidth/2, end: center + prm.TabWidth/2})
	}
	return tabs
}

func pathPerimeter(contour geo.Path) float64 {
	total := 0.0
	for i := 0; i < len(contour); i++ {
		total += contour[i].Distance(contour[(i+1)%len(contour)])
	}
	return total
}

// cutPathWithTabs walks the closed contour at depth z, rising to the tab
// height over each tab window and plunging back after it. The walk is by
// perimeter distance so tabs land correctly even when a window spans a
// vertex.
func cutPathWithTabs(p *Program, contour geo.Path, z float64, prm Params, tabs []tabWindow) {
	tabZ := z + prm.TabHeight
	if tabZ > 0 {
		tabZ = 0
	}

	// Event positions: every vertex plus every tab boundary, in perimeter
	// order.
	perimeter := pathPerimeter(contour)
	events := []float64{}
	acc := 0.0
	for i := 0; i < len(contour); i++ {
		acc += contour[i].Distance(contour[(i+1)%len(contour)])
		events = append(events, acc)
	}
	for _, t := range tabs {
		events = append(events, t.start, t.end)
	}
	sort.Float64s(events)

	prev := 0.0
	for _, e := range events {
		if e <= prev+1e-9 || e > perimeter+1e-9 {
			continue
		}
		mid := (prev + e) / 2
		pt := pointAtPerimeter(contour, e)
		if insideTab(tabs, mid) {
			p.FeedZ(tabZ, prm.FeedRate)
			p.Feed(pt.X, pt.Y, prm.FeedRate)
			p.FeedZ(z, prm.PlungeRate)
		} else {
			p.Feed(pt.X, pt.Y, prm.FeedRate)
		}
		prev = e
	}
}

func insideTab(tabs []tabWindow, pos float64) bool {
	for _, t := range tabs {
		if pos >= t.start && pos < t.end {
			return true
		}
	}
	return false
}

// pointAtPerimeter returns the point at the given perimeter distance along
// the (implicitly closed) contour.
func pointAtPerimeter(contour geo.Path, dist float64) geo.Point2D {
	n := len(contour)
	for i := 0; i < n; i++ {
		a := contour[i]
		b := contour[(i+1)%n]
		seg := a.Distance(b)
		if dist <= seg+1e-9 {
			if seg < 1e-12 {
				return a
			}
			return a.Lerp(b, dist/seg)
		}
		dist -= seg
	}
	return contour[0]
}
