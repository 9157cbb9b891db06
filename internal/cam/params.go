// Package cam turns shapes, raster images, and gerber boards into G-code
// programs. Every generator is a pure function of (input, parameters): the
// same inputs always produce byte-identical output, so programs can be
// diffed, cached, and regression-tested.
package cam

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Params is the common operation parameter block shared by the cutting
// generators. Depths are negative (below stock top), SafeZ positive.
type Params struct {
	ToolDiameter float64 // mm
	CutDepth     float64 // mm, negative
	SafeZ        float64 // mm, positive
	FeedRate     float64 // mm/min
	PlungeRate   float64 // mm/min
	SpindleSpeed float64 // rpm, or S value in laser mode

	StepDown    float64 // mm removed per depth pass
	StepOverPct float64 // lateral step as percentage of tool diameter

	LeadInLength  float64 // mm, 0 disables
	LeadInAngle   float64 // degrees from the path tangent
	LeadOutLength float64 // mm, 0 disables
	RampLength    float64 // mm, 0 plunges straight down at pass transitions

	TabsPerSegment int     // holding tabs per closed contour
	TabWidth       float64 // mm
	TabHeight      float64 // mm above the final cut depth

	Profile string // post-processor profile name, "" = Grbl
}

// Validate rejects parameter combinations no generator can honor. It is
// called by every generator before emitting anything, so a bad block never
// produces a half-written program.
func (p Params) Validate() error {
	const op = "cam.Params.Validate"
	if p.ToolDiameter <= 0 {
		return core.New(core.KindInputValidation, op, "tool diameter must be positive", nil)
	}
	if p.CutDepth >= 0 {
		return core.New(core.KindInputValidation, op, "cut depth must be negative", nil)
	}
	if p.SafeZ <= 0 {
		return core.New(core.KindInputValidation, op, "safe Z must be positive", nil)
	}
	if p.FeedRate <= 0 || p.PlungeRate <= 0 {
		return core.New(core.KindInputValidation, op, "feed and plunge rates must be positive", nil)
	}
	if p.StepDown < 0 || p.StepOverPct < 0 || p.StepOverPct > 100 {
		return core.New(core.KindInputValidation, op, "step-down must be >= 0 and step-over within 0..100%", nil)
	}
	if p.TabsPerSegment < 0 || p.TabWidth < 0 || p.TabHeight < 0 {
		return core.New(core.KindInputValidation, op, "tab parameters must be non-negative", nil)
	}
	return nil
}

// ToolRadius returns half the tool diameter.
func (p Params) ToolRadius() float64 { return p.ToolDiameter / 2 }

// StepOver returns the lateral step in mm.
func (p Params) StepOver() float64 {
	pct := p.StepOverPct
	if pct <= 0 {
		pct = 40
	}
	return p.ToolDiameter * pct / 100
}

// depthPasses returns the Z level of each pass, top-down, ending exactly at
// CutDepth. A zero step-down yields a single full-depth pass.
func (p Params) depthPasses() []float64 {
	target := -p.CutDepth
	step := p.StepDown
	if step <= 0 || step >= target {
		return []float64{p.CutDepth}
	}
	n := int(math.Ceil(target / step))
	passes := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		z := -float64(i) * step
		if z < p.CutDepth {
			z = p.CutDepth
		}
		passes = append(passes, z)
	}
	return passes
}
