package design

// Viewport is zoom/pan state for display. Design space is Cartesian
// (y-up); a consuming renderer applies the y-flip at its own boundary, not
// here, so rotations and CSG computed against shapes stay correct.
type Viewport struct {
	ZoomPxPerMM float64
	PanX, PanY  float64
}

// DefaultViewport returns a 1:1 zoom centered at the origin.
func DefaultViewport() Viewport {
	return Viewport{ZoomPxPerMM: 1}
}
