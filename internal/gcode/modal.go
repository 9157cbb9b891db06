package gcode

// Plane selects which two axes an arc (G2/G3) interpolates in.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

// MotionMode is the active modal motion group (G0/G1/G2/G3), sticky across
// lines until a new motion word appears.
type MotionMode int

const (
	MotionRapid MotionMode = iota
	MotionFeed
	MotionCWArc
	MotionCCWArc
)

// Units selects the unit system a program's numbers are expressed in.
type Units int

const (
	UnitsMM Units = iota
	UnitsInch
)

// DistanceMode selects whether words are absolute endpoints (G90) or
// increments relative to the current position (G91).
type DistanceMode int

const (
	DistanceAbsolute DistanceMode = iota
	DistanceIncremental
)

// ModalState is a plain record threaded through Parse's fold, not global
// mutable state: every GCommand snapshots the portion of it relevant to the
// command so a consumer never needs to re-run the state machine to know a
// command's absolute endpoints or active feed rate.
type ModalState struct {
	X, Y, Z      float64
	WCS          int // 54..59
	Motion       MotionMode
	Plane        Plane
	Units        Units
	Distance     DistanceMode
	FeedRate     float64
	SpindleSpeed float64
	SpindleOn    bool
	LineNumber   int
}

// initialModalState is the modal state a program starts in absent any
// words overriding it: G54, G17 (XY), G21 (mm), G90 (absolute), motion G0.
func initialModalState() ModalState {
	return ModalState{WCS: 54, Motion: MotionRapid, Plane: PlaneXY, Units: UnitsMM, Distance: DistanceAbsolute}
}

// resolveAxis returns the new absolute value of an axis given a parsed word
// value, honoring the active distance mode.
func resolveAxis(current, wordVal float64, hasWord bool, mode DistanceMode) float64 {
	if !hasWord {
		return current
	}
	if mode == DistanceIncremental {
		return current + wordVal
	}
	return wordVal
}
