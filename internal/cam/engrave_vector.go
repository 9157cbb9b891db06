package cam

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// VectorParams configures vector engraving of imported SVG/DXF paths.
type VectorParams struct {
	Params
	LaserPower float64 // S value while tracing, 0 uses SpindleSpeed
}

// EngraveVector traces each path once at engraving depth, in
// nearest-neighbor travel order. Closed paths are closed back to their
// start; open paths are traced end to end. Each trace retracts to safe Z,
// rapids to its start and plunges to the engraving depth. With LaserPower
// set, the cutting moves carry an S word.
func EngraveVector(paths []geo.Path, prm VectorParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	var usable []geo.Path
	for _, path := range paths {
		if len(path) >= 2 {
			usable = append(usable, path)
		}
	}
	if len(usable) == 0 {
		return "", core.New(core.KindInputValidation, "cam.EngraveVector", "no paths with at least two points", nil)
	}

	usable = orderPaths(usable)
	power := prm.LaserPower
	if power <= 0 {
		power = prm.SpindleSpeed
	}

	p := NewProgram(prm.Profile, 3)
	p.Header("Vector engrave", prm.Params)

	for i, path := range usable {
		p.Commentf("--- Trace %d/%d ---", i+1, len(usable))
		p.RapidZ(prm.SafeZ)
		p.Rapid(path[0].X, path[0].Y)
		p.FeedZ(prm.CutDepth, prm.PlungeRate)
		for j := 1; j < len(path); j++ {
			if prm.LaserPower > 0 {
				p.FeedS(path[j].X, path[j].Y, prm.FeedRate, power)
			} else {
				p.Feed(path[j].X, path[j].Y, prm.FeedRate)
			}
		}
		if isClosed(path) {
			if prm.LaserPower > 0 {
				p.FeedS(path[0].X, path[0].Y, prm.FeedRate, power)
			} else {
				p.Feed(path[0].X, path[0].Y, prm.FeedRate)
			}
		}
	}

	p.RapidZ(prm.SafeZ)
	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// isClosed reports whether a path's winding encloses area, which is how an
// imported contour distinguishes itself from an open stroke.
func isClosed(path geo.Path) bool {
	return len(path) >= 3 && path.Area() > geo.Tolerance
}
