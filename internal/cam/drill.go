package cam

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// DrillParams extends the common block with an optional bottom dwell.
type DrillParams struct {
	Params
	DwellSeconds float64 // pause at depth, 0 disables
	PeckDepth    float64 // mm per peck, 0 drills in one plunge
}

// Drill generates a drilling program for the given hole centers. Each hole
// is: rapid to safe Z, rapid to XY, feed to depth (pecking when
// configured), optional dwell, rapid back to safe Z. Holes are visited in
// nearest-neighbor order.
func Drill(centers []geo.Point2D, prm DrillParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if len(centers) == 0 {
		return "", core.New(core.KindInputValidation, "cam.Drill", "no holes to drill", nil)
	}

	ordered := orderPoints(centers)

	p := NewProgram(prm.Profile, 3)
	p.Header("Drill", prm.Params)

	for i, c := range ordered {
		p.Commentf("Hole %d/%d at (%.2f, %.2f)", i+1, len(ordered), c.X, c.Y)
		p.RapidZ(prm.SafeZ)
		p.Rapid(c.X, c.Y)
		if prm.PeckDepth > 0 {
			z := 0.0
			for z > prm.CutDepth {
				z -= prm.PeckDepth
				if z < prm.CutDepth {
					z = prm.CutDepth
				}
				p.FeedZ(z, prm.PlungeRate)
				if z > prm.CutDepth {
					p.RapidZ(prm.SafeZ)
					p.RapidZ(z + prm.PeckDepth*0.5)
				}
			}
		} else {
			p.FeedZ(prm.CutDepth, prm.PlungeRate)
		}
		if prm.DwellSeconds > 0 {
			p.Dwell(prm.DwellSeconds)
		}
		p.RapidZ(prm.SafeZ)
	}

	p.Footer(prm.SafeZ)
	return p.String(), nil
}

// orderPoints is nearest-neighbor ordering for bare points, starting from
// the origin.
func orderPoints(pts []geo.Point2D) []geo.Point2D {
	if len(pts) <= 1 {
		return pts
	}
	remaining := append([]geo.Point2D(nil), pts...)
	ordered := make([]geo.Point2D, 0, len(pts))
	cur := geo.Pt(0, 0)
	for len(remaining) > 0 {
		best := 0
		bestDist := remaining[0].Distance(cur)
		for i := 1; i < len(remaining); i++ {
			if d := remaining[i].Distance(cur); d < bestDist {
				bestDist = d
				best = i
			}
		}
		cur = remaining[best]
		ordered = append(ordered, cur)
		remaining[best] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return ordered
}
