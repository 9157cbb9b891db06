package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

// chainTolerance is how close two endpoints must be, in mm, to count as
// connected when chaining loose LINE/ARC entities into contours.
const chainTolerance = 0.01

// segment is one line piece awaiting chaining.
type segment struct {
	start, end geo.Point2D
}

// ImportDXF converts supported DXF entities into Path shapes. LWPOLYLINE
// and CIRCLE map directly; loose LINE and ARC entities are chained by
// endpoint proximity into contours. Unsupported entities are skipped with
// a warning.
func ImportDXF(path string, ids IDSource) Result {
	result := Result{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var contours []geo.Path
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			contour := lwPolylineToPath(e)
			if len(contour) >= 2 {
				contours = append(contours, contour)
			} else {
				result.Warnings = append(result.Warnings, "skipped LWPOLYLINE with fewer than 2 vertices")
			}
		case *entity.Circle:
			center := geo.Pt(e.Center[0], e.Center[1])
			contours = append(contours, geo.TessellateCircle(center, e.Radius, 0.05))
		case *entity.Arc:
			pts := arcEntityPoints(e, 32)
			if len(pts) >= 2 {
				for i := 0; i+1 < len(pts); i++ {
					segments = append(segments, segment{pts[i], pts[i+1]})
				}
			}
		case *entity.Line:
			segments = append(segments, segment{
				start: geo.Pt(e.Start[0], e.Start[1]),
				end:   geo.Pt(e.End[0], e.End[1]),
			})
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped unsupported DXF entity %T", ent))
		}
	}

	contours = append(contours, chainSegments(segments, chainTolerance)...)

	if len(contours) == 0 {
		result.Errors = append(result.Errors, "no usable geometry found in DXF file")
		return result
	}

	for _, contour := range contours {
		b := contour.Bounds()
		if b.Width() < 0.01 && b.Height() < 0.01 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped degenerate contour (%.2f x %.2f mm)", b.Width(), b.Height()))
			continue
		}
		if contour.Area() > geo.Tolerance {
			result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: contour}}))
		} else {
			result.Shapes = append(result.Shapes, shape.NewOpenPath(ids.Next(), contour))
		}
	}
	return result
}

// lwPolylineToPath converts an LWPOLYLINE, expanding per-vertex bulge
// values into arc segments.
func lwPolylineToPath(lw *entity.LwPolyline) geo.Path {
	n := len(lw.Vertices)
	if n == 0 {
		return nil
	}
	var path geo.Path
	for i := 0; i < n; i++ {
		p1 := geo.Pt(lw.Vertices[i][0], lw.Vertices[i][1])
		path = append(path, p1)

		// A bulge arcs from this vertex to the next (wrapping to the
		// first for the closing segment).
		if i >= len(lw.Bulges) || lw.Bulges[i] == 0 {
			continue
		}
		j := (i + 1) % n
		p2 := geo.Pt(lw.Vertices[j][0], lw.Vertices[j][1])
		path = append(path, bulgeArc(p1, p2, lw.Bulges[i])...)
	}
	return path
}

// bulgeArc expands a DXF bulge (tan of a quarter of the included angle)
// into intermediate arc points, excluding both endpoints.
func bulgeArc(p1, p2 geo.Point2D, bulge float64) geo.Path {
	chord := p2.Distance(p1)
	if chord < geo.Tolerance {
		return nil
	}
	theta := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Abs(math.Sin(theta/2)))

	// Arc center sits on the chord's perpendicular bisector.
	mid := p1.Lerp(p2, 0.5)
	d := math.Sqrt(math.Max(radius*radius-chord*chord/4, 0))
	perp := p2.Sub(p1).Normalize().Perp()
	if bulge < 0 {
		d = -d
	}
	center := mid.Add(perp.Scale(d))

	start := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	steps := int(math.Ceil(math.Abs(theta) / (math.Pi / 16)))
	if steps < 1 {
		steps = 1
	}
	var out geo.Path
	for s := 1; s < steps; s++ {
		a := start + theta*float64(s)/float64(steps)
		out = append(out, geo.Pt(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a)))
	}
	return out
}

// arcEntityPoints samples a DXF ARC entity into a polyline.
func arcEntityPoints(a *entity.Arc, steps int) geo.Path {
	cx, cy, radius := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	var pts geo.Path
	for s := 0; s <= steps; s++ {
		ang := start + (end-start)*float64(s)/float64(steps)
		pts = append(pts, geo.Pt(cx+radius*math.Cos(ang), cy+radius*math.Sin(ang)))
	}
	return pts
}

// chainSegments links loose segments end-to-end by proximity, returning
// the contours formed. Open chains are returned too; the caller decides
// how to treat them.
func chainSegments(segs []segment, tolerance float64) []geo.Path {
	if len(segs) == 0 {
		return nil
	}
	used := make([]bool, len(segs))
	var out []geo.Path

	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := geo.Path{segs[i].start, segs[i].end}

		for {
			extended := false
			tail := chain[len(chain)-1]
			for j := range segs {
				if used[j] {
					continue
				}
				if tail.Distance(segs[j].start) <= tolerance {
					chain = append(chain, segs[j].end)
					used[j] = true
					extended = true
					break
				}
				if tail.Distance(segs[j].end) <= tolerance {
					chain = append(chain, segs[j].start)
					used[j] = true
					extended = true
					break
				}
			}
			if !extended {
				break
			}
		}

		// Drop the duplicated closure vertex when the chain loops back.
		if len(chain) >= 3 && chain[0].Distance(chain[len(chain)-1]) <= tolerance {
			chain = chain[:len(chain)-1]
		}
		out = append(out, chain)
	}
	return out
}
