package gcode

import "github.com/gcodekit5/gcodekit5/internal/geo"

// lodMargin is the fraction of the viewport's own size added as a margin
// before culling, so a segment whose stroke is a few pixels wide right at
// the viewport edge doesn't pop in/out as it crosses the exact boundary.
const lodMargin = 0.10

// StrokeBatch is one intensity bucket's worth of segments to draw in a
// single stroke call.
type StrokeBatch struct {
	Bucket   int
	Segments []Segment
}

// BuildFrame computes the batched strokes to draw for viewport at the
// given zoom (pixels per mm), culling segments outside viewport (expanded
// by a 10% margin) and thinning per the LOD tiers. It never emits more than
// one batch per non-empty bucket, matching the "one stroke call per bucket
// per frame" requirement.
func BuildFrame(rc *RenderCache, viewport geo.Rect, pxPerMM float64) []StrokeBatch {
	if pxPerMM < 0.05 {
		return []StrokeBatch{{Bucket: -1, Segments: []Segment{boundsOnlySegment(rc.Bounds())}}}
	}

	stride := lodStride(pxPerMM)
	margin := viewport.Width()*lodMargin + viewport.Height()*lodMargin
	region := viewport.ExpandedBy(margin)

	var frame []StrokeBatch
	for bucket, segs := range rc.buckets {
		var kept []Segment
		for idx, seg := range segs {
			if stride > 1 && idx%stride != 0 {
				continue
			}
			if !segmentIntersects(seg, region) {
				continue
			}
			kept = append(kept, seg)
		}
		if len(kept) > 0 {
			frame = append(frame, StrokeBatch{Bucket: bucket, Segments: kept})
		}
	}
	return frame
}

// lodStride returns 1 to draw every segment, 2 to draw every other, 4 to
// draw every fourth, by pixels-per-mm tier.
func lodStride(pxPerMM float64) int {
	switch {
	case pxPerMM >= 1:
		return 1
	case pxPerMM >= 0.2:
		return 2
	default:
		return 4
	}
}

func segmentIntersects(seg Segment, region geo.Rect) bool {
	segBounds := geo.BoundsOfPoints([]geo.Point2D{{X: seg.FromX, Y: seg.FromY}, {X: seg.ToX, Y: seg.ToY}})
	return segBounds.Intersects(region)
}

func boundsOnlySegment(b geo.Rect) Segment {
	return Segment{FromX: b.MinX, FromY: b.MinY, ToX: b.MaxX, ToY: b.MaxY}
}

// ToolMarker tracks the live tool position for display between cache
// rebuilds. SetCurrentPosition is deliberately a fast path: it never
// touches RenderCache, so moving the marker during a running job
// never forces a toolpath re-render.
type ToolMarker struct {
	X, Y, Z float64
}

func (m *ToolMarker) SetCurrentPosition(x, y, z float64) {
	m.X, m.Y, m.Z = x, y, z
}
