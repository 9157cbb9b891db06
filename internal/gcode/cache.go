package gcode

import (
	"fmt"
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// DefaultIntensityBuckets is the default bucket count a RenderCache groups
// cutting segments into, by normalized laser/spindle intensity.
const DefaultIntensityBuckets = 20

// Segment is one cutting move's display-space endpoints, independent of
// which axis each originally belonged to in 3D (the render cache is a 2D
// projection for display).
type Segment struct {
	FromX, FromY, ToX, ToY float64
}

// RenderCache is the derived, display-ready projection of a GCommand
// sequence: segments bucketed by intensity, cutting bounds, and counts. It
// is rebuilt only when its invalidation hash changes, never per frame.
type RenderCache struct {
	hash       string
	buckets    [][]Segment
	bounds     geo.Rect
	cutCount   int
	rapidCount int
	cutLength  float64
	rapidLength float64
}

// BuildRenderCache derives a cache from cmds. intensityMode selects which
// field (spindle speed vs laser S-word, both modeled as the S value in
// effect: GCommand.Spindle for moves, the modal spindle speed for arcs)
// determines a segment's bucket; maxS is the normalizing ceiling for
// bucketing (commands at or above maxS land in the last bucket).
func BuildRenderCache(cmds []GCommand, buckets int, intensityMode bool, maxS float64) *RenderCache {
	if buckets <= 0 {
		buckets = DefaultIntensityBuckets
	}
	rc := &RenderCache{
		hash:    cacheHash(cmds, intensityMode, maxS),
		buckets: make([][]Segment, buckets),
		bounds:  geo.EmptyRect(),
	}
	for _, c := range cmds {
		switch c.Kind {
		case CmdMove:
			seg := Segment{FromX: c.From.X, FromY: c.From.Y, ToX: c.To.X, ToY: c.To.Y}
			length := math.Hypot(c.To.X-c.From.X, c.To.Y-c.From.Y)
			if c.Rapid {
				rc.rapidCount++
				rc.rapidLength += length
				continue
			}
			rc.cutCount++
			rc.cutLength += length
			rc.bounds = rc.bounds.Union(geo.BoundsOfPoints([]geo.Point2D{{X: c.From.X, Y: c.From.Y}, {X: c.To.X, Y: c.To.Y}}))
			bucket := intensityBucket(c.Spindle, maxS, buckets, intensityMode)
			rc.buckets[bucket] = append(rc.buckets[bucket], seg)
		case CmdArc:
			pts := TessellateArc(c, 0.2)
			rc.cutCount++
			bucket := intensityBucket(c.State.SpindleSpeed, maxS, buckets, intensityMode)
			for i := 0; i+1 < len(pts); i++ {
				a, b := pts[i], pts[i+1]
				rc.cutLength += math.Hypot(b.X-a.X, b.Y-a.Y)
				rc.bounds = rc.bounds.Union(geo.BoundsOfPoints([]geo.Point2D{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}}))
				rc.buckets[bucket] = append(rc.buckets[bucket], Segment{FromX: a.X, FromY: a.Y, ToX: b.X, ToY: b.Y})
			}
		}
	}
	return rc
}

func intensityBucket(value, maxS float64, buckets int, intensityMode bool) int {
	if !intensityMode || maxS <= 0 {
		return 0
	}
	frac := value / maxS
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	b := int(frac * float64(buckets))
	if b >= buckets {
		b = buckets - 1
	}
	return b
}

// cacheHash is the invalidation key: command count, intensity-mode flag,
// and max-S value. It deliberately
// omits program text so unrelated edits to comments never force a rebuild.
func cacheHash(cmds []GCommand, intensityMode bool, maxS float64) string {
	return fmt.Sprintf("%d|%v|%.6f", len(cmds), intensityMode, maxS)
}

// Stale reports whether the cache no longer matches the given invalidation
// inputs and must be rebuilt via BuildRenderCache.
func (rc *RenderCache) Stale(cmds []GCommand, intensityMode bool, maxS float64) bool {
	return rc.hash != cacheHash(cmds, intensityMode, maxS)
}

// Bounds returns the cutting-move bounding rect (rapids excluded).
func (rc *RenderCache) Bounds() geo.Rect { return rc.bounds }

// Counts returns (cutting move count, rapid move count).
func (rc *RenderCache) Counts() (cut, rapid int) { return rc.cutCount, rc.rapidCount }

// Lengths returns (total cut length, total rapid length) in program units.
func (rc *RenderCache) Lengths() (cut, rapid float64) { return rc.cutLength, rc.rapidLength }

// EstimatedDuration estimates run time in seconds using the active feed
// rate for cutting moves and rapidFeedMMPerMin for rapids (the machine's
// configured rapid traverse rate, since rapids don't carry their own F
// word).
func EstimatedDuration(cmds []GCommand, rapidFeedMMPerMin float64) float64 {
	var seconds float64
	for _, c := range cmds {
		switch c.Kind {
		case CmdMove:
			length := math.Hypot(c.To.X-c.From.X, c.To.Y-c.From.Y)
			if c.Rapid {
				if rapidFeedMMPerMin > 0 {
					seconds += length / rapidFeedMMPerMin * 60
				}
			} else if c.Feed > 0 {
				seconds += length / c.Feed * 60
			}
		case CmdDwell:
			seconds += c.Seconds
		}
	}
	return seconds
}

// Buckets returns the cache's per-intensity-bucket segment lists, for a
// renderer to emit one batched stroke call per bucket.
func (rc *RenderCache) Buckets() [][]Segment { return rc.buckets }
