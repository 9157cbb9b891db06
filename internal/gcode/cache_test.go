package gcode

import (
	"math"
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

func sampleCommands() []GCommand {
	return Parse(`G21
G90
G0 X0 Y0
G1 X100 Y0 F400 S500
G1 X100 Y100 F400 S1000
G0 X0 Y0`)
}

func TestRenderCacheBoundsExcludeRapids(t *testing.T) {
	cmds := Parse("G0 X500 Y500\nG0 X0 Y0\nG1 X10 Y10 F100")
	rc := BuildRenderCache(cmds, 0, false, 0)
	b := rc.Bounds()
	if b.MaxX > 10+1e-9 || b.MaxY > 10+1e-9 {
		t.Errorf("rapid moves must not contribute to cutting bounds: %+v", b)
	}
	cut, rapid := rc.Counts()
	if cut != 1 || rapid != 2 {
		t.Errorf("counts cut=%d rapid=%d, want 1 and 2", cut, rapid)
	}
}

func TestRenderCacheIntensityBuckets(t *testing.T) {
	rc := BuildRenderCache(sampleCommands(), 20, true, 1000)
	nonEmpty := 0
	for _, b := range rc.Buckets() {
		if len(b) > 0 {
			nonEmpty++
		}
	}
	// S500 and S1000 land in different buckets.
	if nonEmpty != 2 {
		t.Errorf("expected 2 populated buckets, got %d", nonEmpty)
	}
}

func TestRenderCacheInvalidation(t *testing.T) {
	cmds := sampleCommands()
	rc := BuildRenderCache(cmds, 20, true, 1000)

	if rc.Stale(cmds, true, 1000) {
		t.Error("cache must be fresh for identical inputs")
	}
	if !rc.Stale(cmds, false, 1000) {
		t.Error("intensity-mode change must invalidate")
	}
	if !rc.Stale(cmds, true, 2000) {
		t.Error("max-S change must invalidate")
	}
	if !rc.Stale(cmds[:len(cmds)-1], true, 1000) {
		t.Error("command-count change must invalidate")
	}
}

func TestEstimatedDuration(t *testing.T) {
	cmds := Parse("G1 X60 F60\nG4 P2")
	// 60mm at 60mm/min = 60 seconds, plus a 2 second dwell.
	got := EstimatedDuration(cmds, 3000)
	if math.Abs(got-62) > 1e-6 {
		t.Errorf("duration = %v, want 62", got)
	}
}

func TestBuildFrameLODTiers(t *testing.T) {
	// 100 short collinear cutting segments in one bucket.
	var cmds []GCommand
	for i := 0; i < 100; i++ {
		cmds = append(cmds, GCommand{
			Kind: CmdMove,
			From: Point3D{X: float64(i)}, To: Point3D{X: float64(i + 1)},
			Feed: 100,
		})
	}
	rc := BuildRenderCache(cmds, 1, false, 0)
	view := geo.Rect{MinX: -10, MinY: -10, MaxX: 110, MaxY: 10}

	count := func(pxPerMM float64) int {
		total := 0
		for _, batch := range BuildFrame(rc, view, pxPerMM) {
			total += len(batch.Segments)
		}
		return total
	}

	full := count(2)    // >= 1 px/mm: draw all
	half := count(0.5)  // 0.2..1: every 2nd
	quarter := count(0.1) // 0.05..0.2: every 4th

	if full != 100 {
		t.Errorf("full LOD should draw all segments, got %d", full)
	}
	if half != 50 {
		t.Errorf("tier 1 should draw every 2nd segment, got %d", half)
	}
	if quarter != 25 {
		t.Errorf("tier 2 should draw every 4th segment, got %d", quarter)
	}
	// Segment count changes monotonically with zoom.
	if !(full >= half && half >= quarter) {
		t.Error("segment count must not increase as zoom decreases")
	}

	// Below 0.05 px/mm only the bounding rectangle is drawn.
	frame := BuildFrame(rc, view, 0.01)
	if len(frame) != 1 || len(frame[0].Segments) != 1 {
		t.Errorf("lowest LOD draws a single bounds marker, got %+v", frame)
	}
}

func TestBuildFrameCullsOutsideViewport(t *testing.T) {
	cmds := []GCommand{
		{Kind: CmdMove, From: Point3D{X: 0}, To: Point3D{X: 1}, Feed: 100},
		{Kind: CmdMove, From: Point3D{X: 1000}, To: Point3D{X: 1001}, Feed: 100},
	}
	rc := BuildRenderCache(cmds, 1, false, 0)
	view := geo.Rect{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5}

	total := 0
	for _, batch := range BuildFrame(rc, view, 2) {
		total += len(batch.Segments)
	}
	if total != 1 {
		t.Errorf("far-away segment should be culled, drew %d", total)
	}
}

func TestBuildFrameOneBatchPerBucket(t *testing.T) {
	rc := BuildRenderCache(sampleCommands(), 20, true, 1000)
	view := geo.Rect{MinX: -10, MinY: -10, MaxX: 200, MaxY: 200}
	frame := BuildFrame(rc, view, 2)
	seen := map[int]bool{}
	for _, batch := range frame {
		if seen[batch.Bucket] {
			t.Errorf("bucket %d emitted twice in one frame", batch.Bucket)
		}
		seen[batch.Bucket] = true
	}
}

func TestToolMarkerDoesNotTouchCache(t *testing.T) {
	rc := BuildRenderCache(sampleCommands(), 20, true, 1000)
	var marker ToolMarker
	marker.SetCurrentPosition(12, 34, -1)
	if marker.X != 12 || marker.Y != 34 || marker.Z != -1 {
		t.Errorf("marker position: %+v", marker)
	}
	if rc.Stale(sampleCommands(), true, 1000) {
		t.Error("moving the tool marker must not invalidate the render cache")
	}
}
