package cam

import (
	"strings"
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/gcode"
	"github.com/gcodekit5/gcodekit5/internal/gerber"
)

const testBoard = `%FSLAX25Y25*%
%MOMM*%
%ADD10C,0.8*%
D10*
X0Y0D02*
X1500000Y0D01*
X2000000Y500000D03*
M02*
`

func parseBoard(t *testing.T) *gerber.Board {
	t.Helper()
	board, err := gerber.Parse(strings.NewReader(testBoard))
	if err != nil {
		t.Fatal(err)
	}
	return board
}

func isoParams() IsolationParams {
	prm := IsolationParams{Params: testParams(), IsolationWidth: 0.2}
	prm.ToolDiameter = 0.8
	prm.CutDepth = -0.1
	prm.StepDown = 0
	return prm
}

func TestIsolationTracesCopper(t *testing.T) {
	prog, err := Isolation(parseBoard(t), isoParams())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prog, "Isolation trace") {
		t.Error("no isolation traces emitted")
	}
	// The perimeter sits outside the copper: cutting bounds exceed the
	// copper extent (trace from 0..15mm plus pad at 20mm) by the
	// clearance.
	rc := gcode.BuildRenderCache(gcode.Parse(prog), 1, false, 0)
	b := rc.Bounds()
	if b.MaxX <= 20 {
		t.Errorf("isolation path should clear the pad at x=20, bounds %+v", b)
	}
	if b.Width() < 15 {
		t.Errorf("isolation should span the full trace, bounds %+v", b)
	}
}

func TestIsolationAlignmentHoles(t *testing.T) {
	prm := isoParams()
	prm.AlignmentHoles = true
	prm.HoleMargin = 5
	prog, err := Isolation(parseBoard(t), prm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prog, "Alignment holes") {
		t.Error("alignment holes requested but not emitted")
	}
}

func TestIsolationRejectsEmptyBoard(t *testing.T) {
	board := &gerber.Board{Apertures: map[int]gerber.Aperture{}}
	if _, err := Isolation(board, isoParams()); err == nil {
		t.Error("expected error for a board with no copper")
	}
}

func TestIsolationDeterministic(t *testing.T) {
	a, err := Isolation(parseBoard(t), isoParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Isolation(parseBoard(t), isoParams())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("identical boards must produce identical programs")
	}
}
