package cam

import (
	"math"
	"strings"
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/gcode"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

func TestDrillCycle(t *testing.T) {
	prm := DrillParams{Params: testParams(), DwellSeconds: 0.5}
	prog, err := Drill([]geo.Point2D{geo.Pt(10, 20), geo.Pt(50, 20)}, prm)
	if err != nil {
		t.Fatal(err)
	}
	cmds := gcode.Parse(prog)

	plunges := 0
	dwells := 0
	for _, c := range cmds {
		if c.Kind == gcode.CmdMove && !c.Rapid && math.Abs(c.To.Z-prm.CutDepth) < 1e-9 {
			plunges++
		}
		if c.Kind == gcode.CmdDwell {
			dwells++
			if math.Abs(c.Seconds-0.5) > 1e-9 {
				t.Errorf("dwell %v, want 0.5", c.Seconds)
			}
		}
	}
	if plunges != 2 {
		t.Errorf("expected 2 plunges to depth, got %d", plunges)
	}
	if dwells != 2 {
		t.Errorf("expected 2 dwells, got %d", dwells)
	}
}

func TestDrillVisitsNearestFirst(t *testing.T) {
	prog, err := Drill([]geo.Point2D{geo.Pt(300, 300), geo.Pt(5, 5)}, DrillParams{Params: testParams()})
	if err != nil {
		t.Fatal(err)
	}
	first := strings.Index(prog, "X5.000 Y5.000")
	second := strings.Index(prog, "X300.000 Y300.000")
	if first < 0 || second < 0 || first > second {
		t.Error("holes should be visited nearest-to-origin first")
	}
}

func TestDrillPecking(t *testing.T) {
	prm := DrillParams{Params: testParams(), PeckDepth: 1}
	prog, err := Drill([]geo.Point2D{geo.Pt(0, 0)}, prm)
	if err != nil {
		t.Fatal(err)
	}
	// 3mm hole at 1mm pecks: plunges to -1, -2, -3.
	for _, z := range []string{"Z-1.000", "Z-2.000", "Z-3.000"} {
		if !strings.Contains(prog, z) {
			t.Errorf("pecked cycle missing %s", z)
		}
	}
}

func TestDrillRejectsEmpty(t *testing.T) {
	if _, err := Drill(nil, DrillParams{Params: testParams()}); err == nil {
		t.Error("expected error for no holes")
	}
}
