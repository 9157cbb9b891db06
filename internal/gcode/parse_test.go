package gcode

import (
	"math"
	"testing"
)

func motionCommands(cmds []GCommand) []GCommand {
	var out []GCommand
	for _, c := range cmds {
		if c.Kind == CmdMove || c.Kind == CmdArc {
			out = append(out, c)
		}
	}
	return out
}

func TestParseBasicProgram(t *testing.T) {
	cmds := Parse("G21\nG90\nG0 X10 Y20\nG1 X30 Y40 F500\nM30")
	moves := motionCommands(cmds)
	if len(moves) != 2 {
		t.Fatalf("expected 2 motion commands, got %d", len(moves))
	}

	first := moves[0]
	if !first.Rapid {
		t.Error("first move should be a rapid")
	}
	if first.From != (Point3D{}) || first.To != (Point3D{X: 10, Y: 20}) {
		t.Errorf("rapid endpoints: from %+v to %+v", first.From, first.To)
	}

	second := moves[1]
	if second.Rapid {
		t.Error("second move should be a cut")
	}
	if second.From != (Point3D{X: 10, Y: 20}) || second.To != (Point3D{X: 30, Y: 40}) {
		t.Errorf("cut endpoints: from %+v to %+v", second.From, second.To)
	}
	if second.Feed != 500 {
		t.Errorf("feed = %v, want 500", second.Feed)
	}

	last := cmds[len(cmds)-1]
	if last.Kind != CmdProgramEnd {
		t.Errorf("program should end with M30, got kind %v", last.Kind)
	}
}

func TestParseModalMotionCarriesOver(t *testing.T) {
	// After G1, bare coordinate lines continue feeding.
	cmds := motionCommands(Parse("G1 X10 F100\nX20\nY5"))
	if len(cmds) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(cmds))
	}
	for i, c := range cmds {
		if c.Rapid {
			t.Errorf("move %d should inherit the G1 motion mode", i)
		}
	}
	if cmds[2].To != (Point3D{X: 20, Y: 5}) {
		t.Errorf("modal endpoint: %+v", cmds[2].To)
	}
}

func TestParseIncrementalMode(t *testing.T) {
	cmds := motionCommands(Parse("G91\nG0 X10 Y10\nG0 X10 Y10"))
	if len(cmds) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(cmds))
	}
	if cmds[1].To != (Point3D{X: 20, Y: 20}) {
		t.Errorf("incremental endpoints must accumulate: %+v", cmds[1].To)
	}
}

func TestParseInchProgramNormalizesToMM(t *testing.T) {
	cmds := motionCommands(Parse("G20\nG0 X1"))
	if len(cmds) != 1 {
		t.Fatal("expected 1 move")
	}
	if math.Abs(cmds[0].To.X-25.4) > 1e-9 {
		t.Errorf("G20 coordinates should normalize to mm, got %v", cmds[0].To.X)
	}
}

func TestParseComments(t *testing.T) {
	cmds := Parse("(setup) G0 X5 ; trailing\n; whole line")
	var comments, moves int
	for _, c := range cmds {
		switch c.Kind {
		case CmdComment:
			comments++
		case CmdMove:
			moves++
			if c.To.X != 5 {
				t.Errorf("comment stripping broke the move: %+v", c.To)
			}
		}
	}
	if moves != 1 {
		t.Errorf("expected 1 move, got %d", moves)
	}
	if comments == 0 {
		t.Error("comments should be preserved as commands")
	}
}

func TestParseCaseInsensitiveAndWhitespaceTolerant(t *testing.T) {
	a := motionCommands(Parse("g1x10y20f300"))
	b := motionCommands(Parse("G1 X10 Y20 F300"))
	if len(a) != 1 || len(b) != 1 {
		t.Fatal("both spellings should parse to one move")
	}
	if a[0].To != b[0].To || a[0].Feed != b[0].Feed {
		t.Errorf("case/whitespace variants differ: %+v vs %+v", a[0], b[0])
	}
}

func TestParseCRLF(t *testing.T) {
	cmds := motionCommands(Parse("G0 X1\r\nG0 X2\r\n"))
	if len(cmds) != 2 {
		t.Fatalf("CRLF input: expected 2 moves, got %d", len(cmds))
	}
}

func TestParseArcRetainsCenterAndDirection(t *testing.T) {
	cmds := Parse("G0 X0 Y0\nG2 X10 Y0 I5 J0 F200")
	var arc *GCommand
	for i := range cmds {
		if cmds[i].Kind == CmdArc {
			arc = &cmds[i]
		}
	}
	if arc == nil {
		t.Fatal("no arc parsed")
	}
	if !arc.CW {
		t.Error("G2 is clockwise")
	}
	if arc.Center != (Point3D{X: 5, Y: 0}) {
		t.Errorf("arc center: %+v", arc.Center)
	}
	if arc.Plane != PlaneXY {
		t.Errorf("default plane should be XY, got %v", arc.Plane)
	}
}

func TestParseFullCircleArc(t *testing.T) {
	cmds := Parse("G0 X10 Y0\nG2 X10 Y0 I-10 J0 F200")
	var arc *GCommand
	for i := range cmds {
		if cmds[i].Kind == CmdArc {
			arc = &cmds[i]
		}
	}
	if arc == nil {
		t.Fatal("no arc parsed")
	}
	// Identical start and end with nonzero radius: the tessellation is a
	// full circle.
	pts := TessellateArc(*arc, 0.1)
	if len(pts) < 8 {
		t.Fatalf("full circle should tessellate into many points, got %d", len(pts))
	}
	for _, p := range pts {
		r := math.Hypot(p.X-0, p.Y-0)
		if math.Abs(r-10) > 0.2 {
			t.Errorf("point %+v not on the circle", p)
		}
	}
}

func TestParseUnknownWordsDoNotAbort(t *testing.T) {
	cmds := motionCommands(Parse("G0 X1\nQ99 B7\nG0 X2"))
	if len(cmds) != 2 {
		t.Errorf("unknown words must not abort parsing: got %d moves", len(cmds))
	}
}

func TestParseWCSAndOffsets(t *testing.T) {
	cmds := Parse("G55\nG10 L2 P1 X5 Y5 Z0\nG0 X1")
	sawWCS := false
	sawOffset := false
	for _, c := range cmds {
		if c.Kind == CmdSetWCS && c.WCSNum == 55 {
			sawWCS = true
		}
		if c.Kind == CmdG10Offset {
			sawOffset = true
			if c.OffsetIsL20 {
				t.Error("L2 parsed as L20")
			}
		}
	}
	if !sawWCS || !sawOffset {
		t.Errorf("WCS/offset commands missing: wcs=%v offset=%v", sawWCS, sawOffset)
	}
}

func TestSerializeRoundTripSemanticEquivalence(t *testing.T) {
	src := `G21
G90
G0 X10 Y20
G1 X30 Y40 F500
G2 X50 Y40 I10 J0 F500
G4 P0.5
M3 S1000
M5
M30`
	first := Parse(src)
	second := Parse(Serialize(first))

	fm := motionCommands(first)
	sm := motionCommands(second)
	if len(fm) != len(sm) {
		t.Fatalf("motion count changed: %d vs %d", len(fm), len(sm))
	}
	for i := range fm {
		if fm[i].Kind != sm[i].Kind {
			t.Errorf("command %d kind changed: %v vs %v", i, fm[i].Kind, sm[i].Kind)
		}
		if dist3(fm[i].To, sm[i].To) > 1e-6 {
			t.Errorf("command %d endpoint moved: %+v vs %+v", i, fm[i].To, sm[i].To)
		}
		if fm[i].Kind == CmdArc && dist3(fm[i].Center, sm[i].Center) > 1e-6 {
			t.Errorf("command %d center moved: %+v vs %+v", i, fm[i].Center, sm[i].Center)
		}
	}

	// Dwell, spindle, and program-end survive the trip in order.
	kindsOf := func(cmds []GCommand) []CommandKind {
		var out []CommandKind
		for _, c := range cmds {
			switch c.Kind {
			case CmdDwell, CmdSpindleOn, CmdSpindleOff, CmdProgramEnd:
				out = append(out, c.Kind)
			}
		}
		return out
	}
	fk, sk := kindsOf(first), kindsOf(second)
	if len(fk) != len(sk) {
		t.Fatalf("auxiliary command count changed: %v vs %v", fk, sk)
	}
	for i := range fk {
		if fk[i] != sk[i] {
			t.Errorf("auxiliary order changed at %d: %v vs %v", i, fk[i], sk[i])
		}
	}
}

func dist3(a, b Point3D) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
}
