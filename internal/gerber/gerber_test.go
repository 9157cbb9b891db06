package gerber

import (
	"math"
	"strings"
	"testing"
)

const sampleGerber = `%FSLAX25Y25*%
%MOMM*%
%ADD10C,0.5*%
%ADD11R,1.2X0.8*%
G01*
D10*
X0Y0D02*
X1000000Y0D01*
X1000000Y500000D01*
D11*
X2000000Y2000000D03*
G36*
X4000000Y0D02*
X5000000Y0D01*
X5000000Y1000000D01*
X4000000Y1000000D01*
G37*
M02*
`

func TestParseSample(t *testing.T) {
	board, err := Parse(strings.NewReader(sampleGerber))
	if err != nil {
		t.Fatal(err)
	}

	if len(board.Apertures) != 2 {
		t.Fatalf("expected 2 apertures, got %d", len(board.Apertures))
	}
	c := board.Apertures[10]
	if c.Kind != ApertureCircle || math.Abs(c.Modifiers[0]-0.5) > 1e-9 {
		t.Errorf("aperture 10: %+v", c)
	}
	r := board.Apertures[11]
	if r.Kind != ApertureRect || math.Abs(r.Modifiers[0]-1.2) > 1e-9 || math.Abs(r.Modifiers[1]-0.8) > 1e-9 {
		t.Errorf("aperture 11: %+v", r)
	}

	if len(board.Draws) != 1 {
		t.Fatalf("expected 1 chained draw, got %d", len(board.Draws))
	}
	d := board.Draws[0]
	if len(d.Path) != 3 {
		t.Errorf("draw should chain two D01 segments into 3 points, got %d", len(d.Path))
	}
	// X1000000 at 2.5 format = 10.00000 mm.
	if math.Abs(d.Path[1].X-10) > 1e-9 {
		t.Errorf("coordinate decode: got %v, want 10", d.Path[1].X)
	}

	if len(board.Flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(board.Flashes))
	}
	f := board.Flashes[0]
	if f.Aperture != 11 || math.Abs(f.At.X-20) > 1e-9 || math.Abs(f.At.Y-20) > 1e-9 {
		t.Errorf("flash: %+v", f)
	}

	if len(board.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(board.Regions))
	}
	if len(board.Regions[0].Contour) < 4 {
		t.Errorf("region contour too short: %d points", len(board.Regions[0].Contour))
	}
}

func TestParseInchUnits(t *testing.T) {
	src := `%FSLAX24Y24*%
%MOIN*%
%ADD10C,0.01*%
D10*
X10000Y0D02*
X20000Y0D01*
M02*
`
	board, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	// 1.0000 inch = 25.4 mm.
	if len(board.Draws) != 1 {
		t.Fatal("expected one draw")
	}
	if math.Abs(board.Draws[0].Path[0].X-25.4) > 1e-9 {
		t.Errorf("inch conversion: got %v, want 25.4", board.Draws[0].Path[0].X)
	}
	if math.Abs(board.Apertures[10].Modifiers[0]-0.254) > 1e-9 {
		t.Errorf("aperture diameter should convert to mm: %v", board.Apertures[10].Modifiers[0])
	}
}

func TestParseIgnoresUnknownCommands(t *testing.T) {
	src := `%TF.GenerationSoftware,kicad*%
%FSLAX25Y25*%
%MOMM*%
%LPD*%
G04 a comment*
%ADD10C,0.25*%
D10*
X0Y0D02*
X100000Y0D01*
M02*
`
	board, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unknown commands must be ignored, got %v", err)
	}
	if len(board.Draws) != 1 {
		t.Errorf("expected 1 draw, got %d", len(board.Draws))
	}
}

func TestCopperPolygons(t *testing.T) {
	board, err := Parse(strings.NewReader(sampleGerber))
	if err != nil {
		t.Fatal(err)
	}
	polys := board.CopperPolygons(0.05)
	// One flash, two draw segments, one region.
	if len(polys) != 4 {
		t.Fatalf("expected 4 copper polygons, got %d", len(polys))
	}
	for i, p := range polys {
		if len(p.Outer) < 3 {
			t.Errorf("polygon %d degenerate: %d points", i, len(p.Outer))
		}
		if p.Outer.Area() <= 0 {
			t.Errorf("polygon %d has no area", i)
		}
	}
}

func TestArcDraw(t *testing.T) {
	src := `%FSLAX25Y25*%
%MOMM*%
%ADD10C,0.2*%
G75*
D10*
X0Y0D02*
G02X1000000Y1000000I1000000J0D01*
M02*
`
	board, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Draws) != 1 {
		t.Fatal("expected one draw")
	}
	// A tessellated quarter arc has many intermediate points.
	if len(board.Draws[0].Path) < 5 {
		t.Errorf("arc should tessellate into multiple segments, got %d points", len(board.Draws[0].Path))
	}
}
