package cam

import (
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

func jigsawParams() JigsawParams {
	return JigsawParams{
		Params: testParams(),
		Width:  200,
		Height: 150,
		Rows:   3,
		Cols:   4,
		Seed:   42,
	}
}

func TestJigsawSameSeedSameProgram(t *testing.T) {
	a, err := Jigsaw(jigsawParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Jigsaw(jigsawParams())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same seed must produce identical programs")
	}
}

func TestJigsawDifferentSeedDiffers(t *testing.T) {
	a, _ := Jigsaw(jigsawParams())
	prm := jigsawParams()
	prm.Seed = 43
	b, _ := Jigsaw(prm)
	if a == b {
		t.Error("different seeds should produce different knob patterns")
	}
}

func TestJigsawPieceCountAndCoverage(t *testing.T) {
	prm := jigsawParams()
	pieces, err := JigsawPieces(prm)
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != prm.Rows*prm.Cols {
		t.Fatalf("expected %d pieces, got %d", prm.Rows*prm.Cols, len(pieces))
	}

	// Shared edges are exact inverses, so piece areas must sum to the full
	// sheet: every knob one piece gains its neighbor loses.
	total := 0.0
	for _, p := range pieces {
		total += p.Area()
	}
	want := prm.Width * prm.Height
	if diff := total - want; diff > 1 || diff < -1 {
		t.Errorf("piece areas sum to %.2f, want %.2f", total, want)
	}
}

func TestJigsawBoundaryPiecesHaveStraightOuterEdges(t *testing.T) {
	prm := jigsawParams()
	pieces, err := JigsawPieces(prm)
	if err != nil {
		t.Fatal(err)
	}
	// Bottom-left piece: no vertex may fall outside the sheet, and its
	// bottom edge must lie exactly on y=0.
	first := pieces[0]
	onBottom := 0
	for _, pt := range first {
		if pt.Y < -geo.Tolerance || pt.X < -geo.Tolerance {
			t.Errorf("boundary piece vertex outside sheet: %+v", pt)
		}
		if pt.Y == 0 {
			onBottom++
		}
	}
	if onBottom < 2 {
		t.Error("bottom boundary edge should be straight along y=0")
	}
}

func TestJigsawRejectsBadGrid(t *testing.T) {
	prm := jigsawParams()
	prm.Rows = 0
	if _, err := Jigsaw(prm); err == nil {
		t.Error("expected error for zero rows")
	}
}
