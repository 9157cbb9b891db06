package cam

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// checkerImage builds a 2x1 image: left pixel black, right pixel white.
func checkerImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 255})
	return img
}

func bitmapParams() BitmapParams {
	return BitmapParams{
		Params:   testParams(),
		WidthMM:  20,
		DotPitch: 10,
		MaxPower: 1000,
	}
}

func TestEngraveBitmapPowerFollowsDarkness(t *testing.T) {
	prog, err := EngraveBitmap(checkerImage(), bitmapParams())
	if err != nil {
		t.Fatal(err)
	}
	// The black pixel burns at full power; the trailing white run is
	// trimmed, so no S0.000 move should appear.
	if !strings.Contains(prog, "S1000.000") {
		t.Error("black pixel should burn at max power")
	}
	if strings.Contains(prog, "S0.000") {
		t.Error("trailing white pixels should be trimmed, not burned at zero power")
	}
}

func TestEngraveBitmapDeterministic(t *testing.T) {
	a, err := EngraveBitmap(checkerImage(), bitmapParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := EngraveBitmap(checkerImage(), bitmapParams())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("identical inputs must produce identical programs")
	}
}

func TestEngraveBitmapRejectsBadInputs(t *testing.T) {
	prm := bitmapParams()
	prm.WidthMM = 0
	if _, err := EngraveBitmap(checkerImage(), prm); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := EngraveBitmap(image.NewGray(image.Rect(0, 0, 0, 0)), bitmapParams()); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestHalftoneProducesOnlyBlackAndWhite(t *testing.T) {
	gray := []uint8{0, 64, 128, 192, 255, 10, 100, 200, 30}
	applyHalftone(gray, 3, 3, 128)
	for i, v := range gray {
		if v != 0 && v != 255 {
			t.Errorf("pixel %d = %d, halftone output must be 1-bit", i, v)
		}
	}
}

func TestEngraveVectorTracesAllPaths(t *testing.T) {
	paths := []geo.Path{
		{geo.Pt(0, 0), geo.Pt(10, 0), geo.Pt(10, 10), geo.Pt(0, 10)}, // closed square
		{geo.Pt(20, 0), geo.Pt(30, 5)},                               // open stroke
	}
	prm := VectorParams{Params: testParams(), LaserPower: 800}
	prog, err := EngraveVector(paths, prm)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(prog, "--- Trace") != 2 {
		t.Error("expected two traces")
	}
	if !strings.Contains(prog, "S800.000") {
		t.Error("laser power S word missing")
	}
}

func TestEngraveVectorSkipsDegeneratePaths(t *testing.T) {
	paths := []geo.Path{{geo.Pt(1, 1)}} // single point
	if _, err := EngraveVector(paths, VectorParams{Params: testParams()}); err == nil {
		t.Error("expected error when no usable paths remain")
	}
}
