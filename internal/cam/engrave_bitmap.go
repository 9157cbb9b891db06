package cam

import (
	"image"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// BitmapPreprocess selects how pixel values map to laser power.
type BitmapPreprocess int

const (
	// GrayscalePower modulates power continuously with pixel luminance.
	GrayscalePower BitmapPreprocess = iota
	// Threshold burns full power below the threshold, nothing above.
	Threshold
	// Halftone applies Floyd-Steinberg error diffusion to a 1-bit image
	// before burning, approximating tones with dot density.
	Halftone
)

// BitmapParams configures raster engraving. The dot pitch is matched to the
// tool/beam spot: one scan row per DotPitch millimeters.
type BitmapParams struct {
	Params
	WidthMM    float64 // physical width of the engraved image
	DotPitch   float64 // mm per pixel row/column, typically the beam spot size
	MaxPower   float64 // S value for a fully dark pixel
	Preprocess BitmapPreprocess
	Cutoff     uint8 // Threshold/Halftone split point, 0 means 128
}

// EngraveBitmap rasters img into a bidirectional scan program. Rows step in
// Y by the dot pitch; within a row, runs of equal power are merged into a
// single move with the S word set per run. White pixels travel at full
// speed with power 0 rather than lifting the head.
func EngraveBitmap(img image.Image, prm BitmapParams) (string, error) {
	if err := prm.Validate(); err != nil {
		return "", err
	}
	if prm.WidthMM <= 0 || prm.DotPitch <= 0 || prm.MaxPower <= 0 {
		return "", core.New(core.KindInputValidation, "cam.EngraveBitmap", "width, dot pitch, and max power must be positive", nil)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return "", core.New(core.KindInputValidation, "cam.EngraveBitmap", "empty image", nil)
	}

	// Resample to the grid implied by width and dot pitch.
	cols := int(prm.WidthMM / prm.DotPitch)
	if cols < 1 {
		cols = 1
	}
	rows := int(float64(cols) * float64(b.Dy()) / float64(b.Dx()))
	if rows < 1 {
		rows = 1
	}
	gray := resampleGray(img, cols, rows)

	switch prm.Preprocess {
	case Threshold:
		applyThreshold(gray, cols, rows, prm.cutoff())
	case Halftone:
		applyHalftone(gray, cols, rows, prm.cutoff())
	}

	p := NewProgram(prm.Profile, 3)
	p.Header("Bitmap engrave", prm.Params)
	p.Commentf("Image: %dx%d px at %.3fmm pitch", cols, rows, prm.DotPitch)
	p.RapidZ(prm.CutDepth)

	// Bidirectional scan: even rows left-to-right, odd rows right-to-left.
	// Image row 0 is the top of the picture, which engraves at the highest
	// Y (design space is y-up).
	for r := 0; r < rows; r++ {
		y := float64(rows-1-r) * prm.DotPitch
		reverse := r%2 == 1
		runs := rowRuns(gray, cols, r, reverse)
		if len(runs) == 0 {
			continue
		}
		startX := runs[0].startCol(prm.DotPitch, reverse)
		p.Rapid(startX, y)
		for _, run := range runs {
			power := float64(255-run.level) / 255 * prm.MaxPower
			p.FeedS(run.endCol(prm.DotPitch, reverse), y, prm.FeedRate, power)
		}
	}

	p.RapidZ(prm.SafeZ)
	p.Footer(prm.SafeZ)
	return p.String(), nil
}

func (prm BitmapParams) cutoff() uint8 {
	if prm.Cutoff == 0 {
		return 128
	}
	return prm.Cutoff
}

// resampleGray samples img down to cols x rows of 8-bit luminance, using
// the same 0.299/0.587/0.114 weights as the display pipeline.
func resampleGray(img image.Image, cols, rows int) []uint8 {
	b := img.Bounds()
	out := make([]uint8, cols*rows)
	for r := 0; r < rows; r++ {
		sy := b.Min.Y + r*b.Dy()/rows
		for c := 0; c < cols; c++ {
			sx := b.Min.X + c*b.Dx()/cols
			red, green, blue, _ := img.At(sx, sy).RGBA()
			lum := float64(red)*0.299 + float64(green)*0.587 + float64(blue)*0.114
			out[r*cols+c] = uint8(lum / 256)
		}
	}
	return out
}

func applyThreshold(gray []uint8, cols, rows int, cutoff uint8) {
	for i := range gray {
		if gray[i] < cutoff {
			gray[i] = 0
		} else {
			gray[i] = 255
		}
	}
}

// applyHalftone runs Floyd-Steinberg error diffusion in place, producing a
// 1-bit image whose dot density approximates the original tones.
func applyHalftone(gray []uint8, cols, rows int, cutoff uint8) {
	buf := make([]float64, len(gray))
	for i, v := range gray {
		buf[i] = float64(v)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			old := buf[i]
			var quantized float64
			if old < float64(cutoff) {
				quantized = 0
			} else {
				quantized = 255
			}
			err := old - quantized
			buf[i] = quantized
			if c+1 < cols {
				buf[i+1] += err * 7 / 16
			}
			if r+1 < rows {
				if c > 0 {
					buf[i+cols-1] += err * 3 / 16
				}
				buf[i+cols] += err * 5 / 16
				if c+1 < cols {
					buf[i+cols+1] += err * 1 / 16
				}
			}
		}
	}
	for i, v := range buf {
		if v < 128 {
			gray[i] = 0
		} else {
			gray[i] = 255
		}
	}
}

// pixelRun is a horizontal run of equal-level pixels within one scan row.
type pixelRun struct {
	first, last int // column span, inclusive, in scan order
	level       uint8
}

func (r pixelRun) startCol(pitch float64, reverse bool) float64 {
	if reverse {
		return float64(r.first+1) * pitch
	}
	return float64(r.first) * pitch
}

func (r pixelRun) endCol(pitch float64, reverse bool) float64 {
	if reverse {
		return float64(r.last) * pitch
	}
	return float64(r.last+1) * pitch
}

// rowRuns merges row r's pixels into runs of equal level, in scan order
// (reversed for odd rows). Trailing and leading white is trimmed so the
// head never burns air beyond the picture content.
func rowRuns(gray []uint8, cols, r int, reverse bool) []pixelRun {
	var runs []pixelRun
	appendPixel := func(c int, level uint8) {
		if len(runs) > 0 && runs[len(runs)-1].level == level {
			runs[len(runs)-1].last = c
		} else {
			runs = append(runs, pixelRun{first: c, last: c, level: level})
		}
	}
	if reverse {
		for c := cols - 1; c >= 0; c-- {
			appendPixel(c, gray[r*cols+c])
		}
	} else {
		for c := 0; c < cols; c++ {
			appendPixel(c, gray[r*cols+c])
		}
	}
	// Trim pure-white runs from both ends.
	for len(runs) > 0 && runs[0].level == 255 {
		runs = runs[1:]
	}
	for len(runs) > 0 && runs[len(runs)-1].level == 255 {
		runs = runs[:len(runs)-1]
	}
	return runs
}
