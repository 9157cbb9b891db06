package shape

import (
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Text is a single-line text label. Its closed-form bounds are only
// approximate (advance-width * char count); RenderPath and AsCSG use the
// tessellated glyph strokes, matching the kernel's rule that text and
// arbitrary paths use a tessellation fallback rather than an exact
// parametric form. HitTest tests against the approximate bounds box.
type Text struct {
	base
	Content  string
	FontSize float64 // em height, mm
}

func NewText(id int64, content string, fontSize float64) *Text {
	return &Text{base: newBase(id), Content: content, FontSize: fontSize}
}

func (t *Text) Kind() Kind { return KindText }

const glyphAdvance = 0.7 // advance width as a fraction of em, for this stroke font

// GlyphPaths returns one polyline per stroke, across every glyph in
// Content, in local space (pre-transform). Used directly by vector
// engraving so text is cut as its actual letterforms.
func (t *Text) GlyphPaths(toleranceMM float64) []geo.Path {
	var out []geo.Path
	cursor := 0.0
	for _, r := range t.Content {
		for _, stroke := range glyphStrokes(r) {
			scaled := make(geo.Path, len(stroke))
			for i, p := range stroke {
				scaled[i] = geo.Pt(cursor+p.X*t.FontSize, p.Y*t.FontSize)
			}
			out = append(out, scaled)
		}
		cursor += glyphAdvance * t.FontSize
	}
	return out
}

func (t *Text) RenderPath(toleranceMM float64) geo.Path {
	// A single representative polyline for generic display code that
	// expects one Path; full-fidelity rendering should use GlyphPaths.
	strokes := t.GlyphPaths(toleranceMM)
	var combined geo.Path
	for _, s := range strokes {
		combined = append(combined, s...)
	}
	return combined.Transformed(t.transform)
}

func (t *Text) AsCSG(toleranceMM float64) []geo.Polygon {
	var out []geo.Polygon
	for _, s := range t.GlyphPaths(toleranceMM) {
		out = append(out, geo.Polygon{Outer: s.Transformed(t.transform)})
	}
	return out
}

func (t *Text) Bounds() geo.Rect {
	width := glyphAdvance * t.FontSize * float64(len([]rune(t.Content)))
	corners := []geo.Point2D{geo.Pt(0, 0), geo.Pt(width, 0), geo.Pt(width, t.FontSize), geo.Pt(0, t.FontSize)}
	return geo.BoundsOfPoints(geo.ApplyAll(corners, t.transform))
}

func (t *Text) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return t.Bounds().ExpandedBy(toleranceMM).Contains(p)
}

func (t *Text) Properties() []Property {
	return []Property{
		{Name: "font_size", Kind: PropFloat, Value: t.FontSize, Min: 0, Max: math.Inf(1)},
		{Name: "content", Kind: PropString, Value: t.Content},
	}
}

func (t *Text) Clone() Shape {
	cp := *t
	return &cp
}
