package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// strokeFont is a minimal single-stroke ("plotter") font: each glyph is a
// set of open polylines in a 0..1 (x) by 0..1 (y) em box, y-up. It exists
// because no font-shaping library is part of this project's dependency
// set (text rendering/shaping belongs to the GUI layer, which this
// module does not own); this is the minimum needed to make vector
// engraving of Text shapes produce real, cuttable strokes rather than
// placeholder boxes. Unlisted runes other than space fall back to a
// bounding box glyph.
var strokeFont = map[rune][]geo.Path{
	'A': {{geo.Pt(0, 0), geo.Pt(0.5, 1), geo.Pt(1, 0)}, {geo.Pt(0.2, 0.4), geo.Pt(0.8, 0.4)}},
	'B': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(0.6, 1), geo.Pt(0.8, 0.8), geo.Pt(0.6, 0.55), geo.Pt(0, 0.55)},
		{geo.Pt(0, 0.55), geo.Pt(0.7, 0.55), geo.Pt(0.9, 0.3), geo.Pt(0.6, 0), geo.Pt(0, 0)}},
	'C': {{geo.Pt(1, 0.8), geo.Pt(0.6, 1), geo.Pt(0.2, 0.8), geo.Pt(0.1, 0.5), geo.Pt(0.2, 0.2), geo.Pt(0.6, 0), geo.Pt(1, 0.2)}},
	'D': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(0.5, 1), geo.Pt(0.9, 0.5), geo.Pt(0.5, 0), geo.Pt(0, 0)}},
	'E': {{geo.Pt(1, 0), geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(1, 1)}, {geo.Pt(0, 0.5), geo.Pt(0.7, 0.5)}},
	'F': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(1, 1)}, {geo.Pt(0, 0.5), geo.Pt(0.7, 0.5)}},
	'G': {{geo.Pt(1, 0.8), geo.Pt(0.6, 1), geo.Pt(0.2, 0.8), geo.Pt(0.1, 0.5), geo.Pt(0.2, 0.2), geo.Pt(0.6, 0), geo.Pt(1, 0.2), geo.Pt(1, 0.45), geo.Pt(0.6, 0.45)}},
	'H': {{geo.Pt(0, 0), geo.Pt(0, 1)}, {geo.Pt(1, 0), geo.Pt(1, 1)}, {geo.Pt(0, 0.5), geo.Pt(1, 0.5)}},
	'I': {{geo.Pt(0.5, 0), geo.Pt(0.5, 1)}},
	'J': {{geo.Pt(0.8, 1), geo.Pt(0.8, 0.2), geo.Pt(0.5, 0), geo.Pt(0.2, 0.2)}},
	'K': {{geo.Pt(0, 0), geo.Pt(0, 1)}, {geo.Pt(1, 1), geo.Pt(0, 0.5), geo.Pt(1, 0)}},
	'L': {{geo.Pt(0, 1), geo.Pt(0, 0), geo.Pt(1, 0)}},
	'M': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(0.5, 0.4), geo.Pt(1, 1), geo.Pt(1, 0)}},
	'N': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(1, 0), geo.Pt(1, 1)}},
	'O': {{geo.Pt(0.5, 0), geo.Pt(1, 0.25), geo.Pt(1, 0.75), geo.Pt(0.5, 1), geo.Pt(0, 0.75), geo.Pt(0, 0.25), geo.Pt(0.5, 0)}},
	'P': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(0.7, 1), geo.Pt(0.9, 0.7), geo.Pt(0.7, 0.45), geo.Pt(0, 0.45)}},
	'Q': {{geo.Pt(0.5, 0), geo.Pt(1, 0.25), geo.Pt(1, 0.75), geo.Pt(0.5, 1), geo.Pt(0, 0.75), geo.Pt(0, 0.25), geo.Pt(0.5, 0)}, {geo.Pt(0.55, 0.3), geo.Pt(1, -0.1)}},
	'R': {{geo.Pt(0, 0), geo.Pt(0, 1), geo.Pt(0.7, 1), geo.Pt(0.9, 0.7), geo.Pt(0.7, 0.45), geo.Pt(0, 0.45)}, {geo.Pt(0.4, 0.45), geo.Pt(0.9, 0)}},
	'S': {{geo.Pt(1, 0.8), geo.Pt(0.6, 1), geo.Pt(0.1, 0.85), geo.Pt(0.3, 0.55), geo.Pt(0.7, 0.45), geo.Pt(0.9, 0.15), geo.Pt(0.4, 0), geo.Pt(0, 0.2)}},
	'T': {{geo.Pt(0, 1), geo.Pt(1, 1)}, {geo.Pt(0.5, 1), geo.Pt(0.5, 0)}},
	'U': {{geo.Pt(0, 1), geo.Pt(0, 0.3), geo.Pt(0.5, 0), geo.Pt(1, 0.3), geo.Pt(1, 1)}},
	'V': {{geo.Pt(0, 1), geo.Pt(0.5, 0), geo.Pt(1, 1)}},
	'W': {{geo.Pt(0, 1), geo.Pt(0.25, 0), geo.Pt(0.5, 0.6), geo.Pt(0.75, 0), geo.Pt(1, 1)}},
	'X': {{geo.Pt(0, 0), geo.Pt(1, 1)}, {geo.Pt(0, 1), geo.Pt(1, 0)}},
	'Y': {{geo.Pt(0, 1), geo.Pt(0.5, 0.5), geo.Pt(1, 1)}, {geo.Pt(0.5, 0.5), geo.Pt(0.5, 0)}},
	'Z': {{geo.Pt(0, 1), geo.Pt(1, 1), geo.Pt(0, 0), geo.Pt(1, 0)}},
	'0': {{geo.Pt(0, 0.2), geo.Pt(0, 0.8), geo.Pt(0.5, 1), geo.Pt(1, 0.8), geo.Pt(1, 0.2), geo.Pt(0.5, 0), geo.Pt(0, 0.2)}},
	'1': {{geo.Pt(0.2, 0.8), geo.Pt(0.5, 1), geo.Pt(0.5, 0)}},
	'2': {{geo.Pt(0, 0.7), geo.Pt(0.3, 1), geo.Pt(0.8, 0.9), geo.Pt(0.8, 0.6), geo.Pt(0, 0), geo.Pt(1, 0)}},
	'3': {{geo.Pt(0.1, 1), geo.Pt(0.9, 1), geo.Pt(0.4, 0.55), geo.Pt(0.9, 0.45), geo.Pt(0.8, 0.05), geo.Pt(0.1, 0)}},
	'4': {{geo.Pt(0.7, 0), geo.Pt(0.7, 1), geo.Pt(0, 0.3), geo.Pt(1, 0.3)}},
	'5': {{geo.Pt(0.9, 1), geo.Pt(0.1, 1), geo.Pt(0.1, 0.55), geo.Pt(0.7, 0.55), geo.Pt(0.9, 0.3), geo.Pt(0.6, 0), geo.Pt(0.1, 0.15)}},
	'6': {{geo.Pt(0.9, 0.9), geo.Pt(0.4, 1), geo.Pt(0.1, 0.6), geo.Pt(0.1, 0.2), geo.Pt(0.5, 0), geo.Pt(0.9, 0.2), geo.Pt(0.9, 0.5), geo.Pt(0.5, 0.65), geo.Pt(0.1, 0.55)}},
	'7': {{geo.Pt(0, 1), geo.Pt(1, 1), geo.Pt(0.3, 0)}},
	'8': {{geo.Pt(0.5, 1), geo.Pt(0.1, 0.8), geo.Pt(0.1, 0.55), geo.Pt(0.9, 0.45), geo.Pt(0.9, 0.15), geo.Pt(0.5, 0), geo.Pt(0.1, 0.15), geo.Pt(0.1, 0.45), geo.Pt(0.9, 0.55), geo.Pt(0.9, 0.8), geo.Pt(0.5, 1)}},
	'9': {{geo.Pt(0.1, 0.1), geo.Pt(0.6, 0), geo.Pt(0.9, 0.4), geo.Pt(0.9, 0.8), geo.Pt(0.5, 1), geo.Pt(0.1, 0.8), geo.Pt(0.1, 0.5), geo.Pt(0.5, 0.35), geo.Pt(0.9, 0.45)}},
	'.': {{geo.Pt(0.45, 0), geo.Pt(0.55, 0), geo.Pt(0.55, 0.1), geo.Pt(0.45, 0.1), geo.Pt(0.45, 0)}},
	',': {{geo.Pt(0.5, 0.1), geo.Pt(0.4, -0.15)}},
	'-': {{geo.Pt(0.15, 0.45), geo.Pt(0.85, 0.45)}},
	'_': {{geo.Pt(0, 0), geo.Pt(1, 0)}},
	':': {{geo.Pt(0.45, 0.65), geo.Pt(0.55, 0.65)}, {geo.Pt(0.45, 0.3), geo.Pt(0.55, 0.3)}},
}

// glyphFallback is used for any rune other than space with no strokeFont
// entry: a thin bounding box, so unsupported characters still occupy the
// right advance width instead of vanishing. Space has no strokes.
var glyphFallback = []geo.Path{{geo.Pt(0.05, 0), geo.Pt(0.95, 0), geo.Pt(0.95, 1), geo.Pt(0.05, 1), geo.Pt(0.05, 0)}}

func glyphStrokes(r rune) []geo.Path {
	if g, ok := strokeFont[toUpperRune(r)]; ok {
		return g
	}
	if r == ' ' {
		return nil
	}
	return glyphFallback
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
