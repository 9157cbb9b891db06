// Package gerber parses the RS-274X subset CAM needs for PCB isolation
// routing: aperture definitions (C, R, O, P), linear and circular
// interpolation, quadrant modes, D-codes, region fill, and format/unit
// commands. Commands outside the subset are ignored rather than rejected,
// since real-world gerber files carry plenty of attributes and tool-specific
// extensions a router never needs.
package gerber

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// ApertureKind is the template letter of an aperture definition.
type ApertureKind int

const (
	ApertureCircle ApertureKind = iota
	ApertureRect
	ApertureObround
	AperturePolygon
)

// Aperture is one %ADD definition. Modifiers are the raw X-separated
// parameters: Circle [dia], Rect/Obround [w, h], Polygon [outer-dia,
// vertices, rotation].
type Aperture struct {
	Code      int
	Kind      ApertureKind
	Modifiers []float64
}

// Flash is a D03 stamp of the current aperture at a point.
type Flash struct {
	At       geo.Point2D
	Aperture int
}

// Draw is a stroked path swept with an aperture: consecutive D01 moves
// with the same aperture chain into one path.
type Draw struct {
	Path     geo.Path
	Aperture int
}

// Region is a G36/G37 filled contour.
type Region struct {
	Contour geo.Path
}

// Board is the parsed image: everything in millimeters regardless of the
// file's MO unit.
type Board struct {
	Apertures map[int]Aperture
	Flashes   []Flash
	Draws     []Draw
	Regions   []Region
}

// format holds the FS coordinate format: digit counts and zero-omission
// mode.
type format struct {
	intDigits, decDigits int
	trailingZeroOmit     bool
}

type parser struct {
	board   *Board
	fmtSpec format
	scale   float64 // file units -> mm

	x, y          float64
	aperture      int
	interpolation int  // 1=linear, 2=cw arc, 3=ccw arc
	multiQuadrant bool // G75
	inRegion      bool
	regionPath    geo.Path
	drawPath      geo.Path
}

// Parse reads a gerber stream into a Board.
func Parse(r io.Reader) (*Board, error) {
	p := &parser{
		board:         &Board{Apertures: make(map[int]Aperture)},
		fmtSpec:       format{intDigits: 2, decDigits: 4},
		scale:         1.0,
		interpolation: 1,
	}

	br := bufio.NewReader(r)
	var buf strings.Builder
	inExtended := false
	for {
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.Wrap(core.KindResource, "gerber.Parse", err)
		}
		switch ch {
		case '\r', '\n':
		case '%':
			if inExtended {
				if err := p.extended(buf.String()); err != nil {
					return nil, err
				}
				buf.Reset()
			}
			inExtended = !inExtended
		case '*':
			word := strings.TrimSpace(buf.String())
			buf.Reset()
			if word == "" {
				continue
			}
			if inExtended {
				// Extended commands may hold several *-terminated words;
				// only the first matters for the subset we read.
				buf.WriteString(word)
				buf.WriteByte('*')
				continue
			}
			if err := p.word(word); err != nil {
				return nil, err
			}
		default:
			buf.WriteRune(ch)
		}
	}

	p.flushDraw()
	return p.board, nil
}

// extended handles one %...% command block.
func (p *parser) extended(block string) error {
	block = strings.TrimSpace(block)
	block = strings.TrimSuffix(block, "*")
	switch {
	case strings.HasPrefix(block, "FS"):
		return p.parseFormat(block)
	case strings.HasPrefix(block, "MO"):
		unit := strings.TrimPrefix(block, "MO")
		if strings.HasPrefix(unit, "IN") {
			p.scale = 25.4
		} else {
			p.scale = 1.0
		}
		return nil
	case strings.HasPrefix(block, "ADD"):
		return p.parseAperture(block)
	default:
		// LP, SR, TF/TA/TD attributes and the rest of RS-274X: ignored.
		return nil
	}
}

// parseFormat reads %FSLAX25Y25*%: zero-omission flag, absolute flag, and
// per-axis digit counts.
func (p *parser) parseFormat(block string) error {
	s := strings.TrimPrefix(block, "FS")
	if strings.HasPrefix(s, "T") {
		p.fmtSpec.trailingZeroOmit = true
		s = s[1:]
	} else if strings.HasPrefix(s, "L") {
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "A") // absolute; incremental (I) is obsolete and unsupported
	xi := strings.Index(s, "X")
	if xi < 0 || len(s) < xi+3 {
		return core.New(core.KindInputValidation, "gerber.Parse", fmt.Sprintf("malformed format spec %q", block), nil)
	}
	p.fmtSpec.intDigits = int(s[xi+1] - '0')
	p.fmtSpec.decDigits = int(s[xi+2] - '0')
	return nil
}

// parseAperture reads %ADD10C,0.1*%: code, template letter, X-separated
// modifiers.
func (p *parser) parseAperture(block string) error {
	s := strings.TrimPrefix(block, "ADD")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	code, err := strconv.Atoi(s[:i])
	if err != nil || code < 10 {
		return core.New(core.KindInputValidation, "gerber.Parse", fmt.Sprintf("bad aperture code in %q", block), nil)
	}
	rest := s[i:]
	if rest == "" {
		return core.New(core.KindInputValidation, "gerber.Parse", fmt.Sprintf("aperture %d has no template", code), nil)
	}

	var kind ApertureKind
	switch rest[0] {
	case 'C':
		kind = ApertureCircle
	case 'R':
		kind = ApertureRect
	case 'O':
		kind = ApertureObround
	case 'P':
		kind = AperturePolygon
	default:
		// Macro apertures (AM) are out of subset; skip the definition.
		return nil
	}

	var mods []float64
	if comma := strings.Index(rest, ","); comma >= 0 {
		for _, tok := range strings.Split(rest[comma+1:], "X") {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return core.New(core.KindInputValidation, "gerber.Parse", fmt.Sprintf("bad aperture modifier %q", tok), nil)
			}
			mods = append(mods, v*p.scale)
		}
	}
	// Polygon vertex count and rotation are not lengths; undo the unit
	// scale on them.
	if kind == AperturePolygon {
		for i := 1; i < len(mods); i++ {
			mods[i] /= p.scale
		}
	}
	p.board.Apertures[code] = Aperture{Code: code, Kind: kind, Modifiers: mods}
	return nil
}

// word handles one *-terminated function code word.
func (p *parser) word(w string) error {
	switch {
	case w == "G01" || w == "G1":
		p.interpolation = 1
		return nil
	case w == "G02" || w == "G2":
		p.interpolation = 2
		return nil
	case w == "G03" || w == "G3":
		p.interpolation = 3
		return nil
	case w == "G74":
		p.multiQuadrant = false
		return nil
	case w == "G75":
		p.multiQuadrant = true
		return nil
	case w == "G36":
		p.flushDraw()
		p.inRegion = true
		p.regionPath = geo.Path{geo.Pt(p.x, p.y)}
		return nil
	case w == "G37":
		p.closeRegion()
		return nil
	case w == "M02" || w == "M00":
		p.flushDraw()
		return nil
	case strings.HasPrefix(w, "G04"):
		return nil // comment
	case strings.HasPrefix(w, "D") && !strings.ContainsAny(w, "XYIJ"):
		code, err := strconv.Atoi(w[1:])
		if err != nil {
			return nil
		}
		if code >= 10 {
			p.flushDraw()
			p.aperture = code
		}
		return nil
	}
	if strings.ContainsAny(w, "XYIJD") {
		return p.coordinate(w)
	}
	// G54 aperture-select prefix and anything else: ignore.
	return nil
}

// coordinate handles an operation word like X1000Y2000I30J40D01.
func (p *parser) coordinate(w string) error {
	// Strip a leading G54/G01-style prefix fused onto the coordinate.
	for strings.HasPrefix(w, "G") {
		i := 1
		for i < len(w) && w[i] >= '0' && w[i] <= '9' {
			i++
		}
		prefix := w[:i]
		switch prefix {
		case "G01", "G1":
			p.interpolation = 1
		case "G02", "G2":
			p.interpolation = 2
		case "G03", "G3":
			p.interpolation = 3
		}
		w = w[i:]
	}

	x, y := p.x, p.y
	var iOff, jOff float64
	op := 1 // implicit D01 per legacy files
	i := 0
	for i < len(w) {
		letter := w[i]
		j := i + 1
		for j < len(w) && (w[j] == '-' || w[j] == '+' || (w[j] >= '0' && w[j] <= '9')) {
			j++
		}
		raw := w[i+1 : j]
		switch letter {
		case 'X':
			x = p.coordValue(raw)
		case 'Y':
			y = p.coordValue(raw)
		case 'I':
			iOff = p.coordValue(raw)
		case 'J':
			jOff = p.coordValue(raw)
		case 'D':
			n, err := strconv.Atoi(raw)
			if err == nil {
				op = n
			}
		}
		i = j
	}

	switch op {
	case 1:
		p.stroke(x, y, iOff, jOff)
	case 2:
		p.flushDraw()
		if p.inRegion {
			p.closeRegionContour()
			p.regionPath = geo.Path{geo.Pt(x, y)}
		}
	case 3:
		p.flushDraw()
		p.board.Flashes = append(p.board.Flashes, Flash{At: geo.Pt(x, y), Aperture: p.aperture})
	}
	p.x, p.y = x, y
	return nil
}

// coordValue decodes a fixed-format coordinate into mm.
func (p *parser) coordValue(raw string) float64 {
	if raw == "" {
		return 0
	}
	neg := false
	if raw[0] == '-' {
		neg = true
		raw = raw[1:]
	} else if raw[0] == '+' {
		raw = raw[1:]
	}
	total := p.fmtSpec.intDigits + p.fmtSpec.decDigits
	if p.fmtSpec.trailingZeroOmit {
		for len(raw) < total {
			raw += "0"
		}
	} else {
		for len(raw) < total {
			raw = "0" + raw
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	v := n / math.Pow10(p.fmtSpec.decDigits) * p.scale
	if neg {
		return -v
	}
	return v
}

// stroke extends the current draw (or region contour) to (x, y), expanding
// arcs per the active interpolation and quadrant mode.
func (p *parser) stroke(x, y, iOff, jOff float64) {
	from := geo.Pt(p.x, p.y)
	to := geo.Pt(x, y)

	var pts []geo.Point2D
	if p.interpolation == 1 {
		pts = []geo.Point2D{to}
	} else {
		cw := p.interpolation == 2
		center := p.arcCenter(from, to, iOff, jOff, cw)
		arc := geo.TessellateArc(from, to, center, cw, 0.01)
		if len(arc) > 1 {
			pts = arc[1:]
		} else {
			pts = []geo.Point2D{to}
		}
	}

	if p.inRegion {
		p.regionPath = append(p.regionPath, pts...)
		return
	}
	if len(p.drawPath) == 0 {
		p.drawPath = geo.Path{from}
	}
	p.drawPath = append(p.drawPath, pts...)
}

// arcCenter resolves I/J offsets to an absolute center. In single-quadrant
// mode (G74) the offsets are unsigned and the center is whichever signed
// combination keeps the radius consistent and the sweep within 90 degrees.
func (p *parser) arcCenter(from, to geo.Point2D, iOff, jOff float64, cw bool) geo.Point2D {
	if p.multiQuadrant {
		return geo.Pt(from.X+iOff, from.Y+jOff)
	}
	best := geo.Pt(from.X+iOff, from.Y+jOff)
	bestErr := math.MaxFloat64
	for _, si := range []float64{1, -1} {
		for _, sj := range []float64{1, -1} {
			c := geo.Pt(from.X+si*iOff, from.Y+sj*jOff)
			sweep := math.Atan2(to.Y-c.Y, to.X-c.X) - math.Atan2(from.Y-c.Y, from.X-c.X)
			if cw {
				sweep = -sweep
			}
			for sweep < 0 {
				sweep += 2 * math.Pi
			}
			if sweep > math.Pi/2+1e-6 {
				continue
			}
			rErr := math.Abs(c.Distance(from) - c.Distance(to))
			if rErr < bestErr {
				bestErr = rErr
				best = c
			}
		}
	}
	return best
}

func (p *parser) flushDraw() {
	if len(p.drawPath) >= 2 {
		p.board.Draws = append(p.board.Draws, Draw{Path: p.drawPath, Aperture: p.aperture})
	}
	p.drawPath = nil
}

func (p *parser) closeRegionContour() {
	if len(p.regionPath) >= 3 {
		p.board.Regions = append(p.board.Regions, Region{Contour: p.regionPath})
	}
	p.regionPath = nil
}

func (p *parser) closeRegion() {
	p.closeRegionContour()
	p.inRegion = false
}
