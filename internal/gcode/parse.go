package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// word is one letter/value pair tokenized from a line, in source order.
type word struct {
	letter byte
	value  float64
}

var wordRe = regexp.MustCompile(`([A-Za-z])(-?\d+\.?\d*)`)

// stripComment removes a trailing ";..." comment and any "(...)" inline
// comments from line, returning the remaining code text and the
// concatenation of comment bodies found (for CmdComment emission).
func stripComment(line string) (code, comment string) {
	if idx := strings.Index(line, ";"); idx >= 0 {
		comment = strings.TrimSpace(line[idx+1:])
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		end += start
		if comment != "" {
			comment += " "
		}
		comment += strings.TrimSpace(line[start+1 : end])
		line = line[:start] + line[end+1:]
	}
	return line, comment
}

func tokenize(code string) []word {
	matches := wordRe.FindAllStringSubmatch(code, -1)
	words := make([]word, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		letter := m[1][0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		words = append(words, word{letter: letter, value: v})
	}
	return words
}

// Parse folds a G-code program into a GCommand sequence. It never returns
// an error: malformed or unrecognized words are preserved on the line but
// do not abort parsing, matching real firmware's tolerance of stray words.
func Parse(program string) []GCommand {
	state := initialModalState()
	var out []GCommand

	for lineNo, raw := range strings.Split(program, "\n") {
		code, comment := stripComment(raw)
		code = strings.TrimSpace(code)
		if code == "" {
			if comment != "" {
				out = append(out, GCommand{Kind: CmdComment, Line: lineNo + 1, Text: comment, State: state})
			}
			continue
		}
		words := tokenize(code)
		cmds := applyLine(&state, lineNo+1, words)
		out = append(out, cmds...)
		if comment != "" {
			out = append(out, GCommand{Kind: CmdComment, Line: lineNo + 1, Text: comment, State: state})
		}
	}
	return out
}

// applyLine updates state in place per the words present on one line and
// returns the GCommands that line produces (zero, one, or more: a line can
// carry both a G-code and an M-code).
func applyLine(state *ModalState, lineNo int, words []word) []GCommand {
	var (
		hasX, hasY, hasZ, hasI, hasJ, hasK, hasF, hasS, hasR, hasP, hasL bool
		x, y, z, i, j, k, f, s, r, p                                     float64
		toolNo                                                                int
		lVal                                                                  int
		gCodes, mCodes                                                        []float64
	)
	for _, w := range words {
		switch w.letter {
		case 'X':
			x, hasX = w.value, true
		case 'Y':
			y, hasY = w.value, true
		case 'Z':
			z, hasZ = w.value, true
		case 'I':
			i, hasI = w.value, true
		case 'J':
			j, hasJ = w.value, true
		case 'K':
			k, hasK = w.value, true
		case 'F':
			f, hasF = w.value, true
		case 'S':
			s, hasS = w.value, true
		case 'R':
			r, hasR = w.value, true
		case 'P':
			p, hasP = w.value, true
		case 'T':
			toolNo = int(w.value)
		case 'L':
			lVal, hasL = int(w.value), true
		case 'G':
			gCodes = append(gCodes, w.value)
		case 'M':
			mCodes = append(mCodes, w.value)
		}
	}

	if hasS {
		state.SpindleSpeed = s
	}

	var out []GCommand

	for _, g := range gCodes {
		switch g {
		case 17:
			state.Plane = PlaneXY
		case 18:
			state.Plane = PlaneXZ
		case 19:
			state.Plane = PlaneYZ
		case 20:
			state.Units = UnitsInch
		case 21:
			state.Units = UnitsMM
		case 90:
			state.Distance = DistanceAbsolute
		case 91:
			state.Distance = DistanceIncremental
		case 54, 55, 56, 57, 58, 59:
			state.WCS = int(g)
			out = append(out, GCommand{Kind: CmdSetWCS, Line: lineNo, WCSNum: int(g), State: *state})
		case 28, 30:
			out = append(out, homeCommand(state, lineNo))
		case 92:
			out = append(out, offsetCommand(state, lineNo, x, y, z, hasX, hasY, hasZ, false))
		case 10:
			if hasL && (lVal == 2 || lVal == 20) {
				out = append(out, offsetCommand(state, lineNo, x, y, z, hasX, hasY, hasZ, lVal == 20))
			}
		case 0:
			state.Motion = MotionRapid
		case 1:
			state.Motion = MotionFeed
		case 2:
			state.Motion = MotionCWArc
		case 3:
			state.Motion = MotionCCWArc
		case 4:
			secs := p
			if !hasP {
				secs = 0
			}
			out = append(out, GCommand{Kind: CmdDwell, Line: lineNo, Seconds: secs, State: *state})
		}
	}

	for _, m := range mCodes {
		switch m {
		case 3, 4:
			state.SpindleOn = true
			out = append(out, GCommand{Kind: CmdSpindleOn, Line: lineNo, Spindle: state.SpindleSpeed, State: *state})
		case 5:
			state.SpindleOn = false
			out = append(out, GCommand{Kind: CmdSpindleOff, Line: lineNo, State: *state})
		case 7, 8:
			out = append(out, GCommand{Kind: CmdCoolantOn, Line: lineNo, State: *state})
		case 9:
			out = append(out, GCommand{Kind: CmdCoolantOff, Line: lineNo, State: *state})
		case 6:
			out = append(out, GCommand{Kind: CmdToolChange, Line: lineNo, ToolNo: toolNo, State: *state})
		case 2, 30:
			out = append(out, GCommand{Kind: CmdProgramEnd, Line: lineNo, State: *state})
		}
	}

	// Normalize inch-mode lengths to mm once here, so every emitted
	// command carries mm endpoints regardless of the program's G20/G21.
	// Units words on this same line have already updated state above.
	if state.Units == UnitsInch {
		const inch = 25.4
		x, y, z = x*inch, y*inch, z*inch
		i, j, k = i*inch, j*inch, k*inch
		r *= inch
		f *= inch
	}
	if hasF {
		state.FeedRate = f
	}

	// A line carrying only coordinate words (no explicit G0-G3) continues
	// the currently active motion mode, per modal-group semantics.
	hasMotionWords := hasX || hasY || hasZ || hasI || hasJ || hasK || hasR
	if hasMotionWords && !motionSeenButNonMotionOnly(gCodes) {
		from := Point3D{X: state.X, Y: state.Y, Z: state.Z}
		newX := resolveAxis(state.X, x, hasX, state.Distance)
		newY := resolveAxis(state.Y, y, hasY, state.Distance)
		newZ := resolveAxis(state.Z, z, hasZ, state.Distance)

		switch state.Motion {
		case MotionRapid, MotionFeed:
			state.X, state.Y, state.Z = newX, newY, newZ
			out = append(out, GCommand{
				Kind: CmdMove, Line: lineNo, From: from, To: Point3D{X: newX, Y: newY, Z: newZ},
				Rapid: state.Motion == MotionRapid, Feed: state.FeedRate, Spindle: state.SpindleSpeed, State: *state,
			})
		case MotionCWArc, MotionCCWArc:
			rArc := r
			if state.Motion == MotionCWArc {
				rArc = -r // radiusToCenter places the center for a CCW sweep
			}
			center := arcCenter(from, i, j, k, hasI, hasJ, hasK, rArc, hasR, Point3D{X: newX, Y: newY, Z: newZ}, state.Plane)
			state.X, state.Y, state.Z = newX, newY, newZ
			out = append(out, GCommand{
				Kind: CmdArc, Line: lineNo, From: from, To: Point3D{X: newX, Y: newY, Z: newZ},
				Center: center, CW: state.Motion == MotionCWArc, Plane: state.Plane,
				Feed: state.FeedRate, State: *state,
			})
		}
	}

	return out
}

// motionSeenButNonMotionOnly reports whether gCodes contains only
// non-motion G words (e.g. a bare G90 line with coordinate words that are
// not actually motion, which does not occur in practice but guards against
// double-emitting a move when a dwell/offset line happens to also carry
// coordinate-shaped words consumed above).
func motionSeenButNonMotionOnly(gCodes []float64) bool {
	for _, g := range gCodes {
		switch g {
		case 4, 10, 92:
			return true
		}
	}
	return false
}

func homeCommand(state *ModalState, lineNo int) GCommand {
	return GCommand{Kind: CmdHome, Line: lineNo, From: Point3D{X: state.X, Y: state.Y, Z: state.Z}, State: *state}
}

func offsetCommand(state *ModalState, lineNo int, x, y, z float64, hasX, hasY, hasZ, isL20 bool) GCommand {
	axes := Point3D{}
	if hasX {
		axes.X = x
	}
	if hasY {
		axes.Y = y
	}
	if hasZ {
		axes.Z = z
	}
	return GCommand{
		Kind: CmdG10Offset, Line: lineNo, WCSNum: state.WCS,
		OffsetAxes: axes, OffsetIsL20: isL20, State: *state,
	}
}

// arcCenter resolves the arc center from I/J/K (incremental from the arc's
// start point) or R (radius form), in the plane the arc is interpolated in.
func arcCenter(from Point3D, i, j, k float64, hasI, hasJ, hasK bool, r float64, hasR bool, to Point3D, plane Plane) Point3D {
	if hasR {
		return radiusToCenter(from, to, r, plane)
	}
	c := from
	switch plane {
	case PlaneXY:
		if hasI {
			c.X = from.X + i
		}
		if hasJ {
			c.Y = from.Y + j
		}
	case PlaneXZ:
		if hasI {
			c.X = from.X + i
		}
		if hasK {
			c.Z = from.Z + k
		}
	case PlaneYZ:
		if hasJ {
			c.Y = from.Y + j
		}
		if hasK {
			c.Z = from.Z + k
		}
	}
	return c
}
