package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialize renders a GCommand sequence back to G-code text. Endpoints are
// written as absolute millimetre values and no G91 or G20 is ever emitted,
// so the parser's G90/G21 defaults apply; a G17/G18/G19 word precedes any
// arc whose plane differs from the previous arc's (XY at the start). The
// round trip Parse(Serialize(cmds)) thus yields commands with the same
// endpoints, modes, and ordering as cmds. It does not attempt to reproduce
// the original program's exact text or its modal-carry-over economy.
func Serialize(cmds []GCommand) string {
	var b strings.Builder
	lastWCS := 0
	lastPlane := PlaneXY
	for _, c := range cmds {
		switch c.Kind {
		case CmdMove:
			g := "G1"
			if c.Rapid {
				g = "G0"
			}
			fmt.Fprintf(&b, "%s X%s Y%s Z%s", g, fnum(c.To.X), fnum(c.To.Y), fnum(c.To.Z))
			if !c.Rapid && c.Feed > 0 {
				fmt.Fprintf(&b, " F%s", fnum(c.Feed))
			}
			b.WriteByte('\n')
		case CmdArc:
			if c.Plane != lastPlane {
				fmt.Fprintf(&b, "G%d\n", 17+int(c.Plane))
				lastPlane = c.Plane
			}
			g := "G3"
			if c.CW {
				g = "G2"
			}
			i, j, k := c.Center.X-c.From.X, c.Center.Y-c.From.Y, c.Center.Z-c.From.Z
			switch c.Plane {
			case PlaneXY:
				fmt.Fprintf(&b, "%s X%s Y%s I%s J%s", g, fnum(c.To.X), fnum(c.To.Y), fnum(i), fnum(j))
			case PlaneXZ:
				fmt.Fprintf(&b, "%s X%s Z%s I%s K%s", g, fnum(c.To.X), fnum(c.To.Z), fnum(i), fnum(k))
			case PlaneYZ:
				fmt.Fprintf(&b, "%s Y%s Z%s J%s K%s", g, fnum(c.To.Y), fnum(c.To.Z), fnum(j), fnum(k))
			}
			if c.Feed > 0 {
				fmt.Fprintf(&b, " F%s", fnum(c.Feed))
			}
			b.WriteByte('\n')
		case CmdDwell:
			fmt.Fprintf(&b, "G4 P%s\n", fnum(c.Seconds))
		case CmdToolChange:
			fmt.Fprintf(&b, "T%d M6\n", c.ToolNo)
		case CmdSpindleOn:
			dir := "M3"
			fmt.Fprintf(&b, "%s S%s\n", dir, fnum(c.Spindle))
		case CmdSpindleOff:
			b.WriteString("M5\n")
		case CmdCoolantOn:
			b.WriteString("M8\n")
		case CmdCoolantOff:
			b.WriteString("M9\n")
		case CmdSetWCS:
			if c.WCSNum != lastWCS {
				fmt.Fprintf(&b, "G%d\n", c.WCSNum)
				lastWCS = c.WCSNum
			}
		case CmdG10Offset:
			l := 2
			if c.OffsetIsL20 {
				l = 20
			}
			fmt.Fprintf(&b, "G10 L%d P%d X%s Y%s Z%s\n", l, wcsIndex(c.WCSNum), fnum(c.OffsetAxes.X), fnum(c.OffsetAxes.Y), fnum(c.OffsetAxes.Z))
		case CmdHome:
			b.WriteString("G28\n")
		case CmdProgramEnd:
			b.WriteString("M30\n")
		case CmdComment:
			fmt.Fprintf(&b, "(%s)\n", c.Text)
		}
	}
	return b.String()
}

func wcsIndex(wcs int) int {
	if wcs < 54 || wcs > 59 {
		return 1
	}
	return wcs - 53
}

// fnum formats a float with up to 4 decimal places, trimming trailing
// zeros, matching the compact numeric style firmware and CAM tools expect.
func fnum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
