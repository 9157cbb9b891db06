package importer

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

// ImportSVG converts supported SVG elements (path, rect, circle, ellipse,
// line, polyline, polygon, text) into shapes. Coordinates are taken as
// millimeters; element transforms and styling are ignored. Unsupported
// elements and path commands are skipped with a warning.
func ImportSVG(path string, ids IDSource) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("cannot open SVG file: %v", err)}}
	}
	defer f.Close()
	return importSVGStream(f, ids)
}

func importSVGStream(r io.Reader, ids IDSource) Result {
	result := Result{}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("malformed SVG: %v", err))
			return result
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		attrs := attrMap(start)
		switch start.Name.Local {
		case "svg", "g", "defs", "title", "desc", "style", "metadata":
			// containers and metadata: descend / skip silently
		case "rect":
			w, h := attrs.float("width"), attrs.float("height")
			if w <= 0 || h <= 0 {
				result.Warnings = append(result.Warnings, "skipped rect with non-positive size")
				continue
			}
			x, y := attrs.float("x"), attrs.float("y")
			contour := geo.Path{
				geo.Pt(x, y), geo.Pt(x+w, y), geo.Pt(x+w, y+h), geo.Pt(x, y+h),
			}
			result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: contour}}))
		case "circle":
			r := attrs.float("r")
			if r <= 0 {
				result.Warnings = append(result.Warnings, "skipped circle with non-positive radius")
				continue
			}
			c := geo.TessellateCircle(geo.Pt(attrs.float("cx"), attrs.float("cy")), r, 0.05)
			result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: c}}))
		case "ellipse":
			rx, ry := attrs.float("rx"), attrs.float("ry")
			if rx <= 0 || ry <= 0 {
				result.Warnings = append(result.Warnings, "skipped ellipse with non-positive radii")
				continue
			}
			c := geo.TessellateEllipse(geo.Pt(attrs.float("cx"), attrs.float("cy")), rx, ry, 0.05)
			result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: c}}))
		case "line":
			p := geo.Path{
				geo.Pt(attrs.float("x1"), attrs.float("y1")),
				geo.Pt(attrs.float("x2"), attrs.float("y2")),
			}
			result.Shapes = append(result.Shapes, shape.NewOpenPath(ids.Next(), p))
		case "polyline", "polygon":
			pts := parsePointList(attrs["points"])
			if len(pts) < 2 {
				result.Warnings = append(result.Warnings, "skipped "+start.Name.Local+" with fewer than 2 points")
				continue
			}
			if start.Name.Local == "polygon" && len(pts) >= 3 {
				result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: pts}}))
			} else {
				result.Shapes = append(result.Shapes, shape.NewOpenPath(ids.Next(), pts))
			}
		case "path":
			contours, warns := parsePathData(attrs["d"])
			result.Warnings = append(result.Warnings, warns...)
			for _, contour := range contours {
				if contour.Area() > geo.Tolerance {
					result.Shapes = append(result.Shapes, shape.NewPath(ids.Next(), []geo.Polygon{{Outer: contour}}))
				} else if len(contour) >= 2 {
					result.Shapes = append(result.Shapes, shape.NewOpenPath(ids.Next(), contour))
				}
			}
		case "text":
			content := elementText(dec)
			if strings.TrimSpace(content) == "" {
				continue
			}
			size := attrs.float("font-size")
			if size <= 0 {
				size = 10
			}
			txt := shape.NewText(ids.Next(), strings.TrimSpace(content), size)
			txt.ApplyTransform(geo.Transform2D{TX: attrs.float("x"), TY: attrs.float("y"), ScaleX: 1, ScaleY: 1})
			result.Shapes = append(result.Shapes, txt)
		default:
			result.Warnings = append(result.Warnings, "skipped unsupported SVG element <"+start.Name.Local+">")
			dec.Skip()
		}
	}

	if len(result.Shapes) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "no supported elements found in SVG")
	}
	return result
}

type svgAttrs map[string]string

func attrMap(el xml.StartElement) svgAttrs {
	m := make(svgAttrs, len(el.Attr))
	for _, a := range el.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}

// float parses a numeric attribute, tolerating a trailing unit suffix
// (px, mm) and returning 0 when absent or malformed.
func (a svgAttrs) float(name string) float64 {
	s := strings.TrimSpace(a[name])
	s = strings.TrimSuffix(s, "px")
	s = strings.TrimSuffix(s, "mm")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func elementText(dec *xml.Decoder) string {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String()
}

// parsePointList reads an SVG points attribute ("x1,y1 x2,y2 ...").
func parsePointList(s string) geo.Path {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r'
	})
	var pts geo.Path
	for i := 0; i+1 < len(fields); i += 2 {
		x, err1 := strconv.ParseFloat(fields[i], 64)
		y, err2 := strconv.ParseFloat(fields[i+1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, geo.Pt(x, y))
	}
	return pts
}

// parsePathData evaluates an SVG path `d` string into polyline contours.
// Supported commands: M/m, L/l, H/h, V/v, C/c, Q/q, Z/z. Arcs (A/a) and
// smooth shorthands are skipped with a warning; the subpath continues from
// their endpoint.
func parsePathData(d string) ([]geo.Path, []string) {
	var contours []geo.Path
	var warns []string
	var cur geo.Path
	var pos, start geo.Point2D

	toks := tokenizePathData(d)
	i := 0
	nextFloats := func(n int) ([]float64, bool) {
		if i+n > len(toks) {
			return nil, false
		}
		out := make([]float64, n)
		for k := 0; k < n; k++ {
			v, err := strconv.ParseFloat(toks[i+k], 64)
			if err != nil {
				return nil, false
			}
			out[k] = v
		}
		i += n
		return out, true
	}
	closeSub := func() {
		if len(cur) >= 2 {
			contours = append(contours, cur)
		}
		cur = nil
	}

	var cmd byte
	for i < len(toks) {
		tok := toks[i]
		if len(tok) == 1 && isPathCommand(tok[0]) {
			cmd = tok[0]
			i++
			if cmd == 'Z' || cmd == 'z' {
				if len(cur) >= 3 {
					contours = append(contours, cur)
					cur = nil
				}
				pos = start
				continue
			}
		}
		rel := cmd >= 'a'
		switch cmd {
		case 'M', 'm':
			v, ok := nextFloats(2)
			if !ok {
				return append(contours, cur), warns
			}
			closeSub()
			if rel {
				pos = geo.Pt(pos.X+v[0], pos.Y+v[1])
			} else {
				pos = geo.Pt(v[0], v[1])
			}
			start = pos
			cur = geo.Path{pos}
			// Subsequent coordinate pairs are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			v, ok := nextFloats(2)
			if !ok {
				return append(contours, cur), warns
			}
			if rel {
				pos = geo.Pt(pos.X+v[0], pos.Y+v[1])
			} else {
				pos = geo.Pt(v[0], v[1])
			}
			cur = append(cur, pos)
		case 'H', 'h':
			v, ok := nextFloats(1)
			if !ok {
				return append(contours, cur), warns
			}
			if rel {
				pos = geo.Pt(pos.X+v[0], pos.Y)
			} else {
				pos = geo.Pt(v[0], pos.Y)
			}
			cur = append(cur, pos)
		case 'V', 'v':
			v, ok := nextFloats(1)
			if !ok {
				return append(contours, cur), warns
			}
			if rel {
				pos = geo.Pt(pos.X, pos.Y+v[0])
			} else {
				pos = geo.Pt(pos.X, v[0])
			}
			cur = append(cur, pos)
		case 'C', 'c':
			v, ok := nextFloats(6)
			if !ok {
				return append(contours, cur), warns
			}
			p1, p2, p3 := geo.Pt(v[0], v[1]), geo.Pt(v[2], v[3]), geo.Pt(v[4], v[5])
			if rel {
				p1 = pos.Add(p1)
				p2 = pos.Add(p2)
				p3 = pos.Add(p3)
			}
			pts := geo.TessellateCubicBezier(pos, p1, p2, p3, 0.05)
			if len(pts) > 1 {
				cur = append(cur, pts[1:]...)
			}
			pos = p3
		case 'Q', 'q':
			v, ok := nextFloats(4)
			if !ok {
				return append(contours, cur), warns
			}
			p1, p2 := geo.Pt(v[0], v[1]), geo.Pt(v[2], v[3])
			if rel {
				p1 = pos.Add(p1)
				p2 = pos.Add(p2)
			}
			pts := geo.TessellateQuadraticBezier(pos, p1, p2, 0.05)
			if len(pts) > 1 {
				cur = append(cur, pts[1:]...)
			}
			pos = p2
		case 'S', 's':
			// Smooth cubic shorthand: approximated as a straight segment to
			// the endpoint.
			v, ok := nextFloats(4)
			if !ok {
				return append(contours, cur), warns
			}
			warns = append(warns, "approximated smooth curve command as a line")
			if rel {
				pos = geo.Pt(pos.X+v[2], pos.Y+v[3])
			} else {
				pos = geo.Pt(v[2], v[3])
			}
			cur = append(cur, pos)
		case 'T', 't':
			v, ok := nextFloats(2)
			if !ok {
				return append(contours, cur), warns
			}
			warns = append(warns, "approximated smooth curve command as a line")
			if rel {
				pos = geo.Pt(pos.X+v[0], pos.Y+v[1])
			} else {
				pos = geo.Pt(v[0], v[1])
			}
			cur = append(cur, pos)
		case 'A', 'a':
			v, ok := nextFloats(7)
			if !ok {
				return append(contours, cur), warns
			}
			warns = append(warns, "skipped unsupported arc command in path data")
			if rel {
				pos = geo.Pt(pos.X+v[5], pos.Y+v[6])
			} else {
				pos = geo.Pt(v[5], v[6])
			}
			cur = append(cur, pos)
		default:
			warns = append(warns, fmt.Sprintf("skipped unsupported path command %q", string(cmd)))
			i++
		}
	}
	closeSub()
	return contours, warns
}

func isPathCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) >= 0
}

// tokenizePathData splits path data into command letters and numbers.
func tokenizePathData(d string) []string {
	var toks []string
	var num strings.Builder
	flush := func() {
		if num.Len() > 0 {
			toks = append(toks, num.String())
			num.Reset()
		}
	}
	for i := 0; i < len(d); i++ {
		c := d[i]
		switch {
		case isPathCommand(c):
			flush()
			toks = append(toks, string(c))
		case c == ' ' || c == ',' || c == '\n' || c == '\t' || c == '\r':
			flush()
		case c == '-' && num.Len() > 0 && d[i-1] != 'e' && d[i-1] != 'E':
			// A minus sign starts a new number unless it is an exponent.
			flush()
			num.WriteByte(c)
		default:
			num.WriteByte(c)
		}
	}
	flush()
	return toks
}
