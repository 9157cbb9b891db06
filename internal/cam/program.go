package cam

import (
	"fmt"
	"strings"
)

// Program accumulates G-code text through a post-processor profile. All
// generators write through it so dialect details (comment style, decimal
// places, rapid/feed words) stay in one place.
//
// Output follows the house rules: LF line endings, decimal points, at most
// one motion word per line, units and absolute mode set explicitly in the
// header, M30 at the end.
type Program struct {
	b       strings.Builder
	profile Profile
	axes    int
}

// NewProgram returns an empty program using the named profile (Grbl when
// empty, Generic when unknown). axes is the target machine's reported axis
// count; machines with fewer than 3 axes get no Z words on G10 offset lines.
func NewProgram(profileName string, axes int) *Program {
	if axes <= 0 {
		axes = 3
	}
	if profileName == "" {
		profileName = "Grbl"
	}
	return &Program{profile: GetProfile(profileName), axes: axes}
}

// Profile returns the active post-processor profile.
func (p *Program) Profile() Profile { return p.profile }

// String returns the accumulated program text.
func (p *Program) String() string { return p.b.String() }

// format renders a coordinate with the profile's decimal places.
func (p *Program) format(v float64) string {
	return fmt.Sprintf(fmt.Sprintf("%%.%df", p.profile.DecimalPlaces), v)
}

// Comment writes one comment line in the profile's comment syntax.
func (p *Program) Comment(text string) {
	p.b.WriteString(p.profile.CommentPrefix + " " + text + p.profile.CommentSuffix + "\n")
}

// Commentf is Comment with fmt.Sprintf formatting.
func (p *Program) Commentf(format string, args ...any) {
	p.Comment(fmt.Sprintf(format, args...))
}

// Raw writes a pre-formatted line verbatim.
func (p *Program) Raw(line string) {
	p.b.WriteString(line + "\n")
}

// Header writes the job banner, the profile start codes (units first), and
// the spindle start. The banner carries only inputs, never timestamps, so
// identical jobs produce identical files.
func (p *Program) Header(jobName string, prm Params) {
	p.Commentf("GCodeKit5 - %s", jobName)
	p.Commentf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min", prm.ToolDiameter, prm.FeedRate, prm.PlungeRate)
	p.Commentf("Depth: %.1fmm in %.1fmm passes, Safe Z: %.1fmm", -prm.CutDepth, prm.StepDown, prm.SafeZ)
	p.Commentf("Profile: %s", p.profile.Name)
	for _, code := range p.profile.StartCode {
		p.Raw(code)
	}
	if p.profile.SpindleStart != "" && prm.SpindleSpeed > 0 {
		p.Raw(fmt.Sprintf(p.profile.SpindleStart, prm.SpindleSpeed))
	}
	p.RapidZ(prm.SafeZ)
}

// Footer writes the profile end codes, substituting the job's safe Z for
// the "[SafeZ]" placeholder.
func (p *Program) Footer(safeZ float64) {
	p.Comment("=== Job complete ===")
	for _, code := range p.profile.EndCode {
		p.Raw(strings.ReplaceAll(code, "[SafeZ]", p.format(safeZ)))
	}
}

// Rapid writes a G0 XY move.
func (p *Program) Rapid(x, y float64) {
	p.Raw(fmt.Sprintf("%s X%s Y%s", p.profile.RapidMove, p.format(x), p.format(y)))
}

// RapidZ writes a G0 Z move.
func (p *Program) RapidZ(z float64) {
	p.Raw(fmt.Sprintf("%s Z%s", p.profile.RapidMove, p.format(z)))
}

// Feed writes a G1 XY move at the given feed rate.
func (p *Program) Feed(x, y, feed float64) {
	p.Raw(fmt.Sprintf("%s X%s Y%s F%s", p.profile.FeedMove, p.format(x), p.format(y), p.format(feed)))
}

// FeedS writes a G1 XY move with an S word, the laser-mode power
// modulation form.
func (p *Program) FeedS(x, y, feed, s float64) {
	p.Raw(fmt.Sprintf("%s X%s Y%s F%s S%s", p.profile.FeedMove, p.format(x), p.format(y), p.format(feed), p.format(s)))
}

// FeedZ writes a G1 Z plunge at the given feed rate.
func (p *Program) FeedZ(z, feed float64) {
	p.Raw(fmt.Sprintf("%s Z%s F%s", p.profile.FeedMove, p.format(z), p.format(feed)))
}

// Feed3 writes a simultaneous XYZ feed move, used for ramped entries.
func (p *Program) Feed3(x, y, z, feed float64) {
	p.Raw(fmt.Sprintf("%s X%s Y%s Z%s F%s", p.profile.FeedMove, p.format(x), p.format(y), p.format(z), p.format(feed)))
}

// Arc writes a G2/G3 arc in the XY plane. i and j are center offsets
// relative to the current position.
func (p *Program) Arc(cw bool, x, y, i, j, feed float64) {
	word := "G3"
	if cw {
		word = "G2"
	}
	p.Raw(fmt.Sprintf("%s X%s Y%s I%s J%s F%s", word, p.format(x), p.format(y), p.format(i), p.format(j), p.format(feed)))
}

// Dwell writes a G4 pause in seconds.
func (p *Program) Dwell(seconds float64) {
	p.Raw(fmt.Sprintf("G4 P%s", p.format(seconds)))
}

// SpindleOn / SpindleOff write the profile's spindle control words.
func (p *Program) SpindleOn(speed float64) {
	if p.profile.SpindleStart != "" {
		p.Raw(fmt.Sprintf(p.profile.SpindleStart, speed))
	}
}

func (p *Program) SpindleOff() {
	if p.profile.SpindleStop != "" {
		p.Raw(p.profile.SpindleStop)
	}
}

// SetWCSOffset writes a G10 L2/L20 work-offset line for the given WCS
// (54..59). Machines reporting fewer than 3 axes get no Z word.
func (p *Program) SetWCSOffset(l20 bool, wcs int, x, y, z float64) {
	l := 2
	if l20 {
		l = 20
	}
	slot := wcs - 53
	if slot < 1 || slot > 6 {
		slot = 1
	}
	line := fmt.Sprintf("G10 L%d P%d X%s Y%s", l, slot, p.format(x), p.format(y))
	if p.axes >= 3 {
		line += " Z" + p.format(z)
	}
	p.Raw(line)
}
