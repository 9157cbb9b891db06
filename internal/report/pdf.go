package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/gcode"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	qrSize       = 30.0
	thumbTop     = 110.0
)

// ExportTraveler writes a traveler PDF: one page per job with the cutting
// parameters, program statistics, a toolpath thumbnail, and the QR ticket.
func ExportTraveler(path string, jobs []Job) error {
	const op = "report.ExportTraveler"
	if len(jobs) == 0 {
		return core.New(core.KindInputValidation, op, "no jobs to export", nil)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, job := range jobs {
		pdf.AddPage()
		if err := renderJobPage(pdf, job, i+1, len(jobs)); err != nil {
			return err
		}
	}
	return core.Wrap(core.KindResource, op, pdf.OutputFileAndClose(path))
}

func renderJobPage(pdf *fpdf.Fpdf, job Job, pageNum, total int) error {
	cmds := gcode.Parse(job.Program)
	rc := gcode.BuildRenderCache(cmds, 1, false, 0)
	cutLen, rapidLen := rc.Lengths()
	bounds := rc.Bounds()
	duration := gcode.EstimatedDuration(cmds, 3000)

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := job.Name
	if title == "" {
		title = fmt.Sprintf("Job %d", pageNum)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, headerHeight,
		fmt.Sprintf("%s  (%d/%d)", title, pageNum, total), "", 0, "L", false, 0, "")

	// QR ticket, top-right corner.
	ticket := NewTicket(job)
	png, err := ticket.PNG(256)
	if err != nil {
		return err
	}
	imgName := fmt.Sprintf("ticket_%s", ticket.JobID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, pageWidth-marginRight-qrSize, marginTop, qrSize, qrSize, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetXY(pageWidth-marginRight-qrSize, marginTop+qrSize+1)
	pdf.CellFormat(qrSize, 3, ticket.JobID[:8]+" / "+ticket.Checksum, "", 0, "C", false, 0, "")

	// Parameter block.
	pdf.SetFont("Helvetica", "", 10)
	y := marginTop + headerHeight + 4
	rows := [][2]string{
		{"Post-processor", job.Profile},
		{"Tool diameter", fmt.Sprintf("%.1f mm", job.ToolDiameter)},
		{"Cut depth", fmt.Sprintf("%.1f mm", job.CutDepth)},
		{"Safe Z", fmt.Sprintf("%.1f mm", job.SafeZ)},
		{"Feed rate", fmt.Sprintf("%.0f mm/min", job.FeedRate)},
		{"Plunge rate", fmt.Sprintf("%.0f mm/min", job.PlungeRate)},
		{"Spindle", fmt.Sprintf("%.0f rpm", job.SpindleSpeed)},
		{"Program lines", fmt.Sprintf("%d", ticket.Lines)},
		{"Cut length", fmt.Sprintf("%.0f mm", cutLen)},
		{"Rapid length", fmt.Sprintf("%.0f mm", rapidLen)},
		{"Estimated time", formatDuration(duration)},
		{"Work area", fmt.Sprintf("%.0f x %.0f mm", bounds.Width(), bounds.Height())},
	}
	for _, row := range rows {
		pdf.SetXY(marginLeft, y)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(60, 6, row[1], "", 0, "L", false, 0, "")
		y += 6
	}

	renderThumbnail(pdf, rc)
	return nil
}

// renderThumbnail draws the cutting moves scaled into the lower page area,
// one polyline segment per cached cutting segment.
func renderThumbnail(pdf *fpdf.Fpdf, rc *gcode.RenderCache) {
	bounds := rc.Bounds()
	if bounds.IsEmpty() || bounds.Width() <= 0 && bounds.Height() <= 0 {
		return
	}
	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - thumbTop - marginBottom

	scale := math.Min(drawW/math.Max(bounds.Width(), 1e-9), drawH/math.Max(bounds.Height(), 1e-9))
	offX := marginLeft + (drawW-bounds.Width()*scale)/2
	offY := thumbTop + (drawH-bounds.Height()*scale)/2

	// Frame.
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offX, offY, bounds.Width()*scale, bounds.Height()*scale, "D")

	// Toolpath. PDF y grows downward; the design is y-up, so flip here at
	// the display boundary.
	pdf.SetDrawColor(33, 33, 33)
	pdf.SetLineWidth(0.15)
	for _, bucket := range rc.Buckets() {
		for _, seg := range bucket {
			x1 := offX + (seg.FromX-bounds.MinX)*scale
			y1 := offY + (bounds.MaxY-seg.FromY)*scale
			x2 := offX + (seg.ToX-bounds.MinX)*scale
			y2 := offY + (bounds.MaxY-seg.ToY)*scale
			pdf.Line(x1, y1, x2, y2)
		}
	}
}

func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.0f s", seconds)
	}
	mins := int(seconds / 60)
	if mins < 60 {
		return fmt.Sprintf("%d min %d s", mins, int(seconds)%60)
	}
	return fmt.Sprintf("%d h %d min", mins/60, mins%60)
}
