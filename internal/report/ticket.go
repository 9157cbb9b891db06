// Package report exports shop-floor paperwork for generated jobs: a
// per-job traveler PDF with a toolpath thumbnail and a QR-coded ticket for
// lookup at the machine.
package report

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Job describes one generated program for the traveler.
type Job struct {
	ID      string // opaque job id; minted when empty
	Name    string
	Profile string

	ToolDiameter float64
	FeedRate     float64
	PlungeRate   float64
	SpindleSpeed float64
	CutDepth     float64
	SafeZ        float64

	Program string // the generated G-code text
}

// Ticket is the payload encoded into a job's QR code: enough to identify
// the job at the machine and verify the loaded file matches the paperwork.
type Ticket struct {
	JobID    string `json:"job_id"`
	Name     string `json:"name"`
	Lines    int    `json:"lines"`
	Checksum string `json:"checksum"`
}

// NewTicket builds the ticket for a job. The checksum is a CRC-32 of the
// program text, so an identical job with a set ID yields an identical
// ticket; a job without an ID gets a freshly minted one on every call.
func NewTicket(job Job) Ticket {
	id := job.ID
	if id == "" {
		id = core.NewOpaqueID()
	}
	lines := 0
	for _, l := range strings.Split(job.Program, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	return Ticket{
		JobID:    id,
		Name:     job.Name,
		Lines:    lines,
		Checksum: fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(job.Program))),
	}
}

// PNG renders the ticket as a QR code PNG of the given pixel size.
func (t Ticket) PNG(size int) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, core.Wrap(core.KindResource, "report.Ticket.PNG", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, core.Wrap(core.KindResource, "report.Ticket.PNG", err)
	}
	return png, nil
}
