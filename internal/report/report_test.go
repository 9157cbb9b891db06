package report

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleProgram = `; test job
G21
G90
G0 Z5.000
G0 X0.000 Y0.000
G1 Z-1.000 F150.000
G1 X40.000 Y0.000 F400.000
G1 X40.000 Y40.000 F400.000
G1 X0.000 Y40.000 F400.000
G1 X0.000 Y0.000 F400.000
G0 Z5.000
M30
`

func sampleJob() Job {
	return Job{
		Name:         "Test plate",
		Profile:      "Grbl",
		ToolDiameter: 6,
		FeedRate:     400,
		PlungeRate:   150,
		SpindleSpeed: 12000,
		CutDepth:     -1,
		SafeZ:        5,
		Program:      sampleProgram,
	}
}

func TestNewTicketDeterministic(t *testing.T) {
	job := sampleJob()
	job.ID = "fixed-id"
	a := NewTicket(job)
	b := NewTicket(job)
	if a != b {
		t.Error("same job must produce the same ticket")
	}
	if a.Lines != 12 {
		t.Errorf("line count = %d, want 12", a.Lines)
	}
	if len(a.Checksum) != 8 {
		t.Errorf("checksum %q should be 8 hex digits", a.Checksum)
	}
}

func TestNewTicketMintsID(t *testing.T) {
	a := NewTicket(sampleJob())
	b := NewTicket(sampleJob())
	if a.JobID == "" || a.JobID == b.JobID {
		t.Error("tickets without an explicit id get unique ids")
	}
	if a.Checksum != b.Checksum {
		t.Error("checksum depends only on the program text")
	}
}

func TestTicketPNG(t *testing.T) {
	png, err := NewTicket(sampleJob()).PNG(128)
	if err != nil {
		t.Fatal(err)
	}
	if len(png) == 0 {
		t.Error("empty QR image")
	}
	// PNG magic header.
	if string(png[1:4]) != "PNG" {
		t.Error("ticket image is not a PNG")
	}
}

func TestExportTraveler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traveler.pdf")
	if err := ExportTraveler(path, []Job{sampleJob()}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("traveler PDF is empty")
	}
}

func TestExportTravelerRejectsEmpty(t *testing.T) {
	if err := ExportTraveler(filepath.Join(t.TempDir(), "x.pdf"), nil); err == nil {
		t.Error("expected error for no jobs")
	}
}
