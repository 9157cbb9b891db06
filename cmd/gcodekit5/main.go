// Command gcodekit5 is the headless workbench CLI: batch toolpath
// generation from job lists, G-code inspection, streaming to a controller,
// and the telemetry bridge. The desktop GUI sits on the same internal
// packages; nothing here is GUI-bound.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gcodekit5/gcodekit5/internal/cam"
	"github.com/gcodekit5/gcodekit5/internal/device"
	"github.com/gcodekit5/gcodekit5/internal/gcode"
	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/importer"
	"github.com/gcodekit5/gcodekit5/internal/report"
	"github.com/gcodekit5/gcodekit5/internal/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "generate":
		err = cmdGenerate(os.Args[2:])
	case "stats":
		err = cmdStats(os.Args[2:])
	case "stream":
		err = cmdStream(os.Args[2:])
	case "settings":
		err = cmdSettings(os.Args[2:])
	case "telemetry":
		err = cmdTelemetry(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "gcodekit5:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: gcodekit5 <command> [flags]

commands:
  generate   generate G-code programs from a CSV/Excel job list
  stats      print bounds, lengths, and estimated duration of a program
  stream     send a program to a connected controller
  settings   retrieve controller settings ($$) into a JSON snapshot
  telemetry  serve controller status over websocket`)
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	jobsPath := fs.String("jobs", "", "job list file (.csv, .xlsx)")
	outDir := fs.String("out", ".", "output directory")
	profile := fs.String("profile", "Grbl", "post-processor profile")
	tool := fs.Float64("tool", 3.175, "tool diameter, mm")
	feed := fs.Float64("feed", 600, "feed rate, mm/min")
	plunge := fs.Float64("plunge", 200, "plunge rate, mm/min")
	spindle := fs.Float64("spindle", 12000, "spindle speed, rpm")
	safeZ := fs.Float64("safez", 5, "safe Z height, mm")
	stepdown := fs.Float64("stepdown", 1.5, "depth per pass, mm")
	traveler := fs.String("traveler", "", "also write a traveler PDF to this path")
	fs.Parse(args)

	if *jobsPath == "" {
		return fmt.Errorf("generate: -jobs is required")
	}

	var list importer.JobListResult
	if strings.HasSuffix(strings.ToLower(*jobsPath), ".csv") {
		list = importer.ImportJobListCSV(*jobsPath)
	} else {
		list = importer.ImportJobListExcel(*jobsPath)
	}
	for _, w := range list.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, e := range list.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
	if len(list.Jobs) == 0 {
		return fmt.Errorf("generate: no usable jobs in %s", *jobsPath)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}

	var travelerJobs []report.Job
	for i, job := range list.Jobs {
		depth := job.Depth
		if depth <= 0 {
			depth = 3
		}
		prm := cam.Params{
			ToolDiameter: *tool,
			CutDepth:     -depth,
			SafeZ:        *safeZ,
			FeedRate:     *feed,
			PlungeRate:   *plunge,
			SpindleSpeed: *spindle,
			StepDown:     *stepdown,
			Profile:      *profile,
		}
		region := geo.Polygon{Outer: geo.Path{
			geo.Pt(0, 0), geo.Pt(job.Width, 0), geo.Pt(job.Width, job.Height), geo.Pt(0, job.Height),
		}}

		var program string
		var err error
		switch job.Operation {
		case importer.JobPocket:
			program, err = cam.Pocket([]geo.Polygon{region}, cam.PocketParams{Params: prm, Strategy: cam.OffsetSpiral})
		case importer.JobDrill:
			program, err = cam.Drill([]geo.Point2D{{X: job.Width / 2, Y: job.Height / 2}}, cam.DrillParams{Params: prm})
		case importer.JobEngrave:
			program, err = cam.EngraveVector([]geo.Path{region.Outer}, cam.VectorParams{Params: prm})
		default:
			program, err = cam.Outline([]geo.Polygon{region}, cam.SideOutside, prm)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: job %q: %v\n", job.Label, err)
			continue
		}

		name := fmt.Sprintf("%02d_%s.nc", i+1, sanitize(job.Label))
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(program), 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)

		travelerJobs = append(travelerJobs, report.Job{
			Name:         job.Label,
			Profile:      *profile,
			ToolDiameter: *tool,
			FeedRate:     *feed,
			PlungeRate:   *plunge,
			SpindleSpeed: *spindle,
			CutDepth:     -depth,
			SafeZ:        *safeZ,
			Program:      program,
		})
	}

	if *traveler != "" && len(travelerJobs) > 0 {
		if err := report.ExportTraveler(*traveler, travelerJobs); err != nil {
			return err
		}
		fmt.Println("wrote", *traveler)
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func cmdStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	rapid := fs.Float64("rapid", 3000, "machine rapid rate for time estimates, mm/min")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("stats: exactly one program file expected")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	cmds := gcode.Parse(string(data))
	rc := gcode.BuildRenderCache(cmds, 0, false, 0)
	cut, rapidLen := rc.Lengths()
	cutN, rapidN := rc.Counts()
	b := rc.Bounds()

	fmt.Printf("commands:  %d (%d cuts, %d rapids)\n", len(cmds), cutN, rapidN)
	fmt.Printf("bounds:    X %.2f..%.2f  Y %.2f..%.2f mm\n", b.MinX, b.MaxX, b.MinY, b.MaxY)
	fmt.Printf("cut:       %.1f mm\n", cut)
	fmt.Printf("rapid:     %.1f mm\n", rapidLen)
	fmt.Printf("estimated: %.0f s\n", gcode.EstimatedDuration(cmds, *rapid))
	return nil
}

func openLink(portFlag, tcpFlag string, baud int) (*device.Link, error) {
	var transport device.Transport
	switch {
	case tcpFlag != "":
		transport = device.NewTCPTransport(tcpFlag, 5*time.Second)
	case portFlag != "":
		transport = device.NewSerialTransport(device.SerialConfig{Device: portFlag, Baud: baud})
	default:
		ports, err := device.ListPorts()
		if err != nil || len(ports) == 0 {
			return nil, fmt.Errorf("no serial port found; use -port or -tcp")
		}
		transport = device.NewSerialTransport(device.DefaultSerialConfig(ports[0]))
	}
	link := device.NewLink(transport, device.HoldOnError)
	if err := link.Connect(); err != nil {
		return nil, err
	}
	return link, nil
}

func cmdStream(args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	port := fs.String("port", "", "serial device path")
	tcp := fs.String("tcp", "", "host:port of a networked controller")
	baud := fs.Int("baud", 115200, "serial baud rate")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("stream: exactly one program file expected")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	link, err := openLink(*port, *tcp, *baud)
	if err != nil {
		return err
	}
	defer link.Disconnect("stream finished")

	total := 0
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			total++
		}
	}
	if total == 0 {
		return fmt.Errorf("stream: %s has no commands", fs.Arg(0))
	}

	done := make(chan struct{})
	acked := 0
	link.Writer().Events().Subscribe(func(s device.SendStatus) {
		if s.State == device.SendAcked {
			acked++
			fmt.Printf("\r%d/%d", acked, total)
			if acked == total {
				close(done)
			}
		}
	})
	link.Errors().Subscribe(func(e device.ErrorEvent) {
		fmt.Fprintf(os.Stderr, "\ncontroller: %s (%s)\n", e.Message, e.Line)
	})

	link.Writer().EnqueueProgram(string(data))
	<-done
	fmt.Println("\ndone")
	return nil
}

func cmdSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	port := fs.String("port", "", "serial device path")
	tcp := fs.String("tcp", "", "host:port of a networked controller")
	baud := fs.Int("baud", 115200, "serial baud rate")
	out := fs.String("out", "settings.json", "snapshot output path")
	timeout := fs.Duration("timeout", 10*time.Second, "retrieval timeout")
	fs.Parse(args)

	link, err := openLink(*port, *tcp, *baud)
	if err != nil {
		return err
	}
	defer link.Disconnect("settings retrieved")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	n, err := link.RetrieveSettings(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("retrieved %d settings\n", n)
	if err := link.Settings().SaveSnapshot(*out); err != nil {
		return err
	}
	fmt.Println("wrote", *out)
	return nil
}

func cmdTelemetry(args []string) error {
	fs := flag.NewFlagSet("telemetry", flag.ExitOnError)
	port := fs.String("port", "", "serial device path")
	tcp := fs.String("tcp", "", "host:port of a networked controller")
	baud := fs.Int("baud", 115200, "serial baud rate")
	listen := fs.String("listen", ":8791", "websocket listen address")
	secret := fs.String("secret", "", "token signing secret")
	fs.Parse(args)

	if *secret == "" {
		return fmt.Errorf("telemetry: -secret is required")
	}

	link, err := openLink(*port, *tcp, *baud)
	if err != nil {
		return err
	}
	defer link.Disconnect("telemetry stopped")

	srv := telemetry.NewServer([]byte(*secret))
	srv.Attach(link)
	defer srv.Detach()

	token, err := telemetry.IssueToken([]byte(*secret), telemetry.ScopeRead, 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println("dashboard token:", token)
	fmt.Println("listening on", *listen)

	mux := http.NewServeMux()
	mux.Handle("/ws", srv.Handler())
	return http.ListenAndServe(*listen, mux)
}
