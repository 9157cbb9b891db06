package device

import (
	"strconv"
	"strings"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// MachineState is the controller's reported operating state.
type MachineState int

const (
	StateUnknown MachineState = iota
	StateIdle
	StateRun
	StateHold
	StateAlarm
	StateJog
	StateHome
	StateDoor
	StateCheck
)

func (s MachineState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRun:
		return "Run"
	case StateHold:
		return "Hold"
	case StateAlarm:
		return "Alarm"
	case StateJog:
		return "Jog"
	case StateHome:
		return "Home"
	case StateDoor:
		return "Door"
	case StateCheck:
		return "Check"
	default:
		return "Unknown"
	}
}

func parseMachineState(s string) MachineState {
	// GRBL 1.1 may suffix a sub-state, e.g. "Hold:0".
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "Idle":
		return StateIdle
	case "Run":
		return StateRun
	case "Hold":
		return StateHold
	case "Alarm":
		return StateAlarm
	case "Jog":
		return StateJog
	case "Home":
		return StateHome
	case "Door":
		return StateDoor
	case "Check":
		return StateCheck
	default:
		return StateUnknown
	}
}

// Position is a 3-axis machine coordinate.
type Position struct {
	X, Y, Z float64
}

// ControllerStatus is one parsed real-time status report. WPos is derived
// from MPos and the work coordinate offset when the report carries only
// one of the two, per the GRBL 1.1 report format.
type ControllerStatus struct {
	State       MachineState
	MPos        Position
	WPos        Position
	WCO         Position
	Feed        float64
	Spindle     float64
	BufferAvail int // planner blocks available, from Bf:
	RxAvail     int // serial rx bytes available, from Bf:
	HasBuffer   bool
	Pins        string // raw Pn: flags
	ActiveWCS   int    // 54..59, carried over from the modal query
}

// ParseStatusReport parses a bracketed GRBL status report
// (`<Idle|MPos:0,0,0|FS:0,0|...>`) into a ControllerStatus.
func ParseStatusReport(line string) (ControllerStatus, error) {
	const op = "device.ParseStatusReport"
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[0] != '<' || trimmed[len(trimmed)-1] != '>' {
		return ControllerStatus{}, core.New(core.KindProtocol, op, "not a status report: "+line, nil)
	}
	fields := strings.Split(trimmed[1:len(trimmed)-1], "|")
	if len(fields) == 0 || fields[0] == "" {
		return ControllerStatus{}, core.New(core.KindProtocol, op, "empty status report", nil)
	}

	st := ControllerStatus{State: parseMachineState(fields[0])}
	hasMPos, hasWPos := false, false
	for _, f := range fields[1:] {
		kv := strings.SplitN(f, ":", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "MPos":
			st.MPos = parsePosition(kv[1])
			hasMPos = true
		case "WPos":
			st.WPos = parsePosition(kv[1])
			hasWPos = true
		case "WCO":
			st.WCO = parsePosition(kv[1])
		case "FS":
			parts := strings.Split(kv[1], ",")
			if len(parts) >= 1 {
				st.Feed, _ = strconv.ParseFloat(parts[0], 64)
			}
			if len(parts) >= 2 {
				st.Spindle, _ = strconv.ParseFloat(parts[1], 64)
			}
		case "F":
			st.Feed, _ = strconv.ParseFloat(kv[1], 64)
		case "Bf":
			parts := strings.Split(kv[1], ",")
			if len(parts) == 2 {
				st.BufferAvail, _ = strconv.Atoi(parts[0])
				st.RxAvail, _ = strconv.Atoi(parts[1])
				st.HasBuffer = true
			}
		case "Pn":
			st.Pins = kv[1]
		}
	}

	// GRBL reports one of MPos/WPos and the WCO periodically; the other
	// position follows from MPos = WPos + WCO.
	if hasMPos && !hasWPos {
		st.WPos = Position{st.MPos.X - st.WCO.X, st.MPos.Y - st.WCO.Y, st.MPos.Z - st.WCO.Z}
	}
	if hasWPos && !hasMPos {
		st.MPos = Position{st.WPos.X + st.WCO.X, st.WPos.Y + st.WCO.Y, st.WPos.Z + st.WCO.Z}
	}
	return st, nil
}

func parsePosition(s string) Position {
	parts := strings.Split(s, ",")
	var p Position
	if len(parts) >= 1 {
		p.X, _ = strconv.ParseFloat(parts[0], 64)
	}
	if len(parts) >= 2 {
		p.Y, _ = strconv.ParseFloat(parts[1], 64)
	}
	if len(parts) >= 3 {
		p.Z, _ = strconv.ParseFloat(parts[2], 64)
	}
	return p
}
