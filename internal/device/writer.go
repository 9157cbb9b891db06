package device

import (
	"strings"
	"sync"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// defaultRxBudget is the GRBL serial receive buffer size in bytes; the
// in-flight window never exceeds it unless a status report advertises a
// different depth.
const defaultRxBudget = 127

// SendState tracks one queued line through its lifecycle.
type SendState int

const (
	SendQueued SendState = iota
	SendSent
	SendAcked
	SendErrored
)

// SendStatus is the event emitted as a line changes state.
type SendStatus struct {
	Line  string
	State SendState
	Code  int // firmware error code when State == SendErrored
}

// ErrorPolicy selects what happens to the queue on an error:N response.
type ErrorPolicy int

const (
	// HoldOnError keeps the remaining queue paused for the user to decide,
	// the default: firmware errors are never auto-retried.
	HoldOnError ErrorPolicy = iota
	// ContinueOnError drops the failed line and keeps streaming.
	ContinueOnError
)

// BufferedWriter wraps a transport with character-counting flow control:
// lines stream until the controller's receive buffer would overflow, then
// wait; every `ok` releases the head of the in-flight window and pulls the
// next line through. This keeps the controller's planner fed without ever
// overrunning it.
type BufferedWriter struct {
	mu        sync.Mutex
	transport Transport
	pending   []string
	inflight  []string
	budget    int
	used      int
	held      bool
	policy    ErrorPolicy

	events *core.Bus[SendStatus]
}

// NewBufferedWriter wraps transport. The caller routes classified
// responses into HandleResponse; the writer does not read the transport
// itself.
func NewBufferedWriter(transport Transport, policy ErrorPolicy) *BufferedWriter {
	return &BufferedWriter{
		transport: transport,
		budget:    defaultRxBudget,
		policy:    policy,
		events:    core.NewBus[SendStatus](),
	}
}

// Events is the send-status bus (queued, sent, acknowledged, errored).
func (w *BufferedWriter) Events() *core.Bus[SendStatus] { return w.events }

// Enqueue appends one command line (terminator added on the wire) and
// pumps the window.
func (w *BufferedWriter) Enqueue(line string) {
	line = strings.TrimRight(line, "\r\n")
	w.mu.Lock()
	w.pending = append(w.pending, line)
	w.mu.Unlock()
	w.events.Publish(SendStatus{Line: line, State: SendQueued})
	w.pump()
}

// EnqueueProgram splits a whole program into lines and queues each
// non-empty one.
func (w *BufferedWriter) EnqueueProgram(program string) {
	for _, line := range strings.Split(program, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		w.Enqueue(line)
	}
}

// SendRealtime writes a single-byte real-time command (`?`, `!`, `~`,
// 0x18) directly, bypassing the queue and the flow-control window.
func (w *BufferedWriter) SendRealtime(b byte) error {
	return w.transport.Send([]byte{b})
}

// pump sends queued lines while they fit in the controller's receive
// buffer. Each line costs its length plus the LF terminator.
func (w *BufferedWriter) pump() {
	for {
		w.mu.Lock()
		if w.held || len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		line := w.pending[0]
		cost := len(line) + 1
		if w.used+cost > w.budget && len(w.inflight) > 0 {
			w.mu.Unlock()
			return
		}
		w.pending = w.pending[1:]
		w.inflight = append(w.inflight, line)
		w.used += cost
		w.mu.Unlock()

		if err := w.transport.Send([]byte(line + "\n")); err != nil {
			w.mu.Lock()
			// Put it back; a reconnect will resume from here.
			w.inflight = w.inflight[:len(w.inflight)-1]
			w.used -= cost
			w.pending = append([]string{line}, w.pending...)
			w.held = true
			w.mu.Unlock()
			w.events.Publish(SendStatus{Line: line, State: SendErrored})
			return
		}
		w.events.Publish(SendStatus{Line: line, State: SendSent})
	}
}

// HandleResponse feeds a classified firmware response into the flow
// control: `ok` acknowledges the in-flight head, `error:N` surfaces it and
// applies the error policy. Ack-to-send matching is strictly FIFO.
func (w *BufferedWriter) HandleResponse(resp Response) {
	switch resp.Kind {
	case RespOK:
		line, ok := w.popInflight()
		if ok {
			w.events.Publish(SendStatus{Line: line, State: SendAcked})
		}
		w.pump()
	case RespError:
		line, ok := w.popInflight()
		if ok {
			w.events.Publish(SendStatus{Line: line, State: SendErrored, Code: resp.Code})
		}
		if w.policy == HoldOnError {
			w.Hold()
		} else {
			w.pump()
		}
	case RespAlarm:
		// An alarm stops the stream; the queue holds until the user
		// acknowledges and resumes or resets.
		w.Hold()
	}
}

func (w *BufferedWriter) popInflight() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.inflight) == 0 {
		return "", false
	}
	line := w.inflight[0]
	w.inflight = w.inflight[1:]
	w.used -= len(line) + 1
	if w.used < 0 {
		w.used = 0
	}
	return line, true
}

// Hold pauses sending; queued lines stay queued.
func (w *BufferedWriter) Hold() {
	w.mu.Lock()
	w.held = true
	w.mu.Unlock()
}

// Resume releases a hold and pumps.
func (w *BufferedWriter) Resume() {
	w.mu.Lock()
	w.held = false
	w.mu.Unlock()
	w.pump()
}

// Clear drops the queue and the in-flight window, used after a soft reset.
func (w *BufferedWriter) Clear() {
	w.mu.Lock()
	w.pending = nil
	w.inflight = nil
	w.used = 0
	w.held = false
	w.mu.Unlock()
}

// Depths reports (queued, in-flight) counts.
func (w *BufferedWriter) Depths() (queued, inflight int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending), len(w.inflight)
}

// SetBudget adjusts the flow-control window to a controller-reported
// receive buffer size.
func (w *BufferedWriter) SetBudget(bytes int) {
	if bytes <= 0 {
		return
	}
	w.mu.Lock()
	w.budget = bytes
	w.mu.Unlock()
	w.pump()
}
