package device

import (
	"context"
	"sync"
	"time"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Real-time single-byte commands, sent outside the line queue.
const (
	RTStatusQuery byte = '?'
	RTFeedHold    byte = '!'
	RTCycleStart  byte = '~'
	RTSoftReset   byte = 0x18
)

// ConnectionEvent announces a link state change.
type ConnectionEvent struct {
	SessionID string
	Connected bool
	Reason    string
}

// ErrorEvent is a typed controller/communication failure surfaced on the
// bus.
type ErrorEvent struct {
	Kind    core.Kind
	Code    int
	Message string
	Line    string
}

// Link is the full-duplex connection to one controller: it owns the
// transport, the buffered writer, the settings snapshot, and the status
// poller, and publishes everything it learns on typed buses. Bus publishes
// for one link happen from the transport's reader goroutine, the caller's
// goroutine for connect/disconnect, or the poller goroutine for the
// poll-timeout error and disconnect, so per-source delivery order matches
// arrival order.
type Link struct {
	transport Transport
	writer    *BufferedWriter
	settings  *Settings
	sessionID string

	connectionBus *core.Bus[ConnectionEvent]
	statusBus     *core.Bus[ControllerStatus]
	settingsBus   *core.Bus[SettingRow]
	errorBus      *core.Bus[ErrorEvent]
	rawBus        *core.Bus[string]

	mu          sync.Mutex
	assembler   lineAssembler
	status      ControllerStatus
	missedPolls int
	pollStop    chan struct{}

	retrieving   bool
	retrieved    int
	retrieveDone chan struct{}

	// PollInterval and MaxMissedPolls are read at Connect time.
	PollInterval   time.Duration
	MaxMissedPolls int
}

// NewLink builds a link over the given transport with the default 5 Hz
// status poll and 6-missed-poll disconnect threshold.
func NewLink(transport Transport, policy ErrorPolicy) *Link {
	return &Link{
		transport:      transport,
		writer:         NewBufferedWriter(transport, policy),
		settings:       NewSettings(),
		sessionID:      core.NewOpaqueID(),
		connectionBus:  core.NewBus[ConnectionEvent](),
		statusBus:      core.NewBus[ControllerStatus](),
		settingsBus:    core.NewBus[SettingRow](),
		errorBus:       core.NewBus[ErrorEvent](),
		rawBus:         core.NewBus[string](),
		PollInterval:   200 * time.Millisecond,
		MaxMissedPolls: 6,
	}
}

// SessionID identifies this connection attempt across events.
func (l *Link) SessionID() string { return l.sessionID }

// Writer exposes the buffered writer for streaming programs.
func (l *Link) Writer() *BufferedWriter { return l.writer }

// Settings exposes the device settings snapshot.
func (l *Link) Settings() *Settings { return l.settings }

// Event buses. Subscribers receive events in publish order per source.
func (l *Link) ConnectionChanged() *core.Bus[ConnectionEvent] { return l.connectionBus }
func (l *Link) StatusChanged() *core.Bus[ControllerStatus]    { return l.statusBus }
func (l *Link) SettingsRows() *core.Bus[SettingRow]           { return l.settingsBus }
func (l *Link) Errors() *core.Bus[ErrorEvent]                 { return l.errorBus }
func (l *Link) RawLines() *core.Bus[string]                   { return l.rawBus }

// Connect opens the transport, wires the reader, and starts the status
// poller.
func (l *Link) Connect() error {
	l.transport.OnBytesReceived(l.onBytes)
	if err := l.transport.Connect(); err != nil {
		return err
	}
	l.mu.Lock()
	l.missedPolls = 0
	l.pollStop = make(chan struct{})
	stop := l.pollStop
	l.mu.Unlock()

	l.connectionBus.Publish(ConnectionEvent{SessionID: l.sessionID, Connected: true})
	go l.pollLoop(stop)
	return nil
}

// Disconnect stops polling and closes the transport.
func (l *Link) Disconnect(reason string) error {
	l.mu.Lock()
	if l.pollStop != nil {
		close(l.pollStop)
		l.pollStop = nil
	}
	l.mu.Unlock()

	err := l.transport.Disconnect()
	l.connectionBus.Publish(ConnectionEvent{SessionID: l.sessionID, Connected: false, Reason: reason})
	return err
}

// IsConnected reports the transport state.
func (l *Link) IsConnected() bool { return l.transport.IsConnected() }

// Status returns the most recent controller status.
func (l *Link) Status() ControllerStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// SendRealtime forwards a real-time byte around the queue.
func (l *Link) SendRealtime(b byte) error {
	if b == RTSoftReset {
		l.writer.Clear()
	}
	return l.writer.SendRealtime(b)
}

// pollLoop issues `?` at the configured rate and trips a disconnect after
// MaxMissedPolls consecutive silent intervals.
func (l *Link) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(l.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			l.missedPolls++
			missed := l.missedPolls
			l.mu.Unlock()
			if missed > l.MaxMissedPolls {
				l.errorBus.Publish(ErrorEvent{
					Kind:    core.KindCommunication,
					Message: "controller silent, disconnecting",
				})
				l.Disconnect("poll timeout")
				return
			}
			if err := l.writer.SendRealtime(RTStatusQuery); err != nil {
				l.Disconnect("transport write failed")
				return
			}
		}
	}
}

// onBytes is the transport receiver: assemble lines, classify, dispatch.
func (l *Link) onBytes(data []byte) {
	l.mu.Lock()
	lines := l.assembler.push(data)
	l.mu.Unlock()
	for _, line := range lines {
		l.handleLine(line)
	}
}

func (l *Link) handleLine(line string) {
	if line == "" {
		return
	}
	l.rawBus.Publish(line)
	resp := ClassifyLine(line)
	l.writer.HandleResponse(resp)

	switch resp.Kind {
	case RespStatus:
		l.mu.Lock()
		l.status = resp.Status
		l.missedPolls = 0
		l.mu.Unlock()
		if resp.Status.HasBuffer {
			l.writer.SetBudget(resp.Status.RxAvail)
		}
		l.statusBus.Publish(resp.Status)
	case RespSetting:
		l.settings.Accumulate(resp.Setting)
		l.mu.Lock()
		if l.retrieving {
			l.retrieved++
		}
		l.mu.Unlock()
		l.settingsBus.Publish(resp.Setting)
	case RespOK:
		l.mu.Lock()
		if l.retrieving {
			// The ok terminating a $$ dump ends the retrieval.
			l.retrieving = false
			done := l.retrieveDone
			l.retrieveDone = nil
			l.mu.Unlock()
			if done != nil {
				close(done)
			}
			return
		}
		l.mu.Unlock()
	case RespError:
		l.errorBus.Publish(ErrorEvent{
			Kind: core.KindCommunication, Code: resp.Code,
			Message: ErrorMessage(resp.Code), Line: resp.Raw,
		})
	case RespAlarm:
		l.errorBus.Publish(ErrorEvent{
			Kind: core.KindCommunication, Code: resp.Code,
			Message: AlarmMessage(resp.Code), Line: resp.Raw,
		})
	case RespOther:
		// Malformed or unrecognized firmware output: log-worthy but
		// recoverable; surfaced as a protocol event and skipped.
		l.errorBus.Publish(ErrorEvent{Kind: core.KindProtocol, Message: "unrecognized line", Line: resp.Raw})
	}
}

// RetrieveSettings sends `$$` and accumulates `$N=V` rows until the
// terminating ok, reporting progress through the settings bus. It blocks
// until the dump completes or ctx is cancelled; a link that drops during
// the dump does not end the wait.
func (l *Link) RetrieveSettings(ctx context.Context) (int, error) {
	const op = "device.Link.RetrieveSettings"
	if !l.IsConnected() {
		return 0, core.New(core.KindCommunication, op, "not connected", nil)
	}
	l.mu.Lock()
	if l.retrieving {
		l.mu.Unlock()
		return 0, core.New(core.KindCommunication, op, "retrieval already in progress", nil)
	}
	l.retrieving = true
	l.retrieved = 0
	done := make(chan struct{})
	l.retrieveDone = done
	l.mu.Unlock()

	if err := l.transport.Send([]byte("$$\n")); err != nil {
		l.mu.Lock()
		l.retrieving = false
		l.retrieveDone = nil
		l.mu.Unlock()
		return 0, err
	}

	select {
	case <-done:
		l.mu.Lock()
		n := l.retrieved
		l.mu.Unlock()
		return n, nil
	case <-ctx.Done():
		l.mu.Lock()
		l.retrieving = false
		l.retrieveDone = nil
		n := l.retrieved
		l.mu.Unlock()
		return n, core.Wrap(core.KindCommunication, op, ctx.Err())
	}
}
