package device

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestLink wires a link over a null transport with polling effectively
// disabled so tests drive all traffic explicitly.
func newTestLink(t *testing.T) (*Link, *NullTransport) {
	t.Helper()
	nt := NewNullTransport()
	link := NewLink(nt, HoldOnError)
	link.PollInterval = time.Hour
	if err := link.Connect(); err != nil {
		t.Fatal(err)
	}
	return link, nt
}

func TestSendAckCycle(t *testing.T) {
	link, nt := newTestLink(t)
	defer link.Disconnect("test done")

	var errs []ErrorEvent
	var statuses []ControllerStatus
	var mu sync.Mutex
	link.Errors().Subscribe(func(e ErrorEvent) {
		mu.Lock()
		errs = append(errs, e)
		mu.Unlock()
	})
	link.StatusChanged().Subscribe(func(s ControllerStatus) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})

	link.Writer().Enqueue("G0 X10")
	if _, inflight := link.Writer().Depths(); inflight != 1 {
		t.Fatalf("in-flight depth should reach 1 after send, got %d", inflight)
	}
	if !strings.Contains(nt.Written(), "G0 X10\n") {
		t.Fatalf("command not on the wire: %q", nt.Written())
	}

	nt.Feed("ok\n")
	if _, inflight := link.Writer().Depths(); inflight != 0 {
		t.Fatalf("in-flight depth should return to 0 after ok, got %d", inflight)
	}

	nt.Feed("<Idle|MPos:0,0,0|FS:0,0>\n")

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status event, got %d", len(statuses))
	}
	if statuses[0].State != StateIdle {
		t.Errorf("state = %v, want Idle", statuses[0].State)
	}
	if statuses[0].MPos != (Position{}) {
		t.Errorf("machine position = %+v, want origin", statuses[0].MPos)
	}
	if len(errs) != 0 {
		t.Errorf("no error events expected, got %+v", errs)
	}
}

func TestFlowControlWindow(t *testing.T) {
	link, _ := newTestLink(t)
	defer link.Disconnect("test done")
	w := link.Writer()

	// Each line costs len+1 = 11 bytes; the 127-byte budget holds 11 lines
	// in flight, the rest stay queued.
	line := "G1 X10 F50" // 10 chars
	for i := 0; i < 20; i++ {
		w.Enqueue(line)
	}
	queued, inflight := w.Depths()
	if inflight != 11 {
		t.Errorf("in-flight = %d, want 11 (127-byte window)", inflight)
	}
	if queued != 9 {
		t.Errorf("queued = %d, want 9", queued)
	}
}

func TestErrorHoldsQueue(t *testing.T) {
	link, nt := newTestLink(t)
	defer link.Disconnect("test done")
	w := link.Writer()

	var errored []SendStatus
	w.Events().Subscribe(func(s SendStatus) {
		if s.State == SendErrored {
			errored = append(errored, s)
		}
	})

	w.Enqueue("G1 X10 F100")
	nt.Feed("error:22\n")

	if len(errored) != 1 || errored[0].Code != 22 {
		t.Fatalf("expected one errored send with code 22, got %+v", errored)
	}

	// HoldOnError: new lines queue but do not go out.
	before := nt.Written()
	w.Enqueue("G1 X20 F100")
	if nt.Written() != before {
		t.Error("queue must hold after error:N until resumed")
	}
	w.Resume()
	if !strings.Contains(nt.Written(), "G1 X20") {
		t.Error("resume should release the held queue")
	}
}

func TestAlarmStopsStream(t *testing.T) {
	link, nt := newTestLink(t)
	defer link.Disconnect("test done")

	var alarms []ErrorEvent
	link.Errors().Subscribe(func(e ErrorEvent) { alarms = append(alarms, e) })

	nt.Feed("ALARM:1\n")
	if len(alarms) != 1 || alarms[0].Code != 1 {
		t.Fatalf("expected alarm event, got %+v", alarms)
	}

	before := nt.Written()
	link.Writer().Enqueue("G0 X5")
	if nt.Written() != before {
		t.Error("alarm must hold the stream until acknowledged")
	}
}

func TestRetrieveSettings(t *testing.T) {
	link, nt := newTestLink(t)
	defer link.Disconnect("test done")

	var rows []SettingRow
	link.SettingsRows().Subscribe(func(r SettingRow) { rows = append(rows, r) })

	type result struct {
		n   int
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		n, err := link.RetrieveSettings(context.Background())
		resCh <- result{n, err}
	}()

	// Wait for the $$ request to hit the wire, then play the dump.
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(nt.Written(), "$$\n") {
		if time.Now().After(deadline) {
			t.Fatal("$$ was never sent")
		}
		time.Sleep(time.Millisecond)
	}
	nt.Feed("$110=5000.000\n")
	nt.Feed("$111=5000.000\n")
	nt.Feed("$120=500.000\n")
	nt.Feed("ok\n")

	select {
	case res := <-resCh:
		if res.err != nil {
			t.Fatal(res.err)
		}
		if res.n != 3 {
			t.Errorf("retrieved %d rows, want 3", res.n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retrieval did not complete")
	}

	if len(rows) != 3 {
		t.Errorf("expected 3 settings-row events, got %d", len(rows))
	}
	s, ok := link.Settings().Get(110)
	if !ok || s.Value != "5000.000" {
		t.Errorf("setting 110 = %+v", s)
	}
	if s.Unit != "mm/min" || s.Category != "Axes" {
		t.Errorf("setting 110 metadata: %+v", s)
	}
}

func TestRetrieveSettingsCancellable(t *testing.T) {
	link, _ := newTestLink(t)
	defer link.Disconnect("test done")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := link.RetrieveSettings(ctx); err == nil {
		t.Error("cancelled retrieval must return an error")
	}
}

func TestSilentControllerDisconnects(t *testing.T) {
	nt := NewNullTransport()
	link := NewLink(nt, HoldOnError)
	link.PollInterval = 5 * time.Millisecond
	link.MaxMissedPolls = 2

	var mu sync.Mutex
	disconnected := false
	link.ConnectionChanged().Subscribe(func(e ConnectionEvent) {
		mu.Lock()
		if !e.Connected {
			disconnected = true
		}
		mu.Unlock()
	})

	if err := link.Connect(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		done := disconnected
		mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("silent controller never triggered disconnect")
		}
		time.Sleep(time.Millisecond)
	}
	if link.IsConnected() {
		t.Error("transport should be closed after poll timeout")
	}
}

func TestSoftResetClearsQueue(t *testing.T) {
	link, nt := newTestLink(t)
	defer link.Disconnect("test done")

	w := link.Writer()
	for i := 0; i < 30; i++ {
		w.Enqueue("G1 X100 F100")
	}
	if err := link.SendRealtime(RTSoftReset); err != nil {
		t.Fatal(err)
	}
	queued, inflight := w.Depths()
	if queued != 0 || inflight != 0 {
		t.Errorf("soft reset must clear the queue: queued=%d inflight=%d", queued, inflight)
	}
	if !strings.Contains(nt.Written(), "\x18") {
		t.Error("soft reset byte not sent")
	}
}
