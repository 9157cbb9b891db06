package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gcodekit5/gcodekit5/internal/device"
)

// dialTestServer spins up the handler over httptest and connects one
// websocket client with the given token.
func dialTestServer(t *testing.T, srv *Server, token string) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, ts
}

func TestServerRejectsMissingToken(t *testing.T) {
	srv := NewServer(testSecret)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("expected 401, got %+v", resp)
	}
}

func TestServerBroadcastsStatus(t *testing.T) {
	srv := NewServer(testSecret)
	token, err := IssueToken(testSecret, ScopeRead, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	conn, ts := dialTestServer(t, srv, token)
	defer ts.Close()
	defer conn.Close()

	// Wait for the client to register before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	srv.Broadcast(Envelope{Type: "status", Payload: map[string]any{"state": "Idle"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	msg := string(data)
	if !strings.Contains(msg, `"type":"status"`) || !strings.Contains(msg, "Idle") {
		t.Errorf("unexpected broadcast payload: %s", msg)
	}
}

func TestServerAttachForwardsLinkEvents(t *testing.T) {
	nt := device.NewNullTransport()
	link := device.NewLink(nt, device.HoldOnError)
	link.PollInterval = time.Hour
	if err := link.Connect(); err != nil {
		t.Fatal(err)
	}
	defer link.Disconnect("test done")

	srv := NewServer(testSecret)
	srv.Attach(link)
	defer srv.Detach()

	token, err := IssueToken(testSecret, ScopeRead, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	conn, ts := dialTestServer(t, srv, token)
	defer ts.Close()
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	nt.Feed("<Run|MPos:1.000,2.000,0.000|FS:400,12000>\n")

	// The status report arrives as both a raw line and a status envelope;
	// read until the status one shows up.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("no status envelope received: %v", err)
		}
		msg := string(data)
		if strings.Contains(msg, `"type":"status"`) {
			if !strings.Contains(msg, "Run") {
				t.Errorf("status payload missing state: %s", msg)
			}
			return
		}
	}
}
