// Package device is the transport-abstracted link to CNC firmware: command
// buffering with flow control, structured response parsing (status reports,
// settings, alarms), and typed event dispatch. The designer and renderer
// never touch a transport directly; they observe the link through its event
// buses.
package device

import (
	"sync"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// Transport is a full-duplex byte link to a controller. Implementations:
// serial (USB), TCP, and the in-memory null transport used by tests.
//
// Send must not block on the wire; OnBytesReceived registers the single
// receiver callback, invoked from the transport's reader goroutine in
// arrival order.
type Transport interface {
	Connect() error
	Disconnect() error
	Send(data []byte) error
	OnBytesReceived(fn func([]byte))
	IsConnected() bool
}

// NullTransport is an in-memory Transport for tests and dry runs. Written
// bytes are recorded; scripted responses are played back to the receiver
// automatically after each write, and Feed delivers arbitrary lines.
type NullTransport struct {
	mu        sync.Mutex
	connected bool
	written   [][]byte
	script    [][]byte
	autoReply bool
	receiver  func([]byte)
}

// NewNullTransport returns a disconnected null transport.
func NewNullTransport() *NullTransport {
	return &NullTransport{}
}

// Script queues response lines to play back. With autoReply, one scripted
// response is delivered after every Send; otherwise the responses stay
// queued and are not delivered (Feed does not read the script).
func (n *NullTransport) Script(autoReply bool, responses ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.autoReply = autoReply
	for _, r := range responses {
		n.script = append(n.script, []byte(r))
	}
}

func (n *NullTransport) Connect() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connected = true
	return nil
}

func (n *NullTransport) Disconnect() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connected = false
	return nil
}

func (n *NullTransport) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.connected
}

func (n *NullTransport) OnBytesReceived(fn func([]byte)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receiver = fn
}

func (n *NullTransport) Send(data []byte) error {
	n.mu.Lock()
	if !n.connected {
		n.mu.Unlock()
		return core.New(core.KindCommunication, "device.NullTransport.Send", "not connected", nil)
	}
	n.written = append(n.written, append([]byte(nil), data...))
	var reply []byte
	var fn func([]byte)
	if n.autoReply && len(n.script) > 0 {
		reply = n.script[0]
		n.script = n.script[1:]
		fn = n.receiver
	}
	n.mu.Unlock()

	if fn != nil && reply != nil {
		fn(reply)
	}
	return nil
}

// Feed delivers line to the receiver, simulating unsolicited controller
// output. It does not consume scripted responses.
func (n *NullTransport) Feed(line string) {
	n.mu.Lock()
	fn := n.receiver
	n.mu.Unlock()
	if fn != nil {
		fn([]byte(line))
	}
}

// Written returns everything sent over the transport, as one string.
func (n *NullTransport) Written() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []byte
	for _, w := range n.written {
		out = append(out, w...)
	}
	return string(out)
}
