package device

import (
	"net"
	"sync"
	"time"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// TCPTransport connects to a networked controller (GRBL-over-WiFi bridges,
// TinyG ethernet adapters) over a plain TCP stream.
type TCPTransport struct {
	addr    string
	timeout time.Duration

	mu       sync.Mutex
	conn     net.Conn
	receiver func([]byte)
	closing  chan struct{}
}

// NewTCPTransport builds a transport for host:port. timeout bounds the
// connect; zero means the 5 second default.
func NewTCPTransport(addr string, timeout time.Duration) *TCPTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPTransport{addr: addr, timeout: timeout}
}

func (t *TCPTransport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.addr, t.timeout)
	if err != nil {
		return core.Wrap(core.KindCommunication, "device.TCPTransport.Connect", err)
	}
	t.conn = conn
	t.closing = make(chan struct{})
	go t.readLoop(conn, t.closing)
	return nil
}

func (t *TCPTransport) readLoop(conn net.Conn, closing chan struct{}) {
	buf := make([]byte, 512)
	for {
		select {
		case <-closing:
			return
		default:
		}
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, err := conn.Read(buf)
		if n > 0 {
			t.mu.Lock()
			fn := t.receiver
			t.mu.Unlock()
			if fn != nil {
				fn(buf[:n])
			}
		}
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}
			return
		}
	}
}

func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	close(t.closing)
	err := t.conn.Close()
	t.conn = nil
	return core.Wrap(core.KindCommunication, "device.TCPTransport.Disconnect", err)
}

func (t *TCPTransport) Send(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return core.New(core.KindCommunication, "device.TCPTransport.Send", "not connected", nil)
	}
	if _, err := conn.Write(data); err != nil {
		return core.Wrap(core.KindCommunication, "device.TCPTransport.Send", err)
	}
	return nil
}

func (t *TCPTransport) OnBytesReceived(fn func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.receiver = fn
}

func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}
