package device

import (
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// SerialConfig holds serial port configuration. USB CDC controllers ignore
// the baud rate, but real UART bridges (CH340, FTDI) do not, so it stays
// configurable with the GRBL default.
type SerialConfig struct {
	Device string // e.g. "/dev/ttyUSB0", "COM3"
	Baud   int    // 115200 for stock GRBL
}

// DefaultSerialConfig returns the standard GRBL configuration for a device
// path.
func DefaultSerialConfig(device string) SerialConfig {
	return SerialConfig{Device: device, Baud: 115200}
}

// SerialTransport drives a USB/UART connection through go.bug.st/serial.
// One reader goroutine per connection pushes received bytes to the
// registered callback in arrival order.
type SerialTransport struct {
	cfg SerialConfig

	mu       sync.Mutex
	port     serial.Port
	receiver func([]byte)
	closing  chan struct{}
}

// NewSerialTransport builds a transport for the given port config. Nothing
// is opened until Connect.
func NewSerialTransport(cfg SerialConfig) *SerialTransport {
	return &SerialTransport{cfg: cfg}
}

// ListPorts enumerates serial device paths present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, core.Wrap(core.KindCommunication, "device.ListPorts", err)
	}
	return ports, nil
}

func (s *SerialTransport) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	mode := &serial.Mode{BaudRate: s.cfg.Baud}
	port, err := serial.Open(s.cfg.Device, mode)
	if err != nil {
		return core.Wrap(core.KindCommunication, "device.SerialTransport.Connect", err)
	}
	// A short read timeout keeps the reader loop responsive to shutdown
	// without busy-waiting.
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return core.Wrap(core.KindCommunication, "device.SerialTransport.Connect", err)
	}
	s.port = port
	s.closing = make(chan struct{})
	go s.readLoop(port, s.closing)
	return nil
}

func (s *SerialTransport) readLoop(port serial.Port, closing chan struct{}) {
	buf := make([]byte, 256)
	for {
		select {
		case <-closing:
			return
		default:
		}
		n, err := port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		s.mu.Lock()
		fn := s.receiver
		s.mu.Unlock()
		if fn != nil {
			fn(buf[:n])
		}
	}
}

func (s *SerialTransport) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	close(s.closing)
	err := s.port.Close()
	s.port = nil
	return core.Wrap(core.KindCommunication, "device.SerialTransport.Disconnect", err)
}

func (s *SerialTransport) Send(data []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return core.New(core.KindCommunication, "device.SerialTransport.Send", "not connected", nil)
	}
	if _, err := port.Write(data); err != nil {
		return core.Wrap(core.KindCommunication, "device.SerialTransport.Send", err)
	}
	return nil
}

func (s *SerialTransport) OnBytesReceived(fn func([]byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = fn
}

func (s *SerialTransport) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}
