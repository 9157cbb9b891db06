package telemetry

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/device"
)

// Envelope is the wire format for every broadcast message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Server bridges a device link's event buses onto websocket clients. Each
// client is authenticated with a bearer token; slow clients are dropped
// rather than allowed to stall the broadcast fan-out.
type Server struct {
	secret   []byte
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	tokens  []core.Token // bus subscriptions, for Detach
	link    *device.Link
}

type client struct {
	conn  *websocket.Conn
	send  chan Envelope
	scope Scope
}

// NewServer builds a telemetry server signing-secret. Attach wires it to a
// link; Handler serves the websocket endpoint.
func NewServer(secret []byte) *Server {
	return &Server{
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards are served from anywhere on the shop network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the server to a link's buses. Events arriving from the
// link's reader goroutine are fanned out in arrival order.
func (s *Server) Attach(link *device.Link) {
	s.mu.Lock()
	s.link = link
	s.mu.Unlock()

	s.track(link.StatusChanged().Subscribe(func(st device.ControllerStatus) {
		s.Broadcast(Envelope{Type: "status", Payload: statusPayload(st)})
	}))
	s.track(link.ConnectionChanged().Subscribe(func(e device.ConnectionEvent) {
		s.Broadcast(Envelope{Type: "connection", Payload: e})
	}))
	s.track(link.Errors().Subscribe(func(e device.ErrorEvent) {
		s.Broadcast(Envelope{Type: "error", Payload: e})
	}))
	s.track(link.RawLines().Subscribe(func(line string) {
		s.Broadcast(Envelope{Type: "raw", Payload: line})
	}))
}

func (s *Server) track(tok core.Token) {
	s.mu.Lock()
	s.tokens = append(s.tokens, tok)
	s.mu.Unlock()
}

// Detach unsubscribes from the link and closes every client.
func (s *Server) Detach() {
	s.mu.Lock()
	link := s.link
	tokens := s.tokens
	s.tokens = nil
	s.link = nil
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	if link != nil {
		link.StatusChanged().Unsubscribe(tokens[0])
		link.ConnectionChanged().Unsubscribe(tokens[1])
		link.Errors().Unsubscribe(tokens[2])
		link.RawLines().Unsubscribe(tokens[3])
	}
	for _, c := range clients {
		close(c.send)
		c.conn.Close()
	}
}

// statusPayload flattens ControllerStatus for JSON consumers.
func statusPayload(st device.ControllerStatus) map[string]any {
	return map[string]any{
		"state":   st.State.String(),
		"mpos":    [3]float64{st.MPos.X, st.MPos.Y, st.MPos.Z},
		"wpos":    [3]float64{st.WPos.X, st.WPos.Y, st.WPos.Z},
		"feed":    st.Feed,
		"spindle": st.Spindle,
	}
}

// Broadcast queues an envelope to every connected client. A client whose
// queue is full is dropped.
func (s *Server) Broadcast(env Envelope) {
	s.mu.Lock()
	var overflowed []*client
	for c := range s.clients {
		select {
		case c.send <- env:
		default:
			overflowed = append(overflowed, c)
			delete(s.clients, c)
		}
	}
	s.mu.Unlock()

	for _, c := range overflowed {
		close(c.send)
		c.conn.Close()
	}
}

// ClientCount reports the number of connected dashboards.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler is the websocket endpoint. Authentication accepts either an
// `Authorization: Bearer <token>` header or a `?token=` query parameter
// (for browser WebSocket clients, which cannot set headers).
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := &client{conn: conn, send: make(chan Envelope, 64), scope: claims.Scope}
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.mu.Unlock()

		go s.writeLoop(c)
		go s.readLoop(c)
	})
}

func (s *Server) authenticate(r *http.Request) (*Claims, error) {
	token := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			token = rest
		}
	}
	if token == "" {
		return nil, core.New(core.KindCommunication, "telemetry.authenticate", "missing token", nil)
	}
	return VerifyToken(s.secret, token)
}

func (s *Server) writeLoop(c *client) {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.drop(c)
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

// readLoop drains client messages. Control-scoped clients may send
// hold/resume commands; everything else is ignored.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.scope.Allows(ScopeControl) {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		s.mu.Lock()
		link := s.link
		s.mu.Unlock()
		if link == nil {
			continue
		}
		switch env.Type {
		case "hold":
			link.SendRealtime(device.RTFeedHold)
		case "resume":
			link.SendRealtime(device.RTCycleStart)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, present := s.clients[c]
	if present {
		delete(s.clients, c)
	}
	s.mu.Unlock()
	if present {
		close(c.send)
	}
	c.conn.Close()
}
