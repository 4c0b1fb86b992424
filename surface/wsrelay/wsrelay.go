// Package wsrelay implements a second surface sink: a JSON-over-WebSocket
// relay for a browser-based or remote surface emulator. It is a
// collaborator wired at the process boundary (cmd/ringbridge), never
// imported by ring — ring only knows about ring.Sink.
package wsrelay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/golang/glog"

	"go-ringbridge/ring"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 30 * time.Second
	pingInterval = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireEvent is ring.Event's JSON shape toward the browser surface.
type wireEvent struct {
	Kind       string  `json:"kind"`
	Index      int     `json:"index,omitempty"`
	RingIndex  int     `json:"ringIndex,omitempty"`
	SendIndex  int     `json:"sendIndex,omitempty"`
	Value      float64 `json:"value,omitempty"`
	Normalized float64 `json:"normalized,omitempty"`
	Min        float64 `json:"min,omitempty"`
	Max        float64 `json:"max,omitempty"`
	Name       string  `json:"name,omitempty"`
	Color      [3]byte `json:"color,omitempty"`
	IsMIDI     bool    `json:"isMidi,omitempty"`
	Bool       bool    `json:"bool,omitempty"`
	Playing    bool    `json:"playing,omitempty"`
	Recording  bool    `json:"recording,omitempty"`
}

func toWire(e ring.Event) wireEvent {
	return wireEvent{
		Kind:       e.Kind.String(),
		Index:      e.Index,
		RingIndex:  e.RingIndex,
		SendIndex:  e.SendIndex,
		Value:      e.Value,
		Normalized: e.Normalized,
		Min:        e.Min,
		Max:        e.Max,
		Name:       e.Name,
		Color:      [3]byte{e.Color.R, e.Color.G, e.Color.B},
		IsMIDI:     e.IsMIDI,
		Bool:       e.Bool,
		Playing:    e.Playing,
		Recording:  e.Recording,
	}
}

// command is an inbound message from a browser surface, translated into a
// call on ring.Manager's public command-dispatch surface.
type command struct {
	Op        string  `json:"op"`
	RingIndex int     `json:"ringIndex"`
	SendIndex int     `json:"sendIndex"`
	Delta     int     `json:"delta"`
	RawByte   int     `json:"rawByte"`
	Value     float64 `json:"value"`
	Kind      string  `json:"kind"`
	Offset    int     `json:"offset"`
	Width     int     `json:"width"`
	Scenes    int     `json:"scenes"`
	SceneOff  int     `json:"sceneOffset"`
}

// Server accepts WebSocket connections from surface clients, fans every
// ring.Event out to all of them, and dispatches their commands onto a
// ring.Manager. A client identifies itself with a JWT on connect; the
// relay only uses it to tag the connection for logging, it does not gate
// DAW access on it (the bridge is meant to run on a trusted local
// network).
type Server struct {
	manager *ring.Manager

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	id   string
	send chan wireEvent
}

// NewServer wires a relay over manager. Call Sink() to obtain the
// ring.Sink to register with manager, and ServeHTTP to serve the
// WebSocket endpoint.
func NewServer(manager *ring.Manager) *Server {
	return &Server{
		manager: manager,
		clients: make(map[*client]struct{}),
	}
}

// Sink returns the ring.Sink that fans events out to every connected
// client. Register it with the owning ring.Manager's surface wiring.
func (s *Server) Sink() ring.Sink {
	return func(e ring.Event) { s.broadcast(toWire(e)) }
}

func (s *Server) broadcast(w wireEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- w:
		default:
			glog.Warningf("wsrelay: client %s send buffer full, dropping event", c.id)
		}
	}
}

// ServeHTTP upgrades the connection and runs the client's read/write loops
// until it disconnects or ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("wsrelay: upgrade: %v", err)
		return
	}

	id := s.identify(r)
	c := &client{conn: conn, id: id, send: make(chan wireEvent, 64)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	glog.Infof("wsrelay: client %s connected", id)

	s.manager.RequestFullState()

	clientCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writeLoop(clientCtx, c)
	s.readLoop(clientCtx, c)

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	conn.Close()
	glog.Infof("wsrelay: client %s disconnected", id)
}

// identify parses (but does not verify) a JWT passed as a query parameter
// or Authorization header, for logging only.
func (s *Server) identify(r *http.Request) string {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = r.Header.Get("Authorization")
	}
	if raw == "" {
		return r.RemoteAddr
	}
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		glog.V(2).Infof("wsrelay: unverified token parse failed: %v", err)
		return r.RemoteAddr
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return r.RemoteAddr
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	return r.RemoteAddr
}

func (s *Server) writeLoop(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(w); err != nil {
				glog.V(2).Infof("wsrelay: client %s write error: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			glog.V(2).Infof("wsrelay: client %s read error: %v", c.id, err)
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.dispatch(cmd)
	}
}

func (s *Server) dispatch(cmd command) {
	m := s.manager
	switch cmd.Op {
	case "toggleMute":
		m.ToggleMute(cmd.RingIndex)
	case "toggleSolo":
		m.ToggleSolo(cmd.RingIndex)
	case "toggleArm":
		m.ToggleArm(cmd.RingIndex)
	case "setVolume":
		m.SetVolume(cmd.RingIndex, cmd.Value)
	case "setPanning":
		m.SetPanning(cmd.RingIndex, cmd.Value)
	case "setSend":
		m.SetSend(cmd.RingIndex, cmd.SendIndex, cmd.Value)
	case "selectTrack":
		m.SelectTrackInRing(cmd.RingIndex)
	case "setActiveProperty":
		if p, ok := parseActiveProperty(cmd.Kind, cmd.SendIndex); ok {
			m.SetActiveProperty(p)
		}
	case "setActivePropertyValue":
		m.SetActivePropertyValue(cmd.RingIndex, cmd.RawByte)
	case "adjustActivePropertyValue":
		m.AdjustActivePropertyValue(cmd.RingIndex, cmd.Delta)
	case "adjustSelectedParameter":
		m.AdjustSelectedParameter(cmd.Delta)
	case "resetActivePropertyValue":
		m.ResetActivePropertyValue(cmd.RingIndex)
	case "resetSelectedParameter":
		m.ResetSelectedParameter()
	case "navigateRing":
		m.NavigateRing(cmd.Delta)
	case "setOffset":
		m.SetOffset(cmd.Offset, cmd.SceneOff)
	case "setupRing":
		m.SetupRing(cmd.Width, cmd.Scenes, cmd.Offset, cmd.SceneOff)
	case "requestFullState":
		m.RequestFullState()
	default:
		glog.Warningf("wsrelay: unknown op %q", cmd.Op)
	}
}

func parseActiveProperty(kind string, sendIndex int) (ring.ActiveProperty, bool) {
	switch kind {
	case "volume":
		return ring.Volume(), true
	case "panning":
		return ring.Panning(), true
	case "send":
		return ring.Send(sendIndex), true
	case "selected_parameter":
		return ring.SelectedParameter(), true
	default:
		return ring.ActiveProperty{}, false
	}
}
