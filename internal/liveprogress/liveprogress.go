// Package liveprogress optionally serves simulation progress over a
// local WebSocket, one JSON frame per propagation-engine phase event.
// The teacher is a WebSocket client of a remote feed; here the roles
// invert, but the wire shape — one JSON object per event — matches.
package liveprogress

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is a phase-boundary progress notification. Round, Phase, and
// RIBChanged mirror engine.ProgressEvent; this package does not import
// engine, so cmd/bgpsim adapts engine.ProgressEvent values into Events
// at the call site.
type Event struct {
	Round      int    `json:"round"`
	Phase      string `json:"phase"`
	RIBChanged bool   `json:"rib_changed"`
}

// Server broadcasts Events to every connected WebSocket client.
type Server struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	running atomic.Bool
	httpSrv *http.Server
}

// NewServer returns a progress server that will listen on addr once
// Start is called.
func NewServer(addr string) *Server {
	s := &Server{clients: make(map[*websocket.Conn]struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins listening in a background goroutine.
func (s *Server) Start() {
	if s.running.Swap(true) {
		return
	}
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("liveprogress: server stopped", "error", err)
		}
	}()
	slog.Info("liveprogress: listening", "addr", s.httpSrv.Addr)
}

// Stop closes the listener and every connected client.
func (s *Server) Stop() {
	if !s.running.Swap(false) {
		return
	}
	s.httpSrv.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("liveprogress: upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
}

// Notify broadcasts e to every connected client, dropping any client
// whose write fails or blocks.
func (s *Server) Notify(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
