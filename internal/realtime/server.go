package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"countdown/internal/entry"
	"countdown/internal/protocol"
	"countdown/internal/timer"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	sendBufSize   = 256
)

// EventSnapshot marks the full-state update a client receives on connect.
const EventSnapshot = "snapshot"

var (
	errPresetNotFound = errors.New("preset not found")
	errTimerRunning   = errors.New("timer is running")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow localhost origins for dev.
	},
}

// Server exposes a timer engine to presentation clients. Intents arrive
// over WebSocket or REST; every event the engine publishes is broadcast
// to all connected WebSocket clients.
type Server struct {
	engine    *timer.Engine
	clients   map[*client]bool
	clientsMu sync.RWMutex
	staticDir string

	intentRate  rate.Limit
	intentBurst int

	presets   map[string]entry.Buffer
	presetsMu sync.RWMutex

	subID string
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	server  *Server
	limiter *rate.Limiter
}

// New creates a realtime server for engine and starts forwarding its
// events. intentRate and intentBurst bound how fast a single WebSocket
// connection may send intents.
func New(engine *timer.Engine, staticDir string, intentRate float64, intentBurst int) *Server {
	s := &Server{
		engine:      engine,
		clients:     make(map[*client]bool),
		staticDir:   staticDir,
		intentRate:  rate.Limit(intentRate),
		intentBurst: intentBurst,
		presets:     make(map[string]entry.Buffer),
	}

	subID, ch, _ := engine.Subscribe()
	s.subID = subID
	go s.forward(ch)

	return s
}

// Close stops forwarding engine events.
func (s *Server) Close() {
	s.engine.Unsubscribe(s.subID)
}

// SetPresets replaces the preset table.
func (s *Server) SetPresets(presets map[string]entry.Buffer) {
	s.presetsMu.Lock()
	defer s.presetsMu.Unlock()
	s.presets = presets
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint.
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API endpoints.
	mux.HandleFunc("GET /timer", s.handleGetTimer)
	mux.HandleFunc("GET /timer/events", s.handleListEvents)
	mux.HandleFunc("POST /timer/digits", s.handlePressDigit)
	mux.HandleFunc("POST /timer/backspace", s.handleBackspace)
	mux.HandleFunc("POST /timer/start", s.handleStart)
	mux.HandleFunc("POST /timer/stop", s.handleStop)
	mux.HandleFunc("GET /presets", s.handleListPresets)
	mux.HandleFunc("POST /presets/{name}", s.handleLoadPreset)

	// Static file serving.
	if s.staticDir != "" {
		fileServer := http.FileServer(http.Dir(s.staticDir))
		mux.Handle("/", fileServer)
	}

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleWebSocket upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBufSize),
		server:  s,
		limiter: rate.NewLimiter(s.intentRate, s.intentBurst),
	}

	// Queue the current state before the client becomes visible to
	// broadcast so it is always the first message.
	s.clientsMu.Lock()
	s.sendUpdate(c, EventSnapshot, s.engine.Snapshot())
	s.clients[c] = true
	s.clientsMu.Unlock()

	go c.writePump()
	go c.readPump()
}

// readPump reads messages from the WebSocket connection.
func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		if !c.limiter.Allow() {
			c.server.sendError(c, protocol.ErrRateLimited, "too many intents")
			continue
		}

		c.server.handleMessage(c, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeClient cleans up a disconnected client.
func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()

	close(c.send)
}

// handleMessage processes a validated client message.
func (s *Server) handleMessage(c *client, raw []byte) {
	msg, err := protocol.ValidateClientMessage(raw)
	if err != nil {
		s.sendError(c, protocol.ErrInvalidMessage, err.Error())
		return
	}

	switch msg.Type {
	case protocol.TypeDigitPress:
		var payload protocol.DigitPressPayload
		json.Unmarshal(msg.Payload, &payload)
		s.engine.PressDigit(*payload.Digit)
	case protocol.TypeDigitBackspace:
		s.engine.Backspace()
	case protocol.TypeTimerStart:
		s.engine.Start()
	case protocol.TypeTimerStop:
		s.engine.Stop()
	case protocol.TypePresetLoad:
		var payload protocol.PresetLoadPayload
		json.Unmarshal(msg.Payload, &payload)
		if err := s.loadPreset(payload.Name); err != nil {
			code := protocol.ErrPresetNotFound
			if errors.Is(err, errTimerRunning) {
				code = protocol.ErrTimerRunning
			}
			s.sendError(c, code, err.Error())
		}
	}
}

// loadPreset copies a named preset into the engine's entry buffer.
func (s *Server) loadPreset(name string) error {
	s.presetsMu.RLock()
	b, ok := s.presets[name]
	s.presetsMu.RUnlock()

	if !ok {
		return errPresetNotFound
	}
	if !s.engine.LoadEntry(b) {
		return errTimerRunning
	}
	return nil
}

// presetTable returns the presets as name → digits.
func (s *Server) presetTable() map[string]string {
	s.presetsMu.RLock()
	defer s.presetsMu.RUnlock()

	table := make(map[string]string, len(s.presets))
	for name, b := range s.presets {
		table[name] = b.String()
	}
	return table
}

// forward broadcasts engine events until the subscription closes.
func (s *Server) forward(ch <-chan timer.Event) {
	for event := range ch {
		msg, err := protocol.NewMessage(protocol.TypeTimerUpdate, updatePayload(string(event.Type), event.Snapshot))
		if err != nil {
			continue
		}
		s.broadcast(msg)
	}
}

// broadcast sends a message to all connected clients.
func (s *Server) broadcast(msg *protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, skip.
		}
	}
}

func (s *Server) sendUpdate(c *client, event string, snap timer.Snapshot) {
	msg, err := protocol.NewMessage(protocol.TypeTimerUpdate, updatePayload(event, snap))
	if err != nil {
		return
	}
	data, _ := json.Marshal(msg)
	select {
	case c.send <- data:
	default:
	}
}

func (s *Server) sendError(c *client, code, message string) {
	msg, _ := protocol.NewErrorMessage(code, message)
	data, _ := json.Marshal(msg)
	select {
	case c.send <- data:
	default:
	}
}

func updatePayload(event string, snap timer.Snapshot) protocol.TimerUpdatePayload {
	return protocol.TimerUpdatePayload{
		Event:            event,
		Running:          snap.Running,
		Hours:            snap.Hours,
		Minutes:          snap.Minutes,
		Seconds:          snap.Seconds,
		SecondsRemaining: snap.SecondsRemaining,
		TotalSeconds:     snap.TotalSeconds,
		PercentRemaining: snap.PercentRemaining,
		Entry:            snap.Entry,
	}
}
