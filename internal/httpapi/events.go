package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

const (
	// clientBuffer is the number of events queued per client before it is
	// dropped as too slow.
	clientBuffer = 32
	writeTimeout = 5 * time.Second
)

// EventType is the kind of lifecycle event sent over /events.
type EventType string

const (
	EventAppeared    EventType = "appeared"
	EventDisappeared EventType = "disappeared"
	EventAction      EventType = "action"
)

// Event is sent to websocket clients as JSON.
type Event struct {
	Type      EventType         `json:"type"`
	Reason    string            `json:"reason,omitempty"`
	Request   input.RequestSpec `json:"request"`
	Timestamp int64             `json:"timestamp"` // Unix milliseconds
}

// Hub fans lifecycle events out to websocket clients. It is a
// snackbar.Delegate and never blocks the bar's owning context.
type Hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time
}

type client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// enqueue reports false when the client queue is full.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
		now:    time.Now,
	}
}

// HandleWebSocket upgrades the connection and streams events until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("events client connected", "remote", req.RemoteAddr, "clients", h.ClientCount())

	go h.writeLoop(c)

	// Incoming messages are ignored; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Debug("events client disconnected", "remote", req.RemoteAddr)
}

func (h *Hub) writeLoop(c *client) {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// broadcast queues ev for every client. Clients with a full queue are
// dropped.
func (h *Hub) broadcast(ev Event) {
	ev.Timestamp = h.now().UnixMilli()
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			h.logger.Warn("dropping slow events client")
			h.remove(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// Appeared implements snackbar.Delegate.
func (h *Hub) Appeared(req snackbar.Request) {
	h.broadcast(Event{Type: EventAppeared, Request: input.SpecFor(req)})
}

// Disappeared implements snackbar.Delegate.
func (h *Hub) Disappeared(req snackbar.Request, reason snackbar.Reason) {
	h.broadcast(Event{Type: EventDisappeared, Reason: reason.String(), Request: input.SpecFor(req)})
}

// ActionTriggered implements snackbar.Delegate.
func (h *Hub) ActionTriggered(req snackbar.Request) {
	h.broadcast(Event{Type: EventAction, Request: input.SpecFor(req)})
}
