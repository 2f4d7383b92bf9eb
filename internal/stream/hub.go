// Package stream broadcasts the live frame stream to WebSocket viewers.
// Frames are sent fire-and-forget: a viewer that cannot keep up loses
// frames, never stalls the loop.
package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/nightdrive/showcase/pkg/core"
	"github.com/nightdrive/showcase/pkg/streaming"
)

const (
	sendBufferSize = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// Hub implements engine.Sink and engine.EventSink.
type Hub struct {
	logger   *slog.Logger
	upgrader ws.Upgrader
	every    uint64

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	seen    atomic.Uint64
	dropped atomic.Uint64
	latest  atomic.Pointer[core.FrameState]
	session atomic.Pointer[core.Session]
}

// NewHub creates a hub that forwards every frameInterval-th frame.
func NewHub(frameInterval int, logger *slog.Logger) *Hub {
	if frameInterval <= 0 {
		frameInterval = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger.With("component", "stream"),
		every:  uint64(frameInterval),
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			// viewers are served from anywhere on the LAN
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// SetSession sets the session announced to viewers that connect later.
func (h *Hub) SetSession(s *core.Session) {
	h.session.Store(s)
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped is the number of messages discarded for slow viewers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// PublishFrame runs on the loop goroutine.
func (h *Hub) PublishFrame(f core.FrameState) {
	h.latest.Store(&f)
	if (h.seen.Add(1)-1)%h.every != 0 {
		return
	}
	h.broadcast(streaming.TypeFrame, f)
}

// PublishEvent forwards events; notices go out as notice messages.
func (h *Hub) PublishEvent(e core.Event) {
	if e.Kind == core.EventNotice {
		h.broadcast(streaming.TypeNotice, streaming.NoticePayload{Message: e.Detail})
		return
	}
	h.broadcast(streaming.TypeEvent, e)
}

func (h *Hub) broadcast(msgType string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode stream message", "type", msgType, "error", err)
		return
	}
	for c := range h.clients {
		if !c.offer(data) {
			if h.dropped.Add(1) == 1 {
				h.logger.Warn("viewer too slow, dropping messages", "remote", c.remote)
			}
		}
	}
}

// ServeHTTP upgrades the request and registers the viewer. The first
// message is a hello carrying the session and the latest frame.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, r.RemoteAddr)
	hello, err := streaming.Marshal(streaming.TypeHello, streaming.HelloPayload{
		Session: h.session.Load(),
		Frame:   h.latest.Load(),
	})
	if err == nil {
		c.offer(hello)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("viewer connected", "remote", c.remote, "viewers", count)
	go c.writePump(h.logger)
	go func() {
		c.readPump()
		h.remove(c)
	}()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		h.logger.Info("viewer disconnected", "remote", c.remote, "viewers", count)
	}
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

type client struct {
	conn   *ws.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newClient(conn *ws.Conn, remote string) *client {
	return &client{
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// offer queues data without blocking. It reports false when the buffer is
// full or the client is gone.
func (c *client) offer(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump(logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				logger.Debug("viewer write failed", "remote", c.remote, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// readPump discards viewer input and returns when the connection ends.
func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
