package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/nightdrive/showcase/pkg/streaming"
)

const (
	outBuffer    = 4096
	ackBuffer    = 16
	maxRedials   = 10
	firstBackoff = time.Second
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// link is the collector connection. A single goroutine owns writes and
// redials after a failure; a reader per connection routes acks.
type link struct {
	logger *slog.Logger

	out    chan []byte
	acks   chan string
	closed chan struct{}

	mu     sync.Mutex
	target string
	conn   *ws.Conn
	shut   bool

	// session header, resent after a redial
	header []byte

	dropped atomic.Uint64
}

func newLink(logger *slog.Logger) *link {
	return &link{
		logger: logger,
		out:    make(chan []byte, outBuffer),
		acks:   make(chan string, ackBuffer),
		closed: make(chan struct{}),
	}
}

// open dials the collector and starts the write goroutine.
func (l *link) open(rawURL, secret string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid collector URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()

	l.mu.Lock()
	l.target = u.String()
	l.mu.Unlock()

	conn, err := l.dial()
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	go l.run(conn)
	return nil
}

func (l *link) dial() (*ws.Conn, error) {
	l.mu.Lock()
	target := l.target
	l.mu.Unlock()

	conn, _, err := ws.DefaultDialer.Dial(target, nil)
	if err != nil {
		return nil, fmt.Errorf("collector dial failed: %w", err)
	}
	return conn, nil
}

// run pumps the outgoing queue into conn, redialing on failure, until the
// link is closed or redialing gives up.
func (l *link) run(conn *ws.Conn) {
	for conn != nil {
		err := l.pump(conn)
		_ = conn.Close()
		if err == nil {
			return
		}
		l.logger.Warn("collector connection lost", "error", err)
		conn = l.redial()
	}
}

// pump returns nil on shutdown and the first read or write error otherwise.
func (l *link) pump(conn *ws.Conn) error {
	failed := make(chan error, 1)
	go l.readAcks(conn, failed)

	for {
		select {
		case <-l.closed:
			return nil
		case err := <-failed:
			return err
		case msg := <-l.out:
			if err := writeText(conn, msg); err != nil {
				return err
			}
		}
	}
}

func writeText(conn *ws.Conn, msg []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, msg)
}

func (l *link) readAcks(conn *ws.Conn, failed chan<- error) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			failed <- err
			return
		}
		var ack streaming.AckMessage
		if err := json.Unmarshal(msg, &ack); err != nil || ack.Type != "ack" {
			l.logger.Debug("ignoring collector message", "raw", string(msg))
			continue
		}
		select {
		case l.acks <- ack.For:
		default:
			l.logger.Debug("ack buffer full, dropping", "for", ack.For)
		}
	}
}

// redial reconnects with exponential backoff and resends the session
// header. It returns nil when the link closes or every attempt fails.
func (l *link) redial() *ws.Conn {
	l.mu.Lock()
	l.conn = nil
	l.mu.Unlock()

	delay := firstBackoff
	for attempt := 1; attempt <= maxRedials; attempt++ {
		select {
		case <-l.closed:
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, maxBackoff)

		conn, err := l.dial()
		if err != nil {
			l.logger.Warn("collector redial failed", "attempt", attempt, "error", err)
			continue
		}

		l.mu.Lock()
		if l.shut {
			l.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		header := l.header
		l.conn = conn
		l.mu.Unlock()

		if header != nil {
			if err := writeText(conn, header); err != nil {
				l.logger.Warn("failed to resend session header", "attempt", attempt, "error", err)
				_ = conn.Close()
				continue
			}
		}
		l.logger.Info("collector reconnected", "attempt", attempt)
		return conn
	}

	l.logger.Error("giving up on collector", "attempts", maxRedials)
	return nil
}

func (l *link) setHeader(h []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.header = h
}

// send queues msg without blocking. A full queue drops it.
func (l *link) send(msg []byte) {
	select {
	case l.out <- msg:
	default:
		if l.dropped.Add(1) == 1 {
			l.logger.Warn("collector queue full, dropping messages")
		}
	}
}

// request queues msg and waits for the collector to ack it.
func (l *link) request(msg []byte, ackFor string, timeout time.Duration) error {
	l.send(msg)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case got := <-l.acks:
			if got == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-l.closed:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close stops the write goroutine and sends a close frame. The goroutine
// closes the socket itself.
func (l *link) close() error {
	l.mu.Lock()
	if l.shut {
		l.mu.Unlock()
		return nil
	}
	l.shut = true
	close(l.closed)
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
	}
	return nil
}
