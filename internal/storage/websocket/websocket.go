// Package websocket forwards a recording to a remote collector over a
// WebSocket. Session boundaries wait for the collector's ack; frames and
// events are fire-and-forget.
package websocket

import (
	"log/slog"

	"github.com/nightdrive/showcase/pkg/core"
	"github.com/nightdrive/showcase/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// Backend streams session data over WebSocket to a collector.
// It implements storage.Backend but not storage.Exporter.
type Backend struct {
	link *link
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		link: newLink(logger.With("backend", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the collector.
func (b *Backend) Init() error {
	return b.link.open(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the collector.
func (b *Backend) Close() error {
	return b.link.close()
}

// Dropped is the number of messages discarded because the send buffer was full.
func (b *Backend) Dropped() uint64 {
	return b.link.dropped.Load()
}

func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		return err
	}
	b.link.send(data)
	return nil
}

// StartSession sends the session header and waits for the collector's ack.
// The header is resent after a reconnect.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := streaming.Marshal(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}

	b.link.setHeader(data)
	return b.link.request(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for the ack.
func (b *Backend) EndSession() error {
	data, err := streaming.Marshal(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	err = b.link.request(data, streaming.TypeEndSession, ackTimeout)
	b.link.setHeader(nil)
	return err
}

func (b *Backend) RecordFrame(f *core.FrameState) error {
	return b.sendEnvelope(streaming.TypeFrame, f)
}

func (b *Backend) RecordEvent(e *core.Event) error {
	return b.sendEnvelope(streaming.TypeEvent, e)
}
