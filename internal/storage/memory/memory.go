// Package memory keeps a session's sampled frames and events in memory and
// exports them as JSON when the session ends.
package memory

import (
	"errors"
	"sync"

	"github.com/nightdrive/showcase/internal/config"
	"github.com/nightdrive/showcase/pkg/core"
)

// ErrNoSession is returned when recording starts before StartSession.
var ErrNoSession = errors.New("no session started")

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	frames []core.FrameState
	events []core.Event

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	b.session = s
	b.frames = nil
	b.events = nil

	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	err := b.exportJSON()
	b.session = nil
	return err
}

// RecordFrame stores a sampled frame
func (b *Backend) RecordFrame(f *core.FrameState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.frames = append(b.frames, *f)
	return nil
}

// RecordEvent stores an event
func (b *Backend) RecordEvent(e *core.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.events = append(b.events, *e)
	return nil
}

// Counts reports how many frames and events the current session holds.
func (b *Backend) Counts() (frames, events int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.frames), len(b.events)
}

// ExportedFilePath returns the path of the last export, or "" if none.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
