// Package storage defines the recording backends behind the frame recorder.
package storage

import "github.com/nightdrive/showcase/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Calls come from the recorder's flush goroutine, never the frame loop.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (assigns ID to the passed pointer)
	StartSession(s *core.Session) error
	EndSession() error

	// Recording
	RecordFrame(f *core.FrameState) error
	RecordEvent(e *core.Event) error
}

// Flusher is an optional interface for backends that buffer writes. The
// recorder calls Flush after each batch.
type Flusher interface {
	Flush() error
}

// Exporter is an optional interface for backends that produce a file when
// the session ends.
type Exporter interface {
	ExportedFilePath() string
}

// Nop discards everything. It backs storage type "none".
type Nop struct{}

func (Nop) Init() error                        { return nil }
func (Nop) Close() error                       { return nil }
func (Nop) StartSession(*core.Session) error   { return nil }
func (Nop) EndSession() error                  { return nil }
func (Nop) RecordFrame(*core.FrameState) error { return nil }
func (Nop) RecordEvent(*core.Event) error      { return nil }
