// Package worker records the published frame stream. The loop goroutine
// samples frames and events into bounded queues; a flush goroutine drains
// them into the storage backend.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nightdrive/showcase/internal/model"
	"github.com/nightdrive/showcase/internal/queue"
	"github.com/nightdrive/showcase/internal/storage"
	"github.com/nightdrive/showcase/pkg/core"
)

// ErrSessionActive is returned when a session is started twice.
var ErrSessionActive = errors.New("session already active")

// Defaults used when the config leaves a field at zero.
const (
	DefaultFrameInterval = 6
	DefaultFlushInterval = 2 * time.Second
	DefaultQueueLimit    = 10000
)

// Emitter publishes an event through the frame loop so every event sink
// sees it.
type Emitter interface {
	Emit(kind core.EventKind, detail string)
}

// Dependencies holds all dependencies for the recorder.
type Dependencies struct {
	Backend storage.Backend
	Logger  *slog.Logger
	Emitter Emitter

	FrameInterval int
	FlushInterval time.Duration
	QueueLimit    int
}

// WriteDurationProvider is an optional interface that backends can implement
// to expose their last write duration for monitoring.
type WriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// PerformanceRecorder is an optional interface for backends that store
// recorder performance snapshots.
type PerformanceRecorder interface {
	RecordPerformance(p model.RecorderPerformance) error
}

// Stats is a point-in-time view of the recorder.
type Stats struct {
	Active        bool          `json:"active"`
	Paused        bool          `json:"paused"`
	SessionID     uint          `json:"sessionId"`
	FramesSeen    uint64        `json:"framesSeen"`
	FramesSampled uint64        `json:"framesSampled"`
	FramesDropped uint64        `json:"framesDropped"`
	EventsDropped uint64        `json:"eventsDropped"`
	FrameQueue    int           `json:"frameQueue"`
	EventQueue    int           `json:"eventQueue"`
	WriteErrors   uint64        `json:"writeErrors"`
	LastWrite     time.Duration `json:"lastWrite"`
}

// Recorder implements engine.Sink and engine.EventSink.
type Recorder struct {
	deps Dependencies

	frames *queue.Queue[core.FrameState]
	events *queue.Queue[core.Event]

	active    atomic.Bool
	paused    atomic.Bool
	seen      atomic.Uint64
	sampled   atomic.Uint64
	writeErrs atomic.Uint64
	flushed   atomic.Int64
	sessionID atomic.Uint64

	// serializes backend access between the flush goroutine and session
	// changes
	backendMu sync.Mutex
	session   *core.Session
}

// New creates a recorder. Zero intervals and limits fall back to defaults.
func New(deps Dependencies) *Recorder {
	if deps.FrameInterval <= 0 {
		deps.FrameInterval = DefaultFrameInterval
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	if deps.QueueLimit <= 0 {
		deps.QueueLimit = DefaultQueueLimit
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Backend == nil {
		deps.Backend = storage.Nop{}
	}
	return &Recorder{
		deps:   deps,
		frames: queue.NewBounded[core.FrameState](deps.QueueLimit),
		events: queue.NewBounded[core.Event](deps.QueueLimit),
	}
}

// Backend returns the storage backend the recorder writes to.
func (r *Recorder) Backend() storage.Backend {
	return r.deps.Backend
}

// PublishFrame samples the first frame of a session and every
// FrameInterval-th after it. Runs on the loop goroutine.
func (r *Recorder) PublishFrame(f core.FrameState) {
	if !r.active.Load() || r.paused.Load() {
		return
	}
	n := r.seen.Add(1) - 1
	if n%uint64(r.deps.FrameInterval) != 0 {
		return
	}
	r.sampled.Add(1)
	if evicted := r.frames.Push(f); evicted > 0 && r.frames.Evicted() == uint64(evicted) {
		r.deps.Logger.Warn("frame queue full, dropping oldest samples", "limit", r.deps.QueueLimit)
	}
}

// PublishEvent queues every event while a session is active.
func (r *Recorder) PublishEvent(e core.Event) {
	if !r.active.Load() {
		return
	}
	if evicted := r.events.Push(e); evicted > 0 && r.events.Evicted() == uint64(evicted) {
		r.deps.Logger.Warn("event queue full, dropping oldest events", "limit", r.deps.QueueLimit)
	}
}

// StartSession opens a session on the backend and starts sampling. The
// backend assigns s.ID.
func (r *Recorder) StartSession(s *core.Session) error {
	r.backendMu.Lock()
	defer r.backendMu.Unlock()

	if r.session != nil {
		return ErrSessionActive
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now().UTC()
	}
	if err := r.deps.Backend.StartSession(s); err != nil {
		return err
	}
	r.session = s
	r.seen.Store(0)
	r.sampled.Store(0)
	r.frames.Drain()
	r.events.Drain()
	r.sessionID.Store(uint64(s.ID))
	r.active.Store(true)

	r.deps.Logger.Info("recording started", "session", s.ID, "name", s.Name, "frameInterval", r.deps.FrameInterval)
	return nil
}

// EndSession stops sampling, writes what is queued and closes the session
// on the backend. It is a no-op without an active session.
func (r *Recorder) EndSession() error {
	r.active.Store(false)

	r.backendMu.Lock()
	defer r.backendMu.Unlock()

	if r.session == nil {
		return nil
	}
	flushErr := r.flushLocked()
	endErr := r.deps.Backend.EndSession()
	s := r.session
	r.session = nil
	r.sessionID.Store(0)

	attrs := []any{"session", s.ID, "sampled", r.sampled.Load()}
	if exp, ok := r.deps.Backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
		attrs = append(attrs, "file", exp.ExportedFilePath())
	}
	r.deps.Logger.Info("recording ended", attrs...)
	return errors.Join(flushErr, endErr)
}

// Session returns the active session, or nil.
func (r *Recorder) Session() *core.Session {
	r.backendMu.Lock()
	defer r.backendMu.Unlock()
	return r.session
}

// Pause stops frame sampling without ending the session. Events are still
// recorded.
func (r *Recorder) Pause() { r.paused.Store(true) }

// Resume restarts frame sampling.
func (r *Recorder) Resume() { r.paused.Store(false) }

// Flush hands every queued event and frame to the backend.
func (r *Recorder) Flush() error {
	r.backendMu.Lock()
	defer r.backendMu.Unlock()
	if r.session == nil {
		return nil
	}
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	start := time.Now()
	var errs []error

	for _, e := range r.events.Drain() {
		if err := r.deps.Backend.RecordEvent(&e); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range r.frames.Drain() {
		if err := r.deps.Backend.RecordFrame(&f); err != nil {
			errs = append(errs, err)
		}
	}
	if fl, ok := r.deps.Backend.(storage.Flusher); ok {
		if err := fl.Flush(); err != nil {
			errs = append(errs, err)
		}
	}

	r.flushed.Store(int64(time.Since(start)))
	if len(errs) > 0 {
		r.writeErrs.Add(uint64(len(errs)))
		return errors.Join(errs...)
	}
	return nil
}

// Run flushes on every FlushInterval tick until ctx is done, then ends the
// active session.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := r.EndSession(); err != nil {
				r.deps.Logger.Error("error ending session", "error", err)
			}
			return nil
		case <-ticker.C:
			if err := r.Flush(); err != nil {
				r.deps.Logger.Error("error flushing recording", "error", err)
			}
		}
	}
}

// LastWriteDuration returns the backend's last write duration, or how long
// the last flush took when the backend does not track it.
func (r *Recorder) LastWriteDuration() time.Duration {
	if p, ok := r.deps.Backend.(WriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return time.Duration(r.flushed.Load())
}

// Stats returns a snapshot of the recorder counters. It never waits on
// the backend, so loop handlers may call it.
func (r *Recorder) Stats() Stats {
	return Stats{
		Active:        r.active.Load(),
		Paused:        r.paused.Load(),
		FramesSeen:    r.seen.Load(),
		FramesSampled: r.sampled.Load(),
		FramesDropped: r.frames.Evicted(),
		EventsDropped: r.events.Evicted(),
		FrameQueue:    r.frames.Len(),
		EventQueue:    r.events.Len(),
		WriteErrors:   r.writeErrs.Load(),
		LastWrite:     r.LastWriteDuration(),
		SessionID:     uint(r.sessionID.Load()),
	}
}

// RecordPerformance stores a snapshot on backends that support it. It
// returns false when the backend does not.
func (r *Recorder) RecordPerformance(p model.RecorderPerformance) (bool, error) {
	pr, ok := r.deps.Backend.(PerformanceRecorder)
	if !ok {
		return false, nil
	}
	r.backendMu.Lock()
	defer r.backendMu.Unlock()
	return true, pr.RecordPerformance(p)
}
