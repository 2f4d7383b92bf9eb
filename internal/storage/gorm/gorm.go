// Package gormstorage implements the storage.Backend interface using GORM.
// Frames and events are queued as models and written in one transaction
// per table on Flush.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nightdrive/showcase/internal/database"
	"github.com/nightdrive/showcase/internal/geo"
	"github.com/nightdrive/showcase/internal/model"
	"github.com/nightdrive/showcase/internal/model/convert"
	"github.com/nightdrive/showcase/internal/queue"
	"github.com/nightdrive/showcase/pkg/core"
)

// TrackMinStep is the ground distance the car must cover before another
// track point is stored.
const TrackMinStep = 0.5

// ErrNoDB is returned by Init when no connection was supplied.
var ErrNoDB = errors.New("no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps Dependencies

	frames *queue.Queue[model.FrameSample]
	events *queue.Queue[model.EventRecord]

	sessionID atomic.Uint64
	lastWrite atomic.Int64

	mu        sync.Mutex
	track     *geo.Track
	lastFrame core.FrameState
	recorded  uint64
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:   deps,
		frames: queue.New[model.FrameSample](),
		events: queue.New[model.EventRecord](),
		track:  geo.NewTrack(TrackMinStep),
	}
}

// DB exposes the connection for wrappers that need it.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	if err := database.Setup(b.deps.DB, b.deps.Logger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close writes whatever is still queued and closes the connection.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	flushErr := b.Flush()
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return errors.Join(flushErr, err)
	}
	return errors.Join(flushErr, sqlDB.Close())
}

// StartSession inserts the session row and assigns its ID.
func (b *Backend) StartSession(s *core.Session) error {
	m := convert.CoreToSession(*s)
	m.ID = 0
	if err := b.deps.DB.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}
	s.ID = m.ID
	b.sessionID.Store(uint64(m.ID))

	b.mu.Lock()
	b.track.Reset()
	b.lastFrame = core.FrameState{}
	b.recorded = 0
	b.mu.Unlock()

	b.deps.Logger.Info().Uint("session", m.ID).Str("name", s.Name).Msg("Session started")
	return nil
}

// EndSession flushes the queues and stores the track, distance and final
// settings on the session row.
func (b *Backend) EndSession() error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}

	b.mu.Lock()
	updates := map[string]any{
		"end_time": time.Now(),
		"frames":   b.lastFrame.Frame,
		"settings": convert.SettingsToJSON(b.lastFrame.Settings),
	}
	if ls, err := b.track.LineString(); err == nil {
		updates["track"] = ls
		updates["distance"] = geo.GroundLength(ls)
	}
	recorded := b.recorded
	b.mu.Unlock()

	if err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to close session %d: %w", id, err)
	}
	b.sessionID.Store(0)

	b.deps.Logger.Info().Uint("session", id).Uint64("samples", recorded).Msg("Session ended")
	return nil
}

// RecordFrame queues a frame sample.
func (b *Backend) RecordFrame(f *core.FrameState) error {
	b.frames.Push(convert.CoreToFrameSample(*f, 0))

	b.mu.Lock()
	b.track.Add(f.Vehicle.Position)
	b.lastFrame = *f
	b.recorded++
	b.mu.Unlock()
	return nil
}

// RecordEvent queues an event.
func (b *Backend) RecordEvent(e *core.Event) error {
	b.events.Push(convert.CoreToEventRecord(*e, 0))
	return nil
}

// Flush writes both queues. Failed batches go back on their queue.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	start := time.Now()
	sessionID := uint(b.sessionID.Load())

	frameErr := writeQueue(b.deps.DB, b.frames, func(items []model.FrameSample) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
	eventErr := writeQueue(b.deps.DB, b.events, func(items []model.EventRecord) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})

	b.lastWrite.Store(int64(time.Since(start)))
	if err := errors.Join(frameErr, eventErr); err != nil {
		b.deps.Logger.Error().Err(err).Msg("Error writing queued records")
		return err
	}
	return nil
}

// Pending reports the queued frames and events.
func (b *Backend) Pending() (frames, events int) {
	return b.frames.Len(), b.events.Len()
}

// LastWriteDuration is how long the last Flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// RecordPerformance stores a recorder performance snapshot.
func (b *Backend) RecordPerformance(p model.RecorderPerformance) error {
	p.SessionID = uint(b.sessionID.Load())
	if p.SessionID == 0 {
		return nil
	}
	return b.deps.DB.Create(&p).Error
}

func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], prepare func([]T)) error {
	items := q.Drain()
	if len(items) == 0 {
		return nil
	}
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		q.Push(items...)
		return err
	}
	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return err
	}
	return nil
}
