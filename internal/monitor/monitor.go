// Package monitor periodically reports recorder health: a status file
// rewritten every interval, a performance row on backends that store one,
// and OpenTelemetry gauges.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/nightdrive/showcase/internal/model"
	"github.com/nightdrive/showcase/internal/worker"
)

const instrumentationName = "github.com/nightdrive/showcase/internal/monitor"

// StatusFileName is written into Dependencies.StatusDir.
const StatusFileName = "status.txt"

// DefaultInterval is used when Dependencies.Interval is zero.
const DefaultInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Recorder  *worker.Recorder
	Logger    *slog.Logger
	StatusDir string
	Interval  time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	doneChan  chan struct{}

	registration metric.Registration
}

// NewService creates a new monitor service and registers its gauges.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
	if err := s.registerGauges(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) registerGauges() error {
	m := otel.Meter(instrumentationName)

	frameQueue, err := m.Int64ObservableGauge("recorder.queue.frames",
		metric.WithDescription("Sampled frames waiting for the next flush"))
	if err != nil {
		return fmt.Errorf("creating frame queue gauge: %w", err)
	}
	eventQueue, err := m.Int64ObservableGauge("recorder.queue.events",
		metric.WithDescription("Events waiting for the next flush"))
	if err != nil {
		return fmt.Errorf("creating event queue gauge: %w", err)
	}
	dropped, err := m.Int64ObservableCounter("recorder.frames.dropped",
		metric.WithDescription("Sampled frames evicted from a full queue"))
	if err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	lastWrite, err := m.Float64ObservableGauge("recorder.write.duration",
		metric.WithDescription("Duration of the last backend write"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("creating write duration gauge: %w", err)
	}

	s.registration, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := s.deps.Recorder.Stats()
		o.ObserveInt64(frameQueue, int64(st.FrameQueue))
		o.ObserveInt64(eventQueue, int64(st.EventQueue))
		o.ObserveInt64(dropped, int64(st.FramesDropped))
		o.ObserveFloat64(lastWrite, float64(st.LastWrite.Microseconds())/1000)
		return nil
	}, frameQueue, eventQueue, dropped, lastWrite)
	if err != nil {
		return fmt.Errorf("registering recorder gauges: %w", err)
	}
	return nil
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the status file lines and the performance row for the
// current recorder state.
func (s *Service) GetStatus() (output []string, perf model.RecorderPerformance) {
	st := s.deps.Recorder.Stats()

	perf = model.RecorderPerformance{
		Time:                time.Now(),
		SessionID:           st.SessionID,
		FrameQueue:          uint32(st.FrameQueue),
		EventQueue:          uint32(st.EventQueue),
		FramesDropped:       st.FramesDropped,
		LastWriteDurationMs: float32(st.LastWrite.Microseconds()) / 1000,
	}

	statsStr, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		statsStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(statsStr))
	output = append(output, fmt.Sprintf("lastWriteMs: %.3f", perf.LastWriteDurationMs))
	return output, perf
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	var statusFile *os.File
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0o755); err != nil {
			s.deps.Logger.Error("Error creating status directory", "error", err)
		} else if f, err := os.Create(filepath.Join(s.deps.StatusDir, StatusFileName)); err != nil {
			s.deps.Logger.Error("Error creating status file", "error", err)
		} else {
			statusFile = f
		}
	}

	go s.loop(statusFile, s.stopChan, s.doneChan)
	return nil
}

func (s *Service) loop(statusFile *os.File, stop, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()
	if statusFile != nil {
		defer statusFile.Close()
	}

	s.deps.Logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if s.deps.Recorder.Session() == nil {
			continue
		}
		lines, perf := s.GetStatus()

		if statusFile != nil {
			_ = statusFile.Truncate(0)
			_, _ = statusFile.Seek(0, 0)
			for _, line := range lines {
				_, _ = statusFile.WriteString(line + "\n")
			}
		}

		if _, err := s.deps.Recorder.RecordPerformance(perf); err != nil {
			s.deps.Logger.Error("Error writing performance row", "error", err)
		}
	}
}

// Stop stops the status monitor and waits for its goroutine.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	done := s.doneChan
	s.mu.Unlock()

	<-done
}

// Close stops the monitor and unregisters its gauges.
func (s *Service) Close() error {
	s.Stop()
	if s.registration != nil {
		return s.registration.Unregister()
	}
	return nil
}
