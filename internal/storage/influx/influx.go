// Package influx implements the storage.Backend interface on InfluxDB. Every
// sampled frame and event becomes a point; when the server is unreachable
// points go to a gzipped line-protocol backup file instead.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/nightdrive/showcase/internal/config"
	"github.com/nightdrive/showcase/pkg/core"
)

// Measurements written by the backend.
const (
	MeasurementFrame   = "frame"
	MeasurementEvent   = "event"
	MeasurementSession = "session"
)

// retention for a newly created bucket
const retentionSeconds = 60 * 60 * 24 * 90

// Backend writes points to InfluxDB or a backup file.
type Backend struct {
	cfg        config.InfluxConfig
	backupPath string
	log        zerolog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	mu           sync.Mutex
	backupFile   *os.File
	backupWriter *gzip.Writer
	session      *core.Session
	errCount     int
}

// New creates an InfluxDB backend. backupPath receives line protocol when
// the server cannot be reached.
func New(cfg config.InfluxConfig, backupPath string, log zerolog.Logger) *Backend {
	return &Backend{cfg: cfg, backupPath: backupPath, log: log}
}

// Init connects to the server, falling back to the backup file.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		b.cfg.URL(),
		b.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.log.Info().Str("backupPath", b.backupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		b.client.Close()
		b.client = nil
		return b.openBackup()
	}

	if err := b.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	b.writer = b.client.WriteAPI(b.cfg.Org, b.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			b.mu.Lock()
			b.errCount++
			b.mu.Unlock()
			b.log.Error().Err(writeErr).Str("bucket", b.cfg.Bucket).Msg("Error sending data to InfluxDB")
		}
	}(b.writer.Errors())

	b.log.Info().Str("url", b.cfg.URL()).Msg("InfluxDB client initialized")
	return nil
}

func (b *Backend) openBackup() error {
	if b.backupPath == "" {
		return errors.New("influxDB unreachable and no backup path set")
	}
	if err := os.MkdirAll(filepath.Dir(b.backupPath), 0o755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(b.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = file
	b.backupWriter = gzip.NewWriter(file)
	return nil
}

func (b *Backend) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := b.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.log.Info().Str("org", b.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", b.cfg.Org, err)
		}
	}

	buckets := b.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, b.cfg.Bucket); err != nil {
		b.log.Info().Str("bucket", b.cfg.Bucket).Msg("Bucket not found, creating")
		rule := domain.RetentionRuleTypeExpire
		_, err = buckets.CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %s: %w", b.cfg.Bucket, err)
		}
	}
	return nil
}

// Close flushes pending points and releases the client or backup file.
func (b *Backend) Close() error {
	if b.client != nil {
		b.writer.Flush()
		b.client.Close()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backupWriter == nil {
		return nil
	}
	err := errors.Join(b.backupWriter.Close(), b.backupFile.Close())
	b.backupWriter = nil
	b.backupFile = nil
	return err
}

// Online reports whether points go to the server.
func (b *Backend) Online() bool {
	return b.writer != nil
}

// StartSession writes a session start marker. Influx has no IDs; the
// session keeps whatever ID it has.
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	b.session = s
	b.mu.Unlock()
	return b.write(SessionPoint(s, "start", s.StartTime))
}

// EndSession writes a session end marker.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	s := b.session
	b.session = nil
	b.mu.Unlock()
	if s == nil {
		return nil
	}
	return b.write(SessionPoint(s, "end", time.Now()))
}

// RecordFrame writes a frame point.
func (b *Backend) RecordFrame(f *core.FrameState) error {
	return b.write(FramePoint(f, b.sessionName()))
}

// RecordEvent writes an event point.
func (b *Backend) RecordEvent(e *core.Event) error {
	return b.write(EventPoint(e, b.sessionName()))
}

// Flush sends buffered points or flushes the backup stream.
func (b *Backend) Flush() error {
	if b.writer != nil {
		b.writer.Flush()
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backupWriter == nil {
		return nil
	}
	return b.backupWriter.Flush()
}

// WriteErrors is the number of asynchronous write failures seen.
func (b *Backend) WriteErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errCount
}

func (b *Backend) sessionName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return ""
	}
	return b.session.Name
}

func (b *Backend) write(point *influxdb2_write.Point) error {
	if b.writer != nil {
		b.writer.WritePoint(point)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := b.backupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// FramePoint converts a frame to a point. Scene and director state are tags.
func FramePoint(f *core.FrameState, session string) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementFrame).
		AddTag("scene", f.Scene).
		AddTag("director", string(f.Director.State)).
		AddField("frame", int64(f.Frame)).
		AddField("total_time", f.TotalTime).
		AddField("x", f.Vehicle.Position.X()).
		AddField("y", f.Vehicle.Position.Y()).
		AddField("z", f.Vehicle.Position.Z()).
		AddField("yaw", f.Vehicle.VisualYaw).
		AddField("speed", f.Vehicle.Speed).
		AddField("steering", f.Vehicle.Steering).
		AddField("ticks", f.Ticks).
		AddField("curtain", f.Curtain).
		SetTime(f.Time)
	if session != "" {
		p.AddTag("session", session)
	}
	if f.Director.CurrentCut != "" {
		p.AddField("cut", f.Director.CurrentCut)
	}
	return p
}

// EventPoint converts an event to a point.
func EventPoint(e *core.Event, session string) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementEvent).
		AddTag("kind", string(e.Kind)).
		AddField("frame", int64(e.Frame)).
		AddField("total_time", e.TotalTime).
		AddField("detail", e.Detail).
		SetTime(e.Time)
	if e.Scene != "" {
		p.AddTag("scene", e.Scene)
	}
	if session != "" {
		p.AddTag("session", session)
	}
	return p
}

// SessionPoint marks a session boundary.
func SessionPoint(s *core.Session, phase string, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(MeasurementSession).
		AddTag("session", s.Name).
		AddTag("phase", phase).
		AddField("start_scene", s.StartScene).
		AddField("target_fps", s.TargetFPS).
		AddField("version", s.Version).
		AddField("id", strconv.FormatUint(uint64(s.ID), 10)).
		SetTime(at)
}
