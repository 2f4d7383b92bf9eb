package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// tests swap this to capture console output
var osStdout io.Writer = os.Stdout

// Options selects the log destinations. With neither File nor Console set,
// logs go to stdout.
type Options struct {
	Level   string
	Console io.Writer
	File    io.Writer

	// Graylog receives JSON records, one per write, e.g. a *gelf.Writer.
	Graylog io.Writer

	// Provider enables the OTel handler when non-nil.
	Provider    *sdklog.LoggerProvider
	ServiceName string
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger  *slog.Logger
	zlogger zerolog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	ctxProvider atomic.Pointer[ContextProvider]
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{zlogger: zerolog.Nop()}
}

// Setup builds the loggers. Calling it again replaces them.
func (m *SlogManager) Setup(opts Options) {
	lvl := ParseLevel(opts.Level)
	m.logProvider = opts.Provider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	console := opts.Console
	if console == nil && opts.File == nil {
		console = osStdout
	}

	var handlers []slog.Handler
	var writers []io.Writer
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, handlerOpts))
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339, NoColor: true})
	}
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
		writers = append(writers, opts.File)
	}
	if opts.Graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.Graylog, handlerOpts))
		writers = append(writers, opts.Graylog)
	}
	if opts.Provider != nil {
		name := opts.ServiceName
		if name == "" {
			name = "showcase"
		}
		handlers = append(handlers, otelslog.NewHandler(name, otelslog.WithLoggerProvider(opts.Provider)))
	}

	m.logger = slog.New(NewContextHandler(NewMultiHandler(handlers...), m.contextAttrs))
	m.zlogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerologLevel(lvl)).
		With().Timestamp().Str("component", "storage").Logger()

	m.logger.Info("Logging initialized", "level", lvl.String())
}

// SetContext installs the provider whose attributes are added to every
// slog record. It may be called after Setup, once the source exists.
func (m *SlogManager) SetContext(p ContextProvider) {
	if p == nil {
		m.ctxProvider.Store(nil)
		return
	}
	m.ctxProvider.Store(&p)
}

func (m *SlogManager) contextAttrs() []slog.Attr {
	p := m.ctxProvider.Load()
	if p == nil {
		return nil
	}
	return (*p)()
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Zerolog returns the storage logger. It discards everything before Setup.
func (m *SlogManager) Zerolog() zerolog.Logger {
	return m.zlogger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
