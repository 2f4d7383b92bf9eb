// Command showcase runs the driving showcase: the frame loop, the camera
// director, recording and the HTTP control surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/nightdrive/showcase/internal/api"
	"github.com/nightdrive/showcase/internal/config"
	"github.com/nightdrive/showcase/internal/director"
	"github.com/nightdrive/showcase/internal/dispatcher"
	"github.com/nightdrive/showcase/internal/engine"
	"github.com/nightdrive/showcase/internal/handlers"
	"github.com/nightdrive/showcase/internal/logging"
	"github.com/nightdrive/showcase/internal/monitor"
	"github.com/nightdrive/showcase/internal/otel"
	"github.com/nightdrive/showcase/internal/scenes"
	"github.com/nightdrive/showcase/internal/showcase"
	"github.com/nightdrive/showcase/internal/storage"
	"github.com/nightdrive/showcase/internal/stream"
	"github.com/nightdrive/showcase/internal/upload"
	"github.com/nightdrive/showcase/internal/worker"
	"github.com/nightdrive/showcase/internal/world"
	"github.com/nightdrive/showcase/pkg/core"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const uploadTimeout = 2 * time.Minute

func main() {
	configDir := pflag.StringP("config", "c", ".", "directory holding "+config.FileName)
	sessionName := pflag.StringP("name", "n", "", "recording session name (default: timestamp)")
	showVersion := pflag.BoolP("version", "v", false, "print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return
	}

	if err := run(*configDir, *sessionName); err != nil {
		fmt.Fprintln(os.Stderr, "showcase:", err)
		os.Exit(1)
	}
}

func run(configDir, sessionName string) error {
	if err := config.Load(configDir, true); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFile, err := os.OpenFile(logging.LogFilePath(logsDir, "showcase", startTime), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	var otelFile io.Writer
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		f, err := os.OpenFile(logging.LogFilePath(logsDir, "showcase.otel", startTime), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open otel log file: %w", err)
		}
		defer f.Close()
		otelFile = f
	}
	provider, err := otel.New(otel.FromConfig(otelCfg, Version, otelFile))
	if err != nil {
		return err
	}

	logOpts := logging.Options{
		Level:       config.GetString("logLevel"),
		Console:     os.Stdout,
		File:        logFile,
		Provider:    provider.LoggerProvider(),
		ServiceName: otelCfg.ServiceName,
	}
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"), "showcase")
		if err != nil {
			return err
		}
		logOpts.Graylog = gw
	}

	logs := logging.NewSlogManager()
	logs.Setup(logOpts)
	logger := logs.Logger()
	logger.Info("starting showcase", "version", Version, "config", configDir)

	devMode := config.GetBool("devMode")
	loopCfg := config.GetLoopConfig()

	w := world.New(world.Options{
		Car:    config.CarSettings(),
		Camera: config.CameraConfig(),
		Logger: logger,
	})
	eng, err := engine.New(w, engine.Config{
		TargetFPS:     loopCfg.TargetFPS,
		FixedStepHz:   loopCfg.FixedStepHz,
		MaxFrameDelta: loopCfg.MaxFrameDelta,
	}, logger)
	if err != nil {
		return err
	}
	logs.SetContext(eng.LogAttrs)

	dir, err := director.New(w, logger.With("component", "director"),
		director.WithEvents(eng.Emit),
		director.WithNotifier(eng),
		director.DevMode(devMode),
	)
	if err != nil {
		return err
	}

	catalog, err := scenes.DefaultCatalog()
	if err != nil {
		return err
	}
	loader := scenes.NewLoader(w, dir, catalog, logger.With("component", "scenes"),
		scenes.WithNotifier(eng),
		scenes.WithEvents(eng.Emit),
		scenes.DevMode(devMode),
	)

	showCfg := config.GetShowcaseConfig()
	show := showcase.New(loader, w.Curtain, w.Vehicle, logger.With("component", "showcase"))
	show.DurationPerMap = showCfg.DurationPerMap
	show.OnEvent(eng.Emit)

	disp, err := dispatcher.New(logging.NewDispatcherLogger(logs.Zerolog()))
	if err != nil {
		return err
	}
	handlers.NewService(handlers.Dependencies{
		World:    w,
		Director: dir,
		Loader:   loader,
		Showcase: show,
		Notifier: eng,
	}).RegisterHandlers(disp)

	// recording
	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, logs.Zerolog(), logger.With("component", "storage"))
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	recorder := worker.New(worker.Dependencies{
		Backend:       backend,
		Logger:        logger.With("component", "recorder"),
		Emitter:       eng,
		FrameInterval: storageCfg.FrameInterval,
		FlushInterval: storageCfg.FlushInterval,
		QueueLimit:    storageCfg.QueueLimit,
	})
	recorder.RegisterHandlers(disp)

	hub := stream.NewHub(config.GetInt("http.streamInterval"), logger)
	defer hub.Close()

	eng.Attach(engine.Parts{Director: dir, Showcase: show, Dispatcher: disp})
	eng.Subscribe(recorder)
	eng.Subscribe(hub)
	eng.SubscribeEvents(recorder)
	eng.SubscribeEvents(hub)

	if sessionName == "" {
		sessionName = startTime.Format("2006-01-02_15-04-05")
	}
	startScene := config.GetString("startScene")
	session := &core.Session{
		Name:        sessionName,
		StartTime:   startTime.UTC(),
		StartScene:  startScene,
		TargetFPS:   loopCfg.TargetFPS,
		FixedStepHz: loopCfg.FixedStepHz,
		Version:     Version,
	}
	if err := recorder.StartSession(session); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}
	hub.SetSession(session)

	mon, err := monitor.NewService(monitor.Dependencies{
		Recorder:  recorder,
		Logger:    logger.With("component", "monitor"),
		StatusDir: logsDir,
	})
	if err != nil {
		return err
	}
	defer mon.Close()
	if err := mon.Start(); err != nil {
		logger.Warn("status monitor not started", "error", err)
	}

	// Scene setup runs before the loop starts, so calling in directly is safe.
	if err := loader.Load(startScene); err != nil {
		logger.Error("failed to load start scene", "scene", startScene, "error", err)
	}
	if showCfg.AutoStart {
		show.Start()
	}

	srv := api.NewServer(api.Dependencies{
		Engine:   eng,
		Commands: disp,
		Catalog:  catalog,
		Recorder: recorder,
		Stream:   hub,
		Logger:   logger.With("component", "http"),
		Version:  Version,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return recorder.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx, config.GetString("http.addr")) })
	runErr := g.Wait()
	logger.Info("shutting down", "frames", recorder.Stats().FramesSeen)

	mon.Stop()
	if err := backend.Close(); err != nil {
		logger.Error("error closing storage", "error", err)
	}

	if exp, ok := backend.(storage.Exporter); ok {
		last, _ := eng.Snapshot()
		uploadRecording(logger, exp.ExportedFilePath(), session, last)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "otel shutdown:", err)
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// uploadRecording sends the exported file to the archive when uploads are
// enabled. Failures are logged; the file stays on disk either way.
func uploadRecording(logger *slog.Logger, path string, session *core.Session, last core.FrameState) {
	cfg := config.GetUploadConfig()
	if !cfg.Enabled || path == "" {
		return
	}
	meta := upload.MetadataFor(session, last, cfg.Tag)

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	client := upload.New(cfg.URL, cfg.Secret)
	if err := client.Healthcheck(ctx); err != nil {
		logger.Error("archive unreachable, keeping recording locally", "file", path, "error", err)
		return
	}
	if err := client.Upload(ctx, path, meta); err != nil {
		logger.Error("upload failed", "file", filepath.Base(path), "error", err)
		return
	}
	logger.Info("recording uploaded", "file", filepath.Base(path), "url", cfg.URL)
}
