// Package api serves the control surface over HTTP: health, the latest
// frame, the scene list, command submission and the live stream.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nightdrive/showcase/internal/dispatcher"
	"github.com/nightdrive/showcase/internal/scenes"
	"github.com/nightdrive/showcase/internal/worker"
	"github.com/nightdrive/showcase/pkg/core"
)

// DefaultCommandTimeout bounds how long a synchronous command may wait for
// the loop.
const DefaultCommandTimeout = 2 * time.Second

const maxBodySize = 64 * 1024

// Engine is the part of the frame loop the server drives.
type Engine interface {
	Submit(ev dispatcher.Event) error
	Call(ctx context.Context, ev dispatcher.Event) (any, error)
	Snapshot() (core.FrameState, bool)
	Pending() int
}

// CommandLister lists the registered commands.
type CommandLister interface {
	Commands() []dispatcher.Command
}

// StatsProvider reports recorder counters.
type StatsProvider interface {
	Stats() worker.Stats
}

// Dependencies holds everything the server reads from or drives. Catalog,
// Commands, Recorder and Stream may be nil.
type Dependencies struct {
	Engine   Engine
	Commands CommandLister
	Catalog  *scenes.Catalog
	Recorder StatsProvider
	Stream   http.Handler
	Logger   *slog.Logger

	Version        string
	CommandTimeout time.Duration
}

// Server routes the HTTP API.
type Server struct {
	deps    Dependencies
	mux     *http.ServeMux
	started time.Time
}

// NewServer creates a server and registers its routes.
func NewServer(deps Dependencies) *Server {
	if deps.CommandTimeout <= 0 {
		deps.CommandTimeout = DefaultCommandTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{deps: deps, mux: http.NewServeMux(), started: time.Now()}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("GET /scenes", s.handleScenes)
	s.mux.HandleFunc("GET /commands", s.handleCommands)
	s.mux.HandleFunc("POST /command/{name}", s.handleCommand)
	s.mux.HandleFunc("GET /recorder", s.handleRecorder)
	if deps.Stream != nil {
		s.mux.Handle("GET /stream", deps.Stream)
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version,omitempty"`
	Uptime  float64 `json:"uptime"`
	Frame   uint64  `json:"frame"`
	Scene   string  `json:"scene,omitempty"`
	Pending int     `json:"pending"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: s.deps.Version,
		Uptime:  time.Since(s.started).Seconds(),
		Pending: s.deps.Engine.Pending(),
	}
	if f, ok := s.deps.Engine.Snapshot(); ok {
		resp.Frame = f.Frame
		resp.Scene = f.Scene
	} else {
		resp.Status = "starting"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	f, ok := s.deps.Engine.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no frame published yet")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type sceneInfo struct {
	ID       int    `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	AutoPlay bool   `json:"autoPlay"`
	Next     string `json:"next,omitempty"`
	Current  bool   `json:"current"`
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	current := ""
	if f, ok := s.deps.Engine.Snapshot(); ok {
		current = f.Scene
	}

	ids := scenes.IDs()
	out := make([]sceneInfo, 0, len(ids))
	for _, id := range ids {
		info := sceneInfo{ID: int(id), Key: id.Key(), Name: id.String(), Current: id.String() == current}
		if s.deps.Catalog != nil {
			if t := s.deps.Catalog.Get(id); t != nil {
				info.AutoPlay = t.AutoPlay
				info.Next = t.Next
			}
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if s.deps.Commands == nil {
		writeJSON(w, http.StatusOK, []dispatcher.Command{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Commands.Commands())
}

func (s *Server) handleRecorder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recorder == nil {
		writeError(w, http.StatusNotFound, "recording disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Recorder.Stats())
}

type commandRequest struct {
	Args []string `json:"args"`
}

type commandResponse struct {
	Command string `json:"command"`
	Queued  bool   `json:"queued,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// handleCommand runs a command on the loop. Arguments come from a JSON body
// {"args": [...]} or repeated ?arg= parameters. With ?async=true the
// command is queued and the response does not wait for it.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	args, err := commandArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev := dispatcher.Event{Command: name, Args: args, Timestamp: time.Now()}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := s.deps.Engine.Submit(ev); err != nil {
			writeError(w, commandStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, commandResponse{Command: name, Queued: true})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deps.CommandTimeout)
	defer cancel()
	result, err := s.deps.Engine.Call(ctx, ev)
	if err != nil {
		writeError(w, commandStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Command: name, Result: result})
}

func commandArgs(r *http.Request) ([]string, error) {
	if args := r.URL.Query()["arg"]; len(args) > 0 {
		return args, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	var req commandRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("body must be {\"args\": [...]}")
	}
	return req.Args, nil
}

func commandStatus(err error) int {
	switch {
	case errors.Is(err, dispatcher.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the /stream upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.deps.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
