package worker

import (
	"errors"
	"strings"

	"github.com/nightdrive/showcase/internal/dispatcher"
	"github.com/nightdrive/showcase/pkg/core"
)

// ErrNoSession is returned by commands that need an active session.
var ErrNoSession = errors.New("no active recording session")

// RegisterHandlers registers the recorder commands with the dispatcher.
// They run on the loop goroutine and only touch counters and queues.
func (r *Recorder) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("recorder.status", r.handleStatus, dispatcher.Usage("report recorder counters"))
	d.Register("recorder.pause", r.handlePause, dispatcher.Logged(), dispatcher.Usage("stop sampling frames, keep recording events"))
	d.Register("recorder.resume", r.handleResume, dispatcher.Logged())
	d.Register("recorder.mark", r.handleMark, dispatcher.Logged(), dispatcher.Usage("recorder.mark <label>"))
}

func (r *Recorder) handleStatus(e dispatcher.Event) (any, error) {
	return r.Stats(), nil
}

func (r *Recorder) handlePause(e dispatcher.Event) (any, error) {
	if !r.active.Load() {
		return nil, ErrNoSession
	}
	r.Pause()
	return r.Stats(), nil
}

func (r *Recorder) handleResume(e dispatcher.Event) (any, error) {
	if !r.active.Load() {
		return nil, ErrNoSession
	}
	r.Resume()
	return r.Stats(), nil
}

// handleMark drops a labelled marker into the recording. With an emitter
// the marker reaches every event sink; without one only the recorder sees
// it.
func (r *Recorder) handleMark(e dispatcher.Event) (any, error) {
	if !r.active.Load() {
		return nil, ErrNoSession
	}
	label := strings.TrimSpace(strings.Join(e.Args, " "))
	if label == "" {
		label = "mark"
	}
	if r.deps.Emitter != nil {
		r.deps.Emitter.Emit(core.EventMark, label)
	} else {
		r.PublishEvent(core.Event{Kind: core.EventMark, Time: e.Timestamp, Detail: label})
	}
	return map[string]string{"mark": label}, nil
}
