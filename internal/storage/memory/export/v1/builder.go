package v1

import (
	"math"
	"time"

	"github.com/nightdrive/showcase/internal/geo"
	"github.com/nightdrive/showcase/pkg/core"
)

// SessionData contains all the data needed to build an export
type SessionData struct {
	Session *core.Session
	Frames  []core.FrameState
	Events  []core.Event
}

// Build creates an Export from the session data
func Build(data *SessionData) Export {
	export := Export{
		FormatVersion: FormatVersion,
		Scenes:        make([]SceneSpan, 0),
		Cuts:          make(map[string]int),
		Frames:        make([][]any, 0, len(data.Frames)),
		Events:        make([][]any, 0, len(data.Events)),
	}
	if s := data.Session; s != nil {
		export.Session = Session{
			Name:        s.Name,
			StartTime:   s.StartTime.UTC().Format(time.RFC3339),
			StartScene:  s.StartScene,
			TargetFPS:   s.TargetFPS,
			FixedStepHz: s.FixedStepHz,
			Version:     s.Version,
		}
	}

	track := geo.NewTrack(0)
	for _, f := range data.Frames {
		p := f.Vehicle.Position
		export.Frames = append(export.Frames, []any{
			f.Frame,
			round(f.TotalTime, 3),
			[]float64{round(p.X(), 3), round(p.Y(), 3), round(p.Z(), 3)},
			round(f.Vehicle.VisualYaw, 4),
			round(f.Vehicle.Speed, 4),
			round(f.Vehicle.Steering, 4),
			string(f.Director.State),
			f.Director.CurrentCut,
		})
		track.Add(p)

		// consecutive frames in one scene share a span
		if n := len(export.Scenes); n > 0 && export.Scenes[n-1].Name == f.Scene {
			export.Scenes[n-1].EndFrame = f.Frame
		} else {
			export.Scenes = append(export.Scenes, SceneSpan{Name: f.Scene, StartFrame: f.Frame, EndFrame: f.Frame})
		}

		if f.Frame > export.EndFrame {
			export.EndFrame = f.Frame
		}
		if f.TotalTime > export.Duration {
			export.Duration = f.TotalTime
		}
	}

	if ls, err := track.LineString(); err == nil {
		export.Distance = round(geo.GroundLength(ls), 3)
	}

	// Format: [frameNum, kind, detail, scene]
	for _, e := range data.Events {
		export.Events = append(export.Events, []any{
			e.Frame,
			string(e.Kind),
			e.Detail,
			e.Scene,
		})
		if e.Kind == core.EventCut {
			export.Cuts[e.Detail]++
		}
		if e.Frame > export.EndFrame {
			export.EndFrame = e.Frame
		}
	}

	return export
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
