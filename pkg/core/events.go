// pkg/core/events.go
package core

import "time"

// EventKind classifies a director or scene event.
type EventKind string

const (
	EventPlay         EventKind = "play"
	EventStop         EventKind = "stop"
	EventCut          EventKind = "cut"
	EventCutMissed    EventKind = "cut_missed"
	EventWaypoint     EventKind = "waypoint"
	EventSceneLoaded  EventKind = "scene_loaded"
	EventSceneSwitch  EventKind = "scene_switch"
	EventShowcaseNext EventKind = "showcase_next"
	EventCrash        EventKind = "crash"
	EventNotice       EventKind = "notice"
	EventMark         EventKind = "mark"
)

// Event is a discrete occurrence recorded alongside the frame stream.
type Event struct {
	Kind      EventKind `json:"kind"`
	Frame     uint64    `json:"frame"`
	Time      time.Time `json:"time"`
	TotalTime float64   `json:"totalTime"`
	Scene     string    `json:"scene,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Session describes one run of the showcase loop.
type Session struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"startTime"`
	StartScene  string    `json:"startScene"`
	TargetFPS   float64   `json:"targetFps"`
	FixedStepHz float64   `json:"fixedStepHz"`
	Version     string    `json:"version"`
}
