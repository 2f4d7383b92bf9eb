// Package v1 contains the v1 export format for recorded showcase sessions.
// Frames and events are positional arrays to keep long sessions small.
package v1

// FormatVersion is written into every export.
const FormatVersion = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion string         `json:"formatVersion"`
	Session       Session        `json:"session"`
	EndFrame      uint64         `json:"endFrame"`
	Duration      float64        `json:"duration"`
	Distance      float64        `json:"distance"`
	Scenes        []SceneSpan    `json:"scenes"`
	Cuts          map[string]int `json:"cuts"`

	// Frames: [frame, totalTime, [x, y, z], yaw, speed, steering, director, cut]
	Frames [][]any `json:"frames"`
	// Events: [frame, kind, detail, scene]
	Events [][]any `json:"events"`
}

// Session is the session header.
type Session struct {
	Name        string  `json:"name"`
	StartTime   string  `json:"startTime"`
	StartScene  string  `json:"startScene"`
	TargetFPS   float64 `json:"targetFps"`
	FixedStepHz float64 `json:"fixedStepHz"`
	Version     string  `json:"version"`
}

// SceneSpan is a run of consecutive sampled frames in one scene.
type SceneSpan struct {
	Name       string `json:"name"`
	StartFrame uint64 `json:"startFrame"`
	EndFrame   uint64 `json:"endFrame"`
}
