// pkg/core/frame.go
package core

import "time"

// DirectorState names the director's state machine position.
type DirectorState string

const (
	DirectorIdle    DirectorState = "idle"
	DirectorArmed   DirectorState = "armed"
	DirectorRunning DirectorState = "running"
)

// DirectorStatus is the director's externally visible state.
type DirectorStatus struct {
	State      DirectorState `json:"state"`
	CurrentCut string        `json:"currentCut,omitempty"`
	TimeInShot float64       `json:"timeInShot"`
}

// ShowcaseStatus reports the automatic playlist.
type ShowcaseStatus struct {
	Active bool    `json:"active"`
	Scene  string  `json:"scene,omitempty"`
	Timer  float64 `json:"timer"`
}

// FrameState is the snapshot published to the renderer once per frame.
type FrameState struct {
	Frame     uint64         `json:"frame"`
	Time      time.Time      `json:"time"`
	TotalTime float64        `json:"totalTime"` // seconds on the loop clock
	Delta     float64        `json:"delta"`
	Ticks     int            `json:"ticks"` // physics ticks run this frame
	Scene     string         `json:"scene"`
	Vehicle   VehicleState   `json:"vehicle"`
	Rig       CarRig         `json:"rig"`
	Settings  CarSettings    `json:"settings"`
	Camera    CameraPose     `json:"camera"`
	Lighting  LightingConfig `json:"lighting"`
	Director  DirectorStatus `json:"director"`
	Showcase  ShowcaseStatus `json:"showcase"`
	Curtain   float64        `json:"curtain"` // 1 = black
}
