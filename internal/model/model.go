package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&FrameSample{},
	&EventRecord{},
	&RecorderPerformance{},
}

////////////////////////
// SESSION MODELS
////////////////////////

// Session is one run of the frame loop, from startup to shutdown.
type Session struct {
	gorm.Model
	Name        string    `json:"name" gorm:"size:127"`
	StartTime   time.Time `json:"startTime" gorm:"index:idx_session_start"`
	EndTime     time.Time `json:"endTime"`
	StartScene  string    `json:"startScene" gorm:"size:64"`
	TargetFPS   float32   `json:"targetFps" gorm:"default:60"`
	FixedStepHz float32   `json:"fixedStepHz" gorm:"default:60"`
	Version     string    `json:"version" gorm:"size:64"`

	// Track is the car's sampled path; empty until the session ends.
	Track    geom.LineString `json:"track"`
	Distance float64         `json:"distance"`
	Frames   uint64          `json:"frames"`
	Settings datatypes.JSON  `json:"settings"`

	FrameSamples []FrameSample
	Events       []EventRecord
}

func (*Session) TableName() string {
	return "sessions"
}

////////////////////////
// RECORDING MODELS
////////////////////////

// FrameSample is a sampled render frame.
type FrameSample struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement"`
	SessionID  uint       `json:"sessionId" gorm:"index:idx_framesample_session_frame,priority:1"`
	Session    Session    `json:"-" gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Frame      uint64     `json:"frame" gorm:"index:idx_framesample_session_frame,priority:2"`
	Time       time.Time  `json:"time" gorm:"index:idx_framesample_time"`
	TotalTime  float64    `json:"totalTime"`
	Scene      string     `json:"scene" gorm:"size:64"`
	Position   geom.Point `json:"position"`
	Yaw        float32    `json:"yaw"`
	Speed      float32    `json:"speed"`
	Steering   float32    `json:"steering"`
	Scale      float32    `json:"scale"`
	AutoDrive  bool       `json:"autoDrive"`
	Camera     geom.Point `json:"camera"`
	CameraLook geom.Point `json:"cameraLook"`
	FOV        float32    `json:"fov"`
	Director   string     `json:"director" gorm:"size:16"`
	CurrentCut string     `json:"currentCut" gorm:"size:64"`
	Curtain    float32    `json:"curtain"`
	Theme      string     `json:"theme" gorm:"size:32"`
}

func (*FrameSample) TableName() string {
	return "frame_samples"
}

// EventRecord is a director, scene or vehicle event.
type EventRecord struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_eventrecord_session"`
	Session   Session   `json:"-" gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Frame     uint64    `json:"frame"`
	Time      time.Time `json:"time" gorm:"index:idx_eventrecord_time"`
	TotalTime float64   `json:"totalTime"`
	Kind      string    `json:"kind" gorm:"size:32;index:idx_eventrecord_kind"`
	Scene     string    `json:"scene" gorm:"size:64"`
	Detail    string    `json:"detail" gorm:"size:255"`
}

func (*EventRecord) TableName() string {
	return "event_records"
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// RecorderPerformance is a periodic snapshot of the recorder's queues.
type RecorderPerformance struct {
	ID                  uint      `json:"id" gorm:"primarykey;autoIncrement"`
	Time                time.Time `json:"time" gorm:"index:idx_recorderperformance_time"`
	SessionID           uint      `json:"sessionId" gorm:"index:idx_recorderperformance_session"`
	Session             Session   `json:"-" gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FrameQueue          uint32    `json:"frameQueue"`
	EventQueue          uint32    `json:"eventQueue"`
	FramesDropped       uint64    `json:"framesDropped"`
	LastWriteDurationMs float32   `json:"lastWriteDurationMs"`
}

func (*RecorderPerformance) TableName() string {
	return "recorder_performances"
}
