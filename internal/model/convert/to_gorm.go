// Package convert provides functions to convert core models to GORM models
package convert

import (
	"encoding/json"

	"github.com/nightdrive/showcase/internal/geo"
	"github.com/nightdrive/showcase/internal/model"
	"github.com/nightdrive/showcase/pkg/core"
	"gorm.io/datatypes"
)

// SettingsToJSON encodes car settings for the session row.
func SettingsToJSON(s core.CarSettings) datatypes.JSON {
	data, err := json.Marshal(s)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
// The track and settings stay empty until the session is closed.
func CoreToSession(s core.Session) model.Session {
	m := model.Session{
		Name:        s.Name,
		StartTime:   s.StartTime,
		StartScene:  s.StartScene,
		TargetFPS:   float32(s.TargetFPS),
		FixedStepHz: float32(s.FixedStepHz),
		Version:     s.Version,
		Settings:    datatypes.JSON("{}"),
	}
	m.ID = s.ID
	return m
}

// CoreToFrameSample converts a core.FrameState to a GORM model.FrameSample.
func CoreToFrameSample(f core.FrameState, sessionID uint) model.FrameSample {
	return model.FrameSample{
		SessionID:  sessionID,
		Frame:      f.Frame,
		Time:       f.Time,
		TotalTime:  f.TotalTime,
		Scene:      f.Scene,
		Position:   geo.PointFromVec3(f.Vehicle.Position),
		Yaw:        float32(f.Vehicle.VisualYaw),
		Speed:      float32(f.Vehicle.Speed),
		Steering:   float32(f.Vehicle.Steering),
		Scale:      float32(f.Vehicle.Scale),
		AutoDrive:  f.Settings.AutoDrive,
		Camera:     geo.PointFromVec3(f.Camera.Position),
		CameraLook: geo.PointFromVec3(f.Camera.Target),
		FOV:        float32(f.Camera.FOV),
		Director:   string(f.Director.State),
		CurrentCut: f.Director.CurrentCut,
		Curtain:    float32(f.Curtain),
		Theme:      f.Lighting.Theme,
	}
}

// CoreToEventRecord converts a core.Event to a GORM model.EventRecord.
func CoreToEventRecord(e core.Event, sessionID uint) model.EventRecord {
	return model.EventRecord{
		SessionID: sessionID,
		Frame:     e.Frame,
		Time:      e.Time,
		TotalTime: e.TotalTime,
		Kind:      string(e.Kind),
		Scene:     e.Scene,
		Detail:    e.Detail,
	}
}
