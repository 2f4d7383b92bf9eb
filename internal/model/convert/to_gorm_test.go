package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightdrive/showcase/internal/geo"
	"github.com/nightdrive/showcase/pkg/core"
)

func TestCoreToSession(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := CoreToSession(core.Session{
		ID:          7,
		Name:        "evening run",
		StartTime:   start,
		StartScene:  "test",
		TargetFPS:   60,
		FixedStepHz: 60,
		Version:     "dev",
	})

	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "evening run", got.Name)
	assert.Equal(t, start, got.StartTime)
	assert.Equal(t, float32(60), got.TargetFPS)
	assert.True(t, got.Track.IsEmpty())
	assert.JSONEq(t, "{}", string(got.Settings))
}

func TestSettingsToJSON(t *testing.T) {
	settings := core.DefaultCarSettings()
	var back core.CarSettings
	require.NoError(t, json.Unmarshal(SettingsToJSON(settings), &back))
	assert.Equal(t, settings, back)
}

func TestCoreToFrameSample(t *testing.T) {
	f := core.FrameState{
		Frame:     42,
		TotalTime: 0.7,
		Scene:     "2. Bridge",
		Vehicle: core.VehicleState{
			Position:  mgl64.Vec3{1, 2, 3},
			VisualYaw: 0.25,
			Speed:     1.5,
			Scale:     4,
		},
		Settings: core.CarSettings{AutoDrive: true},
		Camera:   core.CameraPose{Position: mgl64.Vec3{0, 5, -10}, FOV: 50},
		Director: core.DirectorStatus{State: core.DirectorRunning, CurrentCut: "BR_Low"},
		Lighting: core.LightingConfig{Theme: "sunset"},
		Curtain:  0.5,
	}

	got := CoreToFrameSample(f, 3)
	assert.Equal(t, uint(3), got.SessionID)
	assert.Equal(t, uint64(42), got.Frame)
	assert.Equal(t, "running", got.Director)
	assert.Equal(t, "BR_Low", got.CurrentCut)
	assert.Equal(t, "sunset", got.Theme)
	assert.Equal(t, float32(0.25), got.Yaw)
	assert.True(t, got.AutoDrive)

	pos, ok := geo.Vec3FromPoint(got.Position)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, pos)
	cam, ok := geo.Vec3FromPoint(got.Camera)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 5, -10}, cam)
}

func TestCoreToEventRecord(t *testing.T) {
	got := CoreToEventRecord(core.Event{
		Kind:   core.EventCut,
		Frame:  9,
		Scene:  "4. Mountain",
		Detail: "MT_Ridge",
	}, 2)
	assert.Equal(t, "cut", got.Kind)
	assert.Equal(t, uint64(9), got.Frame)
	assert.Equal(t, "MT_Ridge", got.Detail)
	assert.Equal(t, uint(2), got.SessionID)
}
