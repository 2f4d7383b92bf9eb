package director

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/pkg/core"
)

// Cut names known to the default table.
const (
	CutUnderpassStart = "AU_Start"
	CutUnderpassSide  = "AU_Side"
	CutUnderpassTop   = "AU_Top"
)

// CutTable maps cut names to camera presets.
type CutTable map[string]core.ShotCut

// DefaultCuts returns the stock cut table.
func DefaultCuts() CutTable {
	return CutTable{
		CutUnderpassStart: {
			Position: mgl64.Vec3{0, 2, 10},
			Target:   mgl64.Vec3{0, 0.5, 0},
			Up:       mgl64.Vec3{0, 1, 0},
		},
		CutUnderpassSide: {
			Position: mgl64.Vec3{5, 0.5, 0},
			Target:   mgl64.Vec3{0, 0.5, 0},
			Up:       mgl64.Vec3{-0.2, 1, 0},
		},
		CutUnderpassTop: {
			Position: mgl64.Vec3{0, 20, 0},
			Target:   mgl64.Vec3{0, 0, 5},
			Up:       mgl64.Vec3{0, 0, 1},
		},
	}
}

// Merge returns a copy of t with extra entries added or replaced.
func (t CutTable) Merge(extra map[string]core.ShotCut) CutTable {
	out := make(CutTable, len(t)+len(extra))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
