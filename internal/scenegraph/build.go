package scenegraph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is a named collider as stored in scene tuning files.
type Box struct {
	Name string     `yaml:"name"`
	Min  mgl64.Vec3 `yaml:"min"`
	Max  mgl64.Vec3 `yaml:"max"`
}

// FromBoxes builds a flat graph with one mesh per box.
func FromBoxes(name string, boxes []Box) *Graph {
	root := NewGroup(name)
	for i, b := range boxes {
		n := b.Name
		if n == "" {
			n = fmt.Sprintf("%s_box_%d", name, i)
		}
		root.Add(NewMesh(n, mgl64.Vec3{}, AABB{Min: b.Min, Max: b.Max}))
	}
	return New(root)
}

// TestTrack builds the debug environment: a 40 by 300 road with a painted
// centre line and a few barrier blocks down the side.
func TestTrack() *Graph {
	road := NewMesh("road", mgl64.Vec3{}, AABB{
		Min: mgl64.Vec3{-20, -0.1, -150},
		Max: mgl64.Vec3{20, 0, 150},
	})
	line := NewMesh("centre_line", mgl64.Vec3{0, 0.01, 0}, AABB{
		Min: mgl64.Vec3{-0.25, -0.01, -150},
		Max: mgl64.Vec3{0.25, 0, 150},
	})
	barriers := NewGroup("barriers")
	for i, z := range []float64{-100, -50, 50, 100} {
		barriers.Add(NewMesh(fmt.Sprintf("barrier_%d", i), mgl64.Vec3{18, 0, z}, AABB{
			Min: mgl64.Vec3{-1, 0, -2},
			Max: mgl64.Vec3{1, 1.5, 2},
		}))
	}
	return New(NewGroup("test_track", road, line, barriers, NewGroup("grid")))
}

// LightFilter selects meshes that look like lamp heads hanging above a
// road: centred within a height band and small across the ground.
type LightFilter struct {
	MinY, MaxY float64
	MaxSize    float64
}

// DefaultLightFilter matches street lamps between 5 and 20 units up that
// are narrower than 10 units.
var DefaultLightFilter = LightFilter{MinY: 5, MaxY: 20, MaxSize: 10}

// StreetLights returns the world-space centre of every matching mesh.
func StreetLights(g *Graph, f LightFilter) []mgl64.Vec3 {
	return Collect(g, func(n *Node) (mgl64.Vec3, bool) {
		box, ok := n.WorldBounds()
		if !ok {
			return mgl64.Vec3{}, false
		}
		c, s := box.Center(), box.Size()
		high := c.Y() > f.MinY && c.Y() < f.MaxY
		small := s.X() < f.MaxSize && s.Z() < f.MaxSize
		return c, high && small
	})
}
