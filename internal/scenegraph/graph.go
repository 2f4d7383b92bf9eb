// Package scenegraph is a typed scene tree used for part lookup, street
// light detection and collision queries.
package scenegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/collision"
)

// Kind tags what a node is.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLight
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	default:
		return "group"
	}
}

// AABB is an axis-aligned box.
type AABB struct {
	Min mgl64.Vec3 `json:"min" yaml:"min"`
	Max mgl64.Vec3 `json:"max" yaml:"max"`
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by v.
func (b AABB) Translate(v mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// Intersect returns the entry distance of a ray with the box using the
// slab method. Rays starting inside the box do not hit it.
func (b AABB) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (b.Min[i] - origin[i]) * inv
		t2 := (b.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmin < 0 {
		return 0, false
	}
	return tmin, true
}

// Node is one element of the tree. Offset is relative to the parent.
type Node struct {
	Name     string
	Kind     Kind
	Offset   mgl64.Vec3
	Bounds   *AABB // local box, meshes only
	Children []*Node

	parent *Node
}

// NewGroup creates a group holding children.
func NewGroup(name string, children ...*Node) *Node {
	n := &Node{Name: name, Kind: KindGroup}
	n.Add(children...)
	return n
}

// NewMesh creates a mesh at offset with a local bounding box.
func NewMesh(name string, offset mgl64.Vec3, bounds AABB) *Node {
	return &Node{Name: name, Kind: KindMesh, Offset: offset, Bounds: &bounds}
}

// NewLight creates a light marker at offset.
func NewLight(name string, offset mgl64.Vec3) *Node {
	return &Node{Name: name, Kind: KindLight, Offset: offset}
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

func (n *Node) remove(c *Node) {
	for i, ch := range n.Children {
		if ch == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// Parent returns the node's parent, nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// WorldPosition sums offsets up to the root.
func (n *Node) WorldPosition() mgl64.Vec3 {
	var p mgl64.Vec3
	for cur := n; cur != nil; cur = cur.parent {
		p = p.Add(cur.Offset)
	}
	return p
}

// WorldBounds returns the mesh box in world space.
func (n *Node) WorldBounds() (AABB, bool) {
	if n.Kind != KindMesh || n.Bounds == nil {
		return AABB{}, false
	}
	return n.Bounds.Translate(n.WorldPosition()), true
}

// Graph is a rooted scene tree.
type Graph struct {
	Root *Node
}

// New wraps root in a Graph.
func New(root *Node) *Graph {
	if root == nil {
		root = NewGroup("root")
	}
	return &Graph{Root: root}
}

// Walk visits nodes depth first, parents before children. Returning false
// from fn stops the walk.
func (g *Graph) Walk(fn func(*Node) bool) {
	if g == nil || g.Root == nil {
		return
	}
	walk(g.Root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// Collect gathers a value from every node fn accepts.
func Collect[T any](g *Graph, fn func(*Node) (T, bool)) []T {
	var out []T
	g.Walk(func(n *Node) bool {
		if v, ok := fn(n); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

// Find returns the first node named name, or nil.
func (g *Graph) Find(name string) *Node {
	var found *Node
	g.Walk(func(n *Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Meshes returns every mesh node.
func (g *Graph) Meshes() []*Node {
	return Collect(g, func(n *Node) (*Node, bool) {
		return n, n.Kind == KindMesh
	})
}

// CastRay returns the nearest mesh hit along dir.
func (g *Graph) CastRay(origin, dir mgl64.Vec3) (collision.Hit, bool) {
	best := math.Inf(1)
	g.Walk(func(n *Node) bool {
		box, ok := n.WorldBounds()
		if !ok {
			return true
		}
		if d, hit := box.Intersect(origin, dir); hit && d < best {
			best = d
		}
		return true
	})
	if math.IsInf(best, 1) {
		return collision.Hit{}, false
	}
	return collision.Hit{Distance: best, Point: origin.Add(dir.Mul(best))}, true
}

var _ collision.Caster = (*Graph)(nil)
