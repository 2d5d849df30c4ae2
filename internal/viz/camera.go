package viz

import (
	"math"
	"sort"

	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

// Camera is an orthographic orbit camera. World Z points up on screen.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: -0.6, Pitch: 0.35, Zoom: 1.0}
}

// Orbit turns the camera; pitch stays within straight down and straight up.
func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// view returns screen right, screen up and depth (larger is farther).
func (c *Camera) view(v spatial.Vec) (float64, float64, float64) {
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	x := v.X*cy - v.Y*sy
	y := v.X*sy + v.Y*cy
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	depth := y*cp + v.Z*sp
	up := -y*sp + v.Z*cp
	return x, up, depth
}

// Project maps v onto a w x h sub-pixel screen where extent world units
// fill half the smaller dimension.
func (c *Camera) Project(v spatial.Vec, w, h int, extent float64) (int, int, float64) {
	x, up, depth := c.view(v)
	if extent <= 0 {
		extent = 1
	}
	half := float64(w) / 2
	if hh := float64(h) / 2; hh < half {
		half = hh
	}
	scale := half / extent * c.Zoom
	return int(math.Round(x*scale)) + w/2, h/2 - int(math.Round(up*scale)), depth
}

type Edge struct {
	Start, End spatial.Vec
}

// Scene is a set of world-space segments and joint markers.
type Scene struct {
	Edges  []Edge
	Joints []spatial.Vec
}

// ChainScene links every node to its parent (roots to the world origin) and
// marks each joint origin. poses must be index-aligned with chain.Nodes().
func ChainScene(chain *kinematics.Chain, poses []spatial.Transform) Scene {
	nodes := chain.Nodes()
	s := Scene{
		Edges:  make([]Edge, 0, len(nodes)),
		Joints: make([]spatial.Vec, 0, len(nodes)),
	}
	if len(poses) != len(nodes) {
		return s
	}
	index := make(map[kinematics.NodeID]int, len(nodes))
	for i, n := range nodes {
		index[n.ID()] = i
	}
	for i, n := range nodes {
		end := poses[i].Translation()
		start := spatial.Zero
		if p, ok := n.Parent(); ok {
			if j, ok := index[p.ID()]; ok {
				start = poses[j].Translation()
			}
		}
		s.Edges = append(s.Edges, Edge{Start: start, End: end})
		s.Joints = append(s.Joints, end)
	}
	return s
}

// Extent returns the largest distance of any scene point from the origin,
// padded by 10%.
func (s Scene) Extent() float64 {
	r := 0.0
	for _, e := range s.Edges {
		r = math.Max(r, math.Max(e.Start.Length(), e.End.Length()))
	}
	if r == 0 {
		return 1
	}
	return r * 1.1
}

// Render draws the ground axes, then the edges far to near, then the joint
// markers.
func Render(c *Canvas, s Scene, cam *Camera, extent float64) {
	if c == nil || cam == nil {
		return
	}
	w, h := c.Pixels()

	type projected struct {
		x1, y1, x2, y2 int
		depth          float64
	}
	proj := make([]projected, 0, len(s.Edges))
	for _, e := range s.Edges {
		x1, y1, d1 := cam.Project(e.Start, w, h, extent)
		x2, y2, d2 := cam.Project(e.End, w, h, extent)
		proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })

	ox, oy, _ := cam.Project(spatial.Zero, w, h, extent)
	for _, axis := range []spatial.Vec{spatial.UnitX, spatial.UnitY} {
		ax, ay, _ := cam.Project(axis.MulScalar(extent*0.25), w, h, extent)
		c.DrawLine(ox, oy, ax, ay)
	}

	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
	for _, j := range s.Joints {
		x, y, _ := cam.Project(j, w, h, extent)
		c.Dot(x, y)
	}
}
