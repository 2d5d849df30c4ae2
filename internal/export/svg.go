package export

import (
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

type point struct {
	X, Y float64
}

// frame maps projected world points onto an SVG canvas with 10% padding,
// keeping the aspect ratio.
type frame struct {
	minX, minY float64
	scale      float64
	width      int
	height     int
}

func fit(points []point, width, height int) frame {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	scale := float64(width) / rangeX
	if s := float64(height) / rangeY; s < scale {
		scale = s
	}
	return frame{minX: minX, minY: minY, scale: scale, width: width, height: height}
}

func (f frame) xy(p point) (float64, float64) {
	return (p.X - f.minX) * f.scale, float64(f.height) - (p.Y-f.minY)*f.scale
}

func (f frame) pixel(p point) (int, int) {
	x, y := f.xy(p)
	return int(math.Round(x)), int(math.Round(y))
}

func start(sb *strings.Builder, width, height int) *svg.SVG {
	canvas := svg.New(sb)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#0a0a0a")
	return canvas
}

func project(v spatial.Vec, plane spatial.Plane) point {
	x, y := plane.Project(v)
	return point{x, y}
}

var jointColor = map[kinematics.JointKind]string{
	kinematics.Fixed:      "#888899",
	kinematics.Rotational: "#00ccff",
	kinematics.Linear:     "#ffaa00",
}

// ChainSVG draws every link of the chain as a segment from its parent's
// origin to its own, with a dot per joint colored by kind. poses must be
// index-aligned with chain.Nodes(), as returned by UpdateTransforms.
func ChainSVG(chain *kinematics.Chain, poses []spatial.Transform, plane spatial.Plane, width, height int) string {
	nodes := chain.Nodes()
	if len(nodes) == 0 || len(poses) != len(nodes) {
		return ""
	}

	index := make(map[kinematics.NodeID]int, len(nodes))
	pts := make([]point, 0, len(nodes)+1)
	for i, n := range nodes {
		index[n.ID()] = i
		pts = append(pts, project(poses[i].Translation(), plane))
	}
	origin := project(spatial.Zero, plane)
	f := fit(append(pts, origin), width, height)

	var sb strings.Builder
	canvas := start(&sb, width, height)

	canvas.Gstyle("stroke:#cccccc;stroke-width:3;stroke-linecap:round")
	for i, n := range nodes {
		from := origin
		if p, ok := n.Parent(); ok {
			if j, ok := index[p.ID()]; ok {
				from = pts[j]
			}
		}
		x1, y1 := f.pixel(from)
		x2, y2 := f.pixel(pts[i])
		canvas.Line(x1, y1, x2, y2)
	}
	canvas.Gend()

	for i, n := range nodes {
		x, y := f.pixel(pts[i])
		canvas.Group()
		canvas.Title(n.Name())
		canvas.Circle(x, y, 5, fmt.Sprintf("fill:%s", jointColor[n.JointType().Kind]))
		canvas.Gend()
	}

	canvas.End()
	return sb.String()
}

// TraceSVG draws a polyline through the projected points.
func TraceSVG(points []spatial.Vec, plane spatial.Plane, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	pts := make([]point, len(points))
	for i, v := range points {
		pts[i] = project(v, plane)
	}
	f := fit(pts, width, height)

	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = f.pixel(p)
	}

	var sb strings.Builder
	canvas := start(&sb, width, height)
	canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", strokeColor))
	canvas.End()
	return sb.String()
}
