package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

func deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// PoseTable renders one row per node with its joint state and world pose.
// poses must be index-aligned with chain.Nodes(). Positions of joints
// driven by a mimic parent are starred.
func PoseTable(chain *kinematics.Chain, poses []spatial.Transform, st Styles) string {
	nodes := chain.Nodes()
	cols := []struct {
		title string
		width int
	}{
		{"JOINT", 14}, {"TYPE", 10}, {"POS", 9}, {"LIMITS", 18},
		{"X", 8}, {"Y", 8}, {"Z", 8}, {"RPY (deg)", 22},
	}

	cell := func(s string, w int) string {
		return lipgloss.NewStyle().Width(w).Render(s)
	}

	var b strings.Builder
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = cell(c.title, c.width)
	}
	b.WriteString(st.Header.Render(strings.Join(hdr, " ")))
	b.WriteString("\n")

	for i, n := range nodes {
		pos := "-"
		if q, ok := n.Position(); ok {
			pos = fmt.Sprintf("%.4f", q)
		}
		if _, ok := n.MimicParent(); ok {
			pos += "*"
		}
		lim := "-"
		if l := n.Limits(); l != nil {
			lim = fmt.Sprintf("[%.3f, %.3f]", l.Min, l.Max)
		}
		var x, y, z, rpy string
		if i < len(poses) {
			t := poses[i].Translation()
			r, p, yw := poses[i].RPY()
			x, y, z = fmt.Sprintf("%.4f", t.X), fmt.Sprintf("%.4f", t.Y), fmt.Sprintf("%.4f", t.Z)
			rpy = fmt.Sprintf("%.1f %.1f %.1f", deg(r), deg(p), deg(yw))
		}
		row := []string{
			st.Value.Render(cell(n.Name(), cols[0].width)),
			st.Label.Render(cell(n.JointType().Kind.String(), cols[1].width)),
			cell(pos, cols[2].width),
			st.Subtle.Render(cell(lim, cols[3].width)),
			cell(x, cols[4].width),
			cell(y, cols[5].width),
			cell(z, cols[6].width),
			cell(rpy, cols[7].width),
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}
