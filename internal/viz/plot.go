package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinchain/internal/playback"
)

// Plot renders one series as an ASCII line chart.
func Plot(data []float64, caption string, height, width int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotJoints renders one chart per joint, at most limit charts.
func PlotJoints(frames []playback.Frame, names []string, limit int) []string {
	if len(frames) == 0 {
		return nil
	}
	n := len(frames[0].Positions)
	if limit > 0 && n > limit {
		n = limit
	}
	charts := make([]string, 0, n)
	for j := 0; j < n; j++ {
		data := make([]float64, len(frames))
		for i, f := range frames {
			if j < len(f.Positions) {
				data[i] = f.Positions[j]
			}
		}
		caption := fmt.Sprintf("q%d vs time", j)
		if j < len(names) {
			caption = names[j] + " vs time"
		}
		charts = append(charts, Plot(data, caption, 10, 80))
	}
	return charts
}

// PlotEnd renders the end node's x, y and z over time.
func PlotEnd(frames []playback.Frame, joint string) []string {
	if len(frames) == 0 {
		return nil
	}
	xs := make([]float64, len(frames))
	ys := make([]float64, len(frames))
	zs := make([]float64, len(frames))
	for i, f := range frames {
		xs[i], ys[i], zs[i] = f.End.X, f.End.Y, f.End.Z
	}
	if joint == "" {
		joint = "end"
	}
	return []string{
		Plot(xs, joint+" x", 8, 80),
		Plot(ys, joint+" y", 8, 80),
		Plot(zs, joint+" z", 8, 80),
	}
}
