package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/kinchain/internal/playback"
)

type ExportData struct {
	Chain      string             `json:"chain"`
	Trajectory string             `json:"trajectory"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Joints     []string           `json:"joints"`
	EndJoint   string             `json:"end_joint"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Positions  [][]float64        `json:"positions"`
	End        [][3]float64       `json:"end"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a playback result as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *playback.Result) error {
	data := ExportData{
		Chain:      meta.Chain,
		Trajectory: meta.Trajectory,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Joints:     meta.Joints,
		EndJoint:   result.EndJoint,
		Steps:      len(result.Frames),
		Times:      result.Times(),
		Positions:  make([][]float64, len(result.Frames)),
		End:        make([][3]float64, len(result.Frames)),
		Metrics:    result.Metrics,
	}

	for i, f := range result.Frames {
		data.Positions[i] = f.Positions
		data.End[i] = [3]float64{f.End.X, f.End.Y, f.End.Z}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
