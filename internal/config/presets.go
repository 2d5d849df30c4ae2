package config

import (
	"math"
	"sort"

	"github.com/san-kum/kinchain/internal/kinematics"
)

func deg(d float64) float64 {
	return d * math.Pi / 180.0
}

func limits(lo, hi float64) *kinematics.Range {
	return &kinematics.Range{Min: lo, Max: hi}
}

func ptr(v float64) *float64 {
	return &v
}

var (
	axisX = [3]float64{1, 0, 0}
	axisY = [3]float64{0, 1, 0}
	axisZ = [3]float64{0, 0, 1}
)

// Presets are built-in chains.
var Presets = map[string]*Config{
	"planar2": {
		Name: "planar2",
		Joints: []JointConfig{
			{Name: "l0", Type: "rotational", Axis: axisY, XYZ: [3]float64{0, 0, 0.2}},
			{Name: "l1", Parent: "l0", Type: "linear", Axis: axisZ, XYZ: [3]float64{0, 0, 1.0}},
		},
		Playback: PlaybackConfig{Dt: DefaultDt, Duration: DefaultDuration, Trajectory: "sweep", Joint: "l0"},
	},
	"scara": {
		Name: "scara",
		Joints: []JointConfig{
			{Name: "base", Type: "fixed", XYZ: [3]float64{0, 0, 0.4}},
			{Name: "shoulder", Parent: "base", Type: "revolute", Axis: axisZ, Limits: limits(deg(-130), deg(130))},
			{Name: "elbow", Parent: "shoulder", Type: "revolute", Axis: axisZ, XYZ: [3]float64{0.35, 0, 0}, Limits: limits(deg(-145), deg(145))},
			{Name: "quill", Parent: "elbow", Type: "prismatic", Axis: [3]float64{0, 0, -1}, XYZ: [3]float64{0.3, 0, 0}, Limits: limits(0, 0.2)},
			{Name: "wrist", Parent: "quill", Type: "revolute", Axis: axisZ, Limits: limits(-math.Pi, math.Pi)},
		},
		Playback: PlaybackConfig{Dt: DefaultDt, Duration: DefaultDuration, Trajectory: "waypoints",
			Waypoints: [][]float64{
				{0, 0, 0, 0},
				{deg(60), deg(-90), 0.1, 0},
				{deg(-60), deg(90), 0.2, deg(90)},
				{0, 0, 0, 0},
			}},
	},
	"arm6": {
		Name: "arm6",
		Joints: []JointConfig{
			{Name: "waist", Type: "revolute", Axis: axisZ, XYZ: [3]float64{0, 0, 0.079}, Limits: limits(deg(-180), deg(180))},
			{Name: "shoulder", Parent: "waist", Type: "revolute", Axis: axisY, XYZ: [3]float64{0, 0, 0.04805}, Limits: limits(deg(-110), deg(75))},
			{Name: "elbow", Parent: "shoulder", Type: "revolute", Axis: axisY, XYZ: [3]float64{0.05955, 0, 0.3}, Limits: limits(deg(-106), deg(97))},
			{Name: "forearm_roll", Parent: "elbow", Type: "revolute", Axis: axisX, XYZ: [3]float64{0.2, 0, 0}, Limits: limits(deg(-360), deg(360))},
			{Name: "wrist_angle", Parent: "forearm_roll", Type: "revolute", Axis: axisY, XYZ: [3]float64{0.1, 0, 0}, Limits: limits(deg(-110), deg(130))},
			{Name: "wrist_rotate", Parent: "wrist_angle", Type: "revolute", Axis: axisX, XYZ: [3]float64{0.069744, 0, 0}, Limits: limits(deg(-360), deg(360))},
			{Name: "ee", Parent: "wrist_rotate", Type: "fixed", XYZ: [3]float64{0.043, 0, 0}},
		},
		Playback: PlaybackConfig{Dt: DefaultDt, Duration: DefaultDuration, Trajectory: "sweep", Joint: "shoulder"},
	},
	"gripper": {
		Name: "gripper",
		Joints: []JointConfig{
			{Name: "palm", Type: "revolute", Axis: axisZ, Limits: limits(-math.Pi, math.Pi)},
			{Name: "finger_left", Parent: "palm", Type: "prismatic", Axis: axisY, XYZ: [3]float64{0, 0.01, 0.05}, Limits: limits(0, 0.04)},
			{Name: "finger_right", Parent: "palm", Type: "prismatic", Axis: [3]float64{0, -1, 0}, XYZ: [3]float64{0, -0.01, 0.05}, Limits: limits(0, 0.04),
				Mimic: &MimicConfig{Joint: "finger_left", Multiplier: ptr(1)}},
		},
		Playback: PlaybackConfig{Dt: DefaultDt, Duration: DefaultDuration, Trajectory: "sweep", Joint: "finger_left"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
