package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.02
	DefaultDuration = 5.0
)

// Config describes a chain and how to play it back.
type Config struct {
	Name      string         `yaml:"name" toml:"name"`
	Joints    []JointConfig  `yaml:"joints" toml:"joints"`
	Positions []float64      `yaml:"positions,omitempty" toml:"positions,omitempty"`
	Playback  PlaybackConfig `yaml:"playback" toml:"playback"`
}

// JointConfig declares one joint. Parent and Mimic.Joint refer to other
// joints by name.
type JointConfig struct {
	Name   string            `yaml:"name" toml:"name"`
	Parent string            `yaml:"parent,omitempty" toml:"parent,omitempty"`
	Type   string            `yaml:"type" toml:"type"`
	Axis   [3]float64        `yaml:"axis,flow" toml:"axis"`
	XYZ    [3]float64        `yaml:"xyz,flow" toml:"xyz"`
	RPY    [3]float64        `yaml:"rpy,flow" toml:"rpy"`
	Limits *kinematics.Range `yaml:"limits,omitempty" toml:"limits,omitempty"`
	Mimic  *MimicConfig      `yaml:"mimic,omitempty" toml:"mimic,omitempty"`
}

type MimicConfig struct {
	Joint      string   `yaml:"joint" toml:"joint"`
	Multiplier *float64 `yaml:"multiplier,omitempty" toml:"multiplier,omitempty"`
	Offset     float64  `yaml:"offset" toml:"offset"`
}

// PlaybackConfig selects a trajectory for the play command.
type PlaybackConfig struct {
	Dt         float64     `yaml:"dt" toml:"dt"`
	Duration   float64     `yaml:"duration" toml:"duration"`
	Clamp      bool        `yaml:"clamp" toml:"clamp"`
	Trajectory string      `yaml:"trajectory" toml:"trajectory"`
	Joint      string      `yaml:"joint,omitempty" toml:"joint,omitempty"`
	End        string      `yaml:"end,omitempty" toml:"end,omitempty"`
	Waypoints  [][]float64 `yaml:"waypoints,omitempty" toml:"waypoints,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "chain",
		Playback: PlaybackConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Trajectory: "sweep",
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Joints = make([]JointConfig, len(c.Joints))
	for i, jc := range c.Joints {
		if jc.Limits != nil {
			l := *jc.Limits
			jc.Limits = &l
		}
		if jc.Mimic != nil {
			m := *jc.Mimic
			if m.Multiplier != nil {
				v := *m.Multiplier
				m.Multiplier = &v
			}
			jc.Mimic = &m
		}
		out.Joints[i] = jc
	}
	out.Positions = append([]float64(nil), c.Positions...)
	out.Playback.Waypoints = make([][]float64, len(c.Playback.Waypoints))
	for i, w := range c.Playback.Waypoints {
		out.Playback.Waypoints[i] = append([]float64(nil), w...)
	}
	return &out
}

// Load reads a YAML or TOML file, chosen by extension, over DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML or TOML, chosen by extension.
func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem in the joint declarations.
func (c *Config) Validate() error {
	var errs error
	if len(c.Joints) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("config %q declares no joints", c.Name))
	}
	names := make(map[string]bool, len(c.Joints))
	for _, jc := range c.Joints {
		if strings.TrimSpace(jc.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("joint name is required"))
			continue
		}
		if names[jc.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate joint %q", jc.Name))
		}
		names[jc.Name] = true
	}
	for i, jc := range c.Joints {
		if err := jc.validate(names); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("joint[%d] %q: %w", i, jc.Name, err))
		}
	}
	if c.Playback.Dt < 0 || c.Playback.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("playback dt and duration must not be negative"))
	}
	return errs
}

func (jc JointConfig) validate(names map[string]bool) error {
	var errs error
	typ, err := jc.jointType()
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if err := typ.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if jc.Parent != "" && !names[jc.Parent] {
		errs = multierr.Append(errs, fmt.Errorf("unknown parent %q", jc.Parent))
	}
	if jc.Parent == jc.Name && jc.Name != "" {
		errs = multierr.Append(errs, fmt.Errorf("joint is its own parent"))
	}
	if jc.Limits != nil && jc.Limits.Min > jc.Limits.Max {
		errs = multierr.Append(errs, fmt.Errorf("limits min %g > max %g", jc.Limits.Min, jc.Limits.Max))
	}
	if jc.Mimic != nil && !names[jc.Mimic.Joint] {
		errs = multierr.Append(errs, fmt.Errorf("unknown mimic joint %q", jc.Mimic.Joint))
	}
	return errs
}

func (jc JointConfig) jointType() (kinematics.JointType, error) {
	kind, err := kinematics.ParseJointKind(jc.Type)
	if err != nil {
		return kinematics.JointType{}, err
	}
	axis := vec(jc.Axis)
	switch kind {
	case kinematics.Rotational:
		return kinematics.RotationalJoint(axis), nil
	case kinematics.Linear:
		return kinematics.LinearJoint(axis), nil
	default:
		return kinematics.FixedJoint(), nil
	}
}

// Build validates the config and assembles the tree and its chain. Joints
// are added in declaration order, which fixes sibling order in the chain.
func (c *Config) Build(opts ...kinematics.ChainOption) (*kinematics.Tree, *kinematics.Chain, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	tree := kinematics.NewTree()
	nodes := make(map[string]kinematics.Node, len(c.Joints))
	for _, jc := range c.Joints {
		typ, _ := jc.jointType()
		b := kinematics.NewJointBuilder(jc.Name).
			Type(typ).
			Translation(vec(jc.XYZ)).
			RPY(jc.RPY[0], jc.RPY[1], jc.RPY[2])
		if jc.Limits != nil {
			b.Limits(jc.Limits.Min, jc.Limits.Max)
		}
		j, err := b.Build()
		if err != nil {
			return nil, nil, err
		}
		nodes[jc.Name] = tree.Add(j)
	}
	for _, jc := range c.Joints {
		n := nodes[jc.Name]
		if jc.Parent != "" {
			if err := n.SetParent(nodes[jc.Parent]); err != nil {
				return nil, nil, fmt.Errorf("joint %q: %w", jc.Name, err)
			}
		}
		if jc.Mimic != nil {
			m := kinematics.NewMimic(1, jc.Mimic.Offset)
			if jc.Mimic.Multiplier != nil {
				m.Multiplier = *jc.Mimic.Multiplier
			}
			if err := n.SetMimicParent(nodes[jc.Mimic.Joint], m); err != nil {
				return nil, nil, fmt.Errorf("joint %q: %w", jc.Name, err)
			}
		}
	}
	chain := tree.Chain(opts...)
	if len(c.Positions) > 0 {
		if err := chain.SetJointPositions(c.Positions); err != nil {
			return nil, nil, fmt.Errorf("initial positions: %w", err)
		}
	}
	return tree, chain, nil
}

func vec(a [3]float64) spatial.Vec {
	return spatial.Vec{X: a[0], Y: a[1], Z: a[2]}
}
