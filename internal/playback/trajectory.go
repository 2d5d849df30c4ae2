package playback

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/kinchain/internal/config"
	"github.com/san-kum/kinchain/internal/kinematics"
)

// Linear interpolates between waypoints. Before the first time it holds the
// first waypoint, after the last it holds the last.
type Linear struct {
	Times  []float64
	Points [][]float64
}

// NewLinear spreads points evenly over duration.
func NewLinear(points [][]float64, duration float64) (*Linear, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no waypoints: %w", ErrTrajectoryShape)
	}
	times := make([]float64, len(points))
	if len(points) > 1 {
		for i := range points {
			times[i] = duration * float64(i) / float64(len(points)-1)
		}
	}
	return NewLinearTimed(times, points)
}

// NewLinearTimed uses explicit, non-decreasing waypoint times.
func NewLinearTimed(times []float64, points [][]float64) (*Linear, error) {
	if len(points) == 0 || len(times) != len(points) {
		return nil, fmt.Errorf("%d times for %d waypoints: %w", len(times), len(points), ErrTrajectoryShape)
	}
	if !sort.Float64sAreSorted(times) {
		return nil, fmt.Errorf("waypoint times must not decrease: %w", ErrTrajectoryShape)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("waypoint %d has %d values, want %d: %w", i, len(p), dim, ErrTrajectoryShape)
		}
	}
	return &Linear{Times: times, Points: points}, nil
}

func (l *Linear) Dim() int {
	return len(l.Points[0])
}

func (l *Linear) Positions(t float64) []float64 {
	out := make([]float64, l.Dim())
	last := len(l.Times) - 1
	switch {
	case t <= l.Times[0]:
		copy(out, l.Points[0])
		return out
	case t >= l.Times[last]:
		copy(out, l.Points[last])
		return out
	}
	i := sort.SearchFloat64s(l.Times, t)
	if l.Times[i] == t {
		copy(out, l.Points[i])
		return out
	}
	t0, t1 := l.Times[i-1], l.Times[i]
	a, b := l.Points[i-1], l.Points[i]
	s := (t - t0) / (t1 - t0)
	for k := range out {
		out[k] = a[k] + s*(b[k]-a[k])
	}
	return out
}

// Sweep moves one joint from Min to Max and back once per Period, holding
// every other joint at Hold.
type Sweep struct {
	Index  int
	Min    float64
	Max    float64
	Period float64
	Hold   []float64
}

// NewSweep sweeps the named joint across its limits, holding the chain's
// current positions elsewhere. Unlimited rotational joints sweep a full
// turn, unlimited linear joints one unit either way.
func NewSweep(chain *kinematics.Chain, joint string, period float64) (*Sweep, error) {
	names := chain.JointNames()
	idx := -1
	for i, n := range names {
		if n == joint {
			idx = i
			break
		}
	}
	if idx < 0 {
		if _, err := chain.Find(joint); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("joint %q is not movable: %w", joint, kinematics.ErrNotMovable)
	}
	if period <= 0 {
		return nil, fmt.Errorf("sweep period must be positive, got %f: %w", period, ErrInvalidConfig)
	}

	node := chain.Movable()[idx]
	lo, hi := -1.0, 1.0
	if node.JointType().Kind == kinematics.Rotational {
		lo, hi = -math.Pi, math.Pi
	}
	if l := node.Limits(); l != nil {
		lo, hi = l.Min, l.Max
	}
	return &Sweep{
		Index:  idx,
		Min:    lo,
		Max:    hi,
		Period: period,
		Hold:   chain.JointPositions(),
	}, nil
}

func (s *Sweep) Positions(t float64) []float64 {
	out := make([]float64, len(s.Hold))
	copy(out, s.Hold)
	phase := 2 * math.Pi * t / s.Period
	out[s.Index] = s.Min + (s.Max-s.Min)*(1-math.Cos(phase))/2
	return out
}

// FromConfig builds the trajectory named by cfg for chain.
func FromConfig(chain *kinematics.Chain, cfg config.PlaybackConfig) (Trajectory, error) {
	switch cfg.Trajectory {
	case "", "sweep":
		joint := cfg.Joint
		if joint == "" {
			names := chain.JointNames()
			if len(names) == 0 {
				return nil, fmt.Errorf("chain has no movable joints: %w", ErrTrajectoryShape)
			}
			joint = names[0]
		}
		return NewSweep(chain, joint, cfg.Duration)
	case "waypoints", "linear":
		lin, err := NewLinear(cfg.Waypoints, cfg.Duration)
		if err != nil {
			return nil, err
		}
		if lin.Dim() != chain.Dof() {
			return nil, fmt.Errorf("waypoints have %d values, chain has %d joints: %w", lin.Dim(), chain.Dof(), ErrTrajectoryShape)
		}
		return lin, nil
	default:
		return nil, fmt.Errorf("unknown trajectory %q", cfg.Trajectory)
	}
}
