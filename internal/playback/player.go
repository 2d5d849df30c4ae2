package playback

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/san-kum/kinchain/internal/kinematics"
)

// Player drives a chain along a trajectory and records every frame.
type Player struct {
	chain     *kinematics.Chain
	traj      Trajectory
	end       kinematics.Node
	tracked   bool
	endIndex  int
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
}

// New returns a player tracking the last leaf of the chain.
func New(chain *kinematics.Chain, traj Trajectory) *Player {
	p := &Player{
		chain:     chain,
		traj:      traj,
		endIndex:  -1,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zerolog.Nop(),
	}
	p.resolveEnd()
	return p
}

func (p *Player) AddMetric(m Metric)     { p.metrics = append(p.metrics, m) }
func (p *Player) AddObserver(o Observer) { p.observers = append(p.observers, o) }

func (p *Player) SetLogger(l zerolog.Logger) { p.log = l }

// TrackJoint selects the node whose world position is recorded as Frame.End.
// The node stays tracked across restructuring; a run fails with
// ErrEndNotInChain once it is no longer reachable from the chain.
func (p *Player) TrackJoint(name string) error {
	n, err := p.chain.Find(name)
	if err != nil {
		return err
	}
	p.end = n
	p.tracked = true
	return p.resolveEnd()
}

// resolveEnd maps the tracked node to its index in the current traversal
// order. Without an explicit TrackJoint the last leaf is picked again.
func (p *Player) resolveEnd() error {
	if !p.tracked {
		p.endIndex = -1
		if leaves := p.chain.Leaves(); len(leaves) > 0 {
			p.end = leaves[len(leaves)-1]
			p.endIndex = p.chain.IndexOf(p.end)
		}
		return nil
	}
	idx := p.chain.IndexOf(p.end)
	if idx < 0 {
		p.endIndex = -1
		return fmt.Errorf("%s: %w", p.end.Name(), ErrEndNotInChain)
	}
	p.endIndex = idx
	return nil
}

// prepare rebuilds a restructured chain and re-resolves the tracked node.
func (p *Player) prepare(cfg Config) error {
	if err := p.validateConfig(cfg); err != nil {
		return err
	}
	if p.chain.Stale() {
		p.chain.Rebuild()
	}
	return p.resolveEnd()
}

// Run plays the trajectory from t=0 to cfg.Duration. A step that cannot be
// applied is recorded in Result.Errors and ends playback; cancellation
// returns the frames recorded so far with the context error.
func (p *Player) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := p.prepare(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Floor(cfg.Duration/cfg.Dt + 1e-9))
	result := &Result{
		Frames:  make([]Frame, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if p.endIndex >= 0 {
		result.EndJoint = p.end.Name()
	}

	for _, m := range p.metrics {
		m.Reset()
	}

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			p.collect(result)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		q := p.traj.Positions(t)
		if err := p.apply(q, cfg.Clamp); err != nil {
			result.Errors = append(result.Errors, &StepError{Step: i, Time: t, Positions: q, Wrapped: err})
			p.log.Warn().Err(err).Int("step", i).Float64("t", t).Msg("playback stopped")
			break
		}

		frame := p.capture(t)
		for _, m := range p.metrics {
			m.Observe(frame)
		}
		for _, obs := range p.observers {
			obs.OnFrame(frame)
		}
		result.Frames = append(result.Frames, frame)
		result.StepsTaken++
	}

	p.collect(result)
	p.log.Debug().Int("frames", len(result.Frames)).Int("errors", len(result.Errors)).Msg("playback finished")
	return result, nil
}

func (p *Player) apply(q []float64, clamp bool) error {
	if clamp {
		return p.chain.SetJointPositionsClamped(q)
	}
	return p.chain.SetJointPositions(q)
}

func (p *Player) capture(t float64) Frame {
	poses := p.chain.UpdateTransforms()
	f := Frame{
		Time:      t,
		Positions: p.chain.JointPositions(),
		Poses:     poses,
	}
	if p.endIndex >= 0 && p.endIndex < len(poses) {
		f.End = poses[p.endIndex].Translation()
	}
	return f
}

func (p *Player) collect(result *Result) {
	for _, m := range p.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (p *Player) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidConfig)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrInvalidConfig)
	}
	return nil
}

// RunWithCallback plays without recording; callback returning false stops
// playback early.
func (p *Player) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := p.prepare(cfg); err != nil {
		return err
	}

	steps := int(math.Floor(cfg.Duration/cfg.Dt + 1e-9))
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if err := p.apply(p.traj.Positions(t), cfg.Clamp); err != nil {
			return &StepError{Step: i, Time: t, Wrapped: err}
		}
		if !callback(p.capture(t)) {
			return nil
		}
	}
	return nil
}
