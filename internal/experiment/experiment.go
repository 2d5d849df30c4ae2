package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/san-kum/kinchain/internal/config"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/storage"
)

// Experiment is one playback of a configured chain.
type Experiment struct {
	cfg    *config.Config
	chain  *kinematics.Chain
	player *playback.Player
	log    zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Experiment {
	return &Experiment{
		cfg: cfg,
		log: log.With().Str("chain", cfg.Name).Logger(),
	}
}

// Setup builds the chain, its trajectory and the named metrics; no names
// selects every registered metric.
func (e *Experiment) Setup(reg *Registry, metricNames []string) error {
	_, chain, err := e.cfg.Build(kinematics.WithLogger(e.log))
	if err != nil {
		return fmt.Errorf("build chain: %w", err)
	}

	traj, err := playback.FromConfig(chain, e.cfg.Playback)
	if err != nil {
		return fmt.Errorf("trajectory: %w", err)
	}

	p := playback.New(chain, traj)
	p.SetLogger(e.log)
	if e.cfg.Playback.End != "" {
		if err := p.TrackJoint(e.cfg.Playback.End); err != nil {
			return err
		}
	}

	if len(metricNames) == 0 {
		for _, m := range reg.DefaultMetrics(chain) {
			p.AddMetric(m)
		}
	}
	for _, name := range metricNames {
		m, err := reg.GetMetric(name, chain)
		if err != nil {
			return err
		}
		p.AddMetric(m)
	}

	e.chain = chain
	e.player = p
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*playback.Result, error) {
	if e.player == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	e.log.Info().
		Float64("dt", e.cfg.Playback.Dt).
		Float64("duration", e.cfg.Playback.Duration).
		Str("trajectory", e.cfg.Playback.Trajectory).
		Msg("playback started")

	return e.player.Run(ctx, playback.Config{
		Dt:       e.cfg.Playback.Dt,
		Duration: e.cfg.Playback.Duration,
		Clamp:    e.cfg.Playback.Clamp,
	})
}

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	meta := storage.RunMetadata{
		Chain:      e.cfg.Name,
		Dt:         e.cfg.Playback.Dt,
		Duration:   e.cfg.Playback.Duration,
		Trajectory: e.cfg.Playback.Trajectory,
		Clamp:      e.cfg.Playback.Clamp,
	}
	if e.chain != nil {
		meta.Joints = e.chain.JointNames()
	}
	return meta
}

// Chain returns the chain built by Setup.
func (e *Experiment) Chain() *kinematics.Chain {
	return e.chain
}

// Player returns the underlying player for adding observers.
func (e *Experiment) Player() *playback.Player {
	return e.player
}
