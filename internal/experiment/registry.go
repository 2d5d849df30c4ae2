package experiment

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/san-kum/kinchain/internal/config"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/metrics"
	"github.com/san-kum/kinchain/internal/playback"
)

type Registry struct {
	metrics map[string]func(*kinematics.Chain) playback.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(*kinematics.Chain) playback.Metric),
	}

	r.metrics["path_length"] = func(*kinematics.Chain) playback.Metric { return metrics.NewPathLength() }
	r.metrics["joint_travel"] = func(*kinematics.Chain) playback.Metric { return metrics.NewJointTravel() }
	r.metrics["max_reach"] = func(*kinematics.Chain) playback.Metric { return metrics.NewMaxReach() }
	r.metrics["limit_margin"] = func(c *kinematics.Chain) playback.Metric { return metrics.NewLimitMargin(c.Limits()) }

	return r
}

func (r *Registry) GetMetric(name string, chain *kinematics.Chain) (playback.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(chain), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the standard metric set for chain.
func (r *Registry) DefaultMetrics(chain *kinematics.Chain) []playback.Metric {
	return metrics.Standard(chain)
}

// ResolveChain returns a copy of the preset called source, or loads source
// as a chain file.
func ResolveChain(source string) (*config.Config, error) {
	if cfg := config.GetPreset(source); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Load(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unknown chain %q: not a preset %v or a readable file", source, config.ListPresets())
		}
		return nil, err
	}
	return cfg, nil
}
