package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/kinchain/internal/config"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
)

func frame(q []float64, end spatial.Vec) playback.Frame {
	return playback.Frame{Positions: q, End: end}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()

	m.Observe(frame(nil, spatial.Vec{X: 0}))
	m.Observe(frame(nil, spatial.Vec{X: 3}))
	m.Observe(frame(nil, spatial.Vec{X: 3, Y: 4}))

	if got := m.Value(); math.Abs(got-7) > 1e-12 {
		t.Errorf("expected path length 7, got %f", got)
	}

	m.Reset()
	m.Observe(frame(nil, spatial.Vec{X: 10}))
	if m.Value() != 0 {
		t.Errorf("first sample after reset should add nothing, got %f", m.Value())
	}
}

func TestMaxReach(t *testing.T) {
	m := NewMaxReach()
	m.Observe(frame(nil, spatial.Vec{X: 1}))
	m.Observe(frame(nil, spatial.Vec{X: 3, Y: 4}))
	m.Observe(frame(nil, spatial.Vec{Z: 2}))

	if m.Value() != 5 {
		t.Errorf("expected max reach 5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestJointTravel(t *testing.T) {
	m := NewJointTravel()
	m.Observe(frame([]float64{0, 0}, spatial.Zero))
	m.Observe(frame([]float64{1, -1}, spatial.Zero))
	m.Observe(frame([]float64{0, -1}, spatial.Zero))

	if got := m.Value(); got != 3 {
		t.Errorf("expected travel 3, got %f", got)
	}
}

func TestLimitMargin(t *testing.T) {
	limits := []*kinematics.Range{{Min: 0, Max: 1}, nil}
	m := NewLimitMargin(limits)

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5 before samples, got %f", m.Value())
	}

	m.Observe(frame([]float64{0.5, 100}, spatial.Zero))
	m.Observe(frame([]float64{0.9, -100}, spatial.Zero))

	if got := m.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected margin 0.1, got %f", got)
	}

	m.Observe(frame([]float64{1, 0}, spatial.Zero))
	if m.Value() != 0 {
		t.Errorf("expected margin 0 at the bound, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5 after reset, got %f", m.Value())
	}
}

func TestStandardWithPlayer(t *testing.T) {
	cfg := config.GetPreset("planar2")
	_, chain, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	lin, err := playback.NewLinear([][]float64{{0, 0}, {math.Pi / 2, 0}}, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	p := playback.New(chain, lin)
	for _, m := range Standard(chain) {
		p.AddMetric(m)
	}
	result, err := p.Run(context.Background(), playback.Config{Dt: 0.01, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// quarter circle of radius 1 around l0
	if got := result.Metrics["path_length"]; math.Abs(got-math.Pi/2) > 1e-3 {
		t.Errorf("expected path length ~%f, got %f", math.Pi/2, got)
	}
	if got := result.Metrics["joint_travel"]; math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("expected joint travel %f, got %f", math.Pi/2, got)
	}
	if got := result.Metrics["max_reach"]; math.Abs(got-1.2) > 1e-9 {
		t.Errorf("expected max reach 1.2, got %f", got)
	}
	if got := result.Metrics["limit_margin"]; got != 0.5 {
		t.Errorf("expected 0.5 for unlimited chain, got %f", got)
	}
}
