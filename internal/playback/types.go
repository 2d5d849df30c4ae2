package playback

import "github.com/san-kum/kinchain/internal/spatial"

// Trajectory yields commanded joint positions, in chain vector order, at
// time t.
type Trajectory interface {
	Positions(t float64) []float64
}

// Frame is one recorded playback step.
type Frame struct {
	Time      float64
	Positions []float64
	Poses     []spatial.Transform
	// End is the world position of the tracked end node.
	End spatial.Vec
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	Dt       float64
	Duration float64
	// Clamp forces commanded positions into joint limits instead of
	// stopping at the first out-of-limits step.
	Clamp bool
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	Errors     []error
	StepsTaken int
	// EndJoint names the node whose position is recorded in Frame.End.
	EndJoint string
}

// Times returns the frame timestamps.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Time
	}
	return out
}

// Joint returns the recorded position series of joint i.
func (r *Result) Joint(i int) []float64 {
	out := make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		if i < len(f.Positions) {
			out = append(out, f.Positions[i])
		}
	}
	return out
}

// EndPath returns the end node positions over time.
func (r *Result) EndPath() []spatial.Vec {
	out := make([]spatial.Vec, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.End
	}
	return out
}
