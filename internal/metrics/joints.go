package metrics

import (
	"math"

	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
)

// JointTravel sums absolute position changes over every joint.
type JointTravel struct {
	name string
	sum  float64
	last []float64
}

func NewJointTravel() *JointTravel {
	return &JointTravel{name: "joint_travel"}
}

func (j *JointTravel) Name() string {
	return j.name
}

func (j *JointTravel) Observe(f playback.Frame) {
	if j.last != nil && len(j.last) == len(f.Positions) {
		for i, q := range f.Positions {
			j.sum += math.Abs(q - j.last[i])
		}
	}
	j.last = append(j.last[:0], f.Positions...)
}

func (j *JointTravel) Value() float64 {
	return j.sum
}

func (j *JointTravel) Reset() {
	j.sum = 0
	j.last = nil
}

// LimitMargin tracks the smallest distance of any limited joint to its
// nearest bound, as a fraction of the joint's range. The value lies in
// [0, 0.5]; 0.5 means every sample sat mid-range or no joint is limited.
type LimitMargin struct {
	name   string
	limits []*kinematics.Range
	min    float64
}

func NewLimitMargin(limits []*kinematics.Range) *LimitMargin {
	return &LimitMargin{
		name:   "limit_margin",
		limits: limits,
		min:    0.5,
	}
}

func (l *LimitMargin) Name() string {
	return l.name
}

func (l *LimitMargin) Observe(f playback.Frame) {
	for i, q := range f.Positions {
		if i >= len(l.limits) || l.limits[i] == nil {
			continue
		}
		r := l.limits[i]
		span := r.Span()
		if span <= 0 {
			continue
		}
		margin := math.Min(q-r.Min, r.Max-q) / span
		if margin < l.min {
			l.min = math.Max(margin, 0)
		}
	}
}

func (l *LimitMargin) Value() float64 {
	return l.min
}

func (l *LimitMargin) Reset() {
	l.min = 0.5
}

// Standard returns the metrics recorded for every playback of chain.
func Standard(chain *kinematics.Chain) []playback.Metric {
	return []playback.Metric{
		NewPathLength(),
		NewJointTravel(),
		NewMaxReach(),
		NewLimitMargin(chain.Limits()),
	}
}
