package kinematics

import (
	"fmt"
	"strings"

	"github.com/san-kum/kinchain/internal/spatial"
)

// JointKind enumerates the supported joint types.
type JointKind int

const (
	Fixed JointKind = iota
	Rotational
	Linear
)

func (k JointKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Rotational:
		return "rotational"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("JointKind(%d)", int(k))
	}
}

// ParseJointKind accepts the String form plus the common URDF aliases.
func ParseJointKind(s string) (JointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return Fixed, nil
	case "rotational", "revolute", "continuous":
		return Rotational, nil
	case "linear", "prismatic":
		return Linear, nil
	default:
		return Fixed, fmt.Errorf("unknown joint type: %s", s)
	}
}

// JointType is a joint kind plus the axis it acts along. Fixed joints have
// no axis.
type JointType struct {
	Kind JointKind
	Axis spatial.Vec
}

// FixedJoint returns the zero-dof joint type.
func FixedJoint() JointType {
	return JointType{Kind: Fixed}
}

// RotationalJoint returns a revolute joint type about axis.
func RotationalJoint(axis spatial.Vec) JointType {
	return JointType{Kind: Rotational, Axis: normalize(axis)}
}

// LinearJoint returns a prismatic joint type along axis.
func LinearJoint(axis spatial.Vec) JointType {
	return JointType{Kind: Linear, Axis: normalize(axis)}
}

func normalize(axis spatial.Vec) spatial.Vec {
	if u, ok := spatial.UnitAxis(axis); ok {
		return u
	}
	return axis
}

// Validate checks that movable types carry a usable axis.
func (t JointType) Validate() error {
	if t.Kind == Fixed {
		return nil
	}
	if _, ok := spatial.UnitAxis(t.Axis); !ok {
		return fmt.Errorf("%s axis %v: %w", t.Kind, t.Axis, ErrInvalidAxis)
	}
	return nil
}

// Transform returns the motion contributed by position q.
func (t JointType) Transform(q float64) spatial.Transform {
	switch t.Kind {
	case Rotational:
		return spatial.AxisAngle(t.Axis, q)
	case Linear:
		return spatial.Translation(t.Axis.MulScalar(q))
	default:
		return spatial.Identity()
	}
}

func (t JointType) String() string {
	if t.Kind == Fixed {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s[%.3g, %.3g, %.3g]", t.Kind, t.Axis.X, t.Axis.Y, t.Axis.Z)
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min" toml:"min" json:"min"`
	Max float64 `yaml:"max" toml:"max" json:"max"`
}

// NewRange orders its bounds.
func NewRange(a, b float64) *Range {
	if a > b {
		a, b = b, a
	}
	return &Range{Min: a, Max: b}
}

func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r Range) Span() float64 {
	return r.Max - r.Min
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Mimic maps a driving joint's position onto a dependent joint.
type Mimic struct {
	Multiplier float64
	Offset     float64
}

// DefaultMimic copies the driver's position unchanged.
var DefaultMimic = Mimic{Multiplier: 1}

func NewMimic(multiplier, offset float64) Mimic {
	return Mimic{Multiplier: multiplier, Offset: offset}
}

// MimicPosition returns parent*Multiplier + Offset.
func (m Mimic) MimicPosition(parent float64) float64 {
	return parent*m.Multiplier + m.Offset
}

// Joint is a single degree of freedom (or a fixed coupling) with a constant
// offset applied before its motion.
type Joint struct {
	Name     string
	typ      JointType
	position float64
	Limits   *Range
	offset   spatial.Transform
}

// NewJoint returns a joint with identity offset, no limits and position 0.
func NewJoint(name string, typ JointType) *Joint {
	return &Joint{Name: name, typ: typ, offset: spatial.Identity()}
}

// Type returns the joint type, fixed at construction.
func (j *Joint) Type() JointType {
	return j.typ
}

// HasPosition reports whether the joint has a degree of freedom.
func (j *Joint) HasPosition() bool {
	return j.typ.Kind != Fixed
}

// Position returns the current position; ok is false for fixed joints.
func (j *Joint) Position() (float64, bool) {
	if !j.HasPosition() {
		return 0, false
	}
	return j.position, true
}

// SetPosition stores q after checking mobility and limits. It does not
// recompute any transform.
func (j *Joint) SetPosition(q float64) error {
	if !j.HasPosition() {
		return &JointError{Joint: j.Name, Position: q, Wrapped: ErrNotMovable}
	}
	if j.Limits != nil && !j.Limits.Contains(q) {
		return &JointError{Joint: j.Name, Position: q, Limits: j.Limits, Wrapped: ErrOutOfLimits}
	}
	j.position = q
	return nil
}

func (j *Joint) Offset() spatial.Transform {
	return j.offset
}

func (j *Joint) SetOffset(t spatial.Transform) {
	j.offset = t
}

// LocalTransform returns offset * motion(position).
func (j *Joint) LocalTransform() spatial.Transform {
	if !j.HasPosition() {
		return j.offset
	}
	return j.offset.Mul(j.typ.Transform(j.position))
}

func (j *Joint) String() string {
	var b strings.Builder
	b.WriteString(j.Name)
	b.WriteString(" {")
	b.WriteString(j.typ.String())
	if j.Limits != nil {
		b.WriteString(" ")
		b.WriteString(j.Limits.String())
	}
	b.WriteString("}")
	return b.String()
}
