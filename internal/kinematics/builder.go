package kinematics

import (
	"fmt"

	"github.com/san-kum/kinchain/internal/spatial"
)

// JointBuilder assembles a Joint step by step.
//
//	j, err := kinematics.NewJointBuilder("elbow").
//		Type(kinematics.RotationalJoint(spatial.UnitY)).
//		Translation(spatial.Vec{Z: 0.3}).
//		Limits(-1.5, 1.5).
//		Build()
type JointBuilder struct {
	name        string
	typ         JointType
	translation spatial.Vec
	rotation    spatial.Transform
	limits      *Range
}

func NewJointBuilder(name string) *JointBuilder {
	return &JointBuilder{name: name, typ: FixedJoint(), rotation: spatial.Identity()}
}

func (b *JointBuilder) Name(name string) *JointBuilder {
	b.name = name
	return b
}

func (b *JointBuilder) Type(t JointType) *JointBuilder {
	b.typ = t
	return b
}

func (b *JointBuilder) Translation(v spatial.Vec) *JointBuilder {
	b.translation = v
	return b
}

// Rotation sets the offset rotation; any translation in r is ignored.
func (b *JointBuilder) Rotation(r spatial.Transform) *JointBuilder {
	b.rotation = r.Rotation()
	return b
}

func (b *JointBuilder) RPY(roll, pitch, yaw float64) *JointBuilder {
	b.rotation = spatial.FromRPY(roll, pitch, yaw)
	return b
}

func (b *JointBuilder) Limits(lo, hi float64) *JointBuilder {
	b.limits = NewRange(lo, hi)
	return b
}

func (b *JointBuilder) Unlimited() *JointBuilder {
	b.limits = nil
	return b
}

// Build validates the axis and returns the joint.
func (b *JointBuilder) Build() (*Joint, error) {
	if err := b.typ.Validate(); err != nil {
		return nil, fmt.Errorf("joint %q: %w", b.name, err)
	}
	j := NewJoint(b.name, b.typ)
	j.offset = spatial.New(b.translation, b.rotation)
	if b.limits != nil {
		l := *b.limits
		j.Limits = &l
	}
	return j, nil
}

// MustBuild is Build for statically known joints; it panics on error.
func (b *JointBuilder) MustBuild() *Joint {
	j, err := b.Build()
	if err != nil {
		panic(err)
	}
	return j
}
