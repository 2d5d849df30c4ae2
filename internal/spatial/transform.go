package spatial

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a 3D vector.
type Vec = v3.Vec

var (
	Zero  = Vec{}
	UnitX = Vec{X: 1}
	UnitY = Vec{Y: 1}
	UnitZ = Vec{Z: 1}
)

// Transform is a rigid transform (rotation + translation).
type Transform struct {
	m sdf.M44
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: sdf.Identity3d()}
}

// Translation returns a pure translation by v.
func Translation(v Vec) Transform {
	return Transform{m: sdf.Translate3d(v)}
}

// AxisAngle returns a rotation of angle radians about axis (right hand rule).
// A zero axis yields the identity.
func AxisAngle(axis Vec, angle float64) Transform {
	u, ok := UnitAxis(axis)
	if !ok {
		return Identity()
	}
	return Transform{m: sdf.Rotate3d(u, angle)}
}

// FromRPY returns the rotation Rz(yaw) * Ry(pitch) * Rx(roll).
func FromRPY(roll, pitch, yaw float64) Transform {
	return Transform{m: sdf.RotateZ(yaw).Mul(sdf.RotateY(pitch)).Mul(sdf.RotateX(roll))}
}

// New returns the transform that rotates by rot and then translates by v.
func New(v Vec, rot Transform) Transform {
	return Translation(v).Mul(rot.Rotation())
}

// UnitAxis normalises v. It reports false for zero or non-finite vectors.
func UnitAxis(v Vec) (Vec, bool) {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// Mul returns t * o: o expressed in t's frame.
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: t.m.Mul(o.m)}
}

// Apply maps point p through the transform.
func (t Transform) Apply(p Vec) Vec {
	return t.m.MulPosition(p)
}

// Rotate maps direction d through the rotational part only.
func (t Transform) Rotate(d Vec) Vec {
	return t.m.MulPosition(d).Sub(t.Translation())
}

// Translation returns the translational part.
func (t Transform) Translation() Vec {
	return t.m.MulPosition(Zero)
}

// Rotation returns the rotational part with zero translation.
func (t Transform) Rotation() Transform {
	return Transform{m: sdf.Translate3d(t.Translation().MulScalar(-1)).Mul(t.m)}
}

// Axes returns the images of the unit axes, i.e. the rotation matrix columns.
func (t Transform) Axes() (x, y, z Vec) {
	return t.Rotate(UnitX), t.Rotate(UnitY), t.Rotate(UnitZ)
}

// RPY decomposes the rotation as Rz(yaw) * Ry(pitch) * Rx(roll).
func (t Transform) RPY() (roll, pitch, yaw float64) {
	x, y, z := t.Axes()
	roll = math.Atan2(y.Z, z.Z)
	pitch = math.Atan2(-x.Z, math.Hypot(y.Z, z.Z))
	yaw = math.Atan2(x.Y, x.X)
	return roll, pitch, yaw
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() Transform {
	return Transform{m: t.m.Inverse()}
}

// Matrix returns the underlying homogeneous matrix.
func (t Transform) Matrix() sdf.M44 {
	return t.m
}

// ApproxEqual compares translation and rotation axes within tol.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	if !vecClose(t.Translation(), o.Translation(), tol) {
		return false
	}
	ax, ay, az := t.Axes()
	bx, by, bz := o.Axes()
	return vecClose(ax, bx, tol) && vecClose(ay, by, tol) && vecClose(az, bz, tol)
}

// IsValid reports whether every component is finite.
func (t Transform) IsValid() bool {
	x, y, z := t.Axes()
	for _, v := range []Vec{t.Translation(), x, y, z} {
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

func (t Transform) String() string {
	p := t.Translation()
	r, pi, y := t.RPY()
	return fmt.Sprintf("xyz=(%.4f, %.4f, %.4f) rpy=(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z, r, pi, y)
}

func vecClose(a, b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
