package kinematics

import (
	"errors"
	"fmt"
)

// Domain errors for joint and chain operations.
var (
	// ErrOutOfLimits indicates a position outside the joint's configured range.
	ErrOutOfLimits = errors.New("kinematics: position out of joint limits")

	// ErrNotMovable indicates an attempt to position a fixed joint.
	ErrNotMovable = errors.New("kinematics: joint is fixed and has no position")

	// ErrMimicConfiguration indicates a mimic child listed without its mimic record.
	ErrMimicConfiguration = errors.New("kinematics: mimic relation is inconsistent")

	// ErrLengthMismatch indicates a position vector that does not match the chain's dof.
	ErrLengthMismatch = errors.New("kinematics: position vector length mismatch")

	// ErrJointNotFound indicates a lookup by name that matched no joint.
	ErrJointNotFound = errors.New("kinematics: joint not found")

	// ErrInvalidRelation indicates a parent or mimic link that would break the tree.
	ErrInvalidRelation = errors.New("kinematics: invalid joint relation")

	// ErrInvalidAxis indicates a zero or non-finite joint axis.
	ErrInvalidAxis = errors.New("kinematics: invalid joint axis")
)

// JointError wraps a joint-level failure with the joint it happened on.
type JointError struct {
	Joint    string
	Position float64
	Limits   *Range
	Wrapped  error
}

func (e *JointError) Error() string {
	if e.Limits != nil {
		return fmt.Sprintf("joint %q: set %g outside %s: %v", e.Joint, e.Position, e.Limits, e.Wrapped)
	}
	return fmt.Sprintf("joint %q: %v", e.Joint, e.Wrapped)
}

func (e *JointError) Unwrap() error {
	return e.Wrapped
}

// MimicError names the driving and the dependent joint of a broken mimic entry.
type MimicError struct {
	From    string
	To      string
	Message string
}

func (e *MimicError) Error() string {
	return fmt.Sprintf("mimic %s -> %s: %s", e.From, e.To, e.Message)
}

func (e *MimicError) Unwrap() error {
	return ErrMimicConfiguration
}

// LengthMismatchError reports the expected and received vector lengths.
type LengthMismatchError struct {
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("expected %d joint positions, got %d", e.Want, e.Got)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// NotFoundError carries the requested name and the closest known name, if any.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("joint %q not found (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("joint %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrJointNotFound
}
