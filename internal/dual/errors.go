package dual

import (
	"errors"
	"fmt"
)

// Error classes for dual-number construction and evaluation.
var (
	// ErrTypeConstraint indicates an input that is neither a scalar number
	// nor an ordered sequence of numbers.
	ErrTypeConstraint = errors.New("dual: unsupported numeric type")

	// ErrShapeMismatch indicates two sequence parts of different length.
	ErrShapeMismatch = errors.New("dual: shape mismatch")

	// ErrDomain indicates an argument outside the valid domain of an
	// elementary function, or inside its hard numerical margin.
	ErrDomain = errors.New("dual: domain error")
)

// Domain error reasons.
const (
	ReasonPole        = "value too close to an odd multiple of π/2"
	ReasonNonPositive = "real part <= 0"
	ReasonNearZero    = "real part below 1e-10, risk of overflow"
)

// TypeConstraintError reports which part was given an unsupported type.
type TypeConstraintError struct {
	Part string
	Type string
}

func (e *TypeConstraintError) Error() string {
	return fmt.Sprintf("dual: invalid type %s for %q: must be a scalar or a sequence of numbers", e.Type, e.Part)
}

func (e *TypeConstraintError) Unwrap() error {
	return ErrTypeConstraint
}

// ShapeMismatchError reports the lengths of two incompatible sequences.
type ShapeMismatchError struct {
	Op        string
	LeftName  string
	Left      int
	RightName string
	Right     int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("dual: %s: shape mismatch: %s length %d, %s length %d",
		e.Op, e.LeftName, e.Left, e.RightName, e.Right)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// DomainError reports the first element that failed a guard.
// Index is -1 when the offending real part is a scalar.
type DomainError struct {
	Op     string
	Reason string
	Index  int
	Value  float64
}

func (e *DomainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dual: %s: %s (x=%g)", e.Op, e.Reason, e.Value)
	}
	return fmt.Sprintf("dual: %s: %s (x[%d]=%g)", e.Op, e.Reason, e.Index, e.Value)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
