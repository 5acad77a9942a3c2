package dual

import (
	"fmt"
	"math"

	"github.com/san-kum/dualx/internal/kernel"
)

// Number is a dual number whose parts are each a scalar or a sequence.
// When both parts are sequences they have the same length. A scalar part
// paired with a sequence is broadcast across it.
type Number struct {
	real       Value
	dual       Value
	advisories []Advisory
}

// New builds a Number from dynamically typed parts. Each part may be a Go
// number, a slice of any Go integer or float type accepted as a scalar, or a
// Value.
func New(real, dual any) (Number, error) {
	r, err := toValue("real", real)
	if err != nil {
		return Number{}, err
	}
	d, err := toValue("dual", dual)
	if err != nil {
		return Number{}, err
	}
	return FromValues(r, d)
}

// FromValues builds a Number from two Values.
func FromValues(real, dual Value) (Number, error) {
	if !real.IsScalar() && !dual.IsScalar() && real.Len() != dual.Len() {
		return Number{}, &ShapeMismatchError{Op: "new", LeftName: "real", Left: real.Len(), RightName: "dual", Right: dual.Len()}
	}
	return Number{real: real, dual: dual}, nil
}

// FromScalar builds a scalar Number.
func FromScalar(real, dual float64) Number {
	return Number{real: Scalar(real), dual: Scalar(dual)}
}

// FromSlices builds a sequence Number, copying both slices.
func FromSlices(real, dual []float64) (Number, error) {
	return FromValues(Sequence(real...), Sequence(dual...))
}

// Variable returns x seeded with derivative 1.
func Variable(x float64) Number {
	return FromScalar(x, 1)
}

// Constant returns x with derivative 0.
func Constant(x float64) Number {
	return FromScalar(x, 0)
}

func toValue(part string, in any) (Value, error) {
	switch v := in.(type) {
	case Value:
		return v, nil
	case float64:
		return Scalar(v), nil
	case float32:
		return Scalar(float64(v)), nil
	case int:
		return Scalar(float64(v)), nil
	case int32:
		return Scalar(float64(v)), nil
	case int64:
		return Scalar(float64(v)), nil
	case uint:
		return Scalar(float64(v)), nil
	case uint32:
		return Scalar(float64(v)), nil
	case uint64:
		return Scalar(float64(v)), nil
	case []float64:
		return Sequence(v...), nil
	case []float32:
		return owned(convert(v)), nil
	case []int:
		return owned(convert(v)), nil
	case []int32:
		return owned(convert(v)), nil
	case []int64:
		return owned(convert(v)), nil
	case []uint:
		return owned(convert(v)), nil
	case []uint32:
		return owned(convert(v)), nil
	case []uint64:
		return owned(convert(v)), nil
	default:
		return Value{}, &TypeConstraintError{Part: part, Type: fmt.Sprintf("%T", in)}
	}
}

func convert[E float32 | int | int32 | int64 | uint | uint32 | uint64](xs []E) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func (n Number) Real() Value { return n.real }

func (n Number) Dual() Value { return n.dual }

// Advisories returns the advisories raised while computing n, including
// those inherited from its operands.
func (n Number) Advisories() []Advisory {
	return cloneAdvisories(n.advisories)
}

// IsScalar reports whether both parts are scalars.
func (n Number) IsScalar() bool {
	return n.real.IsScalar() && n.dual.IsScalar()
}

// Len returns the sequence length, or 1 when both parts are scalars.
func (n Number) Len() int {
	if l, _ := n.seqLen(); l >= 0 {
		return l
	}
	return 1
}

// At returns element i as a scalar Number. Scalar parts are broadcast.
func (n Number) At(i int) Number {
	return FromScalar(n.real.At(i), n.dual.At(i))
}

// Equal reports bit-for-bit equality of both parts. Advisories are ignored.
func (n Number) Equal(o Number) bool {
	return n.real.Equal(o.real) && n.dual.Equal(o.dual)
}

func (n Number) String() string {
	return n.real.String() + " + " + n.dual.String() + "ε"
}

// Array converts n to the fixed-layout form. A scalar part is broadcast; a
// Number with no sequence part cannot be converted.
func (n Number) Array() (Array, error) {
	l, _ := n.seqLen()
	if l < 0 {
		return Array{}, fmt.Errorf("%w: fixed-layout array needs a sequence part", ErrTypeConstraint)
	}
	return Array{
		real:       kernel.Clone(n.real.broadcast(l)),
		dual:       kernel.Clone(n.dual.broadcast(l)),
		advisories: n.Advisories(),
	}, nil
}

func (n Number) seqLen() (int, string) {
	switch {
	case !n.real.IsScalar():
		return n.real.Len(), "real"
	case !n.dual.IsScalar():
		return n.dual.Len(), "dual"
	default:
		return -1, ""
	}
}

func (n Number) compatible(op string, o Number) error {
	ln, lp := n.seqLen()
	rn, rp := o.seqLen()
	if ln >= 0 && rn >= 0 && ln != rn {
		return &ShapeMismatchError{Op: op, LeftName: "a." + lp, Left: ln, RightName: "b." + rp, Right: rn}
	}
	return nil
}

// Add returns (a.real + b.real, a.dual + b.dual).
func (n Number) Add(o Number) (Number, error) {
	if err := n.compatible("add", o); err != nil {
		return Number{}, err
	}
	return Number{
		real:       add(n.real, o.real),
		dual:       add(n.dual, o.dual),
		advisories: mergeAdvisories(n.advisories, o.advisories),
	}, nil
}

// Sub returns (a.real - b.real, a.dual - b.dual).
func (n Number) Sub(o Number) (Number, error) {
	if err := n.compatible("sub", o); err != nil {
		return Number{}, err
	}
	return Number{
		real:       sub(n.real, o.real),
		dual:       sub(n.dual, o.dual),
		advisories: mergeAdvisories(n.advisories, o.advisories),
	}, nil
}

// Mul applies the product rule: (ab, a·b' + a'·b).
func (n Number) Mul(o Number) (Number, error) {
	if err := n.compatible("mul", o); err != nil {
		return Number{}, err
	}
	return Number{
		real:       mul(n.real, o.real),
		dual:       add(mul(n.real, o.dual), mul(n.dual, o.real)),
		advisories: mergeAdvisories(n.advisories, o.advisories),
	}, nil
}

// Pow raises n to a real exponent: (r^p, p·r^(p-1)·d).
func (n Number) Pow(p float64) Number {
	return Number{
		real:       pow(n.real, p),
		dual:       mul(scale(p, pow(n.real, p-1)), n.dual),
		advisories: mergeAdvisories(n.advisories),
	}
}

// Sin returns (sin r, cos r · d).
func (n Number) Sin() Number {
	s, c := sincos(n.real)
	return Number{real: s, dual: mul(c, n.dual), advisories: mergeAdvisories(n.advisories)}
}

// Cos returns (cos r, -sin r · d).
func (n Number) Cos() Number {
	s, c := sincos(n.real)
	return Number{real: c, dual: mul(scale(-1, s), n.dual), advisories: mergeAdvisories(n.advisories)}
}

// Tan returns (tan r, d / cos²r). It fails with a DomainError when any
// element lies within HardMargin of a pole, and attaches an advisory when
// any element lies within SoftMargin.
func (n Number) Tan() (Number, error) {
	adv, err := guardTan(n.real.view(), n.real.IsScalar())
	if err != nil {
		return Number{}, err
	}
	c := mapValue(n.real, math.Cos, kernel.Cos)
	return Number{
		real:       mapValue(n.real, math.Tan, kernel.Tan),
		dual:       div(n.dual, mul(c, c)),
		advisories: appendAdvisory(n.advisories, adv),
	}, nil
}

// Log returns (ln r, d / r). Non-positive elements and elements at or below
// HardMargin fail with a DomainError; elements below SoftMargin attach an
// advisory.
func (n Number) Log() (Number, error) {
	adv, err := guardLog(n.real.view(), n.real.IsScalar())
	if err != nil {
		return Number{}, err
	}
	return Number{
		real:       mapValue(n.real, math.Log, kernel.Log),
		dual:       div(n.dual, n.real),
		advisories: appendAdvisory(n.advisories, adv),
	}, nil
}

// Exp returns (e^r, e^r · d).
func (n Number) Exp() Number {
	e := mapValue(n.real, math.Exp, kernel.Exp)
	return Number{real: e, dual: mul(e, n.dual), advisories: mergeAdvisories(n.advisories)}
}
