package dual

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dualx/internal/kernel"
)

// Kind is the shape of a Value.
type Kind uint8

const (
	KindScalar Kind = iota
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is one part of a dual number: either a scalar or a dense,
// fixed-length sequence. The zero Value is the scalar 0.
//
// Values are immutable. Sequence storage is copied in and out, so a Value
// can be shared freely between goroutines.
type Value struct {
	kind Kind
	x    float64
	xs   []float64
}

// Scalar returns a scalar Value.
func Scalar(x float64) Value {
	return Value{kind: KindScalar, x: x}
}

// Sequence returns a sequence Value holding a copy of xs.
func Sequence(xs ...float64) Value {
	return Value{kind: KindSequence, xs: kernel.Clone(xs)}
}

// owned wraps xs without copying; xs must not be referenced elsewhere.
func owned(xs []float64) Value {
	return Value{kind: KindSequence, xs: xs}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsScalar() bool { return v.kind == KindScalar }

// Len returns the sequence length, or 1 for a scalar.
func (v Value) Len() int {
	if v.IsScalar() {
		return 1
	}
	return len(v.xs)
}

// Float returns the scalar value. ok is false for sequences.
func (v Value) Float() (x float64, ok bool) {
	if v.IsScalar() {
		return v.x, true
	}
	return 0, false
}

// Slice returns a copy of the elements. A scalar yields a one-element slice.
func (v Value) Slice() []float64 {
	if v.IsScalar() {
		return []float64{v.x}
	}
	return kernel.Clone(v.xs)
}

// At returns element i. A scalar is broadcast, so every index yields it.
func (v Value) At(i int) float64 {
	if v.IsScalar() {
		return v.x
	}
	return v.xs[i]
}

// Equal reports bit-for-bit equality of kind and elements.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.IsScalar() {
		return math.Float64bits(v.x) == math.Float64bits(o.x)
	}
	if len(v.xs) != len(o.xs) {
		return false
	}
	for i := range v.xs {
		if math.Float64bits(v.xs[i]) != math.Float64bits(o.xs[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.IsScalar() {
		return fmt.Sprintf("%g", v.x)
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v.xs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g", x)
	}
	b.WriteByte(']')
	return b.String()
}

// view exposes the elements read-only without copying.
func (v Value) view() []float64 {
	if v.IsScalar() {
		return []float64{v.x}
	}
	return v.xs
}

// broadcast returns the elements stretched to length n. Sequences are
// returned as-is and must not be written to.
func (v Value) broadcast(n int) []float64 {
	if !v.IsScalar() {
		return v.xs
	}
	out := make([]float64, n)
	kernel.Fill(out, v.x)
	return out
}

func mapValue(v Value, f func(float64) float64, k func(dst, src []float64)) Value {
	if v.IsScalar() {
		return Scalar(f(v.x))
	}
	dst := make([]float64, len(v.xs))
	k(dst, v.xs)
	return owned(dst)
}

// zip applies a binary op, broadcasting a scalar against a sequence.
// Callers check sequence lengths beforehand.
func zip(a, b Value, f func(x, y float64) float64, k func(dst, s, t []float64)) Value {
	if a.IsScalar() && b.IsScalar() {
		return Scalar(f(a.x, b.x))
	}
	n := len(a.xs)
	if a.IsScalar() {
		n = len(b.xs)
	}
	if !a.IsScalar() && !b.IsScalar() && len(a.xs) != len(b.xs) {
		panic("dual: sequence length invariant violated")
	}
	dst := make([]float64, n)
	k(dst, a.broadcast(n), b.broadcast(n))
	return owned(dst)
}

func add(a, b Value) Value {
	return zip(a, b, func(x, y float64) float64 { return x + y }, kernel.Add)
}

func sub(a, b Value) Value {
	return zip(a, b, func(x, y float64) float64 { return x - y }, kernel.Sub)
}

// The explicit conversion stops the product from being fused into a
// following add, keeping scalar results identical to the slice kernels.
func mul(a, b Value) Value {
	return zip(a, b, func(x, y float64) float64 { return float64(x * y) }, kernel.Mul)
}

func div(a, b Value) Value {
	return zip(a, b, func(x, y float64) float64 { return x / y }, kernel.Div)
}

func scale(c float64, v Value) Value {
	return mapValue(v,
		func(x float64) float64 { return c * x },
		func(dst, src []float64) { kernel.Scale(dst, c, src) })
}

func pow(v Value, p float64) Value {
	return mapValue(v,
		func(x float64) float64 { return math.Pow(x, p) },
		func(dst, src []float64) { kernel.Pow(dst, src, p) })
}

func sincos(v Value) (s, c Value) {
	if v.IsScalar() {
		sx, cx := math.Sincos(v.x)
		return Scalar(sx), Scalar(cx)
	}
	ss := make([]float64, len(v.xs))
	cs := make([]float64, len(v.xs))
	kernel.SinCos(ss, cs, v.xs)
	return owned(ss), owned(cs)
}
