package dual

import (
	"fmt"
	"strings"

	"github.com/san-kum/dualx/internal/kernel"
)

// Array is the fixed-layout variant: both parts are equal-length float64
// slices and every operation runs straight through the slice kernels.
type Array struct {
	real       []float64
	dual       []float64
	advisories []Advisory
}

// NewArray copies real and dual into a new Array.
func NewArray(real, dual []float64) (Array, error) {
	if len(real) != len(dual) {
		return Array{}, &ShapeMismatchError{Op: "new", LeftName: "real", Left: len(real), RightName: "dual", Right: len(dual)}
	}
	return Array{real: kernel.Clone(real), dual: kernel.Clone(dual)}, nil
}

// FillArray returns an Array of length n with every element set to (real, dual).
func FillArray(n int, real, dual float64) Array {
	r := make([]float64, n)
	d := make([]float64, n)
	kernel.Fill(r, real)
	kernel.Fill(d, dual)
	return Array{real: r, dual: d}
}

func (a Array) Len() int { return len(a.real) }

// Real returns a copy of the real part.
func (a Array) Real() []float64 { return kernel.Clone(a.real) }

// Dual returns a copy of the dual part.
func (a Array) Dual() []float64 { return kernel.Clone(a.dual) }

// At returns element i.
func (a Array) At(i int) (real, dual float64) {
	return a.real[i], a.dual[i]
}

func (a Array) Advisories() []Advisory {
	return cloneAdvisories(a.advisories)
}

// Number converts a to the polymorphic form.
func (a Array) Number() Number {
	return Number{real: Sequence(a.real...), dual: Sequence(a.dual...), advisories: a.Advisories()}
}

// Equal reports bit-for-bit equality of both parts.
func (a Array) Equal(o Array) bool {
	return owned(a.real).Equal(owned(o.real)) && owned(a.dual).Equal(owned(o.dual))
}

func (a Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := range a.real {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g + %gε", a.real[i], a.dual[i])
	}
	b.WriteByte(']')
	return b.String()
}

func (a Array) check(op string, o Array) error {
	if len(a.real) != len(o.real) {
		return &ShapeMismatchError{Op: op, LeftName: "a", Left: len(a.real), RightName: "b", Right: len(o.real)}
	}
	return nil
}

func (a Array) alloc() ([]float64, []float64) {
	return make([]float64, len(a.real)), make([]float64, len(a.real))
}

func (a Array) Add(o Array) (Array, error) {
	if err := a.check("add", o); err != nil {
		return Array{}, err
	}
	r, d := a.alloc()
	kernel.Add(r, a.real, o.real)
	kernel.Add(d, a.dual, o.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories, o.advisories)}, nil
}

func (a Array) Sub(o Array) (Array, error) {
	if err := a.check("sub", o); err != nil {
		return Array{}, err
	}
	r, d := a.alloc()
	kernel.Sub(r, a.real, o.real)
	kernel.Sub(d, a.dual, o.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories, o.advisories)}, nil
}

func (a Array) Mul(o Array) (Array, error) {
	if err := a.check("mul", o); err != nil {
		return Array{}, err
	}
	r, d := a.alloc()
	tmp := make([]float64, len(a.real))
	kernel.Mul(r, a.real, o.real)
	kernel.Mul(d, a.real, o.dual)
	kernel.Mul(tmp, a.dual, o.real)
	kernel.Add(d, d, tmp)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories, o.advisories)}, nil
}

func (a Array) Pow(p float64) Array {
	r, d := a.alloc()
	kernel.Pow(r, a.real, p)
	kernel.Pow(d, a.real, p-1)
	kernel.Scale(d, p, d)
	kernel.Mul(d, d, a.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories)}
}

func (a Array) Sin() Array {
	r, d := a.alloc()
	kernel.SinCos(r, d, a.real)
	kernel.Mul(d, d, a.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories)}
}

func (a Array) Cos() Array {
	r, d := a.alloc()
	kernel.SinCos(d, r, a.real)
	kernel.Scale(d, -1, d)
	kernel.Mul(d, d, a.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories)}
}

// Tan has the same guard semantics as Number.Tan.
func (a Array) Tan() (Array, error) {
	adv, err := guardTan(a.real, false)
	if err != nil {
		return Array{}, err
	}
	r, d := a.alloc()
	kernel.Tan(r, a.real)
	kernel.Cos(d, a.real)
	kernel.Mul(d, d, d)
	kernel.Div(d, a.dual, d)
	return Array{real: r, dual: d, advisories: appendAdvisory(a.advisories, adv)}, nil
}

// Log has the same guard semantics as Number.Log.
func (a Array) Log() (Array, error) {
	adv, err := guardLog(a.real, false)
	if err != nil {
		return Array{}, err
	}
	r, d := a.alloc()
	kernel.Log(r, a.real)
	kernel.Div(d, a.dual, a.real)
	return Array{real: r, dual: d, advisories: appendAdvisory(a.advisories, adv)}, nil
}

func (a Array) Exp() Array {
	r, d := a.alloc()
	kernel.Exp(r, a.real)
	kernel.Mul(d, r, a.dual)
	return Array{real: r, dual: d, advisories: mergeAdvisories(a.advisories)}
}
