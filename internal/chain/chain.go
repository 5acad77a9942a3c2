package chain

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dualx/internal/dual"
)

type stage struct {
	kind  kind
	op    string
	p     float64
	real  float64
	dual  float64
	useX  bool
	index int
	name  string
}

// Chain is a compiled program f(x) built from steps applied left to right.
type Chain struct {
	name   string
	steps  []Step
	stages []stage
}

// Compile validates steps and expands derived ops. An empty step list
// compiles to the identity.
func (r *Registry) Compile(name string, steps []Step) (*Chain, error) {
	c := &Chain{name: name, steps: append([]Step(nil), steps...)}

	for i, s := range steps {
		op, err := r.Lookup(s.Op)
		if err != nil {
			return nil, &StepError{Index: i, Op: s.Op, Err: ErrUnknownOp}
		}

		if !op.Primitive() {
			if s.hasArgs() {
				return nil, &StepError{Index: i, Op: s.Op, Err: fmt.Errorf("%w: %s takes no arguments", ErrInvalidStep, s.Op)}
			}
			for _, sub := range op.Expands {
				base, _ := r.Lookup(sub.Op)
				st, err := build(base, sub)
				if err != nil {
					return nil, &StepError{Index: i, Op: s.Op, Err: err}
				}
				st.index, st.name = i, s.Op
				c.stages = append(c.stages, st)
			}
			continue
		}

		st, err := build(op, s)
		if err != nil {
			return nil, &StepError{Index: i, Op: s.Op, Err: err}
		}
		st.index, st.name = i, s.Op
		c.stages = append(c.stages, st)
	}
	return c, nil
}

func build(op Op, s Step) (stage, error) {
	st := stage{kind: op.kind, op: op.Name}

	switch op.Arity {
	case ArityUnary:
		if s.hasArgs() {
			return stage{}, fmt.Errorf("%w: %s takes no arguments", ErrInvalidStep, op.Name)
		}
	case ArityPower:
		if s.Exponent == nil {
			return stage{}, fmt.Errorf("%w: pow needs an exponent", ErrInvalidStep)
		}
		if !finite(*s.Exponent) {
			return stage{}, fmt.Errorf("%w: exponent must be finite", ErrInvalidStep)
		}
		if s.Real != 0 || s.Dual != 0 || s.Operand != "" {
			return stage{}, fmt.Errorf("%w: pow takes only an exponent", ErrInvalidStep)
		}
		st.p = *s.Exponent
	case ArityBinary:
		if s.Exponent != nil {
			return stage{}, fmt.Errorf("%w: %s takes no exponent", ErrInvalidStep, op.Name)
		}
		switch s.Operand {
		case "":
			if !finite(s.Real) || !finite(s.Dual) {
				return stage{}, fmt.Errorf("%w: constant must be finite", ErrInvalidStep)
			}
			st.real, st.dual = s.Real, s.Dual
		case OperandX:
			if s.Real != 0 || s.Dual != 0 {
				return stage{}, fmt.Errorf("%w: operand x excludes a constant", ErrInvalidStep)
			}
			st.useX = true
		default:
			return stage{}, fmt.Errorf("%w: operand must be %q, got %q", ErrInvalidStep, OperandX, s.Operand)
		}
	}
	return st, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Name returns the name given at compile time.
func (c *Chain) Name() string { return c.name }

// Steps returns a copy of the steps the chain was compiled from.
func (c *Chain) Steps() []Step { return append([]Step(nil), c.steps...) }

// Len returns the number of primitive stages after expansion.
func (c *Chain) Len() int { return len(c.stages) }

// String renders the chain as an expression in x, e.g. pow(sin(x), 3).
func (c *Chain) String() string {
	expr := "x"
	for _, st := range c.stages {
		switch st.kind {
		case kindPow:
			expr = fmt.Sprintf("pow(%s, %s)", expr, formatFloat(st.p))
		case kindAdd, kindSub, kindMul:
			rhs := "x"
			if !st.useX {
				rhs = formatConst(st.real, st.dual)
			}
			expr = fmt.Sprintf("(%s %s %s)", expr, symbol(st.kind), rhs)
		default:
			expr = st.op + "(" + expr + ")"
		}
	}
	return expr
}

func symbol(k kind) string {
	switch k {
	case kindAdd:
		return "+"
	case kindSub:
		return "-"
	default:
		return "*"
	}
}

func formatConst(real, dual float64) string {
	if dual == 0 {
		return formatFloat(real)
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(formatFloat(real))
	b.WriteString(" + ")
	b.WriteString(formatFloat(dual))
	b.WriteString("ε)")
	return b.String()
}

// Apply runs the chain over x for either dual variant. lift builds a
// constant operand shaped to combine with x.
func Apply[T dual.Operand[T]](c *Chain, x T, lift func(real, dual float64) T) (T, error) {
	cur := x
	for _, st := range c.stages {
		next, err := step(st, x, cur, lift)
		if err != nil {
			var zero T
			return zero, &StepError{Index: st.index, Op: st.name, Err: err}
		}
		cur = next
	}
	return cur, nil
}

func step[T dual.Operand[T]](st stage, x, cur T, lift func(real, dual float64) T) (T, error) {
	switch st.kind {
	case kindSin:
		return cur.Sin(), nil
	case kindCos:
		return cur.Cos(), nil
	case kindTan:
		return cur.Tan()
	case kindLog:
		return cur.Log()
	case kindExp:
		return cur.Exp(), nil
	case kindPow:
		return cur.Pow(st.p), nil
	}

	rhs := x
	if !st.useX {
		rhs = lift(st.real, st.dual)
	}
	switch st.kind {
	case kindAdd:
		return cur.Add(rhs)
	case kindSub:
		return cur.Sub(rhs)
	default:
		return cur.Mul(rhs)
	}
}

// Eval applies the chain to a polymorphic dual number. Constants are
// scalars and broadcast against sequence inputs.
func (c *Chain) Eval(x dual.Number) (dual.Number, error) {
	return Apply(c, x, dual.FromScalar)
}

// EvalArray applies the chain to a fixed-layout array.
func (c *Chain) EvalArray(x dual.Array) (dual.Array, error) {
	n := x.Len()
	return Apply(c, x, func(real, d float64) dual.Array {
		return dual.FillArray(n, real, d)
	})
}
