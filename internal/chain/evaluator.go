package chain

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/san-kum/dualx/internal/dual"
)

// Evaluator runs a chain and routes the advisories it raises.
type Evaluator struct {
	chain  *Chain
	sink   dual.Sink
	strict bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSink forwards advisories to s.
func WithSink(s dual.Sink) Option {
	return func(e *Evaluator) { e.sink = s }
}

// WithStrict turns advisories into *StrictError failures.
func WithStrict(strict bool) Option {
	return func(e *Evaluator) { e.strict = strict }
}

func NewEvaluator(c *Chain, opts ...Option) *Evaluator {
	e := &Evaluator{chain: c, sink: dual.Discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Chain() *Chain { return e.chain }

func (e *Evaluator) Strict() bool { return e.strict }

// Eval evaluates the chain at x.
func (e *Evaluator) Eval(x dual.Number) (dual.Number, error) {
	y, err := e.chain.Eval(x)
	if err != nil {
		return dual.Number{}, err
	}
	if err := e.settle(y.Advisories()); err != nil {
		return dual.Number{}, err
	}
	return y, nil
}

// EvalArray evaluates the chain over a fixed-layout array.
func (e *Evaluator) EvalArray(x dual.Array) (dual.Array, error) {
	y, err := e.chain.EvalArray(x)
	if err != nil {
		return dual.Array{}, err
	}
	if err := e.settle(y.Advisories()); err != nil {
		return dual.Array{}, err
	}
	return y, nil
}

func (e *Evaluator) settle(advs []dual.Advisory) error {
	dual.Report(e.sink, advs)
	if e.strict && len(advs) > 0 {
		return &StrictError{Advisories: advs}
	}
	return nil
}

// Derivative returns f(x) and f'(x) by seeding x with dual part 1.
func (e *Evaluator) Derivative(x float64) (value, slope float64, err error) {
	y, err := e.Eval(dual.Variable(x))
	if err != nil {
		return 0, 0, err
	}
	value, _ = y.Real().Float()
	slope, _ = y.Dual().Float()
	return value, slope, nil
}

// CentralDifference estimates f'(x) as (f(x+h) - f(x-h)) / 2h.
// Advisories from the two probes are not reported.
func (c *Chain) CentralDifference(x, h float64) (float64, error) {
	if h <= 0 {
		return 0, fmt.Errorf("central difference: step must be positive, got %g", h)
	}
	hi, err := c.Eval(dual.Constant(x + h))
	if err != nil {
		return 0, err
	}
	lo, err := c.Eval(dual.Constant(x - h))
	if err != nil {
		return 0, err
	}
	fh, _ := hi.Real().Float()
	fl, _ := lo.Real().Float()
	return (fh - fl) / (2 * h), nil
}

// Check compares the dual-number slope at X with a finite difference.
type Check struct {
	X          float64
	Derivative float64
	Numeric    float64
	OK         bool
}

// Verify cross-checks the slope at x against CentralDifference(x, h),
// accepting an absolute or relative error up to tol. Strict mode does not
// apply.
func (e *Evaluator) Verify(x, h, tol float64) (Check, error) {
	y, err := e.chain.Eval(dual.Variable(x))
	if err != nil {
		return Check{}, err
	}
	slope, _ := y.Dual().Float()
	num, err := e.chain.CentralDifference(x, h)
	if err != nil {
		return Check{}, err
	}
	return Check{
		X:          x,
		Derivative: slope,
		Numeric:    num,
		OK:         scalar.EqualWithinAbsOrRel(slope, num, tol, tol),
	}, nil
}
