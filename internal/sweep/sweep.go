// Package sweep evaluates a chain and its derivative over a grid of inputs.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/dual"
	"github.com/san-kum/dualx/internal/kernel"
)

// Evaluation modes.
const (
	// ModeArray evaluates the whole grid as one dual.Array. Any domain
	// error fails the sweep.
	ModeArray = "array"
	// ModePoints evaluates each grid point as its own dual.Number,
	// concurrently. Failed points are recorded and the rest kept.
	ModePoints = "points"
)

// Point status values.
const (
	StatusOK       = "ok"
	StatusAdvisory = "advisory"
	StatusError    = "error"
)

const minChunk = 32

var ErrInvalidConfig = errors.New("sweep: invalid config")

type Config struct {
	From    float64
	To      float64
	Samples int
	// Seed is the dual part given to every input.
	Seed float64
	Mode string
}

func (c Config) validate() error {
	if c.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidConfig, c.Samples)
	}
	if !(c.To > c.From) || math.IsInf(c.From, 0) || math.IsInf(c.To, 0) {
		return fmt.Errorf("%w: empty range [%g, %g]", ErrInvalidConfig, c.From, c.To)
	}
	if c.Mode != ModeArray && c.Mode != ModePoints {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// Point is one evaluated grid sample. Real and Dual are NaN when Status is
// StatusError.
type Point struct {
	X      float64
	Real   float64
	Dual   float64
	Status string
	Err    error
}

type Result struct {
	Name string
	// Expr is the chain rendered as an expression in x.
	Expr       string
	Steps      string
	Config     Config
	Points     []Point
	Advisories []dual.Advisory
	Failed     int
	Elapsed    time.Duration
}

// Xs returns the grid.
func (r *Result) Xs() []float64 { return r.column(func(p Point) float64 { return p.X }) }

// Reals returns f(x) at each grid point.
func (r *Result) Reals() []float64 { return r.column(func(p Point) float64 { return p.Real }) }

// Duals returns the dual part at each grid point.
func (r *Result) Duals() []float64 { return r.column(func(p Point) float64 { return p.Dual }) }

func (r *Result) column(f func(Point) float64) []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = f(p)
	}
	return out
}

// Grid returns n evenly spaced values from from to to inclusive.
func Grid(from, to float64, n int) []float64 {
	return floats.Span(make([]float64, n), from, to)
}

// Run evaluates ev over the grid described by cfg. In points mode the
// evaluator's sink is called from several goroutines.
func Run(ctx context.Context, ev *chain.Evaluator, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	xs := Grid(cfg.From, cfg.To, cfg.Samples)
	c := ev.Chain()
	res := &Result{Name: c.Name(), Expr: c.String(), Steps: chain.Format(c.Steps()), Config: cfg}

	var err error
	switch cfg.Mode {
	case ModeArray:
		err = runArray(ctx, ev, xs, cfg.Seed, res)
	default:
		err = runPoints(ctx, ev, xs, cfg.Seed, res)
	}
	if err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func runArray(ctx context.Context, ev *chain.Evaluator, xs []float64, seed float64, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seeds := make([]float64, len(xs))
	kernel.Fill(seeds, seed)
	in, err := dual.NewArray(xs, seeds)
	if err != nil {
		return err
	}

	out, err := ev.EvalArray(in)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	res.Points = make([]Point, len(xs))
	for i, x := range xs {
		r, d := out.At(i)
		res.Points[i] = Point{X: x, Real: r, Dual: d, Status: StatusOK}
	}
	res.Advisories = out.Advisories()
	for _, a := range res.Advisories {
		for _, i := range a.Elements() {
			if i < len(res.Points) {
				res.Points[i].Status = StatusAdvisory
			}
		}
	}
	return nil
}

func runPoints(ctx context.Context, ev *chain.Evaluator, xs []float64, seed float64, res *Result) error {
	res.Points = make([]Point, len(xs))
	perPoint := make([][]dual.Advisory, len(xs))

	ParallelFor(len(xs), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			res.Points[i] = evalPoint(ev, xs[i], seed, i, &perPoint[i])
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, p := range res.Points {
		if p.Status == StatusError {
			res.Failed++
		}
		res.Advisories = append(res.Advisories, perPoint[i]...)
	}
	return nil
}

func evalPoint(ev *chain.Evaluator, x, seed float64, i int, advs *[]dual.Advisory) Point {
	y, err := ev.Eval(dual.FromScalar(x, seed))
	if err != nil {
		var strict *chain.StrictError
		if errors.As(err, &strict) {
			*advs = reindex(strict.Advisories, i)
		}
		return Point{X: x, Real: math.NaN(), Dual: math.NaN(), Status: StatusError, Err: err}
	}

	r, _ := y.Real().Float()
	d, _ := y.Dual().Float()
	p := Point{X: x, Real: r, Dual: d, Status: StatusOK}
	if a := y.Advisories(); len(a) > 0 {
		*advs = reindex(a, i)
		p.Status = StatusAdvisory
	}
	return p
}

// reindex places scalar advisories at grid index i.
func reindex(advs []dual.Advisory, i int) []dual.Advisory {
	out := make([]dual.Advisory, len(advs))
	for k, a := range advs {
		a.Index = i
		out[k] = a
	}
	return out
}
