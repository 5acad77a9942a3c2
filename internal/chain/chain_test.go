package chain_test

import (
	"math"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/dual"
)

func mustCompile(steps ...chain.Step) *chain.Chain {
	c, err := chain.Compile("test", steps)
	o.ExpectWithOffset(1, err).NotTo(o.HaveOccurred())
	return c
}

func parts(n dual.Number) (float64, float64) {
	r, ok := n.Real().Float()
	o.ExpectWithOffset(1, ok).To(o.BeTrue())
	d, ok := n.Dual().Float()
	o.ExpectWithOffset(1, ok).To(o.BeTrue())
	return r, d
}

var _ = g.Describe("Compile", func() {
	g.It("renders the chain as an expression in x", func() {
		c := mustCompile(chain.Unary("sin"), chain.Power(3))
		o.Expect(c.String()).To(o.Equal("pow(sin(x), 3)"))

		c = mustCompile(chain.WithInput("mul"), chain.WithConstant("add", 2, 1), chain.Unary("log"))
		o.Expect(c.String()).To(o.Equal("log(((x * x) + (2 + 1ε)))"))
	})

	g.It("compiles an empty program to the identity", func() {
		c := mustCompile()
		o.Expect(c.String()).To(o.Equal("x"))

		y, err := c.Eval(dual.Variable(4))
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(y.Equal(dual.Variable(4))).To(o.BeTrue())
	})

	g.It("expands derived ops", func() {
		c := mustCompile(chain.Unary("sqrt"), chain.Unary("neg"))
		o.Expect(c.Len()).To(o.Equal(2))
		o.Expect(c.String()).To(o.Equal("(pow(x, 0.5) * -1)"))
		o.Expect(c.Steps()).To(o.HaveLen(2))
	})

	g.DescribeTable("rejects malformed steps",
		func(s chain.Step, target error) {
			_, err := chain.Compile("bad", []chain.Step{chain.Unary("exp"), s})
			o.Expect(err).To(o.MatchError(target))

			var se *chain.StepError
			o.Expect(err).To(o.BeAssignableToTypeOf(se))
			o.Expect(err.(*chain.StepError).Index).To(o.Equal(1))
		},
		g.Entry("unknown op", chain.Unary("sinh"), chain.ErrUnknownOp),
		g.Entry("pow without exponent", chain.Unary("pow"), chain.ErrInvalidStep),
		g.Entry("unary with exponent", chain.Step{Op: "sin", Exponent: new(float64)}, chain.ErrInvalidStep),
		g.Entry("infinite constant", chain.WithConstant("add", math.Inf(1), 0), chain.ErrInvalidStep),
		g.Entry("bad operand", chain.Step{Op: "mul", Operand: "y"}, chain.ErrInvalidStep),
		g.Entry("operand and constant", chain.Step{Op: "mul", Operand: "x", Real: 2}, chain.ErrInvalidStep),
		g.Entry("derived op with arguments", chain.Step{Op: "sqrt", Real: 1}, chain.ErrInvalidStep),
	)
})

var _ = g.Describe("Eval", func() {
	g.It("applies the chain rule through every stage", func() {
		y, err := mustCompile(chain.Unary("sin"), chain.Power(3)).Eval(dual.Variable(0.5))
		o.Expect(err).NotTo(o.HaveOccurred())

		r, d := parts(y)
		o.Expect(r).To(o.BeNumerically("~", math.Pow(math.Sin(0.5), 3), 1e-12))
		o.Expect(d).To(o.BeNumerically("~", 3*math.Pow(math.Sin(0.5), 2)*math.Cos(0.5), 1e-12))
	})

	g.It("combines with the input when the operand is x", func() {
		// x * exp(x), slope exp(x)(1 + x)
		c := mustCompile(chain.Unary("exp"), chain.WithInput("mul"))
		y, err := c.Eval(dual.Variable(1))
		o.Expect(err).NotTo(o.HaveOccurred())

		r, d := parts(y)
		o.Expect(r).To(o.BeNumerically("~", math.E, 1e-12))
		o.Expect(d).To(o.BeNumerically("~", 2*math.E, 1e-12))
	})

	g.It("treats a constant's dual part as a derivative", func() {
		y, err := mustCompile(chain.WithConstant("sub", 1, 3)).Eval(dual.Variable(5))
		o.Expect(err).NotTo(o.HaveOccurred())
		r, d := parts(y)
		o.Expect(r).To(o.Equal(4.0))
		o.Expect(d).To(o.Equal(-2.0))
	})

	g.It("broadcasts constants across sequence inputs", func() {
		x, err := dual.New([]float64{1, 2, 3}, 1.0)
		o.Expect(err).NotTo(o.HaveOccurred())

		y, err := mustCompile(chain.WithConstant("add", 10, 0), chain.Unary("log")).Eval(x)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(y.Len()).To(o.Equal(3))
		o.Expect(y.Real().At(2)).To(o.BeNumerically("~", math.Log(13), 1e-12))
		o.Expect(y.Dual().At(0)).To(o.BeNumerically("~", 1.0/11, 1e-12))
	})

	g.It("wraps domain failures with the failing step", func() {
		c := mustCompile(chain.WithConstant("sub", 2, 0), chain.Unary("log"))
		_, err := c.Eval(dual.Variable(1))

		o.Expect(err).To(o.MatchError(dual.ErrDomain))
		var se *chain.StepError
		o.Expect(err).To(o.BeAssignableToTypeOf(se))
		o.Expect(err.(*chain.StepError).Index).To(o.Equal(1))
		o.Expect(err.(*chain.StepError).Op).To(o.Equal("log"))
		o.Expect(err.Error()).To(o.ContainSubstring("step 1 (log)"))
	})

	g.It("reports the user step for failures inside derived ops", func() {
		_, err := mustCompile(chain.Unary("ln")).Eval(dual.Variable(-1))
		o.Expect(err).To(o.MatchError(dual.ErrDomain))
		o.Expect(err.(*chain.StepError).Op).To(o.Equal("ln"))
	})

	g.It("agrees bit for bit between the two dual variants", func() {
		c := mustCompile(chain.Unary("cos"), chain.WithInput("mul"), chain.Power(2), chain.WithConstant("add", 1, 0), chain.Unary("log"))
		xs := []float64{0.1, 0.7, 1.3, 2.9}
		ds := []float64{1, 1, 1, 1}

		arr, err := dual.NewArray(xs, ds)
		o.Expect(err).NotTo(o.HaveOccurred())
		ya, err := c.EvalArray(arr)
		o.Expect(err).NotTo(o.HaveOccurred())

		for i, x := range xs {
			yn, err := c.Eval(dual.Variable(x))
			o.Expect(err).NotTo(o.HaveOccurred())
			r, d := ya.At(i)
			o.Expect(dual.FromScalar(r, d).Equal(yn)).To(o.BeTrue(), "element %d", i)
		}
	})
})

var _ = g.Describe("Registry", func() {
	g.It("lists primitives and derived ops in order", func() {
		r := chain.NewRegistry()
		names := r.Names()
		o.Expect(names).To(o.ContainElements("add", "cos", "exp", "log", "mul", "pow", "sin", "sub", "tan", "sqrt", "ln"))
		for i := 1; i < len(names); i++ {
			o.Expect(names[i-1] < names[i]).To(o.BeTrue())
		}
	})

	g.It("registers derived ops built from earlier ones", func() {
		r := chain.NewRegistry()
		o.Expect(r.Register(chain.Op{Name: "quartic", Expands: []chain.Step{chain.Unary("square"), chain.Unary("square")}})).To(o.Succeed())

		op, err := r.Lookup("quartic")
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(op.Primitive()).To(o.BeFalse())
		o.Expect(op.Expands).To(o.HaveLen(2))

		c, err := r.Compile("q", []chain.Step{chain.Unary("quartic")})
		o.Expect(err).NotTo(o.HaveOccurred())
		y, err := c.Eval(dual.Variable(2))
		o.Expect(err).NotTo(o.HaveOccurred())
		r2, d := parts(y)
		o.Expect(r2).To(o.Equal(16.0))
		o.Expect(d).To(o.Equal(32.0))
	})

	g.It("refuses duplicates and unknown references", func() {
		r := chain.NewRegistry()
		o.Expect(r.Register(chain.Op{Name: "sin", Expands: []chain.Step{chain.Unary("cos")}})).To(o.MatchError(chain.ErrDuplicateOp))
		o.Expect(r.Register(chain.Op{Name: "f", Expands: []chain.Step{chain.Unary("nope")}})).To(o.MatchError(chain.ErrUnknownOp))
		o.Expect(r.Register(chain.Op{Name: "g"})).To(o.MatchError(chain.ErrInvalidStep))

		_, err := r.Lookup("nope")
		o.Expect(err).To(o.MatchError(chain.ErrUnknownOp))
	})
})
