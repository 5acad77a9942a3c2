package chain_test

import (
	"math"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/dual"
)

var _ = g.Describe("Evaluator", func() {
	var (
		logChain *chain.Chain
		sink     *dual.Collector
	)

	g.BeforeEach(func() {
		logChain = mustCompile(chain.Unary("log"))
		sink = &dual.Collector{}
	})

	g.It("forwards advisories to the sink and still returns the value", func() {
		ev := chain.NewEvaluator(logChain, chain.WithSink(sink))
		y, err := ev.Eval(dual.Variable(1e-7))
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(sink.Len()).To(o.Equal(1))
		o.Expect(sink.Advisories()[0].Message).To(o.Equal(dual.AdviseNearZero))

		r, _ := parts(y)
		o.Expect(r).To(o.BeNumerically("~", math.Log(1e-7), 1e-9))
	})

	g.It("fails in strict mode but still reports", func() {
		ev := chain.NewEvaluator(logChain, chain.WithSink(sink), chain.WithStrict(true))
		o.Expect(ev.Strict()).To(o.BeTrue())

		_, err := ev.Eval(dual.Variable(1e-7))
		o.Expect(err).To(o.MatchError(chain.ErrStrict))
		var se *chain.StrictError
		o.Expect(err).To(o.BeAssignableToTypeOf(se))
		o.Expect(err.(*chain.StrictError).Advisories).To(o.HaveLen(1))
		o.Expect(sink.Len()).To(o.Equal(1))

		_, err = ev.Eval(dual.Variable(2))
		o.Expect(err).NotTo(o.HaveOccurred())
	})

	g.It("applies to fixed-layout arrays", func() {
		ev := chain.NewEvaluator(logChain, chain.WithSink(sink))
		x, err := dual.NewArray([]float64{1e-7, 3e-7}, []float64{1, 1})
		o.Expect(err).NotTo(o.HaveOccurred())

		y, err := ev.EvalArray(x)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(y.Len()).To(o.Equal(2))
		o.Expect(sink.Len()).To(o.Equal(1))

		_, err = chain.NewEvaluator(logChain, chain.WithStrict(true)).EvalArray(x)
		o.Expect(err).To(o.MatchError(chain.ErrStrict))
	})

	g.It("does not report advisories for failed evaluations", func() {
		ev := chain.NewEvaluator(mustCompile(chain.Unary("tan")), chain.WithSink(sink))
		_, err := ev.Eval(dual.Variable(math.Pi / 2))
		o.Expect(err).To(o.MatchError(dual.ErrDomain))
		o.Expect(sink.Len()).To(o.BeZero())
	})

	g.It("returns value and slope", func() {
		ev := chain.NewEvaluator(mustCompile(chain.Unary("exp")))
		v, s, err := ev.Derivative(0)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(v).To(o.Equal(1.0))
		o.Expect(s).To(o.Equal(1.0))
		o.Expect(ev.Chain().Name()).To(o.Equal("test"))
	})

	g.DescribeTable("agrees with a central difference",
		func(steps []chain.Step, x float64) {
			ev := chain.NewEvaluator(mustCompile(steps...))
			check, err := ev.Verify(x, 1e-5, 1e-6)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(check.OK).To(o.BeTrue(), "derivative %v numeric %v", check.Derivative, check.Numeric)
		},
		g.Entry("sin³", []chain.Step{chain.Unary("sin"), chain.Power(3)}, 0.5),
		g.Entry("x·eˣ", []chain.Step{chain.Unary("exp"), chain.WithInput("mul")}, 1.0),
		g.Entry("log(x²+1)", []chain.Step{chain.Unary("square"), chain.WithConstant("add", 1, 0), chain.Unary("log")}, 2.0),
		g.Entry("tan", []chain.Step{chain.Unary("tan")}, 0.3),
	)

	g.It("rejects a non-positive difference step", func() {
		_, err := mustCompile(chain.Unary("sin")).CentralDifference(0, 0)
		o.Expect(err).To(o.HaveOccurred())
	})
})

var _ = g.Describe("Parse", func() {
	g.It("reads the compact step syntax", func() {
		steps, err := chain.Parse("sin, POW:3, add:2:1, mul:x, sub:-0.5")
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(steps).To(o.HaveLen(5))
		o.Expect(steps[0]).To(o.Equal(chain.Unary("sin")))
		o.Expect(*steps[1].Exponent).To(o.Equal(3.0))
		o.Expect(steps[2]).To(o.Equal(chain.WithConstant("add", 2, 1)))
		o.Expect(steps[3]).To(o.Equal(chain.WithInput("mul")))
		o.Expect(steps[4].Real).To(o.Equal(-0.5))
	})

	g.It("round-trips through Format", func() {
		in := "sin,pow:3,add:2:1,mul:x,sub:0:4,neg"
		steps, err := chain.Parse(in)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(chain.Format(steps)).To(o.Equal(in))
	})

	g.It("returns nothing for an empty expression", func() {
		steps, err := chain.Parse("  ")
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(steps).To(o.BeEmpty())
	})

	g.DescribeTable("rejects malformed input",
		func(expr string) {
			_, err := chain.Parse(expr)
			o.Expect(err).To(o.MatchError(chain.ErrInvalidStep))
		},
		g.Entry("empty op", "sin,,cos"),
		g.Entry("bad exponent", "pow:three"),
		g.Entry("pow with two args", "pow:1:2"),
		g.Entry("bad constant", "add:abc"),
		g.Entry("too many args", "add:1:2:3"),
		g.Entry("x with dual part", "mul:x:1"),
	)
})
