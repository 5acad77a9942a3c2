// Package dual implements forward-mode automatic differentiation with dual
// numbers.
//
// A dual number a + bε with ε² = 0 carries a value a and a derivative
// coefficient b. Evaluating f on it yields f(a) + f'(a)bε, so the derivative
// is propagated exactly through every primitive:
//
//   - [Number]: parts may each be a scalar or a sequence ([Value])
//   - [Array]: fixed-layout variant over equal-length float64 slices
//   - [Operand]: the operation set both variants implement
//
// # Guards
//
// Tan and Log check their argument before evaluating. Inputs inside the hard
// margin ([HardMargin]) fail with a [*DomainError]; inputs inside the soft
// margin ([SoftMargin]) succeed and attach an [Advisory] to the result.
// Advisories are inherited by every value computed from that result and can
// be forwarded to a [Sink] with [Report].
//
// # Example
//
//	x := dual.Variable(0.5)     // x = 0.5, dx = 1
//	y := x.Sin().Pow(3)         // sin³x
//	fmt.Println(y.Dual())       // 3 sin²x cos x at 0.5
//
// # Thread Safety
//
// Numbers and Arrays are immutable values and may be shared between
// goroutines. A [Collector] is safe for concurrent use.
package dual
