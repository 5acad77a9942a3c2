// Package chain compiles small function programs over dual numbers.
//
// A program is a list of steps applied left to right to an input x:
//
//	steps, _ := chain.Parse("sin,pow:3")
//	c, _ := chain.Compile("cubic-sine", steps) // pow(sin(x), 3)
//	y, err := c.Eval(dual.Variable(0.5))       // y.Dual() is f'(0.5)
//
// Unary ops (sin, cos, tan, log, exp) take no arguments. pow needs an
// exponent. add, sub and mul combine with either a constant (real, dual) or
// the input itself when Operand is "x". Derived ops such as sqrt and neg
// expand into primitive steps at compile time.
//
// The same compiled Chain evaluates both dual variants through [Apply].
// An [Evaluator] routes advisories to a [dual.Sink] and, in strict mode,
// turns them into a [*StrictError].
package chain
