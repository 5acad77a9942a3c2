// Package kernel provides elementwise float64 slice kernels used by the
// dual-number types.
//
// Every kernel writes into a caller-owned destination and never retains
// either argument:
//
//   - Unary transcendental kernels: [Cos], [Tan], [Log], [Exp],
//     [Pow] and the fused [SinCos]
//   - Binary arithmetic on gonum/floats: [Add], [Sub], [Mul], [Div], [Scale]
//   - Reductions used by numerical guards: [AnyIndex]
//
// Kernels panic when dst and src lengths differ, the same contract as
// gonum.org/v1/gonum/floats. Callers validate shapes before reaching here.
//
// # Example
//
//	xs := []float64{0, math.Pi / 4}
//	s := make([]float64, len(xs))
//	c := make([]float64, len(xs))
//	kernel.SinCos(s, c, xs)
package kernel
