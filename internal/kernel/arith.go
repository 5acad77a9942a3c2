package kernel

import "gonum.org/v1/gonum/floats"

// Add writes s[i] + t[i] into dst[i].
func Add(dst, s, t []float64) {
	floats.AddTo(dst, s, t)
}

// Sub writes s[i] - t[i] into dst[i].
func Sub(dst, s, t []float64) {
	floats.SubTo(dst, s, t)
}

// Mul writes s[i] * t[i] into dst[i].
func Mul(dst, s, t []float64) {
	floats.MulTo(dst, s, t)
}

// Div writes s[i] / t[i] into dst[i].
func Div(dst, s, t []float64) {
	floats.DivTo(dst, s, t)
}

// Scale writes c * s[i] into dst[i].
func Scale(dst []float64, c float64, s []float64) {
	floats.ScaleTo(dst, c, s)
}

// Clone returns a copy of s. A nil input yields an empty, non-nil slice.
func Clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
