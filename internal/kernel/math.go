package kernel

import "math"

const lengthMismatch = "kernel: slice length mismatch"

func checkLen(dst, src []float64) {
	if len(dst) != len(src) {
		panic(lengthMismatch)
	}
}

// Cos writes cos(src[i]) into dst[i].
func Cos(dst, src []float64) {
	checkLen(dst, src)
	for i, x := range src {
		dst[i] = math.Cos(x)
	}
}

// SinCos computes both sine and cosine in one pass.
func SinCos(sinDst, cosDst, src []float64) {
	checkLen(sinDst, src)
	checkLen(cosDst, src)
	for i, x := range src {
		sinDst[i], cosDst[i] = math.Sincos(x)
	}
}

// Tan writes tan(src[i]) into dst[i].
func Tan(dst, src []float64) {
	checkLen(dst, src)
	for i, x := range src {
		dst[i] = math.Tan(x)
	}
}

// Log writes the natural logarithm of src[i] into dst[i].
// No domain checks are made; ln of a non-positive value follows IEEE-754.
func Log(dst, src []float64) {
	checkLen(dst, src)
	for i, x := range src {
		dst[i] = math.Log(x)
	}
}

// Exp writes e^src[i] into dst[i].
func Exp(dst, src []float64) {
	checkLen(dst, src)
	for i, x := range src {
		dst[i] = math.Exp(x)
	}
}

// Pow writes src[i]^p into dst[i].
func Pow(dst, src []float64, p float64) {
	checkLen(dst, src)
	for i, x := range src {
		dst[i] = math.Pow(x, p)
	}
}

// Fill sets every element of dst to v.
func Fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

// AnyIndex returns the index of the first element satisfying pred, or -1.
func AnyIndex(xs []float64, pred func(float64) bool) int {
	for i, x := range xs {
		if pred(x) {
			return i
		}
	}
	return -1
}

// AllIndex returns the indices of every element satisfying pred, or nil.
func AllIndex(xs []float64, pred func(float64) bool) []int {
	var out []int
	for i, x := range xs {
		if pred(x) {
			out = append(out, i)
		}
	}
	return out
}
