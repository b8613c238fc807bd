package simd

import "math"

// Implementation identifies the active kernel backend.
type Implementation string

const (
	// ImplGeneric is the portable unrolled Go path.
	ImplGeneric Implementation = "generic"
	// ImplVek is the viterin/vek path (AVX2 on capable amd64 CPUs).
	ImplVek Implementation = "vek"
)

// RuntimeInfo describes the kernel backend selected at process start.
type RuntimeInfo struct {
	Implementation Implementation
	Features       []string
	Accelerated    bool
}

// Info reports which backend the kernels dispatch to.
func Info() RuntimeInfo {
	return runtimeInfo()
}

// Dot calculates the dot product of two vectors, accumulating in float32
// lanes and widening to float64 only at the final horizontal sum.
//
// SAFETY: assumes len(a) == len(b). Callers must ensure lengths match.
func Dot(a, b []float32) float64 {
	return dot(a, b)
}

// SumSquares returns the sum of squared elements of v.
func SumSquares(v []float32) float32 {
	return sumSquares(v)
}

// ScaleInPlace multiplies every element of v by scalar.
func ScaleInPlace(v []float32, scalar float32) {
	scaleInPlace(v, scalar)
}

// NormalizeInPlace scales v to unit L2 norm in place. The reciprocal of the
// norm is obtained from a fast inverse-square-root estimate refined by
// exactly two Newton-Raphson iterations, which keeps the relative error of
// the resulting norm well inside 0.02%. This trades a precise sqrt and a
// division for a handful of multiplies; downstream comparisons rank by
// relative score, so the approximation is invisible there.
//
// If the sum of squares is zero, v is left untouched and false is returned.
func NormalizeInPlace(v []float32) bool {
	s := sumSquares(v)
	if s == 0 {
		return false
	}
	scaleInPlace(v, reciprocalSqrt(s))
	return true
}

// reciprocalSqrt approximates 1/sqrt(s) from the classic float32 bit-level
// seed followed by two Newton-Raphson refinements (y = y*(1.5 - 0.5*s*y*y)).
// The bit-level seed is used instead of a hardware estimate instruction so
// the approximation error is identical on every platform.
func reciprocalSqrt(s float32) float32 {
	y := math.Float32frombits(0x5f3759df - math.Float32bits(s)>>1)
	y *= 1.5 - 0.5*s*y*y
	y *= 1.5 - 0.5*s*y*y
	return y
}

// Portable kernels. The hot loops are unrolled into eight independent
// float32 accumulators so the compiler can keep them in vector registers;
// the remainder is handled by a scalar tail loop.

func dotGeneric(a, b []float32) float64 {
	var s0, s1, s2, s3, s4, s5, s6, s7 float32

	n := len(a)
	i := 0
	for ; i+8 <= n; i += 8 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
		s4 += a[i+4] * b[i+4]
		s5 += a[i+5] * b[i+5]
		s6 += a[i+6] * b[i+6]
		s7 += a[i+7] * b[i+7]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}

	return float64(s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7)
}

func sumSquaresGeneric(v []float32) float32 {
	var s0, s1, s2, s3, s4, s5, s6, s7 float32

	n := len(v)
	i := 0
	for ; i+8 <= n; i += 8 {
		s0 += v[i] * v[i]
		s1 += v[i+1] * v[i+1]
		s2 += v[i+2] * v[i+2]
		s3 += v[i+3] * v[i+3]
		s4 += v[i+4] * v[i+4]
		s5 += v[i+5] * v[i+5]
		s6 += v[i+6] * v[i+6]
		s7 += v[i+7] * v[i+7]
	}
	for ; i < n; i++ {
		s0 += v[i] * v[i]
	}

	return s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
}

func scaleGeneric(v []float32, scalar float32) {
	for i := range v {
		v[i] *= scalar
	}
}
