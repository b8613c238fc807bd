// Package simd provides the float32 vector kernels used during index load
// and search: dot product and in-place L2 normalization.
//
// On amd64 the kernels are backed by github.com/viterin/vek (AVX2 when the
// CPU supports it, pure Go otherwise). Every other platform uses a portable
// unrolled Go implementation. Both paths accumulate in float32 lanes and
// agree within float rounding tolerance, so results are comparable across
// builds.
package simd
