//go:build amd64 && !noasm

package simd

import (
	"github.com/viterin/vek/vek32"
	"golang.org/x/sys/cpu"
)

// vek dispatches to AVX2 kernels internally when the CPU supports them and
// falls back to pure Go otherwise, so no runtime switch is needed here.

func dot(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(vek32.Dot(a, b))
}

func sumSquares(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return vek32.Dot(v, v)
}

func scaleInPlace(v []float32, scalar float32) {
	if len(v) == 0 {
		return
	}
	vek32.MulNumber_Inplace(v, scalar)
}

func runtimeInfo() RuntimeInfo {
	if cpu.X86.HasAVX2 {
		return RuntimeInfo{
			Implementation: ImplVek,
			Features:       []string{"avx2"},
			Accelerated:    true,
		}
	}
	return RuntimeInfo{
		Implementation: ImplVek,
		Features:       []string{"sse2"},
		Accelerated:    false,
	}
}
