//go:build !amd64 || noasm

package simd

func dot(a, b []float32) float64 {
	return dotGeneric(a, b)
}

func sumSquares(v []float32) float32 {
	return sumSquaresGeneric(v)
}

func scaleInPlace(v []float32, scalar float32) {
	scaleGeneric(v, scalar)
}

func runtimeInfo() RuntimeInfo {
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       []string{"unrolled"},
		Accelerated:    false,
	}
}
