// Package util provides deterministic vector generators for tests and
// benchmarks.
package util

import (
	"math"
	"math/rand"
)

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Vector generates a random vector with components in [-1, 1).
func (r *RNG) Vector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = r.rand.Float32()*2 - 1
	}
	return v
}

// UnitVector generates a random vector scaled to unit L2 norm.
// Retries on the (vanishingly unlikely) all-zero draw.
func (r *RNG) UnitVector(dim int) []float32 {
	for {
		v := r.Vector(dim)

		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum == 0 {
			continue
		}

		inv := float32(1 / math.Sqrt(sum))
		for i := range v {
			v[i] *= inv
		}
		return v
	}
}

// UnitVectors generates num random unit vectors of the given dimension.
func (r *RNG) UnitVectors(num, dim int) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = r.UnitVector(dim)
	}
	return vectors
}
