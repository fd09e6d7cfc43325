// Package physics derives the surrogate's normalized input parameters from
// raw radial profiles: logarithmic gradients, safety factor, magnetic shear,
// and collisionality, all via boundary-aware finite differences.
package physics

// Gradient computes df/dx over equal-length 1-D arrays with second-order
// centered differences in the interior and one-sided differences at the
// boundaries:
//
//   - n < 2:  all zeros
//   - n == 2: the single slope (f[1]-f[0])/(x[1]-x[0]) at both positions
//   - n >= 3: forward difference at 0, backward difference at n-1, centered
//     difference (f[i+1]-f[i-1])/(x[i+1]-x[i-1]) in the interior
func Gradient(f, x []float32) []float32 {
	n := len(f)
	grad := make([]float32, n)
	if n < 2 {
		return grad
	}

	if n == 2 {
		slope := (f[1] - f[0]) / (x[1] - x[0])
		grad[0], grad[1] = slope, slope
		return grad
	}

	grad[0] = (f[1] - f[0]) / (x[1] - x[0])
	grad[n-1] = (f[n-1] - f[n-2]) / (x[n-1] - x[n-2])

	// One pass over the whole interior slice; each cell is independent.
	for i := 1; i < n-1; i++ {
		grad[i] = (f[i+1] - f[i-1]) / (x[i+1] - x[i-1])
	}

	return grad
}
