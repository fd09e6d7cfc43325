package physics_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion-ml/qlknn/internal/physics"
)

func TestNormalizedGradientLinearTemperature(t *testing.T) {
	// Rising profile: the logarithmic gradient must be finite and strictly
	// negative everywhere.
	r := []float32{0, 1, 2, 3, 4}
	te := []float32{1000, 1500, 2000, 2500, 3000}

	out := physics.NormalizedGradient(te, r, 6.2)
	require.Len(t, out, len(r))
	for i, v := range out {
		require.False(t, math32.IsNaN(v) || math32.IsInf(v, 0), "index %d", i)
		assert.Less(t, v, float32(0), "index %d", i)
	}

	// Spot check: at r=2, grad = 500 eV/m, so -6.2*500/2000 = -1.55.
	assert.InDelta(t, -1.55, out[2], 1e-4)
}

func TestNormalizedGradientFlatProfile(t *testing.T) {
	r := []float32{0, 1, 2}
	ne := []float32{5e19, 5e19, 5e19}

	for i, v := range physics.NormalizedGradient(ne, r, 6.2) {
		assert.InDelta(t, 0, v, 1e-6, "index %d", i)
	}
}

func TestNormalizedGradientZeroProfile(t *testing.T) {
	// An all-zero profile divides by the Eps floor instead of zero.
	r := []float32{0, 1, 2}
	zero := []float32{0, 0, 0}

	for i, v := range physics.NormalizedGradient(zero, r, 6.2) {
		require.False(t, math32.IsNaN(v) || math32.IsInf(v, 0), "index %d", i)
	}
}

func TestSafetyFactorLinearFlux(t *testing.T) {
	// psi = c*r gives Bp = c/(2*pi*r), so q = 2*pi*r^2*Bt/(R*c).
	const (
		c      float32 = 0.5
		rMaj   float32 = 6.2
		btesla float32 = 5.3
	)
	r := []float32{0, 0.5, 1.0, 1.5, 2.0}
	psi := make([]float32, len(r))
	for i := range r {
		psi[i] = c * r[i]
	}

	q := physics.SafetyFactor(psi, r, rMaj, btesla)
	require.Len(t, q, len(r))
	for i := 1; i < len(r); i++ {
		want := 2 * math32.Pi * r[i] * r[i] * btesla / (rMaj * c)
		assert.InDelta(t, want, q[i], float64(want)*1e-4, "index %d", i)
	}

	// On-axis r=0: Bp collapses to the floor but q stays finite.
	require.False(t, math32.IsNaN(q[0]) || math32.IsInf(q[0], 0))
}

func TestMagneticShearConstantQ(t *testing.T) {
	r := []float32{0.5, 1.0, 1.5, 2.0}
	q := []float32{2, 2, 2, 2}

	for i, v := range physics.MagneticShear(q, r) {
		assert.InDelta(t, 0, v, 1e-6, "index %d", i)
	}
}

func TestMagneticShearLinearQ(t *testing.T) {
	// q = r gives dq/dr = 1 and s_hat = r/|q| = 1 everywhere off axis.
	r := []float32{0.5, 1.0, 1.5, 2.0}
	q := []float32{0.5, 1.0, 1.5, 2.0}

	for i, v := range physics.MagneticShear(q, r) {
		assert.InDelta(t, 1, v, 1e-4, "index %d", i)
	}
}

func TestLogCollisionality(t *testing.T) {
	q := []float32{1.5, 2.0}
	ne := []float32{5e19, 3e19}
	te := []float32{2000, 1000}

	out := physics.LogCollisionality(q, ne, te, 6.2)
	require.Len(t, out, 2)
	for i, v := range out {
		require.False(t, math32.IsNaN(v) || math32.IsInf(v, 0), "index %d", i)
	}

	// nu_star = 6.921e-18 * 1.5 * 6.2 * 5e19 / 2000^2 ~= 0.8046
	want := math32.Log(6.921e-18 * 1.5 * 6.2 * 5e19 / (2000 * 2000))
	assert.InDelta(t, want, out[0], 1e-3)
}

func TestLogCollisionalityZeroTemperature(t *testing.T) {
	// T_e = 0 hits the Eps floor twice; the result is finite.
	out := physics.LogCollisionality([]float32{2}, []float32{5e19}, []float32{0}, 6.2)
	require.False(t, math32.IsNaN(out[0]) || math32.IsInf(out[0], 0))
}
