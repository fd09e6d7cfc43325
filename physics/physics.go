// Package physics is the public API of the profile preprocessor: it turns
// raw radial profiles into the named, normalized inputs the surrogate
// consumes.
package physics

import (
	internal "github.com/fusion-ml/qlknn/internal/physics"
	"github.com/fusion-ml/qlknn/internal/surrogate"
)

// RadialProfile holds raw plasma profiles over a shared radial grid plus
// scalar geometry constants.
type RadialProfile = internal.RadialProfile

// Eps is the positive floor applied wherever a denominator could vanish.
const Eps = internal.Eps

// BuildInputs derives the 10 named surrogate inputs from a radial profile.
// Run surrogate.Validate on the result before evaluation: degenerate
// profiles can still produce extreme but finite values.
func BuildInputs(profile *RadialProfile) (surrogate.InputVector, error) {
	return internal.BuildInputs(profile)
}

// Gradient computes boundary-aware finite differences of f over x.
func Gradient(f, x []float32) []float32 {
	return internal.Gradient(f, x)
}

// NormalizedGradient computes -R * d(profile)/dr / profile.
func NormalizedGradient(profile, r []float32, majorRadius float32) []float32 {
	return internal.NormalizedGradient(profile, r, majorRadius)
}

// SafetyFactor computes q = r*Bt / (R*Bp) from the poloidal flux profile.
func SafetyFactor(psi, r []float32, majorRadius, toroidalField float32) []float32 {
	return internal.SafetyFactor(psi, r, majorRadius, toroidalField)
}

// MagneticShear computes s_hat = r * dq/dr / |q|.
func MagneticShear(q, r []float32) []float32 {
	return internal.MagneticShear(q, r)
}

// LogCollisionality computes log(nu_star) from q, n_e and T_e.
func LogCollisionality(q, ne, te []float32, majorRadius float32) []float32 {
	return internal.LogCollisionality(q, ne, te, majorRadius)
}
