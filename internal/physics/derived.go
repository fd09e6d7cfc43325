package physics

import (
	"github.com/chewxy/math32"
)

// Eps is the positive floor applied wherever a denominator could vanish.
const Eps float32 = 1e-10

// nuStarCoeff is the dimensionless collisionality prefactor for T_e in eV
// and n_e in m^-3.
const nuStarCoeff float32 = 6.921e-18

// twoPi in float32.
const twoPi = 2 * math32.Pi

// NormalizedGradient computes the dimensionless logarithmic gradient
// -R * d(profile)/dr / profile, with the profile floored at Eps.
func NormalizedGradient(profile, r []float32, majorRadius float32) []float32 {
	grad := Gradient(profile, r)
	out := make([]float32, len(profile))
	for i := range out {
		out[i] = -majorRadius * grad[i] / math32.Max(profile[i], Eps)
	}
	return out
}

// SafetyFactor computes q = r*Bt / (R*Bp) from the poloidal flux profile,
// with Bp = |dpsi/dr| / (2*pi*r).
func SafetyFactor(psi, r []float32, majorRadius, toroidalField float32) []float32 {
	dpsi := Gradient(psi, r)
	q := make([]float32, len(psi))
	for i := range q {
		bp := math32.Abs(dpsi[i]) / (twoPi * math32.Max(r[i], Eps))
		q[i] = r[i] * toroidalField / (majorRadius * math32.Max(bp, Eps))
	}
	return q
}

// MagneticShear computes s_hat = r * dq/dr / |q|.
func MagneticShear(q, r []float32) []float32 {
	dq := Gradient(q, r)
	shear := make([]float32, len(q))
	for i := range shear {
		shear[i] = r[i] * dq[i] / math32.Max(math32.Abs(q[i]), Eps)
	}
	return shear
}

// LogCollisionality computes log(nu_star) with
// nu_star = 6.921e-18 * q * R * n_e / T_e^2 (T_e in eV, n_e in m^-3),
// floored at Eps before taking the logarithm.
func LogCollisionality(q, ne, te []float32, majorRadius float32) []float32 {
	out := make([]float32, len(q))
	for i := range out {
		nuStar := nuStarCoeff * q[i] * majorRadius * ne[i] / math32.Max(te[i]*te[i], Eps)
		out[i] = math32.Log(math32.Max(nuStar, Eps))
	}
	return out
}
