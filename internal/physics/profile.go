package physics

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/fusion-ml/qlknn/internal/surrogate"
)

// RadialProfile holds raw plasma profiles over a shared radial grid plus
// scalar geometry constants. All profile arrays must have the grid's length.
// The preprocessor reads it and never mutates it.
type RadialProfile struct {
	Radius []float32 // minor-radius grid r [m]
	Psi    []float32 // poloidal flux [Wb]
	Te     []float32 // electron temperature [eV]
	Ti     []float32 // ion temperature [eV]
	Ne     []float32 // electron density [m^-3]
	Ni     []float32 // ion density [m^-3]

	MajorRadius   float32 // R [m]
	MinorRadius   float32 // a [m]
	ToroidalField float32 // Bt [T]
}

// validate checks that all profile arrays share the grid's length.
func (p *RadialProfile) validate() error {
	n := len(p.Radius)
	for name, arr := range map[string][]float32{
		"Psi": p.Psi, "Te": p.Te, "Ti": p.Ti, "Ne": p.Ne, "Ni": p.Ni,
	} {
		if len(arr) != n {
			return &surrogate.ShapeError{
				Name:    name,
				Details: fmt.Sprintf("length %d disagrees with radial grid (length %d)", len(arr), n),
			}
		}
	}
	return nil
}

// BuildInputs derives the 10 named surrogate inputs from a radial profile:
// normalized logarithmic gradients of Ti, Te, ne, ni; safety factor;
// magnetic shear; normalized radius; Ti/Te; log collisionality; ni/ne.
//
// Degenerate but structurally valid profiles (near-zero radius or
// temperature) still produce finite values through the Eps floors; run
// surrogate.Validate on the result before evaluation.
func BuildInputs(profile *RadialProfile) (surrogate.InputVector, error) {
	if err := profile.validate(); err != nil {
		return nil, err
	}

	r := profile.Radius
	rMaj := profile.MajorRadius
	n := len(r)

	q := SafetyFactor(profile.Psi, r, rMaj, profile.ToroidalField)

	tiTe := make([]float32, n)
	normni := make([]float32, n)
	x := make([]float32, n)
	for i := 0; i < n; i++ {
		tiTe[i] = profile.Ti[i] / math32.Max(profile.Te[i], Eps)
		normni[i] = profile.Ni[i] / math32.Max(profile.Ne[i], Eps)
		x[i] = r[i] / rMaj
	}

	return surrogate.InputVector{
		"Ati":       NormalizedGradient(profile.Ti, r, rMaj),
		"Ate":       NormalizedGradient(profile.Te, r, rMaj),
		"Ane":       NormalizedGradient(profile.Ne, r, rMaj),
		"Ani":       NormalizedGradient(profile.Ni, r, rMaj),
		"q":         q,
		"smag":      MagneticShear(q, r),
		"x":         x,
		"Ti_Te":     tiTe,
		"LogNuStar": LogCollisionality(q, profile.Ne, profile.Te, rMaj),
		"normni":    normni,
	}, nil
}
