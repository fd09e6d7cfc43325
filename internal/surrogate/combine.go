package surrogate

// TransportCoefficients are the aggregate transport quantities obtained by
// summing per-mode fluxes, each of length B, in gyro-Bohm units.
type TransportCoefficients struct {
	ChiIon       []float32 // efiITG + efiTEM
	ChiElectron  []float32 // efeITG + efeTEM + efeETG
	ParticleFlux []float32 // pfeITG + pfeTEM
	GrowthRate   []float32 // gamma_max
}

// Combine sums per-turbulence-mode flux predictions into aggregate ion and
// electron transport coefficients and particle flux.
//
// A missing mode contribution is treated as a zero array of matching length
// rather than an error: partial-mode evaluation is a legitimate
// configuration.
func Combine(outputs OutputVector) TransportCoefficients {
	batch := 0
	for _, values := range outputs {
		batch = len(values)
		break
	}

	return TransportCoefficients{
		ChiIon:       sumModes(batch, outputs, "efiITG", "efiTEM"),
		ChiElectron:  sumModes(batch, outputs, "efeITG", "efeTEM", "efeETG"),
		ParticleFlux: sumModes(batch, outputs, "pfeITG", "pfeTEM"),
		GrowthRate:   sumModes(batch, outputs, "gamma_max"),
	}
}

// sumModes adds the named mode arrays element-wise, skipping absent modes.
func sumModes(batch int, outputs OutputVector, names ...string) []float32 {
	total := make([]float32, batch)
	for _, name := range names {
		values, ok := outputs[name]
		if !ok {
			continue
		}
		for i := range total {
			total[i] += values[i]
		}
	}
	return total
}
