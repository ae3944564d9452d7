package massaction

const referenceTemperature = 298.15

// Cp evaluates the molar heat capacity polynomial at T
func (th Thermo) Cp(T float64) (cp float64) {
	for i := len(th.CpCoeffs) - 1; i >= 0; i-- {
		cp = cp*T + th.CpCoeffs[i]
	}
	return
}

// H is the molar enthalpy at T, integrating Cp from 298.15 K
func (th Thermo) H(T float64) (h float64) {
	var (
		tn, tr = T, referenceTemperature
	)
	h = th.H298
	for i, a := range th.CpCoeffs {
		n := float64(i + 1)
		h += a / n * (tn - tr)
		tn *= T
		tr *= referenceTemperature
	}
	return
}
