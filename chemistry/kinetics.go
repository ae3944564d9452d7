package chemistry

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Arrhenius rate constant k = A T^B exp(-Ea / R T), A in SI units, Ea in J/kmol
type Arrhenius struct {
	A, B, Ea float64
}

func (ar Arrhenius) Rate(T float64) float64 {
	k := ar.A * math.Exp(-ar.Ea/(GasConstant*T))
	if ar.B != 0 {
		k *= math.Pow(T, ar.B)
	}
	return k
}

func (ar Arrhenius) String() string {
	return fmt.Sprintf("A=%g B=%g Ea=%g", ar.A, ar.B, ar.Ea)
}

// KineticParameters is ordered like Provider.CalibratableReactions. A nil
// vector means the provider's own parameters are used.
type KineticParameters []Arrhenius

func (kp KineticParameters) Clone() KineticParameters {
	if kp == nil {
		return nil
	}
	return append(KineticParameters(nil), kp...)
}

func (kp KineticParameters) Validate() error {
	for i, ar := range kp {
		switch {
		case !(ar.A > 0) || math.IsInf(ar.A, 0):
			return fmt.Errorf("reaction %d: pre-exponential factor must be positive and finite, have %v", i, ar.A)
		case math.IsNaN(ar.B) || math.IsInf(ar.B, 0):
			return fmt.Errorf("reaction %d: temperature exponent must be finite, have %v", i, ar.B)
		case math.IsNaN(ar.Ea) || math.IsInf(ar.Ea, 0):
			return fmt.Errorf("reaction %d: activation energy must be finite, have %v", i, ar.Ea)
		}
	}
	return nil
}

// Fingerprint identifies the exact bits of the parameter vector
func (kp KineticParameters) Fingerprint() string {
	buf := make([]byte, 24*len(kp))
	for i, ar := range kp {
		binary.LittleEndian.PutUint64(buf[24*i:], math.Float64bits(ar.A))
		binary.LittleEndian.PutUint64(buf[24*i+8:], math.Float64bits(ar.B))
		binary.LittleEndian.PutUint64(buf[24*i+16:], math.Float64bits(ar.Ea))
	}
	return hex.EncodeToString(buf)
}
