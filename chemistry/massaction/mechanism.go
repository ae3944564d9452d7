package massaction

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

type Thermo struct {
	H298     float64   `json:"h298"` // J/kmol
	CpCoeffs []float64 `json:"cp"`   // J/kmol/K, polynomial coefficients in T
}

type SpeciesDef struct {
	Name      string  `json:"name"`
	MolarMass float64 `json:"molar-mass"` // kg/kmol
	Thermo    Thermo  `json:"thermo"`
}

type RateDef struct {
	A  float64 `json:"A"`
	B  float64 `json:"b"`
	Ea float64 `json:"Ea"` // J/kmol
}

type ReactionDef struct {
	ID           string             `json:"id"`
	Phase        string             `json:"phase"` // surface (default) or gas
	Reactants    map[string]float64 `json:"reactants"`
	Products     map[string]float64 `json:"products"`
	Orders       map[string]float64 `json:"orders"`
	Rate         RateDef            `json:"rate"`
	Calibratable bool               `json:"calibratable"`
}

// Mechanism is the YAML description of a gas/surface/bulk reaction system
type Mechanism struct {
	Name      string        `json:"name"`
	Gas       []SpeciesDef  `json:"gas-species"`
	Surface   []SpeciesDef  `json:"surface-species"`
	Bulk      []SpeciesDef  `json:"bulk-species"`
	Deposit   string        `json:"deposit"`
	Reactions []ReactionDef `json:"reactions"`
}

func LoadMechanism(path string) (m *Mechanism, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if m, err = ParseMechanism(data); err != nil {
		err = fmt.Errorf("mechanism %s: %w", path, err)
	}
	return
}

func ParseMechanism(data []byte) (m *Mechanism, err error) {
	m = &Mechanism{}
	if err = yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return
}

type phase uint8

const (
	phaseGas phase = iota
	phaseSurface
	phaseBulk
)

type speciesRef struct {
	phase phase
	index int
}

func (m *Mechanism) lookup() (refs map[string]speciesRef, err error) {
	refs = make(map[string]speciesRef)
	add := func(defs []SpeciesDef, ph phase) error {
		for i, sd := range defs {
			if len(sd.Name) == 0 {
				return fmt.Errorf("species %d has no name", i)
			}
			if _, dup := refs[sd.Name]; dup {
				return fmt.Errorf("species %q defined twice", sd.Name)
			}
			refs[sd.Name] = speciesRef{ph, i}
		}
		return nil
	}
	if err = add(m.Gas, phaseGas); err != nil {
		return
	}
	if err = add(m.Surface, phaseSurface); err != nil {
		return
	}
	err = add(m.Bulk, phaseBulk)
	return
}

func (m *Mechanism) Validate() (err error) {
	var refs map[string]speciesRef
	if len(m.Gas) == 0 {
		return fmt.Errorf("mechanism has no gas species")
	}
	if refs, err = m.lookup(); err != nil {
		return
	}
	for _, sd := range append(append([]SpeciesDef{}, m.Gas...), m.Bulk...) {
		if !(sd.MolarMass > 0) {
			return fmt.Errorf("species %q needs a positive molar-mass", sd.Name)
		}
	}
	if ref, ok := refs[m.Deposit]; !ok || ref.phase != phaseBulk {
		return fmt.Errorf("deposit %q is not a bulk species", m.Deposit)
	}
	ids := make(map[string]bool)
	for i, rd := range m.Reactions {
		if len(rd.ID) == 0 {
			return fmt.Errorf("reaction %d has no id", i)
		}
		if ids[rd.ID] {
			return fmt.Errorf("reaction id %q used twice", rd.ID)
		}
		ids[rd.ID] = true
		switch rd.Phase {
		case "", "surface":
		case "gas":
			if rd.Calibratable {
				return fmt.Errorf("reaction %q: only surface reactions are calibratable", rd.ID)
			}
		default:
			return fmt.Errorf("reaction %q: unknown phase %q", rd.ID, rd.Phase)
		}
		if len(rd.Reactants) == 0 {
			return fmt.Errorf("reaction %q has no reactants", rd.ID)
		}
		for _, side := range []map[string]float64{rd.Reactants, rd.Products, rd.Orders} {
			for name, nu := range side {
				ref, ok := refs[name]
				if !ok {
					return fmt.Errorf("reaction %q: unknown species %q", rd.ID, name)
				}
				if nu < 0 {
					return fmt.Errorf("reaction %q: negative coefficient for %q", rd.ID, name)
				}
				if rd.Phase == "gas" && ref.phase != phaseGas {
					return fmt.Errorf("gas reaction %q involves non-gas species %q", rd.ID, name)
				}
			}
		}
		if !(rd.Rate.A > 0) {
			return fmt.Errorf("reaction %q needs a positive pre-exponential factor", rd.ID)
		}
	}
	return
}
