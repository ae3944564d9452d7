package massaction

import (
	"fmt"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/utils"
)

type orderTerm struct {
	phase phase
	index int
	exp   float64
}

type reaction struct {
	id     string
	rate   chemistry.Arrhenius
	orders []orderTerm
}

// stoichiometry is a species by reaction matrix of net coefficients
type stoichiometry struct {
	rows, cols int
	m          *sparse.CSR
}

func newStoichiometry(rows, cols int, fill func(dok *sparse.DOK)) (st stoichiometry) {
	st = stoichiometry{rows: rows, cols: cols}
	if rows == 0 || cols == 0 {
		return
	}
	dok := sparse.NewDOK(rows, cols)
	fill(dok)
	st.m = dok.ToCSR()
	return
}

// mul returns nu * q, the species production from reaction rates
func (st stoichiometry) mul(q []float64) (y []float64) {
	y = make([]float64, st.rows)
	if st.m == nil {
		return
	}
	raw := st.m.RawMatrix()
	for i := 0; i < raw.I; i++ {
		for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
			y[i] += raw.Data[p] * q[raw.Ind[p]]
		}
	}
	return
}

// mulT returns nu^T * h, per reaction sums of species properties
func (st stoichiometry) mulT(h []float64) (y []float64) {
	y = make([]float64, st.cols)
	if st.m == nil {
		return
	}
	raw := st.m.RawMatrix()
	for i := 0; i < raw.I; i++ {
		for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
			y[raw.Ind[p]] += raw.Data[p] * h[i]
		}
	}
	return
}

/*
Provider evaluates mass-action kinetics for a Mechanism. Surface reaction rates
are k(T) times the product of gas concentrations [kmol/m3] and site fractions
raised to their orders; bulk species have unit activity. Gas phase reactions
use concentrations only. A Provider is immutable and safe for concurrent use.
*/
type Provider struct {
	mech                  *Mechanism
	species               chemistry.Species
	gasW                  []float64
	depositW              float64
	surfRxn, gasRxn       []reaction
	calib                 []int // Indices into surfRxn
	nuGas, nuSurf, nuBulk stoichiometry
	nuHomogeneous         stoichiometry
	MaxCoverageIterations int
	CoverageTolerance     float64
}

func New(m *Mechanism) (p *Provider, err error) {
	var refs map[string]speciesRef
	if err = m.Validate(); err != nil {
		return
	}
	if refs, err = m.lookup(); err != nil {
		return
	}
	p = &Provider{
		mech:                  m,
		gasW:                  make([]float64, len(m.Gas)),
		MaxCoverageIterations: 50,
		CoverageTolerance:     1.e-10,
	}
	for i, sd := range m.Gas {
		p.species.Gas = append(p.species.Gas, sd.Name)
		p.gasW[i] = sd.MolarMass
	}
	for _, sd := range m.Surface {
		p.species.Surface = append(p.species.Surface, sd.Name)
	}
	for i, sd := range m.Bulk {
		p.species.Bulk = append(p.species.Bulk, sd.Name)
		if sd.Name == m.Deposit {
			p.species.Deposit = i
			p.depositW = sd.MolarMass
		}
	}
	var surfDefs, gasDefs []ReactionDef
	for _, rd := range m.Reactions {
		r := reaction{
			id:   rd.ID,
			rate: chemistry.Arrhenius{A: rd.Rate.A, B: rd.Rate.B, Ea: rd.Rate.Ea},
		}
		orders := rd.Orders
		if orders == nil {
			orders = rd.Reactants
		}
		for _, name := range sortedKeys(orders) {
			ref := refs[name]
			if ref.phase == phaseBulk || orders[name] == 0 {
				continue
			}
			r.orders = append(r.orders, orderTerm{ref.phase, ref.index, orders[name]})
		}
		if rd.Phase == "gas" {
			p.gasRxn = append(p.gasRxn, r)
			gasDefs = append(gasDefs, rd)
			continue
		}
		if rd.Calibratable {
			p.calib = append(p.calib, len(p.surfRxn))
		}
		p.surfRxn = append(p.surfRxn, r)
		surfDefs = append(surfDefs, rd)
	}
	fill := func(ph phase, defs []ReactionDef) func(dok *sparse.DOK) {
		return func(dok *sparse.DOK) {
			for j, rd := range defs {
				net := make(map[int]float64)
				for name, nu := range rd.Products {
					if ref := refs[name]; ref.phase == ph {
						net[ref.index] += nu
					}
				}
				for name, nu := range rd.Reactants {
					if ref := refs[name]; ref.phase == ph {
						net[ref.index] -= nu
					}
				}
				for k, nu := range net {
					if nu != 0 {
						dok.Set(k, j, nu)
					}
				}
			}
		}
	}
	p.nuGas = newStoichiometry(len(m.Gas), len(surfDefs), fill(phaseGas, surfDefs))
	p.nuSurf = newStoichiometry(len(m.Surface), len(surfDefs), fill(phaseSurface, surfDefs))
	p.nuBulk = newStoichiometry(len(m.Bulk), len(surfDefs), fill(phaseBulk, surfDefs))
	p.nuHomogeneous = newStoichiometry(len(m.Gas), len(gasDefs), fill(phaseGas, gasDefs))
	return
}

func Load(path string) (p *Provider, err error) {
	var m *Mechanism
	if m, err = LoadMechanism(path); err != nil {
		return
	}
	return New(m)
}

func (p *Provider) Mechanism() *Mechanism { return p.mech }

func (p *Provider) Species() chemistry.Species {
	sp := p.species
	sp.Gas = append([]string(nil), sp.Gas...)
	sp.Surface = append([]string(nil), sp.Surface...)
	sp.Bulk = append([]string(nil), sp.Bulk...)
	return sp
}

func (p *Provider) GasMolarMasses() []float64 { return append([]float64(nil), p.gasW...) }

func (p *Provider) DepositMolarMass() float64 { return p.depositW }

func (p *Provider) check(op string, s chemistry.State) error {
	if err := chemistry.CheckState(s, len(p.gasW), len(p.species.Surface)); err != nil {
		return chemistry.NewQueryError(op, err)
	}
	return nil
}

func (p *Provider) density(s chemistry.State) float64 {
	var inv float64
	for k, y := range s.Y {
		inv += math.Max(y, 0) / p.gasW[k]
	}
	return s.P / (inv * chemistry.GasConstant * s.T)
}

func (p *Provider) Density(s chemistry.State) (rho float64, err error) {
	if err = p.check("density", s); err != nil {
		return
	}
	rho = p.density(s)
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		err = chemistry.NewQueryError("density", fmt.Errorf("composition has no mass"))
	}
	return
}

func (p *Provider) SpecificHeat(s chemistry.State) (cp float64, err error) {
	if err = p.check("cp", s); err != nil {
		return
	}
	for k, sd := range p.mech.Gas {
		cp += math.Max(s.Y[k], 0) * sd.Thermo.Cp(s.T) / sd.MolarMass
	}
	if !(cp > 0) {
		err = chemistry.NewQueryError("cp", fmt.Errorf("non-positive heat capacity %v at T = %v", cp, s.T))
	}
	return
}

func (p *Provider) concentrations(s chemistry.State) (conc []float64) {
	rho := p.density(s)
	conc = make([]float64, len(s.Y))
	for k, y := range s.Y {
		conc[k] = rho * math.Max(y, 0) / p.gasW[k]
	}
	return
}

func rateOfProgress(r reaction, T float64, conc, theta []float64) (q float64) {
	q = r.rate.Rate(T)
	for _, o := range r.orders {
		switch o.phase {
		case phaseGas:
			q *= utils.Power(conc[o.index], o.exp)
		case phaseSurface:
			q *= utils.Power(math.Max(theta[o.index], 0), o.exp)
		}
	}
	return
}

func (p *Provider) progress(T float64, conc, theta []float64) (pr chemistry.Progress) {
	pr.Surface = make([]float64, len(p.surfRxn))
	pr.Gas = make([]float64, len(p.gasRxn))
	for j, r := range p.surfRxn {
		pr.Surface[j] = rateOfProgress(r, T, conc, theta)
	}
	for j, r := range p.gasRxn {
		pr.Gas[j] = rateOfProgress(r, T, conc, nil)
	}
	return
}

func (p *Provider) RatesOfProgress(s chemistry.State) (pr chemistry.Progress, err error) {
	if err = p.check("progress", s); err != nil {
		return
	}
	pr = p.progress(s.T, p.concentrations(s), s.Coverages)
	if utils.HasNonFinite(pr.Surface) || utils.HasNonFinite(pr.Gas) {
		err = chemistry.NewQueryError("progress", fmt.Errorf("non-finite rate of progress at T = %v", s.T))
	}
	return
}

func (p *Provider) NetProductionRates(s chemistry.State) (r chemistry.Rates, err error) {
	var pr chemistry.Progress
	if err = p.check("rates", s); err != nil {
		return
	}
	pr = p.progress(s.T, p.concentrations(s), s.Coverages)
	r = chemistry.Rates{
		Gas:       p.nuGas.mul(pr.Surface),
		GasVolume: p.nuHomogeneous.mul(pr.Gas),
		Surface:   p.nuSurf.mul(pr.Surface),
		Bulk:      p.nuBulk.mul(pr.Surface),
	}
	if utils.HasNonFinite(r.Gas) || utils.HasNonFinite(r.Bulk) || utils.HasNonFinite(r.GasVolume) {
		err = chemistry.NewQueryError("rates", fmt.Errorf("non-finite production rate at T = %v", s.T))
	}
	return
}

func (p *Provider) ReactionEnthalpies(s chemistry.State) (dH chemistry.Enthalpies, err error) {
	if err = p.check("enthalpies", s); err != nil {
		return
	}
	h := func(defs []SpeciesDef) (hk []float64) {
		hk = make([]float64, len(defs))
		for k, sd := range defs {
			hk[k] = sd.Thermo.H(s.T)
		}
		return
	}
	hGas := h(p.mech.Gas)
	dH.Surface = p.nuGas.mulT(hGas)
	floats.Add(dH.Surface, p.nuSurf.mulT(h(p.mech.Surface)))
	floats.Add(dH.Surface, p.nuBulk.mulT(h(p.mech.Bulk)))
	dH.Gas = p.nuHomogeneous.mulT(hGas)
	return
}

func (p *Provider) CalibratableReactions() (ids []string) {
	for _, j := range p.calib {
		ids = append(ids, p.surfRxn[j].id)
	}
	return
}

func (p *Provider) KineticParameters() (kp chemistry.KineticParameters) {
	kp = make(chemistry.KineticParameters, len(p.calib))
	for i, j := range p.calib {
		kp[i] = p.surfRxn[j].rate
	}
	return
}

// WithKineticParameters returns a new Provider with the calibratable reactions
// replaced by kp; the receiver is unchanged
func (p *Provider) WithKineticParameters(kp chemistry.KineticParameters) (chemistry.Provider, error) {
	if kp == nil {
		return p, nil
	}
	if len(kp) != len(p.calib) {
		return nil, chemistry.NewQueryError("kinetics",
			fmt.Errorf("have %d parameter sets for %d calibratable reactions", len(kp), len(p.calib)))
	}
	if err := kp.Validate(); err != nil {
		return nil, chemistry.NewQueryError("kinetics", err)
	}
	np := *p
	np.surfRxn = append([]reaction(nil), p.surfRxn...)
	for i, j := range p.calib {
		np.surfRxn[j].rate = kp[i]
	}
	return &np, nil
}

func sortedKeys(m map[string]float64) (keys []string) {
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
