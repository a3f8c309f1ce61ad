package supers

import (
	"math"

	"github.com/phil-mansfield/sdtrace/lib/particles"
)

// Properties derives droplet properties from a superdroplet's radius [microns]
// and solute mass [g].
type Properties struct {
	Consts
}

// NewProperties returns the Properties for a set of constants.
func NewProperties(c Consts) Properties { return Properties{c} }

// RhoEff returns the effective density [g m^-3] of a droplet, defined so that
// the droplet's mass is 4/3 pi r^3 RhoEff. The solute is assumed to take up
// the volume it would have at its dry density.
func (p Properties) RhoEff(r, msol float64) float64 {
	msol, r = msol/1000, r/1e6
	solfactor := 3 * msol / (4 * math.Pi * r * r * r)
	rhoeff := p.RhoL + solfactor*(1-p.RhoL/p.RhoSol)
	return rhoeff * 1000
}

// Vol returns the volume of a droplet [m^3].
func (p Properties) Vol(r float64) float64 {
	r /= 1e6
	return 4.0 / 3.0 * math.Pi * r * r * r
}

// Mass returns the total mass of a droplet, water plus dry solute [g].
func (p Properties) Mass(r, msol float64) float64 {
	msol, r = msol/1000, r/1e6
	msoleff := msol * (1 - p.RhoL/p.RhoSol)
	m := msoleff + 4.0/3.0*math.Pi*r*r*r*p.RhoL
	return m * 1000
}

// MWater returns the mass of the water in a droplet [g].
func (p Properties) MWater(r, msol float64) float64 {
	msol, r = msol/1000, r/1e6
	vSol := msol / p.RhoSol
	vW := 4.0/3.0*math.Pi*r*r*r - vSol
	return p.RhoL * vW * 1000
}

// Names and units of the attributes added by Derive.
const (
	MassAttr   = "mass"
	MWaterAttr = "m_water"
	RhoEffAttr = "rho_eff"
	VolAttr    = "vol"
)

// Derive adds the mass, water mass, effective density and volume of every
// superdroplet to ds, computed from its radius and msol attributes.
// Attributes which already exist are left alone.
func (p Properties) Derive(ds *Dataset) error {
	r, err := ds.Float64(Radius)
	if err != nil {
		return err
	}
	msol, err := ds.Float64(Msol)
	if err != nil {
		return err
	}

	derived := []struct {
		name, units string
		f           func(r, msol float64) float64
	}{
		{MassAttr, "g", p.Mass},
		{MWaterAttr, "g", p.MWater},
		{RhoEffAttr, "g m^-3", p.RhoEff},
		{VolAttr, "m^3", func(r, _ float64) float64 { return p.Vol(r) }},
	}

	for _, d := range derived {
		if _, ok := ds.Fields[d.name]; ok {
			continue
		}
		x := make([]float64, len(r.Values))
		for i := range x {
			x[i] = d.f(r.Values[i], msol.Values[i])
		}
		if err := ds.Add(particles.NewColumn(d.name, x), d.units); err != nil {
			return err
		}
	}
	return nil
}
