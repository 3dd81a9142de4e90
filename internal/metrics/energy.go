package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/nbody"
)

const rowChunk = 64

// Energy returns the total mechanical energy of the planets: kinetic energy,
// the star's potential and the pairwise planet potential. Potentials use the
// same softening as the force kernel.
func Energy(st *nbody.State, p nbody.Params) float64 {
	return Kinetic(st, p) + Potential(st, p)
}

func Kinetic(st *nbody.State, p nbody.Params) float64 {
	m := float64(p.PlanetMass)
	var ke float64
	for _, v := range st.Vel {
		ke += 0.5 * m * len2(v)
	}
	return ke
}

func Potential(st *nbody.State, p nbody.Params) float64 {
	n := st.Len()
	g := float64(p.G)
	m := float64(p.PlanetMass)
	eps := float64(p.Epsilon)
	gmM := g * float64(p.StarMass) * m
	gmm := g * m * m

	// per-row sums keep the total independent of scheduling
	rows := make([]float64, n)
	nbody.ParallelFor(n, 0, rowChunk, func(start, end int) {
		for i := start; i < end; i++ {
			pi := st.Pos[i]
			u := -gmM / math.Sqrt(len2(pi)+eps)
			if gmm != 0 {
				for j := i + 1; j < n; j++ {
					u -= gmm / math.Sqrt(len2(st.Pos[j].Sub(pi))+eps)
				}
			}
			rows[i] = u
		}
	})

	var pe float64
	for _, u := range rows {
		pe += u
	}
	return pe
}

// AngularMomentum returns the z component of the planets' total angular
// momentum about the star.
func AngularMomentum(st *nbody.State, p nbody.Params) float64 {
	m := float64(p.PlanetMass)
	var lz float64
	for i, r := range st.Pos {
		v := st.Vel[i]
		lz += m * (float64(r[0])*float64(v[1]) - float64(r[1])*float64(v[0]))
	}
	return lz
}

func len2(v [3]float32) float64 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return x*x + y*y + z*z
}

// EnergyDrift tracks the largest relative departure from the first
// observed energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(st *nbody.State, p nbody.Params, t float64) {
	energy := Energy(st, p)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// AngularMomentumDrift is EnergyDrift for the z angular momentum.
type AngularMomentumDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift { return &AngularMomentumDrift{} }

func (a *AngularMomentumDrift) Name() string { return "angular_momentum_drift" }

func (a *AngularMomentumDrift) Observe(st *nbody.State, p nbody.Params, t float64) {
	lz := AngularMomentum(st, p)
	if a.samples == 0 {
		a.initial = lz
	}
	a.samples++
	if a.initial != 0 {
		a.maxDrift = math.Max(a.maxDrift, math.Abs(lz-a.initial)/math.Abs(a.initial))
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
