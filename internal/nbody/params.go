package nbody

import (
	"fmt"
	"math"
)

const (
	DefaultG          = 6.67384e-11
	DefaultEpsilon    = 1e-5
	DefaultStarMass   = 5e10
	DefaultPlanetMass = 3e8
	DefaultScale      = 100
	DefaultStride     = 1
	DefaultTimeTag    = 1

	// MaxBodies bounds a single run; three arrays of this many vectors is
	// already 3 GiB.
	MaxBodies = 1 << 26
)

// Params are the constants of one simulation run.
//
// Stride selects which other planets contribute to a body's acceleration:
// only indices 0, Stride, 2*Stride, ... are sampled. Stride 1 is exact
// all-pairs gravity. Larger strides are not rescaled, so planet-planet
// attraction drops roughly Stride-fold and trajectories change.
type Params struct {
	G          float32
	Epsilon    float32
	StarMass   float32
	PlanetMass float32
	Scale      float32
	Stride     int
	TimeTag    uint32
}

func DefaultParams() Params {
	return Params{
		G:          DefaultG,
		Epsilon:    DefaultEpsilon,
		StarMass:   DefaultStarMass,
		PlanetMass: DefaultPlanetMass,
		Scale:      DefaultScale,
		Stride:     DefaultStride,
		TimeTag:    DefaultTimeTag,
	}
}

func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"G", p.G},
		{"epsilon", p.Epsilon},
		{"star mass", p.StarMass},
		{"planet mass", p.PlanetMass},
		{"scale", p.Scale},
	} {
		if math.IsNaN(float64(f.v)) || math.IsInf(float64(f.v), 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, f.name)
		}
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidParams, p.Epsilon)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %g", ErrInvalidParams, p.Scale)
	}
	if p.G < 0 || p.StarMass < 0 || p.PlanetMass < 0 {
		return fmt.Errorf("%w: G and masses must not be negative", ErrInvalidParams)
	}
	if p.Stride < 1 {
		return fmt.Errorf("%w: stride must be at least 1, got %d", ErrInvalidParams, p.Stride)
	}
	return nil
}

// PairEvaluations reports how many planet-planet terms one phase-1 pass
// accumulates across n bodies under the configured stride.
func (p Params) PairEvaluations(n int) int {
	if n <= 1 || p.Stride < 1 {
		return 0
	}
	sampled := (n + p.Stride - 1) / p.Stride
	// each sampled body is skipped once, by itself
	return sampled * (n - 1)
}
