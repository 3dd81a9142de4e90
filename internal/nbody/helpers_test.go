package nbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type serialBackend struct {
	accelErr   error
	advanceErr error
	cleanups   int
}

func (b *serialBackend) Name() string { return "serial" }

func (b *serialBackend) Accelerate(pos, acc []mgl32.Vec3, p Params) error {
	if b.accelErr != nil {
		return b.accelErr
	}
	for i := range pos {
		acc[i] = Accelerate(i, pos, p)
	}
	return nil
}

func (b *serialBackend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	if b.advanceErr != nil {
		return b.advanceErr
	}
	for i := range pos {
		Advance(i, pos, vel, acc, dt)
	}
	return nil
}

func (b *serialBackend) Cleanup() { b.cleanups++ }

func unitParams() Params {
	p := DefaultParams()
	p.G = 1
	p.Epsilon = 1e-9
	p.StarMass = 10
	p.PlanetMass = 1
	p.Scale = 1
	return p
}

func mustState(n int) *State {
	st, err := NewState(n)
	if err != nil {
		panic(err)
	}
	return st
}

func approxVec(a, b mgl32.Vec3, tol float64) bool {
	for k := 0; k < 3; k++ {
		if math.Abs(float64(a[k]-b[k])) > tol {
			return false
		}
	}
	return true
}

type parallelBackend struct{}

func (parallelBackend) Name() string { return "parallel" }

func (parallelBackend) Accelerate(pos, acc []mgl32.Vec3, p Params) error {
	ParallelFor(len(pos), 0, 16, func(start, end int) {
		for i := start; i < end; i++ {
			acc[i] = Accelerate(i, pos, p)
		}
	})
	return nil
}

func (parallelBackend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	ParallelFor(len(pos), 0, 256, func(start, end int) {
		for i := start; i < end; i++ {
			Advance(i, pos, vel, acc, dt)
		}
	})
	return nil
}

func (parallelBackend) Cleanup() {}
