package nbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GeneratePosition places body i in a flattened disk. The z extent grows
// with radial distance, giving a pancake around the star.
func GeneratePosition(i int, p Params) mgl32.Vec3 {
	rng := newMinstd(Seed(i, p.TimeTag))
	rx := rng.uniform(-1, 1)
	ry := rng.uniform(-1, 1)
	rz := rng.uniform(-1, 1)

	return mgl32.Vec3{
		p.Scale * rx,
		p.Scale * ry,
		0.1 * p.Scale * sqrt32(rx*rx+ry*ry) * rz,
	}
}

// GenerateVelocity returns the circular-orbit velocity around the star for a
// body at pos. Every body circles the same way around +Z.
func GenerateVelocity(pos mgl32.Vec3, p Params) mgl32.Vec3 {
	r := pos.Len() + p.Epsilon
	s := sqrt32(p.G * p.StarMass / r)
	d := direction(pos.Mul(1 / r).Cross(zAxis))
	return d.Mul(s)
}

// Initialize seeds every body's position and velocity and clears
// accelerations. Body i depends only on i and p.TimeTag.
func Initialize(st *State, p Params) {
	st.mustLive()
	ParallelFor(st.n, 0, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			st.Pos[i] = GeneratePosition(i, p)
			st.Vel[i] = GenerateVelocity(st.Pos[i], p)
			st.Acc[i] = mgl32.Vec3{}
		}
	})
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
