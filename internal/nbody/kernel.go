package nbody

import "github.com/go-gl/mathgl/mgl32"

// Accelerate computes body i's acceleration from the star and from every
// Stride-th other planet. It reads only pos.
func Accelerate(i int, pos []mgl32.Vec3, p Params) mgl32.Vec3 {
	self := pos[i]
	acc := gravity(p.StarMass, mgl32.Vec3{}, self, &p)

	stride := p.Stride
	if stride < 1 {
		stride = 1
	}
	for j := 0; j < len(pos); j += stride {
		if j == i {
			continue
		}
		acc = acc.Add(gravity(p.PlanetMass, pos[j], self, &p))
	}
	return acc
}

// Advance applies one semi-implicit Euler update to body i: velocity first,
// then position from the new velocity.
func Advance(i int, pos, vel, acc []mgl32.Vec3, dt float32) {
	vel[i] = vel[i].Add(acc[i].Mul(dt))
	pos[i] = pos[i].Add(vel[i].Mul(dt))
}
