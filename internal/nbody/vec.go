package nbody

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var zAxis = mgl32.Vec3{0, 0, 1}

// direction normalizes v, mapping the zero vector to itself.
func direction(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// gravity is the acceleration a body at dst feels from mass m at src:
// direction(src-dst) * G*m / (|src-dst|^2 + epsilon).
func gravity(m float32, src, dst mgl32.Vec3, p *Params) mgl32.Vec3 {
	d := src.Sub(dst)
	g := p.G * m / (d.Dot(d) + p.Epsilon)
	return direction(d).Mul(g)
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
