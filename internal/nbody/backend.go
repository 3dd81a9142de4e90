package nbody

import "github.com/go-gl/mathgl/mgl32"

// Backend runs one integration phase across every body. Each call returns
// only after all bodies are done, which is the barrier between phases.
type Backend interface {
	Name() string
	Accelerate(pos, acc []mgl32.Vec3, p Params) error
	Advance(pos, vel, acc []mgl32.Vec3, dt float32) error
	Cleanup()
}
