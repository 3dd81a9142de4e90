//go:build !cuda

package compute

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

type CUDABackend struct {
	cpu *CPUBackend
}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{cpu: NewCPUBackend()}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) Accelerate(pos, acc []mgl32.Vec3, p nbody.Params) error {
	return c.cpu.Accelerate(pos, acc, p)
}

func (c *CUDABackend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	return c.cpu.Advance(pos, vel, acc, dt)
}
