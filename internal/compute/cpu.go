package compute

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

const (
	// phase 1 is O(N) per body, so small chunks already pay for a goroutine
	accelChunk   = 16
	advanceChunk = 4096
)

// CPUBackend spreads each phase over a fixed number of goroutines. Every
// body is written by exactly one goroutine.
type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func NewCPUBackendWorkers(workers int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) Accelerate(pos, acc []mgl32.Vec3, p nbody.Params) error {
	if len(acc) < len(pos) {
		return fmt.Errorf("acceleration array holds %d of %d bodies", len(acc), len(pos))
	}
	nbody.ParallelFor(len(pos), c.workers, accelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			acc[i] = nbody.Accelerate(i, pos, p)
		}
	})
	return nil
}

func (c *CPUBackend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	n := len(pos)
	if len(vel) < n || len(acc) < n {
		return fmt.Errorf("velocity/acceleration arrays shorter than %d bodies", n)
	}
	nbody.ParallelFor(n, c.workers, advanceChunk, func(start, end int) {
		for i := start; i < end; i++ {
			nbody.Advance(i, pos, vel, acc, dt)
		}
	})
	return nil
}
