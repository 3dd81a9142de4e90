//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lkernels -lstdc++
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern const char* nbody_error_string(int code);

typedef struct nbody_ctx nbody_ctx;

extern int nbody_reserve(nbody_ctx** out, int n);
extern void nbody_free(nbody_ctx* ctx);
extern int nbody_accelerate(nbody_ctx* ctx, const float* pos, float* acc, float g, float eps, float star_mass, float planet_mass, int stride);
extern int nbody_advance(nbody_ctx* ctx, float* pos, float* vel, const float* acc, float dt);
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/orbitsim/internal/nbody"
)

// CUDABackend runs both phases as CUDA kernels, one thread per body. Each
// instance owns its device arrays, reserved once per body count and reused
// across steps.
type CUDABackend struct {
	available  bool
	deviceName string
	ctx        *C.nbody_ctx
	reserved   int
}

func NewCUDABackend() *CUDABackend {
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
	}
	return &CUDABackend{
		available:  count > 0,
		deviceName: name,
	}
}

func (c *CUDABackend) Name() string {
	if c.available {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDABackend) Available() bool { return c.available }

func (c *CUDABackend) Cleanup() {
	C.nbody_free(c.ctx)
	c.ctx = nil
	c.reserved = 0
}

func (c *CUDABackend) reserve(n int) error {
	if c.ctx != nil && n == c.reserved {
		return nil
	}
	c.Cleanup()
	if code := C.nbody_reserve(&c.ctx, C.int(n)); code != 0 {
		return fmt.Errorf("%w: device arrays for %d bodies: %s", nbody.ErrAllocation, n, C.GoString(C.nbody_error_string(code)))
	}
	c.reserved = n
	return nil
}

func (c *CUDABackend) Accelerate(pos, acc []mgl32.Vec3, p nbody.Params) error {
	if !c.available {
		return NewCPUBackend().Accelerate(pos, acc, p)
	}
	n := len(pos)
	if err := c.reserve(n); err != nil {
		return err
	}

	code := C.nbody_accelerate(
		c.ctx,
		(*C.float)(unsafe.Pointer(&pos[0][0])),
		(*C.float)(unsafe.Pointer(&acc[0][0])),
		C.float(p.G),
		C.float(p.Epsilon),
		C.float(p.StarMass),
		C.float(p.PlanetMass),
		C.int(p.Stride),
	)
	if code != 0 {
		return fmt.Errorf("kernel accelerate: %s", C.GoString(C.nbody_error_string(code)))
	}
	return nil
}

func (c *CUDABackend) Advance(pos, vel, acc []mgl32.Vec3, dt float32) error {
	if !c.available {
		return NewCPUBackend().Advance(pos, vel, acc, dt)
	}
	n := len(pos)
	if err := c.reserve(n); err != nil {
		return err
	}

	code := C.nbody_advance(
		c.ctx,
		(*C.float)(unsafe.Pointer(&pos[0][0])),
		(*C.float)(unsafe.Pointer(&vel[0][0])),
		(*C.float)(unsafe.Pointer(&acc[0][0])),
		C.float(dt),
	)
	if code != 0 {
		return fmt.Errorf("kernel advance: %s", C.GoString(C.nbody_error_string(code)))
	}
	return nil
}
