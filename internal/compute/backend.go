package compute

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/nbody"
)

var (
	_ nbody.Backend = (*CPUBackend)(nil)
	_ nbody.Backend = (*CUDABackend)(nil)
)

// AutoSelectBackend returns CUDA when a device is present, else the CPU pool.
func AutoSelectBackend() nbody.Backend {
	cuda := NewCUDABackend()
	if cuda.Available() {
		return cuda
	}
	return NewCPUBackend()
}

// NewBackend resolves a backend by name: "auto", "cpu" or "cuda".
func NewBackend(name string) (nbody.Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), nil
	case "cpu":
		return NewCPUBackend(), nil
	case "cuda":
		cuda := NewCUDABackend()
		if !cuda.Available() {
			return nil, fmt.Errorf("compute: %s", cuda.Name())
		}
		return cuda, nil
	default:
		return nil, fmt.Errorf("compute: unknown backend %q", name)
	}
}

// Names lists the backend names accepted by NewBackend.
func Names() []string {
	return []string{"auto", "cpu", "cuda"}
}

// Prefer starts the primary backend and falls back when it cannot start.
// Whichever backend is not returned has been cleaned up. err is the
// primary's failure, reported for logging; the returned backend is always
// usable.
func Prefer(primary func() (nbody.Backend, error), fallback nbody.Backend) (nbody.Backend, error) {
	b, err := primary()
	if err != nil {
		return fallback, err
	}
	fallback.Cleanup()
	return b, nil
}
