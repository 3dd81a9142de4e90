// Package compute provides the backends that run the nbody phases across
// every body in parallel.
//
// The package selects the best available backend:
//
//   - CUDA: one GPU thread per body, built with the cuda tag
//   - CPU: goroutine pool, one contiguous chunk of bodies per worker
//
// The OpenGL compute-shader backend lives in [glcompute] because it needs
// a current GL context.
//
// # GPU Acceleration
//
//	backend := compute.AutoSelectBackend()
//	sim, err := nbody.New(n, params, backend)
//
// Build with CUDA support:
//
//	./build_cuda.sh
package compute
