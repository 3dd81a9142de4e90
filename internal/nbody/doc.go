// Package nbody implements a brute-force gravitational N-body simulation of
// planets orbiting a fixed central star.
//
// A [Simulation] owns the body state and advances it one step at a time:
//
//   - [State]: position, velocity and acceleration arrays, one slot per body
//   - [Initialize]: hash-seeded disk of planets on circular orbits
//   - [Simulation.Step]: all-pairs acceleration, barrier, semi-implicit Euler
//   - [Simulation.CopyPlanetsToVBO]: renderer-ready (x, y, z, 1) records
//
// The per-body kernels ([Accelerate], [Advance]) are pure functions of the
// arrays they are handed. A [Backend] decides how one phase is spread across
// all bodies; returning from a phase is the barrier.
//
//	sim, err := nbody.New(5000, nbody.DefaultParams(), compute.AutoSelectBackend())
//	if err != nil {
//	    return err
//	}
//	defer sim.End()
//
//	timing, err := sim.Step(0.2)
package nbody
