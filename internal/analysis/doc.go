// Package analysis extracts orbital signals from sampled readback frames.
//
//   - [RadialSeries]: one body's distance from the star over time
//   - [PowerSpectrum]: magnitude spectrum of a series via go-dsp
//   - [DominantFrequency]: strongest non-zero frequency of a series
//   - [Trajectory]: one body's path in the orbital plane
//
// # Orbital period
//
// An eccentric orbit makes the radius oscillate once per revolution:
//
//	r := analysis.RadialSeries(frames, 0)
//	f := analysis.DominantFrequency(r, sampleDt)
//	period := 1 / f
package analysis
