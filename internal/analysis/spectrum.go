package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/orbitsim/internal/nbody"
	"github.com/san-kum/orbitsim/internal/sim"
)

// RadialSeries returns the distance of body from the star in every frame,
// in readback units. Frames too short to hold body are skipped.
func RadialSeries(frames []sim.Frame, body int) []float64 {
	series := make([]float64, 0, len(frames))
	off := body * nbody.VBOStride
	for _, f := range frames {
		if body < 0 || off+3 > len(f.Data) {
			continue
		}
		x, y, z := float64(f.Data[off]), float64(f.Data[off+1]), float64(f.Data[off+2])
		series = append(series, math.Sqrt(x*x+y*y+z*z))
	}
	return series
}

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// data with its mean removed. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest spectral bin above zero. It returns 0 when the series is too
// short or flat.
func DominantFrequency(data []float64, sampleDt float64) float64 {
	if sampleDt <= 0 {
		return 0
	}
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-12 {
		return 0
	}
	return float64(best) / (float64(len(data)) * sampleDt)
}
