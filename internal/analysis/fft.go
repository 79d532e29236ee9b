package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitude of the first half of the transform of
// data with its mean removed, zero-padded to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	n := nextPow2(len(data))
	if n < 2 {
		return []float64{}
	}
	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantPeriod finds the strongest non-constant frequency of a series
// sampled every sampleDt and returns its period. ok is false when the
// series is too short or flat.
func DominantPeriod(data []float64, sampleDt float64) (period float64, ok bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || !(sampleDt > 0) {
		return 0, false
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0, false
	}

	n := 2 * len(ps)
	return float64(n) * sampleDt / float64(best), true
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
