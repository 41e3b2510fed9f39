package analysis

import (
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// Pad removes the mean of data and zero-pads it to the next power of two.
func Pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns the magnitude of the lower half of the spectrum of
// the padded series.
func PowerSpectrum(data []float64) []float64 {
	bins := fft.FFTReal(Pad(data))
	ps := make([]float64, len(bins)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}

	return ps
}

// DominantPeriod returns the period of the strongest non-constant component
// of samples taken every interval, or 0 when the series is flat or too short.
func DominantPeriod(samples []float64, interval time.Duration) time.Duration {
	ps := PowerSpectrum(samples)
	best, peak := 0, 1e-9
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if best == 0 {
		return 0
	}
	n := 2 * len(ps)
	return time.Duration(float64(interval) * float64(n) / float64(best))
}
