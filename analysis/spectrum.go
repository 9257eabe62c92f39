package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrTooShort is returned when a signal is too short to analyse.
var ErrTooShort = errors.New("analysis: signal too short")

const minFFTSize = 256

// Peak returns the largest absolute sample value.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// LinToDB converts a linear amplitude to dBFS, flooring at -200 dB.
func LinToDB(x float64) float64 {
	if x <= 1e-10 {
		return -200
	}
	return 20 * math.Log10(x)
}

// Spectrum returns the Hann-windowed magnitude spectrum of the first
// power-of-two-sized block of x, and the bin width in Hz.
func Spectrum(x []float64, sampleRate int) ([]float64, float64, error) {
	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("analysis: invalid sample rate %d", sampleRate)
	}
	n := largestPow2(len(x))
	if n < minFFTSize {
		return nil, 0, fmt.Errorf("%w: %d samples", ErrTooShort, len(x))
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, 0, fmt.Errorf("fft plan: %w", err)
	}

	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = x[i] * w
	}
	bins := make([]complex128, n/2+1)
	if err := plan.Forward(bins, buf); err != nil {
		return nil, 0, fmt.Errorf("fft: %w", err)
	}

	mags := make([]float64, len(bins))
	for k, c := range bins {
		mags[k] = cmplx.Abs(c)
	}
	return mags, float64(sampleRate) / float64(n), nil
}

// DominantFrequency returns the frequency of the strongest spectral peak,
// refined by parabolic interpolation across neighbouring bins.
func DominantFrequency(x []float64, sampleRate int) (float64, error) {
	mags, binHz, err := Spectrum(x, sampleRate)
	if err != nil {
		return 0, err
	}
	best := 1
	for k := 2; k < len(mags)-1; k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	if mags[best] == 0 {
		return 0, nil
	}
	a, b, c := mags[best-1], mags[best], mags[best+1]
	offset := 0.0
	if d := a - 2*b + c; d != 0 {
		offset = 0.5 * (a - c) / d
	}
	return (float64(best) + offset) * binHz, nil
}

func largestPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	if p > n {
		return 0
	}
	return p
}
