package lineshape

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// fftThreshold selects the direct evaluation below this kernel length.
const fftThreshold = 64

// Convolve convolves data with kernel and returns a result aligned to the
// input axis, with length min(len(data), len(kernel)).
//
// The input is extended at both edges by repeating its boundary samples
// before a "valid" convolution, which suppresses the roll-off a plain
// linear convolution would show at the ends of the spectrum. Long inputs
// go through an FFT; short ones are convolved directly.
func Convolve(data, kernel []float64) ([]float64, error) {
	if len(data) == 0 || len(kernel) == 0 {
		return nil, ErrEmptyInput
	}

	minPts := len(data)
	if len(kernel) < minPts {
		minPts = len(kernel)
	}

	// Edge padding: minPts copies of the first and last sample.
	padded := make([]float64, 0, 2*minPts+len(data))
	for i := 0; i < minPts; i++ {
		padded = append(padded, data[0])
	}
	padded = append(padded, data...)
	for i := 0; i < minPts; i++ {
		padded = append(padded, data[len(data)-1])
	}

	full, err := linearConvolve(padded, kernel)
	if err != nil {
		return nil, err
	}

	// Valid region of the full convolution, then its center window.
	valid := full[len(kernel)-1 : len(padded)]
	start := (len(valid) - minPts) / 2
	out := make([]float64, minPts)
	copy(out, valid[start:start+minPts])
	return out, nil
}

// linearConvolve computes the full linear convolution of a and b,
// with length len(a) + len(b) - 1.
func linearConvolve(a, b []float64) ([]float64, error) {
	n := len(a)
	m := len(b)
	if m > n {
		a, b = b, a
		n, m = m, n
	}

	if m < fftThreshold {
		out := make([]float64, n+m-1)
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				out[i+j] += a[i] * b[j]
			}
		}
		return out, nil
	}

	fftSize := nextPowerOf2(n + m - 1)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("lineshape: create FFT plan: %w", err)
	}

	aPad := make([]complex128, fftSize)
	bPad := make([]complex128, fftSize)
	for i, v := range a {
		aPad[i] = complex(v, 0)
	}
	for i, v := range b {
		bPad[i] = complex(v, 0)
	}

	if err := plan.Forward(aPad, aPad); err != nil {
		return nil, fmt.Errorf("lineshape: forward FFT: %w", err)
	}
	if err := plan.Forward(bPad, bPad); err != nil {
		return nil, fmt.Errorf("lineshape: forward FFT: %w", err)
	}

	for i := range aPad {
		aPad[i] *= bPad[i]
	}

	if err := plan.Inverse(aPad, aPad); err != nil {
		return nil, fmt.Errorf("lineshape: inverse FFT: %w", err)
	}

	out := make([]float64, n+m-1)
	for i := range out {
		out[i] = real(aPad[i])
	}
	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
