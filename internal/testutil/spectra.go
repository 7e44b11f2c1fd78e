// Package testutil provides deterministic synthetic spectra and tolerance
// helpers for tests.
package testutil

import (
	"math"
	"math/rand"
)

// EnergyAxis generates n evenly spaced energies from start to stop inclusive.
func EnergyAxis(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// GaussianPeak samples a normalized Gaussian peak of the given height at
// each energy in x.
func GaussianPeak(x []float64, height, center, sigma float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		arg := (xi - center) / sigma
		out[i] = height * math.Exp(-0.5*arg*arg)
	}
	return out
}

// LorentzianPeak samples a Lorentzian peak of the given height at each
// energy in x.
func LorentzianPeak(x []float64, height, center, gamma float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		arg := (xi - center) / gamma
		out[i] = height / (1 + arg*arg)
	}
	return out
}

// AddNoise returns a copy of y with uniform noise of the given amplitude
// added, using a fixed seed for reproducibility.
func AddNoise(y []float64, seed int64, amplitude float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v + (rng.Float64()*2-1)*amplitude
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
