package lineshape

import (
	"errors"
	"math"
)

// Errors returned by line shape evaluation.
var (
	ErrEmptyInput     = errors.New("lineshape: empty input")
	ErrLengthMismatch = errors.New("lineshape: buffer length mismatch")
)

// tiny guards divisions by width parameters that reach zero during
// optimization trial steps.
const tiny = 1.0e-15

const sqrt2Pi = 2.5066282746310002

// Gaussian evaluates a normalized Gaussian profile at each x.
// The area under the curve equals amplitude.
func Gaussian(x []float64, amplitude, center, sigma float64) []float64 {
	out := make([]float64, len(x))
	GaussianTo(out, x, amplitude, center, sigma)
	return out
}

// GaussianTo evaluates a Gaussian profile into a pre-allocated buffer.
func GaussianTo(dst, x []float64, amplitude, center, sigma float64) {
	s := math.Max(tiny, sigma)
	norm := amplitude / (s * sqrt2Pi)
	for i, xi := range x {
		arg := (xi - center) / s
		dst[i] = norm * math.Exp(-0.5*arg*arg)
	}
}

// Lorentzian evaluates a normalized Lorentzian profile at each x.
// The area under the curve equals amplitude.
func Lorentzian(x []float64, amplitude, center, gamma float64) []float64 {
	out := make([]float64, len(x))
	g := math.Max(tiny, gamma)
	norm := amplitude / math.Pi * g
	for i, xi := range x {
		d := xi - center
		out[i] = norm / (d*d + g*g)
	}
	return out
}

// Doniach evaluates the asymmetric Doniach-Sunjic profile at each x.
// gamma is the asymmetry parameter; gamma = 0 recovers a Lorentzian-like
// symmetric shape.
func Doniach(x []float64, amplitude, center, sigma, gamma float64) []float64 {
	out := make([]float64, len(x))
	DoniachTo(out, x, amplitude, center, sigma, gamma)
	return out
}

// DoniachTo evaluates the Doniach-Sunjic profile into a pre-allocated buffer.
func DoniachTo(dst, x []float64, amplitude, center, sigma, gamma float64) {
	s := math.Max(tiny, sigma)
	gm1 := 1 - gamma
	scale := amplitude / math.Max(tiny, math.Pow(s, gm1))
	phase := math.Pi * gamma / 2

	for i, xi := range x {
		arg := (xi - center) / s
		dst[i] = scale * math.Cos(phase+gm1*math.Atan(arg)) /
			math.Pow(1+arg*arg, gm1/2)
	}
}

// PseudoVoigt evaluates the linear Gaussian/Lorentzian mix at each x.
// fraction is the Lorentzian weight in [0, 1]; the Gaussian component uses
// a sigma matched so both components share the same FWHM.
func PseudoVoigt(x []float64, amplitude, center, sigma, fraction float64) []float64 {
	out := make([]float64, len(x))

	// Match Gaussian and Lorentzian FWHM: sigma_g = sigma / sqrt(2 ln 2).
	sigmaG := math.Max(tiny, sigma) / math.Sqrt(2*math.Ln2)

	GaussianTo(out, x, (1-fraction)*amplitude, center, sigmaG)
	lor := Lorentzian(x, fraction*amplitude, center, sigma)
	for i := range out {
		out[i] += lor[i]
	}
	return out
}

// FermiDirac evaluates the Fermi-Dirac occupation step at each x.
// kt is the Boltzmann constant times temperature, in the energy unit of x.
func FermiDirac(x []float64, amplitude, center, kt float64) []float64 {
	out := make([]float64, len(x))
	FermiDiracTo(out, x, amplitude, center, kt)
	return out
}

// FermiDiracTo evaluates the Fermi-Dirac step into a pre-allocated buffer.
func FermiDiracTo(dst, x []float64, amplitude, center, kt float64) {
	k := math.Max(tiny, kt)
	for i, xi := range x {
		dst[i] = amplitude / (math.Exp((xi-center)/k) + 1)
	}
}
