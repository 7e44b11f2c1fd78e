package lineshape

import "math"

// Diagnostic quantities derived from fitted shape parameters. These are
// reporting-only: they never feed back into the optimization.

// GaussianFWHM returns the full width at half maximum of the Gaussian
// kernel component: 2 * sigma * sqrt(2 ln 2).
func GaussianFWHM(gaussianSigma float64) float64 {
	return 2 * gaussianSigma * 1.1774
}

// DoniachFWHM returns the approximate full width at half maximum of the
// Lorentzian/Doniach component, including the asymmetry broadening.
func DoniachFWHM(sigma, gamma float64) float64 {
	return sigma * (2 + gamma*2.5135 + math.Pow(gamma*3.6398, 4))
}

// VoigtFWHM combines a Lorentzian and a Gaussian width into the width of
// their convolution, using the Olivero-Longbothum approximation.
func VoigtFWHM(lorentzianFWHM, gaussianFWHM float64) float64 {
	return 0.5346*lorentzianFWHM +
		math.Sqrt(0.2166*lorentzianFWHM*lorentzianFWHM+gaussianFWHM*gaussianFWHM)
}

// MixingFraction returns the Lorentzian share of the total width, a
// shape-mixing indicator in [0, 1].
func MixingFraction(lorentzianFWHM, gaussianFWHM float64) float64 {
	total := lorentzianFWHM + gaussianFWHM
	if total == 0 {
		return 0
	}
	return lorentzianFWHM / total
}

// Area returns the approximate integrated intensity of a peak from its
// width and height.
func Area(fwhm, height float64) float64 {
	return fwhm * height
}
