package lineshape

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-peakfit/internal/numutil"
)

// gaussianKernel builds the convolution kernel used by the convolved
// profiles: a Gaussian centered on the middle of the energy axis, scaled
// by 1/(sqrt(2*pi)*sigma).
func gaussianKernel(x []float64, sigma float64) []float64 {
	s := math.Max(tiny, sigma)
	kernel := Gaussian(x, 1, numutil.Mean(x), s)
	vecmath.ScaleBlockInPlace(kernel, 1/(sqrt2Pi*s))
	return kernel
}

// scaleToUnitMax normalizes y to unit maximum and scales by amplitude.
func scaleToUnitMax(y []float64, amplitude float64) {
	m := numutil.MaxValue(y)
	if m == 0 {
		m = tiny
	}
	vecmath.ScaleBlockInPlace(y, amplitude/m)
}

// Singlet evaluates a Doniach-Sunjic profile convolved with a Gaussian
// kernel of width gaussianSigma. The result is normalized to unit maximum
// and scaled by amplitude, so amplitude is the peak height.
func Singlet(x []float64, amplitude, sigma, gamma, gaussianSigma, center float64) ([]float64, error) {
	body := Doniach(x, 1, center, sigma, gamma)

	conv, err := Convolve(body, gaussianKernel(x, gaussianSigma))
	if err != nil {
		return nil, err
	}

	scaleToUnitMax(conv, amplitude)
	return conv, nil
}

// Doublet evaluates a spin-orbit split pair of Doniach-Sunjic profiles
// convolved with a shared Gaussian kernel. The second peak sits at
// center - soc with peak height amplitude * heightRatio and Lorentzian
// width sigma * fctCosterKronig; both peaks share the asymmetry gamma.
func Doublet(x []float64, amplitude, sigma, gamma, gaussianSigma, center, soc,
	heightRatio, fctCosterKronig float64) ([]float64, error) {

	body := Doniach(x, 1, center, sigma, gamma)
	second := Doniach(x, heightRatio, center-soc, fctCosterKronig*sigma, gamma)
	vecmath.AddBlockInPlace(body, second)

	conv, err := Convolve(body, gaussianKernel(x, gaussianSigma))
	if err != nil {
		return nil, err
	}

	scaleToUnitMax(conv, amplitude)
	return conv, nil
}

// FermiEdge evaluates a Fermi-Dirac distribution convolved with a Gaussian
// kernel of width sigma, normalized to unit maximum and scaled by amplitude.
// kt is the Boltzmann constant times temperature in the energy unit of x.
func FermiEdge(x []float64, amplitude, center, kt, sigma float64) ([]float64, error) {
	body := FermiDirac(x, 1, center, kt)

	conv, err := Convolve(body, gaussianKernel(x, sigma))
	if err != nil {
		return nil, err
	}

	scaleToUnitMax(conv, amplitude)
	return conv, nil
}
