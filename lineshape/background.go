package lineshape

// PolynomialDegree is the highest supported background order.
const PolynomialDegree = 3

// Polynomial evaluates the background c0 + c1*x + c2*x^2 + c3*x^3.
// Coefficients beyond len(coeffs) are treated as zero.
func Polynomial(x []float64, coeffs []float64) []float64 {
	out := make([]float64, len(x))
	PolynomialTo(out, x, coeffs)
	return out
}

// PolynomialTo evaluates the polynomial background into a pre-allocated
// buffer using Horner's scheme.
func PolynomialTo(dst, x []float64, coeffs []float64) {
	if len(coeffs) > PolynomialDegree+1 {
		coeffs = coeffs[:PolynomialDegree+1]
	}

	for i, xi := range x {
		acc := 0.0
		for k := len(coeffs) - 1; k >= 0; k-- {
			acc = acc*xi + coeffs[k]
		}
		dst[i] = acc
	}
}
