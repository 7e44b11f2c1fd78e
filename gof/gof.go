// Package gof computes goodness-of-fit statistics and parameter standard
// errors from the final state of an optimizer run.
package gof

import (
	"math"

	"github.com/cwbudde/algo-peakfit/param"
)

// Statistics summarizes the quality of one fit.
type Statistics struct {
	NPoints   int
	NFree     int
	ChiSquare float64
	RedChi    float64 // NaN when NPoints <= NFree
	AIC       float64
	BIC       float64
}

// Compute derives the fit statistics from the weighted residual vector and
// the free-parameter count, in a single pass over the residuals.
func Compute(residuals []float64, nFree int) Statistics {
	n := len(residuals)

	chi := 0.0
	for _, r := range residuals {
		chi += r * r
	}

	stats := Statistics{
		NPoints:   n,
		NFree:     nFree,
		ChiSquare: chi,
		RedChi:    math.NaN(),
		AIC:       math.NaN(),
		BIC:       math.NaN(),
	}

	if n > nFree {
		stats.RedChi = chi / float64(n-nFree)
	}
	if n > 0 && chi > 0 {
		nf := float64(n)
		stats.AIC = nf*math.Log(chi/nf) + 2*float64(nFree)
		stats.BIC = nf*math.Log(chi/nf) + float64(nFree)*math.Log(nf)
	}

	return stats
}

// StdErrors returns per-free-parameter standard errors from the covariance
// diagonal, scaled by the given factor (typically the reduced chi-square
// when no per-point uncertainties were supplied). A missing or NaN
// covariance yields NaN entries rather than an error.
func StdErrors(cov [][]float64, scale float64) []float64 {
	out := make([]float64, len(cov))
	for i := range cov {
		v := math.NaN()
		if i < len(cov[i]) {
			v = cov[i][i] * scale
		}
		if v >= 0 {
			out[i] = math.Sqrt(v)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// PropagateDerived computes standard errors for every derived parameter by
// linear error propagation through its constraint expression: the variance
// is g^T C g with g the vector of partial derivatives with respect to the
// free parameters. Unavailable covariance propagates as NaN.
func PropagateDerived(ev *param.Evaluator, free []float64, cov [][]float64, scale float64) (param.Snapshot, error) {
	out := make(param.Snapshot)

	for _, name := range ev.DerivedNames() {
		if len(cov) == 0 {
			out[name] = math.NaN()
			continue
		}

		grad, err := ev.Partials(name, free)
		if err != nil {
			return nil, err
		}

		variance := 0.0
		for i := range grad {
			for j := range grad {
				variance += grad[i] * cov[i][j] * grad[j]
			}
		}
		variance *= scale

		if variance >= 0 {
			out[name] = math.Sqrt(variance)
		} else {
			out[name] = math.NaN()
		}
	}

	return out, nil
}
