package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// covariance computes (J^T J)^-1 from a numeric Jacobian of the residual
// at the solution, in external parameter space. The second return value is
// false when the normal matrix is singular; the covariance is then filled
// with NaN so downstream standard errors degrade instead of failing.
func covariance(p Problem, params []float64) ([][]float64, bool) {
	nParams := len(params)
	if nParams == 0 {
		return nil, false
	}

	nanCov := func() [][]float64 {
		cov := make([][]float64, nParams)
		for i := range cov {
			cov[i] = make([]float64, nParams)
			for j := range cov[i] {
				cov[i][j] = math.NaN()
			}
		}
		return cov
	}

	jac, err := numericJacobian(p, params)
	if err != nil {
		return nanCov(), false
	}

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nanCov(), false
	}

	cov := make([][]float64, nParams)
	ok := true
	for i := range cov {
		cov[i] = make([]float64, nParams)
		for j := range cov[i] {
			v := inv.At(i, j)
			cov[i][j] = v
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
			}
		}
	}
	if !ok {
		return nanCov(), false
	}
	return cov, true
}

// numericJacobian evaluates the residual Jacobian by central differences,
// falling back to a one-sided step at an active bound.
func numericJacobian(p Problem, params []float64) (*mat.Dense, error) {
	n := p.NumResiduals
	nParams := len(params)

	jac := mat.NewDense(n, nParams, nil)
	work := append([]float64(nil), params...)
	hi := make([]float64, n)
	lo := make([]float64, n)

	for j := 0; j < nParams; j++ {
		h := jacStep(params[j])

		upStep, downStep := h, h
		if params[j]+h > p.Upper[j] {
			upStep = 0
		}
		if params[j]-h < p.Lower[j] {
			downStep = 0
		}
		if upStep == 0 && downStep == 0 {
			// Bound interval narrower than the step; treat as insensitive.
			for i := 0; i < n; i++ {
				jac.Set(i, j, 0)
			}
			continue
		}

		work[j] = params[j] + upStep
		if err := p.Residual(work, hi); err != nil {
			return nil, err
		}

		work[j] = params[j] - downStep
		if err := p.Residual(work, lo); err != nil {
			return nil, err
		}
		work[j] = params[j]

		span := upStep + downStep
		for i := 0; i < n; i++ {
			jac.Set(i, j, (hi[i]-lo[i])/span)
		}
	}

	return jac, nil
}

// jacStep picks a finite-difference step scaled to the parameter value.
func jacStep(v float64) float64 {
	const rel = 1e-6
	h := rel * math.Abs(v)
	if h == 0 {
		h = rel
	}
	return h
}
