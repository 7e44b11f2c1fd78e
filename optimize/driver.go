package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"

	"github.com/cwbudde/algo-peakfit/internal/numutil"
)

// Errors reported by the optimizer driver.
var (
	// ErrBadProblem indicates inconsistent problem dimensions or a missing
	// residual function.
	ErrBadProblem = errors.New("optimize: bad problem")

	// ErrNonConvergence marks a run that hit the iteration cap before the
	// convergence tolerance. The returned solution is still usable.
	ErrNonConvergence = errors.New("optimize: did not converge")

	// ErrSingularJacobian marks a solution whose covariance could not be
	// computed. Standard errors become NaN; the fit itself stands.
	ErrSingularJacobian = errors.New("optimize: singular jacobian")
)

// Status describes how a minimization run ended.
type Status int

const (
	// StatusConverged: the residual norm stalled below tolerance.
	StatusConverged Status = iota

	// StatusMaxIterations: the iteration cap was reached first.
	StatusMaxIterations

	// StatusCanceled: the context was canceled between iteration chunks.
	StatusCanceled

	// StatusNoFreeParams: nothing to optimize; inputs returned verbatim.
	StatusNoFreeParams
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max-iterations"
	case StatusCanceled:
		return "canceled"
	case StatusNoFreeParams:
		return "no-free-parameters"
	default:
		return "unknown"
	}
}

// Problem is a bounded nonlinear least-squares problem over external
// (bounded) parameters.
type Problem struct {
	// Residual writes the weighted residual vector for the given external
	// parameter values into dst (length NumResiduals).
	Residual func(params, dst []float64) error

	// NumResiduals is the number of data points.
	NumResiduals int

	// Init, Lower and Upper describe the free parameters. All three must
	// share one length; an empty Init means nothing is free.
	Init  []float64
	Lower []float64
	Upper []float64
}

// Solution is the immutable outcome of one minimization run.
type Solution struct {
	Params     []float64   // external free-parameter values at the end
	Residuals  []float64   // residual vector at Params
	Covariance [][]float64 // P x P, NaN-filled when CovOK is false
	CovOK      bool
	CovErr     error // ErrSingularJacobian when CovOK is false
	NumEval    int // residual function evaluations
	Iterations int // LM iterations granted across all chunks
	Status     Status
}

// Converged reports whether the run met the convergence criterion.
func (s *Solution) Converged() bool { return s.Status == StatusConverged }

// Option configures a minimization run.
type Option func(*config)

type config struct {
	maxIterations int
	chunk         int
	tol           float64
}

func defaultConfig() config {
	return config{
		maxIterations: 200,
		chunk:         25,
		tol:           1e-8,
	}
}

// WithMaxIterations caps the total LM iterations.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithTolerance sets the relative residual-norm tolerance that declares
// convergence between iteration chunks.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.tol = tol
		}
	}
}

// WithChunkSize sets how many LM iterations run between cancellation and
// convergence checks.
func WithChunkSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunk = n
		}
	}
}

// Solve runs the bounded minimization. Setup problems fail immediately;
// numeric trouble degrades to a flagged solution. When the iteration cap is
// hit, the solution is returned together with ErrNonConvergence.
func Solve(ctx context.Context, p Problem, opts ...Option) (*Solution, error) {
	if p.Residual == nil {
		return nil, fmt.Errorf("%w: nil residual function", ErrBadProblem)
	}
	if p.NumResiduals <= 0 {
		return nil, fmt.Errorf("%w: %d residuals", ErrBadProblem, p.NumResiduals)
	}
	if len(p.Init) != len(p.Lower) || len(p.Init) != len(p.Upper) {
		return nil, fmt.Errorf("%w: init/bounds length mismatch", ErrBadProblem)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	nParams := len(p.Init)
	sol := &Solution{
		Params:    append([]float64(nil), p.Init...),
		Residuals: make([]float64, p.NumResiduals),
	}

	// Nothing free: evaluate once and return the inputs verbatim.
	if nParams == 0 {
		if err := p.Residual(sol.Params, sol.Residuals); err != nil {
			return nil, err
		}
		sol.NumEval = 1
		sol.Status = StatusNoFreeParams
		return sol, nil
	}

	transform := newBoundTransform(p.Lower, p.Upper)
	internal := transform.toInternal(p.Init)

	var evalErr error
	external := make([]float64, nParams)
	residFunc := func(dst, x []float64) {
		transform.toExternal(external, x)
		if err := p.Residual(external, dst); err != nil && evalErr == nil {
			evalErr = err
		}
		sol.NumEval++
	}

	norm := func(x []float64) (float64, error) {
		dst := make([]float64, p.NumResiduals)
		residFunc(dst, x)
		if evalErr != nil {
			return 0, evalErr
		}
		sum := 0.0
		for _, r := range dst {
			sum += r * r
		}
		return math.Sqrt(sum), nil
	}

	prevNorm, err := norm(internal)
	if err != nil {
		return nil, err
	}

	sol.Status = StatusMaxIterations
	for sol.Iterations < cfg.maxIterations {
		if ctx.Err() != nil {
			sol.Status = StatusCanceled
			break
		}

		chunk := cfg.chunk
		if remaining := cfg.maxIterations - sol.Iterations; chunk > remaining {
			chunk = remaining
		}

		jac := lm.NumJac{Func: residFunc}
		prob := lm.LMProblem{
			Dim:        nParams,
			Size:       p.NumResiduals,
			Func:       residFunc,
			Jac:        jac.Jac,
			InitParams: append([]float64(nil), internal...),
			Tau:        1e-6,
			Eps1:       1e-8,
			Eps2:       1e-8,
		}

		res, lmErr := lm.LM(prob, &lm.Settings{Iterations: chunk, ObjectiveTol: 1e-16})
		sol.Iterations += chunk
		if lmErr == nil && len(res.X) == nParams {
			copy(internal, res.X)
		}
		if evalErr != nil {
			return nil, evalErr
		}

		curNorm, err := norm(internal)
		if err != nil {
			return nil, err
		}
		if numutil.NearlyEqual(prevNorm, curNorm, cfg.tol) {
			sol.Status = StatusConverged
			break
		}
		prevNorm = curNorm
	}

	transform.toExternal(sol.Params, internal)
	if err := p.Residual(sol.Params, sol.Residuals); err != nil {
		return nil, err
	}
	sol.NumEval++

	sol.Covariance, sol.CovOK = covariance(p, sol.Params)
	if !sol.CovOK {
		sol.CovErr = ErrSingularJacobian
	}

	if sol.Status == StatusMaxIterations {
		return sol, ErrNonConvergence
	}
	return sol, nil
}
