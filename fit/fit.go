package fit

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-peakfit/gof"
	"github.com/cwbudde/algo-peakfit/lineshape"
	"github.com/cwbudde/algo-peakfit/model"
	"github.com/cwbudde/algo-peakfit/optimize"
	"github.com/cwbudde/algo-peakfit/param"
)

// Errors reported during fit setup.
var (
	ErrDataLength   = errors.New("fit: x and y must be equal-length and non-empty")
	ErrWeightLength = errors.New("fit: weights must match the data length")
	ErrNoModel      = errors.New("fit: no model")
)

// ErrNonConvergence is re-exported so callers can test fit errors without
// importing the optimizer package.
var ErrNonConvergence = optimize.ErrNonConvergence

// Spec describes one fit: the measured spectrum, the model, and the
// parameters. Params may be nil, in which case the model's default hints
// are used.
type Spec struct {
	X       []float64
	Y       []float64
	Weights []float64 // optional per-point weights
	Model   *model.Composite
	Params  *param.Set
}

// Option configures a fit run.
type Option func(*config)

type config struct {
	optOpts    []optimize.Option
	scaleCovar bool
}

func defaultFitConfig() config {
	return config{scaleCovar: true}
}

// WithMaxIterations caps the optimizer iterations.
func WithMaxIterations(n int) Option {
	return func(c *config) { c.optOpts = append(c.optOpts, optimize.WithMaxIterations(n)) }
}

// WithTolerance sets the optimizer convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(c *config) { c.optOpts = append(c.optOpts, optimize.WithTolerance(tol)) }
}

// WithoutCovarScaling reports standard errors straight from the covariance
// diagonal instead of scaling by the reduced chi-square. Use this when the
// supplied weights are true inverse standard deviations.
func WithoutCovarScaling() Option {
	return func(c *config) { c.scaleCovar = false }
}

// Fit runs one complete fit. Setup problems (bad data lengths, invalid
// bounds, cyclic or dangling constraints) fail before any numeric work.
// A run that hits the iteration cap returns the Result together with
// ErrNonConvergence.
func Fit(ctx context.Context, spec Spec, opts ...Option) (*Result, error) {
	if len(spec.X) == 0 || len(spec.X) != len(spec.Y) {
		return nil, ErrDataLength
	}
	if spec.Weights != nil && len(spec.Weights) != len(spec.X) {
		return nil, ErrWeightLength
	}
	if spec.Model == nil {
		return nil, ErrNoModel
	}

	cfg := defaultFitConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	params := spec.Params
	if params == nil {
		var err error
		params, err = spec.Model.DefaultParams()
		if err != nil {
			return nil, err
		}
	}

	ev, err := param.Resolve(params)
	if err != nil {
		return nil, err
	}

	lower, upper := ev.Bounds()
	problem := optimize.Problem{
		Residual:     residualFunc(spec, ev),
		NumResiduals: len(spec.X),
		Init:         ev.Init(),
		Lower:        lower,
		Upper:        upper,
	}

	sol, solveErr := optimize.Solve(ctx, problem, cfg.optOpts...)
	if sol == nil {
		return nil, solveErr
	}

	stats := gof.Compute(sol.Residuals, ev.NumFree())

	scale := 1.0
	if cfg.scaleCovar && !math.IsNaN(stats.RedChi) {
		scale = stats.RedChi
	}

	freeErrs := gof.StdErrors(sol.Covariance, scale)
	derivedErrs, err := gof.PropagateDerived(ev, sol.Params, sol.Covariance, scale)
	if err != nil {
		return nil, err
	}

	snap, err := ev.Eval(sol.Params)
	if err != nil {
		return nil, err
	}

	curve, err := spec.Model.Eval(snap, spec.X)
	if err != nil {
		return nil, err
	}

	result, err := buildResult(spec, params, ev, sol, stats, snap, curve, freeErrs, derivedErrs)
	if err != nil {
		return nil, err
	}

	// Write fitted values and uncertainties back into the store, the one
	// permitted post-run mutation.
	stderrs := make(param.Snapshot, len(result.Params))
	values := make(param.Snapshot, len(result.Params))
	for _, pr := range result.Params {
		values[pr.Name] = pr.Value
		stderrs[pr.Name] = pr.Stderr
	}
	params.ApplyResult(values, stderrs)

	if solveErr != nil && !errors.Is(solveErr, optimize.ErrNonConvergence) {
		return nil, solveErr
	}
	return result, solveErr
}

// residualFunc builds the weighted residual closure shared by every
// optimizer iteration. Each call derives a fresh snapshot; the parameter
// store is never touched mid-iteration.
func residualFunc(spec Spec, ev *param.Evaluator) func(params, dst []float64) error {
	return func(free, dst []float64) error {
		snap, err := ev.Eval(free)
		if err != nil {
			return err
		}

		predicted, err := spec.Model.Eval(snap, spec.X)
		if err != nil {
			return err
		}

		for i := range dst {
			r := predicted[i] - spec.Y[i]
			if spec.Weights != nil {
				r *= spec.Weights[i]
			}
			dst[i] = r
		}
		return nil
	}
}

func buildResult(spec Spec, params *param.Set, ev *param.Evaluator, sol *optimize.Solution,
	stats gof.Statistics, snap param.Snapshot, curve []float64,
	freeErrs []float64, derivedErrs param.Snapshot) (*Result, error) {

	freeIndex := make(map[string]int, ev.NumFree())
	for i, name := range ev.FreeNames() {
		freeIndex[name] = i
	}

	var table []ParamResult
	for _, name := range params.Names() {
		p, _ := params.Get(name)

		value := snap[name]
		stderr := math.NaN()
		switch p.Kind() {
		case param.Free:
			if i, ok := freeIndex[name]; ok && i < len(freeErrs) {
				stderr = freeErrs[i]
			}
		case param.Derived:
			if se, ok := derivedErrs[name]; ok {
				stderr = se
			}
		}

		pr := ParamResult{
			Name:    name,
			Kind:    p.Kind(),
			Value:   value,
			Stderr:  stderr,
			Init:    p.Init,
			Min:     p.Min,
			Max:     p.Max,
			Percent: math.NaN(),
		}
		if p.Expr != nil {
			pr.Expr = p.Expr.String()
		}
		if value != 0 && !math.IsNaN(stderr) {
			pr.Percent = math.Abs(stderr / value * 100)
		}
		table = append(table, pr)
	}

	components, err := summarize(spec.Model, snap)
	if err != nil {
		return nil, err
	}

	return &Result{
		Params:     table,
		Components: components,
		Stats:      stats,
		Status:     sol.Status,
		CovOK:      sol.CovOK,
		NumEval:    sol.NumEval,
		X:          append([]float64(nil), spec.X...),
		Curve:      curve,
		model:      spec.Model,
		snapshot:   snap,
	}, nil
}

// summarize extracts the per-component diagnostic row shown in reports.
func summarize(m *model.Composite, snap param.Snapshot) ([]ComponentResult, error) {
	var out []ComponentResult
	for _, c := range m.Components() {
		if c.Kind == model.Background {
			continue
		}

		get := func(role string) float64 {
			if v, ok := snap[c.Key(role).Name()]; ok {
				return v
			}
			return math.NaN()
		}

		cr := ComponentResult{
			Prefix:    c.Prefix,
			Kind:      c.Kind,
			Amplitude: get("amplitude"),
			Center:    get("center"),
			Sigma:     get("sigma"),
			Gamma:     math.NaN(),
			FWHM:      math.NaN(),
			Height:    math.NaN(),
			Fraction:  math.NaN(),
			Skew:      math.NaN(),
			Q:         math.NaN(),
		}

		switch c.Kind {
		case model.Singlet:
			cr.Gamma = get("gamma")
			cr.FWHM = get("fwhm")
			cr.Height = get("height")
			cr.Fraction = lineshape.MixingFraction(get("lorentzian_fwhm"), get("gaussian_fwhm"))
			cr.Skew = cr.Gamma
		case model.Doublet:
			cr.Gamma = get("gamma")
			cr.FWHM = get("fwhm_p1")
			cr.Height = get("height_p1")
			cr.Fraction = lineshape.MixingFraction(get("lorentzian_fwhm_p1"), get("gaussian_fwhm"))
			cr.Skew = cr.Gamma
		case model.PseudoVoigt:
			cr.FWHM = get("fwhm")
			cr.Height = get("height")
			cr.Fraction = get("fraction")
		case model.FermiEdge:
			cr.Sigma = get("sigma")
		}

		out = append(out, cr)
	}
	return out, nil
}

// String implements a compact one-line summary for logging.
func (r *Result) String() string {
	return fmt.Sprintf("fit: %s, chi2=%.6g, redchi=%.6g, nfev=%d",
		r.Status, r.Stats.ChiSquare, r.Stats.RedChi, r.NumEval)
}
