package fit

import (
	"github.com/cwbudde/algo-peakfit/gof"
	"github.com/cwbudde/algo-peakfit/model"
	"github.com/cwbudde/algo-peakfit/optimize"
	"github.com/cwbudde/algo-peakfit/param"
)

// ParamResult is one row of the fitted-parameter table.
type ParamResult struct {
	Name    string
	Kind    param.Kind
	Value   float64
	Stderr  float64 // NaN when unavailable
	Percent float64 // |stderr/value| in percent, NaN when undefined
	Init    float64
	Min     float64
	Max     float64
	Expr    string // empty unless derived
}

// ComponentResult is the per-peak diagnostic row: fitted position, width,
// height and mixing information. Quantities a kind does not define are NaN.
type ComponentResult struct {
	Prefix    string
	Kind      model.Kind
	Amplitude float64
	Center    float64
	Sigma     float64
	Gamma     float64
	FWHM      float64
	Height    float64
	Fraction  float64
	Skew      float64
	Q         float64
}

// Result is the immutable outcome of one fit run.
type Result struct {
	Params     []ParamResult
	Components []ComponentResult
	Stats      gof.Statistics
	Status     optimize.Status
	CovOK      bool
	NumEval    int

	// X and Curve are the measured axis and the fitted model on it.
	X     []float64
	Curve []float64

	model    *model.Composite
	snapshot param.Snapshot
}

// Converged reports whether the optimizer reached its convergence criterion.
func (r *Result) Converged() bool {
	return r.Status == optimize.StatusConverged || r.Status == optimize.StatusNoFreeParams
}

// Param returns the table row for one parameter.
func (r *Result) Param(name string) (ParamResult, bool) {
	for _, pr := range r.Params {
		if pr.Name == name {
			return pr, true
		}
	}
	return ParamResult{}, false
}

// EvalAt evaluates the fitted model on an arbitrary axis, typically a finer
// grid than the measured data.
func (r *Result) EvalAt(x []float64) ([]float64, error) {
	return r.model.Eval(r.snapshot, x)
}

// EvalComponent evaluates a single fitted component on an arbitrary axis.
func (r *Result) EvalComponent(prefix string, x []float64) ([]float64, error) {
	return r.model.EvalComponent(prefix, r.snapshot, x)
}

// Snapshot returns a copy of the fitted parameter values, derived
// parameters included.
func (r *Result) Snapshot() param.Snapshot {
	out := make(param.Snapshot, len(r.snapshot))
	for name, v := range r.snapshot {
		out[name] = v
	}
	return out
}
