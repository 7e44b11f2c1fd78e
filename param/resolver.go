package param

import (
	"errors"
	"fmt"
	"math"

	"github.com/lvlath/go/core"
	"github.com/lvlath/go/dfs"
)

// Evaluator maps a free-parameter vector to a full parameter snapshot.
// It is produced by Resolve and is safe for concurrent use: evaluation
// allocates a fresh snapshot and never mutates the originating Set.
type Evaluator struct {
	free  []string             // free names, vector order
	index map[string]int       // free name -> vector position
	fixed Snapshot             // fixed name -> value
	order []string             // derived names in topological order
	exprs map[string]*Expr     // derived name -> expression
	init  []float64            // initial free vector
	lower []float64            // per-free lower bounds
	upper []float64            // per-free upper bounds
}

// Resolve checks every constraint expression against the set, builds the
// dependency graph between parameters, and returns an Evaluator with the
// derived parameters in a valid evaluation order.
//
// Fails with ErrUnknownParameter if an expression references an absent name
// and ErrCyclicConstraint if the dependency graph contains a cycle.
func Resolve(s *Set) (*Evaluator, error) {
	ev := &Evaluator{
		index: make(map[string]int),
		fixed: make(Snapshot),
		exprs: make(map[string]*Expr),
	}

	g, err := core.NewGraph(core.WithDirected(true))
	if err != nil {
		return nil, fmt.Errorf("param: new graph: %w", err)
	}
	for _, name := range s.names {
		if err := g.AddVertex(name); err != nil {
			return nil, fmt.Errorf("param: add vertex %q: %w", name, err)
		}
	}

	for _, name := range s.names {
		p := s.params[name]
		switch p.Kind() {
		case Free:
			ev.index[name] = len(ev.free)
			ev.free = append(ev.free, name)
			ev.init = append(ev.init, p.Value)
			ev.lower = append(ev.lower, p.Min)
			ev.upper = append(ev.upper, p.Max)

		case Fixed:
			ev.fixed[name] = p.Value

		case Derived:
			ev.exprs[name] = p.Expr
			for _, ref := range p.Expr.Refs() {
				if _, ok := s.params[ref]; !ok {
					return nil, fmt.Errorf("%w: %q in expression for %q",
						ErrUnknownParameter, ref, name)
				}
				// Edge ref -> name: the reference must be evaluated first.
				if _, err := g.AddEdge(ref, name, 0); err != nil {
					return nil, fmt.Errorf("param: add edge %q->%q: %w", ref, name, err)
				}
			}
		}
	}

	topo, err := dfs.TopologicalSort(g)
	if err != nil {
		if errors.Is(err, dfs.ErrCycleDetected) {
			return nil, fmt.Errorf("%w: %v", ErrCyclicConstraint, err)
		}
		return nil, fmt.Errorf("param: topological sort: %w", err)
	}

	for _, name := range topo {
		if _, derived := ev.exprs[name]; derived {
			ev.order = append(ev.order, name)
		}
	}

	return ev, nil
}

// FreeNames returns the free parameter names in vector order.
func (ev *Evaluator) FreeNames() []string {
	out := make([]string, len(ev.free))
	copy(out, ev.free)
	return out
}

// NumFree returns the number of free parameters.
func (ev *Evaluator) NumFree() int { return len(ev.free) }

// Init returns the initial free-parameter vector.
func (ev *Evaluator) Init() []float64 {
	out := make([]float64, len(ev.init))
	copy(out, ev.init)
	return out
}

// Bounds returns per-free-parameter lower and upper bounds.
func (ev *Evaluator) Bounds() (lower, upper []float64) {
	lower = make([]float64, len(ev.lower))
	upper = make([]float64, len(ev.upper))
	copy(lower, ev.lower)
	copy(upper, ev.upper)
	return lower, upper
}

// Eval substitutes the free values, copies fixed values verbatim, and
// computes derived values in topological order, returning the full snapshot.
func (ev *Evaluator) Eval(free []float64) (Snapshot, error) {
	if len(free) != len(ev.free) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVectorLength, len(free), len(ev.free))
	}

	snap := make(Snapshot, len(ev.free)+len(ev.fixed)+len(ev.order))
	for i, name := range ev.free {
		snap[name] = free[i]
	}
	for name, v := range ev.fixed {
		snap[name] = v
	}

	lookup := func(name string) (float64, bool) {
		v, ok := snap[name]
		return v, ok
	}
	for _, name := range ev.order {
		v, err := ev.exprs[name].Eval(lookup)
		if err != nil {
			return nil, fmt.Errorf("param: evaluate %q: %w", name, err)
		}
		snap[name] = v
	}

	return snap, nil
}

// DerivedNames returns the derived parameter names in evaluation order.
func (ev *Evaluator) DerivedNames() []string {
	out := make([]string, len(ev.order))
	copy(out, ev.order)
	return out
}

// Partials computes the partial derivatives of the named derived parameter
// with respect to every free parameter at the given free vector, by central
// finite differences through the full constraint chain. The returned slice
// follows the free vector order.
func (ev *Evaluator) Partials(name string, free []float64) ([]float64, error) {
	if _, ok := ev.exprs[name]; !ok {
		return nil, fmt.Errorf("%w: %q is not derived", ErrUnknownParameter, name)
	}

	grad := make([]float64, len(ev.free))
	work := make([]float64, len(free))
	copy(work, free)

	for i := range free {
		h := stepFor(free[i])

		work[i] = free[i] + h
		hi, err := ev.Eval(work)
		if err != nil {
			return nil, err
		}

		work[i] = free[i] - h
		lo, err := ev.Eval(work)
		if err != nil {
			return nil, err
		}

		work[i] = free[i]
		grad[i] = (hi[name] - lo[name]) / (2 * h)
	}

	return grad, nil
}

// stepFor picks a central-difference step scaled to the parameter magnitude.
func stepFor(v float64) float64 {
	const rel = 1e-6
	h := rel * math.Abs(v)
	if h == 0 {
		h = rel
	}
	return h
}
