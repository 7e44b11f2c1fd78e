package model

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-peakfit/param"
)

// Composite is an ordered set of components evaluated as
// background(x) + sum of peak contributions. It holds no parameter state.
type Composite struct {
	components []Component
}

// New builds a composite model, rejecting empty models and duplicate
// prefixes.
func New(components ...Component) (*Composite, error) {
	if len(components) == 0 {
		return nil, ErrEmptyModel
	}

	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		if c.Prefix == "" {
			return nil, ErrEmptyPrefix
		}
		if _, dup := seen[c.Prefix]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePrefix, c.Prefix)
		}
		seen[c.Prefix] = struct{}{}
	}

	cs := make([]Component, len(components))
	copy(cs, components)
	return &Composite{components: cs}, nil
}

// Components returns the components in evaluation order.
func (m *Composite) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

// DefaultParams returns a fresh parameter set populated with every
// component's default hints.
func (m *Composite) DefaultParams() (*param.Set, error) {
	s := param.NewSet()
	for _, c := range m.components {
		if err := c.Hints(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Eval evaluates the composite at x from a parameter snapshot. The x axis
// is arbitrary: pass a finer grid than the measured data to produce a
// smooth fit curve.
func (m *Composite) Eval(snap param.Snapshot, x []float64) ([]float64, error) {
	total := make([]float64, len(x))
	for _, c := range m.components {
		contrib, err := c.eval(snap, x)
		if err != nil {
			return nil, fmt.Errorf("model: component %q: %w", c.Prefix, err)
		}
		vecmath.AddBlockInPlace(total, contrib)
	}
	return total, nil
}

// EvalComponent evaluates a single component by prefix, for per-component
// plotting and reporting.
func (m *Composite) EvalComponent(prefix string, snap param.Snapshot, x []float64) ([]float64, error) {
	for _, c := range m.components {
		if c.Prefix == prefix {
			return c.eval(snap, x)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchComponent, prefix)
}
