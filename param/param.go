package param

import (
	"fmt"
	"math"
)

// Kind classifies a parameter's role in the fit.
type Kind int

const (
	// Free parameters are directly adjusted by the optimizer.
	Free Kind = iota

	// Fixed parameters are held at their value.
	Fixed

	// Derived parameters are recomputed from an expression and never
	// directly optimized.
	Derived
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Fixed:
		return "fixed"
	case Derived:
		return "derived"
	default:
		return "unknown"
	}
}

// Parameter is one named scalar of the fit model.
type Parameter struct {
	Name   string
	Value  float64
	Init   float64 // initial value, retained for reporting
	Min    float64 // -Inf when unbounded below
	Max    float64 // +Inf when unbounded above
	Fixed  bool
	Expr   *Expr   // non-nil only for derived parameters
	Stderr float64 // NaN until a fit writes one back
}

// Kind reports whether the parameter is free, fixed, or derived.
func (p *Parameter) Kind() Kind {
	switch {
	case p.Expr != nil:
		return Derived
	case p.Fixed:
		return Fixed
	default:
		return Free
	}
}

// Option configures a parameter being added to a Set.
type Option func(*Parameter) error

// WithValue sets the initial value.
func WithValue(v float64) Option {
	return func(p *Parameter) error {
		p.Value = v
		return nil
	}
}

// WithBounds sets both bounds. Use math.Inf for an open side.
func WithBounds(min, max float64) Option {
	return func(p *Parameter) error {
		p.Min = min
		p.Max = max
		return nil
	}
}

// WithMin sets the lower bound.
func WithMin(min float64) Option {
	return func(p *Parameter) error {
		p.Min = min
		return nil
	}
}

// WithMax sets the upper bound.
func WithMax(max float64) Option {
	return func(p *Parameter) error {
		p.Max = max
		return nil
	}
}

// AsFixed marks the parameter fixed.
func AsFixed() Option {
	return func(p *Parameter) error {
		p.Fixed = true
		return nil
	}
}

// WithExpr attaches a defining expression, making the parameter derived.
func WithExpr(src string) Option {
	return func(p *Parameter) error {
		e, err := ParseExpr(src)
		if err != nil {
			return err
		}
		p.Expr = e
		return nil
	}
}

// Snapshot is an immutable name-to-value view of a parameter set at one
// evaluation point.
type Snapshot map[string]float64

// Set is an insertion-ordered collection of parameters. It is the single
// source of truth for parameter state; evaluation code works on snapshots.
type Set struct {
	names  []string
	params map[string]*Parameter
}

// NewSet returns an empty parameter set.
func NewSet() *Set {
	return &Set{params: make(map[string]*Parameter)}
}

// Add registers a parameter. The zero configuration is a free parameter
// with value 0 and open bounds.
func (s *Set) Add(name string, opts ...Option) error {
	if _, dup := s.params[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	p := &Parameter{
		Name:   name,
		Min:    math.Inf(-1),
		Max:    math.Inf(1),
		Stderr: math.NaN(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(p); err != nil {
			return err
		}
	}

	if err := validate(p); err != nil {
		return err
	}

	p.Init = p.Value
	s.names = append(s.names, name)
	s.params[name] = p
	return nil
}

func validate(p *Parameter) error {
	if p.Min > p.Max {
		return fmt.Errorf("%w: %q has min %v > max %v", ErrInvalidBound, p.Name, p.Min, p.Max)
	}
	if p.Expr == nil && (p.Value < p.Min || p.Value > p.Max) {
		return fmt.Errorf("%w: %q value %v outside [%v, %v]",
			ErrInvalidBound, p.Name, p.Value, p.Min, p.Max)
	}
	if p.Fixed && p.Expr != nil {
		return fmt.Errorf("%w: %q", ErrRoleConflict, p.Name)
	}
	return nil
}

// Get returns the parameter with the given name.
func (s *Set) Get(name string) (*Parameter, bool) {
	p, ok := s.params[name]
	return p, ok
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.names) }

// Names returns all parameter names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// FreeNames returns the names of free parameters in insertion order. This
// order defines the layout of every free-parameter vector.
func (s *Set) FreeNames() []string {
	var out []string
	for _, name := range s.names {
		if s.params[name].Kind() == Free {
			out = append(out, name)
		}
	}
	return out
}

// Snapshot returns the current name-to-value mapping. Derived values are
// whatever was last stored; use an Evaluator for consistent snapshots.
func (s *Set) Snapshot() Snapshot {
	snap := make(Snapshot, len(s.names))
	for _, name := range s.names {
		snap[name] = s.params[name].Value
	}
	return snap
}

// Clone returns a deep copy. Concurrent fits each own a clone; the expression
// ASTs are immutable and shared.
func (s *Set) Clone() *Set {
	c := &Set{
		names:  make([]string, len(s.names)),
		params: make(map[string]*Parameter, len(s.names)),
	}
	copy(c.names, s.names)
	for name, p := range s.params {
		cp := *p
		c.params[name] = &cp
	}
	return c
}

// ApplyResult writes fitted values and standard errors back after a run.
// Unknown names are ignored so partial results can be applied.
func (s *Set) ApplyResult(values, stderrs Snapshot) {
	for name, v := range values {
		if p, ok := s.params[name]; ok {
			p.Value = v
		}
	}
	for name, se := range stderrs {
		if p, ok := s.params[name]; ok {
			p.Stderr = se
		}
	}
}
