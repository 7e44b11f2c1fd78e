package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-peakfit/lineshape"
	"github.com/cwbudde/algo-peakfit/param"
)

// Errors reported by model construction and evaluation.
var (
	ErrUnknownKind     = errors.New("model: unknown component kind")
	ErrDuplicatePrefix = errors.New("model: duplicate component prefix")
	ErrEmptyModel      = errors.New("model: no components")
	ErrEmptyPrefix     = errors.New("model: empty component prefix")
	ErrMissingParam    = errors.New("model: parameter missing from snapshot")
	ErrNoSuchComponent = errors.New("model: no such component")
)

// Kind identifies a component line shape.
type Kind int

const (
	// Background is the polynomial baseline c0..c3.
	Background Kind = iota

	// Singlet is a Doniach-Sunjic peak convolved with a Gaussian.
	Singlet

	// Doublet is a spin-orbit split pair of linked Doniach-Sunjic peaks
	// convolved with a Gaussian.
	Doublet

	// PseudoVoigt is an analytic Gaussian/Lorentzian mix.
	PseudoVoigt

	// FermiEdge is a Fermi-Dirac step convolved with a Gaussian.
	FermiEdge
)

var kindNames = map[Kind]string{
	Background:  "background",
	Singlet:     "singlet",
	Doublet:     "doublet",
	PseudoVoigt: "pseudovoigt",
	FermiEdge:   "fermiedge",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromString maps a kind name from the report layout back to a Kind.
func KindFromString(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Key addresses one parameter of one component: a component prefix plus a
// generic role name. Joining the two into a flat parameter name happens
// here and nowhere else.
type Key struct {
	Prefix string
	Role   string
}

// Name returns the flat parameter name used in the parameter store.
func (k Key) Name() string {
	return k.Prefix + "_" + k.Role
}

// Component is one named instance of a line shape kind.
type Component struct {
	Prefix string
	Kind   Kind
}

// Key returns the parameter key for one of the component's roles.
func (c Component) Key(role string) Key {
	return Key{Prefix: c.Prefix, Role: role}
}

// Roles returns the fit parameter roles the component owns, in declaration
// order. Derived diagnostic roles installed by Hints are not included.
func (c Component) Roles() []string {
	switch c.Kind {
	case Background:
		return []string{"c0", "c1", "c2", "c3"}
	case Singlet:
		return []string{"amplitude", "sigma", "gamma", "gaussian_sigma", "center"}
	case Doublet:
		return []string{"amplitude", "sigma", "gamma", "gaussian_sigma", "center",
			"soc", "height_ratio", "fct_coster_kronig"}
	case PseudoVoigt:
		return []string{"amplitude", "center", "sigma", "fraction"}
	case FermiEdge:
		return []string{"amplitude", "center", "kt", "sigma"}
	default:
		return nil
	}
}

// Hints registers the component's parameters with default values, bounds,
// and derived diagnostic expressions into the given set.
func (c Component) Hints(s *param.Set) error {
	if c.Prefix == "" {
		return ErrEmptyPrefix
	}

	name := func(role string) string { return c.Key(role).Name() }
	add := func(role string, opts ...param.Option) error {
		return s.Add(name(role), opts...)
	}

	switch c.Kind {
	case Background:
		for _, role := range c.Roles() {
			if err := add(role, param.WithValue(0)); err != nil {
				return err
			}
		}
		return nil

	case Singlet:
		hints := []struct {
			role  string
			value float64
		}{
			{"amplitude", 100}, {"sigma", 0.2}, {"gamma", 0.02},
			{"gaussian_sigma", 0.2}, {"center", 100},
		}
		for _, h := range hints {
			if err := add(h.role, param.WithValue(h.value), param.WithMin(0)); err != nil {
				return err
			}
		}
		derived := []struct{ role, expr string }{
			{"gaussian_fwhm", fmt.Sprintf("2*%s*1.1774", name("gaussian_sigma"))},
			{"lorentzian_fwhm", fmt.Sprintf("%[1]s*(2+%[2]s*2.5135+(%[2]s*3.6398)**4)",
				name("sigma"), name("gamma"))},
			{"fwhm", fmt.Sprintf("0.5346*%[1]s+sqrt(0.2166*%[1]s**2+%[2]s**2)",
				name("lorentzian_fwhm"), name("gaussian_fwhm"))},
			{"height", name("amplitude")},
			{"area", fmt.Sprintf("%s*%s", name("fwhm"), name("height"))},
		}
		for _, d := range derived {
			if err := add(d.role, param.WithExpr(d.expr)); err != nil {
				return err
			}
		}
		return nil

	case Doublet:
		hints := []struct {
			role    string
			value   float64
			nonNeg  bool
		}{
			{"amplitude", 100, true}, {"sigma", 0.2, true}, {"gamma", 0.02, true},
			{"gaussian_sigma", 0.2, true}, {"center", 285, false}, {"soc", 2.0, false},
			{"height_ratio", 0.75, true}, {"fct_coster_kronig", 1, true},
		}
		for _, h := range hints {
			opts := []param.Option{param.WithValue(h.value)}
			if h.nonNeg {
				opts = append(opts, param.WithMin(0))
			}
			if err := add(h.role, opts...); err != nil {
				return err
			}
		}
		derived := []struct{ role, expr string }{
			{"gaussian_fwhm", fmt.Sprintf("2*%s*1.1774", name("gaussian_sigma"))},
			{"lorentzian_fwhm_p1", fmt.Sprintf("%[1]s*(2+%[2]s*2.5135+(%[2]s*3.6398)**4)",
				name("sigma"), name("gamma"))},
			{"lorentzian_fwhm_p2", fmt.Sprintf("%[1]s*(2+%[2]s*2.5135+(%[2]s*3.6398)**4)*%[3]s",
				name("sigma"), name("gamma"), name("fct_coster_kronig"))},
			{"fwhm_p1", fmt.Sprintf("0.5346*%[1]s+sqrt(0.2166*%[1]s**2+%[2]s**2)",
				name("lorentzian_fwhm_p1"), name("gaussian_fwhm"))},
			{"fwhm_p2", fmt.Sprintf("0.5346*%[1]s+sqrt(0.2166*%[1]s**2+%[2]s**2)",
				name("lorentzian_fwhm_p2"), name("gaussian_fwhm"))},
			{"height_p1", name("amplitude")},
			{"height_p2", fmt.Sprintf("%s*%s", name("amplitude"), name("height_ratio"))},
			{"area_p1", fmt.Sprintf("%s*%s", name("fwhm_p1"), name("height_p1"))},
			{"area_p2", fmt.Sprintf("%s*%s", name("fwhm_p2"), name("height_p2"))},
		}
		for _, d := range derived {
			if err := add(d.role, param.WithExpr(d.expr)); err != nil {
				return err
			}
		}
		return nil

	case PseudoVoigt:
		if err := add("amplitude", param.WithValue(1), param.WithMin(0)); err != nil {
			return err
		}
		if err := add("center", param.WithValue(0)); err != nil {
			return err
		}
		if err := add("sigma", param.WithValue(1), param.WithMin(0)); err != nil {
			return err
		}
		if err := add("fraction", param.WithValue(0.5), param.WithBounds(0, 1)); err != nil {
			return err
		}
		derived := []struct{ role, expr string }{
			{"fwhm", fmt.Sprintf("2*%s", name("sigma"))},
			// Peak height of the fraction-weighted mix; the constants are the
			// unit-height factors of the Gaussian and Lorentzian components.
			{"height", fmt.Sprintf("%[1]s/%[2]s*((1-%[3]s)*0.4697186+%[3]s*0.3183099)",
				name("amplitude"), name("sigma"), name("fraction"))},
		}
		for _, d := range derived {
			if err := add(d.role, param.WithExpr(d.expr)); err != nil {
				return err
			}
		}
		return nil

	case FermiEdge:
		hints := []struct {
			role  string
			value float64
		}{
			{"amplitude", 100}, {"center", 100}, {"kt", 0.02585}, {"sigma", 0.2},
		}
		for _, h := range hints {
			if err := add(h.role, param.WithValue(h.value), param.WithMin(0)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(c.Kind))
	}
}

// eval computes the component's contribution at x from the snapshot.
func (c Component) eval(snap param.Snapshot, x []float64) ([]float64, error) {
	get := func(role string) (float64, error) {
		v, ok := snap[c.Key(role).Name()]
		if !ok {
			return math.NaN(), fmt.Errorf("%w: %q", ErrMissingParam, c.Key(role).Name())
		}
		return v, nil
	}

	vals := make(map[string]float64, 8)
	for _, role := range c.Roles() {
		v, err := get(role)
		if err != nil {
			return nil, err
		}
		vals[role] = v
	}

	switch c.Kind {
	case Background:
		return lineshape.Polynomial(x, []float64{
			vals["c0"], vals["c1"], vals["c2"], vals["c3"],
		}), nil

	case Singlet:
		return lineshape.Singlet(x, vals["amplitude"], vals["sigma"], vals["gamma"],
			vals["gaussian_sigma"], vals["center"])

	case Doublet:
		return lineshape.Doublet(x, vals["amplitude"], vals["sigma"], vals["gamma"],
			vals["gaussian_sigma"], vals["center"], vals["soc"],
			vals["height_ratio"], vals["fct_coster_kronig"])

	case PseudoVoigt:
		return lineshape.PseudoVoigt(x, vals["amplitude"], vals["center"],
			vals["sigma"], vals["fraction"]), nil

	case FermiEdge:
		return lineshape.FermiEdge(x, vals["amplitude"], vals["center"],
			vals["kt"], vals["sigma"])

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(c.Kind))
	}
}
