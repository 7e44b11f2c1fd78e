package model

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-peakfit/internal/testutil"
	"github.com/cwbudde/algo-peakfit/param"
)

func TestKeyName(t *testing.T) {
	k := Key{Prefix: "g1", Role: "gaussian_sigma"}
	if k.Name() != "g1_gaussian_sigma" {
		t.Fatalf("Name = %q", k.Name())
	}
}

func TestNewRejectsBadPrefixes(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrEmptyModel) {
		t.Errorf("empty model: err = %v", err)
	}
	if _, err := New(Component{Prefix: "", Kind: Singlet}); !errors.Is(err, ErrEmptyPrefix) {
		t.Errorf("empty prefix: err = %v", err)
	}
	_, err := New(
		Component{Prefix: "g1", Kind: Singlet},
		Component{Prefix: "g1", Kind: Doublet},
	)
	if !errors.Is(err, ErrDuplicatePrefix) {
		t.Errorf("duplicate prefix: err = %v", err)
	}
}

func TestSingletHints(t *testing.T) {
	m, err := New(Component{Prefix: "g1", Kind: Singlet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := m.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams: %v", err)
	}

	amp, ok := s.Get("g1_amplitude")
	if !ok || amp.Value != 100 || amp.Min != 0 {
		t.Fatalf("g1_amplitude hint wrong: %+v", amp)
	}

	fwhm, ok := s.Get("g1_fwhm")
	if !ok || fwhm.Kind() != param.Derived {
		t.Fatalf("g1_fwhm should be derived")
	}

	// The derived chain must evaluate with the default values.
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	snap, err := ev.Eval(ev.Init())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	lf := 0.2 * (2 + 0.02*2.5135 + math.Pow(0.02*3.6398, 4))
	gf := 2 * 0.2 * 1.1774
	want := 0.5346*lf + math.Sqrt(0.2166*lf*lf+gf*gf)
	testutil.RequireNearlyEqual(t, snap["g1_fwhm"], want, 1e-12)
	testutil.RequireNearlyEqual(t, snap["g1_height"], 100, 1e-12)
	testutil.RequireNearlyEqual(t, snap["g1_area"], want*100, 1e-12)
}

func TestDoubletHintChain(t *testing.T) {
	m, err := New(Component{Prefix: "d1", Kind: Doublet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := m.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams: %v", err)
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	snap, err := ev.Eval(ev.Init())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	// height_p2 = amplitude * height_ratio with the default hints.
	testutil.RequireNearlyEqual(t, snap["d1_height_p2"], 100*0.75, 1e-12)

	// The Coster-Kronig factor of 1 makes both Lorentzian widths equal.
	testutil.RequireNearlyEqual(t, snap["d1_lorentzian_fwhm_p1"], snap["d1_lorentzian_fwhm_p2"], 1e-12)
}

func TestCompositeEvalPurity(t *testing.T) {
	m, err := New(
		Component{Prefix: "bg", Kind: Background},
		Component{Prefix: "g1", Kind: Singlet},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := m.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams: %v", err)
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	snap, err := ev.Eval(ev.Init())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	x := testutil.EnergyAxis(90, 110, 268)
	a, err := m.Eval(snap, x)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	b, err := m.Eval(snap, x)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
	testutil.RequireFinite(t, a)
}

func TestCompositeBackgroundPlusPeak(t *testing.T) {
	m, err := New(
		Component{Prefix: "bg", Kind: Background},
		Component{Prefix: "p", Kind: PseudoVoigt},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := m.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams: %v", err)
	}

	// Constant background of 7.
	bg, _ := s.Get("bg_c0")
	bg.Value = 7

	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	snap, err := ev.Eval(ev.Init())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	x := testutil.EnergyAxis(-30, 30, 121)
	y, err := m.Eval(snap, x)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	// Far from the peak the model approaches the flat background.
	testutil.RequireNearlyEqual(t, y[0], 7, 0.05)
}

func TestEvalAtFinerGrid(t *testing.T) {
	m, err := New(Component{Prefix: "p", Kind: PseudoVoigt})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := m.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams: %v", err)
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	snap, err := ev.Eval(ev.Init())
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	coarse, err := m.Eval(snap, testutil.EnergyAxis(-5, 5, 11))
	if err != nil {
		t.Fatalf("Eval coarse: %v", err)
	}
	fine, err := m.Eval(snap, testutil.EnergyAxis(-5, 5, 101))
	if err != nil {
		t.Fatalf("Eval fine: %v", err)
	}

	// Every coarse sample must appear in the fine grid evaluation.
	for i, v := range coarse {
		testutil.RequireNearlyEqual(t, fine[i*10], v, 1e-12)
	}
}

func TestEvalMissingParam(t *testing.T) {
	m, err := New(Component{Prefix: "g1", Kind: Singlet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = m.Eval(param.Snapshot{"g1_amplitude": 1}, []float64{1, 2, 3})
	if !errors.Is(err, ErrMissingParam) {
		t.Fatalf("err = %v, want ErrMissingParam", err)
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{Background, Singlet, Doublet, PseudoVoigt, FermiEdge} {
		got, err := KindFromString(k.String())
		if err != nil || got != k {
			t.Errorf("round trip %v: got %v, err %v", k, got, err)
		}
	}
	if _, err := KindFromString("triplet"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v", err)
	}
}
