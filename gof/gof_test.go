package gof

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-peakfit/internal/testutil"
	"github.com/cwbudde/algo-peakfit/param"
)

func TestComputeKnownRedChi(t *testing.T) {
	// 268 points, 1 free parameter, chi-square 3.9376e9: the reduced
	// chi-square must match chi/(N-P).
	residuals := make([]float64, 268)
	chi := 3.9376e9
	per := math.Sqrt(chi / 268)
	for i := range residuals {
		residuals[i] = per
	}

	stats := Compute(residuals, 1)
	testutil.RequireNearlyEqual(t, stats.ChiSquare, chi, chi*1e-12)
	testutil.RequireNearlyEqual(t, stats.RedChi, chi/267, chi/267*1e-12)
}

func TestComputeInformationCriteria(t *testing.T) {
	residuals := []float64{1, -1, 2, -2, 0.5}
	stats := Compute(residuals, 2)

	n := 5.0
	chi := 1.0 + 1 + 4 + 4 + 0.25
	testutil.RequireNearlyEqual(t, stats.ChiSquare, chi, 1e-12)
	testutil.RequireNearlyEqual(t, stats.AIC, n*math.Log(chi/n)+2*2, 1e-12)
	testutil.RequireNearlyEqual(t, stats.BIC, n*math.Log(chi/n)+2*math.Log(n), 1e-12)
}

func TestComputeDegenerateDOF(t *testing.T) {
	// N <= P leaves the reduced chi-square undefined, not infinite.
	stats := Compute([]float64{1, 2}, 2)
	if !math.IsNaN(stats.RedChi) {
		t.Fatalf("RedChi = %v, want NaN", stats.RedChi)
	}

	empty := Compute(nil, 0)
	if !math.IsNaN(empty.RedChi) || empty.ChiSquare != 0 {
		t.Fatalf("empty stats: %+v", empty)
	}
}

func TestStdErrors(t *testing.T) {
	cov := [][]float64{{4, 0}, {0, 9}}
	se := StdErrors(cov, 2)
	testutil.RequireSliceNearlyEqual(t, se, []float64{math.Sqrt(8), math.Sqrt(18)}, 1e-12)

	nan := math.NaN()
	seNaN := StdErrors([][]float64{{nan}}, 1)
	if !math.IsNaN(seNaN[0]) {
		t.Fatalf("stderr = %v, want NaN", seNaN[0])
	}
}

func TestPropagateDerivedSum(t *testing.T) {
	// d = a + b with independent a, b: variance adds.
	s := param.NewSet()
	for _, add := range []error{
		s.Add("a", param.WithValue(1)),
		s.Add("b", param.WithValue(2)),
		s.Add("d", param.WithExpr("a+b")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	cov := [][]float64{{0.04, 0}, {0, 0.09}}
	se, err := PropagateDerived(ev, []float64{1, 2}, cov, 1)
	if err != nil {
		t.Fatalf("PropagateDerived: %v", err)
	}
	testutil.RequireNearlyEqual(t, se["d"], math.Sqrt(0.13), 1e-6)
}

func TestPropagateDerivedScaled(t *testing.T) {
	// d = 3*a: stderr scales linearly with the coefficient and with the
	// square root of the covariance scale.
	s := param.NewSet()
	for _, add := range []error{
		s.Add("a", param.WithValue(2)),
		s.Add("d", param.WithExpr("3*a")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	se, err := PropagateDerived(ev, []float64{2}, [][]float64{{0.25}}, 4)
	if err != nil {
		t.Fatalf("PropagateDerived: %v", err)
	}
	// sqrt(3^2 * 0.25 * 4) = 3.
	testutil.RequireNearlyEqual(t, se["d"], 3, 1e-5)
}

func TestPropagateDerivedNoCovariance(t *testing.T) {
	s := param.NewSet()
	for _, add := range []error{
		s.Add("a", param.WithValue(1)),
		s.Add("d", param.WithExpr("a*2")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}
	ev, err := param.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	se, err := PropagateDerived(ev, []float64{1}, nil, 1)
	if err != nil {
		t.Fatalf("PropagateDerived: %v", err)
	}
	if !math.IsNaN(se["d"]) {
		t.Fatalf("stderr = %v, want NaN", se["d"])
	}
}
