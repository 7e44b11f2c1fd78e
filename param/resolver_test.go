package param

import (
	"errors"
	"math"
	"testing"
)

func TestResolveDerivedChain(t *testing.T) {
	s := NewSet()
	for _, add := range []error{
		s.Add("center1", WithValue(284.6)),
		s.Add("splitting", WithValue(3.67), AsFixed()),
		s.Add("center2", WithExpr("center1+splitting")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}

	ev, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if n := ev.NumFree(); n != 1 {
		t.Fatalf("NumFree = %d, want 1", n)
	}

	snap, err := ev.Eval([]float64{284.6})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got := snap["center2"]; math.Abs(got-288.27) > 1e-12 {
		t.Fatalf("center2 = %v, want 288.27", got)
	}
}

func TestResolveTransitiveOrder(t *testing.T) {
	// c depends on b which depends on a; registration order is reversed to
	// force the topological sort to do real work.
	s := NewSet()
	for _, add := range []error{
		s.Add("c", WithExpr("b*2")),
		s.Add("b", WithExpr("a+1")),
		s.Add("a", WithValue(3)),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}

	ev, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	snap, err := ev.Eval([]float64{3})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if snap["b"] != 4 || snap["c"] != 8 {
		t.Fatalf("b=%v c=%v, want 4 and 8", snap["b"], snap["c"])
	}
}

func TestResolveCycle(t *testing.T) {
	s := NewSet()
	for _, add := range []error{
		s.Add("A", WithExpr("B+1")),
		s.Add("B", WithExpr("A+1")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}

	ev, err := Resolve(s)
	if !errors.Is(err, ErrCyclicConstraint) {
		t.Fatalf("err = %v, want ErrCyclicConstraint", err)
	}
	if ev != nil {
		t.Fatal("cycle must produce no partial evaluator")
	}
}

func TestResolveUnknownReference(t *testing.T) {
	s := NewSet()
	if err := s.Add("h", WithExpr("missing*2")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := Resolve(s); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("err = %v, want ErrUnknownParameter", err)
	}
}

func TestEvalVectorLength(t *testing.T) {
	s := NewSet()
	if err := s.Add("a", WithValue(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ev, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := ev.Eval(nil); !errors.Is(err, ErrVectorLength) {
		t.Fatalf("err = %v, want ErrVectorLength", err)
	}
}

func TestPartials(t *testing.T) {
	s := NewSet()
	for _, add := range []error{
		s.Add("a", WithValue(2)),
		s.Add("b", WithValue(3)),
		s.Add("d", WithExpr("a*b+a**2")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}

	ev, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	grad, err := ev.Partials("d", []float64{2, 3})
	if err != nil {
		t.Fatalf("Partials: %v", err)
	}
	// d = a*b + a^2: dd/da = b + 2a = 7, dd/db = a = 2.
	if math.Abs(grad[0]-7) > 1e-5 || math.Abs(grad[1]-2) > 1e-5 {
		t.Fatalf("grad = %v, want [7 2]", grad)
	}
}

func TestEvalDeterminism(t *testing.T) {
	s := NewSet()
	for _, add := range []error{
		s.Add("x", WithValue(1.5)),
		s.Add("y", WithExpr("sqrt(x)+x**2")),
	} {
		if add != nil {
			t.Fatalf("setup: %v", add)
		}
	}

	ev, err := Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	a, err := ev.Eval([]float64{1.5})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	b, err := ev.Eval([]float64{1.5})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if a["y"] != b["y"] {
		t.Fatalf("non-deterministic evaluation: %v vs %v", a["y"], b["y"])
	}
}
