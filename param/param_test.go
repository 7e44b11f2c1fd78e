package param

import (
	"errors"
	"math"
	"testing"
)

func TestSetAddAndKinds(t *testing.T) {
	s := NewSet()
	if err := s.Add("amplitude", WithValue(100), WithMin(0)); err != nil {
		t.Fatalf("Add amplitude: %v", err)
	}
	if err := s.Add("background", WithValue(5), AsFixed()); err != nil {
		t.Fatalf("Add background: %v", err)
	}
	if err := s.Add("height", WithExpr("amplitude*0.75")); err != nil {
		t.Fatalf("Add height: %v", err)
	}

	wantKinds := map[string]Kind{"amplitude": Free, "background": Fixed, "height": Derived}
	for name, want := range wantKinds {
		p, ok := s.Get(name)
		if !ok {
			t.Fatalf("Get(%q): missing", name)
		}
		if p.Kind() != want {
			t.Errorf("%s kind = %v, want %v", name, p.Kind(), want)
		}
	}

	free := s.FreeNames()
	if len(free) != 1 || free[0] != "amplitude" {
		t.Fatalf("FreeNames = %v, want [amplitude]", free)
	}
	if !math.IsNaN(mustGet(t, s, "amplitude").Stderr) {
		t.Fatal("fresh parameter should have NaN stderr")
	}
}

func mustGet(t *testing.T, s *Set, name string) *Parameter {
	t.Helper()
	p, ok := s.Get(name)
	if !ok {
		t.Fatalf("Get(%q): missing", name)
	}
	return p
}

func TestSetValidation(t *testing.T) {
	s := NewSet()

	if err := s.Add("a", WithBounds(2, 1)); !errors.Is(err, ErrInvalidBound) {
		t.Errorf("inverted bounds: err = %v, want ErrInvalidBound", err)
	}
	if err := s.Add("sigma", WithValue(-0.1), WithMin(0)); !errors.Is(err, ErrInvalidBound) {
		t.Errorf("negative sigma: err = %v, want ErrInvalidBound", err)
	}
	if err := s.Add("b", WithValue(1)); err != nil {
		t.Fatalf("Add b: %v", err)
	}
	if err := s.Add("b", WithValue(2)); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateName", err)
	}
	if err := s.Add("c", AsFixed(), WithExpr("b+1")); !errors.Is(err, ErrRoleConflict) {
		t.Errorf("fixed+derived: err = %v, want ErrRoleConflict", err)
	}
}

func TestSetCloneIndependence(t *testing.T) {
	s := NewSet()
	if err := s.Add("center", WithValue(284.6)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	c := s.Clone()
	mustGet(t, c, "center").Value = 300

	if got := mustGet(t, s, "center").Value; got != 284.6 {
		t.Fatalf("clone mutated original: %v", got)
	}
}

func TestApplyResult(t *testing.T) {
	s := NewSet()
	if err := s.Add("center", WithValue(284.6)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.ApplyResult(Snapshot{"center": 285.1}, Snapshot{"center": 0.02})

	p := mustGet(t, s, "center")
	if p.Value != 285.1 || p.Stderr != 0.02 {
		t.Fatalf("ApplyResult: value %v stderr %v", p.Value, p.Stderr)
	}
	if p.Init != 284.6 {
		t.Fatalf("Init overwritten: %v", p.Init)
	}
}
