package optimize

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-peakfit/internal/testutil"
)

func TestBoundTransformRoundTrip(t *testing.T) {
	inf := math.Inf(1)
	lower := []float64{-inf, 0, -inf, -1}
	upper := []float64{inf, inf, 5, 1}
	external := []float64{3.7, 2.5, -4, 0.25}

	tr := newBoundTransform(lower, upper)
	internal := tr.toInternal(external)

	back := make([]float64, len(external))
	tr.toExternal(back, internal)
	testutil.RequireSliceNearlyEqual(t, back, external, 1e-10)
}

func TestBoundTransformRespectsBounds(t *testing.T) {
	lower := []float64{0, math.Inf(-1), -2}
	upper := []float64{10, 3, 2}
	tr := newBoundTransform(lower, upper)

	ext := make([]float64, 3)
	for _, v := range []float64{-1e6, -17.3, 0, 0.5, 42, 1e6} {
		tr.toExternal(ext, []float64{v, v, v})
		for i := range ext {
			if ext[i] < lower[i]-1e-12 || ext[i] > upper[i]+1e-12 {
				t.Fatalf("internal %v: external[%d] = %v outside [%v, %v]",
					v, i, ext[i], lower[i], upper[i])
			}
		}
	}
}

func TestBoundTransformAtBound(t *testing.T) {
	tr := newBoundTransform([]float64{0}, []float64{1})

	internal := tr.toInternal([]float64{0})
	out := make([]float64, 1)
	tr.toExternal(out, internal)
	testutil.RequireNearlyEqual(t, out[0], 0, 1e-12)

	internal = tr.toInternal([]float64{1})
	tr.toExternal(out, internal)
	testutil.RequireNearlyEqual(t, out[0], 1, 1e-12)
}
