package optimize

import (
	"math"

	"github.com/cwbudde/algo-peakfit/internal/numutil"
)

// boundTransform maps between the optimizer's unbounded internal space and
// the bounded external parameter space, following the MINUIT convention:
//
//	both bounds:  ext = lo + (sin(int)+1)/2 * (up-lo)
//	lower only:   ext = lo - 1 + sqrt(int^2 + 1)
//	upper only:   ext = up + 1 - sqrt(int^2 + 1)
//	unbounded:    ext = int
type boundTransform struct {
	lower []float64
	upper []float64
}

func newBoundTransform(lower, upper []float64) *boundTransform {
	return &boundTransform{lower: lower, upper: upper}
}

// toInternal converts external starting values to internal coordinates.
func (t *boundTransform) toInternal(external []float64) []float64 {
	internal := make([]float64, len(external))
	for i, v := range external {
		lo, up := t.lower[i], t.upper[i]
		switch {
		case math.IsInf(lo, -1) && math.IsInf(up, 1):
			internal[i] = v
		case math.IsInf(up, 1):
			internal[i] = math.Sqrt(math.Max(0, (v-lo+1)*(v-lo+1)-1))
		case math.IsInf(lo, -1):
			internal[i] = math.Sqrt(math.Max(0, (up-v+1)*(up-v+1)-1))
		default:
			arg := 2*(v-lo)/(up-lo) - 1
			internal[i] = math.Asin(numutil.Clamp(arg, -1, 1))
		}
	}
	return internal
}

// toExternal converts internal coordinates to bounded external values,
// writing into dst.
func (t *boundTransform) toExternal(dst, internal []float64) {
	for i, v := range internal {
		lo, up := t.lower[i], t.upper[i]
		switch {
		case math.IsInf(lo, -1) && math.IsInf(up, 1):
			dst[i] = v
		case math.IsInf(up, 1):
			dst[i] = lo - 1 + math.Sqrt(v*v+1)
		case math.IsInf(lo, -1):
			dst[i] = up + 1 - math.Sqrt(v*v+1)
		default:
			dst[i] = lo + (math.Sin(v)+1)/2*(up-lo)
		}
	}
}
