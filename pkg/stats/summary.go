package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Quantiles returns the p-quantiles of x for each p in ps, linearly
// interpolated between order statistics. x is left untouched.
func Quantiles(x []float64, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if len(x) == 0 {
		return out
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.LinInterp, sorted, nil)
	}
	return out
}
