package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalCDF returns P(Z <= x) for a standard normal Z.
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile returns the p-quantile of the standard normal distribution.
// p must lie in [0, 1]; distuv panics outside that range.
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// TwoSidedCritical returns z such that P(|Z| > z) = alpha.
func TwoSidedCritical(alpha float64) float64 {
	return NormalQuantile(1 - alpha/2)
}

// TwoTailedPValue returns 2*(1-CDF(|z|)).
func TwoTailedPValue(z float64) float64 {
	return 2 * (1 - NormalCDF(math.Abs(z)))
}
