package abtest

import (
	"fmt"
	"math"

	"github.com/yasi-python/abstat/pkg/stats"
)

// DefaultRatio allocates treatment and control equally.
const DefaultRatio = 1.0

// SampleSize returns the control-group size needed to detect a relative lift
// of mde over baselineRate with the configured alpha (two-sided) and power.
// ratio is the treatment-to-control size ratio; the treatment group needs
// ceil(n*ratio) visitors.
func (c Config) SampleSize(baselineRate, mde, ratio float64) (int, error) {
	switch {
	case !inOpenUnit(baselineRate):
		return 0, invalid("baseline rate %v outside (0,1)", baselineRate)
	case !(mde > 0):
		return 0, invalid("mde %v must be positive", mde)
	case !(ratio > 0):
		return 0, invalid("ratio %v must be positive", ratio)
	}

	p1 := baselineRate
	p2 := baselineRate * (1 + mde)
	if p2 >= 1 {
		return 0, fmt.Errorf("%w: treatment rate %v is not below 1, reduce the baseline or the mde",
			ErrInfeasibleEffectSize, p2)
	}

	pooled := (p1 + ratio*p2) / (1 + ratio)
	zAlpha := stats.TwoSidedCritical(c.alpha)
	zBeta := stats.NormalQuantile(c.power)

	spread := zAlpha*math.Sqrt(pooled*(1-pooled)*(1+1/ratio)) +
		zBeta*math.Sqrt(p1*(1-p1)+p2*(1-p2)/ratio)
	effect := p2 - p1

	n := math.Ceil(spread * spread / (effect * effect))
	if math.IsNaN(n) || math.IsInf(n, 0) || n >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %v per group", ErrSampleSizeOverflow, n)
	}
	return max(int(n), 1), nil
}
