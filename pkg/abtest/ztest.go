package abtest

import (
	"math"

	"github.com/yasi-python/abstat/pkg/stats"
)

// Interval is the closed range [Lower, Upper].
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether x lies in the interval.
func (i Interval) Contains(x float64) bool {
	return i.Lower <= x && x <= i.Upper
}

// FrequentistResult is the outcome of a two-proportion z-test.
type FrequentistResult struct {
	RateA              float64 `json:"rate_a"`
	RateB              float64 `json:"rate_b"`
	AbsoluteDifference float64 `json:"absolute_difference"`
	// RelativeLift is (RateB-RateA)/RateA. It is reported as 0 when RateA
	// is 0, where the true lift is undefined.
	RelativeLift       float64  `json:"relative_lift"`
	ZStatistic         float64  `json:"z_statistic"`
	PValue             float64  `json:"p_value"`
	IsSignificant      bool     `json:"is_significant"`
	ConfidenceInterval Interval `json:"confidence_interval"`
	ConfidenceLevel    float64  `json:"confidence_level"`
}

// ZTest runs a two-tailed two-proportion z-test of group B against group A.
func (c Config) ZTest(convA, visA, convB, visB int) (FrequentistResult, error) {
	return c.ZTestObservations(
		Observation{Conversions: convA, Visitors: visA},
		Observation{Conversions: convB, Visitors: visB},
	)
}

// ZTestObservations is ZTest over Observation values.
//
// The z-statistic uses the pooled standard error; the confidence interval for
// the difference uses the unpooled one. When neither group converted the
// result is the degenerate "no information" record with p-value 1.
func (c Config) ZTestObservations(a, b Observation) (FrequentistResult, error) {
	if err := validatePair(a, b); err != nil {
		return FrequentistResult{}, err
	}
	if a.Conversions == 0 && b.Conversions == 0 {
		return FrequentistResult{PValue: 1, ConfidenceLevel: c.ConfidenceLevel()}, nil
	}

	rateA, rateB := a.Rate(), b.Rate()
	diff := rateB - rateA
	nA, nB := float64(a.Visitors), float64(b.Visitors)

	pooled := (float64(a.Conversions) + float64(b.Conversions)) / (nA + nB)
	se := math.Sqrt(pooled * (1 - pooled) * (1/nA + 1/nB))

	// se is zero only when both groups converted every visitor.
	z := 0.0
	if se > 0 {
		z = diff / se
	}
	pValue := stats.TwoTailedPValue(z)

	zCrit := stats.TwoSidedCritical(c.alpha)
	seDiff := math.Sqrt(rateA*(1-rateA)/nA + rateB*(1-rateB)/nB)

	lift := 0.0
	if rateA > 0 {
		lift = diff / rateA
	}

	return FrequentistResult{
		RateA:              rateA,
		RateB:              rateB,
		AbsoluteDifference: diff,
		RelativeLift:       lift,
		ZStatistic:         z,
		PValue:             pValue,
		IsSignificant:      pValue < c.alpha,
		ConfidenceInterval: Interval{Lower: diff - zCrit*seDiff, Upper: diff + zCrit*seDiff},
		ConfidenceLevel:    c.ConfidenceLevel(),
	}, nil
}
