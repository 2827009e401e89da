package abtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZTestReferenceData(t *testing.T) {
	res, err := DefaultConfig().ZTest(120, 1500, 145, 1500)
	require.NoError(t, err)

	assert.InDelta(t, 0.08, res.RateA, 1e-12)
	assert.InDelta(t, 0.0967, res.RateB, 0.001)
	assert.InDelta(t, 0.016667, res.AbsoluteDifference, 1e-6)
	assert.InDelta(t, 0.208333, res.RelativeLift, 1e-6)
	assert.InDelta(t, 1.6084, res.ZStatistic, 1e-3)
	assert.InDelta(t, 0.1077, res.PValue, 1e-3)
	assert.False(t, res.IsSignificant)
	assert.InDelta(t, -0.003634, res.ConfidenceInterval.Lower, 1e-5)
	assert.InDelta(t, 0.036967, res.ConfidenceInterval.Upper, 1e-5)
	assert.Equal(t, 0.95, res.ConfidenceLevel)
}

func TestZTestSignificantDifference(t *testing.T) {
	res, err := DefaultConfig().ZTest(100, 1000, 200, 1000)
	require.NoError(t, err)
	assert.True(t, res.IsSignificant)
	assert.Less(t, res.PValue, 0.05)
	assert.False(t, res.ConfidenceInterval.Contains(0))
}

func TestZTestNoDifference(t *testing.T) {
	res, err := DefaultConfig().ZTest(100, 1000, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, res.RateA, res.RateB)
	assert.InDelta(t, 0, res.AbsoluteDifference, 1e-10)
	assert.InDelta(t, 0, res.RelativeLift, 1e-10)
	assert.False(t, res.IsSignificant)
	assert.Greater(t, res.PValue, 0.05)
	assert.True(t, res.ConfidenceInterval.Contains(0))
}

func TestZTestIntervalAgreesWithVerdict(t *testing.T) {
	cases := [][4]int{
		{120, 1500, 145, 1500},
		{100, 1000, 200, 1000},
		{100, 1000, 120, 1000},
		{200, 1000, 100, 1000},
		{1, 10, 2, 10},
		{50, 5000, 80, 5000},
	}
	for _, c := range cases {
		res, err := DefaultConfig().ZTest(c[0], c[1], c[2], c[3])
		require.NoError(t, err)
		ci := res.ConfidenceInterval
		if res.IsSignificant {
			assert.False(t, ci.Lower < 0 && 0 < ci.Upper, "%v: %+v", c, ci)
		} else {
			assert.True(t, ci.Contains(0) || math.Abs(ci.Lower) < 1e-3 || math.Abs(ci.Upper) < 1e-3, "%v: %+v", c, ci)
		}
	}
}

func TestZTestRelativeLift(t *testing.T) {
	res, err := DefaultConfig().ZTest(100, 1000, 120, 1000)
	require.NoError(t, err)
	assert.InDelta(t, (0.12-0.10)/0.10, res.RelativeLift, 1e-10)
}

func TestZTestZeroBaseline(t *testing.T) {
	res, err := DefaultConfig().ZTest(0, 1000, 10, 1000)
	require.NoError(t, err)
	assert.Zero(t, res.RateA)
	assert.Greater(t, res.RateB, 0.0)
	assert.Zero(t, res.RelativeLift)
	assert.True(t, res.IsSignificant)
}

func TestZTestNoConversions(t *testing.T) {
	for _, n := range []int{1, 10, 1000} {
		res, err := DefaultConfig().ZTest(0, n, 0, n)
		require.NoError(t, err)
		assert.Equal(t, FrequentistResult{PValue: 1, ConfidenceLevel: 0.95}, res)
	}
}

func TestZTestAllConverted(t *testing.T) {
	res, err := DefaultConfig().ZTest(100, 100, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.RateA)
	assert.Equal(t, 1.0, res.RateB)
	assert.Equal(t, 0.0, res.AbsoluteDifference)
	assert.Equal(t, 0.0, res.ZStatistic)
	assert.Equal(t, 1.0, res.PValue)
	assert.False(t, res.IsSignificant)
	assert.Equal(t, Interval{}, res.ConfidenceInterval)
}

func TestZTestSmallSample(t *testing.T) {
	res, err := DefaultConfig().ZTest(1, 10, 2, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.5312, res.PValue, 1e-3)
	assert.False(t, res.IsSignificant)
}

func TestZTestConfidenceLevelFollowsAlpha(t *testing.T) {
	for _, alpha := range []float64{0.01, 0.05, 0.10} {
		c, err := NewConfig(alpha, 0.80)
		require.NoError(t, err)
		res, err := c.ZTest(120, 1500, 145, 1500)
		require.NoError(t, err)
		assert.InDelta(t, 1-alpha, res.ConfidenceLevel, 1e-12)
	}
}

func TestZTestValidation(t *testing.T) {
	cases := []struct {
		name                     string
		convA, visA, convB, visB int
		mention                  string
	}{
		{"zero visitors a", 0, 0, 1, 10, "visitors_a"},
		{"negative visitors b", 1, 10, 0, -5, "visitors_b"},
		{"negative conversions a", -1, 10, 1, 10, "conversions_a"},
		{"negative conversions b", 1, 10, -1, 10, "conversions_b"},
		{"conversions exceed visitors a", 11, 10, 1, 10, "conversions_a"},
		{"conversions exceed visitors b", 1, 10, 11, 10, "conversions_b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := DefaultConfig().ZTest(tc.convA, tc.visA, tc.convB, tc.visB)
			require.ErrorIs(t, err, ErrInvalidParameter)
			assert.Contains(t, err.Error(), tc.mention)
			assert.Equal(t, FrequentistResult{}, res)
		})
	}
}

func TestZTestHugeCounts(t *testing.T) {
	// the combined conversions exceed math.MaxInt
	half, threeQuarters := math.MaxInt/2+1, math.MaxInt/4*3
	res, err := DefaultConfig().ZTest(half, math.MaxInt, threeQuarters, math.MaxInt)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.AbsoluteDifference, 1e-9)
	assert.False(t, math.IsNaN(res.ZStatistic))
	assert.Greater(t, res.ZStatistic, 1e6)
	assert.Less(t, res.PValue, 1e-9)
	assert.True(t, res.IsSignificant)
}

func TestValidatePair(t *testing.T) {
	ok := Observation{Conversions: 5, Visitors: 5}
	assert.NoError(t, validatePair(Observation{Conversions: 0, Visitors: 1}, ok))

	tests := []struct {
		name string
		a, b Observation
		want string
	}{
		{"visitors before conversions", Observation{Conversions: -1, Visitors: 3}, Observation{Visitors: 0},
			"visitors_b 0 must be positive"},
		{"negative before excess", Observation{Conversions: 9, Visitors: 3}, Observation{Conversions: -2, Visitors: 3},
			"conversions_b -2 must not be negative"},
		{"excess in a", Observation{Conversions: 4, Visitors: 3}, ok,
			"conversions_a 4 exceed visitors_a 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePair(tt.a, tt.b)
			require.ErrorIs(t, err, ErrInvalidParameter)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.InDelta(t, 0.25, Observation{Conversions: 1, Visitors: 4}.Rate(), 1e-12)
}
