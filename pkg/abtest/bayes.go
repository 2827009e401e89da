package abtest

import (
	"math/rand/v2"

	"github.com/yasi-python/abstat/pkg/stats"
)

const (
	DefaultSimulations = 100000
	// MinSimulations is the smallest draw count that yields a credible
	// interval with distinct bounds.
	MinSimulations = 2

	credibleLower = 0.025
	credibleUpper = 0.975
)

// BayesianOptions controls the Monte Carlo estimate.
type BayesianOptions struct {
	// Simulations is the number of posterior draws per group. Zero means
	// DefaultSimulations.
	Simulations int
	// Src drives every draw of the call. Nil means a fresh generator seeded
	// from process entropy. A Source is not safe for concurrent use.
	Src rand.Source
}

// NewSource returns a deterministic generator for reproducible runs.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// BayesianResult is the Monte Carlo summary of two Beta posteriors.
type BayesianResult struct {
	ProbBBetterThanA      float64  `json:"prob_b_better_than_a"`
	ProbABetterThanB      float64  `json:"prob_a_better_than_b"`
	ExpectedLossChoosingA float64  `json:"expected_loss_choosing_a"`
	ExpectedLossChoosingB float64  `json:"expected_loss_choosing_b"`
	CredibleIntervalA     Interval `json:"credible_interval_a"`
	CredibleIntervalB     Interval `json:"credible_interval_b"`
	PosteriorMeanA        float64  `json:"posterior_mean_a"`
	PosteriorMeanB        float64  `json:"posterior_mean_b"`
	Simulations           int      `json:"simulations"`
}

// BayesianTest compares the groups under independent Beta(1,1) priors.
func BayesianTest(convA, visA, convB, visB int, opts BayesianOptions) (BayesianResult, error) {
	return BayesianTestObservations(
		Observation{Conversions: convA, Visitors: visA},
		Observation{Conversions: convB, Visitors: visB},
		opts,
	)
}

// BayesianTestObservations is BayesianTest over Observation values.
//
// Group A is sampled first, then group B, each draw sequence taken
// independently from opts.Src. Draws are paired by index to estimate
// P(B > A) and the expected loss of each choice.
func BayesianTestObservations(a, b Observation, opts BayesianOptions) (BayesianResult, error) {
	if err := validatePair(a, b); err != nil {
		return BayesianResult{}, err
	}
	n := opts.Simulations
	if n == 0 {
		n = DefaultSimulations
	}
	if n < MinSimulations {
		return BayesianResult{}, invalid("simulations %d below minimum %d", n, MinSimulations)
	}
	src := opts.Src
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	drawsA := stats.UniformPosterior(a.Conversions, a.Visitors).Sample(n, src)
	drawsB := stats.UniformPosterior(b.Conversions, b.Visitors).Sample(n, src)

	var wins int
	var regretA, regretB float64
	for i := range drawsA {
		d := drawsB[i] - drawsA[i]
		switch {
		case d > 0:
			wins++
			regretA += d
		case d < 0:
			regretB -= d
		}
	}

	probB := float64(wins) / float64(n)
	ciA := stats.Quantiles(drawsA, credibleLower, credibleUpper)
	ciB := stats.Quantiles(drawsB, credibleLower, credibleUpper)

	return BayesianResult{
		ProbBBetterThanA:      probB,
		ProbABetterThanB:      1 - probB,
		ExpectedLossChoosingA: regretA / float64(n),
		ExpectedLossChoosingB: regretB / float64(n),
		CredibleIntervalA:     Interval{Lower: ciA[0], Upper: ciA[1]},
		CredibleIntervalB:     Interval{Lower: ciB[0], Upper: ciB[1]},
		PosteriorMeanA:        stats.Mean(drawsA),
		PosteriorMeanB:        stats.Mean(drawsB),
		Simulations:           n,
	}, nil
}
