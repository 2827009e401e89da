package stats

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// BetaPosterior is a Beta(Alpha, Beta) distribution over a binomial rate.
type BetaPosterior struct {
	Alpha float64
	Beta  float64
}

// UniformPosterior returns the posterior of a rate after observing successes
// out of trials, starting from a Beta(1,1) prior.
func UniformPosterior(successes, trials int) BetaPosterior {
	return BetaPosterior{
		Alpha: 1 + float64(successes),
		Beta:  1 + float64(trials-successes),
	}
}

// Sample draws n independent values from the posterior using src.
func (p BetaPosterior) Sample(n int, src rand.Source) []float64 {
	d := distuv.Beta{Alpha: p.Alpha, Beta: p.Beta, Src: src}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}
