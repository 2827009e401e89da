package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yasi-python/abstat/pkg/abtest"
)

const (
	OpSampleSize = "sample_size"
	OpZTest      = "ztest"
	OpBayesian   = "bayesian"
)

var (
	Computations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "abtest_computations_total", Help: "Statistical computations by operation and result",
	}, []string{"operation", "result"})
	Duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "abtest_computation_seconds", Help: "Computation latency",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"operation"})
	PosteriorDraws = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "abtest_posterior_draws_total", Help: "Monte Carlo posterior draws",
	})
)

// InFlightGauge exposes the number of API requests being served, read from
// inFlight at scrape time.
func InFlightGauge(inFlight func() int64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "abtest_api_requests_in_flight", Help: "API requests being served",
	}, func() float64 { return float64(inFlight()) })
}

func MustRegister() {
	prometheus.MustRegister(Computations, Duration, PosteriorDraws)
}

// Observe records one computation that started at start and ended with err.
func Observe(op string, start time.Time, err error) {
	Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	Computations.WithLabelValues(op, Result(err)).Inc()
}

// Result maps an operation error onto the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, abtest.ErrInfeasibleEffectSize):
		return "infeasible"
	case errors.Is(err, abtest.ErrSampleSizeOverflow):
		return "overflow"
	case errors.Is(err, abtest.ErrInvalidParameter):
		return "invalid"
	default:
		return "error"
	}
}
