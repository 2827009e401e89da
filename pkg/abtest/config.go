package abtest

const (
	DefaultAlpha = 0.05
	DefaultPower = 0.80
)

// Config is the significance level and target power of an experiment.
// It is immutable; build it with NewConfig or DefaultConfig and pass it by
// value to each operation.
type Config struct {
	alpha float64
	power float64
	beta  float64
}

// NewConfig validates alpha and power, both of which must lie strictly
// between 0 and 1.
func NewConfig(alpha, power float64) (Config, error) {
	if !inOpenUnit(alpha) {
		return Config{}, invalid("alpha %v outside (0,1)", alpha)
	}
	if !inOpenUnit(power) {
		return Config{}, invalid("power %v outside (0,1)", power)
	}
	return Config{alpha: alpha, power: power, beta: 1 - power}, nil
}

// DefaultConfig returns alpha 0.05 and power 0.80.
func DefaultConfig() Config {
	return Config{alpha: DefaultAlpha, power: DefaultPower, beta: 1 - DefaultPower}
}

// Alpha is the Type I error rate.
func (c Config) Alpha() float64 { return c.alpha }

// Power is the probability of detecting a true effect.
func (c Config) Power() float64 { return c.power }

// Beta is the Type II error rate, 1 - Power.
func (c Config) Beta() float64 { return c.beta }

// ConfidenceLevel is 1 - Alpha.
func (c Config) ConfidenceLevel() float64 { return 1 - c.alpha }

// inOpenUnit is false for NaN.
func inOpenUnit(x float64) bool { return x > 0 && x < 1 }
