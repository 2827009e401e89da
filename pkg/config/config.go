package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yasi-python/abstat/pkg/abtest"
)

type ExperimentCfg struct {
	Alpha float64 `yaml:"alpha"`
	Power float64 `yaml:"power"`
}

type BayesianCfg struct {
	Simulations int `yaml:"simulations"`
	// Seed makes every Bayesian run reproducible when set.
	Seed *uint64 `yaml:"seed"`
}

type DecisionCfg struct {
	LossThreshold float64 `yaml:"loss_threshold"`
}

type ServiceCfg struct {
	HTTPListen     string `yaml:"http_listen"`
	MetricsPath    string `yaml:"metrics_path"`
	HealthzPath    string `yaml:"healthz_path"`
	LogLevel       string `yaml:"log_level"`
	MaxSimulations int    `yaml:"max_simulations"`
}

type Config struct {
	Experiment ExperimentCfg `yaml:"experiment"`
	Bayesian   BayesianCfg   `yaml:"bayesian"`
	Decision   DecisionCfg   `yaml:"decision"`
	Service    ServiceCfg    `yaml:"service"`
}

func Default() *Config {
	return &Config{
		Experiment: ExperimentCfg{Alpha: abtest.DefaultAlpha, Power: abtest.DefaultPower},
		Bayesian:   BayesianCfg{Simulations: abtest.DefaultSimulations},
		Decision:   DecisionCfg{LossThreshold: 0.001},
		Service: ServiceCfg{
			HTTPListen:     ":8080",
			MetricsPath:    "/metrics",
			HealthzPath:    "/healthz",
			LogLevel:       "info",
			MaxSimulations: 1000000,
		},
	}
}

// Load reads a YAML file over Default(), so keys absent from the file keep
// their defaults and explicit values, zero included, are kept for Validate.
// An empty path returns Default().
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Experiment builds the validated alpha/power pair.
func (c *Config) Experiment() (abtest.Config, error) {
	return abtest.NewConfig(c.Experiment.Alpha, c.Experiment.Power)
}

// BayesianOptions returns the Monte Carlo settings, seeded when a seed is
// configured.
func (c *Config) BayesianOptions() abtest.BayesianOptions {
	opts := abtest.BayesianOptions{Simulations: c.Bayesian.Simulations}
	if c.Bayesian.Seed != nil {
		opts.Src = abtest.NewSource(*c.Bayesian.Seed)
	}
	return opts
}

func (c *Config) Validate() error {
	if _, err := c.Experiment(); err != nil {
		return fmt.Errorf("experiment: %w", err)
	}
	if c.Bayesian.Simulations < abtest.MinSimulations {
		return fmt.Errorf("bayesian.simulations %d below %d", c.Bayesian.Simulations, abtest.MinSimulations)
	}
	if c.Service.MaxSimulations < c.Bayesian.Simulations {
		return fmt.Errorf("service.max_simulations %d below bayesian.simulations %d",
			c.Service.MaxSimulations, c.Bayesian.Simulations)
	}
	if c.Service.HTTPListen == "" {
		return fmt.Errorf("service.http_listen must not be empty")
	}
	if !strings.HasPrefix(c.Service.MetricsPath, "/") || !strings.HasPrefix(c.Service.HealthzPath, "/") {
		return fmt.Errorf("service.metrics_path %q and service.healthz_path %q must start with /",
			c.Service.MetricsPath, c.Service.HealthzPath)
	}
	if c.Decision.LossThreshold < 0 {
		return fmt.Errorf("decision.loss_threshold %v must not be negative", c.Decision.LossThreshold)
	}
	return nil
}
