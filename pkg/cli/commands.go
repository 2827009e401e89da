package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yasi-python/abstat/pkg/abtest"
	"github.com/yasi-python/abstat/pkg/api"
	"github.com/yasi-python/abstat/pkg/decision"
	"github.com/yasi-python/abstat/pkg/metrics"
	"github.com/yasi-python/abstat/pkg/report"
)

type groupFlags struct {
	convA, visA, convB, visB int
}

func (g *groupFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.convA, "conv-a", 0, "conversions in control (A)")
	cmd.Flags().IntVar(&g.visA, "visitors-a", 0, "visitors in control (A)")
	cmd.Flags().IntVar(&g.convB, "conv-b", 0, "conversions in treatment (B)")
	cmd.Flags().IntVar(&g.visB, "visitors-b", 0, "visitors in treatment (B)")
	_ = cmd.MarkFlagRequired("visitors-a")
	_ = cmd.MarkFlagRequired("visitors-b")
}

type bayesFlags struct {
	simulations int
	seed        uint64
}

func (b *bayesFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&b.simulations, "simulations", 0, "posterior draws per group (config default when 0)")
	cmd.Flags().Uint64Var(&b.seed, "seed", 0, "seed for reproducible draws")
}

func (a *app) bayesOptions(cmd *cobra.Command, b bayesFlags) abtest.BayesianOptions {
	opts := a.cfg.BayesianOptions()
	if b.simulations != 0 {
		opts.Simulations = b.simulations
	}
	if cmd.Flags().Changed("seed") {
		opts.Src = abtest.NewSource(b.seed)
	}
	return opts
}

type planResult struct {
	SampleSize int     `json:"sample_size"`
	Ratio      float64 `json:"ratio"`
}

func (a *app) planCmd() *cobra.Command {
	var baseline, mde, ratio float64
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Required control-group sample size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.exp.SampleSize(baseline, mde, ratio)
			if err != nil {
				return err
			}
			a.log.Debug("sample_size", "baseline_rate", baseline, "mde", mde, "ratio", ratio, "n", n)
			if a.format == FormatJSON {
				return report.JSON(cmd.OutOrStdout(), planResult{SampleSize: n, Ratio: ratio})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Plan(n, ratio))
			return err
		},
	}
	cmd.Flags().Float64Var(&baseline, "baseline", 0, "baseline conversion rate in (0,1)")
	cmd.Flags().Float64Var(&mde, "mde", 0, "minimum detectable relative effect, e.g. 0.2 for +20%")
	cmd.Flags().Float64Var(&ratio, "ratio", abtest.DefaultRatio, "treatment-to-control size ratio")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("mde")
	return cmd
}

func (a *app) ztestCmd() *cobra.Command {
	var g groupFlags
	cmd := &cobra.Command{
		Use:   "ztest",
		Short: "Two-proportion z-test of B against A",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.exp.ZTest(g.convA, g.visA, g.convB, g.visB)
			if err != nil {
				return err
			}
			a.log.Debug("ztest", "p_value", res.PValue, "significant", res.IsSignificant)
			return a.render(cmd.OutOrStdout(), res, report.Frequentist)
		},
	}
	g.register(cmd)
	return cmd
}

func (a *app) bayesCmd() *cobra.Command {
	var g groupFlags
	var b bayesFlags
	cmd := &cobra.Command{
		Use:   "bayes",
		Short: "Beta-Binomial Monte Carlo comparison of B and A",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := abtest.BayesianTest(g.convA, g.visA, g.convB, g.visB, a.bayesOptions(cmd, b))
			if err != nil {
				return err
			}
			a.log.Debug("bayesian", "prob_b_better_than_a", res.ProbBBetterThanA, "simulations", res.Simulations)
			return a.render(cmd.OutOrStdout(), res, report.Bayesian)
		},
	}
	g.register(cmd)
	b.register(cmd)
	return cmd
}

type analysis struct {
	Plan        *planResult              `json:"plan,omitempty"`
	Frequentist abtest.FrequentistResult `json:"frequentist"`
	Bayesian    abtest.BayesianResult    `json:"bayesian"`
	Decision    decision.Decision        `json:"decision"`
}

func (a *app) analyzeCmd() *cobra.Command {
	var g groupFlags
	var b bayesFlags
	var baseline, mde, ratio float64
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run both tests and recommend an action",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out analysis
			if cmd.Flags().Changed("baseline") || cmd.Flags().Changed("mde") {
				n, err := a.exp.SampleSize(baseline, mde, ratio)
				if err != nil {
					return err
				}
				out.Plan = &planResult{SampleSize: n, Ratio: ratio}
			}
			var err error
			if out.Frequentist, err = a.exp.ZTest(g.convA, g.visA, g.convB, g.visB); err != nil {
				return err
			}
			if out.Bayesian, err = abtest.BayesianTest(g.convA, g.visA, g.convB, g.visB, a.bayesOptions(cmd, b)); err != nil {
				return err
			}
			in := decision.Input{
				Frequentist:   out.Frequentist,
				Bayesian:      out.Bayesian,
				VisitorsA:     g.visA,
				VisitorsB:     g.visB,
				LossThreshold: a.cfg.Decision.LossThreshold,
			}
			if out.Plan != nil {
				in.RequiredPerGroup = out.Plan.SampleSize
				in.RequiredRatio = ratio
			}
			out.Decision = decision.Evaluate(in)
			a.log.Info("analysis", "action", out.Decision.Action, "reason", out.Decision.Reason)
			return a.renderAnalysis(cmd, out)
		},
	}
	g.register(cmd)
	b.register(cmd)
	cmd.Flags().Float64Var(&baseline, "baseline", 0, "planned baseline rate; enables the sample size check")
	cmd.Flags().Float64Var(&mde, "mde", 0, "planned minimum detectable relative effect")
	cmd.Flags().Float64Var(&ratio, "ratio", abtest.DefaultRatio, "planned treatment-to-control ratio")
	return cmd
}

func (a *app) renderAnalysis(cmd *cobra.Command, out analysis) error {
	w := cmd.OutOrStdout()
	if a.format == FormatJSON {
		return report.JSON(w, out)
	}
	if out.Plan != nil {
		fmt.Fprintln(w, report.Plan(out.Plan.SampleSize, out.Plan.Ratio))
		fmt.Fprintln(w)
	}
	if err := a.render(w, out.Frequentist, report.Frequentist); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := a.render(w, out.Bayesian, report.Bayesian); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if a.format == FormatTable {
		return a.render(w, out.Decision, "")
	}
	_, err := fmt.Fprintln(w, report.Recommendation(out.Decision))
	return err
}

// demoCmd runs the worked example: 10% baseline, +20% effect, and
// 120/1500 against 145/1500.
func (a *app) demoCmd() *cobra.Command {
	var b bayesFlags
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in worked example",
		RunE: func(cmd *cobra.Command, _ []string) error {
			const convA, visA, convB, visB = 120, 1500, 145, 1500
			n, err := a.exp.SampleSize(0.10, 0.20, abtest.DefaultRatio)
			if err != nil {
				return err
			}
			out := analysis{Plan: &planResult{SampleSize: n, Ratio: abtest.DefaultRatio}}
			if out.Frequentist, err = a.exp.ZTest(convA, visA, convB, visB); err != nil {
				return err
			}
			if out.Bayesian, err = abtest.BayesianTest(convA, visA, convB, visB, a.bayesOptions(cmd, b)); err != nil {
				return err
			}
			out.Decision = decision.Evaluate(decision.Input{
				Frequentist:      out.Frequentist,
				Bayesian:         out.Bayesian,
				VisitorsA:        visA,
				VisitorsB:        visB,
				RequiredPerGroup: n,
				RequiredRatio:    abtest.DefaultRatio,
				LossThreshold:    a.cfg.Decision.LossThreshold,
			})

			w := cmd.OutOrStdout()
			if a.format == FormatJSON {
				return report.JSON(w, out)
			}
			fmt.Fprintln(w, "Sample Size Calculation:")
			fmt.Fprintln(w, "------------------------------------------------------------")
			fmt.Fprintln(w, report.Plan(n, abtest.DefaultRatio))
			fmt.Fprintln(w)
			if err := a.render(w, out.Frequentist, report.Frequentist); err != nil {
				return err
			}
			fmt.Fprintln(w)
			return a.render(w, out.Bayesian, report.Bayesian)
		},
	}
	b.register(cmd)
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API with healthz and Prometheus metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.cfg.Service.HTTPListen
			}
			metrics.MustRegister()
			srv := api.New(a.exp, a.log, a.cfg.Service.MetricsPath, a.cfg.Service.HealthzPath)
			srv.Simulations = a.cfg.Bayesian.Simulations
			srv.Seed = a.cfg.Bayesian.Seed
			srv.MaxSimulations = a.cfg.Service.MaxSimulations
			prometheus.MustRegister(metrics.InFlightGauge(srv.InFlight))

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			a.log.Info("api_listen", "addr", listen, "alpha", a.exp.Alpha(), "power", a.exp.Power())
			err := srv.Run(ctx, listen)
			a.log.Info("api_stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides service.http_listen)")
	return cmd
}

func (a *app) checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "config ok: alpha=%v power=%v simulations=%d\n",
				a.cfg.Experiment.Alpha, a.cfg.Experiment.Power, a.cfg.Bayesian.Simulations)
			return err
		},
	}
}
