// Package cli wires the statistics engine, config, logger and HTTP API into
// the abtest command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yasi-python/abstat/pkg/abtest"
	"github.com/yasi-python/abstat/pkg/config"
	"github.com/yasi-python/abstat/pkg/logger"
	"github.com/yasi-python/abstat/pkg/report"
)

const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

type app struct {
	cfgPath  string
	logLevel string
	format   string

	cfg *config.Config
	exp abtest.Config
	log *logger.Logger
}

// NewRootCommand builds the abtest command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "abtest",
		Short: "Sample sizes and significance for two-group conversion experiments",
		Long: `abtest plans and evaluates A/B conversion experiments.

Commands:
  plan      Per-group sample size for a baseline rate and relative effect
  ztest     Two-proportion z-test
  bayes     Beta-Binomial Monte Carlo comparison
  analyze   Both tests plus a ship/keep recommendation
  serve     JSON HTTP API with Prometheus metrics`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			// stderr is not syncable on every platform
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "YAML config file (defaults when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", FormatText, "output format: text|table|json")

	root.AddCommand(
		a.planCmd(),
		a.ztestCmd(),
		a.bayesCmd(),
		a.analyzeCmd(),
		a.demoCmd(),
		a.serveCmd(),
		a.checkConfigCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch a.format {
	case FormatText, FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", a.format)
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Service.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(cfg.Service.LogLevel, cmd.ErrOrStderr())
	if cmd.Name() == "check-config" {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.exp, err = cfg.Experiment()
	return err
}

// render writes res in the selected format. kind selects the text layout.
func (a *app) render(w io.Writer, res any, kind report.Kind) error {
	switch a.format {
	case FormatJSON:
		return report.JSON(w, res)
	case FormatTable:
		out, err := report.Table(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	default:
		out, err := report.Format(res, kind)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}
