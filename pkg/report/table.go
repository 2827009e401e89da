package report

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yasi-python/abstat/pkg/decision"
)

// Table renders a frequentist result, a Bayesian result or a decision as a
// two-column table with a coloured verdict row.
func Table(res any) (string, error) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})

	if r, ok := asFrequentist(res); ok {
		tbl.SetTitle("A/B test results (frequentist)")
		tbl.AppendRows([]table.Row{
			{"Conversion Rate A", fmt.Sprintf("%.4f", r.RateA)},
			{"Conversion Rate B", fmt.Sprintf("%.4f", r.RateB)},
			{"Absolute Difference", fmt.Sprintf("%.4f", r.AbsoluteDifference)},
			{"Relative Lift", percent(r.RelativeLift)},
			{"Z-Statistic", fmt.Sprintf("%.4f", r.ZStatistic)},
			{"P-Value", fmt.Sprintf("%.4f", r.PValue)},
			{levelLabel(r.ConfidenceLevel) + " CI", fmt.Sprintf("(%.4f, %.4f)",
				r.ConfidenceInterval.Lower, r.ConfidenceInterval.Upper)},
		})
		tbl.AppendSeparator()
		if r.IsSignificant {
			tbl.AppendRow(table.Row{"Significant", color.New(color.FgGreen).Sprint("True")})
		} else {
			tbl.AppendRow(table.Row{"Significant", color.New(color.FgYellow).Sprint("False")})
		}
		return tbl.Render(), nil
	}

	if r, ok := asBayesian(res); ok {
		tbl.SetTitle("A/B test results (bayesian)")
		tbl.AppendRows([]table.Row{
			{"Probability B > A", percent(r.ProbBBetterThanA)},
			{"Probability A > B", percent(r.ProbABetterThanB)},
			{"Expected Loss (choosing B)", fmt.Sprintf("%.6f", r.ExpectedLossChoosingB)},
			{"Expected Loss (choosing A)", fmt.Sprintf("%.6f", r.ExpectedLossChoosingA)},
			{"Posterior Mean A", fmt.Sprintf("%.4f", r.PosteriorMeanA)},
			{"Posterior Mean B", fmt.Sprintf("%.4f", r.PosteriorMeanB)},
			{"95% Credible Interval A", fmt.Sprintf("(%.4f, %.4f)",
				r.CredibleIntervalA.Lower, r.CredibleIntervalA.Upper)},
			{"95% Credible Interval B", fmt.Sprintf("(%.4f, %.4f)",
				r.CredibleIntervalB.Lower, r.CredibleIntervalB.Upper)},
			{"Simulations", r.Simulations},
		})
		tbl.AppendSeparator()
		leader, prob := "B", r.ProbBBetterThanA
		if r.ProbABetterThanB > r.ProbBBetterThanA {
			leader, prob = "A", r.ProbABetterThanB
		}
		tbl.AppendRow(table.Row{"Leader", color.New(color.FgCyan).Sprintf("%s (%s)", leader, percent(prob))})
		return tbl.Render(), nil
	}

	switch d := res.(type) {
	case decision.Decision:
		return decisionTable(tbl, d), nil
	case *decision.Decision:
		if d != nil {
			return decisionTable(tbl, *d), nil
		}
	}
	return "", fmt.Errorf("%w: %T", ErrUnknownKind, res)
}

// Recommendation renders a decision as a single line.
func Recommendation(d decision.Decision) string {
	return fmt.Sprintf("Recommendation: %s (%s, expected loss %.6f)", d.Action, d.Reason, d.ExpectedLoss)
}

func decisionTable(tbl table.Writer, d decision.Decision) string {
	tbl.SetTitle("Recommendation")
	attr := color.FgYellow
	switch d.Action {
	case decision.ActionShipB:
		attr = color.FgGreen
	case decision.ActionKeepA:
		attr = color.FgBlue
	}
	tbl.AppendRows([]table.Row{
		{"Action", color.New(attr).Sprint(string(d.Action))},
		{"Reason", d.Reason},
		{"Expected Loss", fmt.Sprintf("%.6f", d.ExpectedLoss)},
	})
	return tbl.Render()
}
