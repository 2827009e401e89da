// Package report renders experiment results for people: the fixed-layout
// text block, a table, and JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yasi-python/abstat/pkg/abtest"
)

type Kind string

const (
	Frequentist Kind = "frequentist"
	Bayesian    Kind = "bayesian"
)

var (
	ErrUnknownKind  = errors.New("unknown_result_kind")
	ErrKindMismatch = errors.New("result_kind_mismatch")
)

const rule = "============================================================"

// Format renders res as the fixed text block for kind. res must be an
// abtest.FrequentistResult or abtest.BayesianResult (or a pointer to one)
// matching kind.
func Format(res any, kind Kind) (string, error) {
	var b strings.Builder
	switch kind {
	case Frequentist:
		r, ok := asFrequentist(res)
		if !ok {
			return "", fmt.Errorf("%w: %T is not a %s result", ErrKindMismatch, res, kind)
		}
		header(&b, kind)
		fmt.Fprintf(&b, "Conversion Rate A: %.4f\n", r.RateA)
		fmt.Fprintf(&b, "Conversion Rate B: %.4f\n", r.RateB)
		fmt.Fprintf(&b, "Absolute Difference: %.4f\n", r.AbsoluteDifference)
		fmt.Fprintf(&b, "Relative Lift: %s\n", percent(r.RelativeLift))
		fmt.Fprintf(&b, "Z-Statistic: %.4f\n", r.ZStatistic)
		fmt.Fprintf(&b, "P-Value: %.4f\n", r.PValue)
		fmt.Fprintf(&b, "Significant: %s\n", pyBool(r.IsSignificant))
		fmt.Fprintf(&b, "%s CI: (%.4f, %.4f)\n", levelLabel(r.ConfidenceLevel),
			r.ConfidenceInterval.Lower, r.ConfidenceInterval.Upper)
	case Bayesian:
		r, ok := asBayesian(res)
		if !ok {
			return "", fmt.Errorf("%w: %T is not a %s result", ErrKindMismatch, res, kind)
		}
		header(&b, kind)
		fmt.Fprintf(&b, "Probability B > A: %s\n", percent(r.ProbBBetterThanA))
		fmt.Fprintf(&b, "Probability A > B: %s\n", percent(r.ProbABetterThanB))
		fmt.Fprintf(&b, "Expected Loss (choosing B): %.6f\n", r.ExpectedLossChoosingB)
		fmt.Fprintf(&b, "Expected Loss (choosing A): %.6f\n", r.ExpectedLossChoosingA)
		fmt.Fprintf(&b, "Posterior Mean A: %.4f\n", r.PosteriorMeanA)
		fmt.Fprintf(&b, "Posterior Mean B: %.4f\n", r.PosteriorMeanB)
		fmt.Fprintf(&b, "95%% Credible Interval A: (%.4f, %.4f)\n",
			r.CredibleIntervalA.Lower, r.CredibleIntervalA.Upper)
		fmt.Fprintf(&b, "95%% Credible Interval B: (%.4f, %.4f)\n",
			r.CredibleIntervalB.Lower, r.CredibleIntervalB.Upper)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	b.WriteString(rule + "\n")
	return b.String(), nil
}

// Plan renders a sample-size answer. ratio is treatment/control.
func Plan(n int, ratio float64) string {
	if ratio == abtest.DefaultRatio {
		return "Required sample size per group: " + humanize.Comma(int64(n))
	}
	treatment := int64(math.Ceil(float64(n) * ratio))
	return fmt.Sprintf("Required sample size: control %s, treatment %s",
		humanize.Comma(int64(n)), humanize.Comma(treatment))
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func header(b *strings.Builder, kind Kind) {
	b.WriteString(rule + "\n")
	fmt.Fprintf(b, "A/B TEST RESULTS (%s)\n", strings.ToUpper(string(kind)))
	b.WriteString(rule + "\n")
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// levelLabel turns 0.95 into "95%" and 0.975 into "97.5%".
func levelLabel(level float64) string {
	pct := math.Round(level*1000) / 10
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func asFrequentist(res any) (abtest.FrequentistResult, bool) {
	switch r := res.(type) {
	case abtest.FrequentistResult:
		return r, true
	case *abtest.FrequentistResult:
		if r != nil {
			return *r, true
		}
	}
	return abtest.FrequentistResult{}, false
}

func asBayesian(res any) (abtest.BayesianResult, bool) {
	switch r := res.(type) {
	case abtest.BayesianResult:
		return r, true
	case *abtest.BayesianResult:
		if r != nil {
			return *r, true
		}
	}
	return abtest.BayesianResult{}, false
}
