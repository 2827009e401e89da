package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasi-python/abstat/pkg/abtest"
	"github.com/yasi-python/abstat/pkg/decision"
)

func init() {
	color.NoColor = true
}

func TestFormatFrequentist(t *testing.T) {
	res, err := abtest.DefaultConfig().ZTest(120, 1500, 145, 1500)
	require.NoError(t, err)

	out, err := Format(res, Frequentist)
	require.NoError(t, err)

	want := strings.Join([]string{
		rule,
		"A/B TEST RESULTS (FREQUENTIST)",
		rule,
		"Conversion Rate A: 0.0800",
		"Conversion Rate B: 0.0967",
		"Absolute Difference: 0.0167",
		"Relative Lift: 20.83%",
		"Z-Statistic: 1.6084",
		"P-Value: 0.1077",
		"Significant: False",
		"95% CI: (-0.0036, 0.0370)",
		rule,
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFormatBayesian(t *testing.T) {
	res := abtest.BayesianResult{
		ProbBBetterThanA:      0.9466,
		ProbABetterThanB:      0.0534,
		ExpectedLossChoosingA: 0.0171234,
		ExpectedLossChoosingB: 0.0001234,
		CredibleIntervalA:     abtest.Interval{Lower: 0.0672, Upper: 0.0946},
		CredibleIntervalB:     abtest.Interval{Lower: 0.0823, Upper: 0.1125},
		PosteriorMeanA:        0.0805,
		PosteriorMeanB:        0.0972,
	}
	out, err := Format(&res, Bayesian)
	require.NoError(t, err)

	assert.Contains(t, out, "A/B TEST RESULTS (BAYESIAN)\n")
	assert.Contains(t, out, "Probability B > A: 94.66%\n")
	assert.Contains(t, out, "Probability A > B: 5.34%\n")
	assert.Contains(t, out, "Expected Loss (choosing B): 0.000123\n")
	assert.Contains(t, out, "Expected Loss (choosing A): 0.017123\n")
	assert.Contains(t, out, "Posterior Mean A: 0.0805\n")
	assert.Contains(t, out, "95% Credible Interval B: (0.0823, 0.1125)\n")
	assert.Less(t, strings.Index(out, "Expected Loss (choosing B)"), strings.Index(out, "Expected Loss (choosing A)"))
	assert.True(t, strings.HasSuffix(out, rule+"\n"))
}

func TestFormatErrors(t *testing.T) {
	_, err := Format(abtest.FrequentistResult{}, "sequential")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Format(abtest.FrequentistResult{}, Bayesian)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Format((*abtest.BayesianResult)(nil), Bayesian)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "95%", levelLabel(1-0.05))
	assert.Equal(t, "99%", levelLabel(1-0.01))
	assert.Equal(t, "90%", levelLabel(1-0.10))
	assert.Equal(t, "97.5%", levelLabel(0.975))
}

func TestPlan(t *testing.T) {
	assert.Equal(t, "Required sample size per group: 3,841", Plan(3841, 1))
	assert.Equal(t, "Required sample size: control 2,911, treatment 5,822", Plan(2911, 2))
}

func TestTable(t *testing.T) {
	f, err := abtest.DefaultConfig().ZTest(100, 1000, 200, 1000)
	require.NoError(t, err)
	out, err := Table(f)
	require.NoError(t, err)
	assert.Contains(t, out, "Conversion Rate A")
	assert.Contains(t, out, "0.1000")
	assert.Contains(t, out, "True")

	b := abtest.BayesianResult{ProbBBetterThanA: 0.25, ProbABetterThanB: 0.75, Simulations: 10}
	out, err = Table(&b)
	require.NoError(t, err)
	assert.Contains(t, out, "A (75.00%)")

	out, err = Table(decision.Decision{Action: decision.ActionShipB, Reason: "significant_lift"})
	require.NoError(t, err)
	assert.Contains(t, out, "ship_b")

	_, err = Table(42)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRecommendation(t *testing.T) {
	d := decision.Decision{Action: decision.ActionKeepA, Reason: "not_significant", ExpectedLoss: 0.0000126}
	assert.Equal(t, "Recommendation: keep_a (not_significant, expected loss 0.000013)", Recommendation(d))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	res, err := abtest.DefaultConfig().ZTest(0, 10, 0, 10)
	require.NoError(t, err)
	require.NoError(t, JSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1.0, decoded["p_value"])
	assert.Equal(t, false, decoded["is_significant"])
	assert.Contains(t, decoded, "confidence_interval")
}
