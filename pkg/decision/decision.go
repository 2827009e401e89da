package decision

import (
	"math"

	"github.com/yasi-python/abstat/pkg/abtest"
)

type Input struct {
	Frequentist abtest.FrequentistResult
	Bayesian    abtest.BayesianResult
	VisitorsA   int
	VisitorsB   int
	// RequiredPerGroup is the planned control-group size; 0 skips the
	// power check.
	RequiredPerGroup int
	// RequiredRatio scales RequiredPerGroup for group B; 0 means 1.
	RequiredRatio float64
	LossThreshold float64
}

type Action string

const (
	ActionKeepRunning Action = "keep_running"
	ActionShipB       Action = "ship_b"
	ActionKeepA       Action = "keep_a"
)

type Decision struct {
	Action       Action  `json:"action"`
	Reason       string  `json:"reason"`
	ExpectedLoss float64 `json:"expected_loss"`
}

func Evaluate(in Input) Decision {
	f, b := in.Frequentist, in.Bayesian
	if in.RequiredPerGroup > 0 {
		ratio := in.RequiredRatio
		if ratio <= 0 {
			ratio = abtest.DefaultRatio
		}
		needB := int(math.Ceil(float64(in.RequiredPerGroup) * ratio))
		if in.VisitorsA < in.RequiredPerGroup || in.VisitorsB < needB {
			return Decision{Action: ActionKeepRunning, Reason: "underpowered"}
		}
	}
	if !f.IsSignificant {
		return Decision{Action: ActionKeepA, Reason: "not_significant", ExpectedLoss: b.ExpectedLossChoosingA}
	}
	if f.AbsoluteDifference > 0 {
		if b.ExpectedLossChoosingB <= in.LossThreshold {
			return Decision{Action: ActionShipB, Reason: "significant_lift", ExpectedLoss: b.ExpectedLossChoosingB}
		}
		return Decision{Action: ActionKeepRunning, Reason: "loss_above_threshold", ExpectedLoss: b.ExpectedLossChoosingB}
	}
	if b.ExpectedLossChoosingA <= in.LossThreshold {
		return Decision{Action: ActionKeepA, Reason: "significant_drop", ExpectedLoss: b.ExpectedLossChoosingA}
	}
	return Decision{Action: ActionKeepRunning, Reason: "loss_above_threshold", ExpectedLoss: b.ExpectedLossChoosingA}
}
