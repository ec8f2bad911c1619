package finance

import (
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// Band classifies remaining EMI headroom.
type Band string

const (
	BandSafe     Band = "safe"
	BandCaution  Band = "caution"
	BandExceeded Band = "exceeded"
)

// Message returns the user-facing sentence for the band.
func (b Band) Message() string {
	switch b {
	case BandSafe:
		return "✅ You're within the safe EMI limit."
	case BandCaution:
		return "⚠️ Caution! You're approaching your EMI limit."
	default:
		return "❌ You've exceeded the recommended EMI threshold."
	}
}

// ClassifyHeadroom maps headroom onto the fixed policy bands.
func ClassifyHeadroom(headroom float64) Band {
	switch {
	case headroom > constants.SafeHeadroomThreshold:
		return BandSafe
	case headroom >= 0:
		return BandCaution
	default:
		return BandExceeded
	}
}

// Affordability is the evaluated debt capacity for an income.
type Affordability struct {
	Capacity            float64
	Headroom            float64
	Band                Band
	CurrentRatioPercent float64
}

// EvaluateAffordability applies a debt-to-income safety ratio to a monthly
// income and compares the resulting capacity with an existing obligation.
func EvaluateAffordability(monthlyIncome, obligation, ratio float64) (Affordability, bool) {
	if !mathutil.AllFinite(monthlyIncome, obligation, ratio) {
		return Affordability{}, false
	}
	if monthlyIncome <= 0 || obligation < 0 || ratio <= 0 || ratio >= 1 {
		return Affordability{}, false
	}

	capacity := monthlyIncome * ratio
	headroom := capacity - obligation
	return Affordability{
		Capacity:            capacity,
		Headroom:            headroom,
		Band:                ClassifyHeadroom(headroom),
		CurrentRatioPercent: mathutil.CalculatePercentage(obligation, monthlyIncome),
	}, true
}

// Evaluate uses the default debt-to-income limit.
func Evaluate(monthlyIncome, obligation float64) (Affordability, bool) {
	return EvaluateAffordability(monthlyIncome, obligation, constants.DebtToIncomeLimit)
}
