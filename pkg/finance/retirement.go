package finance

import (
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// RetirementInputs describes today's spending and the expected rates. Rates
// are percentages.
type RetirementInputs struct {
	CurrentAge                  int
	RetirementAge               int
	MonthlyExpenses             float64
	InflationRatePercent        float64
	PostRetirementReturnPercent float64
}

// RetirementPlan is the corpus needed to fund retirement spending forever.
type RetirementPlan struct {
	YearsToRetirement        int
	AnnualExpensesToday      float64
	InflationAdjustedExpense float64
	RealReturn               float64
	Corpus                   float64
}

// PerpetualCorpus sizes a corpus whose real return pays the inflated annual
// expense indefinitely. A post-retirement return at or below inflation has no
// finite answer.
func PerpetualCorpus(in RetirementInputs) (RetirementPlan, bool) {
	if !mathutil.AllFinite(in.MonthlyExpenses, in.InflationRatePercent, in.PostRetirementReturnPercent) {
		return RetirementPlan{}, false
	}
	if in.CurrentAge < 0 || in.RetirementAge < in.CurrentAge || in.MonthlyExpenses <= 0 || in.InflationRatePercent < 0 {
		return RetirementPlan{}, false
	}

	realReturn := mathutil.PercentToFraction(in.PostRetirementReturnPercent - in.InflationRatePercent)
	if realReturn <= 0 {
		return RetirementPlan{}, false
	}

	years := in.RetirementAge - in.CurrentAge
	annual := in.MonthlyExpenses * constants.MonthsPerYear
	inflated := annual * math.Pow(1+mathutil.PercentToFraction(in.InflationRatePercent), float64(years))
	if !mathutil.AllFinite(annual, inflated, inflated/realReturn) {
		return RetirementPlan{}, false
	}

	return RetirementPlan{
		YearsToRetirement:        years,
		AnnualExpensesToday:      annual,
		InflationAdjustedExpense: inflated,
		RealReturn:               realReturn,
		Corpus:                   inflated / realReturn,
	}, true
}

// ExpensePath returns the annual expense at the start of each year from now
// until retirement inclusive.
func ExpensePath(in RetirementInputs) ([]float64, bool) {
	plan, ok := PerpetualCorpus(in)
	if !ok {
		return nil, false
	}
	growth := 1 + mathutil.PercentToFraction(in.InflationRatePercent)
	path := make([]float64, 0, plan.YearsToRetirement+1)
	for y := 0; y <= plan.YearsToRetirement; y++ {
		path = append(path, plan.AnnualExpensesToday*math.Pow(growth, float64(y)))
	}
	return path, true
}
