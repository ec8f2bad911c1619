package finance

import (
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// LumpSum projects a one-time investment forward by whole years. When
// inflationAdjusted is set the fixed inflation assumption is subtracted from
// the growth rate before compounding.
func LumpSum(principal, annualRatePercent float64, years int, inflationAdjusted bool) (float64, bool) {
	if !mathutil.AllFinite(principal, annualRatePercent) || principal <= 0 || years < 0 {
		return 0, false
	}

	rate := mathutil.PercentToFraction(annualRatePercent)
	if inflationAdjusted {
		rate -= constants.InflationAssumption
	}
	if rate <= -1 {
		return 0, false
	}

	value := principal * math.Pow(1+rate, float64(years))
	if !mathutil.IsFinite(value) {
		return 0, false
	}
	return value, true
}

// LumpSumPath returns the nominal value at the end of each year 1..years.
func LumpSumPath(principal, annualRatePercent float64, years int) ([]float64, bool) {
	if _, ok := LumpSum(principal, annualRatePercent, years, false); !ok {
		return nil, false
	}
	rate := mathutil.PercentToFraction(annualRatePercent)
	path := make([]float64, 0, years)
	for i := 1; i <= years; i++ {
		value := principal * math.Pow(1+rate, float64(i))
		if !mathutil.IsFinite(value) {
			return nil, false
		}
		path = append(path, value)
	}
	return path, true
}

// StepUp raises the periodic contribution by Percent every EveryNPeriods periods.
type StepUp struct {
	Percent       float64
	EveryNPeriods int
}

// ContributionPlan is a stream of periodic contributions compounding monthly.
type ContributionPlan struct {
	PeriodicAmount    float64
	GrowthRatePercent float64
	StepUp            *StepUp
	HorizonPeriods    int
}

// NewMonthlyPlan builds a plan from an annual rate and a horizon in years.
func NewMonthlyPlan(amount, annualRatePercent float64, years int, stepUp *StepUp) ContributionPlan {
	return ContributionPlan{
		PeriodicAmount:    amount,
		GrowthRatePercent: annualRatePercent,
		StepUp:            stepUp,
		HorizonPeriods:    years * constants.MonthsPerYear,
	}
}

// Valid reports whether the plan can be projected.
func (p ContributionPlan) Valid() bool {
	if !mathutil.AllFinite(p.PeriodicAmount, p.GrowthRatePercent) {
		return false
	}
	if p.PeriodicAmount <= 0 || p.HorizonPeriods <= 0 {
		return false
	}
	if p.StepUp != nil {
		if !mathutil.IsFinite(p.StepUp.Percent) || p.StepUp.EveryNPeriods <= 0 {
			return false
		}
	}
	return true
}

// Years returns the plan horizon in years.
func (p ContributionPlan) Years() float64 {
	return float64(p.HorizonPeriods) / constants.MonthsPerYear
}

// contribution returns the amount paid in period m (zero-based).
func (p ContributionPlan) contribution(m int) float64 {
	if p.StepUp == nil {
		return p.PeriodicAmount
	}
	steps := m / p.StepUp.EveryNPeriods
	return p.PeriodicAmount * math.Pow(1+mathutil.PercentToFraction(p.StepUp.Percent), float64(steps))
}

// accumulate sums the first periods contributions, each compounded to the end
// of that window. The step-up breaks the constant-payment assumption so this is
// a per-period sum rather than the closed-form annuity.
func (p ContributionPlan) accumulate(periods int) (invested, value float64) {
	r := MonthlyRate(p.GrowthRatePercent)
	for m := 0; m < periods; m++ {
		c := p.contribution(m)
		invested += c
		value += c * math.Pow(1+r, float64(periods-m))
	}
	return invested, value
}

// FutureValue returns the nominal value of the plan at its horizon.
func (p ContributionPlan) FutureValue() (float64, bool) {
	if !p.Valid() {
		return 0, false
	}
	_, value := p.accumulate(p.HorizonPeriods)
	if !mathutil.IsFinite(value) {
		return 0, false
	}
	return value, true
}

// Projection is the result of a contribution plan projection.
type Projection struct {
	Invested    float64
	FutureValue float64
}

// Gain is the value added on top of the invested amount, floored at zero.
func (p Projection) Gain() float64 {
	return math.Max(0, p.FutureValue-p.Invested)
}

// ProjectContributions computes invested total and future value. Inflation
// deflation, when requested, is applied once to the final total.
func ProjectContributions(plan ContributionPlan, inflationAdjusted bool) (Projection, bool) {
	if !plan.Valid() {
		return Projection{}, false
	}
	invested, value := plan.accumulate(plan.HorizonPeriods)
	if inflationAdjusted {
		value /= math.Pow(1+constants.InflationAssumption, plan.Years())
	}
	if !mathutil.AllFinite(invested, value) {
		return Projection{}, false
	}
	return Projection{Invested: invested, FutureValue: value}, true
}

// YearPoint is a projection snapshot at the end of a whole year.
type YearPoint struct {
	Year     int
	Invested float64
	Value    float64
}

// ContributionPath returns a snapshot at the end of every whole year of the
// plan. Each year's value is deflated by its own elapsed years when
// inflationAdjusted is set.
func ContributionPath(plan ContributionPlan, inflationAdjusted bool) ([]YearPoint, bool) {
	if !plan.Valid() {
		return nil, false
	}
	years := plan.HorizonPeriods / constants.MonthsPerYear
	points := make([]YearPoint, 0, years)
	for y := 1; y <= years; y++ {
		invested, value := plan.accumulate(y * constants.MonthsPerYear)
		if inflationAdjusted {
			value /= math.Pow(1+constants.InflationAssumption, float64(y))
		}
		if !mathutil.AllFinite(invested, value) {
			return nil, false
		}
		points = append(points, YearPoint{Year: y, Invested: invested, Value: value})
	}
	return points, true
}

// AnnuityDueFutureValue is the closed-form future value of a constant monthly
// contribution paid at the start of each period. annualRate is a fraction.
func AnnuityDueFutureValue(amount, annualRate float64, periods int) (float64, bool) {
	if !mathutil.AllFinite(amount, annualRate) || amount <= 0 || periods <= 0 {
		return 0, false
	}
	m := annualRate / constants.MonthsPerYear
	value := amount * float64(periods)
	if m != 0 {
		value = amount * ((math.Pow(1+m, float64(periods)) - 1) / m) * (1 + m)
	}
	if !mathutil.IsFinite(value) {
		return 0, false
	}
	return value, true
}

// Deflate divides a nominal value by the fixed inflation assumption compounded
// over years.
func Deflate(value, years float64) float64 {
	return value / math.Pow(1+constants.InflationAssumption, years)
}

// AnnualizedReturn is the compound annual growth rate, as a percentage,
// between a starting and an ending value.
func AnnualizedReturn(start, end float64, years int) (float64, bool) {
	if start <= 0 || end <= 0 || years <= 0 || !mathutil.AllFinite(start, end) {
		return 0, false
	}
	cagr := (math.Pow(end/start, 1/float64(years)) - 1) * constants.PercentageMultiplier
	if !mathutil.IsFinite(cagr) {
		return 0, false
	}
	return cagr, true
}
