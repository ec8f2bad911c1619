package scenario

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/budget"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/finance"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// Benchmark is a fixed-return alternative to a contribution plan.
type Benchmark struct {
	Label      string
	AnnualRate float64
	// Own marks the slot that carries the caller's own projection.
	Own bool
}

// DefaultBenchmarks are the comparison bars shown next to a SIP projection.
var DefaultBenchmarks = []Benchmark{
	{Label: "Bank FD (6%)", AnnualRate: 0.06},
	{Label: "Debt (8%)", AnnualRate: 0.08},
	{Label: "Your SIP", Own: true},
	{Label: "Equity (12%)", AnnualRate: 0.12},
}

// ReturnComparison projects the same monthly contribution at each benchmark
// rate and places own in the Own slot.
func ReturnComparison(monthly float64, years int, inflationAdjusted bool, own float64, benchmarks []Benchmark) (Series, bool) {
	periods := years * constants.MonthsPerYear
	return Build(benchmarks,
		func(b Benchmark) string { return b.Label },
		func(b Benchmark) (float64, bool) {
			if b.Own {
				return own, true
			}
			fv, ok := finance.AnnuityDueFutureValue(monthly, b.AnnualRate, periods)
			if !ok {
				return 0, false
			}
			if inflationAdjusted {
				fv = finance.Deflate(fv, float64(years))
			}
			return fv, true
		})
}

// DefaultIncomeFactors stress income from 80% to 140%.
var DefaultIncomeFactors = []float64{0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.4}

// IncomeStress evaluates EMI capacity at each income multiplier.
func IncomeStress(monthlyIncome, obligation float64, factors []float64) (Series, bool) {
	return Build(factors, percentLabel, func(factor float64) (float64, bool) {
		result, ok := finance.Evaluate(monthlyIncome*factor, obligation)
		if !ok {
			return 0, false
		}
		return result.Capacity, true
	})
}

// LoanType is a typical loan product used to price affordability.
type LoanType struct {
	Name        string
	RatePercent float64
	TermYears   int
}

// DefaultLoanTypes are the typical retail loan products.
var DefaultLoanTypes = []LoanType{
	{Name: "Personal Loan", RatePercent: 14, TermYears: 5},
	{Name: "Home Loan", RatePercent: 9, TermYears: 20},
	{Name: "Car Loan", RatePercent: 11, TermYears: 7},
	{Name: "Education Loan", RatePercent: 10, TermYears: 10},
}

// LoanTypeCapacity converts remaining EMI headroom into the loan amount it
// could service for each product. Negative headroom affords nothing.
func LoanTypeCapacity(headroom float64, types []LoanType) (Series, bool) {
	if !mathutil.IsFinite(headroom) {
		return nil, false
	}
	room := math.Max(0, headroom)
	return Build(types,
		func(lt LoanType) string { return lt.Name },
		func(lt LoanType) (float64, bool) {
			quote, ok := loans.LoanTerms{
				Principal:         constants.LoanQuoteAmount,
				AnnualRatePercent: lt.RatePercent,
				TermYears:         lt.TermYears,
			}.Payment()
			if !ok {
				return 0, false
			}
			return room * constants.LoanQuoteAmount / quote.Amount, true
		})
}

// DefaultEfficiencies are the km/l values compared for a trip.
var DefaultEfficiencies = []float64{5, 10, 15, 20, 25, 30}

// EfficiencyComparison prices the trip at each alternative efficiency.
func EfficiencyComparison(distance, pricePerLitre float64, efficiencies []float64) (Series, bool) {
	return Build(efficiencies,
		func(eff float64) string { return fmt.Sprintf("%g km/l", eff) },
		func(eff float64) (float64, bool) {
			trip, ok := budget.Trip(distance, eff, pricePerLitre)
			if !ok {
				return 0, false
			}
			return trip.Cost, true
		})
}

// DefaultPriceIncrements are the fuel price rises, in percent, to test.
var DefaultPriceIncrements = []float64{0, 5, 10, 15, 20, 25}

// PriceImpact prices the trip at each raised fuel price. Labels carry the
// raised price.
func PriceImpact(distance, efficiency, pricePerLitre float64, increments []float64) (Series, bool) {
	raised := func(inc float64) float64 {
		return pricePerLitre * (1 + mathutil.PercentToFraction(inc))
	}
	return Build(increments,
		func(inc float64) string { return format.Currency(raised(inc)) },
		func(inc float64) (float64, bool) {
			trip, ok := budget.Trip(distance, efficiency, raised(inc))
			if !ok {
				return 0, false
			}
			return trip.Cost, true
		})
}
