package scenario

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// RentVsBuyInputs compares renting with buying the same home on a loan for
// the full price.
type RentVsBuyInputs struct {
	MonthlyRent         float64
	PropertyPrice       float64
	InterestPercent     float64
	TenureYears         int
	AppreciationPercent float64
}

// RentVsBuyYear holds cumulative costs at the end of a year.
type RentVsBuyYear struct {
	Year           int
	CumulativeRent float64
	CumulativeEMI  float64
	PropertyValue  float64
}

// NetBuyCost is what buying has cost so far once the home's value is netted off.
func (y RentVsBuyYear) NetBuyCost() float64 {
	return y.CumulativeEMI - y.PropertyValue
}

// RentVsBuyComparison is the outcome of a rent-versus-buy comparison.
type RentVsBuyComparison struct {
	EMI               float64
	TotalLoanOutgo    float64
	AppreciationValue float64
	TotalRent         float64
	BuyingBetter      bool
	// BreakEvenYear is the first year buying is cheaper, or 0 for never.
	BreakEvenYear int
	Years         []RentVsBuyYear
}

// NetBuyCost is total loan outgo less the appreciated property value.
func (c RentVsBuyComparison) NetBuyCost() float64 {
	return c.TotalLoanOutgo - c.AppreciationValue
}

// Savings is the gap between the two options.
func (c RentVsBuyComparison) Savings() float64 {
	return math.Abs(c.NetBuyCost() - c.TotalRent)
}

// Decision is the headline recommendation.
func (c RentVsBuyComparison) Decision() string {
	if c.BuyingBetter {
		return "Buying is better"
	}
	return "Renting is better"
}

// BreakEvenLabel renders the break-even year, e.g. "Year 4" or "Never".
func (c RentVsBuyComparison) BreakEvenLabel() string {
	if c.BreakEvenYear == 0 {
		return "Never"
	}
	return fmt.Sprintf("Year %d", c.BreakEvenYear)
}

// RentVsBuy runs the comparison year by year over the loan tenure.
func RentVsBuy(in RentVsBuyInputs) (RentVsBuyComparison, bool) {
	if !mathutil.AllFinite(in.MonthlyRent, in.PropertyPrice, in.InterestPercent, in.AppreciationPercent) {
		return RentVsBuyComparison{}, false
	}
	if in.MonthlyRent < 0 || in.AppreciationPercent <= -constants.PercentageMultiplier {
		return RentVsBuyComparison{}, false
	}

	payment, ok := loans.LoanTerms{
		Principal:         in.PropertyPrice,
		AnnualRatePercent: in.InterestPercent,
		TermYears:         in.TenureYears,
	}.Payment()
	if !ok {
		return RentVsBuyComparison{}, false
	}

	growth := 1 + mathutil.PercentToFraction(in.AppreciationPercent)
	annualRent := in.MonthlyRent * constants.MonthsPerYear
	annualEMI := payment.Amount * constants.MonthsPerYear

	comparison := RentVsBuyComparison{
		EMI:               payment.Amount,
		TotalLoanOutgo:    payment.Total(),
		AppreciationValue: in.PropertyPrice * math.Pow(growth, float64(in.TenureYears)),
		TotalRent:         annualRent * float64(in.TenureYears),
		Years:             make([]RentVsBuyYear, 0, in.TenureYears),
	}
	if !mathutil.AllFinite(comparison.TotalLoanOutgo, comparison.AppreciationValue, comparison.TotalRent) {
		return RentVsBuyComparison{}, false
	}
	comparison.BuyingBetter = comparison.NetBuyCost() < comparison.TotalRent

	var rentPaid, emiPaid float64
	for year := 1; year <= in.TenureYears; year++ {
		rentPaid += annualRent
		emiPaid += annualEMI
		point := RentVsBuyYear{
			Year:           year,
			CumulativeRent: rentPaid,
			CumulativeEMI:  emiPaid,
			PropertyValue:  in.PropertyPrice * math.Pow(growth, float64(year)),
		}
		if !mathutil.AllFinite(point.CumulativeRent, point.CumulativeEMI, point.PropertyValue) {
			return RentVsBuyComparison{}, false
		}
		if comparison.BreakEvenYear == 0 && point.NetBuyCost() < point.CumulativeRent {
			comparison.BreakEvenYear = year
		}
		comparison.Years = append(comparison.Years, point)
	}

	return comparison, true
}
