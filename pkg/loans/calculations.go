// Package loans provides fixed-rate loan payment and amortization utilities.
package loans

import (
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/finance"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// LoanTerms describes a fixed-rate, fixed-term loan.
type LoanTerms struct {
	Principal         float64
	AnnualRatePercent float64
	TermYears         int
}

// PeriodicPayment is the fixed installment and the number of installments.
type PeriodicPayment struct {
	Amount      float64
	PeriodCount int
}

// Total returns the sum of all installments.
func (p PeriodicPayment) Total() float64 {
	return p.Amount * float64(p.PeriodCount)
}

// AmortizationRow holds the split of a single installment.
type AmortizationRow struct {
	Period           int     `json:"period" yaml:"period"`
	Interest         float64 `json:"interest" yaml:"interest"`
	Principal        float64 `json:"principal" yaml:"principal"`
	RemainingBalance float64 `json:"remainingBalance" yaml:"remainingBalance"`
}

// Valid reports whether the terms can be amortized.
func (l LoanTerms) Valid() bool {
	if !mathutil.AllFinite(l.Principal, l.AnnualRatePercent) {
		return false
	}
	return l.Principal > 0 && l.AnnualRatePercent >= 0 && l.TermYears > 0
}

// Rate returns the monthly rate and installment count for the terms.
func (l LoanTerms) Rate() (finance.PeriodRate, bool) {
	if !l.Valid() {
		return finance.PeriodRate{}, false
	}
	return finance.Normalize(l.AnnualRatePercent, l.TermYears)
}

// Payment calculates the monthly installment for the terms.
func (l LoanTerms) Payment() (PeriodicPayment, bool) {
	rate, ok := l.Rate()
	if !ok {
		return PeriodicPayment{}, false
	}
	amount, ok := Payment(l.Principal, rate.PeriodicRate, rate.PeriodCount)
	if !ok {
		return PeriodicPayment{}, false
	}
	return PeriodicPayment{Amount: amount, PeriodCount: rate.PeriodCount}, true
}

// Payment calculates the fixed installment using the standard amortization
// formula. A zero rate repays the principal evenly.
func Payment(principal, periodicRate float64, periodCount int) (float64, bool) {
	if !mathutil.AllFinite(principal, periodicRate) || principal <= 0 || periodicRate < 0 || periodCount <= 0 {
		return 0, false
	}

	if periodicRate == 0 {
		return principal / float64(periodCount), true
	}

	power := math.Pow(1+periodicRate, float64(periodCount))
	discountFactor := (power - 1) / power
	payment := principal * periodicRate / discountFactor
	if !mathutil.IsFinite(payment) {
		return 0, false
	}
	return payment, true
}

// MonthlyPayment is Payment for an annual percentage rate and a term in months.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, bool) {
	return Payment(principal, finance.MonthlyRate(annualRatePercent), termMonths)
}

// InterestPayment calculates the interest portion of a payment.
func InterestPayment(remainingPrincipal, annualRatePercent float64) float64 {
	return remainingPrincipal * annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// Schedule runs the loan forward one installment at a time. The schedule has
// exactly periodCount rows and the final balance is exactly zero; earlier
// balances are clamped at zero.
func Schedule(principal, periodicRate float64, periodCount int) ([]AmortizationRow, bool) {
	payment, ok := Payment(principal, periodicRate, periodCount)
	if !ok {
		return nil, false
	}

	rows := make([]AmortizationRow, 0, periodCount)
	balance := principal
	for period := 1; period <= periodCount; period++ {
		interest := balance * periodicRate
		principalPortion := payment - interest
		balance -= principalPortion

		if period == periodCount || balance < 0 {
			balance = 0
		}
		if !mathutil.AllFinite(interest, principalPortion) {
			return nil, false
		}

		rows = append(rows, AmortizationRow{
			Period:           period,
			Interest:         interest,
			Principal:        principalPortion,
			RemainingBalance: balance,
		})
	}
	return rows, true
}

// Schedule builds the amortization schedule for the terms.
func (l LoanTerms) Schedule() ([]AmortizationRow, bool) {
	rate, ok := l.Rate()
	if !ok {
		return nil, false
	}
	return Schedule(l.Principal, rate.PeriodicRate, rate.PeriodCount)
}

// Totals summarizes a loan: total interest and the total of all installments.
type Totals struct {
	Payment       PeriodicPayment
	TotalInterest float64
	TotalPayment  float64
}

// Summarize computes the installment and lifetime totals for the terms.
func (l LoanTerms) Summarize() (Totals, bool) {
	payment, ok := l.Payment()
	if !ok {
		return Totals{}, false
	}
	total := payment.Total()
	if !mathutil.IsFinite(total) {
		return Totals{}, false
	}
	return Totals{
		Payment:       payment,
		TotalInterest: math.Max(0, total-l.Principal),
		TotalPayment:  total,
	}, true
}

// SampledPeriod reports whether a period is shown on the condensed schedule
// charts: the first and last installments and every sixth one.
func SampledPeriod(period, periodCount int) bool {
	return period == 1 || period == periodCount || period%6 == 0
}
