// Package finance provides the pure compounding, depletion and ratio
// calculations shared by every calculator. Functions report invalid input
// through an ok flag instead of returning NaN or panicking.
package finance

import (
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// PeriodRate is an annual rate and term expressed per monthly period.
type PeriodRate struct {
	PeriodicRate float64
	PeriodCount  int
}

// MonthlyRate converts an annual percentage rate into a monthly fraction,
// e.g. 12 -> 0.01.
func MonthlyRate(aprPercent float64) float64 {
	return aprPercent / constants.MonthsPerYear / constants.PercentageMultiplier
}

// Normalize converts an annual percentage rate and a term in years into the
// monthly rate and number of monthly periods.
func Normalize(aprPercent float64, termYears int) (PeriodRate, bool) {
	if !mathutil.IsFinite(aprPercent) || termYears <= 0 {
		return PeriodRate{}, false
	}
	return PeriodRate{
		PeriodicRate: MonthlyRate(aprPercent),
		PeriodCount:  termYears * constants.MonthsPerYear,
	}, true
}

// Years returns the horizon of the normalized term in years.
func (p PeriodRate) Years() float64 {
	return float64(p.PeriodCount) / constants.MonthsPerYear
}
