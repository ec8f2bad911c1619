package finance

import (
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// DepletionState is the balance and current withdrawal at the start of a year.
type DepletionState struct {
	Balance      float64
	Withdrawal   float64
	YearsElapsed int
}

// DepletionInputs configures a systematic withdrawal simulation. Rates are
// fractions (0.16 for 16%). MaxYears defaults to constants.DepletionMaxYears.
type DepletionInputs struct {
	StartingBalance       float64
	AnnualGrowthRate      float64
	InitialWithdrawalRate float64
	AnnualInflationRate   float64
	MaxYears              int
}

// DepletionOutcome is the terminal state of a simulation.
type DepletionOutcome struct {
	Years        int
	Sustains     bool
	FinalBalance float64
}

func (in DepletionInputs) maxYears() int {
	if in.MaxYears <= 0 {
		return constants.DepletionMaxYears
	}
	return in.MaxYears
}

// Valid reports whether the inputs can be simulated. A zero withdrawal rate is
// accepted and never depletes.
func (in DepletionInputs) Valid() bool {
	if !mathutil.AllFinite(in.StartingBalance, in.AnnualGrowthRate, in.InitialWithdrawalRate, in.AnnualInflationRate) {
		return false
	}
	if in.StartingBalance <= 0 || in.AnnualGrowthRate < 0 || in.AnnualInflationRate < 0 {
		return false
	}
	return in.InitialWithdrawalRate >= 0 && in.InitialWithdrawalRate <= 1
}

func (in DepletionInputs) initialState() DepletionState {
	return DepletionState{
		Balance:    in.StartingBalance,
		Withdrawal: in.StartingBalance * in.InitialWithdrawalRate,
	}
}

// step applies one year: growth, then the withdrawal. It reports a shortfall
// when the withdrawal exceeds the new balance; otherwise the withdrawal is
// inflated for the next year and the year is counted.
func (s *DepletionState) step(growth, inflation float64) (shortfall bool) {
	s.Balance = s.Balance + s.Balance*growth - s.Withdrawal
	if s.Withdrawal > s.Balance {
		return true
	}
	s.Withdrawal *= 1 + inflation
	s.YearsElapsed++
	return false
}

// SimulateDepletion drains the starting balance year by year. The reported
// year count is the number of completed years before the shortfall was
// detected. Reaching MaxYears reports Sustains.
func SimulateDepletion(in DepletionInputs) (DepletionOutcome, bool) {
	if !in.Valid() {
		return DepletionOutcome{}, false
	}

	limit := in.maxYears()
	state := in.initialState()
	for state.Balance > 0 && state.YearsElapsed < limit {
		if state.step(in.AnnualGrowthRate, in.AnnualInflationRate) {
			break
		}
	}

	if !mathutil.IsFinite(state.Balance) {
		return DepletionOutcome{}, false
	}

	return DepletionOutcome{
		Years:        state.YearsElapsed,
		Sustains:     state.YearsElapsed >= limit,
		FinalBalance: state.Balance,
	}, true
}

// DepletionTrajectory returns the balance and withdrawal at the start of each
// year 0..years. The balance is clamped at zero and the trajectory stops at
// the first year it would go negative.
func DepletionTrajectory(in DepletionInputs, years int) ([]DepletionState, bool) {
	if !in.Valid() || years < 0 {
		return nil, false
	}

	state := in.initialState()
	points := make([]DepletionState, 0, years+1)
	for i := 0; i <= years; i++ {
		state.YearsElapsed = i
		points = append(points, state)
		if i == years {
			break
		}
		state.Balance = state.Balance + state.Balance*in.AnnualGrowthRate - state.Withdrawal
		state.Withdrawal *= 1 + in.AnnualInflationRate
		if !mathutil.AllFinite(state.Balance, state.Withdrawal) {
			return nil, false
		}
		if state.Balance < 0 {
			state.Balance = 0
			state.YearsElapsed = i + 1
			points = append(points, state)
			break
		}
	}
	return points, true
}

// ChartYears is the number of years a depletion chart covers for an outcome.
func ChartYears(outcome DepletionOutcome) int {
	if outcome.Sustains {
		return constants.DepletionChartYears
	}
	return int(math.Min(float64(outcome.Years), constants.DepletionChartYears))
}

// SustainabilityScore rates an outcome from 0 to 100 relative to a 30-year
// retirement; only an indefinitely sustaining plan scores 100.
func SustainabilityScore(outcome DepletionOutcome) int {
	if outcome.Sustains {
		return 100
	}
	score := math.Round(float64(outcome.Years) / constants.DepletionChartYears * constants.PercentageMultiplier)
	return int(math.Min(score, 99))
}
