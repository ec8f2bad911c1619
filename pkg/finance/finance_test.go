package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		apr       float64
		years     int
		wantRate  float64
		wantCount int
		wantOK    bool
	}{
		{"Home loan", 10, 20, 10.0 / 12 / 100, 240, true},
		{"Zero rate", 0, 5, 0, 60, true},
		{"Zero term", 10, 0, 0, 0, false},
		{"NaN rate", math.NaN(), 5, 0, 0, false},
		{"Infinite rate", math.Inf(1), 5, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.apr, tt.years)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%v, %d) ok = %v, want %v", tt.apr, tt.years, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			assert.InDelta(t, tt.wantRate, got.PeriodicRate, 1e-15)
			assert.Equal(t, tt.wantCount, got.PeriodCount)
		})
	}
}

func TestLumpSum(t *testing.T) {
	t.Run("Zero years returns principal", func(t *testing.T) {
		fv, ok := LumpSum(250000, 12, 0, false)
		require.True(t, ok)
		assert.Equal(t, 250000.0, fv)

		fv, ok = LumpSum(250000, 12, 0, true)
		require.True(t, ok)
		assert.Equal(t, 250000.0, fv)
	})

	t.Run("Nominal growth", func(t *testing.T) {
		fv, ok := LumpSum(100000, 12, 10, false)
		require.True(t, ok)
		assert.InDelta(t, 310584.82, fv, 0.01)
	})

	t.Run("Inflation adjusted subtracts six percent", func(t *testing.T) {
		fv, ok := LumpSum(100000, 12, 10, true)
		require.True(t, ok)
		assert.InDelta(t, 100000*math.Pow(1.06, 10), fv, 1e-6)
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, ok := LumpSum(0, 12, 10, false)
		assert.False(t, ok)
		_, ok = LumpSum(100000, math.NaN(), 10, false)
		assert.False(t, ok)
		_, ok = LumpSum(100000, 12, -1, false)
		assert.False(t, ok)
	})

	t.Run("Path ends at the projection", func(t *testing.T) {
		path, ok := LumpSumPath(100000, 12, 10)
		require.True(t, ok)
		require.Len(t, path, 10)
		fv, _ := LumpSum(100000, 12, 10, false)
		assert.InDelta(t, fv, path[9], 1e-6)
		assert.InDelta(t, 112000, path[0], 1e-6)
	})
}

func TestContributionPlanMatchesAnnuityDue(t *testing.T) {
	plan := NewMonthlyPlan(5000, 12, 10, nil)
	fv, ok := plan.FutureValue()
	require.True(t, ok)

	closed, ok := AnnuityDueFutureValue(5000, 0.12, 120)
	require.True(t, ok)
	assert.InDelta(t, closed, fv, closed*1e-9)
}

func TestStepUpIncreasesFutureValue(t *testing.T) {
	previous := 0.0
	for _, percent := range []float64{0, 5, 10, 15, 20} {
		plan := NewMonthlyPlan(5000, 12, 10, &StepUp{Percent: percent, EveryNPeriods: 12})
		fv, ok := plan.FutureValue()
		require.True(t, ok)
		assert.Greater(t, fv, previous, "step-up %v%% should exceed the previous total", percent)
		previous = fv
	}
}

func TestStepUpContributionSchedule(t *testing.T) {
	plan := ContributionPlan{
		PeriodicAmount:    1000,
		GrowthRatePercent: 0,
		StepUp:            &StepUp{Percent: 10, EveryNPeriods: 12},
		HorizonPeriods:    24,
	}

	projection, ok := ProjectContributions(plan, false)
	require.True(t, ok)
	// 12 x 1000 then 12 x 1100 with no growth.
	assert.InDelta(t, 25200, projection.Invested, 1e-9)
	assert.InDelta(t, 25200, projection.FutureValue, 1e-9)
	assert.Equal(t, 0.0, projection.Gain())
}

func TestProjectContributionsInflationAppliedOnce(t *testing.T) {
	plan := NewMonthlyPlan(10000, 12, 15, nil)
	nominal, ok := ProjectContributions(plan, false)
	require.True(t, ok)
	deflated, ok := ProjectContributions(plan, true)
	require.True(t, ok)

	assert.InDelta(t, nominal.FutureValue/math.Pow(1.06, 15), deflated.FutureValue, 1e-6)
	assert.Equal(t, nominal.Invested, deflated.Invested)
}

func TestContributionPlanValidation(t *testing.T) {
	tests := []struct {
		name string
		plan ContributionPlan
	}{
		{"Zero amount", NewMonthlyPlan(0, 12, 10, nil)},
		{"Negative amount", NewMonthlyPlan(-10, 12, 10, nil)},
		{"Zero horizon", NewMonthlyPlan(1000, 12, 0, nil)},
		{"NaN rate", NewMonthlyPlan(1000, math.NaN(), 10, nil)},
		{"Zero step-up frequency", NewMonthlyPlan(1000, 12, 10, &StepUp{Percent: 10})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.plan.FutureValue()
			assert.False(t, ok)
			_, ok = ProjectContributions(tt.plan, false)
			assert.False(t, ok)
			_, ok = ContributionPath(tt.plan, false)
			assert.False(t, ok)
		})
	}
}

func TestContributionPath(t *testing.T) {
	plan := NewMonthlyPlan(5000, 12, 5, nil)
	points, ok := ContributionPath(plan, false)
	require.True(t, ok)
	require.Len(t, points, 5)

	fv, _ := plan.FutureValue()
	assert.InDelta(t, fv, points[4].Value, 1e-6)
	assert.InDelta(t, 60000, points[0].Invested, 1e-9)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Value, points[i-1].Value)
		assert.Equal(t, i+1, points[i].Year)
	}
}

func TestAnnuityDueZeroRate(t *testing.T) {
	fv, ok := AnnuityDueFutureValue(1000, 0, 24)
	require.True(t, ok)
	assert.Equal(t, 24000.0, fv)
}

func TestAnnualizedReturn(t *testing.T) {
	got, ok := AnnualizedReturn(100000, 100000*math.Pow(1.12, 10), 10)
	require.True(t, ok)
	assert.InDelta(t, 12, got, 1e-9)

	_, ok = AnnualizedReturn(0, 100, 10)
	assert.False(t, ok)
}

// Projections that overflow float64 report no result instead of an infinity.
func TestOverflowYieldsNoResult(t *testing.T) {
	tests := []struct {
		name string
		run  func() bool
	}{
		{"LumpSum", func() bool { _, ok := LumpSum(1e6, 1000, 400, false); return ok }},
		{"LumpSum inflation adjusted", func() bool { _, ok := LumpSum(1e6, 1000, 400, true); return ok }},
		{"LumpSumPath", func() bool { _, ok := LumpSumPath(1e6, 1000, 400); return ok }},
		{"FutureValue", func() bool { _, ok := NewMonthlyPlan(1e300, 1000, 100, nil).FutureValue(); return ok }},
		{"ProjectContributions", func() bool {
			_, ok := ProjectContributions(NewMonthlyPlan(1e300, 1000, 100, nil), true)
			return ok
		}},
		{"ContributionPath", func() bool {
			_, ok := ContributionPath(NewMonthlyPlan(1e300, 1000, 100, nil), false)
			return ok
		}},
		{"AnnuityDueFutureValue", func() bool { _, ok := AnnuityDueFutureValue(1e305, 0.12, 1200); return ok }},
		{"AnnualizedReturn", func() bool { _, ok := AnnualizedReturn(1e-300, 1e300, 1); return ok }},
		{"SimulateDepletion", func() bool {
			_, ok := SimulateDepletion(DepletionInputs{StartingBalance: 1e300, AnnualGrowthRate: 10, InitialWithdrawalRate: 0.01})
			return ok
		}},
		{"DepletionTrajectory", func() bool {
			_, ok := DepletionTrajectory(DepletionInputs{StartingBalance: 1e300, AnnualGrowthRate: 10, InitialWithdrawalRate: 0.01}, 30)
			return ok
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.run())
		})
	}
}

func TestSimulateDepletion(t *testing.T) {
	tests := []struct {
		name         string
		in           DepletionInputs
		wantYears    int
		wantSustains bool
	}{
		{
			name:      "Half withdrawn without growth lasts one year",
			in:        DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 0.5},
			wantYears: 1,
		},
		{
			name:      "Shortfall in the first year",
			in:        DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 0.6},
			wantYears: 0,
		},
		{
			name:      "Full withdrawal",
			in:        DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 1},
			wantYears: 0,
		},
		{
			name:         "Zero withdrawal never depletes",
			in:           DepletionInputs{StartingBalance: 1000000, AnnualGrowthRate: 0.08, AnnualInflationRate: 0.06},
			wantYears:    200,
			wantSustains: true,
		},
		{
			name: "Growth outpaces inflation-linked withdrawal",
			in: DepletionInputs{
				StartingBalance:       10000000,
				AnnualGrowthRate:      0.16,
				InitialWithdrawalRate: 0.10,
				AnnualInflationRate:   0.06,
			},
			wantYears:    200,
			wantSustains: true,
		},
		{
			name: "Custom cap",
			in: DepletionInputs{
				StartingBalance:  1000,
				AnnualGrowthRate: 0.05,
				MaxYears:         10,
			},
			wantYears:    10,
			wantSustains: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SimulateDepletion(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.wantYears, got.Years)
			assert.Equal(t, tt.wantSustains, got.Sustains)
		})
	}
}

func TestSimulateDepletionFiniteAndDeterministic(t *testing.T) {
	in := DepletionInputs{
		StartingBalance:       10000000,
		AnnualGrowthRate:      0.08,
		InitialWithdrawalRate: 0.10,
		AnnualInflationRate:   0.06,
	}

	first, ok := SimulateDepletion(in)
	require.True(t, ok)
	assert.False(t, first.Sustains)
	assert.Less(t, first.Years, 200)
	assert.Greater(t, first.Years, 0)

	second, ok := SimulateDepletion(in)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestSimulateDepletionZeroWithdrawalIsMonotonic(t *testing.T) {
	in := DepletionInputs{StartingBalance: 500000, AnnualGrowthRate: 0.07, AnnualInflationRate: 0.05}
	points, ok := DepletionTrajectory(in, 50)
	require.True(t, ok)
	require.Len(t, points, 51)
	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Balance, points[i-1].Balance)
	}
}

func TestSimulateDepletionInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   DepletionInputs
	}{
		{"Zero balance", DepletionInputs{InitialWithdrawalRate: 0.1}},
		{"Negative growth", DepletionInputs{StartingBalance: 100, AnnualGrowthRate: -0.1, InitialWithdrawalRate: 0.1}},
		{"Withdrawal above one", DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 1.5}},
		{"Negative inflation", DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 0.1, AnnualInflationRate: -0.01}},
		{"NaN balance", DepletionInputs{StartingBalance: math.NaN(), InitialWithdrawalRate: 0.1}},
		{"Overflowing balance", DepletionInputs{StartingBalance: 1e300, AnnualGrowthRate: 10, InitialWithdrawalRate: 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SimulateDepletion(tt.in)
			assert.False(t, ok)
			_, ok = DepletionTrajectory(tt.in, 10)
			assert.False(t, ok)
		})
	}
}

func TestDepletionTrajectoryClampsAtZero(t *testing.T) {
	in := DepletionInputs{StartingBalance: 100, InitialWithdrawalRate: 0.4}
	points, ok := DepletionTrajectory(in, 30)
	require.True(t, ok)

	last := points[len(points)-1]
	assert.Equal(t, 0.0, last.Balance)
	assert.Less(t, len(points), 31)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Balance, 0.0)
	}
}

func TestSustainabilityScore(t *testing.T) {
	tests := []struct {
		name    string
		outcome DepletionOutcome
		want    int
	}{
		{"Sustains", DepletionOutcome{Years: 200, Sustains: true}, 100},
		{"Half a retirement", DepletionOutcome{Years: 15}, 50},
		{"Almost thirty years", DepletionOutcome{Years: 29}, 97},
		{"Long but finite", DepletionOutcome{Years: 45}, 99},
		{"Immediate", DepletionOutcome{Years: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SustainabilityScore(tt.outcome))
		})
	}

	assert.Equal(t, 30, ChartYears(DepletionOutcome{Years: 200, Sustains: true}))
	assert.Equal(t, 12, ChartYears(DepletionOutcome{Years: 12}))
	assert.Equal(t, 30, ChartYears(DepletionOutcome{Years: 45}))
}

func TestEvaluateAffordability(t *testing.T) {
	got, ok := EvaluateAffordability(100000, 30000, 0.4)
	require.True(t, ok)
	assert.InDelta(t, 40000, got.Capacity, 1e-9)
	assert.InDelta(t, 10000, got.Headroom, 1e-9)
	assert.Equal(t, BandSafe, got.Band)
	assert.InDelta(t, 30, got.CurrentRatioPercent, 1e-9)

	got, ok = Evaluate(50000, 25000)
	require.True(t, ok)
	assert.Equal(t, BandExceeded, got.Band)

	for _, bad := range [][3]float64{
		{0, 1000, 0.4},
		{-5, 1000, 0.4},
		{1000, -1, 0.4},
		{1000, 100, 0},
		{1000, 100, 1},
		{math.NaN(), 100, 0.4},
	} {
		_, ok := EvaluateAffordability(bad[0], bad[1], bad[2])
		assert.False(t, ok, "inputs %v", bad)
	}
}

func TestClassifyHeadroom(t *testing.T) {
	tests := []struct {
		headroom float64
		want     Band
	}{
		{10000, BandSafe},
		{3000.01, BandSafe},
		{3000, BandCaution},
		{0, BandCaution},
		{-0.01, BandExceeded},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyHeadroom(tt.headroom), "headroom %v", tt.headroom)
	}

	assert.Contains(t, BandSafe.Message(), "safe EMI limit")
	assert.Contains(t, BandCaution.Message(), "Caution")
	assert.Contains(t, BandExceeded.Message(), "exceeded")
}

func TestPerpetualCorpus(t *testing.T) {
	in := RetirementInputs{
		CurrentAge:                  24,
		RetirementAge:               45,
		MonthlyExpenses:             100000,
		InflationRatePercent:        6,
		PostRetirementReturnPercent: 16,
	}

	plan, ok := PerpetualCorpus(in)
	require.True(t, ok)
	assert.Equal(t, 21, plan.YearsToRetirement)
	assert.Equal(t, 1200000.0, plan.AnnualExpensesToday)
	assert.InDelta(t, 0.10, plan.RealReturn, 1e-12)

	expected := 1200000 * math.Pow(1.06, 21) / 0.10
	assert.InDelta(t, expected, plan.Corpus, 1e-3)
	// Roughly 4.08 crore.
	assert.Greater(t, plan.Corpus, 40700000.0)
	assert.Less(t, plan.Corpus, 40900000.0)

	path, ok := ExpensePath(in)
	require.True(t, ok)
	require.Len(t, path, 22)
	assert.InDelta(t, plan.InflationAdjustedExpense, path[21], 1e-6)
}

func TestPerpetualCorpusInvalid(t *testing.T) {
	base := RetirementInputs{CurrentAge: 30, RetirementAge: 60, MonthlyExpenses: 50000, InflationRatePercent: 6, PostRetirementReturnPercent: 10}

	returnBelowInflation := base
	returnBelowInflation.PostRetirementReturnPercent = 5
	equalRates := base
	equalRates.PostRetirementReturnPercent = 6
	retiredAlready := base
	retiredAlready.RetirementAge = 25
	noExpenses := base
	noExpenses.MonthlyExpenses = 0
	overflowing := RetirementInputs{CurrentAge: 0, RetirementAge: 100, MonthlyExpenses: 1e300, InflationRatePercent: 100, PostRetirementReturnPercent: 200}

	for name, in := range map[string]RetirementInputs{
		"return below inflation":  returnBelowInflation,
		"return equals inflation": equalRates,
		"retirement before now":   retiredAlready,
		"no expenses":             noExpenses,
		"overflowing expense":     overflowing,
	} {
		_, ok := PerpetualCorpus(in)
		assert.False(t, ok, name)
	}
}
