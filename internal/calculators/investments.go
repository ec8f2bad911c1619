package calculators

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/analytics"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/finance"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/scenario"
)

type sipInput struct {
	MonthlyInvestment float64 `mapstructure:"monthlyInvestment"`
	AnnualRate        float64 `mapstructure:"annualRate"`
	Years             int     `mapstructure:"years"`
	InflationAdjusted bool    `mapstructure:"inflationAdjusted"`
	StepUp            bool    `mapstructure:"stepUp"`
	StepUpPercent     float64 `mapstructure:"stepUpPercent"`
	StepUpFrequency   int     `mapstructure:"stepUpFrequency"`
}

type sipCalculator struct{}

func (sipCalculator) Type() string  { return TypeSIP }
func (sipCalculator) Title() string { return "SIP Calculator" }

func (sipCalculator) Calculate(params Params) (*Outcome, error) {
	in := sipInput{StepUpPercent: 10, StepUpFrequency: constants.MonthsPerYear}
	if err := decode(params, &in, "monthlyInvestment", "annualRate", "years"); err != nil {
		return nil, err
	}

	var stepUp *finance.StepUp
	if in.StepUp {
		stepUp = &finance.StepUp{Percent: in.StepUpPercent, EveryNPeriods: in.StepUpFrequency}
	}
	plan := finance.NewMonthlyPlan(in.MonthlyInvestment, in.AnnualRate, in.Years, stepUp)

	projection, ok := finance.ProjectContributions(plan, in.InflationAdjusted)
	if !ok {
		return nil, invalid(TypeSIP)
	}
	path, ok := finance.ContributionPath(plan, in.InflationAdjusted)
	if !ok {
		return nil, invalid(TypeSIP)
	}
	benchmarks, ok := scenario.ReturnComparison(in.MonthlyInvestment, in.Years, in.InflationAdjusted,
		projection.FutureValue, scenario.DefaultBenchmarks)
	if !ok {
		return nil, invalid(TypeSIP)
	}

	years := make([]string, 0, len(path))
	invested := make([]float64, 0, len(path))
	values := make([]float64, 0, len(path))
	for _, p := range path {
		years = append(years, fmt.Sprintf("Year %d", p.Year))
		invested = append(invested, p.Invested)
		values = append(values, p.Value)
	}

	returnsLabel := "Expected Returns"
	if in.InflationAdjusted {
		returnsLabel = "Adjusted Returns"
	}
	description := fmt.Sprintf("Analysis of a %d-year SIP", in.Years)
	if in.StepUp {
		description += " with Step-Up"
	}
	description += fmt.Sprintf(" at %g%% return", in.AnnualRate)
	if in.InflationAdjusted {
		description += " (inflation adjusted)"
	}

	payload := &analytics.Payload{
		Title:       "SIP Investment Analysis",
		Description: description,
		KPIs: []analytics.KPI{
			{Label: "Initial Monthly Investment", Value: format.CurrencyPlaces(in.MonthlyInvestment, 0)},
			{Label: "Total Investment", Value: format.Currency(projection.Invested)},
			{Label: returnsLabel, Value: format.Currency(projection.FutureValue), Change: analytics.Change(12)},
		},
		MainChart: analytics.Chart{
			Title: "Investment Growth Over Time",
			Data: []analytics.Trace{
				analytics.LineMarkers("Total Value", years, values, "#10B981"),
				analytics.LineMarkers("Amount Invested", years, invested, "#6EE7B7"),
			},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Time Period"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title: "Investment Breakdown",
				Data: []analytics.Trace{analytics.Pie(
					[]string{"Amount Invested", "Wealth Gained"},
					[]float64{projection.Invested, projection.Gain()},
				)},
			},
			{
				Title:  "Returns Comparison",
				Data:   []analytics.Trace{analytics.Bar("Final Amount", benchmarks.Labels(), benchmarks.Values(), "#10B981")},
				Layout: analytics.Layout{YAxis: analytics.Axis{Title: "Final Amount (₹)"}},
			},
		},
	}

	summary := fmt.Sprintf("SIP: %s monthly for %d years at %g%%", format.CurrencyPlaces(in.MonthlyInvestment, 0), in.Years, in.AnnualRate)
	data := map[string]interface{}{
		"monthlyInvestment": in.MonthlyInvestment,
		"annualRate":        in.AnnualRate,
		"years":             in.Years,
		"inflationAdjusted": in.InflationAdjusted,
		"stepUp":            in.StepUp,
		"stepUpPercent":     nil,
		"stepUpFrequency":   nil,
		"totalInvested":     projection.Invested,
		"result":            mathutil.Round(projection.FutureValue),
	}
	if in.StepUp {
		summary += fmt.Sprintf(" with %g%% step-up", in.StepUpPercent)
		data["stepUpPercent"] = in.StepUpPercent
		data["stepUpFrequency"] = in.StepUpFrequency
	}

	return &Outcome{
		Type:        TypeSIP,
		Title:       "SIP Calculator",
		Description: summary,
		Result:      mathutil.Round(projection.FutureValue),
		Data:        data,
		Analytics:   payload,
	}, nil
}

type lumpsumInput struct {
	Amount            float64 `mapstructure:"amount"`
	Rate              float64 `mapstructure:"rate"`
	Years             int     `mapstructure:"years"`
	InflationAdjusted bool    `mapstructure:"inflationAdjusted"`
}

type lumpsumCalculator struct{}

func (lumpsumCalculator) Type() string  { return TypeLumpsum }
func (lumpsumCalculator) Title() string { return "Lumpsum Calculator" }

func (lumpsumCalculator) Calculate(params Params) (*Outcome, error) {
	var in lumpsumInput
	if err := decode(params, &in, "amount", "rate", "years"); err != nil {
		return nil, err
	}

	value, ok := finance.LumpSum(in.Amount, in.Rate, in.Years, in.InflationAdjusted)
	if !ok {
		return nil, invalid(TypeLumpsum)
	}
	// The growth chart always shows the nominal path.
	path, ok := finance.LumpSumPath(in.Amount, in.Rate, in.Years)
	if !ok {
		return nil, invalid(TypeLumpsum)
	}

	years := analytics.YearLabels(1, in.Years)
	yearly := make([]float64, 0, len(path))
	previous := in.Amount
	for _, v := range path {
		yearly = append(yearly, v-previous)
		previous = v
	}

	returns := value - in.Amount
	final := analytics.KPI{Label: "Final Amount", Value: format.Currency(value)}
	if cagr, ok := finance.AnnualizedReturn(in.Amount, value, in.Years); ok {
		final.Change = analytics.Change(mathutil.RoundTo(cagr, 1))
	}

	description := fmt.Sprintf("Analysis of a %d-year lumpsum investment at %g%% annual return", in.Years, in.Rate)
	if in.InflationAdjusted {
		description += " (inflation adjusted)"
	}

	payload := &analytics.Payload{
		Title:       "Lumpsum Investment Analysis",
		Description: description,
		KPIs: []analytics.KPI{
			{Label: "Initial Investment", Value: format.CurrencyPlaces(in.Amount, 0)},
			final,
			{Label: "Total Returns", Value: format.Currency(returns)},
		},
		MainChart: analytics.Chart{
			Title:  "Investment Growth Over Time",
			Data:   []analytics.Trace{analytics.LineMarkers("Investment Value", years, path, "#9F7AEA")},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title: "Investment Breakdown",
				Data: []analytics.Trace{analytics.Pie(
					[]string{"Principal Amount", "Total Returns"},
					[]float64{in.Amount, math.Max(0, returns)},
				)},
			},
			{
				Title:  "Yearly Returns",
				Data:   []analytics.Trace{analytics.Bar("Yearly Returns", years, yearly, "#805AD5")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Returns (₹)"}},
			},
		},
	}

	result := mathutil.Round(value)
	return &Outcome{
		Type:        TypeLumpsum,
		Title:       "Lumpsum Calculator",
		Description: fmt.Sprintf("Lumpsum: %s at %g%% for %d years", format.CurrencyPlaces(in.Amount, 0), in.Rate, in.Years),
		Result:      result,
		Data: map[string]interface{}{
			"initialAmount":     in.Amount,
			"interestRate":      in.Rate,
			"years":             in.Years,
			"inflationAdjusted": in.InflationAdjusted,
			"result":            result,
		},
		Analytics: payload,
	}, nil
}

type swpInput struct {
	Corpus            float64 `mapstructure:"corpus"`
	ReturnRate        float64 `mapstructure:"returnRate"`
	WithdrawalPercent float64 `mapstructure:"withdrawalPercent"`
	Inflation         float64 `mapstructure:"inflation"`
}

type swpCalculator struct{}

func (swpCalculator) Type() string  { return TypeSWP }
func (swpCalculator) Title() string { return "SWP Calculator" }

func (swpCalculator) Calculate(params Params) (*Outcome, error) {
	var in swpInput
	if err := decode(params, &in, "corpus", "returnRate", "withdrawalPercent", "inflation"); err != nil {
		return nil, err
	}

	inputs := finance.DepletionInputs{
		StartingBalance:       in.Corpus,
		AnnualGrowthRate:      mathutil.PercentToFraction(in.ReturnRate),
		InitialWithdrawalRate: mathutil.PercentToFraction(in.WithdrawalPercent),
		AnnualInflationRate:   mathutil.PercentToFraction(in.Inflation),
	}
	outcome, ok := finance.SimulateDepletion(inputs)
	if !ok {
		return nil, invalid(TypeSWP)
	}
	trajectory, ok := finance.DepletionTrajectory(inputs, finance.ChartYears(outcome))
	if !ok {
		return nil, invalid(TypeSWP)
	}

	labels := make([]string, 0, len(trajectory))
	balances := make([]float64, 0, len(trajectory))
	annual := make([]float64, 0, len(trajectory))
	monthly := make([]float64, 0, len(trajectory))
	for _, s := range trajectory {
		labels = append(labels, fmt.Sprintf("Year %d", s.YearsElapsed))
		balances = append(balances, s.Balance)
		annual = append(annual, s.Withdrawal)
		monthly = append(monthly, s.Withdrawal/constants.MonthsPerYear)
	}

	var text, description string
	var years interface{}
	if outcome.Sustains {
		text = "Corpus will last forever and continue growing."
		description = fmt.Sprintf("SWP: %s corpus, %g%% withdrawal rate", format.CurrencyPlaces(in.Corpus, 0), in.WithdrawalPercent)
		years = "Indefinite"
	} else {
		text = fmt.Sprintf("Corpus will last for %d years.", outcome.Years)
		description = fmt.Sprintf("SWP: %s corpus will last %d years", format.CurrencyPlaces(in.Corpus, 0), outcome.Years)
		years = outcome.Years
	}

	payload := &analytics.Payload{
		Title: "Systematic Withdrawal Plan Analysis",
		Description: fmt.Sprintf("Analysis of SWP with %s corpus at %g%% returns and %g%% withdrawal rate",
			format.CurrencyPlaces(in.Corpus, 0), in.ReturnRate, in.WithdrawalPercent),
		KPIs: []analytics.KPI{
			{Label: "Initial Corpus", Value: format.CurrencyPlaces(in.Corpus, 0)},
			{Label: "Monthly Withdrawal", Value: format.CurrencyPlaces(in.Corpus*inputs.InitialWithdrawalRate/constants.MonthsPerYear, 0)},
			{Label: "Sustainability Score", Value: fmt.Sprintf("%d%%", finance.SustainabilityScore(outcome))},
		},
		MainChart: analytics.Chart{
			Title: "Corpus & Withdrawal Projection",
			Data: []analytics.Trace{
				analytics.Line("Corpus Value", labels, balances, "#38A169"),
				analytics.Bar("Annual Withdrawal", labels, annual, "#48BB78"),
			},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title:  "Withdrawal Growth Due to Inflation",
				Data:   []analytics.Trace{analytics.LineMarkers("Monthly Withdrawal", labels, monthly, "#68D391")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Monthly Withdrawal (₹)"}},
			},
		},
	}

	return &Outcome{
		Type:        TypeSWP,
		Title:       "SWP Calculator",
		Description: description,
		Result:      text,
		Data: map[string]interface{}{
			"initialCorpus":  in.Corpus,
			"annualReturn":   in.ReturnRate,
			"withdrawalRate": in.WithdrawalPercent,
			"inflationRate":  in.Inflation,
			"years":          years,
			"sustains":       outcome.Sustains,
			"result":         text,
		},
		Analytics: payload,
	}, nil
}

type retirementInput struct {
	CurrentAge           int     `mapstructure:"currentAge"`
	RetirementAge        int     `mapstructure:"retirementAge"`
	MonthlyExpenses      float64 `mapstructure:"monthlyExpenses"`
	InflationRate        float64 `mapstructure:"inflationRate"`
	PostRetirementReturn float64 `mapstructure:"postRetirementReturn"`
}

type retirementCalculator struct{}

func (retirementCalculator) Type() string  { return TypeRetirement }
func (retirementCalculator) Title() string { return "Retirement Corpus Calculator" }

func (retirementCalculator) Calculate(params Params) (*Outcome, error) {
	var in retirementInput
	if err := decode(params, &in, "currentAge", "retirementAge", "monthlyExpenses", "inflationRate", "postRetirementReturn"); err != nil {
		return nil, err
	}

	inputs := finance.RetirementInputs{
		CurrentAge:                  in.CurrentAge,
		RetirementAge:               in.RetirementAge,
		MonthlyExpenses:             in.MonthlyExpenses,
		InflationRatePercent:        in.InflationRate,
		PostRetirementReturnPercent: in.PostRetirementReturn,
	}
	plan, ok := finance.PerpetualCorpus(inputs)
	if !ok {
		return nil, invalid(TypeRetirement)
	}
	expenses, ok := finance.ExpensePath(inputs)
	if !ok {
		return nil, invalid(TypeRetirement)
	}

	ages := make([]string, 0, len(expenses))
	for i := range expenses {
		ages = append(ages, fmt.Sprintf("Age %d", in.CurrentAge+i))
	}

	corpus := mathutil.Round(plan.Corpus)
	payload := &analytics.Payload{
		Title: "Retirement Corpus Analysis",
		Description: fmt.Sprintf("Corpus needed to retire at %d with today's monthly expenses of %s",
			in.RetirementAge, format.CurrencyPlaces(in.MonthlyExpenses, 0)),
		KPIs: []analytics.KPI{
			{Label: "Required Corpus", Value: format.CurrencyPlaces(plan.Corpus, 0)},
			{Label: "Annual Expense at Retirement", Value: format.CurrencyPlaces(plan.InflationAdjustedExpense, 0)},
			{Label: "Real Return", Value: format.Percent(plan.RealReturn * constants.PercentageMultiplier)},
		},
		MainChart: analytics.Chart{
			Title:  "Annual Expenses Until Retirement",
			Data:   []analytics.Trace{analytics.LineMarkers("Annual Expenses", ages, expenses, "#F59E0B")},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Age"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title: "Expense Growth",
				Data: []analytics.Trace{analytics.Bar("Annual Expenses",
					[]string{"Today", "At Retirement"},
					[]float64{plan.AnnualExpensesToday, plan.InflationAdjustedExpense},
					"#FBBF24",
				)},
				Layout: analytics.Layout{YAxis: analytics.Axis{Title: "Amount (₹)"}},
			},
		},
	}

	return &Outcome{
		Type:        TypeRetirement,
		Title:       "Retirement Corpus Calculator",
		Description: fmt.Sprintf("Retirement: %s corpus needed at age %d", format.CurrencyPlaces(plan.Corpus, 0), in.RetirementAge),
		Result:      corpus,
		Data: map[string]interface{}{
			"currentAge":               in.CurrentAge,
			"retirementAge":            in.RetirementAge,
			"monthlyExpenses":          in.MonthlyExpenses,
			"inflationRate":            in.InflationRate,
			"postRetirementReturn":     in.PostRetirementReturn,
			"yearsToRetirement":        plan.YearsToRetirement,
			"annualExpensesToday":      plan.AnnualExpensesToday,
			"inflationAdjustedExpense": plan.InflationAdjustedExpense,
			"retirementCorpus":         corpus,
			"result":                   corpus,
		},
		Analytics: payload,
	}, nil
}
