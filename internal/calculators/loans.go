package calculators

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/analytics"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/finance"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/scenario"
)

type emiInput struct {
	Principal float64 `mapstructure:"principal"`
	Rate      float64 `mapstructure:"rate"`
	Tenure    int     `mapstructure:"tenure"`
}

type emiCalculator struct{}

func (emiCalculator) Type() string  { return TypeEMI }
func (emiCalculator) Title() string { return "EMI Calculator" }

func (emiCalculator) Calculate(params Params) (*Outcome, error) {
	var in emiInput
	if err := decode(params, &in, "principal", "rate", "tenure"); err != nil {
		return nil, err
	}

	terms := loans.LoanTerms{Principal: in.Principal, AnnualRatePercent: in.Rate, TermYears: in.Tenure}
	totals, ok := terms.Summarize()
	if !ok {
		return nil, invalid(TypeEMI)
	}
	schedule, ok := terms.Schedule()
	if !ok {
		return nil, invalid(TypeEMI)
	}

	emi := totals.Payment.Amount
	var months []string
	var principalPaid, interestPaid, balance []float64
	for _, row := range schedule {
		if !loans.SampledPeriod(row.Period, len(schedule)) {
			continue
		}
		months = append(months, fmt.Sprintf("Month %d", row.Period))
		principalPaid = append(principalPaid, row.Principal)
		interestPaid = append(interestPaid, row.Interest)
		balance = append(balance, row.RemainingBalance)
	}

	payload := &analytics.Payload{
		Title:       "EMI Calculation Analysis",
		Description: "Detailed breakdown of your loan EMI and payment schedule",
		KPIs: []analytics.KPI{
			{Label: "Monthly EMI", Value: format.Currency(emi)},
			{Label: "Total Interest", Value: format.Currency(totals.TotalInterest), Change: analytics.Change(3)},
			{Label: "Total Payment", Value: format.Currency(totals.TotalPayment)},
		},
		MainChart: analytics.Chart{
			Title: "Loan Payment Breakdown",
			Data:  []analytics.Trace{analytics.Pie([]string{"Principal", "Interest"}, []float64{in.Principal, totals.TotalInterest})},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title:  "Payment Timeline",
				Data:   []analytics.Trace{analytics.LineMarkers("Balance", months, balance, "#ff9ff3")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Period"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
			},
			{
				Title: "Principal vs Interest",
				Data: []analytics.Trace{
					analytics.Bar("Principal", months, principalPaid, "#ff9ff3"),
					analytics.Bar("Interest", months, interestPaid, "#f368e0"),
				},
				Layout: analytics.Layout{
					XAxis:   analytics.Axis{Title: "Period"},
					YAxis:   analytics.Axis{Title: "Amount (₹)"},
					BarMode: "stack",
				},
			},
		},
	}

	result := mathutil.Round(emi)
	return &Outcome{
		Type:        TypeEMI,
		Title:       "EMI Calculator",
		Description: fmt.Sprintf("EMI: %s loan at %g%% for %d years", format.CurrencyPlaces(in.Principal, 0), in.Rate, in.Tenure),
		Result:      result,
		Data: map[string]interface{}{
			"principal":     in.Principal,
			"interestRate":  in.Rate,
			"tenureYears":   in.Tenure,
			"emi":           emi,
			"totalPayment":  totals.TotalPayment,
			"totalInterest": totals.TotalInterest,
			"result":        result,
		},
		Analytics: payload,
		Schedule:  schedule,
	}, nil
}

type affordabilityInput struct {
	MonthlyIncome float64 `mapstructure:"monthlyIncome"`
	CurrentEMI    float64 `mapstructure:"currentEmi"`
}

type affordabilityCalculator struct{}

func (affordabilityCalculator) Type() string  { return TypeLoanAffordability }
func (affordabilityCalculator) Title() string { return "Loan Affordability Calculator" }

func (affordabilityCalculator) Calculate(params Params) (*Outcome, error) {
	var in affordabilityInput
	if err := decode(params, &in, "monthlyIncome", "currentEmi"); err != nil {
		return nil, err
	}

	result, ok := finance.Evaluate(in.MonthlyIncome, in.CurrentEMI)
	if !ok {
		return nil, invalid(TypeLoanAffordability)
	}
	stress, ok := scenario.IncomeStress(in.MonthlyIncome, in.CurrentEMI, scenario.DefaultIncomeFactors)
	if !ok {
		return nil, invalid(TypeLoanAffordability)
	}
	byType, ok := scenario.LoanTypeCapacity(result.Headroom, scenario.DefaultLoanTypes)
	if !ok {
		return nil, invalid(TypeLoanAffordability)
	}

	room := math.Max(0, result.Headroom)
	currentEMILine := make([]float64, len(stress))
	for i := range currentEMILine {
		currentEMILine[i] = in.CurrentEMI
	}

	limitPercent := constants.DebtToIncomeLimit * constants.PercentageMultiplier
	payload := &analytics.Payload{
		Title: "Loan Affordability Analysis",
		Description: fmt.Sprintf("Analysis of loan affordability based on monthly income of %s and current EMIs of %s",
			format.CurrencyPlaces(in.MonthlyIncome, 0), format.CurrencyPlaces(in.CurrentEMI, 0)),
		KPIs: []analytics.KPI{
			{Label: "Current DTI Ratio", Value: format.Percent(result.CurrentRatioPercent), Change: analytics.Change(result.CurrentRatioPercent - limitPercent)},
			{Label: "Max Safe EMI", Value: format.CurrencyPlaces(result.Capacity, 0)},
			{Label: "Available EMI Room", Value: format.CurrencyPlaces(room, 0)},
		},
		MainChart: analytics.Chart{
			Title: "EMI Capacity by Income Level",
			Data: []analytics.Trace{
				analytics.Bar("Max EMI Capacity", stress.Labels(), stress.Values(), "#F6AD55"),
				analytics.Line("Current EMI", stress.Labels(), currentEMILine, "#F56565"),
			},
			Layout: analytics.Layout{YAxis: analytics.Axis{Title: "EMI Amount (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title:  "Affordable Loan Amount by Type",
				Data:   []analytics.Trace{analytics.Bar("Affordable Loan", byType.Labels(), byType.Values(), "#4299E1")},
				Layout: analytics.Layout{YAxis: analytics.Axis{Title: "Loan Amount (₹)"}},
			},
			{
				Title: "EMI Budget Breakdown",
				Data: []analytics.Trace{analytics.Pie(
					[]string{"Current EMIs", "Available EMI Capacity", "Rest of Income"},
					[]float64{in.CurrentEMI, room, in.MonthlyIncome - result.Capacity},
				)},
			},
		},
	}

	return &Outcome{
		Type:  TypeLoanAffordability,
		Title: "Loan Affordability Calculator",
		Description: fmt.Sprintf("Loan Affordability: %s EMI room with %s income",
			format.CurrencyPlaces(result.Headroom, 0), format.CurrencyPlaces(in.MonthlyIncome, 0)),
		Result: mathutil.Round(result.Headroom),
		Data: map[string]interface{}{
			"monthlyIncome": in.MonthlyIncome,
			"currentEmi":    in.CurrentEMI,
			"maxEmi":        result.Capacity,
			"room":          result.Headroom,
			"band":          string(result.Band),
			"message":       result.Band.Message(),
			"dtiLimit":      limitPercent / 100,
			"currentDTI":    result.CurrentRatioPercent,
			"result":        mathutil.Round(result.Headroom),
		},
		Analytics: payload,
	}, nil
}

type rentVsBuyInput struct {
	Rent         float64 `mapstructure:"rent"`
	Price        float64 `mapstructure:"price"`
	Interest     float64 `mapstructure:"interest"`
	Tenure       int     `mapstructure:"tenure"`
	Appreciation float64 `mapstructure:"appreciation"`
}

type rentVsBuyCalculator struct{}

func (rentVsBuyCalculator) Type() string  { return TypeRentVsBuy }
func (rentVsBuyCalculator) Title() string { return "Rent vs Buy Calculator" }

func (rentVsBuyCalculator) Calculate(params Params) (*Outcome, error) {
	var in rentVsBuyInput
	if err := decode(params, &in, "rent", "price", "interest", "tenure", "appreciation"); err != nil {
		return nil, err
	}

	cmp, ok := scenario.RentVsBuy(scenario.RentVsBuyInputs{
		MonthlyRent:         in.Rent,
		PropertyPrice:       in.Price,
		InterestPercent:     in.Interest,
		TenureYears:         in.Tenure,
		AppreciationPercent: in.Appreciation,
	})
	if !ok {
		return nil, invalid(TypeRentVsBuy)
	}

	years := make([]string, 0, len(cmp.Years))
	rentCumulative := make([]float64, 0, len(cmp.Years))
	netBuy := make([]float64, 0, len(cmp.Years))
	propertyValues := make([]float64, 0, len(cmp.Years))
	for _, y := range cmp.Years {
		years = append(years, fmt.Sprintf("Year %d", y.Year))
		rentCumulative = append(rentCumulative, y.CumulativeRent)
		netBuy = append(netBuy, y.NetBuyCost())
		propertyValues = append(propertyValues, y.PropertyValue)
	}

	payload := &analytics.Payload{
		Title: "Rent vs. Buy Analysis",
		Description: fmt.Sprintf("Analysis of renting vs. buying a property worth %s over %d years",
			format.CurrencyPlaces(in.Price, 0), in.Tenure),
		KPIs: []analytics.KPI{
			{Label: "Monthly EMI", Value: format.CurrencyPlaces(cmp.EMI, 0)},
			{Label: "Break-even", Value: cmp.BreakEvenLabel()},
			{Label: "Better Option Savings", Value: format.CurrencyPlaces(cmp.Savings(), 0)},
		},
		MainChart: analytics.Chart{
			Title: "Rent vs. Buy Cost Over Time",
			Data: []analytics.Trace{
				analytics.Line("Cumulative Rent", years, rentCumulative, "#3B82F6"),
				analytics.Line("Net Buy Cost (EMI - Property Value)", years, netBuy, "#93C5FD"),
			},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Cost (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title:  "Property Value Appreciation",
				Data:   []analytics.Trace{analytics.LineMarkers("Property Value", years, propertyValues, "#10B981")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Year"}, YAxis: analytics.Axis{Title: "Value (₹)"}},
			},
			{
				Title: "Final Cost Comparison",
				Data: []analytics.Trace{analytics.Bar("Amount",
					[]string{"Total Rent", "Total EMI", "Property Value", "Net Buy Cost"},
					[]float64{cmp.TotalRent, cmp.TotalLoanOutgo, cmp.AppreciationValue, cmp.NetBuyCost()},
					"#3B82F6",
				)},
				Layout: analytics.Layout{YAxis: analytics.Axis{Title: "Amount (₹)"}},
			},
		},
	}

	decision := cmp.Decision()
	return &Outcome{
		Type:        TypeRentVsBuy,
		Title:       "Rent vs Buy Calculator",
		Description: fmt.Sprintf("Rent vs Buy: %s for %s property", decision, format.CurrencyPlaces(in.Price, 0)),
		Result:      decision,
		Data: map[string]interface{}{
			"monthlyRent":       in.Rent,
			"propertyPrice":     in.Price,
			"interestRate":      in.Interest,
			"tenureYears":       in.Tenure,
			"appreciationRate":  in.Appreciation,
			"emi":               math.Round(cmp.EMI),
			"totalRent":         math.Round(cmp.TotalRent),
			"appreciationValue": math.Round(cmp.AppreciationValue),
			"totalLoanOutgo":    math.Round(cmp.TotalLoanOutgo),
			"breakEven":         cmp.BreakEvenLabel(),
			"decision":          decision,
			"result":            decision,
		},
		Analytics: payload,
	}, nil
}
