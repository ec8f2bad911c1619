package calculators

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/fincalc/pkg/analytics"
	"github.com/iwvelando/fincalc/pkg/budget"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/scenario"
)

type fuelInput struct {
	Distance   float64 `mapstructure:"distance"`
	Efficiency float64 `mapstructure:"efficiency"`
	Price      float64 `mapstructure:"price"`
	Seed       int64   `mapstructure:"seed"`
}

type fuelCalculator struct {
	seed int64
}

func (fuelCalculator) Type() string  { return TypeFuelCost }
func (fuelCalculator) Title() string { return "Fuel Cost Calculator" }

func (c fuelCalculator) Calculate(params Params) (*Outcome, error) {
	in := fuelInput{Seed: c.seed}
	if err := decode(params, &in, "distance", "efficiency", "price"); err != nil {
		return nil, err
	}

	trip, ok := budget.Trip(in.Distance, in.Efficiency, in.Price)
	if !ok {
		return nil, invalid(TypeFuelCost)
	}
	efficiencies, ok := scenario.EfficiencyComparison(in.Distance, in.Price, scenario.DefaultEfficiencies)
	if !ok {
		return nil, invalid(TypeFuelCost)
	}
	prices, ok := scenario.PriceImpact(in.Distance, in.Efficiency, in.Price, scenario.DefaultPriceIncrements)
	if !ok {
		return nil, invalid(TypeFuelCost)
	}
	days, ok := budget.MonthlyProjection(in.Distance, in.Efficiency, in.Price, constants.DaysPerBillingMonth, in.Seed)
	if !ok {
		return nil, invalid(TypeFuelCost)
	}

	dayLabels := make([]string, 0, len(days))
	cumulative := make([]float64, 0, len(days))
	for _, d := range days {
		dayLabels = append(dayLabels, fmt.Sprintf("Day %d", d.Day))
		cumulative = append(cumulative, d.CumulativeCost)
	}

	payload := &analytics.Payload{
		Title: "Fuel Cost Analysis",
		Description: fmt.Sprintf("Analysis of fuel costs for a %g km trip at %g km/l and %s/l",
			in.Distance, in.Efficiency, format.Currency(in.Price)),
		KPIs: []analytics.KPI{
			{Label: "Cost per Trip", Value: format.Currency(trip.Cost)},
			{Label: "Cost per Km", Value: format.Currency(trip.CostPerKm)},
			{Label: "Annual Cost", Value: format.Currency(trip.AnnualCost)},
		},
		MainChart: analytics.Chart{
			Title:  "Efficiency vs. Cost Comparison",
			Data:   []analytics.Trace{analytics.Bar("Trip Cost", efficiencies.Labels(), efficiencies.Values(), "#EAB308")},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Fuel Efficiency"}, YAxis: analytics.Axis{Title: "Trip Cost (₹)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title:  "Monthly Cost Projection",
				Data:   []analytics.Trace{analytics.Line("Cumulative Cost", dayLabels, cumulative, "#EAB308")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Day"}, YAxis: analytics.Axis{Title: "Cumulative Cost (₹)"}},
			},
			{
				Title:  "Fuel Price Impact",
				Data:   []analytics.Trace{analytics.Bar("Trip Cost", prices.Labels(), prices.Values(), "#CA8A04")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Fuel Price"}, YAxis: analytics.Axis{Title: "Trip Cost (₹)"}},
			},
		},
	}

	result := mathutil.Round(trip.Cost)
	return &Outcome{
		Type:        TypeFuelCost,
		Title:       "Fuel Cost Calculator",
		Description: fmt.Sprintf("Fuel Cost: %s for %gkm trip", format.Currency(trip.Cost), in.Distance),
		Result:      result,
		Data: map[string]interface{}{
			"distance":        in.Distance,
			"efficiency":      in.Efficiency,
			"fuelPrice":       in.Price,
			"fuelNeeded":      mathutil.Round(trip.FuelNeeded),
			"costPerTrip":     result,
			"costPerKm":       mathutil.Round(trip.CostPerKm),
			"annualCost":      mathutil.Round(trip.AnnualCost),
			"carbonFootprint": mathutil.Round(trip.CarbonFootprint),
			"seed":            in.Seed,
			"result":          result,
		},
		Analytics: payload,
	}, nil
}

type electricityInput struct {
	Appliances []budget.Appliance `mapstructure:"appliances"`
	UnitCost   float64            `mapstructure:"unitCost"`
}

type electricityCalculator struct{}

func (electricityCalculator) Type() string  { return TypeElectricityBill }
func (electricityCalculator) Title() string { return "Electricity Bill Calculator" }

func (electricityCalculator) Calculate(params Params) (*Outcome, error) {
	var in electricityInput
	if err := decode(params, &in, "appliances", "unitCost"); err != nil {
		return nil, err
	}

	bill, ok := budget.EstimateBill(in.Appliances, in.UnitCost)
	if !ok {
		return nil, invalid(TypeElectricityBill)
	}

	names := make([]string, 0, len(bill.Usage))
	consumption := make([]float64, 0, len(bill.Usage))
	costs := make([]float64, 0, len(bill.Usage))
	breakdown := make([]map[string]interface{}, 0, len(bill.Usage))
	for _, u := range bill.Usage {
		names = append(names, u.Name)
		consumption = append(consumption, u.MonthlyConsumption)
		costs = append(costs, u.MonthlyCost)
		breakdown = append(breakdown, map[string]interface{}{
			"name":               u.Name,
			"dailyConsumption":   mathutil.Round(u.DailyConsumption),
			"monthlyConsumption": mathutil.Round(u.MonthlyConsumption),
			"monthlyCost":        mathutil.Round(u.MonthlyCost),
			"percentage":         mathutil.RoundTo(u.Percentage, 1),
		})
	}

	pattern := bill.HourlyPattern()
	hours := make([]string, len(pattern))
	for h := range pattern {
		hours[h] = strconv.Itoa(h)
	}

	payload := &analytics.Payload{
		Title:       "Electricity Usage Analysis",
		Description: "Detailed breakdown of your electricity consumption and costs",
		KPIs: []analytics.KPI{
			{Label: "Monthly Bill", Value: format.Currency(bill.Total)},
			{Label: "Daily Average", Value: format.Currency(bill.DailyAverage())},
			{Label: "Monthly Usage", Value: fmt.Sprintf("%.2f kWh", bill.MonthlyUnits)},
		},
		MainChart: analytics.Chart{
			Title:  "Appliance Energy Consumption",
			Data:   []analytics.Trace{analytics.Bar("kWh per Month", names, consumption, "#A855F7")},
			Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Appliance"}, YAxis: analytics.Axis{Title: "Consumption (kWh)"}},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title: "Cost Distribution by Appliance",
				Data:  []analytics.Trace{analytics.Pie(names, costs)},
			},
			{
				Title:  "Hourly Energy Usage Pattern",
				Data:   []analytics.Trace{analytics.Line("kWh", hours, pattern[:], "#A855F7")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Hour of Day"}, YAxis: analytics.Axis{Title: "Consumption (kWh)"}},
			},
		},
	}

	result := mathutil.Round(bill.Total)
	return &Outcome{
		Type:        TypeElectricityBill,
		Title:       "Electricity Bill Calculator",
		Description: fmt.Sprintf("Electricity Bill: %s for %.2f units", format.Currency(bill.Total), bill.MonthlyUnits),
		Result:      result,
		Data: map[string]interface{}{
			"appliances":         in.Appliances,
			"unitCost":           in.UnitCost,
			"totalUnitsPerDay":   mathutil.Round(bill.UnitsPerDay),
			"monthlyUnits":       mathutil.Round(bill.MonthlyUnits),
			"total":              result,
			"applianceBreakdown": breakdown,
			"result":             result,
		},
		Analytics: payload,
	}, nil
}

type expensesInput struct {
	Expenses []budget.Expense `mapstructure:"expenses"`
}

type expensesCalculator struct{}

func (expensesCalculator) Type() string  { return TypeMonthlyExpenses }
func (expensesCalculator) Title() string { return "Monthly Expenses Tracker" }

func (expensesCalculator) Calculate(params Params) (*Outcome, error) {
	var in expensesInput
	if err := decode(params, &in, "expenses"); err != nil {
		return nil, err
	}

	summary, ok := budget.SummarizeExpenses(in.Expenses)
	if !ok {
		return nil, invalid(TypeMonthlyExpenses)
	}

	sliceNames := make([]string, 0, len(summary.Slices))
	sliceAmounts := make([]float64, 0, len(summary.Slices))
	for _, s := range summary.Slices {
		sliceNames = append(sliceNames, s.Name)
		sliceAmounts = append(sliceAmounts, s.Amount)
	}

	top := summary.Sorted
	if len(top) > constants.MaxExpenseSlices {
		top = top[:constants.MaxExpenseSlices]
	}
	topNames := make([]string, 0, len(top))
	topAmounts := make([]float64, 0, len(top))
	for _, e := range top {
		topNames = append(topNames, e.Name)
		topAmounts = append(topAmounts, e.Amount)
	}

	payload := &analytics.Payload{
		Title: "Monthly Expenses Analysis",
		Description: fmt.Sprintf("Breakdown and analysis of %d monthly expenses totaling %s",
			len(in.Expenses), format.CurrencyPlaces(summary.Total, 0)),
		KPIs: []analytics.KPI{
			{Label: "Total Expenses", Value: format.CurrencyPlaces(summary.Total, 0)},
			{Label: "Top Expense", Value: summary.Top().Name},
			{Label: "Top Expense %", Value: format.Percent(summary.TopPercentage())},
		},
		MainChart: analytics.Chart{
			Title: "Expense Breakdown",
			Data:  []analytics.Trace{analytics.Pie(sliceNames, sliceAmounts)},
		},
		SecondaryCharts: []analytics.Chart{
			{
				Title: "50/30/20 Budget Rule Comparison",
				Data: []analytics.Trace{analytics.Bar("Recommended",
					[]string{"Essentials (50%)", "Savings (30%)", "Discretionary (20%)"},
					[]float64{summary.Allocation.Essentials, summary.Allocation.Savings, summary.Allocation.Discretionary},
					"#48BB78",
				)},
				Layout: analytics.Layout{YAxis: analytics.Axis{Title: "Amount (₹)"}},
			},
			{
				Title:  "Top Expenses Breakdown",
				Data:   []analytics.Trace{analytics.Bar("Amount", topNames, topAmounts, "#9F7AEA")},
				Layout: analytics.Layout{XAxis: analytics.Axis{Title: "Expense Category"}, YAxis: analytics.Axis{Title: "Amount (₹)"}},
			},
		},
	}

	result := mathutil.Round(summary.Total)
	return &Outcome{
		Type:        TypeMonthlyExpenses,
		Title:       "Monthly Expenses Tracker",
		Description: fmt.Sprintf("Monthly Expenses: %s across %d items", format.CurrencyPlaces(summary.Total, 0), len(in.Expenses)),
		Result:      result,
		Data: map[string]interface{}{
			"expenses":   in.Expenses,
			"total":      result,
			"topExpense": summary.Top().Name,
			"result":     result,
		},
		Analytics: payload,
	}, nil
}
