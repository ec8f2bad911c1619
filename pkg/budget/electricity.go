package budget

import (
	"math"
	"sort"
	"strings"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

const hoursPerDay = 24

// Appliance is one household appliance and its daily use.
type Appliance struct {
	Name     string  `json:"name" yaml:"name" mapstructure:"name"`
	Hours    float64 `json:"hours" yaml:"hours" mapstructure:"hours"`
	Wattage  float64 `json:"wattage" yaml:"wattage" mapstructure:"wattage"`
	Quantity int     `json:"quantity" yaml:"quantity" mapstructure:"quantity"`
}

// DailyKWh is the appliance's daily consumption in kilowatt-hours.
func (a Appliance) DailyKWh() float64 {
	return a.Hours * a.Wattage * float64(a.Quantity) / 1000
}

func (a Appliance) valid() bool {
	if strings.TrimSpace(a.Name) == "" || !mathutil.AllFinite(a.Hours, a.Wattage) {
		return false
	}
	return a.Hours > 0 && a.Hours <= hoursPerDay && a.Wattage > 0 && a.Quantity > 0
}

// ApplianceUsage is an appliance's share of the monthly bill.
type ApplianceUsage struct {
	Appliance
	DailyConsumption   float64
	MonthlyConsumption float64
	MonthlyCost        float64
	Percentage         float64
}

// ElectricityBill is the estimated monthly bill for a set of appliances.
type ElectricityBill struct {
	UnitsPerDay  float64
	MonthlyUnits float64
	Total        float64
	// Usage is sorted by monthly consumption, largest first.
	Usage []ApplianceUsage
}

// DailyAverage is the bill spread over the billing month.
func (b ElectricityBill) DailyAverage() float64 {
	return b.Total / constants.DaysPerBillingMonth
}

// EstimateBill prices a 30-day month of appliance use at unitCost per kWh.
func EstimateBill(appliances []Appliance, unitCost float64) (ElectricityBill, bool) {
	if len(appliances) == 0 || !mathutil.IsFinite(unitCost) || unitCost < 0 {
		return ElectricityBill{}, false
	}

	bill := ElectricityBill{Usage: make([]ApplianceUsage, 0, len(appliances))}
	for _, a := range appliances {
		if !a.valid() {
			return ElectricityBill{}, false
		}
		bill.UnitsPerDay += a.DailyKWh()
	}
	bill.MonthlyUnits = bill.UnitsPerDay * constants.DaysPerBillingMonth
	bill.Total = bill.MonthlyUnits * unitCost
	if !mathutil.AllFinite(bill.MonthlyUnits, bill.Total) {
		return ElectricityBill{}, false
	}

	for _, a := range appliances {
		daily := a.DailyKWh()
		monthly := daily * constants.DaysPerBillingMonth
		bill.Usage = append(bill.Usage, ApplianceUsage{
			Appliance:          a,
			DailyConsumption:   daily,
			MonthlyConsumption: monthly,
			MonthlyCost:        monthly * unitCost,
			Percentage:         mathutil.CalculatePercentage(monthly, bill.MonthlyUnits),
		})
	}
	sort.SliceStable(bill.Usage, func(i, j int) bool {
		return bill.Usage[i].MonthlyConsumption > bill.Usage[j].MonthlyConsumption
	})

	return bill, true
}

// usageStartHour returns the hour an appliance is typically switched on and,
// for air conditioners, the hour of the second (night) session.
func usageStartHour(name string) (start, second int, split bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "light"):
		return 18, 0, false
	case isAirConditioner(lower):
		return 13, 22, true
	default:
		return 8, 0, false
	}
}

func isAirConditioner(lower string) bool {
	if strings.Contains(lower, "air conditioner") {
		return true
	}
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if word == "ac" {
			return true
		}
	}
	return false
}

// HourlyPattern spreads each appliance's daily consumption over the hours it
// typically runs: lights from 18:00, air conditioners split between an
// afternoon session from 13:00 and a night session, everything else from
// 08:00. A fractional last hour carries its fraction of the hourly draw.
func (b ElectricityBill) HourlyPattern() [hoursPerDay]float64 {
	var pattern [hoursPerDay]float64
	for _, u := range b.Usage {
		perHour := u.DailyConsumption / u.Hours
		start, second, split := usageStartHour(u.Name)
		slots := int(math.Ceil(u.Hours))
		for i := 0; i < slots; i++ {
			share := math.Min(1, u.Hours-float64(i))
			hour := (start + i) % hoursPerDay
			if split && float64(i) >= u.Hours/2 {
				hour = (second + i) % hoursPerDay
			}
			pattern[hour] += perHour * share
		}
	}
	return pattern
}
