// Package budget holds the household running-cost formulas: fuel,
// electricity and monthly expenses.
package budget

import (
	"math/rand"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// TripCost is the fuel cost breakdown for a single trip.
type TripCost struct {
	FuelNeeded      float64
	Cost            float64
	CostPerKm       float64
	AnnualCost      float64
	CarbonFootprint float64
}

// Trip prices a trip of distance km at efficiency km/l and price per litre.
// Annual cost assumes two trips a week.
func Trip(distance, efficiency, pricePerLitre float64) (TripCost, bool) {
	if !mathutil.AllFinite(distance, efficiency, pricePerLitre) {
		return TripCost{}, false
	}
	if distance <= 0 || efficiency <= 0 || pricePerLitre < 0 {
		return TripCost{}, false
	}

	fuel := distance / efficiency
	cost := fuel * pricePerLitre
	if !mathutil.AllFinite(fuel, cost*constants.TripsPerYear, fuel*constants.PetrolCO2PerLitre) {
		return TripCost{}, false
	}
	return TripCost{
		FuelNeeded:      fuel,
		Cost:            cost,
		CostPerKm:       cost / distance,
		AnnualCost:      cost * constants.TripsPerYear,
		CarbonFootprint: fuel * constants.PetrolCO2PerLitre,
	}, true
}

// ProjectionDay is one day of an illustrative monthly fuel projection.
type ProjectionDay struct {
	Day            int
	Distance       float64
	Cost           float64
	CumulativeCost float64
}

// MonthlyProjection illustrates a month of daily driving where each day's
// distance varies between 80% and 120% of the trip distance. The variation is
// drawn from a generator seeded with seed so a projection can be reproduced.
func MonthlyProjection(distance, efficiency, pricePerLitre float64, days int, seed int64) ([]ProjectionDay, bool) {
	if _, ok := Trip(distance, efficiency, pricePerLitre); !ok || days <= 0 {
		return nil, false
	}

	rng := rand.New(rand.NewSource(seed))
	projection := make([]ProjectionDay, 0, days)
	cumulative := 0.0
	for day := 1; day <= days; day++ {
		daily := distance * (0.8 + rng.Float64()*0.4)
		cost := daily / efficiency * pricePerLitre
		cumulative += cost
		projection = append(projection, ProjectionDay{
			Day:            day,
			Distance:       daily,
			Cost:           cost,
			CumulativeCost: cumulative,
		})
	}
	return projection, true
}
