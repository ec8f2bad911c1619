// Package scenario derives comparison series by re-running the formula
// engine with perturbed inputs.
package scenario

import (
	"fmt"

	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// Point is a labelled value in a comparison series.
type Point struct {
	Label string
	Value float64
}

// Series is an ordered list of points. Order always follows the input
// perturbations so labels and values stay positionally aligned.
type Series []Point

// Labels returns the labels in order.
func (s Series) Labels() []string {
	labels := make([]string, len(s))
	for i, p := range s {
		labels[i] = p.Label
	}
	return labels
}

// Values returns the values in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Build evaluates every perturbation in order. A perturbation that yields no
// result, or a non-finite one, makes the whole series absent.
func Build[T any](perturbations []T, label func(T) string, eval func(T) (float64, bool)) (Series, bool) {
	series := make(Series, 0, len(perturbations))
	for _, p := range perturbations {
		value, ok := eval(p)
		if !ok || !mathutil.IsFinite(value) {
			return nil, false
		}
		series = append(series, Point{Label: label(p), Value: value})
	}
	return series, true
}

// percentLabel renders a multiplier such as 0.8 as "80%".
func percentLabel(factor float64) string {
	return fmt.Sprintf("%.0f%%", factor*100)
}
