package predict

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"go.uber.org/zap"
)

// Generator answers a free-text prompt with free text.
type Generator interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// PropertyQuery describes a plot of land.
type PropertyQuery struct {
	Latitude       float64 `json:"lat" mapstructure:"lat"`
	Longitude      float64 `json:"lng" mapstructure:"lng"`
	Dismil         float64 `json:"dismil" mapstructure:"dismil"`
	PricePerDismil float64 `json:"price" mapstructure:"price"`
	Years          int     `json:"years" mapstructure:"years"`
}

// CurrentValue is the plot's value at today's price.
func (q PropertyQuery) CurrentValue() float64 {
	return q.Dismil * q.PricePerDismil
}

// Validate rejects queries the estimate cannot be asked for.
func (q PropertyQuery) Validate() error {
	if !mathutil.AllFinite(q.Latitude, q.Longitude, q.Dismil, q.PricePerDismil) {
		return fmt.Errorf("%w: values must be finite", ErrInvalidInput)
	}
	if q.Latitude < -90 || q.Latitude > 90 || q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if q.Dismil <= 0 || q.PricePerDismil <= 0 || q.Years <= 0 {
		return fmt.Errorf("%w: size, price and years must be positive", ErrInvalidInput)
	}
	if !mathutil.IsFinite(q.CurrentValue()) {
		return fmt.Errorf("%w: current value is too large", ErrInvalidInput)
	}
	return nil
}

// Prompt renders the estimate request.
func (q PropertyQuery) Prompt() string {
	return fmt.Sprintf(`Analyze the following real estate data:
- Location (Coordinates): Latitude %.6f, Longitude %.6f
- Land Size: %g dismil
- Current Value: %s

Based on this data and considering factors like location, potential development, and economic trends, predict the property's total value in %d years.

IMPORTANT: Your response MUST be ONLY the final predicted numerical value in Indian Rupees. Do not include any text, explanation, commas, or currency symbols.
For example, if the predicted value is 75 Lakhs, your response should be exactly: 7500000`,
		q.Latitude, q.Longitude, q.Dismil, format.CurrencyPlaces(q.CurrentValue(), 0), q.Years)
}

// PropertyEstimate is a predicted future value.
type PropertyEstimate struct {
	CurrentValue   float64 `json:"currentValue" yaml:"currentValue"`
	PredictedValue float64 `json:"predictedValue" yaml:"predictedValue"`
}

// Description summarizes the estimate for history.
func (e PropertyEstimate) Description(years int) string {
	return fmt.Sprintf("Property Prediction: %s in %d years", format.CurrencyPlaces(e.PredictedValue, 0), years)
}

// HistoryData is the calculation data recorded for an estimate.
func (e PropertyEstimate) HistoryData(q PropertyQuery) map[string]interface{} {
	return map[string]interface{}{
		"inputs": map[string]interface{}{
			"location": map[string]interface{}{
				"lat": strconv.FormatFloat(q.Latitude, 'f', 6, 64),
				"lng": strconv.FormatFloat(q.Longitude, 'f', 6, 64),
			},
			"dismil":       q.Dismil,
			"currentValue": e.CurrentValue,
			"years":        q.Years,
		},
		"result": e.PredictedValue,
	}
}

// PropertyPredictor asks a generator for a single-number estimate.
type PropertyPredictor struct {
	generator Generator
	logger    *zap.Logger
}

// NewPropertyPredictor wraps a generator.
func NewPropertyPredictor(generator Generator, logger *zap.Logger) *PropertyPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyPredictor{generator: generator, logger: logger}
}

// Predict estimates the plot's value Years from now.
func (p *PropertyPredictor) Predict(ctx context.Context, q PropertyQuery) (PropertyEstimate, error) {
	if err := q.Validate(); err != nil {
		return PropertyEstimate{}, err
	}

	text, err := p.generator.Prompt(ctx, q.Prompt())
	if err != nil {
		p.logger.Warn("property estimate failed",
			zap.String("op", "predict.PropertyPredictor.Predict"),
			zap.Error(err),
		)
		return PropertyEstimate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	value, err := ParseAmount(text)
	if err != nil {
		return PropertyEstimate{}, err
	}
	return PropertyEstimate{CurrentValue: q.CurrentValue(), PredictedValue: value}, nil
}

// ParseAmount reads a bare rupee amount, tolerating grouping commas and a
// currency symbol.
func ParseAmount(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, format.RupeeSymbol)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if fields := strings.Fields(cleaned); len(fields) > 0 {
		cleaned = fields[0]
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !mathutil.IsFinite(value) || value <= 0 {
		return 0, fmt.Errorf("%w: %q is not an amount", ErrInvalidResponse, strings.TrimSpace(text))
	}
	return value, nil
}
