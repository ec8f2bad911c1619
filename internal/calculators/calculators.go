// Package calculators adapts loosely typed form input to the formula engine
// and shapes each result for display, charting and history.
package calculators

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/iwvelando/fincalc/pkg/analytics"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/mitchellh/mapstructure"
)

// Calculator type tags.
const (
	TypeEMI               = "emi"
	TypeSIP               = "sip"
	TypeLumpsum           = "lumpsum"
	TypeRetirement        = "retirement"
	TypeLoanAffordability = "loan_affordability"
	TypeSWP               = "swp"
	TypeRentVsBuy         = "rent_vs_buy"
	TypeFuelCost          = "fuel_cost"
	TypeElectricityBill   = "electricity_bill"
	TypeMonthlyExpenses   = "monthly_expenses"
)

// ErrInvalidInput is returned when input is missing, non-numeric or out of
// range and the engine produced no result.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownCalculator is returned for an unregistered type tag.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Params holds raw form values keyed by field name. Values may be numbers,
// numeric strings, booleans or nested lists.
type Params map[string]interface{}

// Outcome is the shaped result of one calculation.
type Outcome struct {
	Type        string      `json:"type" yaml:"type"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Result      interface{} `json:"result" yaml:"result"`
	// Data holds the inputs plus derived figures; it always carries a
	// "result" key and is what history persists.
	Data      map[string]interface{}  `json:"data" yaml:"data"`
	Analytics *analytics.Payload      `json:"analytics,omitempty" yaml:"analytics,omitempty"`
	Schedule  []loans.AmortizationRow `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// Calculator is one calculator type.
type Calculator interface {
	Type() string
	Title() string
	Calculate(params Params) (*Outcome, error)
}

// Info describes a registered calculator.
type Info struct {
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title" yaml:"title"`
}

// Options tunes calculators that accept configuration.
type Options struct {
	// FuelProjectionSeed seeds the fuel calculator's illustrative daily
	// distance variation when the request does not carry its own seed.
	FuelProjectionSeed int64
}

// Registry looks calculators up by type tag.
type Registry struct {
	calculators map[string]Calculator
	order       []string
}

// NewRegistry registers every calculator.
func NewRegistry(opts Options) *Registry {
	if opts.FuelProjectionSeed == 0 {
		opts.FuelProjectionSeed = constants.DefaultFuelProjectionSeed
	}

	r := &Registry{calculators: make(map[string]Calculator)}
	for _, c := range []Calculator{
		emiCalculator{},
		sipCalculator{},
		lumpsumCalculator{},
		retirementCalculator{},
		affordabilityCalculator{},
		swpCalculator{},
		rentVsBuyCalculator{},
		fuelCalculator{seed: opts.FuelProjectionSeed},
		electricityCalculator{},
		expensesCalculator{},
	} {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a calculator.
func (r *Registry) Register(c Calculator) {
	if _, exists := r.calculators[c.Type()]; !exists {
		r.order = append(r.order, c.Type())
	}
	r.calculators[c.Type()] = c
}

// Get returns the calculator for a type tag.
func (r *Registry) Get(calculatorType string) (Calculator, error) {
	c, ok := r.calculators[strings.TrimSpace(calculatorType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalculator, calculatorType)
	}
	return c, nil
}

// Calculate runs the calculator registered for calculatorType.
func (r *Registry) Calculate(calculatorType string, params Params) (*Outcome, error) {
	c, err := r.Get(calculatorType)
	if err != nil {
		return nil, err
	}
	outcome, err := c.Calculate(params)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(outcome); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, outcome.Type, err)
	}
	return outcome, nil
}

// checkFinite rejects outcomes carrying NaN or infinite figures.
func checkFinite(outcome *Outcome) error {
	if v, ok := outcome.Result.(float64); ok && !mathutil.IsFinite(v) {
		return analytics.ErrNonFiniteValue
	}
	for key, value := range outcome.Data {
		if v, ok := value.(float64); ok && !mathutil.IsFinite(v) {
			return fmt.Errorf("%s: %w", key, analytics.ErrNonFiniteValue)
		}
	}
	for _, row := range outcome.Schedule {
		if !mathutil.AllFinite(row.Interest, row.Principal, row.RemainingBalance) {
			return fmt.Errorf("schedule period %d: %w", row.Period, analytics.ErrNonFiniteValue)
		}
	}
	if outcome.Analytics == nil {
		return nil
	}
	for _, kpi := range outcome.Analytics.KPIs {
		if kpi.Change != nil && !mathutil.IsFinite(*kpi.Change) {
			return fmt.Errorf("kpi %q: %w", kpi.Label, analytics.ErrNonFiniteValue)
		}
	}
	return outcome.Analytics.Validate()
}

// Catalog lists registered calculators in registration order.
func (r *Registry) Catalog() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, t := range r.order {
		infos = append(infos, Info{Type: t, Title: r.calculators[t].Title()})
	}
	return infos
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	types := append([]string(nil), r.order...)
	sort.Strings(types)
	return types
}

// decode weakly decodes params into out and checks that every required key
// carries a non-empty value.
func decode(params Params, out interface{}, required ...string) error {
	for _, key := range required {
		value, ok := params[key]
		if !ok || value == nil {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, key)
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(jsonListHook, wholeNumberHook),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(params)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// jsonListHook lets list fields arrive as a JSON array string, as they do
// from the command line.
func jsonListHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	raw := strings.TrimSpace(reflect.ValueOf(data).String())
	if !strings.HasPrefix(raw, "[") {
		return data, nil
	}
	var list []interface{}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// wholeNumberHook refuses to truncate a fractional number into an integer
// field such as a tenure in years.
func wholeNumberHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	v := reflect.ValueOf(data).Float()
	if !mathutil.IsFinite(v) || v != math.Trunc(v) {
		return nil, fmt.Errorf("%v is not a whole number", v)
	}
	return data, nil
}

// invalid is returned when the engine reports no result.
func invalid(calculatorType string) error {
	return fmt.Errorf("%w: %s inputs produced no result", ErrInvalidInput, calculatorType)
}
