// Package format renders amounts the way the calculators display them.
package format

import (
	"strings"

	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// RupeeSymbol prefixes currency strings.
const RupeeSymbol = "₹"

// NotANumber is rendered in place of NaN or infinite values.
const NotANumber = "n/a"

// Currency returns a rupee string with Indian digit grouping and two decimals
// (e.g. "-₹12,34,567.89").
func Currency(amount float64) string {
	return CurrencyPlaces(amount, 2)
}

// CurrencyPlaces is Currency with an explicit number of decimal places; zero
// places drops the fraction entirely (e.g. "₹9,650").
func CurrencyPlaces(amount float64, places int32) string {
	if !mathutil.IsFinite(amount) {
		return NotANumber
	}
	formatted := grouped(amount, places)
	if strings.HasPrefix(formatted, "-") {
		return "-" + RupeeSymbol + formatted[1:]
	}
	return RupeeSymbol + formatted
}

// NumericCurrency returns an Indian-grouped amount without a currency symbol
// (e.g. "-12,34,567.89").
func NumericCurrency(amount float64) string {
	return grouped(amount, 2)
}

// Percent renders a percentage with one decimal (e.g. "30.0%").
func Percent(value float64) string {
	if !mathutil.IsFinite(value) {
		return NotANumber
	}
	return decimal.NewFromFloat(value).StringFixed(1) + "%"
}

func grouped(amount float64, places int32) string {
	if !mathutil.IsFinite(amount) {
		return NotANumber
	}
	fixed := decimal.NewFromFloat(amount).StringFixed(places)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	// "-0.00" after rounding a tiny negative is just zero.
	if strings.Trim(fixed, "0.") == "" {
		sign = ""
	}

	intPart, fracPart := fixed, ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart, fracPart = fixed[:idx], fixed[idx:]
	}

	return sign + groupIndian(intPart) + fracPart
}

// groupIndian places a separator before the last three digits and then after
// every two digits, e.g. 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var builder strings.Builder
	lead := len(head) % 2
	if lead > 0 {
		builder.WriteString(head[:lead])
	}
	for i := lead; i < len(head); i += 2 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(head[i : i+2])
	}
	builder.WriteByte(',')
	builder.WriteString(tail)
	return builder.String()
}
