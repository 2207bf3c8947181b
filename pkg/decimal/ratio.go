package decimal

import (
	"math"

	"github.com/shopspring/decimal"
)

// NotCalculable is the sentinel for a metric that has no numeric value.
var NotCalculable = decimal.NullDecimal{}

// Valid wraps d as a present NullDecimal.
func Valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// FromFloat converts f, returning the sentinel for NaN and infinities.
func FromFloat(f float64) decimal.NullDecimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NotCalculable
	}
	return Valid(decimal.NewFromFloat(f))
}

// Fraction converts a percentage (12.5) into a fraction (0.125).
func Fraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// Percent converts a fraction (0.125) into a percentage (12.5).
func Percent(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Mul(hundred)
}

// SafeDiv returns num/den, or the sentinel when den is zero.
func SafeDiv(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return NotCalculable
	}
	return Valid(num.Div(den))
}

// PercentOf returns part/whole*100, or zero when whole is zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Mean returns the arithmetic mean, or zero for no values.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return Sum(values...).Div(decimal.NewFromInt(int64(len(values))))
}
