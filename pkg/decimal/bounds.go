package decimal

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Min returns the smaller of two decimals
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two decimals
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return Max(lo, Min(v, hi))
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
