package output

import (
	"sort"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// NotAvailable is printed wherever a metric could not be calculated.
const NotAvailable = "n/a"

var usd = accounting.Accounting{Symbol: "$", Precision: 2}

// FormatCurrency formats a decimal as USD with thousands separators and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return usd.FormatMoney(amount.Round(2).InexactFloat64())
}

// FormatMoney formats an amount in the given ISO currency, falling back to USD
// for codes go-money does not know.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		currency = money.USD
	}
	cur := money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatNumber groups thousands and keeps precision decimals.
func FormatNumber(amount decimal.Decimal, precision int) string {
	return accounting.FormatNumber(amount.InexactFloat64(), precision, ",", ".")
}

// FormatFraction renders a 0..1 share as a percentage.
func FormatFraction(share decimal.Decimal) string {
	return FormatPercentage(share.Mul(decimal.NewFromInt(100)))
}

// FormatOptional applies format to a calculable value and prints n/a otherwise.
func FormatOptional(v decimal.NullDecimal, format func(decimal.Decimal) string) string {
	if !v.Valid {
		return NotAvailable
	}
	return format(v.Decimal)
}

// FormatRatio prints a plain multiple such as 1.35x.
func FormatRatio(v decimal.Decimal) string { return v.StringFixed(2) + "x" }

// FormatPeriod prints a 1-based period index, or "never" for zero.
func FormatPeriod(period int) string {
	if period <= 0 {
		return "never"
	}
	return "month " + strconv.Itoa(period)
}

func optionalString(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return NotAvailable
	}
	return v.Decimal.StringFixed(places)
}

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
