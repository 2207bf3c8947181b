package calculation

import (
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

// BreakEvenPeriod returns the first period whose EBITDA is non-negative,
// or 0 when the business never breaks even within the horizon.
func BreakEvenPeriod(periods []domain.PeriodRecord) int {
	for _, p := range periods {
		if !p.EBITDA.IsNegative() {
			return p.Period
		}
	}
	return 0
}

// PaybackPeriod returns the first period at which the up-front investment is
// recovered: -investment + cumulative free cash flow >= 0. 0 means never.
func PaybackPeriod(investment decimal.Decimal, periods []domain.PeriodRecord) int {
	cumulative := investment.Neg()
	for _, p := range periods {
		cumulative = cumulative.Add(p.FreeCashFlow)
		if !cumulative.IsNegative() {
			return p.Period
		}
	}
	return 0
}

// CumulativeCashFlow returns the running total of free cash flow after the
// up-front outlay, one entry per period.
func CumulativeCashFlow(investment decimal.Decimal, periods []domain.PeriodRecord) []decimal.Decimal {
	out := make([]decimal.Decimal, len(periods))
	cumulative := investment.Neg()
	for i, p := range periods {
		cumulative = cumulative.Add(p.FreeCashFlow)
		out[i] = cumulative
	}
	return out
}
