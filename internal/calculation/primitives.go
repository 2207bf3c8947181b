package calculation

import (
	"math"

	"github.com/shopspring/decimal"

	dec "github.com/rpgo/bizplan/pkg/decimal"
)

const (
	// IRRInitialGuess is the starting monthly rate for Newton-Raphson.
	IRRInitialGuess = 0.10
	// IRRMaxIterations bounds the root search.
	IRRMaxIterations = 100
	// IRRTolerance is both the residual NPV needed to stop and the smallest
	// derivative magnitude the solver will divide by.
	IRRTolerance = 1e-6
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	daysPerMonth  = decimal.NewFromInt(30)
)

// MonthlyRateFromAnnual converts an annual percentage into the equivalent
// compounding monthly rate, (1 + annual/100)^(1/12) - 1, as a fraction.
// Annual rates at or below -100% have no monthly equivalent and yield -1.
func MonthlyRateFromAnnual(annualPct decimal.Decimal) decimal.Decimal {
	base := 1 + annualPct.InexactFloat64()/100
	if base <= 0 {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromFloat(math.Pow(base, 1.0/12) - 1)
}

// StraightLineDepreciation returns the constant monthly charge for investment
// spread over lifeYears. Zero when either input is non-positive.
func StraightLineDepreciation(investment, lifeYears decimal.Decimal) decimal.Decimal {
	if !investment.IsPositive() || !lifeYears.IsPositive() {
		return decimal.Zero
	}
	return investment.Div(lifeYears.Mul(monthsPerYear))
}

// WorkingCapital holds end-of-period balance sheet levels.
type WorkingCapital struct {
	Receivables decimal.Decimal
	Inventory   decimal.Decimal
	Payables    decimal.Decimal
}

// Net returns receivables + inventory - payables.
func (wc WorkingCapital) Net() decimal.Decimal {
	return wc.Receivables.Add(wc.Inventory).Sub(wc.Payables)
}

// WorkingCapitalLevels approximates balances with a 30-day month:
// AR = revenue*dso/30, inventory = cogs*dio/30, AP = cogs*dpo/30.
func WorkingCapitalLevels(revenue, cogs, receivableDays, inventoryDays, payableDays decimal.Decimal) WorkingCapital {
	return WorkingCapital{
		Receivables: revenue.Mul(receivableDays).Div(daysPerMonth),
		Inventory:   cogs.Mul(inventoryDays).Div(daysPerMonth),
		Payables:    cogs.Mul(payableDays).Div(daysPerMonth),
	}
}

// DebtService is the cash owed to lenders for one period.
type DebtService struct {
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// Total returns interest plus principal.
func (ds DebtService) Total() decimal.Decimal {
	return ds.Interest.Add(ds.Principal)
}

// DebtServiceFor computes the simplified debt service for a 1-based period.
// Interest is charged on the original principal every period (no declining
// balance). Principal is repaid straight-line over the term unless the loan
// is interest-only or the term has ended.
func DebtServiceFor(period int, principal, annualRatePct decimal.Decimal, termMonths int, interestOnly bool) DebtService {
	if !principal.IsPositive() || termMonths <= 0 {
		return DebtService{Interest: decimal.Zero, Principal: decimal.Zero}
	}

	interest := principal.Mul(dec.Fraction(annualRatePct)).Div(monthsPerYear)
	repaid := decimal.Zero
	if !interestOnly && period <= termMonths {
		repaid = principal.Div(decimal.NewFromInt(int64(termMonths)))
	}
	return DebtService{Interest: interest, Principal: repaid}
}

// NPV discounts flows at a periodic rate: sum(flows[i] / (1+rate)^i), i = 0..n-1.
// Index 0 is undiscounted. A rate at or below -100% yields zero.
func NPV(rate decimal.Decimal, flows []decimal.Decimal) decimal.Decimal {
	r := rate.InexactFloat64()
	if r <= -1 {
		return decimal.Zero
	}
	return finiteDecimal(npvFloat(r, toFloats(flows)))
}

// MonthlyIRR solves sum(flows[i]/(1+r)^i) = 0 for r with Newton-Raphson.
// ok is false when the solver cannot produce a rate.
func MonthlyIRR(flows []decimal.Decimal) (rate float64, ok bool) {
	if len(flows) < 2 {
		return 0, false
	}
	cf := toFloats(flows)

	rate = IRRInitialGuess
	for i := 0; i < IRRMaxIterations; i++ {
		f := npvFloat(rate, cf)
		if math.Abs(f) < IRRTolerance {
			return rate, true
		}
		df := npvDerivative(rate, cf)
		if math.Abs(df) < IRRTolerance {
			return 0, false
		}
		rate -= f / df
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= -1 {
			return 0, false
		}
	}
	return 0, false
}

// IRR returns the internal rate of return as an annual percentage, scaled
// linearly from the monthly rate (rate * 12 * 100). Unsolvable flows yield
// the not-calculable sentinel.
func IRR(flows []decimal.Decimal) decimal.NullDecimal {
	rate, ok := MonthlyIRR(flows)
	if !ok {
		return dec.NotCalculable
	}
	return dec.FromFloat(rate * 12 * 100)
}

// ProfitabilityIndex returns (npv + investment) / investment, or the
// sentinel when investment is not positive.
func ProfitabilityIndex(npv, investment decimal.Decimal) decimal.NullDecimal {
	if !investment.IsPositive() {
		return dec.NotCalculable
	}
	return dec.Valid(npv.Add(investment).Div(investment))
}

// NormalDeviate draws from N(mean, sd) with the Box-Muller transform.
// u1 is taken from (0, 1] so the logarithm is always finite.
func NormalDeviate(src RandomSource, mean, sd float64) float64 {
	u1 := 1 - src.Float64()
	u2 := src.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*sd
}

func npvFloat(rate float64, flows []float64) float64 {
	total := 0.0
	factor := 1.0
	for _, cf := range flows {
		total += cf / factor
		factor *= 1 + rate
	}
	return total
}

// npvDerivative is d/dr of npvFloat: sum(-i * cf[i] / (1+r)^(i+1)).
func npvDerivative(rate float64, flows []float64) float64 {
	total := 0.0
	for i, cf := range flows {
		if i == 0 {
			continue
		}
		total -= float64(i) * cf / math.Pow(1+rate, float64(i+1))
	}
	return total
}

func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}

func finiteDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
