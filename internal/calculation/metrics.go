package calculation

import (
	"math"

	"github.com/rpgo/bizplan/internal/domain"
	dec "github.com/rpgo/bizplan/pkg/decimal"
	"github.com/shopspring/decimal"
)

// RunwayCapMonths is the ceiling reported for cash runway.
const RunwayCapMonths = 120

// summarize fills every rollup on rs from its periods.
func summarize(rs *domain.ResultSet, a domain.Assumptions) {
	var revenue, gross, ebitda, ebit, netIncome, fcf decimal.Decimal
	rs.MinimumCash = a.OpeningCash
	for i := range rs.Periods {
		p := &rs.Periods[i]
		revenue = revenue.Add(p.Revenue)
		gross = gross.Add(p.GrossProfit)
		ebitda = ebitda.Add(p.EBITDA)
		ebit = ebit.Add(p.EBIT)
		netIncome = netIncome.Add(p.NetIncome)
		fcf = fcf.Add(p.FreeCashFlow)
		if p.EndingCash.LessThan(rs.MinimumCash) {
			rs.MinimumCash = p.EndingCash
			rs.MinimumCashPeriod = p.Period
		}
	}

	rs.TotalRevenue = revenue
	rs.TotalEBITDA = ebitda
	rs.TotalNetIncome = netIncome
	rs.TotalFreeCashFlow = fcf
	rs.FinalCash = rs.LastPeriod().EndingCash

	rs.GrossMargin = dec.PercentOf(gross, revenue)
	rs.EBITDAMargin = dec.PercentOf(ebitda, revenue)
	rs.EBITMargin = dec.PercentOf(ebit, revenue)
	rs.NetMargin = dec.PercentOf(netIncome, revenue)
	rs.CashConversionCycle = CashConversionCycle(a)

	burn := AverageMonthlyBurn(rs.Periods)
	rs.AverageMonthlyBurn = burn
	rs.CashRunwayMonths, rs.RunwayUnbounded = CashRunway(rs.FinalCash, burn)
	rs.BurnMultiple = BurnMultiple(revenue, len(rs.Periods), burn)
	rs.RuleOf40 = RuleOf40(a.GrowthRate, rs.EBITDAMargin)
	rs.DSCR = AverageDSCR(rs.Periods)

	rs.BreakEvenPeriod = BreakEvenPeriod(rs.Periods)
	rs.PaybackPeriod = PaybackPeriod(a.Investment, rs.Periods)

	flows := valuationFlows(a.Investment, rs.Periods)
	rs.NPV = NPV(MonthlyRateFromAnnual(a.DiscountRate), flows)
	rs.IRR = IRR(flows)
	rs.ProfitabilityIndex = ProfitabilityIndex(rs.NPV, a.Investment)

	rs.UnitEconomics = UnitEconomicsFor(a.UnitEconomics, a.FixedOpex(), rs.GrossMargin)
}

// CashConversionCycle is DSO + DIO - DPO in days, taken from the configured
// working-capital terms so it holds even in months without sales or COGS.
func CashConversionCycle(a domain.Assumptions) decimal.Decimal {
	return a.ReceivableDays.Add(a.InventoryDays).Sub(a.PayableDays)
}

// AverageMonthlyBurn is the mean cash consumed across periods with negative
// free cash flow. Zero when no period burns cash.
func AverageMonthlyBurn(periods []domain.PeriodRecord) decimal.Decimal {
	burns := make([]decimal.Decimal, 0, len(periods))
	for _, p := range periods {
		if p.IsBurning() {
			burns = append(burns, p.FreeCashFlow.Neg())
		}
	}
	return dec.Mean(burns)
}

// CashRunway returns months of cash left at the given burn, floored at zero
// and capped at RunwayCapMonths. Without burn the runway is unbounded and
// the cap is reported.
func CashRunway(finalCash, burn decimal.Decimal) (decimal.Decimal, bool) {
	limit := decimal.NewFromInt(RunwayCapMonths)
	if !burn.IsPositive() {
		return limit, true
	}
	months := finalCash.Div(burn)
	return dec.Clamp(months, decimal.Zero, limit), false
}

// BurnMultiple is average monthly revenue divided by average monthly burn.
func BurnMultiple(totalRevenue decimal.Decimal, periods int, burn decimal.Decimal) decimal.NullDecimal {
	if periods == 0 || !burn.IsPositive() {
		return dec.NotCalculable
	}
	avgRevenue := totalRevenue.Div(decimal.NewFromInt(int64(periods)))
	return dec.Valid(avgRevenue.Div(burn))
}

// RuleOf40 adds annualized monthly growth, ((1+g)^12 - 1) * 100, to the
// EBITDA margin.
func RuleOf40(monthlyGrowthPct, ebitdaMarginPct decimal.Decimal) decimal.Decimal {
	base := 1 + monthlyGrowthPct.InexactFloat64()/100
	annual := -100.0
	if base > 0 {
		annual = (math.Pow(base, 12) - 1) * 100
	}
	return finiteDecimal(annual).Add(ebitdaMarginPct)
}

// AverageDSCR averages operating cash flow / debt service over periods with
// debt service due.
func AverageDSCR(periods []domain.PeriodRecord) decimal.NullDecimal {
	ratios := make([]decimal.Decimal, 0, len(periods))
	for _, p := range periods {
		if p.DebtService.IsPositive() {
			ratios = append(ratios, p.OperatingCashFlow.Div(p.DebtService))
		}
	}
	if len(ratios) == 0 {
		return dec.NotCalculable
	}
	return dec.Valid(dec.Mean(ratios))
}

// UnitEconomicsFor derives per-unit and per-customer metrics. Each output is
// present only when its inputs are present and the ratio is defined.
func UnitEconomicsFor(ue domain.UnitEconomics, fixedOpex, grossMarginPct decimal.Decimal) domain.UnitEconomicsMetrics {
	var m domain.UnitEconomicsMetrics

	if ue.UnitPrice.Valid && ue.UnitVariableCost.Valid {
		cm := ue.UnitPrice.Decimal.Sub(ue.UnitVariableCost.Decimal)
		m.ContributionMargin = dec.Valid(cm)
		if ue.UnitPrice.Decimal.IsPositive() {
			m.ContributionMarginPct = dec.Valid(dec.PercentOf(cm, ue.UnitPrice.Decimal))
		}
		if cm.IsPositive() {
			m.BreakEvenUnits = dec.Valid(fixedOpex.Div(cm))
		}
	}

	if ue.MRRPerUser.Valid && ue.MonthlyChurnPct.Valid {
		monthlyMargin := ue.MRRPerUser.Decimal.Mul(dec.Fraction(grossMarginPct))
		churn := dec.Fraction(ue.MonthlyChurnPct.Decimal)
		if churn.IsPositive() {
			ltv := monthlyMargin.Div(churn)
			m.CustomerLifetimeValue = dec.Valid(ltv)
			if ue.AcquisitionCost.Valid && ue.AcquisitionCost.Decimal.IsPositive() {
				m.LTVToCAC = dec.Valid(ltv.Div(ue.AcquisitionCost.Decimal))
			}
		}
		if ue.AcquisitionCost.Valid && monthlyMargin.IsPositive() {
			m.CACPaybackMonths = dec.Valid(ue.AcquisitionCost.Decimal.Div(monthlyMargin))
		}
	}

	return m
}
