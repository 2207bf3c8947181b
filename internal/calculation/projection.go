package calculation

import (
	"github.com/rpgo/bizplan/internal/domain"
	dec "github.com/rpgo/bizplan/pkg/decimal"
	"github.com/shopspring/decimal"
)

// compoundingPrecision bounds the digits kept on the growth index so long
// horizons do not carry ever-growing decimal expansions.
const compoundingPrecision = 16

// ledgerState is the accumulator carried from one period to the next.
type ledgerState struct {
	growthIndex       decimal.Decimal // (1+g)^(m-1) for the period being built
	netWorkingCapital decimal.Decimal
	cash              decimal.Decimal
}

// periodInputs are the per-run constants derived once from Assumptions.
type periodInputs struct {
	a            domain.Assumptions
	growthFactor decimal.Decimal
	cogsRate     decimal.Decimal
	taxRate      decimal.Decimal
	fixedOpex    decimal.Decimal
	depreciation decimal.Decimal
}

func newPeriodInputs(a domain.Assumptions) periodInputs {
	return periodInputs{
		a:            a,
		growthFactor: decimal.NewFromInt(1).Add(dec.Fraction(a.GrowthRate)),
		cogsRate:     dec.Fraction(a.COGSPct),
		taxRate:      dec.Fraction(a.TaxRate),
		fixedOpex:    a.FixedOpex(),
		depreciation: StraightLineDepreciation(a.Investment, a.AssetLifeYears),
	}
}

// projectPeriods folds over periods 1..horizon, starting from opening cash
// and a zero working-capital position.
func projectPeriods(a domain.Assumptions) []domain.PeriodRecord {
	in := newPeriodInputs(a)
	horizon := a.Horizon()

	periods := make([]domain.PeriodRecord, 0, horizon)
	state := ledgerState{
		growthIndex:       decimal.NewFromInt(1),
		netWorkingCapital: decimal.Zero,
		cash:              a.OpeningCash,
	}
	for m := 1; m <= horizon; m++ {
		var rec domain.PeriodRecord
		rec, state = projectPeriod(in, m, state)
		periods = append(periods, rec)
	}
	return periods
}

// projectPeriod builds one PeriodRecord from the previous period's state and
// returns the state for the next period.
func projectPeriod(in periodInputs, m int, prev ledgerState) (domain.PeriodRecord, ledgerState) {
	a := in.a

	revenue := a.InitialRevenue.Mul(prev.growthIndex)
	cogs := revenue.Mul(in.cogsRate)
	grossProfit := revenue.Sub(cogs)
	ebitda := grossProfit.Sub(in.fixedOpex)
	ebit := ebitda.Sub(in.depreciation)

	debt := DebtServiceFor(m, a.DebtPrincipal, a.DebtRate, a.DebtTermMonths, a.InterestOnly)
	ebt := ebit.Sub(debt.Interest)

	taxes := decimal.Zero
	if ebt.IsPositive() {
		taxes = ebt.Mul(in.taxRate)
	}
	netIncome := ebt.Sub(taxes)

	wc := WorkingCapitalLevels(revenue, cogs, a.ReceivableDays, a.InventoryDays, a.PayableDays)
	nwc := wc.Net()
	changeInWC := decimal.Zero
	if m > 1 {
		changeInWC = nwc.Sub(prev.netWorkingCapital)
	}

	operatingCF := netIncome.Add(in.depreciation).Sub(changeInWC)

	capex := decimal.Zero
	if m == 1 {
		capex = a.Investment
	}

	fcf := operatingCF.Sub(capex).Sub(debt.Total())
	endingCash := prev.cash.Add(fcf)

	rec := domain.PeriodRecord{
		Period:                 m,
		Revenue:                revenue,
		COGS:                   cogs,
		GrossProfit:            grossProfit,
		FixedOpex:              in.fixedOpex,
		EBITDA:                 ebitda,
		Depreciation:           in.depreciation,
		EBIT:                   ebit,
		Interest:               debt.Interest,
		EBT:                    ebt,
		Taxes:                  taxes,
		NetIncome:              netIncome,
		Receivables:            wc.Receivables,
		Inventory:              wc.Inventory,
		Payables:               wc.Payables,
		ChangeInWorkingCapital: changeInWC,
		OperatingCashFlow:      operatingCF,
		Capex:                  capex,
		PrincipalRepaid:        debt.Principal,
		DebtService:            debt.Total(),
		FreeCashFlow:           fcf,
		EndingCash:             endingCash,
	}
	return rec, ledgerState{
		growthIndex:       prev.growthIndex.Mul(in.growthFactor).Round(compoundingPrecision),
		netWorkingCapital: nwc,
		cash:              endingCash,
	}
}

// valuationFlows returns [-investment, fcf1..fcfN].
func valuationFlows(investment decimal.Decimal, periods []domain.PeriodRecord) []decimal.Decimal {
	flows := make([]decimal.Decimal, 0, len(periods)+1)
	flows = append(flows, investment.Neg())
	for _, p := range periods {
		flows = append(flows, p.FreeCashFlow)
	}
	return flows
}
