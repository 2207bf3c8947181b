package domain

import (
	"github.com/shopspring/decimal"
)

// PeriodRecord represents the complete financial statement for a single month
type PeriodRecord struct {
	Period int    `json:"period"`
	Label  string `json:"label,omitempty"`

	// Income statement
	Revenue      decimal.Decimal `json:"revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	FixedOpex    decimal.Decimal `json:"fixed_opex"`
	EBITDA       decimal.Decimal `json:"ebitda"`
	Depreciation decimal.Decimal `json:"depreciation"`
	EBIT         decimal.Decimal `json:"ebit"`
	Interest     decimal.Decimal `json:"interest"`
	EBT          decimal.Decimal `json:"ebt"`
	Taxes        decimal.Decimal `json:"taxes"`
	NetIncome    decimal.Decimal `json:"net_income"`

	// Working capital levels (end of period)
	Receivables            decimal.Decimal `json:"receivables"`
	Inventory              decimal.Decimal `json:"inventory"`
	Payables               decimal.Decimal `json:"payables"`
	ChangeInWorkingCapital decimal.Decimal `json:"change_in_working_capital"`

	// Cash flow
	OperatingCashFlow decimal.Decimal `json:"operating_cash_flow"`
	Capex             decimal.Decimal `json:"capex"`
	PrincipalRepaid   decimal.Decimal `json:"principal_repaid"`
	DebtService       decimal.Decimal `json:"debt_service"`
	FreeCashFlow      decimal.Decimal `json:"free_cash_flow"`
	EndingCash        decimal.Decimal `json:"ending_cash"`
}

// NetWorkingCapital returns receivables + inventory - payables.
func (p *PeriodRecord) NetWorkingCapital() decimal.Decimal {
	return p.Receivables.Add(p.Inventory).Sub(p.Payables)
}

// IsBurning reports whether the period consumed cash.
func (p *PeriodRecord) IsBurning() bool {
	return p.FreeCashFlow.IsNegative()
}

// UnitEconomicsMetrics holds derived per-unit and per-customer figures.
// A field is Valid only when its inputs were supplied and it is calculable.
type UnitEconomicsMetrics struct {
	ContributionMargin    decimal.NullDecimal `json:"contribution_margin"`
	ContributionMarginPct decimal.NullDecimal `json:"contribution_margin_pct"`
	BreakEvenUnits        decimal.NullDecimal `json:"break_even_units"`
	CustomerLifetimeValue decimal.NullDecimal `json:"customer_lifetime_value"`
	LTVToCAC              decimal.NullDecimal `json:"ltv_to_cac"`
	CACPaybackMonths      decimal.NullDecimal `json:"cac_payback_months"`
}

// ResultSet is the full output of one projection run. It is recomputed from
// scratch on every run and never updated in place.
type ResultSet struct {
	Periods []PeriodRecord `json:"periods"`

	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalEBITDA         decimal.Decimal `json:"total_ebitda"`
	TotalNetIncome      decimal.Decimal `json:"total_net_income"`
	TotalFreeCashFlow   decimal.Decimal `json:"total_free_cash_flow"`
	FinalCash           decimal.Decimal `json:"final_cash"`
	MinimumCash         decimal.Decimal `json:"minimum_cash"`
	MinimumCashPeriod   int             `json:"minimum_cash_period"`
	GrossMargin         decimal.Decimal `json:"gross_margin"`  // %
	EBITDAMargin        decimal.Decimal `json:"ebitda_margin"` // %
	EBITMargin          decimal.Decimal `json:"ebit_margin"`   // %
	NetMargin           decimal.Decimal `json:"net_margin"`    // %
	CashConversionCycle decimal.Decimal `json:"cash_conversion_cycle"`
	CashRunwayMonths    decimal.Decimal `json:"cash_runway_months"`
	RunwayUnbounded     bool            `json:"runway_unbounded"`
	AverageMonthlyBurn  decimal.Decimal `json:"average_monthly_burn"`
	BreakEvenPeriod     int             `json:"break_even_period"` // 0 = never
	PaybackPeriod       int             `json:"payback_period"`    // 0 = never
	RuleOf40            decimal.Decimal `json:"rule_of_40"`

	// Valuation. Null values mean "not calculable".
	NPV                decimal.Decimal     `json:"npv"`
	IRR                decimal.NullDecimal `json:"irr"` // annual %
	ProfitabilityIndex decimal.NullDecimal `json:"profitability_index"`
	DSCR               decimal.NullDecimal `json:"dscr"`
	BurnMultiple       decimal.NullDecimal `json:"burn_multiple"`

	UnitEconomics UnitEconomicsMetrics `json:"unit_economics"`
}

// Horizon returns the number of projected periods.
func (r *ResultSet) Horizon() int {
	return len(r.Periods)
}

// FirstPeriod returns the first period or a zero record for an empty result.
func (r *ResultSet) FirstPeriod() PeriodRecord {
	if len(r.Periods) == 0 {
		return PeriodRecord{}
	}
	return r.Periods[0]
}

// LastPeriod returns the final period or a zero record for an empty result.
func (r *ResultSet) LastPeriod() PeriodRecord {
	if len(r.Periods) == 0 {
		return PeriodRecord{}
	}
	return r.Periods[len(r.Periods)-1]
}

// SensitivityResult is one bar of a tornado chart.
type SensitivityResult struct {
	Input    InputField      `json:"input"`
	DeltaPct decimal.Decimal `json:"delta_pct"`
	Upside   decimal.Decimal `json:"upside"`
	Downside decimal.Decimal `json:"downside"`
	Swing    decimal.Decimal `json:"swing"`
}

// HistogramBin is one equal-width bucket of a Monte Carlo histogram.
type HistogramBin struct {
	Lower decimal.Decimal `json:"lower"`
	Upper decimal.Decimal `json:"upper"`
	Count int             `json:"count"`
}

// PercentileRanges represents percentile bands for Monte Carlo results
type PercentileRanges struct {
	P5  decimal.Decimal `json:"p5"`
	P50 decimal.Decimal `json:"p50"`
	P95 decimal.Decimal `json:"p95"`
}

// MonteCarloSummary describes the distribution of the valuation metric across all draws.
type MonteCarloSummary struct {
	Metric          string           `json:"metric"`
	Draws           int              `json:"draws"`
	Seed            int64            `json:"seed"`
	Percentiles     PercentileRanges `json:"percentiles"`
	Mean            decimal.Decimal  `json:"mean"`
	StdDev          decimal.Decimal  `json:"std_dev"`
	Min             decimal.Decimal  `json:"min"`
	Max             decimal.Decimal  `json:"max"`
	ProbabilityLoss decimal.Decimal  `json:"probability_loss"` // share of draws below zero, 0..1
	Histogram       []HistogramBin   `json:"histogram"`
}

// ScenarioResult pairs a named scenario with its projection.
type ScenarioResult struct {
	Name      string            `json:"name"`
	Overrides map[string]string `json:"overrides,omitempty"`
	Result    *ResultSet        `json:"result"`
}

// ScenarioDelta is a scenario's movement against the baseline.
type ScenarioDelta struct {
	Name               string          `json:"name"`
	NPVChange          decimal.Decimal `json:"npv_change"`
	FinalCashChange    decimal.Decimal `json:"final_cash_change"`
	TotalRevenueChange decimal.Decimal `json:"total_revenue_change"`
}

// ScenarioComparison ranks scenarios (baseline included) by outcome.
type ScenarioComparison struct {
	BestByNPV       string          `json:"best_by_npv"`
	BestByFinalCash string          `json:"best_by_final_cash"`
	Deltas          []ScenarioDelta `json:"deltas"`
}

// Report is everything the collaborators (CLI, export, HTTP) render for one plan.
type Report struct {
	PlanName    string              `json:"plan_name"`
	Currency    string              `json:"currency"`
	StartMonth  string              `json:"start_month,omitempty"`
	Assumptions Assumptions         `json:"assumptions"`
	Baseline    *ResultSet          `json:"baseline"`
	Scenarios   []ScenarioResult    `json:"scenarios,omitempty"`
	Comparison  *ScenarioComparison `json:"comparison,omitempty"`
	Sensitivity []SensitivityResult `json:"sensitivity,omitempty"`
	MonteCarlo  *MonteCarloSummary  `json:"monte_carlo,omitempty"`
	Notes       []string            `json:"notes,omitempty"`
}
