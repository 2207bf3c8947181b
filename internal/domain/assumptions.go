package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrUnknownInput is returned when a named input does not exist on Assumptions.
var ErrUnknownInput = errors.New("unknown assumption input")

// DepreciationMethod selects how the up-front investment is depreciated.
type DepreciationMethod string

const (
	// StraightLine spreads the investment evenly over the asset life.
	StraightLine DepreciationMethod = "straight_line"
)

// Assumptions is the immutable input snapshot for one projection run.
// It holds no maps or slices and decimal values are never modified in place,
// so plain assignment produces an independent copy. What-if runs go through
// WithOverrides.
type Assumptions struct {
	// Revenue
	InitialRevenue decimal.Decimal `yaml:"initial_revenue" json:"initial_revenue"`
	GrowthRate     decimal.Decimal `yaml:"growth_rate" json:"growth_rate"` // % per month
	COGSPct        decimal.Decimal `yaml:"cogs_pct" json:"cogs_pct"`

	// Fixed monthly operating costs
	StaffCost     decimal.Decimal `yaml:"staff_cost" json:"staff_cost"`
	MarketingCost decimal.Decimal `yaml:"marketing_cost" json:"marketing_cost"`
	AdminCost     decimal.Decimal `yaml:"admin_cost" json:"admin_cost"`

	// Capital, tax and valuation
	Investment         decimal.Decimal    `yaml:"investment" json:"investment"`
	TaxRate            decimal.Decimal    `yaml:"tax_rate" json:"tax_rate"`
	HorizonMonths      int                `yaml:"horizon_months" json:"horizon_months"`
	DiscountRate       decimal.Decimal    `yaml:"discount_rate" json:"discount_rate"` // annual %
	AssetLifeYears     decimal.Decimal    `yaml:"asset_life_years" json:"asset_life_years"`
	DepreciationMethod DepreciationMethod `yaml:"depreciation_method" json:"depreciation_method"`

	// Working capital day-counts
	ReceivableDays decimal.Decimal `yaml:"receivable_days" json:"receivable_days"`
	InventoryDays  decimal.Decimal `yaml:"inventory_days" json:"inventory_days"`
	PayableDays    decimal.Decimal `yaml:"payable_days" json:"payable_days"`

	// Financing
	OpeningCash    decimal.Decimal `yaml:"opening_cash" json:"opening_cash"`
	DebtPrincipal  decimal.Decimal `yaml:"debt_principal" json:"debt_principal"`
	DebtRate       decimal.Decimal `yaml:"debt_rate" json:"debt_rate"` // annual %
	DebtTermMonths int             `yaml:"debt_term_months" json:"debt_term_months"`
	InterestOnly   bool            `yaml:"interest_only" json:"interest_only"`

	UnitEconomics UnitEconomics `yaml:"unit_economics,omitempty" json:"unit_economics,omitempty"`
}

// UnitEconomics carries the optional per-unit and per-customer inputs.
// Each field is present only when Valid is set.
type UnitEconomics struct {
	UnitPrice        decimal.NullDecimal `yaml:"unit_price,omitempty" json:"unit_price,omitempty"`
	UnitVariableCost decimal.NullDecimal `yaml:"unit_variable_cost,omitempty" json:"unit_variable_cost,omitempty"`
	AcquisitionCost  decimal.NullDecimal `yaml:"acquisition_cost,omitempty" json:"acquisition_cost,omitempty"`
	MRRPerUser       decimal.NullDecimal `yaml:"mrr_per_user,omitempty" json:"mrr_per_user,omitempty"`
	MonthlyChurnPct  decimal.NullDecimal `yaml:"monthly_churn_pct,omitempty" json:"monthly_churn_pct,omitempty"`
}

// MaxHorizonMonths is the longest projection a plan may request.
const MaxHorizonMonths = 600

// Horizon returns the number of periods to project, between one and
// MaxHorizonMonths.
func (a Assumptions) Horizon() int {
	return max(1, min(a.HorizonMonths, MaxHorizonMonths))
}

// FixedOpex returns the constant monthly operating expense.
func (a Assumptions) FixedOpex() decimal.Decimal {
	return a.StaffCost.Add(a.MarketingCost).Add(a.AdminCost)
}

// Override mutates a private copy of Assumptions.
type Override func(*Assumptions)

// WithOverrides returns a copy of a with every override applied in order.
// The receiver is left untouched.
func (a Assumptions) WithOverrides(overrides ...Override) Assumptions {
	clone := a
	for _, o := range overrides {
		if o != nil {
			o(&clone)
		}
	}
	return clone
}

// InputField names a scalar numeric assumption that can be read, set or
// perturbed by name (scenario overrides, tornado, API clients).
type InputField string

const (
	FieldInitialRevenue InputField = "initial_revenue"
	FieldGrowthRate     InputField = "growth_rate"
	FieldCOGSPct        InputField = "cogs_pct"
	FieldStaffCost      InputField = "staff_cost"
	FieldMarketingCost  InputField = "marketing_cost"
	FieldAdminCost      InputField = "admin_cost"
	FieldInvestment     InputField = "investment"
	FieldTaxRate        InputField = "tax_rate"
	FieldDiscountRate   InputField = "discount_rate"
	FieldOpeningCash    InputField = "opening_cash"
	FieldDebtPrincipal  InputField = "debt_principal"
	FieldDebtRate       InputField = "debt_rate"
	FieldReceivableDays InputField = "receivable_days"
	FieldInventoryDays  InputField = "inventory_days"
	FieldPayableDays    InputField = "payable_days"
	FieldAssetLifeYears InputField = "asset_life_years"
)

type fieldAccessor func(a *Assumptions) *decimal.Decimal

var fieldRegistry = map[InputField]fieldAccessor{
	FieldInitialRevenue: func(a *Assumptions) *decimal.Decimal { return &a.InitialRevenue },
	FieldGrowthRate:     func(a *Assumptions) *decimal.Decimal { return &a.GrowthRate },
	FieldCOGSPct:        func(a *Assumptions) *decimal.Decimal { return &a.COGSPct },
	FieldStaffCost:      func(a *Assumptions) *decimal.Decimal { return &a.StaffCost },
	FieldMarketingCost:  func(a *Assumptions) *decimal.Decimal { return &a.MarketingCost },
	FieldAdminCost:      func(a *Assumptions) *decimal.Decimal { return &a.AdminCost },
	FieldInvestment:     func(a *Assumptions) *decimal.Decimal { return &a.Investment },
	FieldTaxRate:        func(a *Assumptions) *decimal.Decimal { return &a.TaxRate },
	FieldDiscountRate:   func(a *Assumptions) *decimal.Decimal { return &a.DiscountRate },
	FieldOpeningCash:    func(a *Assumptions) *decimal.Decimal { return &a.OpeningCash },
	FieldDebtPrincipal:  func(a *Assumptions) *decimal.Decimal { return &a.DebtPrincipal },
	FieldDebtRate:       func(a *Assumptions) *decimal.Decimal { return &a.DebtRate },
	FieldReceivableDays: func(a *Assumptions) *decimal.Decimal { return &a.ReceivableDays },
	FieldInventoryDays:  func(a *Assumptions) *decimal.Decimal { return &a.InventoryDays },
	FieldPayableDays:    func(a *Assumptions) *decimal.Decimal { return &a.PayableDays },
	FieldAssetLifeYears: func(a *Assumptions) *decimal.Decimal { return &a.AssetLifeYears },
}

// InputFields lists every named input in lexical order.
func InputFields() []InputField {
	fields := make([]InputField, 0, len(fieldRegistry))
	for f := range fieldRegistry {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// IsKnown reports whether the field exists.
func (f InputField) IsKnown() bool {
	_, ok := fieldRegistry[f]
	return ok
}

// Get returns the current value of a named input.
func (a Assumptions) Get(field InputField) (decimal.Decimal, error) {
	acc, ok := fieldRegistry[field]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownInput, field)
	}
	return *acc(&a), nil
}

// Set returns an override replacing a named input with value.
func Set(field InputField, value decimal.Decimal) (Override, error) {
	acc, ok := fieldRegistry[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, field)
	}
	return func(a *Assumptions) { *acc(a) = value }, nil
}

// Scale returns an override multiplying a named input by (1 + pct/100).
func Scale(field InputField, pct decimal.Decimal) (Override, error) {
	acc, ok := fieldRegistry[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, field)
	}
	factor := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))
	return func(a *Assumptions) {
		v := acc(a)
		*v = v.Mul(factor)
	}, nil
}

// MultiplyBy returns an override multiplying a named input by factor.
func MultiplyBy(field InputField, factor decimal.Decimal) (Override, error) {
	acc, ok := fieldRegistry[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, field)
	}
	return func(a *Assumptions) {
		v := acc(a)
		*v = v.Mul(factor)
	}, nil
}

// GenerateAssumptions describes the inputs in human-readable lines for reports.
func (a Assumptions) GenerateAssumptions() []string {
	lines := []string{
		fmt.Sprintf("Opening revenue: %s per month, growing %.1f%% monthly", a.InitialRevenue.StringFixed(2), a.GrowthRate.InexactFloat64()),
		fmt.Sprintf("Cost of goods: %.1f%% of revenue", a.COGSPct.InexactFloat64()),
		fmt.Sprintf("Fixed costs: %s per month (staff %s, marketing %s, admin %s)",
			a.FixedOpex().StringFixed(2), a.StaffCost.StringFixed(2), a.MarketingCost.StringFixed(2), a.AdminCost.StringFixed(2)),
		fmt.Sprintf("Investment: %s, depreciated straight-line over %s years, booked in month 1", a.Investment.StringFixed(2), a.AssetLifeYears.String()),
		fmt.Sprintf("Tax rate: %.1f%% on positive pre-tax profit only", a.TaxRate.InexactFloat64()),
		fmt.Sprintf("Discount rate: %.1f%% annually, compounded monthly", a.DiscountRate.InexactFloat64()),
		fmt.Sprintf("Working capital: %s receivable days, %s inventory days, %s payable days (30-day months)",
			a.ReceivableDays.String(), a.InventoryDays.String(), a.PayableDays.String()),
		fmt.Sprintf("Horizon: %d months, opening cash %s", a.Horizon(), a.OpeningCash.StringFixed(2)),
	}
	if a.DebtPrincipal.IsPositive() && a.DebtTermMonths > 0 {
		repayment := "straight-line principal"
		if a.InterestOnly {
			repayment = "interest only"
		}
		lines = append(lines, fmt.Sprintf("Debt: %s at %.1f%% over %d months, %s, interest on original principal",
			a.DebtPrincipal.StringFixed(2), a.DebtRate.InexactFloat64(), a.DebtTermMonths, repayment))
	}
	return lines
}
