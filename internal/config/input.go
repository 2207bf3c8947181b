package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"github.com/rpgo/bizplan/internal/domain"
	dec "github.com/rpgo/bizplan/pkg/decimal"
	"github.com/rpgo/bizplan/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Plan file formats
const (
	FormatYAML  = "yaml"
	FormatHJSON = "hjson"
)

var (
	minGrowthPct = decimal.NewFromInt(-50)
	maxGrowthPct = decimal.NewFromInt(100)
	maxPct       = decimal.NewFromInt(100)
	maxDays      = decimal.NewFromInt(365)
)

// InputParser handles parsing of plan files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// FormatForFile picks the parser for a file name: .hjson and .json are read
// as HJSON (a JSON superset), everything else as YAML.
func FormatForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hjson", ".json":
		return FormatHJSON
	default:
		return FormatYAML
	}
}

// LoadFromFile loads, normalizes and validates a plan from a YAML, HJSON or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	plan, err := ip.Parse(data, FormatForFile(filename))
	if err != nil {
		return nil, err
	}
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return ip.Prepare(plan)
}

// Parse decodes a plan without validating it.
func (ip *InputParser) Parse(data []byte, format string) (*domain.Plan, error) {
	var plan domain.Plan
	switch format {
	case FormatHJSON:
		var raw interface{}
		if err := hjson.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse HJSON: %w", err)
		}
		// Round-trip through encoding/json so the decimal and tag rules match the HTTP surface.
		jsonBytes, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert HJSON: %w", err)
		}
		if err := json.Unmarshal(jsonBytes, &plan); err != nil {
			return nil, fmt.Errorf("failed to decode plan: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
	return &plan, nil
}

// Prepare normalizes then validates a decoded plan.
func (ip *InputParser) Prepare(plan *domain.Plan) (*domain.Plan, error) {
	ip.Normalize(plan)
	if err := ip.ValidatePlan(plan); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}
	return plan, nil
}

// Normalize clamps out-of-range inputs to their nearest valid value and fills
// defaults. It returns one note per adjustment.
func (ip *InputParser) Normalize(plan *domain.Plan) []string {
	var notes []string
	a := &plan.Assumptions

	clamp := func(name string, v *decimal.Decimal, lo, hi decimal.Decimal) {
		clamped := dec.Clamp(*v, lo, hi)
		if !clamped.Equal(*v) {
			notes = append(notes, fmt.Sprintf("%s %s clamped to %s", name, v.String(), clamped.String()))
			*v = clamped
		}
	}
	clamp(string(domain.FieldGrowthRate), &a.GrowthRate, minGrowthPct, maxGrowthPct)
	clamp(string(domain.FieldCOGSPct), &a.COGSPct, decimal.Zero, maxPct)
	clamp(string(domain.FieldTaxRate), &a.TaxRate, decimal.Zero, maxPct)

	if a.HorizonMonths < 1 {
		notes = append(notes, fmt.Sprintf("horizon_months %d clamped to 1", a.HorizonMonths))
		a.HorizonMonths = 1
	}
	if a.DepreciationMethod == "" {
		a.DepreciationMethod = domain.StraightLine
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	plan.Currency = strings.ToUpper(plan.Currency)
	return notes
}

// ValidatePlan rejects plans that cannot be clamped into shape
func (ip *InputParser) ValidatePlan(plan *domain.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}
	if err := ip.validateAssumptions(&plan.Assumptions); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}
	if plan.StartMonth != "" {
		if _, err := dateutil.ParseMonth(plan.StartMonth); err != nil {
			return fmt.Errorf("start_month: %w", err)
		}
	}

	seen := make(map[string]bool)
	for i, sc := range plan.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("scenario %q: duplicate name", sc.Name)
		}
		seen[sc.Name] = true
		for field := range sc.Overrides {
			if !field.IsKnown() {
				return fmt.Errorf("scenario %q: %w: %q", sc.Name, domain.ErrUnknownInput, field)
			}
		}
	}

	for i, s := range plan.Sensitivity {
		if !s.Input.IsKnown() {
			return fmt.Errorf("sensitivity %d: %w: %q", i, domain.ErrUnknownInput, s.Input)
		}
		if !s.DeltaPct.IsPositive() {
			return fmt.Errorf("sensitivity %d (%s): delta_pct must be positive", i, s.Input)
		}
	}

	if err := ip.validateMonteCarlo(&plan.MonteCarlo); err != nil {
		return fmt.Errorf("monte_carlo: %w", err)
	}
	return nil
}

func (ip *InputParser) validateAssumptions(a *domain.Assumptions) error {
	if a.HorizonMonths > domain.MaxHorizonMonths {
		return fmt.Errorf("horizon_months cannot exceed %d", domain.MaxHorizonMonths)
	}
	if a.InitialRevenue.IsNegative() {
		return fmt.Errorf("initial revenue cannot be negative")
	}
	for name, v := range map[string]decimal.Decimal{
		"staff cost":     a.StaffCost,
		"marketing cost": a.MarketingCost,
		"admin cost":     a.AdminCost,
		"investment":     a.Investment,
		"debt principal": a.DebtPrincipal,
		"debt rate":      a.DebtRate,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if a.AssetLifeYears.IsNegative() {
		return fmt.Errorf("asset life cannot be negative")
	}
	if a.Investment.IsPositive() && a.AssetLifeYears.IsZero() {
		return fmt.Errorf("asset life is required when investment is positive")
	}
	if a.DepreciationMethod != domain.StraightLine {
		return fmt.Errorf("depreciation method must be '%s', got '%s'", domain.StraightLine, a.DepreciationMethod)
	}
	if a.DiscountRate.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return fmt.Errorf("discount rate must be greater than -100%%")
	}
	for name, v := range map[string]decimal.Decimal{
		"receivable days": a.ReceivableDays,
		"inventory days":  a.InventoryDays,
		"payable days":    a.PayableDays,
	} {
		if v.IsNegative() || v.GreaterThan(maxDays) {
			return fmt.Errorf("%s must be between 0 and 365", name)
		}
	}
	if a.DebtTermMonths < 0 {
		return fmt.Errorf("debt term cannot be negative")
	}
	if a.DebtPrincipal.IsPositive() && a.DebtTermMonths == 0 {
		return fmt.Errorf("debt term is required when debt principal is positive")
	}
	if err := validateUnitEconomics(&a.UnitEconomics); err != nil {
		return fmt.Errorf("unit economics: %w", err)
	}
	return nil
}

func validateUnitEconomics(ue *domain.UnitEconomics) error {
	for name, v := range map[string]decimal.NullDecimal{
		"unit price":         ue.UnitPrice,
		"unit variable cost": ue.UnitVariableCost,
		"acquisition cost":   ue.AcquisitionCost,
		"mrr per user":       ue.MRRPerUser,
	} {
		if v.Valid && v.Decimal.IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if ue.MonthlyChurnPct.Valid && (ue.MonthlyChurnPct.Decimal.IsNegative() || ue.MonthlyChurnPct.Decimal.GreaterThan(maxPct)) {
		return fmt.Errorf("monthly churn must be between 0 and 100%%")
	}
	return nil
}

func (ip *InputParser) validateMonteCarlo(mc *domain.MonteCarloSettings) error {
	if mc.Draws < 0 || mc.Draws > domain.MaxDraws {
		return fmt.Errorf("draws must be between 0 and %d", domain.MaxDraws)
	}
	if mc.Workers < 0 || mc.Workers > domain.MaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d", domain.MaxWorkers)
	}
	for name, v := range map[string]decimal.NullDecimal{
		"revenue_variability": mc.RevenueVariability,
		"growth_variability":  mc.GrowthVariability,
		"cogs_variability":    mc.COGSVariability,
		"staff_variability":   mc.StaffVariability,
	} {
		if v.Valid && (v.Decimal.IsNegative() || v.Decimal.GreaterThan(decimal.NewFromInt(1))) {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}

// SaveToFile writes a plan as YAML, or as indented JSON for .json/.hjson names
func SaveToFile(plan *domain.Plan, filename string) error {
	var (
		data []byte
		err  error
	)
	if FormatForFile(filename) == FormatHJSON {
		data, err = json.MarshalIndent(plan, "", "  ")
	} else {
		data, err = yaml.Marshal(plan)
	}
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// CreateExamplePlan creates an example plan for a small subscription coffee roaster
func (ip *InputParser) CreateExamplePlan() *domain.Plan {
	return &domain.Plan{
		Name:       "Example Roastery",
		Currency:   "USD",
		StartMonth: "2026-01",
		Assumptions: domain.Assumptions{
			InitialRevenue:     decimal.NewFromInt(42000),
			GrowthRate:         decimal.NewFromFloat(3.5),
			COGSPct:            decimal.NewFromInt(38),
			StaffCost:          decimal.NewFromInt(16500),
			MarketingCost:      decimal.NewFromInt(4000),
			AdminCost:          decimal.NewFromInt(2500),
			Investment:         decimal.NewFromInt(120000),
			TaxRate:            decimal.NewFromInt(21),
			HorizonMonths:      36,
			DiscountRate:       decimal.NewFromInt(12),
			AssetLifeYears:     decimal.NewFromInt(5),
			DepreciationMethod: domain.StraightLine,
			ReceivableDays:     decimal.NewFromInt(15),
			InventoryDays:      decimal.NewFromInt(30),
			PayableDays:        decimal.NewFromInt(20),
			OpeningCash:        decimal.NewFromInt(150000),
			DebtPrincipal:      decimal.NewFromInt(60000),
			DebtRate:           decimal.NewFromFloat(7.5),
			DebtTermMonths:     48,
			UnitEconomics: domain.UnitEconomics{
				UnitPrice:        dec.Valid(decimal.NewFromInt(28)),
				UnitVariableCost: dec.Valid(decimal.NewFromFloat(10.6)),
				AcquisitionCost:  dec.Valid(decimal.NewFromInt(45)),
				MRRPerUser:       dec.Valid(decimal.NewFromInt(28)),
				MonthlyChurnPct:  dec.Valid(decimal.NewFromFloat(4.5)),
			},
		},
		Scenarios: []domain.Scenario{
			{
				Name: "Wholesale push",
				Overrides: map[domain.InputField]decimal.Decimal{
					domain.FieldGrowthRate:    decimal.NewFromInt(5),
					domain.FieldCOGSPct:       decimal.NewFromInt(44),
					domain.FieldMarketingCost: decimal.NewFromInt(6000),
				},
			},
			{
				Name: "Lean year",
				Overrides: map[domain.InputField]decimal.Decimal{
					domain.FieldGrowthRate: decimal.NewFromInt(1),
					domain.FieldStaffCost:  decimal.NewFromInt(12000),
				},
			},
		},
		Sensitivity: []domain.SensitivityInput{
			{Input: domain.FieldInitialRevenue, DeltaPct: decimal.NewFromInt(10)},
			{Input: domain.FieldGrowthRate, DeltaPct: decimal.NewFromInt(20)},
			{Input: domain.FieldCOGSPct, DeltaPct: decimal.NewFromInt(10)},
			{Input: domain.FieldStaffCost, DeltaPct: decimal.NewFromInt(10)},
			{Input: domain.FieldDiscountRate, DeltaPct: decimal.NewFromInt(25)},
		},
		MonteCarlo: domain.MonteCarloSettings{
			Enabled: true,
			Draws:   1000,
			Seed:    20260101,
			Workers: 8,
		},
	}
}
