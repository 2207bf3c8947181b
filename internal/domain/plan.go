package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Plan is a business plan file: a baseline set of assumptions plus the
// what-if analyses to run against it.
type Plan struct {
	Name        string             `yaml:"name" json:"name"`
	Currency    string             `yaml:"currency,omitempty" json:"currency,omitempty"`
	StartMonth  string             `yaml:"start_month,omitempty" json:"start_month,omitempty"` // YYYY-MM, labels only
	Assumptions Assumptions        `yaml:"assumptions" json:"assumptions"`
	Scenarios   []Scenario         `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	Sensitivity []SensitivityInput `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty"`
	MonteCarlo  MonteCarloSettings `yaml:"monte_carlo" json:"monte_carlo"`
}

// Scenario replaces named baseline inputs with absolute values.
type Scenario struct {
	Name      string                         `yaml:"name" json:"name"`
	Overrides map[InputField]decimal.Decimal `yaml:"overrides" json:"overrides"`
}

// Apply returns a copy of base with the scenario overrides applied.
// Overrides are applied in field-name order so the result is deterministic.
func (s Scenario) Apply(base Assumptions) (Assumptions, error) {
	fields := make([]InputField, 0, len(s.Overrides))
	for f := range s.Overrides {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	overrides := make([]Override, 0, len(fields))
	for _, f := range fields {
		o, err := Set(f, s.Overrides[f])
		if err != nil {
			return base, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		overrides = append(overrides, o)
	}
	return base.WithOverrides(overrides...), nil
}

// OverrideStrings renders overrides for display.
func (s Scenario) OverrideStrings() map[string]string {
	if len(s.Overrides) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.Overrides))
	for f, v := range s.Overrides {
		out[string(f)] = v.String()
	}
	return out
}

// SensitivityInput is one entry of a tornado specification.
type SensitivityInput struct {
	Input    InputField      `yaml:"input" json:"input"`
	DeltaPct decimal.Decimal `yaml:"delta_pct" json:"delta_pct"`
}

// MonteCarloSettings contains Monte Carlo simulation parameters.
// Zero values fall back to the defaults below.
type MonteCarloSettings struct {
	Enabled bool  `yaml:"enabled" json:"enabled"`
	Draws   int   `yaml:"draws" json:"draws"`
	Seed    int64 `yaml:"seed" json:"seed"`
	Workers int   `yaml:"workers" json:"workers"`

	// Relative standard deviations of the multiplicative noise. Unset fields
	// take the defaults; an explicit 0 holds that input fixed.
	RevenueVariability decimal.NullDecimal `yaml:"revenue_variability,omitempty" json:"revenue_variability,omitempty"` // Default: 0.10
	GrowthVariability  decimal.NullDecimal `yaml:"growth_variability,omitempty" json:"growth_variability,omitempty"`   // Default: 0.20
	COGSVariability    decimal.NullDecimal `yaml:"cogs_variability,omitempty" json:"cogs_variability,omitempty"`       // Default: 0.05
	StaffVariability   decimal.NullDecimal `yaml:"staff_variability,omitempty" json:"staff_variability,omitempty"`     // Default: 0.10
}

const (
	DefaultDraws   = 1000
	DefaultWorkers = 10

	// Upper bounds accepted from plans, flags and the environment.
	MaxDraws   = 100000
	MaxWorkers = 256
)

// WithDefaults fills unset Monte Carlo parameters.
func (s MonteCarloSettings) WithDefaults() MonteCarloSettings {
	if s.Draws <= 0 {
		s.Draws = DefaultDraws
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	s.Draws = min(s.Draws, MaxDraws)
	s.Workers = min(s.Workers, MaxWorkers)
	if !s.RevenueVariability.Valid {
		s.RevenueVariability = decimal.NewNullDecimal(decimal.NewFromFloat(0.10))
	}
	if !s.GrowthVariability.Valid {
		s.GrowthVariability = decimal.NewNullDecimal(decimal.NewFromFloat(0.20))
	}
	if !s.COGSVariability.Valid {
		s.COGSVariability = decimal.NewNullDecimal(decimal.NewFromFloat(0.05))
	}
	if !s.StaffVariability.Valid {
		s.StaffVariability = decimal.NewNullDecimal(decimal.NewFromFloat(0.10))
	}
	return s
}
