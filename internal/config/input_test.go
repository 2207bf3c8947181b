package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = "name: \"Corner Bakery\"\n" +
	"currency: usd\n" +
	"start_month: \"2026-03\"\n" +
	"assumptions:\n" +
	"  initial_revenue: 30000\n" +
	"  growth_rate: 2.5\n" +
	"  cogs_pct: 40\n" +
	"  staff_cost: 9000\n" +
	"  marketing_cost: 1500\n" +
	"  admin_cost: 1200\n" +
	"  investment: 48000\n" +
	"  tax_rate: 25\n" +
	"  horizon_months: 24\n" +
	"  discount_rate: 10\n" +
	"  asset_life_years: 4\n" +
	"  receivable_days: 5\n" +
	"  inventory_days: 10\n" +
	"  payable_days: 20\n" +
	"  opening_cash: 60000\n" +
	"scenarios:\n" +
	"  - name: \"Second oven\"\n" +
	"    overrides:\n" +
	"      investment: 70000\n" +
	"      growth_rate: 3.5\n" +
	"sensitivity:\n" +
	"  - input: cogs_pct\n" +
	"    delta_pct: 10\n" +
	"monte_carlo:\n" +
	"  enabled: true\n" +
	"  draws: 200\n" +
	"  seed: 42\n"

const minimalHJSON = `{
  # comments and unquoted keys are fine
  name: Corner Bakery
  assumptions: {
    initial_revenue: 30000
    growth_rate: 2.5
    cogs_pct: 40
    staff_cost: 9000
    investment: 48000
    tax_rate: 25
    horizon_months: 24
    discount_rate: 10
    asset_life_years: 4
    unit_economics: {
      mrr_per_user: 30
      monthly_churn_pct: 5
    }
  }
  scenarios: [
    {
      name: Second oven
      overrides: { investment: 70000 }
    }
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeTemp(t, "bakery.yaml", minimalYAML)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Corner Bakery", plan.Name)
	assert.Equal(t, "USD", plan.Currency)
	assert.Equal(t, "2026-03", plan.StartMonth)
	assert.True(t, plan.Assumptions.InitialRevenue.Equal(decimal.NewFromInt(30000)))
	assert.True(t, plan.Assumptions.GrowthRate.Equal(decimal.NewFromFloat(2.5)))
	assert.Equal(t, 24, plan.Assumptions.HorizonMonths)
	assert.Equal(t, domain.StraightLine, plan.Assumptions.DepreciationMethod)

	require.Len(t, plan.Scenarios, 1)
	assert.Equal(t, "Second oven", plan.Scenarios[0].Name)
	assert.True(t, plan.Scenarios[0].Overrides[domain.FieldInvestment].Equal(decimal.NewFromInt(70000)))

	require.Len(t, plan.Sensitivity, 1)
	assert.Equal(t, domain.FieldCOGSPct, plan.Sensitivity[0].Input)

	assert.True(t, plan.MonteCarlo.Enabled)
	assert.Equal(t, 200, plan.MonteCarlo.Draws)
	assert.Equal(t, int64(42), plan.MonteCarlo.Seed)
}

func TestLoadFromFile_HJSON(t *testing.T) {
	path := writeTemp(t, "bakery.hjson", minimalHJSON)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Corner Bakery", plan.Name)
	assert.True(t, plan.Assumptions.TaxRate.Equal(decimal.NewFromInt(25)))
	require.True(t, plan.Assumptions.UnitEconomics.MRRPerUser.Valid)
	assert.True(t, plan.Assumptions.UnitEconomics.MRRPerUser.Decimal.Equal(decimal.NewFromInt(30)))
	assert.False(t, plan.Assumptions.UnitEconomics.UnitPrice.Valid)
	require.Len(t, plan.Scenarios, 1)
	assert.True(t, plan.Scenarios[0].Overrides[domain.FieldInvestment].Equal(decimal.NewFromInt(70000)))
}

func TestLoadFromFile_NameFromFilename(t *testing.T) {
	content := "assumptions:\n  initial_revenue: 1000\n  horizon_months: 12\n"
	path := writeTemp(t, "side-project.yml", content)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "side-project", plan.Name)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "name: [unclosed\n")

	_, err := NewInputParser().LoadFromFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromFile_InvalidHJSON(t *testing.T) {
	path := writeTemp(t, "bad.hjson", "{ name: [ }")

	_, err := NewInputParser().LoadFromFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HJSON")
}

func TestLoadFromFile_ValidationFailure(t *testing.T) {
	content := "name: broken\nassumptions:\n  initial_revenue: 1000\n  payable_days: -4\n"
	path := writeTemp(t, "broken.yaml", content)

	_, err := NewInputParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan validation failed")
	assert.Contains(t, err.Error(), "payable days")
}

func TestFormatForFile(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForFile("plan.yaml"))
	assert.Equal(t, FormatYAML, FormatForFile("plan.YML"))
	assert.Equal(t, FormatHJSON, FormatForFile("plan.hjson"))
	assert.Equal(t, FormatHJSON, FormatForFile("plan.json"))
	assert.Equal(t, FormatYAML, FormatForFile("plan"))
}

func TestParse_ExplicitZeroVariability(t *testing.T) {
	inputs := map[string]string{
		FormatYAML:  "monte_carlo:\n  growth_variability: 0\n",
		FormatHJSON: "{monte_carlo: {growth_variability: 0}}",
	}
	for format, data := range inputs {
		t.Run(format, func(t *testing.T) {
			plan, err := NewInputParser().Parse([]byte(data), format)
			require.NoError(t, err)

			mc := plan.MonteCarlo
			require.True(t, mc.GrowthVariability.Valid)
			assert.True(t, mc.GrowthVariability.Decimal.IsZero())
			assert.False(t, mc.RevenueVariability.Valid)

			mc = mc.WithDefaults()
			assert.True(t, mc.GrowthVariability.Decimal.IsZero())
			assert.True(t, mc.RevenueVariability.Decimal.Equal(decimal.NewFromFloat(0.10)))
		})
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	parser := NewInputParser()

	t.Run("clamps out of range inputs", func(t *testing.T) {
		plan := parser.CreateExamplePlan()
		plan.Assumptions.GrowthRate = decimal.NewFromInt(250)
		plan.Assumptions.COGSPct = decimal.NewFromInt(-5)
		plan.Assumptions.TaxRate = decimal.NewFromInt(140)
		plan.Assumptions.HorizonMonths = 0

		notes := parser.Normalize(plan)
		assert.Len(t, notes, 4)
		assert.True(t, plan.Assumptions.GrowthRate.Equal(decimal.NewFromInt(100)))
		assert.True(t, plan.Assumptions.COGSPct.IsZero())
		assert.True(t, plan.Assumptions.TaxRate.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 1, plan.Assumptions.HorizonMonths)
	})

	t.Run("negative growth floor", func(t *testing.T) {
		plan := parser.CreateExamplePlan()
		plan.Assumptions.GrowthRate = decimal.NewFromInt(-80)
		parser.Normalize(plan)
		assert.True(t, plan.Assumptions.GrowthRate.Equal(decimal.NewFromInt(-50)))
	})

	t.Run("in range plan is untouched", func(t *testing.T) {
		plan := parser.CreateExamplePlan()
		assert.Empty(t, parser.Normalize(plan))
	})

	t.Run("fills defaults", func(t *testing.T) {
		plan := parser.CreateExamplePlan()
		plan.Currency = ""
		plan.Assumptions.DepreciationMethod = ""
		parser.Normalize(plan)
		assert.Equal(t, "USD", plan.Currency)
		assert.Equal(t, domain.StraightLine, plan.Assumptions.DepreciationMethod)
	})
}

func TestValidatePlan(t *testing.T) {
	parser := NewInputParser()

	tests := []struct {
		name    string
		mutate  func(p *domain.Plan)
		wantErr string
	}{
		{name: "example is valid", mutate: func(p *domain.Plan) {}},
		{
			name:    "negative revenue",
			mutate:  func(p *domain.Plan) { p.Assumptions.InitialRevenue = decimal.NewFromInt(-1) },
			wantErr: "initial revenue",
		},
		{
			name:    "negative asset life",
			mutate:  func(p *domain.Plan) { p.Assumptions.AssetLifeYears = decimal.NewFromInt(-2) },
			wantErr: "asset life",
		},
		{
			name:    "investment without asset life",
			mutate:  func(p *domain.Plan) { p.Assumptions.AssetLifeYears = decimal.Zero },
			wantErr: "asset life is required",
		},
		{
			name:    "unknown depreciation method",
			mutate:  func(p *domain.Plan) { p.Assumptions.DepreciationMethod = "double_declining" },
			wantErr: "depreciation method",
		},
		{
			name:    "receivable days above a year",
			mutate:  func(p *domain.Plan) { p.Assumptions.ReceivableDays = decimal.NewFromInt(400) },
			wantErr: "receivable days",
		},
		{
			name:    "debt without term",
			mutate:  func(p *domain.Plan) { p.Assumptions.DebtTermMonths = 0 },
			wantErr: "debt term",
		},
		{
			name:    "discount rate at -100",
			mutate:  func(p *domain.Plan) { p.Assumptions.DiscountRate = decimal.NewFromInt(-100) },
			wantErr: "discount rate",
		},
		{
			name: "churn above 100",
			mutate: func(p *domain.Plan) {
				p.Assumptions.UnitEconomics.MonthlyChurnPct = decimal.NewNullDecimal(decimal.NewFromInt(120))
			},
			wantErr: "monthly churn",
		},
		{
			name:    "bad start month",
			mutate:  func(p *domain.Plan) { p.StartMonth = "March 2026" },
			wantErr: "start_month",
		},
		{
			name: "unknown scenario field",
			mutate: func(p *domain.Plan) {
				p.Scenarios[0].Overrides["headcount"] = decimal.NewFromInt(3)
			},
			wantErr: "unknown assumption input",
		},
		{
			name:    "unnamed scenario",
			mutate:  func(p *domain.Plan) { p.Scenarios[1].Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "duplicate scenario",
			mutate:  func(p *domain.Plan) { p.Scenarios[1].Name = p.Scenarios[0].Name },
			wantErr: "duplicate",
		},
		{
			name:    "unknown sensitivity input",
			mutate:  func(p *domain.Plan) { p.Sensitivity[0].Input = "weather" },
			wantErr: "unknown assumption input",
		},
		{
			name:    "zero sensitivity delta",
			mutate:  func(p *domain.Plan) { p.Sensitivity[0].DeltaPct = decimal.Zero },
			wantErr: "delta_pct",
		},
		{
			name:    "negative draws",
			mutate:  func(p *domain.Plan) { p.MonteCarlo.Draws = -1 },
			wantErr: "draws",
		},
		{
			name:    "draws above limit",
			mutate:  func(p *domain.Plan) { p.MonteCarlo.Draws = domain.MaxDraws + 1 },
			wantErr: "draws must be between 0 and 100000",
		},
		{
			name:    "workers above limit",
			mutate:  func(p *domain.Plan) { p.MonteCarlo.Workers = domain.MaxWorkers + 1 },
			wantErr: "workers",
		},
		{
			name:    "horizon above limit",
			mutate:  func(p *domain.Plan) { p.Assumptions.HorizonMonths = domain.MaxHorizonMonths + 1 },
			wantErr: "horizon_months",
		},
		{
			name:   "horizon at limit",
			mutate: func(p *domain.Plan) { p.Assumptions.HorizonMonths = domain.MaxHorizonMonths },
		},
		{
			name:   "zero variability",
			mutate: func(p *domain.Plan) { p.MonteCarlo.RevenueVariability = decimal.NewNullDecimal(decimal.Zero) },
		},
		{
			name:    "variability above one",
			mutate:  func(p *domain.Plan) { p.MonteCarlo.GrowthVariability = decimal.NewNullDecimal(decimal.NewFromFloat(1.5)) },
			wantErr: "growth_variability",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := parser.CreateExamplePlan()
			tt.mutate(plan)
			err := parser.ValidatePlan(plan)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, parser.ValidatePlan(nil))
}

func TestValidatePlan_UnknownFieldWrapsSentinel(t *testing.T) {
	parser := NewInputParser()
	plan := parser.CreateExamplePlan()
	plan.Sensitivity[0].Input = "weather"

	err := parser.ValidatePlan(plan)
	assert.ErrorIs(t, err, domain.ErrUnknownInput)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	parser := NewInputParser()
	original := parser.CreateExamplePlan()

	for _, name := range []string{"plan.yaml", "plan.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveToFile(original, path))

			loaded, err := parser.LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, original.Name, loaded.Name)
			assert.Equal(t, original.StartMonth, loaded.StartMonth)
			assert.True(t, original.Assumptions.InitialRevenue.Equal(loaded.Assumptions.InitialRevenue))
			assert.True(t, original.Assumptions.DebtRate.Equal(loaded.Assumptions.DebtRate))
			assert.Equal(t, original.Assumptions.DebtTermMonths, loaded.Assumptions.DebtTermMonths)
			assert.Len(t, loaded.Scenarios, len(original.Scenarios))
			assert.Len(t, loaded.Sensitivity, len(original.Sensitivity))
			assert.Equal(t, original.MonteCarlo.Seed, loaded.MonteCarlo.Seed)
		})
	}
}

func TestCreateExamplePlan(t *testing.T) {
	plan := NewInputParser().CreateExamplePlan()

	assert.NotEmpty(t, plan.Name)
	assert.Equal(t, 36, plan.Assumptions.HorizonMonths)
	assert.Len(t, plan.Scenarios, 2)
	assert.NotEmpty(t, plan.Sensitivity)
	assert.True(t, plan.MonteCarlo.Enabled)
	assert.NoError(t, NewInputParser().ValidatePlan(plan))
}
