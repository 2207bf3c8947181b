package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/rpgo/bizplan/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a plan does not name one.
const DefaultCurrency = "USD"

// ValuationMetric extracts the single number tornado and Monte Carlo rank by.
type ValuationMetric struct {
	Name  string
	Value func(*domain.ResultSet) decimal.Decimal
}

// NPVMetric ranks by net present value.
var NPVMetric = ValuationMetric{
	Name:  "npv",
	Value: func(rs *domain.ResultSet) decimal.Decimal { return rs.NPV },
}

// FinalCashMetric ranks by ending cash balance.
var FinalCashMetric = ValuationMetric{
	Name:  "final_cash",
	Value: func(rs *domain.ResultSet) decimal.Decimal { return rs.FinalCash },
}

// ProjectionEngine turns Assumptions into a ResultSet. It holds no per-run
// state, so one engine may serve concurrent callers.
type ProjectionEngine struct {
	Metric ValuationMetric
	Logger Logger
}

// NewProjectionEngine creates a projection engine valuing runs by NPV
func NewProjectionEngine() *ProjectionEngine {
	return &ProjectionEngine{
		Metric: NPVMetric,
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger for the projection engine. If nil is provided, a no-op logger is used.
func (pe *ProjectionEngine) SetLogger(l Logger) {
	if l == nil {
		pe.Logger = NopLogger{}
		return
	}
	pe.Logger = l
}

// Project runs the monthly projection for a and derives every rollup.
// Identical assumptions always produce identical results.
func (pe *ProjectionEngine) Project(a domain.Assumptions) *domain.ResultSet {
	if a.HorizonMonths < 1 {
		pe.Logger.Debugf("horizon %d clamped to %d", a.HorizonMonths, a.Horizon())
	}
	rs := &domain.ResultSet{Periods: projectPeriods(a)}
	summarize(rs, a)
	return rs
}

// Value projects a and returns the engine's valuation metric.
func (pe *ProjectionEngine) Value(a domain.Assumptions) decimal.Decimal {
	return pe.metric().Value(pe.Project(a))
}

func (pe *ProjectionEngine) metric() ValuationMetric {
	if pe.Metric.Value == nil {
		return NPVMetric
	}
	return pe.Metric
}

// RunPlan projects the baseline and every scenario of a plan, then attaches
// the tornado and Monte Carlo analyses the plan asks for.
func (pe *ProjectionEngine) RunPlan(ctx context.Context, plan *domain.Plan) (*domain.Report, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}

	var start *time.Time
	if plan.StartMonth != "" {
		t, err := dateutil.ParseMonth(plan.StartMonth)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", plan.Name, err)
		}
		start = &t
	}

	currency := plan.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	report := &domain.Report{
		PlanName:    plan.Name,
		Currency:    currency,
		StartMonth:  plan.StartMonth,
		Assumptions: plan.Assumptions,
		Notes:       plan.Assumptions.GenerateAssumptions(),
	}

	baseline := pe.Project(plan.Assumptions)
	labelPeriods(baseline, start)
	report.Baseline = baseline
	if plan.Assumptions.HorizonMonths < 1 {
		report.Notes = append(report.Notes, fmt.Sprintf("horizon_months %d treated as %d", plan.Assumptions.HorizonMonths, plan.Assumptions.Horizon()))
	}

	for _, sc := range plan.Scenarios {
		a, err := sc.Apply(plan.Assumptions)
		if err != nil {
			return nil, err
		}
		rs := pe.Project(a)
		labelPeriods(rs, start)
		report.Scenarios = append(report.Scenarios, domain.ScenarioResult{
			Name:      sc.Name,
			Overrides: sc.OverrideStrings(),
			Result:    rs,
		})
	}
	if len(report.Scenarios) > 0 {
		cmp := pe.CompareScenarios(baseline, report.Scenarios)
		report.Comparison = &cmp
	}

	if len(plan.Sensitivity) > 0 {
		results, err := pe.Tornado(plan.Assumptions, plan.Sensitivity)
		if err != nil {
			return nil, fmt.Errorf("tornado: %w", err)
		}
		report.Sensitivity = results
	}

	if plan.MonteCarlo.Enabled {
		sim := NewMonteCarloSimulator(pe, plan.MonteCarlo)
		sim.SetLogger(pe.Logger)
		summary, err := sim.Simulate(ctx, plan.Assumptions)
		if err != nil {
			return nil, fmt.Errorf("monte carlo: %w", err)
		}
		report.MonteCarlo = summary
	}

	pe.Logger.Infof("plan %q: %d periods, %d scenarios, npv %s", plan.Name, baseline.Horizon(), len(report.Scenarios), baseline.NPV.StringFixed(2))
	return report, nil
}

func labelPeriods(rs *domain.ResultSet, start *time.Time) {
	if start == nil {
		return
	}
	for i := range rs.Periods {
		rs.Periods[i].Label = dateutil.PeriodLabel(*start, rs.Periods[i].Period)
	}
}
