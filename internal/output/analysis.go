package output

import (
	"sort"

	calc "github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation encapsulates the selection result of the best scenario.
type Recommendation struct {
	ScenarioName     string
	NPV              decimal.Decimal
	NPVChange        decimal.Decimal
	PercentageChange decimal.Decimal
}

// AnalyzeScenarios picks the scenario with the highest NPV and measures it
// against the baseline. The zero Recommendation means no scenario beats the
// baseline or there are no scenarios.
func AnalyzeScenarios(report *domain.Report) Recommendation {
	if report == nil || report.Baseline == nil || len(report.Scenarios) == 0 {
		return Recommendation{}
	}
	baseline := report.Baseline.NPV

	ranks := append([]domain.ScenarioResult(nil), report.Scenarios...)
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Result.NPV.GreaterThan(ranks[j].Result.NPV) })
	best := ranks[0]
	if !best.Result.NPV.GreaterThan(baseline) {
		return Recommendation{}
	}

	delta := best.Result.NPV.Sub(baseline)
	pct := decimal.Zero
	if !baseline.IsZero() {
		pct = delta.Div(baseline.Abs()).Mul(decimal.NewFromInt(100))
	}
	return Recommendation{ScenarioName: best.Name, NPV: best.Result.NPV, NPVChange: delta, PercentageChange: pct}
}

// namedResult is a baseline-or-scenario row shared by the tabular formatters.
type namedResult struct {
	Name   string
	Result *domain.ResultSet
}

// allResults lists the baseline first, then scenarios sorted by name.
func allResults(report *domain.Report) []namedResult {
	var out []namedResult
	if report.Baseline != nil {
		out = append(out, namedResult{Name: calc.BaselineScenarioName, Result: report.Baseline})
	}
	scenarios := append([]domain.ScenarioResult(nil), report.Scenarios...)
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	for _, sc := range scenarios {
		out = append(out, namedResult{Name: sc.Name, Result: sc.Result})
	}
	return out
}
