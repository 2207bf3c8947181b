package calculation

import (
	"github.com/rpgo/bizplan/internal/domain"
)

// BaselineScenarioName labels the unmodified plan in comparisons.
const BaselineScenarioName = "baseline"

// CompareScenarios measures each scenario against the baseline and picks the
// best outcome by NPV and by final cash. Ties keep the earlier entry, so the
// baseline wins unless a scenario is strictly better.
func (pe *ProjectionEngine) CompareScenarios(baseline *domain.ResultSet, scenarios []domain.ScenarioResult) domain.ScenarioComparison {
	cmp := domain.ScenarioComparison{
		BestByNPV:       BaselineScenarioName,
		BestByFinalCash: BaselineScenarioName,
	}
	bestNPV := baseline.NPV
	bestCash := baseline.FinalCash

	for _, sc := range scenarios {
		rs := sc.Result
		cmp.Deltas = append(cmp.Deltas, domain.ScenarioDelta{
			Name:               sc.Name,
			NPVChange:          rs.NPV.Sub(baseline.NPV),
			FinalCashChange:    rs.FinalCash.Sub(baseline.FinalCash),
			TotalRevenueChange: rs.TotalRevenue.Sub(baseline.TotalRevenue),
		})
		if rs.NPV.GreaterThan(bestNPV) {
			bestNPV = rs.NPV
			cmp.BestByNPV = sc.Name
		}
		if rs.FinalCash.GreaterThan(bestCash) {
			bestCash = rs.FinalCash
			cmp.BestByFinalCash = sc.Name
		}
	}
	return cmp
}
