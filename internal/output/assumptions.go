package output

import "github.com/rpgo/bizplan/internal/domain"

// ModelConventions lists the fixed modeling rules rendered in detailed outputs.
var ModelConventions = []string{
	"Monthly periods; revenue compounds at the monthly growth rate from period 2",
	"Taxes are charged only on positive pre-tax earnings",
	"Working capital levels use a 30-day month; the first period carries no change",
	"The full investment is spent in period 1 and depreciated straight-line",
	"Debt interest accrues on the original principal",
	"IRR is the monthly rate annualized linearly (monthly x 12)",
}

// AssumptionLines returns the plan-specific notes followed by the fixed conventions.
func AssumptionLines(report *domain.Report) []string {
	lines := append([]string(nil), report.Notes...)
	if len(lines) == 0 {
		lines = report.Assumptions.GenerateAssumptions()
	}
	return append(lines, ModelConventions...)
}
