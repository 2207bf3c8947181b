package main

import (
	"context"
	"fmt"
	"os"

	calc "github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/config"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_break_even <plan-file>")
		return
	}
	p := config.NewInputParser()
	plan, err := p.LoadFromFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	engine := calc.NewProjectionEngine()
	report, err := engine.Run(context.Background(), calc.RunProject, plan)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	type column struct {
		name       string
		result     *domain.ResultSet
		investment decimal.Decimal
		cumulative []string
	}
	cols := []column{{name: calc.BaselineScenarioName, result: report.Baseline, investment: report.Assumptions.Investment}}
	for i := range report.Scenarios {
		s := &report.Scenarios[i]
		investment := report.Assumptions.Investment
		for _, ps := range plan.Scenarios {
			if ps.Name != s.Name {
				continue
			}
			if a, err := ps.Apply(report.Assumptions); err == nil {
				investment = a.Investment
			}
		}
		cols = append(cols, column{name: s.Name, result: s.Result, investment: investment})
	}

	horizon := report.Baseline.Horizon()
	for i := range cols {
		for _, c := range calc.CumulativeCashFlow(cols[i].investment, cols[i].result.Periods) {
			cols[i].cumulative = append(cols[i].cumulative, c.StringFixed(0))
		}
	}

	// Header
	header := "Period,Label"
	for i := range cols {
		header += fmt.Sprintf(",S%d_Revenue,S%d_EBITDA,S%d_FCF,S%d_Cumulative,S%d_Cash", i, i, i, i, i)
	}
	fmt.Println(header)

	for idx := 0; idx < horizon; idx++ {
		first := report.Baseline.Periods[idx]
		row := fmt.Sprintf("%d,%s", first.Period, first.Label)
		for _, c := range cols {
			if idx >= len(c.result.Periods) {
				row += ",,,,,"
				continue
			}
			pr := c.result.Periods[idx]
			row += fmt.Sprintf(",%s,%s,%s,%s,%s", pr.Revenue.StringFixed(0), pr.EBITDA.StringFixed(0),
				pr.FreeCashFlow.StringFixed(0), c.cumulative[idx], pr.EndingCash.StringFixed(0))
		}
		fmt.Println(row)
	}

	fmt.Println()
	for i, c := range cols {
		fmt.Printf("S%d %s: break-even period=%d payback period=%d\n", i, c.name,
			calc.BreakEvenPeriod(c.result.Periods), calc.PaybackPeriod(c.investment, c.result.Periods))
	}
}
