package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/bizplan/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "BUSINESS PLAN SUMMARY: %s\n", report.PlanName)
	fmt.Fprintln(&buf, "================================")
	for _, r := range allResults(report) {
		rs := r.Result
		fmt.Fprintf(&buf, "%s: NPV=%s IRR=%s FinalCash=%s Runway=%s BreakEven=%s\n",
			r.Name,
			FormatMoney(rs.NPV, report.Currency),
			FormatOptional(rs.IRR, FormatPercentage),
			FormatMoney(rs.FinalCash, report.Currency),
			formatRunway(rs),
			FormatPeriod(rs.BreakEvenPeriod),
		)
	}

	if len(report.Sensitivity) > 0 {
		top := report.Sensitivity[0]
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Most sensitive input: %s (swing %s)\n", top.Input, FormatMoney(top.Swing, report.Currency))
	}
	if mc := report.MonteCarlo; mc != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Monte Carlo (%d draws): P5=%s P50=%s P95=%s P(loss)=%s\n",
			mc.Draws,
			FormatMoney(mc.Percentiles.P5, report.Currency),
			FormatMoney(mc.Percentiles.P50, report.Currency),
			FormatMoney(mc.Percentiles.P95, report.Currency),
			FormatFraction(mc.ProbabilityLoss),
		)
	}

	rec := AnalyzeScenarios(report)
	if rec.ScenarioName != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Recommended: %s (Δ %s / %s)\n", rec.ScenarioName, FormatMoney(rec.NPVChange, report.Currency), FormatPercentage(rec.PercentageChange))
	}
	return buf.Bytes(), nil
}

func formatRunway(rs *domain.ResultSet) string {
	if rs.RunwayUnbounded {
		return "unbounded"
	}
	return rs.CashRunwayMonths.StringFixed(1) + " months"
}
