package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

const histogramBarWidth = 40

// ConsoleVerboseFormatter renders the full plan report: assumptions, the
// monthly ledger, scenario comparison, tornado and Monte Carlo sections.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console-verbose" }

func (c ConsoleVerboseFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	cur := report.Currency

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintf(&buf, "DETAILED BUSINESS PLAN ANALYSIS: %s\n", report.PlanName)
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range AssumptionLines(report) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	if report.Baseline != nil {
		fmt.Fprintln(&buf, "BASELINE PROJECTION")
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		writePeriodTable(&buf, report.Baseline)
		fmt.Fprintln(&buf)
		writeMetrics(&buf, report.Baseline, cur)
		fmt.Fprintln(&buf)
	}

	for i, sc := range report.Scenarios {
		fmt.Fprintf(&buf, "SCENARIO %d: %s\n", i+1, sc.Name)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		for _, field := range sortedKeys(sc.Overrides) {
			fmt.Fprintf(&buf, "  override %-18s %s\n", field+":", sc.Overrides[field])
		}
		writeMetrics(&buf, sc.Result, cur)
		fmt.Fprintln(&buf)
	}

	writeComparison(&buf, report)
	writeTornado(&buf, report.Sensitivity, cur)
	writeMonteCarlo(&buf, report.MonteCarlo, cur)
	return buf.Bytes(), nil
}

func writePeriodTable(w io.Writer, rs *domain.ResultSet) {
	fmt.Fprintf(w, "%-8s %14s %14s %14s %14s %14s\n", "Period", "Revenue", "EBITDA", "Net Income", "Free CF", "Ending Cash")
	fmt.Fprintln(w, strings.Repeat("-", 81))
	for _, p := range rs.Periods {
		label := p.Label
		if label == "" {
			label = intToString(p.Period)
		}
		fmt.Fprintf(w, "%-8s %14s %14s %14s %14s %14s\n",
			label,
			FormatNumber(p.Revenue, 0),
			FormatNumber(p.EBITDA, 0),
			FormatNumber(p.NetIncome, 0),
			FormatNumber(p.FreeCashFlow, 0),
			FormatNumber(p.EndingCash, 0),
		)
	}
}

func writeMetrics(w io.Writer, rs *domain.ResultSet, cur string) {
	fmt.Fprintln(w, "TOTALS:")
	fmt.Fprintf(w, "  Revenue:                %s\n", FormatMoney(rs.TotalRevenue, cur))
	fmt.Fprintf(w, "  EBITDA:                 %s\n", FormatMoney(rs.TotalEBITDA, cur))
	fmt.Fprintf(w, "  Net Income:             %s\n", FormatMoney(rs.TotalNetIncome, cur))
	fmt.Fprintf(w, "  Free Cash Flow:         %s\n", FormatMoney(rs.TotalFreeCashFlow, cur))
	fmt.Fprintln(w, "MARGINS:")
	fmt.Fprintf(w, "  Gross:                  %s\n", FormatPercentage(rs.GrossMargin))
	fmt.Fprintf(w, "  EBITDA:                 %s\n", FormatPercentage(rs.EBITDAMargin))
	fmt.Fprintf(w, "  EBIT:                   %s\n", FormatPercentage(rs.EBITMargin))
	fmt.Fprintf(w, "  Net:                    %s\n", FormatPercentage(rs.NetMargin))
	fmt.Fprintln(w, "CASH:")
	fmt.Fprintf(w, "  Final Cash:             %s\n", FormatMoney(rs.FinalCash, cur))
	fmt.Fprintf(w, "  Minimum Cash:           %s (%s)\n", FormatMoney(rs.MinimumCash, cur), FormatPeriod(rs.MinimumCashPeriod))
	fmt.Fprintf(w, "  Average Monthly Burn:   %s\n", FormatMoney(rs.AverageMonthlyBurn, cur))
	fmt.Fprintf(w, "  Runway:                 %s\n", formatRunway(rs))
	fmt.Fprintf(w, "  Cash Conversion Cycle:  %s days\n", rs.CashConversionCycle.StringFixed(1))
	fmt.Fprintf(w, "  Break-even:             %s\n", FormatPeriod(rs.BreakEvenPeriod))
	fmt.Fprintf(w, "  Payback:                %s\n", FormatPeriod(rs.PaybackPeriod))
	fmt.Fprintln(w, "VALUATION:")
	fmt.Fprintf(w, "  NPV:                    %s\n", FormatMoney(rs.NPV, cur))
	fmt.Fprintf(w, "  IRR (annual):           %s\n", FormatOptional(rs.IRR, FormatPercentage))
	fmt.Fprintf(w, "  Profitability Index:    %s\n", FormatOptional(rs.ProfitabilityIndex, FormatRatio))
	fmt.Fprintf(w, "  DSCR:                   %s\n", FormatOptional(rs.DSCR, FormatRatio))
	fmt.Fprintf(w, "  Burn Multiple:          %s\n", FormatOptional(rs.BurnMultiple, FormatRatio))
	fmt.Fprintf(w, "  Rule of 40:             %s\n", FormatPercentage(rs.RuleOf40))

	ue := rs.UnitEconomics
	fmt.Fprintln(w, "UNIT ECONOMICS:")
	fmt.Fprintf(w, "  Contribution Margin:    %s (%s)\n",
		FormatOptional(ue.ContributionMargin, func(d decimal.Decimal) string { return FormatMoney(d, cur) }),
		FormatOptional(ue.ContributionMarginPct, FormatPercentage))
	fmt.Fprintf(w, "  Break-even Units:       %s\n", optionalString(ue.BreakEvenUnits, 0))
	fmt.Fprintf(w, "  Customer LTV:           %s\n", FormatOptional(ue.CustomerLifetimeValue, func(d decimal.Decimal) string { return FormatMoney(d, cur) }))
	fmt.Fprintf(w, "  LTV:CAC:                %s\n", FormatOptional(ue.LTVToCAC, FormatRatio))
	fmt.Fprintf(w, "  CAC Payback:            %s months\n", optionalString(ue.CACPaybackMonths, 1))
}

func writeComparison(w io.Writer, report *domain.Report) {
	cmp := report.Comparison
	if cmp == nil {
		return
	}
	fmt.Fprintln(w, "SCENARIO COMPARISON")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Best by NPV:        %s\n", cmp.BestByNPV)
	fmt.Fprintf(w, "Best by final cash: %s\n", cmp.BestByFinalCash)
	for _, d := range cmp.Deltas {
		fmt.Fprintf(w, "  %-24s NPV %s  cash %s  revenue %s\n", d.Name,
			signed(d.NPVChange, report.Currency),
			signed(d.FinalCashChange, report.Currency),
			signed(d.TotalRevenueChange, report.Currency))
	}
	if rec := AnalyzeScenarios(report); rec.ScenarioName != "" {
		fmt.Fprintf(w, "RECOMMENDATION: %s (%s NPV, %s)\n", rec.ScenarioName, signed(rec.NPVChange, report.Currency), FormatPercentage(rec.PercentageChange))
	}
	fmt.Fprintln(w)
}

func writeTornado(w io.Writer, results []domain.SensitivityResult, cur string) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "SENSITIVITY (TORNADO)")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "%-18s %8s %16s %16s %16s\n", "Input", "Delta", "Downside", "Upside", "Swing")
	for _, r := range results {
		fmt.Fprintf(w, "%-18s %8s %16s %16s %16s\n", r.Input, "±"+FormatPercentage(r.DeltaPct),
			FormatMoney(r.Downside, cur), FormatMoney(r.Upside, cur), FormatMoney(r.Swing, cur))
	}
	fmt.Fprintln(w)
}

func writeMonteCarlo(w io.Writer, mc *domain.MonteCarloSummary, cur string) {
	if mc == nil {
		return
	}
	fmt.Fprintln(w, "MONTE CARLO")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Metric: %s  Draws: %d  Seed: %d\n", mc.Metric, mc.Draws, mc.Seed)
	fmt.Fprintf(w, "  P5 / P50 / P95:  %s / %s / %s\n",
		FormatMoney(mc.Percentiles.P5, cur), FormatMoney(mc.Percentiles.P50, cur), FormatMoney(mc.Percentiles.P95, cur))
	fmt.Fprintf(w, "  Mean ± StdDev:   %s ± %s\n", FormatMoney(mc.Mean, cur), FormatMoney(mc.StdDev, cur))
	fmt.Fprintf(w, "  Min / Max:       %s / %s\n", FormatMoney(mc.Min, cur), FormatMoney(mc.Max, cur))
	fmt.Fprintf(w, "  P(loss):         %s\n", FormatFraction(mc.ProbabilityLoss))

	peak := 0
	for _, b := range mc.Histogram {
		if b.Count > peak {
			peak = b.Count
		}
	}
	if peak == 0 {
		return
	}
	fmt.Fprintln(w, "  Distribution:")
	for _, b := range mc.Histogram {
		bar := strings.Repeat("#", b.Count*histogramBarWidth/peak)
		fmt.Fprintf(w, "  %16s %6d %s\n", FormatNumber(b.Lower, 0), b.Count, bar)
	}
	fmt.Fprintln(w)
}

func signed(d decimal.Decimal, cur string) string {
	if d.IsPositive() {
		return "+" + FormatMoney(d, cur)
	}
	return FormatMoney(d, cur)
}
