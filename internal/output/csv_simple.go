package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/bizplan/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per result,
// baseline first).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Periods", "TotalRevenue", "TotalEBITDA", "TotalNetIncome", "TotalFreeCashFlow", "FinalCash", "MinimumCash", "GrossMarginPct", "EBITDAMarginPct", "NetMarginPct", "NPV", "IRRPct", "ProfitabilityIndex", "DSCR", "BurnMultiple", "RunwayMonths", "RunwayUnbounded", "BreakEvenPeriod", "PaybackPeriod", "RuleOf40"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range allResults(report) {
		rs := r.Result
		row := []string{
			r.Name,
			intToString(rs.Horizon()),
			rs.TotalRevenue.StringFixed(2),
			rs.TotalEBITDA.StringFixed(2),
			rs.TotalNetIncome.StringFixed(2),
			rs.TotalFreeCashFlow.StringFixed(2),
			rs.FinalCash.StringFixed(2),
			rs.MinimumCash.StringFixed(2),
			rs.GrossMargin.StringFixed(2),
			rs.EBITDAMargin.StringFixed(2),
			rs.NetMargin.StringFixed(2),
			rs.NPV.StringFixed(2),
			optionalString(rs.IRR, 2),
			optionalString(rs.ProfitabilityIndex, 4),
			optionalString(rs.DSCR, 4),
			optionalString(rs.BurnMultiple, 4),
			rs.CashRunwayMonths.StringFixed(1),
			boolToString(rs.RunwayUnbounded),
			intToString(rs.BreakEvenPeriod),
			intToString(rs.PaybackPeriod),
			rs.RuleOf40.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
