package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/bizplan/internal/domain"
)

// CSVDetailedExporter provides the raw monthly ledger per scenario/period.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Period", "Label", "Revenue", "COGS", "GrossProfit", "FixedOpex", "EBITDA", "Depreciation", "EBIT", "Interest", "EBT", "Taxes", "NetIncome", "Receivables", "Inventory", "Payables", "ChangeInWorkingCapital", "OperatingCashFlow", "Capex", "PrincipalRepaid", "FreeCashFlow", "EndingCash"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range allResults(report) {
		for _, p := range r.Result.Periods {
			row := []string{
				r.Name,
				intToString(p.Period),
				p.Label,
				p.Revenue.StringFixed(2),
				p.COGS.StringFixed(2),
				p.GrossProfit.StringFixed(2),
				p.FixedOpex.StringFixed(2),
				p.EBITDA.StringFixed(2),
				p.Depreciation.StringFixed(2),
				p.EBIT.StringFixed(2),
				p.Interest.StringFixed(2),
				p.EBT.StringFixed(2),
				p.Taxes.StringFixed(2),
				p.NetIncome.StringFixed(2),
				p.Receivables.StringFixed(2),
				p.Inventory.StringFixed(2),
				p.Payables.StringFixed(2),
				p.ChangeInWorkingCapital.StringFixed(2),
				p.OperatingCashFlow.StringFixed(2),
				p.Capex.StringFixed(2),
				p.PrincipalRepaid.StringFixed(2),
				p.FreeCashFlow.StringFixed(2),
				p.EndingCash.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
