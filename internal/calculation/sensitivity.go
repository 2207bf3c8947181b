package calculation

import (
	"fmt"
	"sort"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SensitivityRun returns the valuation with one input shifted by deltaPct percent.
type SensitivityRun func(input domain.InputField, deltaPct decimal.Decimal) (decimal.Decimal, error)

// RankSensitivities evaluates run at +delta and -delta for every entry of spec
// and orders the results by descending swing. Entries with equal swing keep
// their spec order.
func RankSensitivities(run SensitivityRun, spec []domain.SensitivityInput) ([]domain.SensitivityResult, error) {
	results := make([]domain.SensitivityResult, 0, len(spec))
	for _, s := range spec {
		up, err := run(s.Input, s.DeltaPct)
		if err != nil {
			return nil, fmt.Errorf("%s +%s%%: %w", s.Input, s.DeltaPct, err)
		}
		down, err := run(s.Input, s.DeltaPct.Neg())
		if err != nil {
			return nil, fmt.Errorf("%s -%s%%: %w", s.Input, s.DeltaPct, err)
		}
		results = append(results, domain.SensitivityResult{
			Input:    s.Input,
			DeltaPct: s.DeltaPct,
			Upside:   up,
			Downside: down,
			Swing:    up.Sub(down).Abs(),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Swing.GreaterThan(results[j].Swing)
	})
	return results, nil
}

// Tornado reruns the projection with each spec input scaled up and down on a
// copy of a and ranks the inputs by valuation swing.
func (pe *ProjectionEngine) Tornado(a domain.Assumptions, spec []domain.SensitivityInput) ([]domain.SensitivityResult, error) {
	run := func(input domain.InputField, deltaPct decimal.Decimal) (decimal.Decimal, error) {
		scale, err := domain.Scale(input, deltaPct)
		if err != nil {
			return decimal.Zero, err
		}
		return pe.Value(a.WithOverrides(scale)), nil
	}
	results, err := RankSensitivities(run, spec)
	if err != nil {
		return nil, err
	}
	pe.Logger.Debugf("tornado: %d inputs ranked by %s", len(results), pe.metric().Name)
	return results, nil
}

// DefaultTornadoSpec perturbs the revenue drivers, the cost lines, the
// investment and the tax and discount rates by delta percent.
func DefaultTornadoSpec(deltaPct decimal.Decimal) []domain.SensitivityInput {
	fields := []domain.InputField{
		domain.FieldInitialRevenue,
		domain.FieldGrowthRate,
		domain.FieldCOGSPct,
		domain.FieldStaffCost,
		domain.FieldMarketingCost,
		domain.FieldAdminCost,
		domain.FieldInvestment,
		domain.FieldTaxRate,
		domain.FieldDiscountRate,
	}
	spec := make([]domain.SensitivityInput, len(fields))
	for i, f := range fields {
		spec[i] = domain.SensitivityInput{Input: f, DeltaPct: deltaPct}
	}
	return spec
}
