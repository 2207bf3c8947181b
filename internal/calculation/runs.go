package calculation

import (
	"context"
	"fmt"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

// RunKind selects which analyses a plan run attaches to its report.
type RunKind string

const (
	RunProject  RunKind = "project"  // baseline and scenarios
	RunTornado  RunKind = "tornado"  // baseline and sensitivity
	RunSimulate RunKind = "simulate" // baseline and Monte Carlo
	RunReport   RunKind = "report"   // everything the plan asks for
)

// DefaultTornadoDeltaPct is the swing applied when a plan lists no sensitivity inputs.
var DefaultTornadoDeltaPct = decimal.NewFromInt(10)

// ParseRunKind validates a run kind name.
func ParseRunKind(s string) (RunKind, error) {
	switch k := RunKind(s); k {
	case RunProject, RunTornado, RunSimulate, RunReport:
		return k, nil
	default:
		return "", fmt.Errorf("unknown run kind %q", s)
	}
}

// Run executes the analyses selected by kind on a copy of plan.
func (pe *ProjectionEngine) Run(ctx context.Context, kind RunKind, plan *domain.Plan) (*domain.Report, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	p := *plan
	switch kind {
	case RunProject:
		p.Sensitivity = nil
		p.MonteCarlo.Enabled = false
	case RunTornado:
		p.Scenarios = nil
		p.MonteCarlo.Enabled = false
		if len(p.Sensitivity) == 0 {
			p.Sensitivity = DefaultTornadoSpec(DefaultTornadoDeltaPct)
		}
	case RunSimulate:
		p.Scenarios = nil
		p.Sensitivity = nil
		p.MonteCarlo.Enabled = true
	case RunReport:
	default:
		return nil, fmt.Errorf("unknown run kind %q", kind)
	}
	return pe.RunPlan(ctx, &p)
}
