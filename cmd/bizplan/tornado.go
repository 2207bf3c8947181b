package main

import (
	"fmt"

	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTornadoCmd(a *app) *cobra.Command {
	var (
		opts  runOptions
		delta float64
	)
	cmd := &cobra.Command{
		Use:   "tornado",
		Short: "Rank inputs by how far a symmetric swing moves NPV",
		Long: `tornado perturbs each input up and down and ranks the inputs by the
resulting NPV swing. Inputs come from the plan's sensitivity section; when it is
empty every numeric assumption is swung by --delta percent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if delta <= 0 {
				return fmt.Errorf("--delta must be positive, got %v", delta)
			}
			_, err := a.execute(cmd, calculation.RunTornado, &opts, func(p *domain.Plan) {
				if cmd.Flags().Changed("delta") || len(p.Sensitivity) == 0 {
					p.Sensitivity = calculation.DefaultTornadoSpec(decimal.NewFromFloat(delta))
				}
			})
			return err
		},
	}
	opts.bind(cmd, "console-verbose")
	cmd.Flags().Float64Var(&delta, "delta", calculation.DefaultTornadoDeltaPct.InexactFloat64(),
		"percent swing applied to every input")
	return cmd
}
