package main

import (
	"fmt"

	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/rpgo/bizplan/internal/output"
	"github.com/spf13/cobra"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		opts    runOptions
		draws   int
		seed    int64
		workers int
		csvDir  string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Sample the NPV distribution with seeded Monte Carlo draws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if draws < 0 || draws > domain.MaxDraws {
				return fmt.Errorf("--draws must be between 0 and %d", domain.MaxDraws)
			}
			if workers < 0 || workers > domain.MaxWorkers {
				return fmt.Errorf("--workers must be between 0 and %d", domain.MaxWorkers)
			}
			report, err := a.execute(cmd, calculation.RunSimulate, &opts, func(p *domain.Plan) {
				if cmd.Flags().Changed("draws") {
					p.MonteCarlo.Draws = draws
				}
				if cmd.Flags().Changed("seed") {
					p.MonteCarlo.Seed = seed
				}
				if cmd.Flags().Changed("workers") {
					p.MonteCarlo.Workers = workers
				}
			})
			if err != nil {
				return err
			}
			if csvDir == "" {
				return nil
			}
			files, err := output.NewMonteCarloCSVReport(report).GenerateAllCSVReports(csvDir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", f)
			}
			return nil
		},
	}
	opts.bind(cmd, "console-verbose")
	cmd.Flags().IntVar(&draws, "draws", 0, "number of draws (default from plan or $BIZPLAN_DRAWS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default from plan or $BIZPLAN_SEED)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default from plan or $BIZPLAN_WORKERS)")
	cmd.Flags().StringVar(&csvDir, "csv", "", "also write summary, percentile, histogram and tornado CSVs to this directory")
	return cmd
}
