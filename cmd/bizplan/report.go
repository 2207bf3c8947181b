package main

import (
	"fmt"

	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/output"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		input  string
		format string
		dir    string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every analysis the plan asks for and write a report",
		Long: `report projects the baseline and scenarios, ranks sensitivities and runs
Monte Carlo when the plan enables it. With --dir the report is written to
timestamped files; format "all" writes the detailed text, period CSV, HTML
page and the Monte Carlo CSV set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.loadPlan(input)
			if err != nil {
				return err
			}
			report, err := a.engine().Run(cmd.Context(), calculation.RunReport, plan)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if dir == "" && format != "all" {
				if err := output.Render(stdout, report, format); err != nil {
					return err
				}
			} else {
				if dir == "" {
					dir = "."
				}
				files, err := output.GenerateReport(report, format, dir)
				if err != nil {
					return err
				}
				if format == "all" {
					csvFiles, err := output.NewMonteCarloCSVReport(report).GenerateAllCSVReports(dir)
					if err != nil {
						return err
					}
					files = append(files, csvFiles...)
				}
				for _, f := range files {
					fmt.Fprintf(stdout, "Wrote %s\n", f)
				}
			}

			if save {
				return a.archive(cmd.Context(), cmd.ErrOrStderr(), calculation.RunReport, report)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "plan file (.yaml, .yml, .hjson or .json)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown",
		fmt.Sprintf("report format %v or all", output.AvailableFormatterNames()))
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "write report files to this directory")
	cmd.Flags().BoolVar(&save, "save", false, "store the run in the archive")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
