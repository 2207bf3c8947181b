package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpgo/bizplan/internal/output"
	"github.com/rpgo/bizplan/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs",
	}
	cmd.AddCommand(newRunsListCmd(a), newRunsShowCmd(a))
	return cmd
}

func newRunsListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs archived.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tPLAN\tCREATED\tNPV")
			for _, r := range runs {
				npv := r.NPV
				if npv == "" {
					npv = output.NotAvailable
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Kind, r.PlanName, r.CreatedAt.Local().Format("2006-01-02 15:04"), npv)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum runs to list")
	return cmd
}

func newRunsShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), run.Report, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console-verbose",
		fmt.Sprintf("output format %v", output.AvailableFormatterNames()))
	return cmd
}
