package main

import (
	"fmt"

	"github.com/rpgo/bizplan/internal/config"
	"github.com/spf13/cobra"
)

func newExampleCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write a sample plan file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := a.parser.CreateExamplePlan()
			if err := config.SaveToFile(plan, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example plan written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "plan.yaml", "destination (.yaml, .json or .hjson)")
	return cmd
}
