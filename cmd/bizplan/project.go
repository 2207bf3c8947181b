package main

import (
	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the baseline plan and its scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.execute(cmd, calculation.RunProject, &opts, nil)
			return err
		},
	}
	opts.bind(cmd, "console")
	return cmd
}
