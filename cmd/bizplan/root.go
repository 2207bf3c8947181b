package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/config"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/rpgo/bizplan/internal/output"
	"github.com/rpgo/bizplan/internal/store"
	"github.com/spf13/cobra"
)

// app holds the global flags and the state built from them before a
// subcommand runs.
type app struct {
	verbose bool
	dbPath  string
	envFile string

	settings config.Settings
	logger   calculation.Logger
	parser   *config.InputParser
}

func newRootCmd() *cobra.Command {
	a := &app{parser: config.NewInputParser(), logger: calculation.NopLogger{}}

	root := &cobra.Command{
		Use:   "bizplan",
		Short: "Business plan projections, sensitivity and Monte Carlo analysis",
		Long: `bizplan projects a monthly business plan from a handful of assumptions,
ranks the inputs that move its value most, and samples the range of outcomes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "run archive path (default $BIZPLAN_DB_PATH or ./bizplan.db)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional environment file")

	root.AddCommand(
		newProjectCmd(a),
		newTornadoCmd(a),
		newSimulateCmd(a),
		newReportCmd(a),
		newExampleCmd(a),
		newRunsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	settings, err := config.LoadSettings(a.envFile)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		settings.DBPath = a.dbPath
	}
	a.settings = settings
	a.logger = calculation.NewStdLogger(stderr, a.verbose)
	return nil
}

func (a *app) engine() *calculation.ProjectionEngine {
	pe := calculation.NewProjectionEngine()
	pe.SetLogger(a.logger)
	return pe
}

// loadPlan reads the plan file and fills Monte Carlo knobs from the environment.
func (a *app) loadPlan(path string) (*domain.Plan, error) {
	if path == "" {
		return nil, fmt.Errorf("an input plan is required (-i)")
	}
	plan, err := a.parser.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	plan.MonteCarlo = a.settings.ApplyTo(plan.MonteCarlo)
	a.logger.Debugf("loaded plan %q from %s", plan.Name, path)
	return plan, nil
}

func (a *app) openStore() (*store.Store, error) {
	s, err := store.Open(a.settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open run archive %s: %w", a.settings.DBPath, err)
	}
	return s, nil
}

// archive stores the report and prints its run ID.
func (a *app) archive(ctx context.Context, w io.Writer, kind calculation.RunKind, report *domain.Report) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.Save(ctx, string(kind), report.PlanName, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved run %s\n", id)
	return nil
}

// runOptions are the flags shared by the analysis commands.
type runOptions struct {
	input  string
	format string
	out    string
	save   bool
}

func (o *runOptions) bind(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "plan file (.yaml, .yml, .hjson or .json)")
	cmd.Flags().StringVarP(&o.format, "format", "f", defaultFormat,
		fmt.Sprintf("output format %v", output.AvailableFormatterNames()))
	cmd.Flags().StringVarP(&o.out, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&o.save, "save", false, "store the run in the archive")
	_ = cmd.MarkFlagRequired("input")
}

// execute runs kind on the plan and writes the formatted report.
func (a *app) execute(cmd *cobra.Command, kind calculation.RunKind, opts *runOptions, adjust func(*domain.Plan)) (*domain.Report, error) {
	plan, err := a.loadPlan(opts.input)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(plan)
	}

	report, err := a.engine().Run(cmd.Context(), kind, plan)
	if err != nil {
		return nil, err
	}

	if err := writeReport(cmd.OutOrStdout(), report, opts.format, opts.out); err != nil {
		return nil, err
	}
	if opts.save {
		if err := a.archive(cmd.Context(), cmd.ErrOrStderr(), kind, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func writeReport(stdout io.Writer, report *domain.Report, format, path string) error {
	if output.GetFormatterByName(format) == nil {
		return output.UnsupportedFormatError(format)
	}
	if path == "" {
		return output.Render(stdout, report, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := output.Render(f, report, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
