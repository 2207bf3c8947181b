package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rpgo/bizplan/internal/config"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliPlan = `name: "Food Truck"
currency: USD
assumptions:
  initial_revenue: 22000
  growth_rate: 2
  cogs_pct: 38
  staff_cost: 7000
  marketing_cost: 800
  investment: 45000
  tax_rate: 21
  horizon_months: 18
  discount_rate: 9
  asset_life_years: 5
  opening_cash: 15000
scenarios:
  - name: "Festival season"
    overrides:
      growth_rate: 4
sensitivity:
  - input: growth_rate
    delta_pct: 10
  - input: cogs_pct
    delta_pct: 10
monte_carlo:
  enabled: true
  draws: 80
  seed: 7
  workers: 2
`

// cliEnv isolates a test from the caller's environment and returns a working
// directory holding the plan file.
func cliEnv(t *testing.T) (dir, plan string) {
	t.Helper()
	dir = t.TempDir()
	for _, k := range []string{config.EnvAddr, config.EnvSeed, config.EnvDraws, config.EnvWorkers} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvDBPath, filepath.Join(dir, "runs.db"))
	plan = filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(plan, []byte(cliPlan), 0644))
	return dir, plan
}

func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProjectCommand(t *testing.T) {
	dir, plan := cliEnv(t)

	out, _, err := runCLI(t, dir, "project", "-i", plan)
	require.NoError(t, err)
	assert.Contains(t, out, "BUSINESS PLAN SUMMARY: Food Truck")
	assert.Contains(t, out, "Festival season")
	assert.NotContains(t, out, "Monte Carlo")
}

func TestProjectCommand_JSONToFile(t *testing.T) {
	dir, plan := cliEnv(t)
	dest := filepath.Join(dir, "out.json")

	out, _, err := runCLI(t, dir, "project", "-i", plan, "-f", "json", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "Food Truck", report.PlanName)
	require.NotNil(t, report.Baseline)
	assert.Len(t, report.Baseline.Periods, 18)
}

func TestProjectCommand_Errors(t *testing.T) {
	dir, plan := cliEnv(t)

	_, _, err := runCLI(t, dir, "project")
	assert.Error(t, err, "missing -i")

	_, _, err = runCLI(t, dir, "project", "-i", filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)

	_, _, err = runCLI(t, dir, "project", "-i", plan, "-f", "pdf")
	assert.Error(t, err)
}

func TestTornadoCommand(t *testing.T) {
	dir, plan := cliEnv(t)

	out, _, err := runCLI(t, dir, "tornado", "-i", plan)
	require.NoError(t, err)
	assert.Contains(t, out, "SENSITIVITY")
	assert.Contains(t, out, "growth_rate")

	_, _, err = runCLI(t, dir, "tornado", "-i", plan, "--delta", "0")
	assert.Error(t, err)
}

func TestTornadoCommand_DeltaOverridesPlan(t *testing.T) {
	dir, plan := cliEnv(t)

	out, _, err := runCLI(t, dir, "tornado", "-i", plan, "--delta", "20", "-f", "json")
	require.NoError(t, err)
	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Greater(t, len(report.Sensitivity), 2)
	for _, s := range report.Sensitivity {
		assert.Equal(t, "20", s.DeltaPct.String())
	}
}

func TestSimulateCommand(t *testing.T) {
	dir, plan := cliEnv(t)
	csvDir := filepath.Join(dir, "csv")

	out, _, err := runCLI(t, dir, "simulate", "-i", plan, "--draws", "40", "--seed", "3", "-f", "json", "--csv", csvDir)
	require.NoError(t, err)

	jsonEnd := strings.LastIndex(out, "}")
	require.Positive(t, jsonEnd)
	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out[:jsonEnd+1]), &report))
	require.NotNil(t, report.MonteCarlo)
	assert.Equal(t, 40, report.MonteCarlo.Draws)
	assert.Equal(t, int64(3), report.MonteCarlo.Seed)
	assert.Empty(t, report.Scenarios)

	assert.FileExists(t, filepath.Join(csvDir, "monte_carlo_summary.csv"))
	assert.FileExists(t, filepath.Join(csvDir, "monte_carlo_histogram.csv"))
}

func TestSimulateCommand_FlagLimits(t *testing.T) {
	dir, plan := cliEnv(t)

	_, _, err := runCLI(t, dir, "simulate", "-i", plan, "--draws", "200000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--draws")

	_, _, err = runCLI(t, dir, "simulate", "-i", plan, "--workers", "1000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workers")
}

func TestSimulateCommand_Deterministic(t *testing.T) {
	dir, plan := cliEnv(t)

	first, _, err := runCLI(t, dir, "simulate", "-i", plan, "-f", "console")
	require.NoError(t, err)
	second, _, err := runCLI(t, dir, "simulate", "-i", plan, "-f", "console")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReportCommand_All(t *testing.T) {
	dir, plan := cliEnv(t)
	reportDir := filepath.Join(dir, "reports")

	out, _, err := runCLI(t, dir, "report", "-i", plan, "-f", "all", "-d", reportDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "monte_carlo_summary.csv")
	assert.Contains(t, names, "tornado.csv")
	assert.Equal(t, len(names), strings.Count(out, "Wrote "))

	var html bool
	for _, n := range names {
		if strings.HasSuffix(n, ".html") {
			html = true
		}
	}
	assert.True(t, html, "expected an HTML report in %v", names)
}

func TestReportCommand_MarkdownToStdout(t *testing.T) {
	dir, plan := cliEnv(t)

	out, _, err := runCLI(t, dir, "report", "-i", plan)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#"), "markdown report should start with a heading")
	assert.Contains(t, out, "Food Truck")
}

func TestExampleCommand(t *testing.T) {
	dir, _ := cliEnv(t)
	dest := filepath.Join(dir, "example.yaml")

	out, _, err := runCLI(t, dir, "example", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)

	plan, err := config.NewInputParser().LoadFromFile(dest)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Scenarios)

	_, _, err = runCLI(t, dir, "project", "-i", dest)
	assert.NoError(t, err)
}

var runIDPattern = regexp.MustCompile(`Saved run ([0-9a-f-]{36})`)

func TestRunsCommands(t *testing.T) {
	dir, plan := cliEnv(t)

	out, _, err := runCLI(t, dir, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs archived.")

	_, stderr, err := runCLI(t, dir, "project", "-i", plan, "--save")
	require.NoError(t, err)
	m := runIDPattern.FindStringSubmatch(stderr)
	require.Len(t, m, 2, stderr)
	id := m[1]

	out, _, err = runCLI(t, dir, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "project")
	assert.Contains(t, out, "Food Truck")

	out, _, err = runCLI(t, dir, "runs", "show", id, "-f", "console")
	require.NoError(t, err)
	assert.Contains(t, out, "BUSINESS PLAN SUMMARY: Food Truck")

	_, _, err = runCLI(t, dir, "runs", "show", "missing")
	assert.Error(t, err)
}

func TestDBFlagOverridesEnvironment(t *testing.T) {
	dir, plan := cliEnv(t)
	db := filepath.Join(dir, "other.db")

	_, _, err := runCLI(t, dir, "--db", db, "project", "-i", plan, "--save")
	require.NoError(t, err)
	assert.FileExists(t, db)
	assert.NoFileExists(t, filepath.Join(dir, "runs.db"))
}

func TestVerboseLogsToStderr(t *testing.T) {
	dir, plan := cliEnv(t)

	out, stderr, err := runCLI(t, dir, "--verbose", "project", "-i", plan)
	require.NoError(t, err)
	assert.Contains(t, stderr, "DEBUG loaded plan")
	assert.NotContains(t, out, "DEBUG")
}
