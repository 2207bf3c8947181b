package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rpgo/bizplan/internal/api"
	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/config"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/rpgo/bizplan/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	yamlPlan  = "../testdata/plan.yaml"
	hjsonPlan = "../testdata/plan.hjson"
)

func loadPlan(t *testing.T, path string) *domain.Plan {
	t.Helper()
	plan, err := config.NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	return plan
}

func fullReport(t *testing.T) *domain.Report {
	t.Helper()
	report, err := calculation.NewProjectionEngine().Run(context.Background(), calculation.RunReport, loadPlan(t, yamlPlan))
	require.NoError(t, err)
	return report
}

func TestEndToEndReport(t *testing.T) {
	report := fullReport(t)

	assert.Equal(t, "Harbour Coffee Roasters", report.PlanName)
	require.NotNil(t, report.Baseline)
	require.Len(t, report.Baseline.Periods, 36)
	assert.Equal(t, "2026-01", report.Baseline.Periods[0].Label)
	assert.Len(t, report.Scenarios, 2)
	assert.NotNil(t, report.Comparison)

	// Debt service runs through every period of a 48 month loan.
	for _, p := range report.Baseline.Periods {
		assert.True(t, p.DebtService.IsPositive(), "period %d has no debt service", p.Period)
	}

	require.Len(t, report.Sensitivity, 5)
	for i := 1; i < len(report.Sensitivity); i++ {
		assert.True(t, report.Sensitivity[i-1].Swing.GreaterThanOrEqual(report.Sensitivity[i].Swing))
	}

	mc := report.MonteCarlo
	require.NotNil(t, mc)
	assert.Equal(t, 300, mc.Draws)
	assert.True(t, mc.Percentiles.P5.LessThanOrEqual(mc.Percentiles.P50))
	assert.True(t, mc.Percentiles.P50.LessThanOrEqual(mc.Percentiles.P95))
	assert.True(t, !mc.ProbabilityLoss.IsNegative() && mc.ProbabilityLoss.LessThanOrEqual(decimal.NewFromInt(1)))
}

func TestYAMLAndHJSONPlansAgree(t *testing.T) {
	engine := calculation.NewProjectionEngine()
	fromYAML := engine.Project(loadPlan(t, yamlPlan).Assumptions)
	fromHJSON := engine.Project(loadPlan(t, hjsonPlan).Assumptions)

	assert.True(t, fromYAML.NPV.Equal(fromHJSON.NPV), "yaml %s hjson %s", fromYAML.NPV, fromHJSON.NPV)
	assert.True(t, fromYAML.FinalCash.Equal(fromHJSON.FinalCash))
}

func TestMonteCarloReproducibleAcrossRuns(t *testing.T) {
	engine := calculation.NewProjectionEngine()
	ctx := context.Background()

	first, err := engine.Run(ctx, calculation.RunSimulate, loadPlan(t, yamlPlan))
	require.NoError(t, err)
	second, err := engine.Run(ctx, calculation.RunSimulate, loadPlan(t, yamlPlan))
	require.NoError(t, err)

	assert.True(t, first.MonteCarlo.Mean.Equal(second.MonteCarlo.Mean))
	assert.True(t, first.MonteCarlo.Percentiles.P50.Equal(second.MonteCarlo.Percentiles.P50))
}

func TestArchiveRoundTrip(t *testing.T) {
	runs, err := store.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer runs.Close()

	report := fullReport(t)
	ctx := context.Background()
	id, err := runs.Save(ctx, string(calculation.RunReport), report.PlanName, report)
	require.NoError(t, err)

	got, err := runs.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Report.Baseline.NPV.Equal(report.Baseline.NPV))
	assert.Len(t, got.Report.Sensitivity, len(report.Sensitivity))
	require.NotNil(t, got.Report.MonteCarlo)
	assert.Len(t, got.Report.MonteCarlo.Histogram, len(report.MonteCarlo.Histogram))
}

func TestHTTPMatchesEngine(t *testing.T) {
	srv := httptest.NewServer(api.NewServer(nil, config.Settings{}, nil, nil).Routes())
	defer srv.Close()

	plan := loadPlan(t, yamlPlan)
	body, err := json.Marshal(plan)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/project", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var remote domain.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&remote))

	local := calculation.NewProjectionEngine().Project(plan.Assumptions)
	assert.True(t, remote.Baseline.NPV.Equal(local.NPV), "remote %s local %s", remote.Baseline.NPV, local.NPV)
	assert.Len(t, remote.Scenarios, 2)
}
