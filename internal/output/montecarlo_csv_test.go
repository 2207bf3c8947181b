package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonteCarloCSVReport_AllReports(t *testing.T) {
	report := buildTestReport(t)
	dir := filepath.Join(t.TempDir(), "exports")

	files, err := NewMonteCarloCSVReport(report).GenerateAllCSVReports(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestMonteCarloCSVReport_HistogramCountsSumToDraws(t *testing.T) {
	report := buildTestReport(t)
	var buf bytes.Buffer
	require.NoError(t, NewMonteCarloCSVReport(report).WriteHistogram(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(report.MonteCarlo.Histogram))

	total := 0
	for _, row := range rows[1:] {
		n, err := strconv.Atoi(row[3])
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, report.MonteCarlo.Draws, total)
}

func TestMonteCarloCSVReport_TornadoOnly(t *testing.T) {
	report := buildTestReport(t)
	report.MonteCarlo = nil

	m := NewMonteCarloCSVReport(report)
	var buf bytes.Buffer
	assert.Error(t, m.WriteSummary(&buf))

	files, err := m.GenerateAllCSVReports(t.TempDir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "tornado.csv", filepath.Base(files[0]))
}
