package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rpgo/bizplan/internal/domain"
)

// MonteCarloCSVReport generates CSV exports for a Monte Carlo run and,
// when present, the tornado that accompanied it.
type MonteCarloCSVReport struct {
	Summary     *domain.MonteCarloSummary
	Sensitivity []domain.SensitivityResult
}

// NewMonteCarloCSVReport builds the export set from a plan report.
func NewMonteCarloCSVReport(report *domain.Report) *MonteCarloCSVReport {
	return &MonteCarloCSVReport{Summary: report.MonteCarlo, Sensitivity: report.Sensitivity}
}

// WriteSummary writes aggregate statistics as Metric,Value,Description rows
func (m *MonteCarloCSVReport) WriteSummary(out io.Writer) error {
	if m.Summary == nil {
		return fmt.Errorf("no Monte Carlo results")
	}
	s := m.Summary
	writer := csv.NewWriter(out)

	if err := writer.Write([]string{"Metric", "Value", "Description"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	summaryData := [][]string{
		{"Metric", s.Metric, "Valuation metric sampled in each draw"},
		{"Draws", strconv.Itoa(s.Draws), "Total number of simulations run"},
		{"Seed", strconv.FormatInt(s.Seed, 10), "Base seed; worker w uses seed + w"},
		{"Mean", s.Mean.StringFixed(2), "Average across all draws"},
		{"StdDev", s.StdDev.StringFixed(2), "Sample standard deviation"},
		{"Min", s.Min.StringFixed(2), "Lowest draw"},
		{"Max", s.Max.StringFixed(2), "Highest draw"},
		{"ProbabilityLoss", s.ProbabilityLoss.StringFixed(4), "Share of draws below zero"},
	}
	for _, row := range summaryData {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write data row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePercentiles writes the P5/P50/P95 bands
func (m *MonteCarloCSVReport) WritePercentiles(out io.Writer) error {
	if m.Summary == nil {
		return fmt.Errorf("no Monte Carlo results")
	}
	p := m.Summary.Percentiles
	writer := csv.NewWriter(out)
	rows := [][]string{
		{"Percentile", "Value", "Interpretation"},
		{"5th", p.P5.StringFixed(2), "Worst 5% of draws fall below"},
		{"50th (Median)", p.P50.StringFixed(2), "Typical draw"},
		{"95th", p.P95.StringFixed(2), "Best 5% of draws rise above"},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write percentile row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteHistogram writes one row per histogram bin
func (m *MonteCarloCSVReport) WriteHistogram(out io.Writer) error {
	if m.Summary == nil {
		return fmt.Errorf("no Monte Carlo results")
	}
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"Bin", "Lower", "Upper", "Count"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, b := range m.Summary.Histogram {
		row := []string{strconv.Itoa(i + 1), b.Lower.StringFixed(2), b.Upper.StringFixed(2), strconv.Itoa(b.Count)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write histogram row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTornado writes the ranked sensitivity bars
func (m *MonteCarloCSVReport) WriteTornado(out io.Writer) error {
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"Rank", "Input", "DeltaPct", "Downside", "Upside", "Swing"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range m.Sensitivity {
		row := []string{strconv.Itoa(i + 1), string(r.Input), r.DeltaPct.String(), r.Downside.StringFixed(2), r.Upside.StringFixed(2), r.Swing.StringFixed(2)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write tornado row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// GenerateAllCSVReports creates all CSV reports in a single directory and
// returns the paths written.
func (m *MonteCarloCSVReport) GenerateAllCSVReports(outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	type export struct {
		name  string
		write func(io.Writer) error
	}
	var exports []export
	if m.Summary != nil {
		exports = append(exports,
			export{"monte_carlo_summary.csv", m.WriteSummary},
			export{"monte_carlo_percentiles.csv", m.WritePercentiles},
			export{"monte_carlo_histogram.csv", m.WriteHistogram},
		)
	}
	if len(m.Sensitivity) > 0 {
		exports = append(exports, export{"tornado.csv", m.WriteTornado})
	}

	var written []string
	for _, e := range exports {
		path := filepath.Join(outputDir, e.name)
		if err := writeCSVFile(path, e.write); err != nil {
			return written, fmt.Errorf("failed to generate %s: %w", e.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
