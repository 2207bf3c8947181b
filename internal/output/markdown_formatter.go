package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed templates/report.md.tmpl
var markdownTemplateSource string

// MarkdownFormatter renders the report as GitHub-flavoured Markdown.
type MarkdownFormatter struct{}

func (m MarkdownFormatter) Name() string { return "markdown" }

func (m MarkdownFormatter) Format(report *domain.Report) ([]byte, error) {
	return renderMarkdown(report)
}

// markdownView is the template data: the report plus derived rows.
type markdownView struct {
	*domain.Report
	Results         []namedResult
	AssumptionLines []string
	Recommendation  Recommendation
}

func renderMarkdown(report *domain.Report) ([]byte, error) {
	cur := report.Currency
	moneyFn := func(d decimal.Decimal) string { return FormatMoney(d, cur) }
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"money":    moneyFn,
		"pct":      FormatPercentage,
		"fraction": FormatFraction,
		"period":   FormatPeriod,
		"runway":   formatRunway,
		"optpct":   func(v decimal.NullDecimal) string { return FormatOptional(v, FormatPercentage) },
		"optratio": func(v decimal.NullDecimal) string { return FormatOptional(v, FormatRatio) },
		"optmoney": func(v decimal.NullDecimal) string { return FormatOptional(v, moneyFn) },
	}).Parse(markdownTemplateSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown template: %w", err)
	}

	view := markdownView{
		Report:          report,
		Results:         allResults(report),
		AssumptionLines: AssumptionLines(report),
		Recommendation:  AnalyzeScenarios(report),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// TerminalFormatter renders the Markdown report for a terminal with glamour.
// The "notty" style keeps the output free of ANSI escapes.
type TerminalFormatter struct {
	Style    string
	WordWrap int
}

func (t TerminalFormatter) Name() string { return "terminal" }

func (t TerminalFormatter) Format(report *domain.Report) ([]byte, error) {
	md, err := renderMarkdown(report)
	if err != nil {
		return nil, err
	}
	style := t.Style
	if style == "" {
		style = "notty"
	}
	wrap := t.WordWrap
	if wrap == 0 {
		wrap = 100
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := r.Render(string(md))
	if err != nil {
		return nil, fmt.Errorf("failed to render terminal report: %w", err)
	}
	return []byte(out), nil
}
