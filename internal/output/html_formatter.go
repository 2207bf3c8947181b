package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLFormatter converts the Markdown report to a standalone HTML page with goldmark.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Parse(htmlTemplateSource))

var markdownToHTML = goldmark.New(goldmark.WithExtensions(extension.GFM))

type histogramBar struct {
	Label string
	Count int
	Width int
}

func (h HTMLFormatter) Format(report *domain.Report) ([]byte, error) {
	md, err := renderMarkdown(report)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := markdownToHTML.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	data := struct {
		Title     string
		Body      template.HTML
		Histogram []histogramBar
	}{
		Title: "Business Plan: " + report.PlanName,
		// goldmark escapes raw HTML unless WithUnsafe is set.
		Body:      template.HTML(body.String()),
		Histogram: histogramBars(report.MonteCarlo),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func histogramBars(mc *domain.MonteCarloSummary) []histogramBar {
	if mc == nil {
		return nil
	}
	peak := 0
	for _, b := range mc.Histogram {
		if b.Count > peak {
			peak = b.Count
		}
	}
	if peak == 0 {
		return nil
	}
	bars := make([]histogramBar, len(mc.Histogram))
	for i, b := range mc.Histogram {
		bars[i] = histogramBar{
			Label: FormatNumber(b.Lower, 0) + " to " + FormatNumber(b.Upper, 0),
			Count: b.Count,
			Width: b.Count * 100 / peak,
		}
	}
	return bars
}
