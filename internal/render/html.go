package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(ghtml.WithHardWraps()),
)

// Charts are inserted before the first conclusion-like section so they sit
// next to the findings rather than after the appendix.
var conclusionHeading = regexp.MustCompile(`<h[23][^>]*>[^<]*(?i:conclus|recomenda|consider)`)

// renderHTML converts the markdown and wraps it in a themed standalone page
// with the chart images inlined as base64.
func renderHTML(in Input) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownConverter.Convert([]byte(in.Markdown), &body); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}

	content := body.String()
	content = strings.ReplaceAll(content, "<table>", `<div class="table-wrapper"><table class="report-table">`)
	content = strings.ReplaceAll(content, "</table>", "</table></div>")
	chartList := append([]Chart(nil), in.Charts...)
	for _, fig := range in.Images {
		chartList = append(chartList, Chart{Title: fig.Title, Kind: "image", PNG: fig.PNG})
	}
	content = insertCharts(content, chartList)

	var page bytes.Buffer
	page.WriteString(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>` + xmlEscape(in.Title) + `</title>
<style>` + htmlStyle + `</style>
</head>
<body>
<header class="report-header">
<div class="accent-bar"></div>
<h1>` + xmlEscape(in.Title) + `</h1>
<p class="meta">`)
	if in.Area != "" {
		page.WriteString(xmlEscape("Área: "+in.Area) + " · ")
	}
	if in.ReportType != "" {
		page.WriteString(xmlEscape("Tipo: "+in.ReportType) + " · ")
	}
	page.WriteString(xmlEscape(longDate(in.GeneratedAt)))
	page.WriteString(`</p>
</header>
<main class="report-body">
`)
	page.WriteString(content)
	page.WriteString(`
</main>
<footer class="report-footer">
<div class="accent-bar"></div>
<p>` + xmlEscape(disclaimer) + `</p>
</footer>
</body>
</html>
`)
	return page.Bytes(), nil
}

func insertCharts(content string, chartList []Chart) string {
	if len(chartList) == 0 {
		return content
	}

	var section strings.Builder
	section.WriteString(`<div class="charts-section"><h2 class="charts-header">Visualizações</h2>`)
	for _, chart := range chartList {
		section.WriteString(`<figure class="chart-figure"><img class="chart-image" src="data:image/png;base64,`)
		section.WriteString(base64.StdEncoding.EncodeToString(chart.PNG))
		section.WriteString(`" alt="` + xmlEscape(chart.Title) + `"/><figcaption>` + xmlEscape(chart.Title) + `</figcaption></figure>`)
	}
	section.WriteString(`</div>`)

	if loc := conclusionHeading.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + section.String() + content[loc[0]:]
	}
	return content + section.String()
}

const htmlStyle = `
:root { color-scheme: light; }
body { margin: 0; font-family: "Segoe UI", Roboto, "Helvetica Neue", sans-serif; color: #1f2937; background: #f8fafc; line-height: 1.65; }
.accent-bar { height: 5px; background: linear-gradient(90deg, #1e3a5f, #2563eb, #7c3aed); }
.report-header { background: #ffffff; padding-bottom: 1.5rem; border-bottom: 1px solid #e5e7eb; }
.report-header h1 { margin: 1.5rem 2.5rem 0.25rem; color: #1e3a5f; font-size: 1.9rem; }
.report-header .meta { margin: 0 2.5rem; color: #6b7280; font-size: 0.9rem; }
.report-body { max-width: 880px; margin: 2rem auto; padding: 2.5rem 3rem; background: #ffffff; border: 1px solid #e5e7eb; border-radius: 8px; }
.report-body h1 { color: #1e3a5f; border-bottom: 2px solid #2563eb; padding-bottom: 0.3rem; }
.report-body h2 { color: #2563eb; margin-top: 2rem; }
.report-body h3 { color: #7c3aed; }
.report-body blockquote { margin: 1rem 0; padding: 0.5rem 1.2rem; border-left: 4px solid #2563eb; background: #f0f4ff; color: #6b7280; font-style: italic; }
.report-body a { color: #2563eb; }
.report-body code { color: #7c3aed; background: #f3f4f6; padding: 0.1rem 0.35rem; border-radius: 4px; font-size: 0.9em; }
.table-wrapper { overflow-x: auto; margin: 1.25rem 0; }
.report-table { border-collapse: collapse; width: 100%; font-size: 0.92rem; }
.report-table th { background: #1e3a5f; color: #ffffff; padding: 0.55rem 0.8rem; text-align: left; }
.report-table td { padding: 0.5rem 0.8rem; border: 1px solid #e5e7eb; }
.report-table tr:nth-child(even) td { background: #f8fafc; }
.charts-section { margin: 2.5rem 0; }
.charts-header { color: #2563eb; }
.chart-figure { margin: 1.5rem 0; text-align: center; }
.chart-image { max-width: 100%; border: 1px solid #e5e7eb; border-radius: 6px; }
.chart-figure figcaption { color: #6b7280; font-size: 0.85rem; font-style: italic; margin-top: 0.4rem; }
.report-footer { max-width: 880px; margin: 0 auto 3rem; }
.report-footer p { color: #6b7280; font-size: 0.8rem; font-style: italic; padding: 1rem 0.5rem 0; }
`
