// Package charts detects numeric datasets in report markdown and renders
// them as PNG charts for embedding in the generated documents.
package charts

import (
	"fmt"

	"joel-backend/internal/shared/telemetry"
)

const maxCharts = 4

// Chart is a rendered chart plus the dataset behind it. The dataset is kept
// so renderers that cannot embed images (XLSX) can emit it as a table.
type Chart struct {
	Title  string
	Kind   string // "donut" or "bar"
	Labels []string
	Values []float64
	PNG    []byte
}

// Generate scans the markdown for numeric tables and lists and renders up to
// four charts. A failure rendering one chart skips that chart only.
func Generate(markdown string) []Chart {
	var charts []Chart
	for _, ds := range extractDatasets(markdown) {
		if len(charts) >= maxCharts {
			break
		}
		chart, err := chartFromDataset(ds)
		if err != nil {
			telemetry.Error("charts.render_failed", map[string]any{"error": err.Error()})
			continue
		}
		if chart != nil {
			charts = append(charts, *chart)
		}
	}
	return charts
}

func chartFromDataset(ds dataset) (*Chart, error) {
	switch ds.kind {
	case datasetTable:
		return chartFromTable(ds)
	case datasetList:
		return chartFromList(ds)
	}
	return nil, nil
}

func chartFromTable(ds dataset) (*Chart, error) {
	if len(ds.rows) < 2 || len(ds.headers) < 2 {
		return nil, nil
	}

	var labels []string
	var values []float64
	allZero := true
	for _, row := range ds.rows {
		if len(row) < 2 {
			continue
		}
		labels = append(labels, row[0])
		v, ok := parseNumber(row[1])
		if !ok {
			v = 0
		}
		if v != 0 {
			allZero = false
		}
		values = append(values, v)
	}
	if len(values) == 0 || allZero {
		return nil, nil
	}

	title := ds.headers[1]
	if len(labels) <= 6 && allNonNegative(values) {
		return renderChart(title, "donut", labels, values)
	}
	if len(labels) > 12 {
		labels, values = labels[:12], values[:12]
	}
	return renderChart(title, "bar", labels, values)
}

func chartFromList(ds dataset) (*Chart, error) {
	if len(ds.items) < 2 {
		return nil, nil
	}

	labels := make([]string, len(ds.items))
	values := make([]float64, len(ds.items))
	percent := false
	for i, item := range ds.items {
		labels[i] = item.label
		values[i] = item.value
		if item.percent {
			percent = true
		}
	}

	if percent && len(ds.items) <= 8 && allNonNegative(values) {
		return renderChart("Distribuição", "donut", labels, values)
	}
	return renderChart("Comparativo", "bar", labels, values)
}

func renderChart(title, kind string, labels []string, values []float64) (*Chart, error) {
	var png []byte
	var err error
	switch kind {
	case "donut":
		png, err = drawDonut(title, labels, values)
	default:
		png, err = drawBars(title, labels, values)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s %q: %w", kind, title, err)
	}
	return &Chart{Title: title, Kind: kind, Labels: labels, Values: values, PNG: png}, nil
}

func allNonNegative(values []float64) bool {
	for _, v := range values {
		if v < 0 {
			return false
		}
	}
	return true
}
