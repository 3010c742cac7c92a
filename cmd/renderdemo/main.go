package main

// Renders a sample report in every supported format:
//   go run ./cmd/renderdemo -out ./out

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"joel-backend/internal/charts"
	"joel-backend/internal/render"
)

const sampleMarkdown = `# Análise de Mercado — Clínicas de Estética

## Sumário Executivo

O setor de estética no Brasil segue em expansão, impulsionado pela
digitalização do agendamento e pela popularização de procedimentos
não invasivos.

## Panorama do Setor

| Segmento | Crescimento anual | Ticket médio |
|----------|-------------------|--------------|
| Harmonização facial | 18% | R$ 1.200 |
| Depilação a laser | 12% | R$ 350 |
| Skincare clínico | 9% | R$ 480 |

## Recomendações

- Priorizar pacotes recorrentes de skincare clínico.
- Investir em presença digital regional.
- Monitorar a regulamentação da ANVISA para novos procedimentos.

## Referências

- [Panorama Estética 2026](https://example.com/panorama-2026)
- [Relatório setorial SEBRAE](https://example.com/sebrae-estetica)
`

func main() {
	outDir := flag.String("out", "./out", "output directory for rendered documents")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	var renderCharts []render.Chart
	for _, c := range charts.Generate(sampleMarkdown) {
		renderCharts = append(renderCharts, render.Chart{
			Title:  c.Title,
			Kind:   c.Kind,
			Labels: c.Labels,
			Values: c.Values,
			PNG:    c.PNG,
		})
	}

	in := render.Input{
		Title:       "Análise de Mercado — Clínicas de Estética",
		Markdown:    sampleMarkdown,
		Area:        "estetica",
		ReportType:  "detalhado",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Charts:      renderCharts,
		References: []render.Reference{
			{Title: "Panorama Estética 2026", URL: "https://example.com/panorama-2026"},
			{Title: "Relatório setorial SEBRAE", URL: "https://example.com/sebrae-estetica"},
		},
	}

	for _, format := range render.Formats {
		data, err := render.Render(format, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s: %v\n", format, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, "sample_report."+format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s (%d bytes)\n", path, len(data))
	}
}
