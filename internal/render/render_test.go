package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

const sampleMarkdown = `# Análise Financeira

## Resumo Executivo

O documento apresenta **resultados sólidos** no período.

| Indicador | Valor |
|-----------|-------|
| Receita | 120 |
| Margem | 35 |

## Recomendações

- Ampliar a operação digital
- Reduzir custos fixos

> Observação: dados preliminares.

Fonte: [Relatório anual](https://example.com/anual)

## Conclusão

1. Resultado positivo
2. Riscos controlados
`

func testInput(markdown string) Input {
	return Input{
		Title:       "Análise de Contrato",
		Markdown:    markdown,
		Area:        "financeiro",
		ReportType:  "analitico",
		GeneratedAt: testTime,
	}
}

func testChart() Chart {
	return Chart{
		Title:  "Receita",
		Kind:   "donut",
		Labels: []string{"Varejo", "Atacado"},
		Values: []float64{70, 30},
		PNG: []byte{
			0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
			0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
			0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
			0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
			0x00, 0x00, 0x00, 0x0d, 'I', 'D', 'A', 'T',
			0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00, 0x05, 0x00, 0x01,
			0x0d, 0x0a, 0x2d, 0xb4,
			0x00, 0x00, 0x00, 0x00, 'I', 'E', 'N', 'D',
			0xae, 0x42, 0x60, 0x82,
		},
	}
}

func readZipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	entries := map[string][]byte{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		entries[f.Name] = content
	}
	return entries
}

func assertWellFormedXML(t *testing.T, name string, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well formed: %v", name, err)
		}
	}
}

func TestParseBlocks(t *testing.T) {
	blocks := parseBlocks(sampleMarkdown)

	var headings, tables, bullets, numbers, quotes int
	for _, b := range blocks {
		switch b.kind {
		case blockHeading:
			headings++
		case blockTable:
			tables++
			if len(b.rows) != 3 {
				t.Errorf("table rows = %d, want 3 (separator removed)", len(b.rows))
			}
		case blockBullet:
			bullets++
		case blockNumber:
			numbers++
		case blockQuote:
			quotes++
			if len(b.lines) != 1 || !strings.Contains(b.lines[0], "dados preliminares") {
				t.Errorf("quote lines = %v", b.lines)
			}
		}
	}
	if headings != 4 {
		t.Errorf("headings = %d, want 4", headings)
	}
	if tables != 1 || bullets != 2 || numbers != 2 || quotes != 1 {
		t.Errorf("tables=%d bullets=%d numbers=%d quotes=%d", tables, bullets, numbers, quotes)
	}
}

func TestCleanInline(t *testing.T) {
	got := cleanInline("**Resultado** com [link](https://x.test) e `código`")
	want := "Resultado com link e código"
	if got != want {
		t.Errorf("cleanInline = %q, want %q", got, want)
	}
}

func TestParseSpans(t *testing.T) {
	spans := parseSpans("Veja **isto** e [aqui](https://x.test).")
	if len(spans) != 5 {
		t.Fatalf("spans = %d, want 5: %+v", len(spans), spans)
	}
	if !spans[1].bold || spans[1].text != "isto" {
		t.Errorf("bold span = %+v", spans[1])
	}
	if spans[3].href != "https://x.test" || spans[3].text != "aqui" {
		t.Errorf("link span = %+v", spans[3])
	}
}

func TestExtractReferences(t *testing.T) {
	refs := extractReferences(sampleMarkdown + "\nVer https://example.com/extra.\n")
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2: %+v", len(refs), refs)
	}
	if refs[0].Title != "Relatório anual" || refs[0].URL != "https://example.com/anual" {
		t.Errorf("first ref = %+v", refs[0])
	}
	if refs[1].URL != "https://example.com/extra" {
		t.Errorf("bare url ref = %+v", refs[1])
	}
}

func TestRenderTXT(t *testing.T) {
	out := string(renderTXT(testInput(sampleMarkdown)))

	if !strings.Contains(out, "ANÁLISE DE CONTRATO") {
		t.Error("missing uppercased title banner")
	}
	if !strings.Contains(out, "Resumo Executivo") {
		t.Error("missing section heading")
	}
	if !strings.Contains(out, "│ Receita") {
		t.Error("missing boxed table row")
	}
	if !strings.Contains(out, "-  Ampliar a operação digital") {
		t.Error("missing bullet item")
	}
	if strings.Contains(out, "**") {
		t.Error("markdown emphasis leaked into plain text")
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := renderHTML(testInput(sampleMarkdown))
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	if !strings.Contains(html, `<div class="table-wrapper"><table class="report-table">`) {
		t.Error("table not wrapped")
	}
	if !strings.Contains(html, "#1e3a5f") {
		t.Error("theme color missing from stylesheet")
	}
	if !strings.Contains(html, "Agente de Análise") {
		t.Error("footer disclaimer missing")
	}
}

func TestRenderHTMLInsertsChartsBeforeConclusion(t *testing.T) {
	in := testInput(sampleMarkdown)
	in.Charts = []Chart{testChart()}
	out, err := renderHTML(in)
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	chartsIdx := strings.Index(html, "charts-section")
	conclusionIdx := strings.Index(html, ">Conclusão<")
	if chartsIdx < 0 {
		t.Fatal("charts section missing")
	}
	if conclusionIdx < 0 || chartsIdx > conclusionIdx {
		t.Errorf("charts at %d not before conclusion heading at %d", chartsIdx, conclusionIdx)
	}
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Error("chart image not inlined")
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := renderPDF(testInput(sampleMarkdown))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if len(out) < 2000 {
		t.Errorf("pdf suspiciously small: %d bytes", len(out))
	}
}

func TestRenderPDFDeterministic(t *testing.T) {
	in := testInput(sampleMarkdown)
	a, err := renderPDF(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := renderPDF(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same input produced different PDF bytes")
	}
}

func TestRenderDOCX(t *testing.T) {
	in := testInput(sampleMarkdown)
	in.Charts = []Chart{testChart()}
	out, err := renderDOCX(in)
	if err != nil {
		t.Fatal(err)
	}

	entries := readZipEntries(t, out)
	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "word/document.xml",
		"word/styles.xml", "word/header1.xml", "word/footer1.xml",
		"word/_rels/document.xml.rels", "word/media/chart1.png",
	} {
		if _, ok := entries[name]; !ok {
			t.Errorf("missing package part %s", name)
		}
	}

	doc := string(entries["word/document.xml"])
	if !strings.Contains(doc, "Análise de Contrato") {
		t.Error("title missing from document")
	}
	if !strings.Contains(doc, "Sumário") {
		t.Error("TOC missing")
	}
	if !strings.Contains(doc, `r:embed="rIdImg1"`) {
		t.Error("chart image not referenced")
	}
	if !strings.Contains(string(entries["word/footer1.xml"]), "PAGE") {
		t.Error("footer PAGE field missing")
	}
	assertWellFormedXML(t, "word/document.xml", entries["word/document.xml"])
	assertWellFormedXML(t, "word/styles.xml", entries["word/styles.xml"])
}

func TestRenderDOCXDeterministic(t *testing.T) {
	in := testInput(sampleMarkdown)
	a, err := renderDOCX(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := renderDOCX(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same input produced different DOCX bytes")
	}
}

func TestRenderXLSX(t *testing.T) {
	in := testInput(sampleMarkdown)
	in.Charts = []Chart{testChart()}
	out, err := renderXLSX(in)
	if err != nil {
		t.Fatal(err)
	}

	entries := readZipEntries(t, out)
	sheet1 := string(entries["xl/worksheets/sheet1.xml"])
	if !strings.Contains(sheet1, "Análise de Contrato") {
		t.Error("report sheet missing title")
	}
	if !strings.Contains(sheet1, "<v>120</v>") {
		t.Error("numeric table cell not written as number")
	}

	sheet2 := string(entries["xl/worksheets/sheet2.xml"])
	if !strings.Contains(sheet2, "https://example.com/anual") {
		t.Error("reference URL missing from references sheet")
	}

	sheet3 := string(entries["xl/worksheets/sheet3.xml"])
	if !strings.Contains(sheet3, "Varejo") || !strings.Contains(sheet3, "<v>70</v>") {
		t.Error("chart dataset missing from charts sheet")
	}

	workbook := string(entries["xl/workbook.xml"])
	for _, name := range []string{"Relatório", "Referências", "Gráficos"} {
		if !strings.Contains(workbook, name) {
			t.Errorf("workbook missing sheet %s", name)
		}
	}
	assertWellFormedXML(t, "sheet1", entries["xl/worksheets/sheet1.xml"])
	assertWellFormedXML(t, "styles", entries["xl/styles.xml"])
}

func TestRenderEmptyMarkdown(t *testing.T) {
	in := testInput("")
	for _, format := range Formats {
		out, err := Render(format, in)
		if err != nil {
			t.Errorf("format %s: %v", format, err)
			continue
		}
		if len(out) == 0 {
			t.Errorf("format %s produced empty document", format)
		}
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if _, err := Render("odt", testInput("x")); err == nil {
		t.Error("expected error for unsupported format")
	}
	if Supported("odt") {
		t.Error("odt should not be supported")
	}
	if ContentType(FormatPDF) != "application/pdf" {
		t.Error("wrong content type for pdf")
	}
}
