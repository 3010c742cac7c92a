// Package render turns report markdown into downloadable documents
// (PDF, DOCX, XLSX, TXT, HTML) with a shared corporate theme.
package render

import (
	"fmt"
	"time"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatXLSX = "xlsx"
	FormatTXT  = "txt"
	FormatHTML = "html"
)

// Formats lists every supported output format in generation order.
var Formats = []string{FormatPDF, FormatDOCX, FormatXLSX, FormatTXT, FormatHTML}

var contentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatTXT:  "text/plain; charset=utf-8",
	FormatHTML: "text/html; charset=utf-8",
}

// Chart is a rendered chart to embed in the documents.
type Chart struct {
	Title  string
	Kind   string
	Labels []string
	Values []float64
	PNG    []byte
}

// Figure is a standalone illustrative image placed after the charts in the
// PDF, DOCX and HTML outputs. Data-oriented formats ignore figures.
type Figure struct {
	Title string
	PNG   []byte
}

// Reference is a consulted source listed in the XLSX references sheet.
type Reference struct {
	Title   string
	URL     string
	Content string
}

// Input carries everything the format generators need. GeneratedAt is
// stamped into document metadata, so a fixed value makes output
// reproducible byte for byte.
type Input struct {
	Title       string
	Markdown    string
	Area        string
	ReportType  string
	GeneratedAt time.Time
	Charts      []Chart
	Images      []Figure
	References  []Reference
}

// Render produces the document bytes for one format.
func Render(format string, in Input) ([]byte, error) {
	switch format {
	case FormatPDF:
		return renderPDF(in)
	case FormatDOCX:
		return renderDOCX(in)
	case FormatXLSX:
		return renderXLSX(in)
	case FormatTXT:
		return renderTXT(in), nil
	case FormatHTML:
		return renderHTML(in)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// ContentType returns the MIME type served for a format, or "" if the
// format is unknown.
func ContentType(format string) string {
	return contentTypes[format]
}

// Supported reports whether format names a known output format.
func Supported(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

const disclaimer = "Este relatório foi gerado automaticamente por Joel, Agente de Análise de " +
	"Documentos. As informações e análises contidas neste documento são baseadas nos dados " +
	"fornecidos e em fontes públicas disponíveis. Recomenda-se validação independente antes " +
	"de decisões críticas."

var monthNamesPT = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func longDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNamesPT[t.Month()-1], t.Year())
}

func shortDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
