package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginLR     = 22.0
	pdfMarginTop    = 28.0
	pdfMarginBottom = 22.0
	pdfPageWidth    = 210.0
	pdfContentWidth = pdfPageWidth - 2*pdfMarginLR
)

// renderPDF builds the investor-relations style PDF: gradient cover,
// summary page, running header/footer and the classified markdown body.
func renderPDF(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	pdf.SetTitle(in.Title, true)
	pdf.SetMargins(pdfMarginLR, pdfMarginTop, pdfMarginLR)
	pdf.SetAutoPageBreak(true, pdfMarginBottom+4)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() <= 1 {
			return
		}
		pdf.SetDrawColor(rgbBorder.r, rgbBorder.g, rgbBorder.b)
		pdf.SetLineWidth(0.2)
		pdf.Line(pdfMarginLR, pdfMarginTop-8, pdfPageWidth-pdfMarginLR, pdfMarginTop-8)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
		pdf.Text(pdfMarginLR, pdfMarginTop-10, tr("Joel - Análise Profissional de Documentos"))
		title := truncateRunes(in.Title, 50)
		pdf.Text(pdfPageWidth-pdfMarginLR-pdf.GetStringWidth(tr(title)), pdfMarginTop-10, tr(title))
	})
	pdf.SetFooterFunc(func() {
		if pdf.PageNo() <= 1 {
			return
		}
		y := 297 - pdfMarginBottom + 6
		pdf.SetDrawColor(rgbBorder.r, rgbBorder.g, rgbBorder.b)
		pdf.SetLineWidth(0.2)
		pdf.Line(pdfMarginLR, y, pdfPageWidth-pdfMarginLR, y)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
		pdf.Text(pdfMarginLR, y+5, tr("Confidencial - Gerado em "+shortDate(in.GeneratedAt)))
		pageLabel := fmt.Sprintf("Página %d", pdf.PageNo())
		pdf.Text(pdfPageWidth-pdfMarginLR-pdf.GetStringWidth(tr(pageLabel)), y+5, tr(pageLabel))
		pdf.SetFillColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
		pdf.Rect(pdfMarginLR, y+7, 12, 0.8, "F")
	})

	writePDFCover(pdf, tr, in)
	writePDFTOC(pdf, tr, in)
	writePDFBody(pdf, tr, in)
	writePDFCharts(pdf, tr, in)

	pdf.Ln(8)
	gradientBar(pdf, 0.8)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
	pdf.MultiCell(pdfContentWidth, 4, tr(disclaimer), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func gradientBar(pdf *fpdf.Fpdf, height float64) {
	y := pdf.GetY()
	pdf.LinearGradient(pdfMarginLR, y, pdfContentWidth, height,
		rgbPrimary.r, rgbPrimary.g, rgbPrimary.b,
		rgbSecondary.r, rgbSecondary.g, rgbSecondary.b,
		0, 0, 1, 0)
	pdf.SetY(y + height)
}

func writePDFCover(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	pdf.AddPage()

	pdf.LinearGradient(pdfMarginLR, 30, pdfContentWidth, 3,
		rgbPrimary.r, rgbPrimary.g, rgbPrimary.b,
		rgbSecondary.r, rgbSecondary.g, rgbSecondary.b, 0, 0, 1, 0)

	pdf.SetY(70)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
	pdf.MultiCell(pdfContentWidth, 13, tr(in.Title), "", "L", false)

	pdf.Ln(2)
	pdf.SetDrawColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
	pdf.SetLineWidth(1)
	pdf.Line(pdfMarginLR, pdf.GetY(), pdfMarginLR+60, pdf.GetY())

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
	if in.Area != "" {
		pdf.CellFormat(pdfContentWidth, 8, tr("Área: "+in.Area), "", 1, "L", false, 0, "")
	}
	if in.ReportType != "" {
		pdf.CellFormat(pdfContentWidth, 8, tr("Tipo: "+in.ReportType), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
	pdf.CellFormat(pdfContentWidth, 8, tr(longDate(in.GeneratedAt)), "", 1, "L", false, 0, "")

	pdf.SetY(262)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
	pdf.CellFormat(pdfContentWidth, 6, "Joel", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
	pdf.CellFormat(pdfContentWidth, 5, tr("Agente de Análise de Documentos"), "", 1, "L", false, 0, "")

	pdf.LinearGradient(pdfMarginLR, 280, pdfContentWidth, 3,
		rgbSecondary.r, rgbSecondary.g, rgbSecondary.b,
		rgbPrimary.r, rgbPrimary.g, rgbPrimary.b, 0, 0, 1, 0)
}

func writePDFTOC(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	entries := tocEntries(in.Markdown)
	if len(entries) == 0 {
		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
	pdf.CellFormat(pdfContentWidth, 10, tr("Sumário"), "", 1, "L", false, 0, "")
	gradientBar(pdf, 1)
	pdf.Ln(5)

	for _, e := range entries {
		if e.level == 2 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
			pdf.SetX(pdfMarginLR + 4)
		} else {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
			pdf.SetX(pdfMarginLR + 12)
		}
		pdf.CellFormat(pdfContentWidth-12, 6, tr(e.text), "", 1, "L", false, 0, "")
	}

	pdf.Ln(5)
	gradientBar(pdf, 0.8)
}

func writePDFBody(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	pdf.AddPage()

	number := 0
	for _, b := range parseBlocks(in.Markdown) {
		switch b.kind {
		case blockBlank:
			pdf.Ln(2)
			number = 0
		case blockHeading:
			writePDFHeading(pdf, tr, b)
		case blockRule:
			pdf.Ln(2)
			pdf.SetDrawColor(rgbBorder.r, rgbBorder.g, rgbBorder.b)
			pdf.SetLineWidth(0.3)
			pdf.Line(pdfMarginLR, pdf.GetY(), pdfPageWidth-pdfMarginLR, pdf.GetY())
			pdf.Ln(2)
		case blockQuote:
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
			y0 := pdf.GetY()
			pdf.SetX(pdfMarginLR + 8)
			for _, line := range b.lines {
				pdf.MultiCell(pdfContentWidth-12, 5, tr(cleanInline(line)), "", "L", false)
				pdf.SetX(pdfMarginLR + 8)
			}
			pdf.SetDrawColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
			pdf.SetLineWidth(0.8)
			pdf.Line(pdfMarginLR+4, y0, pdfMarginLR+4, pdf.GetY())
			pdf.Ln(2)
		case blockBullet:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(rgbText.r, rgbText.g, rgbText.b)
			pdf.SetX(pdfMarginLR + 6)
			pdf.MultiCell(pdfContentWidth-6, 5, tr("- "+cleanInline(b.text)), "", "L", false)
		case blockNumber:
			number++
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(rgbText.r, rgbText.g, rgbText.b)
			pdf.SetX(pdfMarginLR + 6)
			pdf.MultiCell(pdfContentWidth-6, 5, tr(fmt.Sprintf("%d. %s", number, cleanInline(b.text))), "", "L", false)
		case blockTable:
			writePDFTable(pdf, tr, b.rows)
		case blockParagraph:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(rgbText.r, rgbText.g, rgbText.b)
			pdf.MultiCell(pdfContentWidth, 5.5, tr(cleanInline(b.text)), "", "J", false)
			pdf.Ln(1)
		}
	}
}

func writePDFHeading(pdf *fpdf.Fpdf, tr func(string) string, b block) {
	switch b.level {
	case 1:
		pdf.Ln(5)
		gradientBar(pdf, 1)
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
	case 2:
		pdf.Ln(4)
		gradientBar(pdf, 0.7)
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
	case 3:
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(rgbAccent.r, rgbAccent.g, rgbAccent.b)
	default:
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(rgbText.r, rgbText.g, rgbText.b)
	}
	pdf.MultiCell(pdfContentWidth, 8, tr(b.text), "", "L", false)
}

func writePDFTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}

	widths := make([]float64, cols)
	total := pdfContentWidth * 0.95
	if cols == 1 {
		widths[0] = total
	} else {
		widths[0] = total * 0.35
		rest := (total - widths[0]) / float64(cols-1)
		for i := 1; i < cols; i++ {
			widths[i] = rest
		}
	}

	pdf.SetDrawColor(rgbBorder.r, rgbBorder.g, rgbBorder.b)
	pdf.SetLineWidth(0.2)
	for ridx, row := range rows {
		if ridx == 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetFillColor(rgbPrimary.r, rgbPrimary.g, rgbPrimary.b)
		} else {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(rgbText.r, rgbText.g, rgbText.b)
			if ridx%2 == 0 {
				pdf.SetFillColor(rgbBgAlt.r, rgbBgAlt.g, rgbBgAlt.b)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
		}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = cleanInline(row[c])
			}
			pdf.CellFormat(widths[c], 7, tr(cell), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func writePDFCharts(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	if len(in.Charts) == 0 && len(in.Images) == 0 {
		return
	}

	pdf.Ln(5)
	gradientBar(pdf, 1)
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(rgbSecondary.r, rgbSecondary.g, rgbSecondary.b)
	pdf.CellFormat(pdfContentWidth, 8, tr("Visualizações"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, chart := range in.Charts {
		name := fmt.Sprintf("chart-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(chart.PNG))
		w := pdfContentWidth * 0.85
		pdf.ImageOptions(name, pdfMarginLR+(pdfContentWidth-w)/2, -1, w, 0, true, opts, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
		pdf.CellFormat(pdfContentWidth, 6, tr(chart.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for i, fig := range in.Images {
		name := fmt.Sprintf("figure-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(fig.PNG))
		w := pdfContentWidth * 0.7
		pdf.ImageOptions(name, pdfMarginLR+(pdfContentWidth-w)/2, -1, w, 0, true, opts, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(rgbTextLight.r, rgbTextLight.g, rgbTextLight.b)
		pdf.CellFormat(pdfContentWidth, 6, tr(fig.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
