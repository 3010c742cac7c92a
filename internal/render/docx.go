package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
)

const emuTargetWidth = 5029200 // 5.5in

// renderDOCX assembles the WordprocessingML package from scratch: styles,
// first-page cover, running header/footer with a PAGE field, the classified
// markdown body and the chart images under word/media.
func renderDOCX(in Input) ([]byte, error) {
	// Figures ride the same media/relationship plumbing as charts.
	if len(in.Images) > 0 {
		merged := append([]Chart(nil), in.Charts...)
		for _, fig := range in.Images {
			merged = append(merged, Chart{Title: fig.Title, Kind: "image", PNG: fig.PNG})
		}
		in.Charts = merged
		in.Images = nil
	}

	doc, err := docxDocumentXML(in)
	if err != nil {
		return nil, err
	}

	parts := []ooxmlPart{
		{"[Content_Types].xml", docxContentTypes(len(in.Charts))},
		{"_rels/.rels", packageRels()},
		{"word/_rels/document.xml.rels", docxDocumentRels(len(in.Charts))},
		{"word/styles.xml", docxStyles()},
		{"word/header1.xml", docxHeader(in.Title)},
		{"word/footer1.xml", docxFooter()},
		{"docProps/core.xml", corePropsXML(in.Title, in.GeneratedAt)},
		{"word/document.xml", doc},
	}
	for i, chart := range in.Charts {
		parts = append(parts, ooxmlPart{fmt.Sprintf("word/media/chart%d.png", i+1), chart.PNG})
	}

	return writeOOXML(parts, in.GeneratedAt)
}

func docxContentTypes(chartCount int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	if chartCount > 0 {
		b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	b.WriteString(`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func packageRels() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`</Relationships>`)
}

func docxDocumentRels(chartCount int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	b.WriteString(`<Relationship Id="rIdHdr" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
	b.WriteString(`<Relationship Id="rIdFtr" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`)
	for i := 0; i < chartCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rIdImg%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/chart%d.png"/>`, i+1, i+1)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func docxStyles() []byte {
	heading := func(id string, sz int, color string, before int) string {
		return `<w:style w:type="paragraph" w:styleId="` + id + `">` +
			`<w:name w:val="` + id + `"/><w:basedOn w:val="Normal"/>` +
			fmt.Sprintf(`<w:pPr><w:spacing w:before="%d" w:after="160"/></w:pPr>`, before) +
			fmt.Sprintf(`<w:rPr><w:b/><w:color w:val="%s"/><w:sz w:val="%d"/></w:rPr>`, color, sz) +
			`</w:style>`
	}
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
		`<w:pPr><w:spacing w:after="120" w:line="276" w:lineRule="auto"/></w:pPr>` +
		`<w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:color w:val="` + themeText + `"/><w:sz w:val="22"/></w:rPr></w:style>` +
		heading("Heading1", 44, themePrimary, 360) +
		heading("Heading2", 32, themeSecondary, 280) +
		heading("Heading3", 26, themeAccent, 240) +
		`</w:styles>`)
}

type runStyle struct {
	bold      bool
	italic    bool
	underline bool
	size      int // half points, 0 keeps the style default
	color     string
	mono      bool
}

func (s runStyle) props() string {
	var b strings.Builder
	b.WriteString("<w:rPr>")
	if s.mono {
		b.WriteString(`<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`)
	}
	if s.bold {
		b.WriteString("<w:b/>")
	}
	if s.italic {
		b.WriteString("<w:i/>")
	}
	if s.underline {
		b.WriteString(`<w:u w:val="single"/>`)
	}
	if s.color != "" {
		b.WriteString(`<w:color w:val="` + s.color + `"/>`)
	}
	if s.size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, s.size)
	}
	b.WriteString("</w:rPr>")
	return b.String()
}

func docxRun(text string, style runStyle) string {
	return `<w:r>` + style.props() + `<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r>`
}

func docxPara(pPr string, runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if pPr != "" {
		b.WriteString("<w:pPr>" + pPr + "</w:pPr>")
	}
	for _, r := range runs {
		b.WriteString(r)
	}
	b.WriteString("</w:p>")
	return b.String()
}

const docxPageBreak = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`

func docxHeader(title string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		docxPara(`<w:jc w:val="right"/>`,
			docxRun("Joel - "+truncateRunes(title, 40), runStyle{size: 16, color: themeTextLight})) +
		`</w:hdr>`)
}

func docxFooter() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
		docxRun("Confidencial - Joel Análise de Documentos - Página ", runStyle{size: 16, color: themeTextLight}) +
		`<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>` +
		`</w:p></w:ftr>`)
}

func docxDocumentXML(in Input) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`)

	writeDocxCover(&b, in)
	writeDocxTOC(&b, in.Markdown)
	writeDocxBody(&b, in.Markdown)
	if err := writeDocxCharts(&b, in.Charts); err != nil {
		return nil, err
	}

	b.WriteString(docxPara(""))
	b.WriteString(docxPara("", docxRun(disclaimer, runStyle{italic: true, size: 16, color: themeTextLight})))

	b.WriteString(`<w:sectPr><w:headerReference w:type="default" r:id="rIdHdr"/><w:footerReference w:type="default" r:id="rIdFtr"/>` +
		`<w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1417" w:right="1247" w:bottom="1247" w:left="1247"/>` +
		`<w:titlePg/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return []byte(b.String()), nil
}

func writeDocxCover(b *strings.Builder, in Input) {
	for i := 0; i < 4; i++ {
		b.WriteString(docxPara(""))
	}
	b.WriteString(docxPara("", docxRun(in.Title, runStyle{bold: true, size: 56, color: themePrimary})))
	b.WriteString(docxPara(`<w:pBdr><w:bottom w:val="single" w:sz="24" w:color="` + themeSecondary + `"/></w:pBdr>`))
	b.WriteString(docxPara(""))

	meta := runStyle{size: 22, color: themeTextLight}
	if in.Area != "" {
		b.WriteString(docxPara("", docxRun("Área: "+in.Area, meta)))
	}
	if in.ReportType != "" {
		b.WriteString(docxPara("", docxRun("Tipo: "+in.ReportType, meta)))
	}
	b.WriteString(docxPara("", docxRun("Data: "+shortDate(in.GeneratedAt), meta)))

	b.WriteString(docxPara(""))
	b.WriteString(docxPara("", docxRun("Joel", runStyle{bold: true, size: 32, color: themePrimary})))
	b.WriteString(docxPara("", docxRun("Agente de Análise de Documentos", runStyle{size: 18, color: themeTextLight})))
	b.WriteString(docxPageBreak)
}

func writeDocxTOC(b *strings.Builder, markdown string) {
	entries := tocEntries(markdown)
	if len(entries) == 0 {
		return
	}

	b.WriteString(docxPara(`<w:pStyle w:val="Heading1"/>`, docxRun("Sumário", runStyle{})))
	for _, e := range entries {
		if e.level == 2 {
			b.WriteString(docxPara(`<w:ind w:left="240"/>`,
				docxRun(e.text, runStyle{bold: true, size: 20, color: themePrimary})))
		} else {
			b.WriteString(docxPara(`<w:ind w:left="600"/>`,
				docxRun(e.text, runStyle{size: 18, color: themeTextLight})))
		}
	}
	b.WriteString(docxPageBreak)
}

func writeDocxBody(b *strings.Builder, markdown string) {
	number := 0
	for _, blk := range parseBlocks(markdown) {
		switch blk.kind {
		case blockBlank:
			number = 0
		case blockHeading:
			switch blk.level {
			case 1:
				b.WriteString(docxPara(`<w:pStyle w:val="Heading1"/>`, docxRun(blk.text, runStyle{})))
			case 2:
				b.WriteString(docxPara(`<w:pStyle w:val="Heading2"/>`, docxRun(blk.text, runStyle{})))
			case 3:
				b.WriteString(docxPara(`<w:pStyle w:val="Heading3"/>`, docxRun(blk.text, runStyle{})))
			default:
				b.WriteString(docxPara("", docxRun(blk.text, runStyle{bold: true})))
			}
		case blockRule:
			b.WriteString(docxPara(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:color="` + themeBorder + `"/></w:pBdr>`))
		case blockQuote:
			for _, line := range blk.lines {
				b.WriteString(docxPara(`<w:ind w:left="850"/>`,
					docxRun(cleanInline(line), runStyle{italic: true, color: themeTextLight})))
			}
		case blockBullet:
			b.WriteString(docxPara(`<w:ind w:left="420" w:hanging="210"/>`,
				append([]string{docxRun("- ", runStyle{})}, docxSpanRuns(blk.text)...)...))
		case blockNumber:
			number++
			b.WriteString(docxPara(`<w:ind w:left="420" w:hanging="210"/>`,
				append([]string{docxRun(fmt.Sprintf("%d. ", number), runStyle{})}, docxSpanRuns(blk.text)...)...))
		case blockTable:
			writeDocxTable(b, blk.rows)
		case blockParagraph:
			b.WriteString(docxPara("", docxSpanRuns(blk.text)...))
		}
	}
}

func docxSpanRuns(text string) []string {
	var runs []string
	for _, s := range parseSpans(text) {
		style := runStyle{bold: s.bold, italic: s.italic}
		if s.href != "" {
			style.color = themeSecondary
			style.underline = true
		}
		if s.code {
			style.mono = true
			style.size = 18
			style.color = themeAccent
		}
		runs = append(runs, docxRun(s.text, style))
	}
	return runs
}

func writeDocxTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	border := `<w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`<w:left w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`<w:bottom w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`<w:right w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`<w:insideH w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`<w:insideV w:val="single" w:sz="4" w:color="` + themeBorder + `"/>` +
		`</w:tblBorders>`
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>` + border + `</w:tblPr>`)

	for ridx, row := range rows {
		b.WriteString("<w:tr>")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = cleanInline(row[c])
			}
			var shading string
			style := runStyle{size: 18}
			switch {
			case ridx == 0:
				shading = `<w:shd w:val="clear" w:fill="` + themePrimary + `"/>`
				style.bold = true
				style.color = "FFFFFF"
			case ridx%2 == 0:
				shading = `<w:shd w:val="clear" w:fill="` + themeBgAlt + `"/>`
			}
			b.WriteString(`<w:tc><w:tcPr>` + shading + `</w:tcPr>`)
			b.WriteString(docxPara("", docxRun(cell, style)))
			b.WriteString(`</w:tc>`)
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	b.WriteString(docxPara(""))
}

func writeDocxCharts(b *strings.Builder, chartList []Chart) error {
	if len(chartList) == 0 {
		return nil
	}

	b.WriteString(docxPageBreak)
	b.WriteString(docxPara(`<w:pStyle w:val="Heading1"/>`, docxRun("Visualizações", runStyle{})))

	for i, chart := range chartList {
		cfg, err := png.DecodeConfig(bytes.NewReader(chart.PNG))
		if err != nil {
			return fmt.Errorf("chart %d: %w", i+1, err)
		}
		cx := emuTargetWidth
		cy := cx * cfg.Height / cfg.Width

		b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>` +
			fmt.Sprintf(`<wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/>`, cx, cy) +
			fmt.Sprintf(`<wp:docPr id="%d" name="Gráfico %d"/>`, i+1, i+1) +
			`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
			`<pic:pic>` +
			fmt.Sprintf(`<pic:nvPicPr><pic:cNvPr id="%d" name="chart%d.png"/><pic:cNvPicPr/></pic:nvPicPr>`, i+1, i+1) +
			fmt.Sprintf(`<pic:blipFill><a:blip r:embed="rIdImg%d"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, i+1) +
			fmt.Sprintf(`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`, cx, cy) +
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`)

		b.WriteString(docxPara(`<w:jc w:val="center"/>`,
			docxRun(chart.Title, runStyle{italic: true, size: 18, color: themeTextLight})))
	}
	return nil
}
