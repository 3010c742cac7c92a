package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell style indexes defined in xlsxStyles.
const (
	xfDefault     = 0
	xfTitle       = 1
	xfMeta        = 2
	xfTableHeader = 3
	xfBordered    = 4
	xfZebra       = 5
	xfHeading2    = 6
	xfHeading3    = 7
)

// renderXLSX builds the SpreadsheetML package with three sheets: the
// classified report lines, the consulted references and the chart datasets.
func renderXLSX(in Input) ([]byte, error) {
	refs := in.References
	if len(refs) == 0 {
		refs = extractReferences(in.Markdown)
	}

	parts := []ooxmlPart{
		{"[Content_Types].xml", xlsxContentTypes()},
		{"_rels/.rels", packageRels()},
		{"xl/workbook.xml", xlsxWorkbook()},
		{"xl/_rels/workbook.xml.rels", xlsxWorkbookRels()},
		{"xl/styles.xml", xlsxStyles()},
		{"docProps/core.xml", corePropsXML(in.Title, in.GeneratedAt)},
		{"xl/worksheets/sheet1.xml", xlsxReportSheet(in)},
		{"xl/worksheets/sheet2.xml", xlsxReferencesSheet(refs)},
		{"xl/worksheets/sheet3.xml", xlsxChartsSheet(in.Charts)},
	}
	return writeOOXML(parts, in.GeneratedAt)
}

func xlsxContentTypes() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>`)
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, `<Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`, i)
	}
	b.WriteString(`<Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func xlsxWorkbook() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>` +
		`<sheet name="Relatório" sheetId="1" r:id="rId1"/>` +
		`<sheet name="Referências" sheetId="2" r:id="rId2"/>` +
		`<sheet name="Gráficos" sheetId="3" r:id="rId3"/>` +
		`</sheets></workbook>`)
}

func xlsxWorkbookRels() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>` +
		`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet3.xml"/>` +
		`<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`</Relationships>`)
}

func xlsxStyles() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` +
		`<fonts count="6">` +
		`<font><sz val="10"/><name val="Calibri"/><color rgb="FF` + strings.ToUpper(themeText) + `"/></font>` +
		`<font><b/><sz val="10"/><name val="Calibri"/><color rgb="FFFFFFFF"/></font>` +
		`<font><b/><sz val="18"/><name val="Calibri"/><color rgb="FF` + strings.ToUpper(themePrimary) + `"/></font>` +
		`<font><i/><sz val="9"/><name val="Calibri"/><color rgb="FF` + strings.ToUpper(themeTextLight) + `"/></font>` +
		`<font><b/><sz val="13"/><name val="Calibri"/><color rgb="FF` + strings.ToUpper(themeSecondary) + `"/></font>` +
		`<font><b/><sz val="11"/><name val="Calibri"/><color rgb="FF` + strings.ToUpper(themeAccent) + `"/></font>` +
		`</fonts>` +
		`<fills count="4">` +
		`<fill><patternFill patternType="none"/></fill>` +
		`<fill><patternFill patternType="gray125"/></fill>` +
		`<fill><patternFill patternType="solid"><fgColor rgb="FF` + strings.ToUpper(themePrimary) + `"/></patternFill></fill>` +
		`<fill><patternFill patternType="solid"><fgColor rgb="FF` + strings.ToUpper(themeBgAlt) + `"/></patternFill></fill>` +
		`</fills>` +
		`<borders count="2">` +
		`<border><left/><right/><top/><bottom/><diagonal/></border>` +
		`<border><left style="thin"><color rgb="FF` + strings.ToUpper(themeBorder) + `"/></left>` +
		`<right style="thin"><color rgb="FF` + strings.ToUpper(themeBorder) + `"/></right>` +
		`<top style="thin"><color rgb="FF` + strings.ToUpper(themeBorder) + `"/></top>` +
		`<bottom style="thin"><color rgb="FF` + strings.ToUpper(themeBorder) + `"/></bottom><diagonal/></border>` +
		`</borders>` +
		`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>` +
		`<cellXfs count="8">` +
		`<xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"><alignment vertical="top" wrapText="1"/></xf>` +
		`<xf numFmtId="0" fontId="2" fillId="0" borderId="0" xfId="0" applyFont="1"/>` +
		`<xf numFmtId="0" fontId="3" fillId="0" borderId="0" xfId="0" applyFont="1"/>` +
		`<xf numFmtId="0" fontId="1" fillId="2" borderId="1" xfId="0" applyFont="1" applyFill="1" applyBorder="1"/>` +
		`<xf numFmtId="0" fontId="0" fillId="0" borderId="1" xfId="0" applyBorder="1"><alignment vertical="top" wrapText="1"/></xf>` +
		`<xf numFmtId="0" fontId="0" fillId="3" borderId="1" xfId="0" applyFill="1" applyBorder="1"><alignment vertical="top" wrapText="1"/></xf>` +
		`<xf numFmtId="0" fontId="4" fillId="0" borderId="0" xfId="0" applyFont="1"/>` +
		`<xf numFmtId="0" fontId="5" fillId="0" borderId="0" xfId="0" applyFont="1"/>` +
		`</cellXfs></styleSheet>`)
}

// sheetBuilder accumulates rows of one worksheet.
type sheetBuilder struct {
	rows strings.Builder
	row  int
}

func colRef(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

func (s *sheetBuilder) addRow(cells ...xlsxCell) {
	s.row++
	fmt.Fprintf(&s.rows, `<row r="%d">`, s.row)
	for i, c := range cells {
		ref := colRef(i) + strconv.Itoa(s.row)
		if c.number != "" {
			fmt.Fprintf(&s.rows, `<c r="%s" s="%d"><v>%s</v></c>`, ref, c.style, c.number)
			continue
		}
		fmt.Fprintf(&s.rows, `<c r="%s" s="%d" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`,
			ref, c.style, xmlEscape(c.text))
	}
	s.rows.WriteString("</row>")
}

func (s *sheetBuilder) blankRow() {
	s.row++
}

func (s *sheetBuilder) bytes(colWidths []float64) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	if len(colWidths) > 0 {
		b.WriteString("<cols>")
		for i, w := range colWidths {
			fmt.Fprintf(&b, `<col min="%d" max="%d" width="%g" customWidth="1"/>`, i+1, i+1, w)
		}
		b.WriteString("</cols>")
	}
	b.WriteString("<sheetData>")
	b.WriteString(s.rows.String())
	b.WriteString("</sheetData></worksheet>")
	return []byte(b.String())
}

type xlsxCell struct {
	text   string
	number string
	style  int
}

func textCell(text string, style int) xlsxCell {
	return xlsxCell{text: text, style: style}
}

func numberCell(v float64, style int) xlsxCell {
	return xlsxCell{number: strconv.FormatFloat(v, 'f', -1, 64), style: style}
}

func xlsxReportSheet(in Input) []byte {
	s := &sheetBuilder{}
	s.addRow(textCell(in.Title, xfTitle))
	s.addRow(textCell("Gerado por Joel - "+shortDate(in.GeneratedAt), xfMeta))
	s.blankRow()

	number := 0
	for _, blk := range parseBlocks(in.Markdown) {
		switch blk.kind {
		case blockBlank:
			s.blankRow()
			number = 0
		case blockHeading:
			switch blk.level {
			case 1:
				s.addRow(textCell(blk.text, xfTitle))
			case 2:
				s.addRow(textCell(blk.text, xfHeading2))
			default:
				s.addRow(textCell(blk.text, xfHeading3))
			}
		case blockRule:
			s.blankRow()
		case blockQuote:
			for _, line := range blk.lines {
				s.addRow(textCell("| "+cleanInline(line), xfMeta))
			}
		case blockBullet:
			s.addRow(textCell("  -  "+cleanInline(blk.text), xfDefault))
		case blockNumber:
			number++
			s.addRow(textCell(fmt.Sprintf("  %d. %s", number, cleanInline(blk.text)), xfDefault))
		case blockTable:
			for ridx, row := range blk.rows {
				cells := make([]xlsxCell, len(row))
				for c, cell := range row {
					style := xfBordered
					if ridx == 0 {
						style = xfTableHeader
					} else if ridx%2 == 0 {
						style = xfZebra
					}
					clean := cleanInline(cell)
					if ridx > 0 {
						if v, ok := parseCellNumber(clean); ok {
							cells[c] = numberCell(v, style)
							continue
						}
					}
					cells[c] = textCell(clean, style)
				}
				s.addRow(cells...)
			}
		case blockParagraph:
			s.addRow(textCell(cleanInline(blk.text), xfDefault))
		}
	}

	return s.bytes([]float64{80, 25, 25, 25})
}

func xlsxReferencesSheet(refs []Reference) []byte {
	s := &sheetBuilder{}
	s.addRow(
		textCell("#", xfTableHeader),
		textCell("Título", xfTableHeader),
		textCell("URL", xfTableHeader),
		textCell("Resumo", xfTableHeader),
	)
	for i, ref := range refs {
		style := xfBordered
		if (i+1)%2 == 0 {
			style = xfZebra
		}
		s.addRow(
			numberCell(float64(i+1), style),
			textCell(ref.Title, style),
			textCell(ref.URL, style),
			textCell(truncateRunes(ref.Content, 500), style),
		)
	}
	return s.bytes([]float64{5, 40, 55, 70})
}

// xlsxChartsSheet writes each chart dataset as a label/value table, the
// spreadsheet counterpart of the embedded images in PDF and DOCX.
func xlsxChartsSheet(chartList []Chart) []byte {
	s := &sheetBuilder{}
	s.addRow(textCell("Visualizações do Relatório", xfTitle))
	s.blankRow()

	for _, chart := range chartList {
		kind := "barras"
		if chart.Kind == "donut" {
			kind = "rosca"
		}
		s.addRow(textCell(fmt.Sprintf("%s (gráfico de %s)", chart.Title, kind), xfHeading2))
		s.addRow(textCell("Categoria", xfTableHeader), textCell("Valor", xfTableHeader))
		for i, label := range chart.Labels {
			style := xfBordered
			if (i+1)%2 == 0 {
				style = xfZebra
			}
			s.addRow(textCell(label, style), numberCell(chart.Values[i], style))
		}
		s.blankRow()
	}
	return s.bytes([]float64{45, 20})
}

func parseCellNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
