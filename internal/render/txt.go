package render

import (
	"fmt"
	"strings"
)

const txtWidth = 72

// renderTXT produces the plain-text rendition with box-drawing headings.
func renderTXT(in Input) []byte {
	var out []string
	rule := strings.Repeat("─", txtWidth+2)

	out = append(out,
		"╔"+strings.Repeat("═", txtWidth)+"╗",
		"║"+centerText(strings.ToUpper(in.Title), txtWidth)+"║",
		"╚"+strings.Repeat("═", txtWidth)+"╝",
		"",
		"  Gerado por Joel - Agente de Análise de Documentos",
		"  Data: "+shortDate(in.GeneratedAt),
		"",
		rule,
		"",
	)

	number := 0
	for _, blk := range parseBlocks(in.Markdown) {
		switch blk.kind {
		case blockBlank:
			out = append(out, "")
			number = 0
		case blockHeading:
			out = append(out, txtHeading(blk)...)
		case blockRule:
			out = append(out, rule)
		case blockQuote:
			for _, line := range blk.lines {
				out = append(out, "    │ "+cleanInline(line))
			}
		case blockBullet:
			out = append(out, wrapText("    -  "+cleanInline(blk.text), txtWidth, "       ")...)
		case blockNumber:
			number++
			out = append(out, wrapText(fmt.Sprintf("    %d. %s", number, cleanInline(blk.text)), txtWidth, "       ")...)
		case blockTable:
			out = append(out, txtTable(blk.rows)...)
		case blockParagraph:
			out = append(out, wrapText("  "+cleanInline(blk.text), txtWidth, "  ")...)
		}
	}

	out = append(out,
		"",
		rule,
		"",
		"  Este relatório foi gerado automaticamente por Joel.",
		"  Recomenda-se validação independente antes de decisões críticas.",
		"",
		"╔"+strings.Repeat("═", txtWidth)+"╗",
		"║"+centerText("Joel - Agente de Análise de Documentos", txtWidth)+"║",
		"╚"+strings.Repeat("═", txtWidth)+"╝",
	)

	return []byte(strings.Join(out, "\n") + "\n")
}

func txtHeading(blk block) []string {
	text := blk.text
	switch blk.level {
	case 1:
		upper := strings.ToUpper(text)
		bar := strings.Repeat("─", runeLen(upper)+4)
		return []string{"", "┌" + bar + "┐", "│  " + upper + "  │", "└" + bar + "┘"}
	case 2:
		bar := strings.Repeat("━", minInt(runeLen(text)+4, txtWidth))
		return []string{"", bar, "  " + text, bar}
	case 3:
		return []string{"", "  ▸ " + text, "  " + strings.Repeat("─", minInt(runeLen(text)+2, txtWidth-2))}
	default:
		return []string{"", "  " + text}
	}
}

func txtTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	for _, r := range rows {
		for c, cell := range r {
			if w := runeLen(cleanInline(cell)); w > widths[c] {
				widths[c] = w
			}
		}
	}

	formatRow := func(r []string) string {
		parts := make([]string, cols)
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(r) {
				cell = cleanInline(r[c])
			}
			parts[c] = padRight(cell, widths[c])
		}
		return "  │ " + strings.Join(parts, " │ ") + " │"
	}
	divider := func(left, mid, right string) string {
		parts := make([]string, cols)
		for c := 0; c < cols; c++ {
			parts[c] = strings.Repeat("─", widths[c]+2)
		}
		return "  " + left + strings.Join(parts, mid) + right
	}

	out := []string{divider("┌", "┬", "┐"), formatRow(rows[0]), divider("├", "┼", "┤")}
	for _, r := range rows[1:] {
		out = append(out, formatRow(r))
	}
	out = append(out, divider("└", "┴", "┘"))
	return out
}

func wrapText(text string, width int, indent string) []string {
	if runeLen(text) <= width {
		return []string{text}
	}
	leading := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var lines []string
	current := leading
	for _, word := range strings.Fields(text) {
		switch {
		case strings.TrimSpace(current) == "":
			current += word
		case runeLen(current)+1+runeLen(word) > width:
			lines = append(lines, current)
			current = indent + word
		default:
			current += " " + word
		}
	}
	if strings.TrimSpace(current) != "" {
		lines = append(lines, current)
	}
	return lines
}

func centerText(s string, width int) string {
	n := runeLen(s)
	if n >= width {
		return truncateRunes(s, width)
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func padRight(s string, width int) string {
	n := runeLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func runeLen(s string) int { return len([]rune(s)) }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
